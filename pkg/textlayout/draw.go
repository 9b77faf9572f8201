package textlayout

import (
	"image/color"
	"strings"
	"unicode/utf8"
)

// Drawer is the subset of a raster surface text drawing needs. The font
// face is selected by the caller before drawing. *gg.Context satisfies it.
type Drawer interface {
	SetColor(c color.Color)
	DrawString(s string, x, y float64)
}

// Align is a horizontal text alignment.
type Align string

const (
	AlignLeft    Align = "left"
	AlignCenter  Align = "center"
	AlignRight   Align = "right"
	AlignJustify Align = "justify"
)

// ParseAlign maps a config string to an Align, defaulting to fallback.
func ParseAlign(s string, fallback Align) Align {
	switch a := Align(strings.ToLower(s)); a {
	case AlignLeft, AlignCenter, AlignRight, AlignJustify:
		return a
	default:
		return fallback
	}
}

// Block positions a run of lines. Y is the baseline of the first line.
type Block struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	LineHeight float64 `json:"lineHeight"`
	Align      Align   `json:"align"`
}

// LineX returns the start x of a line of the given width.
func (b Block) LineX(lineWidth float64) float64 {
	switch b.Align {
	case AlignCenter:
		return b.X + (b.Width-lineWidth)/2
	case AlignRight:
		return b.X + b.Width - lineWidth
	default:
		return b.X
	}
}

// DrawLines renders each line at its baseline, word by word in each word's
// own color, and returns the baseline following the last line.
func DrawLines(d Drawer, m Measurer, lines []Line, b Block) float64 {
	y := b.Y
	space := m.Width(" ")
	for i, line := range lines {
		us := units(line.Words, m)
		gap := space
		x := b.LineX(line.Width)
		if b.Align == AlignJustify && i < len(lines)-1 && len(us) > 1 {
			gap = space + (b.Width-line.Width)/float64(len(us)-1)
		}
		for _, u := range us {
			drawUnit(d, m, u, x, y)
			x += u.width + gap
		}
		y += b.LineHeight
	}
	return y
}

// drawUnit draws attached words so their combined advance equals the unit's
// measured width.
func drawUnit(d Drawer, m Measurer, u unit, x, y float64) {
	var prefix strings.Builder
	for _, w := range u.words {
		d.SetColor(w.Color)
		DrawSpaced(d, m, w.Text, x+m.Width(prefix.String()), y)
		prefix.WriteString(w.Text)
	}
}

// DrawSpaced draws s at (x, y). When m carries letter spacing each rune is
// placed individually at the offset m would measure for its prefix.
func DrawSpaced(d Drawer, m Measurer, s string, x, y float64) {
	spacing := spacingOf(m)
	if spacing == 0 {
		d.DrawString(s, x, y)
		return
	}
	base := baseOf(m)
	n := 0
	for off := 0; off < len(s); {
		_, size := utf8.DecodeRuneInString(s[off:])
		d.DrawString(s[off:off+size], x+base.Width(s[:off])+spacing*float64(n), y)
		off += size
		n++
	}
}

// Height returns the vertical extent of n lines.
func Height(n int, lineHeight float64) float64 {
	return float64(n) * lineHeight
}
