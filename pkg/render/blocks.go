// blocks.go - Building blocks shared by the template planners.
package render

import (
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/font"

	"github.com/xob0t/poststencil/pkg/generator"
	"github.com/xob0t/poststencil/pkg/imageload"
	"github.com/xob0t/poststencil/pkg/layout"
	"github.com/xob0t/poststencil/pkg/state"
	"github.com/xob0t/poststencil/pkg/textlayout"
)

// Line box height of badges and single-line labels, as a multiple of the
// font size.
const labelLineHeight = 1.2

var (
	black       = color.NRGBA{A: 255}
	textShadow  = Shadow{Color: color.NRGBA{A: 140}, OffsetY: 4, Blur: 16}
	placeholder = color.NRGBA{R: 0x2A, G: 0x2A, B: 0x2A, A: 255}
)

// env is what planners may consult: canvas size, loaded bitmaps and faces.
type env struct {
	w, h   float64
	images imageload.Cache
	faces  FaceSource
}

func (e *env) canvas() layout.Rect { return layout.R(0, 0, e.w, e.h) }

func (e *env) bitmap(src string) image.Image { return e.images.Get(src) }

func (e *env) face(family string, size float64) font.Face {
	if e.faces == nil || size <= 0 {
		return nil
	}
	return e.faces.Face(family, size)
}

// zeroWidth measures nothing; used when a face is unavailable.
type zeroWidth struct{}

func (zeroWidth) Width(string) float64 { return 0 }

func (e *env) measurer(family string, size, spacing float64) (textlayout.Measurer, font.Face) {
	f := e.face(family, size)
	if f == nil {
		return zeroWidth{}, nil
	}
	return measurer(f, spacing), f
}

// layers accumulates non-nil layers in paint order.
type layers []Layer

func (ls *layers) add(l ...Layer) {
	for _, x := range l {
		if x != nil {
			*ls = append(*ls, x)
		}
	}
}

func col(hex string) color.NRGBA { return generator.ParseHexRGBA(hex, black) }

func fill(r layout.Rect, hex string) Layer {
	return &Fill{Rect: r, Color: col(hex)}
}

// cover fits img into dest. It returns nil when the bitmap is missing.
func (e *env) cover(img state.Image, dest layout.Rect) *Image {
	bm := e.bitmap(img.Src)
	if bm == nil || dest.Empty() || img.Opacity <= 0 {
		return nil
	}
	b := bm.Bounds()
	fit := layout.CoverFit(float64(b.Dx()), float64(b.Dy()), dest, img.PosX, img.PosY, img.Scale/100)
	return &Image{Src: img.Src, Fit: fit, Opacity: img.Opacity / 100}
}

// asLayer converts a possibly nil *Image without producing a typed nil.
func asLayer(i *Image) Layer {
	if i == nil {
		return nil
	}
	return i
}

func overlay(o state.Overlay, r layout.Rect) Layer {
	if !o.Show || o.Opacity <= 0 {
		return nil
	}
	return &Fill{Rect: r, Color: generator.WithOpacity(col(o.Color), o.Opacity/100)}
}

func gradient(g state.Gradient, canvas layout.Rect) Layer {
	if !g.Show || len(g.Stops) == 0 {
		return nil
	}
	top := canvas.Y + layout.Percent(canvas.H, g.Start)
	bottom := canvas.Y + layout.Percent(canvas.H, g.End)
	stops := make([]Stop, len(g.Stops))
	for i, s := range g.Stops {
		stops[i] = Stop{Offset: s.Pos / 100, Color: col(s.Color)}
	}
	return &Gradient{Rect: layout.R(canvas.X, top, canvas.W, bottom-top), Stops: stops}
}

// ── Text ──

// textBox is wrapped text measured but not yet placed vertically.
type textBox struct {
	lines   []textlayout.Line
	font    string
	size    float64
	spacing float64
	lineH   float64
	ascent  float64 // line top to baseline
	x       float64
	width   float64
	align   textlayout.Align
	shadow  *Shadow
}

func (b *textBox) height() float64 {
	if b == nil {
		return 0
	}
	return float64(len(b.lines)) * b.lineH
}

// at places the box with its first line box starting at top.
func (b *textBox) at(top float64) Layer {
	if b == nil {
		return nil
	}
	return &Text{
		Lines: b.lines,
		Block: textlayout.Block{
			X:          b.x,
			Y:          top + b.ascent,
			Width:      b.width,
			LineHeight: b.lineH,
			Align:      b.align,
		},
		Font:          b.font,
		Size:          b.size,
		LetterSpacing: b.spacing,
		Shadow:        b.shadow,
	}
}

// baselineOffset centers the glyph box in the line box (CSS half-leading).
func baselineOffset(f font.Face, lineH float64) float64 {
	if f == nil {
		return lineH * 0.8
	}
	m := f.Metrics()
	ascent := float64(m.Ascent) / 64
	descent := float64(m.Descent) / 64
	return (lineH-(ascent+descent))/2 + ascent
}

// blockX positions a wrap budget of width inside an area per alignment.
func blockX(areaX, areaW, width float64, align textlayout.Align) float64 {
	switch align {
	case textlayout.AlignCenter:
		return areaX + (areaW-width)/2
	case textlayout.AlignRight:
		return areaX + areaW - width
	default:
		return areaX
	}
}

// headline wraps a marked-up headline within a text area.
func (e *env) headline(h state.Headline, areaX, areaW float64) *textBox {
	m, f := e.measurer(h.Font, h.Size, h.LetterSpacing)
	width := areaW * h.MaxWidth / 100
	pal := textlayout.Palette{
		Base:          col(h.Color),
		Bracket:       col(h.BracketColor),
		BracketAccent: h.BracketAccent,
		Brace:         col(h.BraceColor),
		BraceAccent:   h.BraceAccent,
	}
	align := textlayout.ParseAlign(h.Align, textlayout.AlignLeft)
	lineH := h.Size * h.LineHeight
	b := &textBox{
		lines:   textlayout.WrapText(h.Text, pal, width, m),
		font:    h.Font,
		size:    h.Size,
		spacing: h.LetterSpacing,
		lineH:   lineH,
		ascent:  baselineOffset(f, lineH),
		x:       blockX(areaX, areaW, width, align),
		width:   width,
		align:   align,
	}
	if h.Shadow {
		s := textShadow
		b.shadow = &s
	}
	return b
}

// text wraps a plain secondary line. It returns nil when hidden or empty.
func (e *env) text(t state.Text, areaX, areaW float64, align textlayout.Align) *textBox {
	if !t.Show || strings.TrimSpace(t.Text) == "" {
		return nil
	}
	s := t.Text
	if t.Uppercase {
		s = strings.ToUpper(s)
	}
	m, f := e.measurer(t.Font, t.Size, t.LetterSpacing)
	lineH := t.Size * labelLineHeight
	return &textBox{
		lines:   textlayout.Wrap(textlayout.PlainWords(s, col(t.Color)), areaW, m),
		font:    t.Font,
		size:    t.Size,
		spacing: t.LetterSpacing,
		lineH:   lineH,
		ascent:  baselineOffset(f, lineH),
		x:       areaX,
		width:   areaW,
		align:   align,
	}
}

// badge measures a pill; its layer is placed with at. Nil when hidden.
type badgeBox struct {
	b      state.Badge
	textW  float64
	w, h   float64
	ascent float64
}

func (e *env) badge(b state.Badge) *badgeBox {
	if !b.Show || strings.TrimSpace(b.Text) == "" {
		return nil
	}
	m, f := e.measurer(b.Font, b.Size, 0)
	tw := m.Width(b.Text)
	lineH := b.Size * labelLineHeight
	return &badgeBox{
		b:      b,
		textW:  tw,
		w:      tw + 2*b.PadX,
		h:      lineH + 2*b.PadY,
		ascent: baselineOffset(f, lineH),
	}
}

func (bb *badgeBox) height() float64 {
	if bb == nil {
		return 0
	}
	return bb.h
}

func (bb *badgeBox) at(x, y float64) Layer {
	if bb == nil {
		return nil
	}
	r := layout.R(x, y, bb.w, bb.h)
	return &Pill{
		Rect:     r,
		Radius:   pillRadius(bb.b.Radius, r),
		Bg:       col(bb.b.BgColor),
		Text:     bb.b.Text,
		Font:     bb.b.Font,
		Size:     bb.b.Size,
		Color:    col(bb.b.Color),
		Baseline: layout.Point{X: x + bb.b.PadX, Y: y + bb.b.PadY + bb.ascent},
	}
}

// ── Navigation and branding ──

func (e *env) dots(d state.Dots) Layer {
	if !d.Show || d.Count <= 0 {
		return nil
	}
	spec := layout.DefaultDots
	y := e.h - d.Bottom - spec.Height
	return &Dots{Pills: layout.Dots(d.Count, d.Active, spec, e.w/2, y), Color: col(d.Color)}
}

// dotsTop returns the top of the dots row, or the canvas bottom if hidden.
func (e *env) dotsTop(d state.Dots) float64 {
	if !d.Show || d.Count <= 0 {
		return e.h
	}
	return e.h - d.Bottom - layout.DefaultDots.Height
}

func (e *env) watermark(w state.Watermark) Layer {
	if !w.Show {
		return nil
	}
	bm := e.bitmap(w.Src)
	if bm == nil {
		return nil
	}
	b := bm.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil
	}
	width := w.Width
	height := width * float64(b.Dy()) / float64(b.Dx())
	p := layout.Anchor(w.PosX, w.PosY, e.canvas(), width, height)
	return &Watermark{Src: w.Src, Rect: layout.R(p.X, p.Y, width, height), Opacity: w.Opacity / 100}
}

// glowBlurs halves the blur for each inner layer, CSS multi-shadow style.
func glowBlurs(blur float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = blur / math.Pow(2, float64(i))
	}
	return out
}
