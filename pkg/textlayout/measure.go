package textlayout

import (
	"unicode/utf8"

	"golang.org/x/image/font"
)

// Measurer reports the rendered advance width of a string in pixels.
type Measurer interface {
	Width(s string) float64
}

// FaceMeasurer measures with a font face's real glyph advances and kerning.
type FaceMeasurer struct {
	Face font.Face
}

// Width implements Measurer.
func (m FaceMeasurer) Width(s string) float64 {
	if m.Face == nil || s == "" {
		return 0
	}
	return float64(font.MeasureString(m.Face, s)) / 64
}

// Spaced adds letter-spacing after every rune. Drawing through DrawLines
// or DrawSpaced with the same Spaced value places runes with exactly this
// arithmetic, so wrap decisions match the pixels.
type Spaced struct {
	Measurer
	Spacing float64
}

// Width implements Measurer.
func (s Spaced) Width(str string) float64 {
	w := s.Measurer.Width(str)
	if s.Spacing == 0 {
		return w
	}
	return w + s.Spacing*float64(utf8.RuneCountInString(str))
}

// spacingOf returns the letter spacing m applies, or 0.
func spacingOf(m Measurer) float64 {
	if s, ok := m.(Spaced); ok {
		return s.Spacing
	}
	return 0
}

// baseOf strips letter spacing from m.
func baseOf(m Measurer) Measurer {
	if s, ok := m.(Spaced); ok {
		return s.Measurer
	}
	return m
}
