// normalize.go - Repair invalid field values with their defaults.
package state

import (
	"sort"

	"github.com/xob0t/poststencil/pkg/generator"
	"github.com/xob0t/poststencil/pkg/layout"
	"github.com/xob0t/poststencil/pkg/textlayout"
)

const maxGlowLayers = 6

// Normalize replaces non-positive sizes, malformed colors and unknown
// enumerations with defaults. Watermark positions are left alone: the
// anchor rule clamps Y itself and lets X overflow.
func (s *State) Normalize() {
	def := Default()
	if !KnownTemplate(s.Post.Template) {
		s.Post.Template = TemplateStyle
	}
	p, d := &s.Post, &def.Post
	p.Style.normalize(d.Style)
	p.T2.normalize(d.T2)
	p.T3.normalize(d.T3)
	p.T4.normalize(d.T4)
	p.T5.normalize(d.T5)
	p.T6.normalize(d.T6)
	s.Highlight.normalize(def.Highlight)
}

func (t *Style) normalize(d Style) {
	fixColor(&t.BgColor, d.BgColor)
	t.Image.normalize()
	t.Gradient.normalize(d.Gradient)
	t.Brand.normalize(d.Brand)
	t.Headline.normalize(d.Headline)
	t.Caption.normalize(d.Caption)
	t.Swipe.normalize(d.Swipe)
	nonNegative(&t.Padding)
	nonNegative(&t.Bottom)
	nonNegative(&t.Gap)
	t.Dots.normalize(d.Dots)
	t.Watermark.normalize(d.Watermark)
}

func (t *T2) normalize(d T2) {
	t.Split = layout.Clamp(t.Split, 0, 100)
	t.Image.normalize()
	fixColor(&t.PanelColor, d.PanelColor)
	fixColor(&t.AccentBar.Color, d.AccentBar.Color)
	nonNegative(&t.AccentBar.Width)
	nonNegative(&t.AccentBar.Height)
	t.Headline.normalize(d.Headline)
	t.Caption.normalize(d.Caption)
	t.Brand.normalize(d.Brand)
	nonNegative(&t.Padding)
	nonNegative(&t.Gap)
	t.Dots.normalize(d.Dots)
	t.Watermark.normalize(d.Watermark)
}

func (t *T3) normalize(d T3) {
	fixColor(&t.BgColor, d.BgColor)
	t.Backdrop.normalize()
	t.Overlay.normalize(d.Overlay)
	t.Inset.normalize()
	positive(&t.InsetSize, d.InsetSize)
	t.InsetSize = min(t.InsetSize, PostWidth)
	t.InsetY = layout.Clamp(t.InsetY, 0, 100)
	t.Glow.normalize(d.Glow)
	t.Ring.normalize(d.Ring)
	t.Headline.normalize(d.Headline)
	t.Caption.normalize(d.Caption)
	nonNegative(&t.Padding)
	nonNegative(&t.Gap)
	t.Dots.normalize(d.Dots)
	t.Watermark.normalize(d.Watermark)
}

func (t *T4) normalize(d T4) {
	fixColor(&t.BgColor, d.BgColor)
	t.Image.normalize()
	t.Gradient.normalize(d.Gradient)
	t.Category.normalize(d.Category)
	t.Headline.normalize(d.Headline)
	t.Source.normalize(d.Source)
	nonNegative(&t.Padding)
	nonNegative(&t.Bottom)
	nonNegative(&t.Gap)
	t.Dots.normalize(d.Dots)
	t.Watermark.normalize(d.Watermark)
}

func (t *T5) normalize(d T5) {
	fixColor(&t.BgColor, d.BgColor)
	t.Headline.normalize(d.Headline)
	t.Image.normalize()
	t.Frame.normalize(d.Frame)
	nonNegative(&t.Radius)
	t.Caption.normalize(d.Caption)
	nonNegative(&t.Padding)
	nonNegative(&t.Gap)
	t.Dots.normalize(d.Dots)
	t.Watermark.normalize(d.Watermark)
}

func (t *T6) normalize(d T6) {
	fixColor(&t.BgColor, d.BgColor)
	t.Image.normalize()
	t.Overlay.normalize(d.Overlay)
	t.Quote.normalize(d.Quote)
	t.Headline.normalize(d.Headline)
	t.Author.normalize(d.Author)
	t.Brand.normalize(d.Brand)
	nonNegative(&t.Padding)
	nonNegative(&t.Gap)
	t.Dots.normalize(d.Dots)
	t.Watermark.normalize(d.Watermark)
}

func (h *Highlight) normalize(d Highlight) {
	fixColor(&h.BgColor, d.BgColor)
	fixColor(&h.RingColor, d.RingColor)
	nonNegative(&h.RingWidth)
	positive(&h.IconSize, d.IconSize)
	h.IconSize = min(h.IconSize, 100)
	fixColor(&h.IconColor, d.IconColor)
}

// ── Building blocks ──

func (i *Image) normalize() {
	i.PosX = layout.Clamp(i.PosX, 0, 100)
	i.PosY = layout.Clamp(i.PosY, 0, 100)
	// Scale below 100% would leave the cover box partly empty.
	positive(&i.Scale, 100)
	i.Scale = max(i.Scale, 100)
	i.Opacity = layout.Clamp(i.Opacity, 0, 100)
}

func (h *Headline) normalize(d Headline) {
	positive(&h.Size, d.Size)
	positive(&h.LineHeight, d.LineHeight)
	nonNegative(&h.LetterSpacing)
	fixColor(&h.Color, d.Color)
	fixColor(&h.BracketColor, d.BracketColor)
	fixColor(&h.BraceColor, d.BraceColor)
	fixFont(&h.Font, d.Font)
	h.Align = string(textlayout.ParseAlign(h.Align, textlayout.Align(d.Align)))
	positive(&h.MaxWidth, d.MaxWidth)
	h.MaxWidth = min(h.MaxWidth, 100)
}

func (t *Text) normalize(d Text) {
	positive(&t.Size, d.Size)
	nonNegative(&t.LetterSpacing)
	fixColor(&t.Color, d.Color)
	fixFont(&t.Font, d.Font)
}

func (b *Badge) normalize(d Badge) {
	positive(&b.Size, d.Size)
	fixColor(&b.Color, d.Color)
	fixColor(&b.BgColor, d.BgColor)
	fixFont(&b.Font, d.Font)
	nonNegative(&b.PadX)
	nonNegative(&b.PadY)
	nonNegative(&b.Radius)
}

func (g *Gradient) normalize(d Gradient) {
	g.Start = layout.Clamp(g.Start, 0, 100)
	g.End = layout.Clamp(g.End, 0, 100)
	if g.End <= g.Start {
		g.Start, g.End = d.Start, d.End
	}
	stops := g.Stops[:0]
	for _, s := range g.Stops {
		if generator.IsColor(s.Color) {
			s.Pos = layout.Clamp(s.Pos, 0, 100)
			stops = append(stops, s)
		}
	}
	if len(stops) == 0 {
		stops = append(stops, d.Stops...)
	}
	sort.SliceStable(stops, func(i, j int) bool { return stops[i].Pos < stops[j].Pos })
	g.Stops = stops
}

func (o *Overlay) normalize(d Overlay) {
	fixColor(&o.Color, d.Color)
	o.Opacity = layout.Clamp(o.Opacity, 0, 100)
}

func (g *Glow) normalize(d Glow) {
	fixColor(&g.Color, d.Color)
	nonNegative(&g.Blur)
	g.Blur = min(g.Blur, PostWidth)
	if g.Layers <= 0 {
		g.Layers = d.Layers
	}
	g.Layers = min(g.Layers, maxGlowLayers)
	g.Opacity = layout.Clamp(g.Opacity, 0, 100)
}

func (r *Ring) normalize(d Ring) {
	fixColor(&r.Color, d.Color)
	nonNegative(&r.Width)
}

func (dt *Dots) normalize(d Dots) {
	dt.Count = max(dt.Count, 0)
	dt.Active = max(dt.Active, 0)
	fixColor(&dt.Color, d.Color)
	nonNegative(&dt.Bottom)
}

func (w *Watermark) normalize(d Watermark) {
	positive(&w.Width, d.Width)
	w.Opacity = layout.Clamp(w.Opacity, 0, 100)
}

// ── Field helpers ──

func fixColor(v *string, def string) {
	if !generator.IsColor(*v) {
		*v = def
	}
}

func fixFont(v *string, def string) {
	if *v == "" {
		*v = def
	}
}

func positive(v *float64, def float64) {
	if *v <= 0 {
		*v = def
	}
}

func nonNegative(v *float64) {
	if *v < 0 {
		*v = 0
	}
}
