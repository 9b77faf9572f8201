// templates.go - Per-template layer planners.
//
// Each planner lays out one template against the canvas in strict back to
// front order. Edge-anchored stacks are measured in full before any layer
// is placed, so the whole stack aligns as a unit.
package render

import (
	"math"

	"github.com/xob0t/poststencil/pkg/layout"
	"github.com/xob0t/poststencil/pkg/state"
	"github.com/xob0t/poststencil/pkg/textlayout"
)

// stack is a vertical run of measured items separated by gap.
type stack struct {
	gap   float64
	items []stackItem
}

type stackItem struct {
	h     float64
	place func(top float64) Layer
}

func (s *stack) push(h float64, place func(top float64) Layer) {
	if place == nil || h <= 0 {
		return
	}
	s.items = append(s.items, stackItem{h: h, place: place})
}

func (s *stack) height() float64 {
	total := 0.0
	for i, it := range s.items {
		if i > 0 {
			total += s.gap
		}
		total += it.h
	}
	return total
}

// from places every item starting at top and returns the layers and the
// bottom edge.
func (s *stack) from(top float64) ([]Layer, float64) {
	out := make([]Layer, 0, len(s.items))
	y := top
	for i, it := range s.items {
		if i > 0 {
			y += s.gap
		}
		if l := it.place(y); l != nil {
			out = append(out, l)
		}
		y += it.h
	}
	return out, y
}

func (s *stack) pushText(b *textBox) {
	if b != nil {
		s.push(b.height(), b.at)
	}
}

func (s *stack) pushBadge(bb *badgeBox, x func(w float64) float64) {
	if bb != nil {
		s.push(bb.height(), func(top float64) Layer { return bb.at(x(bb.w), top) })
	}
}

// planStyle: full-bleed photo, bottom gradient, brand pill top-left and a
// bottom-anchored headline, caption and swipe block.
func planStyle(e *env, t state.Style) []Layer {
	var ls layers
	canvas := e.canvas()
	ls.add(fill(canvas, t.BgColor))
	ls.add(asLayer(e.cover(t.Image, canvas)))
	ls.add(gradient(t.Gradient, canvas))
	ls.add(e.badge(t.Brand).at(t.Padding, t.Padding))

	areaW := e.w - 2*t.Padding
	block := stack{gap: t.Gap}
	block.pushText(e.headline(t.Headline, t.Padding, areaW))
	block.pushText(e.text(t.Caption, t.Padding, areaW, textlayout.AlignLeft))
	block.pushText(e.text(t.Swipe, t.Padding, areaW, textlayout.AlignLeft))
	placed, _ := block.from(e.h - t.Bottom - block.height())
	ls.add(placed...)

	ls.add(e.dots(t.Dots), e.watermark(t.Watermark))
	return ls
}

// planT2: photo on top, flat panel below with an accent bar, a centered
// headline and caption, and a brand line at the bottom of the panel.
func planT2(e *env, t state.T2) []Layer {
	var ls layers
	canvas := e.canvas()
	top, panel := layout.SplitHorizontal(canvas, layout.Percent(e.h, t.Split))

	ls.add(fill(canvas, t.PanelColor))
	ls.add(asLayer(e.cover(t.Image, top)))
	ls.add(fill(panel, t.PanelColor))

	areaW := e.w - 2*t.Padding
	body := stack{gap: t.Gap}
	if t.AccentBar.Show && t.AccentBar.Width > 0 && t.AccentBar.Height > 0 {
		bar := t.AccentBar
		body.push(bar.Height, func(y float64) Layer {
			return fill(layout.R((e.w-bar.Width)/2, y, bar.Width, bar.Height), bar.Color)
		})
	}
	h := t.Headline
	body.pushText(e.headline(h, t.Padding, areaW))
	body.pushText(e.text(t.Caption, t.Padding, areaW, textlayout.ParseAlign(h.Align, textlayout.AlignCenter)))
	placed, _ := body.from(panel.Y + t.Padding)
	ls.add(placed...)

	if brand := e.text(t.Brand, t.Padding, areaW, textlayout.AlignCenter); brand != nil {
		bottom := math.Min(e.h-t.Padding, e.dotsTop(t.Dots)-t.Gap)
		ls.add(brand.at(bottom - brand.height()))
	}

	ls.add(e.dots(t.Dots), e.watermark(t.Watermark))
	return ls
}

// planT3: dimmed backdrop, circular inset with glow and ring, centered
// headline and caption below the circle.
func planT3(e *env, t state.T3) []Layer {
	var ls layers
	canvas := e.canvas()
	ls.add(fill(canvas, t.BgColor))
	ls.add(asLayer(e.cover(t.Backdrop, canvas)))
	ls.add(overlay(t.Overlay, canvas))

	r := t.InsetSize / 2
	center := layout.Point{X: e.w / 2, Y: layout.Percent(e.h, t.InsetY)}
	if t.Glow.Show && t.Glow.Opacity > 0 {
		ls.add(&Glow{
			Center:  center,
			Radius:  r,
			Color:   col(t.Glow.Color),
			Blurs:   glowBlurs(t.Glow.Blur, t.Glow.Layers),
			Opacity: t.Glow.Opacity / 100,
		})
	}
	if inset := e.cover(t.Inset, layout.Square(center.X, center.Y, t.InsetSize)); inset != nil {
		inset.Circle = true
		ls.add(inset)
	}
	ringW := 0.0
	if t.Ring.Show && t.Ring.Width > 0 {
		ringW = t.Ring.Width
		ls.add(&Ring{Center: center, Radius: r + ringW/2, Width: ringW, Color: col(t.Ring.Color)})
	}

	areaW := e.w - 2*t.Padding
	body := stack{gap: t.Gap}
	body.pushText(e.headline(t.Headline, t.Padding, areaW))
	body.pushText(e.text(t.Caption, t.Padding, areaW, textlayout.AlignCenter))
	placed, _ := body.from(center.Y + r + ringW + 2*t.Gap)
	ls.add(placed...)

	ls.add(e.dots(t.Dots), e.watermark(t.Watermark))
	return ls
}

// planT4: news stack. Category badge, headline and source are measured,
// then stacked up from the bottom edge over a multi-stop gradient.
func planT4(e *env, t state.T4) []Layer {
	var ls layers
	canvas := e.canvas()
	ls.add(fill(canvas, t.BgColor))
	ls.add(asLayer(e.cover(t.Image, canvas)))
	ls.add(gradient(t.Gradient, canvas))

	areaW := e.w - 2*t.Padding
	align := textlayout.ParseAlign(t.Headline.Align, textlayout.AlignLeft)
	news := stack{gap: t.Gap}
	news.pushBadge(e.badge(t.Category), func(w float64) float64 {
		return blockX(t.Padding, areaW, w, align)
	})
	news.pushText(e.headline(t.Headline, t.Padding, areaW))
	news.pushText(e.text(t.Source, t.Padding, areaW, align))
	bottom := math.Min(e.h-t.Bottom, e.dotsTop(t.Dots)-t.Gap)
	placed, _ := news.from(bottom - news.height())
	ls.add(placed...)

	ls.add(e.dots(t.Dots), e.watermark(t.Watermark))
	return ls
}

// planT5: framed card. Headline on top, caption at the bottom, the photo
// fills what is left between them.
func planT5(e *env, t state.T5) []Layer {
	var ls layers
	canvas := e.canvas()
	ls.add(fill(canvas, t.BgColor))

	areaW := e.w - 2*t.Padding
	head := e.headline(t.Headline, t.Padding, areaW)
	headTop := t.Padding
	ls.add(head.at(headTop))

	contentBottom := math.Min(e.h-t.Padding, e.dotsTop(t.Dots)-t.Gap)
	photoBottom := contentBottom
	var captionLayer Layer
	if caption := e.text(t.Caption, t.Padding, areaW, textlayout.ParseAlign(t.Headline.Align, textlayout.AlignLeft)); caption != nil {
		captionTop := contentBottom - caption.height()
		captionLayer = caption.at(captionTop)
		photoBottom = captionTop - t.Gap
	}

	photoTop := headTop + head.height() + t.Gap
	photo := layout.R(t.Padding, photoTop, areaW, photoBottom-photoTop)
	if !photo.Empty() {
		if img := e.cover(t.Image, photo); img != nil {
			img.Radius = t.Radius
			ls.add(img)
		} else {
			ls.add(&Fill{Rect: photo, Color: placeholder, Radius: t.Radius})
		}
		if t.Frame.Show && t.Frame.Width > 0 {
			// The stroke sits on the inside edge of the photo box.
			inner := layout.Inset(photo, t.Frame.Width/2)
			ls.add(&Frame{Rect: inner, Radius: math.Max(t.Radius-t.Frame.Width/2, 0), Width: t.Frame.Width, Color: col(t.Frame.Color)})
		}
	}
	ls.add(captionLayer)

	ls.add(e.dots(t.Dots), e.watermark(t.Watermark))
	return ls
}

// planT6: typographic quote. Quote mark, letter-spaced headline and author
// are centered vertically above a brand pill.
func planT6(e *env, t state.T6) []Layer {
	var ls layers
	canvas := e.canvas()
	ls.add(fill(canvas, t.BgColor))
	ls.add(asLayer(e.cover(t.Image, canvas)))
	ls.add(overlay(t.Overlay, canvas))

	areaW := e.w - 2*t.Padding
	brand := e.badge(t.Brand)
	limit := math.Min(e.h-t.Padding, e.dotsTop(t.Dots)-t.Gap)
	if brand != nil {
		ls.add(brand.at((e.w-brand.w)/2, limit-brand.h))
		limit -= brand.h + t.Gap
	}

	quote := stack{gap: t.Gap}
	if q := e.text(t.Quote, t.Padding, areaW, textlayout.AlignCenter); q != nil {
		// The glyph sits high in its em box; tighten its line box.
		q.lineH = t.Quote.Size * 0.7
		q.ascent = t.Quote.Size * 0.75
		quote.pushText(q)
	}
	quote.pushText(e.headline(t.Headline, t.Padding, areaW))
	quote.pushText(e.text(t.Author, t.Padding, areaW, textlayout.AlignCenter))
	top := math.Max(t.Padding, (limit+t.Padding-quote.height())/2)
	placed, _ := quote.from(top)
	ls.add(placed...)

	ls.add(e.dots(t.Dots), e.watermark(t.Watermark))
	return ls
}

// planHighlight: square badge with a ring and a contained, optionally
// tinted icon.
func planHighlight(e *env, h state.Highlight) []Layer {
	var ls layers
	canvas := e.canvas()
	ls.add(fill(canvas, h.BgColor))
	if h.RingWidth > 0 {
		ls.add(&Ring{
			Center: canvas.Center(),
			Radius: math.Min(e.w, e.h)/2 - h.RingWidth/2,
			Width:  h.RingWidth,
			Color:  col(h.RingColor),
		})
	}
	if bm := e.bitmap(h.Icon); bm != nil {
		side := layout.Percent(math.Min(e.w, e.h), h.IconSize)
		c := canvas.Center()
		b := bm.Bounds()
		icon := &Icon{Src: h.Icon, Rect: layout.ContainFit(float64(b.Dx()), float64(b.Dy()), layout.Square(c.X, c.Y, side))}
		if h.Tint {
			tc := col(h.IconColor)
			icon.Tint = &tc
		}
		ls.add(icon)
	}
	return ls
}
