// canvas.go - Paint layers onto a fogleman/gg surface.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/xob0t/poststencil/pkg/imageload"
	"github.com/xob0t/poststencil/pkg/layout"
	"github.com/xob0t/poststencil/pkg/textlayout"
)

// FaceSource hands out font faces by family and pixel size.
type FaceSource interface {
	Face(family string, sizePx float64) font.Face
}

type canvas struct {
	dc     *gg.Context
	images imageload.Cache
	faces  FaceSource
}

func (c *canvas) face(family string, size float64) font.Face {
	if c.faces == nil || size <= 0 {
		return nil
	}
	return c.faces.Face(family, size)
}

// Paint draws p back to front onto a fresh RGBA surface.
func Paint(p *Plan, images imageload.Cache, faces FaceSource) *image.RGBA {
	c := &canvas{dc: gg.NewContext(p.Width, p.Height), images: images, faces: faces}
	for _, l := range p.Layers {
		l.paint(c)
		c.dc.ResetClip()
		c.dc.Identity()
	}
	return c.dc.Image().(*image.RGBA)
}

func (l *Fill) paint(c *canvas) {
	dc := c.dc
	dc.SetColor(l.Color)
	if l.Radius > 0 {
		dc.DrawRoundedRectangle(l.Rect.X, l.Rect.Y, l.Rect.W, l.Rect.H, pillRadius(l.Radius, l.Rect))
	} else {
		dc.DrawRectangle(l.Rect.X, l.Rect.Y, l.Rect.W, l.Rect.H)
	}
	dc.Fill()
}

func (l *Image) paint(c *canvas) {
	img := c.images.Get(l.Src)
	if img == nil || l.Opacity <= 0 || l.Fit.Clip.Empty() {
		return
	}
	dc := c.dc
	clip := l.Fit.Clip
	switch {
	case l.Circle:
		ctr := clip.Center()
		dc.DrawCircle(ctr.X, ctr.Y, math.Min(clip.W, clip.H)/2)
	case l.Radius > 0:
		dc.DrawRoundedRectangle(clip.X, clip.Y, clip.W, clip.H, pillRadius(l.Radius, clip))
	default:
		dc.DrawRectangle(clip.X, clip.Y, clip.W, clip.H)
	}
	dc.Clip()
	drawScaled(dc, fade(img, l.Opacity), l.Fit.Draw)
}

func (l *Gradient) paint(c *canvas) {
	if l.Rect.Empty() || len(l.Stops) == 0 {
		return
	}
	dc := c.dc
	g := gg.NewLinearGradient(0, l.Rect.Y, 0, l.Rect.Bottom())
	for _, s := range l.Stops {
		g.AddColorStop(s.Offset, s.Color)
	}
	dc.SetFillStyle(g)
	dc.DrawRectangle(l.Rect.X, l.Rect.Y, l.Rect.W, l.Rect.H)
	dc.Fill()
}

func (l *Glow) paint(c *canvas) {
	if l.Radius <= 0 || l.Opacity <= 0 {
		return
	}
	for _, blur := range l.Blurs {
		r := glowRegion(l.Center, l.Radius, blur, c.dc.Width(), c.dc.Height())
		if r.Empty() {
			continue
		}
		off := gg.NewContext(r.Dx(), r.Dy())
		off.SetColor(l.Color)
		off.DrawCircle(l.Center.X-float64(r.Min.X), l.Center.Y-float64(r.Min.Y), l.Radius)
		off.Fill()
		var layer image.Image = off.Image()
		if blur > 0 {
			// CSS blur radius is twice the gaussian sigma.
			layer = imaging.Blur(layer, blur/2)
		}
		c.dc.DrawImage(fade(layer, l.Opacity), r.Min.X, r.Min.Y)
	}
}

// glowRegion is the offscreen area one blurred disc needs: the disc grown
// by the blur spread, cut to the canvas grown by the same spread so edge
// pixels still blur against their true neighbors.
func glowRegion(center layout.Point, radius, blur float64, w, h int) image.Rectangle {
	margin := int(math.Ceil(blur * 2))
	margin = min(margin, max(w, h))
	disc := image.Rect(
		int(math.Floor(center.X-radius))-margin,
		int(math.Floor(center.Y-radius))-margin,
		int(math.Ceil(center.X+radius))+margin,
		int(math.Ceil(center.Y+radius))+margin,
	)
	return disc.Intersect(image.Rect(0, 0, w, h).Inset(-margin))
}

func (l *Ring) paint(c *canvas) {
	if l.Width <= 0 || l.Radius <= 0 {
		return
	}
	dc := c.dc
	dc.SetColor(l.Color)
	dc.SetLineWidth(l.Width)
	dc.DrawCircle(l.Center.X, l.Center.Y, l.Radius)
	dc.Stroke()
}

func (l *Frame) paint(c *canvas) {
	if l.Width <= 0 || l.Rect.Empty() {
		return
	}
	dc := c.dc
	dc.SetColor(l.Color)
	dc.SetLineWidth(l.Width)
	if l.Radius > 0 {
		dc.DrawRoundedRectangle(l.Rect.X, l.Rect.Y, l.Rect.W, l.Rect.H, pillRadius(l.Radius, l.Rect))
	} else {
		dc.DrawRectangle(l.Rect.X, l.Rect.Y, l.Rect.W, l.Rect.H)
	}
	dc.Stroke()
}

func (l *Pill) paint(c *canvas) {
	dc := c.dc
	dc.SetColor(l.Bg)
	dc.DrawRoundedRectangle(l.Rect.X, l.Rect.Y, l.Rect.W, l.Rect.H, pillRadius(l.Radius, l.Rect))
	dc.Fill()
	face := c.face(l.Font, l.Size)
	if face == nil || l.Text == "" {
		return
	}
	dc.SetFontFace(face)
	dc.SetColor(l.Color)
	dc.DrawString(l.Text, l.Baseline.X, l.Baseline.Y)
}

func (l *Text) paint(c *canvas) {
	face := c.face(l.Font, l.Size)
	if face == nil {
		return
	}
	m := measurer(face, l.LetterSpacing)
	if l.Shadow != nil && l.Shadow.Color.A > 0 {
		c.textShadow(l, face, m)
	}
	c.dc.SetFontFace(face)
	textlayout.DrawLines(c.dc, m, l.Lines, l.Block)
}

// textShadow renders the block in the shadow color offscreen, blurs it and
// composites it under the text.
func (c *canvas) textShadow(l *Text, face font.Face, m textlayout.Measurer) {
	s := l.Shadow
	metrics := face.Metrics()
	ascent := float64(metrics.Ascent) / 64
	descent := float64(metrics.Descent) / 64
	margin := math.Ceil(s.Blur*2) + 2

	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, line := range l.Lines {
		x := l.Block.LineX(line.Width)
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, math.Max(x+line.Width, l.Block.X+l.Block.Width))
	}
	if math.IsInf(minX, 0) {
		return
	}
	top := l.Block.Y - ascent
	bottom := l.Block.Y + float64(len(l.Lines)-1)*l.Block.LineHeight + descent

	bx := int(math.Floor(minX - margin))
	by := int(math.Floor(top - margin))
	bw := int(math.Ceil(maxX+margin)) - bx
	bh := int(math.Ceil(bottom+margin)) - by
	if bw <= 0 || bh <= 0 {
		return
	}

	off := gg.NewContext(bw, bh)
	off.SetFontFace(face)
	off.SetColor(s.Color)
	block := l.Block
	block.X -= float64(bx)
	block.Y -= float64(by)
	textlayout.DrawLines(solid{off}, m, l.Lines, block)

	var shadow image.Image = off.Image()
	if s.Blur > 0 {
		shadow = imaging.Blur(shadow, s.Blur/2)
	}
	c.dc.DrawImage(shadow, bx+int(math.Round(s.OffsetX)), by+int(math.Round(s.OffsetY)))
}

// solid draws every word in the context's current color.
type solid struct{ dc *gg.Context }

func (solid) SetColor(color.Color)                 {}
func (s solid) DrawString(str string, x, y float64) { s.dc.DrawString(str, x, y) }

func (l *Dots) paint(c *canvas) {
	dc := c.dc
	for _, p := range l.Pills {
		col := l.Color
		col.A = uint8(math.Round(float64(col.A) * p.Opacity))
		dc.SetColor(col)
		dc.DrawRoundedRectangle(p.X, p.Y, p.W, p.H, p.H/2)
		dc.Fill()
	}
}

func (l *Watermark) paint(c *canvas) {
	img := c.images.Get(l.Src)
	if img == nil || l.Rect.Empty() || l.Opacity <= 0 {
		return
	}
	drawScaled(c.dc, fade(img, l.Opacity), l.Rect)
}

func (l *Icon) paint(c *canvas) {
	img := c.images.Get(l.Src)
	if img == nil || l.Rect.Empty() {
		return
	}
	if l.Tint != nil {
		img = tint(img, *l.Tint)
	}
	drawScaled(c.dc, img, l.Rect)
}

// drawScaled maps the whole bitmap onto dst, honoring the current clip.
func drawScaled(dc *gg.Context, img image.Image, dst layout.Rect) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	dc.Push()
	dc.Translate(dst.X, dst.Y)
	dc.Scale(dst.W/float64(b.Dx()), dst.H/float64(b.Dy()))
	dc.DrawImage(img, -b.Min.X, -b.Min.Y)
	dc.Pop()
}

// fade multiplies the bitmap's alpha by opacity (0–1).
func fade(img image.Image, opacity float64) image.Image {
	if opacity >= 1 {
		return img
	}
	k := layout.Clamp(opacity, 0, 1)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		c.A = uint8(math.Round(float64(c.A) * k))
		return c
	})
}

// tint keeps the bitmap's alpha and replaces its color.
func tint(img image.Image, t color.NRGBA) image.Image {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: t.R, G: t.G, B: t.B, A: uint8(uint32(c.A) * uint32(t.A) / 255)}
	})
}

// pillRadius caps a corner radius at half the shorter side, as CSS does.
func pillRadius(r float64, rect layout.Rect) float64 {
	return math.Min(r, math.Min(rect.W, rect.H)/2)
}

func measurer(face font.Face, spacing float64) textlayout.Measurer {
	var m textlayout.Measurer = textlayout.FaceMeasurer{Face: face}
	if spacing != 0 {
		m = textlayout.Spaced{Measurer: m, Spacing: spacing}
	}
	return m
}
