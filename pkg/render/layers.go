package render

import (
	"encoding/json"
	"image/color"

	"github.com/xob0t/poststencil/pkg/layout"
	"github.com/xob0t/poststencil/pkg/state"
	"github.com/xob0t/poststencil/pkg/textlayout"
)

// Layer is one step of a composition, painted back to front.
type Layer interface {
	Kind() string
	paint(c *canvas)
}

// Plan is a fully laid out composition. It carries geometry only; bitmaps
// and faces are supplied again at paint time.
type Plan struct {
	Mode     state.Mode `json:"mode"`
	Template string     `json:"template,omitempty"`
	Width    int        `json:"width"`
	Height   int        `json:"height"`
	Layers   []Layer    `json:"-"`
}

type taggedLayer struct {
	Kind  string `json:"kind"`
	Layer Layer  `json:"layer"`
}

// MarshalJSON tags each layer with its kind so a preview can dispatch on it.
func (p *Plan) MarshalJSON() ([]byte, error) {
	type plain Plan
	tagged := make([]taggedLayer, len(p.Layers))
	for i, l := range p.Layers {
		tagged[i] = taggedLayer{Kind: l.Kind(), Layer: l}
	}
	return json.Marshal(struct {
		*plain
		Layers []taggedLayer `json:"layers"`
	}{(*plain)(p), tagged})
}

// Kinds lists the layer kinds in paint order.
func (p *Plan) Kinds() []string {
	out := make([]string, len(p.Layers))
	for i, l := range p.Layers {
		out[i] = l.Kind()
	}
	return out
}

// Fill paints a solid, optionally rounded rectangle.
type Fill struct {
	Rect   layout.Rect `json:"rect"`
	Color  color.NRGBA `json:"color"`
	Radius float64     `json:"radius,omitempty"`
}

// Image paints a cover-fitted bitmap inside its clip. Circle clips to the
// circle inscribed in Fit.Clip; Radius rounds a rectangular clip.
type Image struct {
	Src     string     `json:"src"`
	Fit     layout.Fit `json:"fit"`
	Circle  bool       `json:"circle,omitempty"`
	Radius  float64    `json:"radius,omitempty"`
	Opacity float64    `json:"opacity"` // 0–1
}

// Stop is a gradient color stop, Offset in 0–1.
type Stop struct {
	Offset float64     `json:"offset"`
	Color  color.NRGBA `json:"color"`
}

// Gradient paints a top-to-bottom linear gradient over Rect.
type Gradient struct {
	Rect  layout.Rect `json:"rect"`
	Stops []Stop      `json:"stops"`
}

// Glow paints blurred discs behind a circle, outermost first.
type Glow struct {
	Center  layout.Point `json:"center"`
	Radius  float64      `json:"radius"`
	Color   color.NRGBA  `json:"color"`
	Blurs   []float64    `json:"blurs"`
	Opacity float64      `json:"opacity"`
}

// Ring strokes a circle.
type Ring struct {
	Center layout.Point `json:"center"`
	Radius float64      `json:"radius"`
	Width  float64      `json:"width"`
	Color  color.NRGBA  `json:"color"`
}

// Frame strokes a rounded rectangle.
type Frame struct {
	Rect   layout.Rect `json:"rect"`
	Radius float64     `json:"radius,omitempty"`
	Width  float64     `json:"width"`
	Color  color.NRGBA `json:"color"`
}

// Pill is a badge: a rounded background sized to its text.
type Pill struct {
	Rect     layout.Rect  `json:"rect"`
	Radius   float64      `json:"radius"`
	Bg       color.NRGBA  `json:"bg"`
	Text     string       `json:"text"`
	Font     string       `json:"font"`
	Size     float64      `json:"size"`
	Color    color.NRGBA  `json:"color"`
	Baseline layout.Point `json:"baseline"`
}

// Shadow is a blurred, offset copy of text drawn beneath it.
type Shadow struct {
	Color   color.NRGBA `json:"color"`
	OffsetX float64     `json:"offsetX"`
	OffsetY float64     `json:"offsetY"`
	Blur    float64     `json:"blur"`
}

// Text paints wrapped multi-color lines.
type Text struct {
	Lines         []textlayout.Line `json:"lines"`
	Block         textlayout.Block  `json:"block"`
	Font          string            `json:"font"`
	Size          float64           `json:"size"`
	LetterSpacing float64           `json:"letterSpacing,omitempty"`
	Shadow        *Shadow           `json:"shadow,omitempty"`
}

// Dots paints pagination pills.
type Dots struct {
	Pills []layout.Pill `json:"pills"`
	Color color.NRGBA   `json:"color"`
}

// Watermark paints a bitmap stretched exactly into Rect.
type Watermark struct {
	Src     string      `json:"src"`
	Rect    layout.Rect `json:"rect"`
	Opacity float64     `json:"opacity"`
}

// Icon paints a bitmap into Rect, recolored when Tint is set.
type Icon struct {
	Src  string       `json:"src"`
	Rect layout.Rect  `json:"rect"`
	Tint *color.NRGBA `json:"tint,omitempty"`
}

func (*Fill) Kind() string      { return "fill" }
func (*Image) Kind() string     { return "image" }
func (*Gradient) Kind() string  { return "gradient" }
func (*Glow) Kind() string      { return "glow" }
func (*Ring) Kind() string      { return "ring" }
func (*Frame) Kind() string     { return "frame" }
func (*Pill) Kind() string      { return "pill" }
func (*Text) Kind() string      { return "text" }
func (*Dots) Kind() string      { return "dots" }
func (*Watermark) Kind() string { return "watermark" }
func (*Icon) Kind() string      { return "icon" }
