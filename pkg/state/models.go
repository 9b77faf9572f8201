// Package state holds the declarative render state: per-template post
// configuration and the highlight badge, with defaults for every field.
package state

import "fmt"

// ── Canvas ──

// Mode selects the output canvas.
type Mode string

const (
	ModePost      Mode = "post"
	ModeHighlight Mode = "highlight"
)

// Canonical output sizes. Renderers read these, never infer from content.
const (
	PostWidth       = 1080
	PostHeight      = 1350
	HighlightWidth  = 1080
	HighlightHeight = 1080
)

// Size returns the canvas dimensions for the mode.
func (m Mode) Size() (w, h int) {
	if m == ModeHighlight {
		return HighlightWidth, HighlightHeight
	}
	return PostWidth, PostHeight
}

// ParseMode accepts "post", "highlight" or "" (post).
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModePost:
		return ModePost, nil
	case ModeHighlight:
		return ModeHighlight, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Template names. The first is the default.
const (
	TemplateStyle = "style"
	TemplateT2    = "t2"
	TemplateT3    = "t3"
	TemplateT4    = "t4"
	TemplateT5    = "t5"
	TemplateT6    = "t6"
)

// Templates lists every post template in declaration order.
var Templates = []string{TemplateStyle, TemplateT2, TemplateT3, TemplateT4, TemplateT5, TemplateT6}

// KnownTemplate reports whether name is a post template.
func KnownTemplate(name string) bool {
	for _, t := range Templates {
		if t == name {
			return true
		}
	}
	return false
}

// ── State types ──

// State is the top-level render state.
type State struct {
	Post      Post      `json:"post"`
	Highlight Highlight `json:"highlight"`
}

// Post holds one configuration per template; Template picks the active one.
type Post struct {
	Template string `json:"template"`
	Style    Style  `json:"style"`
	T2       T2     `json:"t2"`
	T3       T3     `json:"t3"`
	T4       T4     `json:"t4"`
	T5       T5     `json:"t5"`
	T6       T6     `json:"t6"`
}

// ── Shared building blocks ──

// Image is a cover-fitted picture. Src is empty (skip), an http(s) URL or
// a data: URI.
type Image struct {
	Src     string  `json:"src"`
	PosX    float64 `json:"posX"`    // focal point, 0–100
	PosY    float64 `json:"posY"`    // focal point, 0–100
	Scale   float64 `json:"scale"`   // zoom in percent, 100 = fit
	Opacity float64 `json:"opacity"` // 0–100
}

// Headline is the wrapped, multi-color headline block.
type Headline struct {
	Text          string  `json:"text"`
	Font          string  `json:"font"`
	Size          float64 `json:"size"` // px
	Color         string  `json:"color"`
	BracketColor  string  `json:"bracketColor"` // [...]
	BracketAccent bool    `json:"bracketAccent"`
	BraceColor    string  `json:"braceColor"` // {...}
	BraceAccent   bool    `json:"braceAccent"`
	LineHeight    float64 `json:"lineHeight"`    // multiplier of Size
	LetterSpacing float64 `json:"letterSpacing"` // px per rune
	Align         string  `json:"align"`         // left, center, right, justify
	Shadow        bool    `json:"shadow"`
	// MaxWidth is the wrap budget in percent of the template's text area.
	MaxWidth float64 `json:"maxWidth"`
}

// Text is a single-color secondary line (caption, source, swipe, author).
type Text struct {
	Show          bool    `json:"show"`
	Text          string  `json:"text"`
	Font          string  `json:"font"`
	Size          float64 `json:"size"`
	Color         string  `json:"color"`
	LetterSpacing float64 `json:"letterSpacing"`
	Uppercase     bool    `json:"uppercase"`
}

// Badge is text on a pill background sized to the text.
type Badge struct {
	Show    bool    `json:"show"`
	Text    string  `json:"text"`
	Font    string  `json:"font"`
	Size    float64 `json:"size"`
	Color   string  `json:"color"`
	BgColor string  `json:"bgColor"`
	PadX    float64 `json:"padX"`
	PadY    float64 `json:"padY"`
	Radius  float64 `json:"radius"`
}

// GradientStop is one color stop of a vertical gradient.
type GradientStop struct {
	Pos   float64 `json:"pos"` // 0–100 along the gradient
	Color string  `json:"color"`
}

// Gradient is a vertical legibility overlay spanning Start%..End% of the
// canvas height.
type Gradient struct {
	Show  bool           `json:"show"`
	Start float64        `json:"start"`
	End   float64        `json:"end"`
	Stops []GradientStop `json:"stops"`
}

// Overlay is a flat color wash.
type Overlay struct {
	Show    bool    `json:"show"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"` // 0–100
}

// Glow is a box-shadow style halo made of blurred layers.
type Glow struct {
	Show    bool    `json:"show"`
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`   // px of the outermost layer
	Layers  int     `json:"layers"` // layer count, halving blur each time
	Opacity float64 `json:"opacity"`
}

// Ring is a stroked circle or frame border.
type Ring struct {
	Show  bool    `json:"show"`
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

// Dots is the pagination indicator.
type Dots struct {
	Show   bool    `json:"show"`
	Count  int     `json:"count"`
	Active int     `json:"active"`
	Color  string  `json:"color"`
	Bottom float64 `json:"bottom"` // px from the canvas bottom to the pills
}

// Watermark is a percent-anchored logo with an aspect-locked width.
type Watermark struct {
	Show    bool    `json:"show"`
	Src     string  `json:"src"`
	Width   float64 `json:"width"` // px
	PosX    float64 `json:"posX"`  // may exceed 100
	PosY    float64 `json:"posY"`  // clamped to 0–100
	Opacity float64 `json:"opacity"`
}

// ── Templates ──

// Style is the full-bleed photo template with a bottom-anchored block.
type Style struct {
	BgColor   string    `json:"bgColor"`
	Image     Image     `json:"image"`
	Gradient  Gradient  `json:"gradient"`
	Brand     Badge     `json:"brand"`
	Headline  Headline  `json:"headline"`
	Caption   Text      `json:"caption"`
	Swipe     Text      `json:"swipe"`
	Padding   float64   `json:"padding"`
	Bottom    float64   `json:"bottom"` // px from the canvas bottom to the block
	Gap       float64   `json:"gap"`
	Dots      Dots      `json:"dots"`
	Watermark Watermark `json:"watermark"`
}

// T2 splits the canvas into a photo on top and a flat panel below.
type T2 struct {
	Split      float64   `json:"split"` // photo height in percent
	Image      Image     `json:"image"`
	PanelColor string    `json:"panelColor"`
	AccentBar  Bar       `json:"accentBar"`
	Headline   Headline  `json:"headline"`
	Caption    Text      `json:"caption"`
	Brand      Text      `json:"brand"`
	Padding    float64   `json:"padding"`
	Gap        float64   `json:"gap"`
	Dots       Dots      `json:"dots"`
	Watermark  Watermark `json:"watermark"`
}

// Bar is a solid accent rule.
type Bar struct {
	Show   bool    `json:"show"`
	Color  string  `json:"color"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// T3 puts a circular inset over a dimmed backdrop.
type T3 struct {
	BgColor   string    `json:"bgColor"`
	Backdrop  Image     `json:"backdrop"`
	Overlay   Overlay   `json:"overlay"`
	Inset     Image     `json:"inset"`
	InsetSize float64   `json:"insetSize"` // circle diameter, px
	InsetY    float64   `json:"insetY"`    // circle center, percent of height
	Glow      Glow      `json:"glow"`
	Ring      Ring      `json:"ring"`
	Headline  Headline  `json:"headline"`
	Caption   Text      `json:"caption"`
	Padding   float64   `json:"padding"`
	Gap       float64   `json:"gap"`
	Dots      Dots      `json:"dots"`
	Watermark Watermark `json:"watermark"`
}

// T4 is the news stack: category badge, headline and source stacked up
// from the bottom over a multi-stop gradient.
type T4 struct {
	BgColor   string    `json:"bgColor"`
	Image     Image     `json:"image"`
	Gradient  Gradient  `json:"gradient"`
	Category  Badge     `json:"category"`
	Headline  Headline  `json:"headline"`
	Source    Text      `json:"source"`
	Padding   float64   `json:"padding"`
	Bottom    float64   `json:"bottom"`
	Gap       float64   `json:"gap"`
	Dots      Dots      `json:"dots"`
	Watermark Watermark `json:"watermark"`
}

// T5 is a framed card: headline on top, photo filling the rest.
type T5 struct {
	BgColor   string    `json:"bgColor"`
	Headline  Headline  `json:"headline"`
	Image     Image     `json:"image"`
	Frame     Ring      `json:"frame"`
	Radius    float64   `json:"radius"`
	Caption   Text      `json:"caption"`
	Padding   float64   `json:"padding"`
	Gap       float64   `json:"gap"`
	Dots      Dots      `json:"dots"`
	Watermark Watermark `json:"watermark"`
}

// T6 is the typographic quote card.
type T6 struct {
	BgColor   string    `json:"bgColor"`
	Image     Image     `json:"image"`
	Overlay   Overlay   `json:"overlay"`
	Quote     Text      `json:"quote"` // the quote mark glyph
	Headline  Headline  `json:"headline"`
	Author    Text      `json:"author"`
	Brand     Badge     `json:"brand"`
	Padding   float64   `json:"padding"`
	Gap       float64   `json:"gap"`
	Dots      Dots      `json:"dots"`
	Watermark Watermark `json:"watermark"`
}

// Highlight is the square badge mode.
type Highlight struct {
	BgColor   string  `json:"bgColor"`
	RingColor string  `json:"ringColor"`
	RingWidth float64 `json:"ringWidth"` // px, 0 hides the ring
	Icon      string  `json:"icon"`      // image source
	IconSize  float64 `json:"iconSize"`  // percent of the canvas side
	IconColor string  `json:"iconColor"`
	Tint      bool    `json:"tint"` // recolor the icon's opaque pixels with IconColor
}
