package render

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"io"
	"log/slog"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/xob0t/poststencil/pkg/fonts"
	"github.com/xob0t/poststencil/pkg/imageload"
	"github.com/xob0t/poststencil/pkg/layout"
	"github.com/xob0t/poststencil/pkg/state"
)

const (
	photoRef = "https://img.example.test/photo.jpg"
	insetRef = "https://img.example.test/inset.jpg"
	logoRef  = "https://img.example.test/logo.png"
)

func faces(t *testing.T) *fonts.FaceCache {
	t.Helper()
	m := fonts.New(fonts.Options{
		Offline:  true,
		CacheDir: t.TempDir(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	fc := m.NewFaceCache()
	t.Cleanup(fc.Close)
	return fc
}

func solidImage(w, h int, c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func testImages() imageload.Cache {
	return imageload.Cache{
		photoRef: solidImage(40, 50, red),
		insetRef: solidImage(30, 30, blue),
		logoRef:  solidImage(200, 100, color.NRGBA{R: 255, G: 255, B: 255, A: 255}),
	}
}

// withImages points every image field at the test bitmaps and shows the
// watermarks.
func withImages(st *state.State) *state.State {
	p := &st.Post
	p.Style.Image.Src = photoRef
	p.T2.Image.Src = photoRef
	p.T3.Backdrop.Src = photoRef
	p.T3.Inset.Src = insetRef
	p.T4.Image.Src = photoRef
	p.T5.Image.Src = photoRef
	p.T6.Image.Src = photoRef
	for _, w := range []*state.Watermark{&p.Style.Watermark, &p.T2.Watermark, &p.T3.Watermark, &p.T4.Watermark, &p.T5.Watermark, &p.T6.Watermark} {
		w.Show = true
		w.Src = logoRef
	}
	st.Highlight.Icon = logoRef
	return st
}

func TestLayerOrder(t *testing.T) {
	tests := []struct {
		template string
		want     []string
	}{
		{state.TemplateStyle, []string{"fill", "image", "gradient", "pill", "text", "text", "text", "dots", "watermark"}},
		{state.TemplateT2, []string{"fill", "image", "fill", "fill", "text", "text", "text", "dots", "watermark"}},
		{state.TemplateT3, []string{"fill", "image", "fill", "glow", "image", "ring", "text", "text", "dots", "watermark"}},
		{state.TemplateT4, []string{"fill", "image", "gradient", "pill", "text", "text", "dots", "watermark"}},
		{state.TemplateT5, []string{"fill", "text", "image", "frame", "text", "dots", "watermark"}},
		{state.TemplateT6, []string{"fill", "image", "pill", "text", "text", "text", "dots", "watermark"}},
		{"unknown", []string{"fill", "image", "gradient", "pill", "text", "text", "text", "dots", "watermark"}},
	}
	fc := faces(t)
	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			st := withImages(state.Default())
			st.Post.Template = tt.template
			p := Build(st, state.ModePost, testImages(), fc)
			if got := p.Kinds(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("kinds = %v\nwant    %v", got, tt.want)
			}
		})
	}
}

func TestUnknownTemplateFallsBackToStyle(t *testing.T) {
	st := state.Default()
	st.Post.Template = "t9"
	if got := ActiveTemplate(st); got != state.TemplateStyle {
		t.Errorf("ActiveTemplate = %q", got)
	}
	if p := Build(st, state.ModePost, nil, faces(t)); p.Template != state.TemplateStyle {
		t.Errorf("plan template = %q", p.Template)
	}
}

func TestMissingImagesOmitLayers(t *testing.T) {
	tests := []struct {
		template string
		want     []string
	}{
		{state.TemplateStyle, []string{"fill", "gradient", "pill", "text", "text", "text", "dots"}},
		{state.TemplateT3, []string{"fill", "fill", "glow", "ring", "text", "text", "dots"}},
		// The photo box keeps a placeholder so the frame has something to sit on.
		{state.TemplateT5, []string{"fill", "text", "fill", "frame", "text", "dots"}},
	}
	fc := faces(t)
	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			st := withImages(state.Default())
			st.Post.Template = tt.template
			// Refs are set but nothing loaded.
			p := Build(st, state.ModePost, nil, fc)
			if got := p.Kinds(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("kinds = %v\nwant    %v", got, tt.want)
			}
		})
	}
}

func TestCanvasSize(t *testing.T) {
	fc := faces(t)
	for _, tt := range []struct {
		mode state.Mode
		w, h int
	}{
		{state.ModePost, 1080, 1350},
		{state.ModeHighlight, 1080, 1080},
	} {
		img := Render(state.Default(), tt.mode, nil, fc)
		if b := img.Bounds(); b.Dx() != tt.w || b.Dy() != tt.h {
			t.Errorf("%s: size = %dx%d, want %dx%d", tt.mode, b.Dx(), b.Dy(), tt.w, tt.h)
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	fc := faces(t)
	for _, tmpl := range state.Templates {
		st := withImages(state.Default())
		st.Post.Template = tmpl
		a := Render(st, state.ModePost, testImages(), fc)
		b := Render(st, state.ModePost, testImages(), fc)
		if !bytes.Equal(a.Pix, b.Pix) {
			t.Errorf("%s: two renders differ", tmpl)
		}
	}
}

func textLayers(p *Plan) []*Text {
	var out []*Text
	for _, l := range p.Layers {
		if tl, ok := l.(*Text); ok {
			out = append(out, tl)
		}
	}
	return out
}

func TestBottomBlockMovesAsUnit(t *testing.T) {
	fc := faces(t)
	build := func(bottom float64, headline string) []*Text {
		st := state.Default()
		st.Post.Style.Bottom = bottom
		if headline != "" {
			st.Post.Style.Headline.Text = headline
		}
		return textLayers(Build(st, state.ModePost, nil, fc))
	}

	base := build(110, "")
	raised := build(210, "")
	if len(base) != 3 || len(raised) != 3 {
		t.Fatalf("text layers = %d, %d", len(base), len(raised))
	}
	for i := range base {
		if d := raised[i].Block.Y - base[i].Block.Y; math.Abs(d+100) > 1e-6 {
			t.Errorf("layer %d moved %v, want -100", i, d)
		}
	}

	// A longer headline grows upward; the last line stays pinned.
	long := build(110, "A MUCH LONGER HEADLINE THAT WILL CERTAINLY NEED SEVERAL MORE LINES TO FIT")
	if len(long[0].Lines) <= len(base[0].Lines) {
		t.Fatalf("long headline lines = %d, base = %d", len(long[0].Lines), len(base[0].Lines))
	}
	if math.Abs(long[2].Block.Y-base[2].Block.Y) > 1e-6 {
		t.Errorf("swipe baseline moved: %v != %v", long[2].Block.Y, base[2].Block.Y)
	}
	if long[0].Block.Y >= base[0].Block.Y {
		t.Errorf("headline did not grow upward: %v >= %v", long[0].Block.Y, base[0].Block.Y)
	}
}

func TestNewsStackAnchoredBottom(t *testing.T) {
	fc := faces(t)
	pill := func(bottom float64) *Pill {
		st := state.Default()
		st.Post.Template = state.TemplateT4
		st.Post.T4.Bottom = bottom
		for _, l := range Build(st, state.ModePost, nil, fc).Layers {
			if p, ok := l.(*Pill); ok {
				return p
			}
		}
		t.Fatal("no category pill")
		return nil
	}
	a, b := pill(110), pill(210)
	if d := b.Rect.Y - a.Rect.Y; math.Abs(d+100) > 1e-6 {
		t.Errorf("category moved %v, want -100", d)
	}
}

func TestWatermarkAnchoredRight(t *testing.T) {
	st := withImages(state.Default())
	st.Post.Style.Watermark.PosX = 92
	st.Post.Style.Watermark.PosY = 50
	p := Build(st, state.ModePost, testImages(), faces(t))

	var wm *Watermark
	for _, l := range p.Layers {
		if w, ok := l.(*Watermark); ok {
			wm = w
		}
	}
	if wm == nil {
		t.Fatal("no watermark layer")
	}
	// 160px wide logo of aspect 2:1.
	wantX := 1080 - 1080*0.08 - 160
	wantY := 1350*0.5 - 40
	if math.Abs(wm.Rect.X-wantX) > 1e-9 || math.Abs(wm.Rect.Y-wantY) > 1e-9 || wm.Rect.H != 80 {
		t.Errorf("watermark rect = %+v, want x=%v y=%v h=80", wm.Rect, wantX, wantY)
	}
}

func TestPaintedPixels(t *testing.T) {
	fc := faces(t)

	st := withImages(state.Default())
	st.Post.Style.Watermark.Show = false
	img := Render(st, state.ModePost, testImages(), fc)
	if got := img.RGBAAt(600, 100); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("style photo pixel = %v, want red", got)
	}

	st.Post.Template = state.TemplateT3
	img = Render(st, state.ModePost, testImages(), fc)
	cy := int(1350 * 0.36)
	if got := img.RGBAAt(540, cy); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("t3 inset center = %v, want blue", got)
	}
	if got := img.RGBAAt(4, 4); got.B == 255 && got.R == 0 {
		t.Errorf("t3 corner %v shows the inset", got)
	}
}

func TestHighlightTint(t *testing.T) {
	st := withImages(state.Default())
	st.Highlight.Tint = true
	st.Highlight.IconColor = "#FF0000"
	img := Render(st, state.ModeHighlight, testImages(), faces(t))
	if got := img.RGBAAt(540, 540); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("tinted icon center = %v, want red", got)
	}
}

func TestPlanJSON(t *testing.T) {
	st := withImages(state.Default())
	p := Build(st, state.ModePost, testImages(), faces(t))
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Mode     string `json:"mode"`
		Template string `json:"template"`
		Width    int    `json:"width"`
		Height   int    `json:"height"`
		Layers   []struct {
			Kind  string          `json:"kind"`
			Layer json.RawMessage `json:"layer"`
		} `json:"layers"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Mode != "post" || decoded.Template != "style" || decoded.Width != 1080 || decoded.Height != 1350 {
		t.Errorf("header = %+v", decoded)
	}
	if len(decoded.Layers) != len(p.Layers) {
		t.Fatalf("layers = %d, want %d", len(decoded.Layers), len(p.Layers))
	}
	for i, l := range decoded.Layers {
		if l.Kind != p.Layers[i].Kind() || len(l.Layer) == 0 {
			t.Errorf("layer %d = %q %s", i, l.Kind, l.Layer)
		}
	}
}

func TestGlowBlurs(t *testing.T) {
	if got := glowBlurs(60, 3); !reflect.DeepEqual(got, []float64{60, 30, 15}) {
		t.Errorf("glowBlurs = %v", got)
	}
	if got := glowBlurs(60, 0); len(got) != 0 {
		t.Errorf("glowBlurs(0 layers) = %v", got)
	}
}

func TestGlowRegionClipped(t *testing.T) {
	bounds := image.Rect(0, 0, 1080, 1350)
	tests := []struct {
		name   string
		radius float64
		blur   float64
		want   image.Rectangle
	}{
		{"inside", 100, 10, image.Rect(420, 420, 660, 660)},
		{"oversized disc", 1e6, 10, bounds.Inset(-20)},
		{"oversized blur", 100, 1e6, image.Rect(-910, -910, 1990, 1990)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := glowRegion(layout.Point{X: 540, Y: 540}, tt.radius, tt.blur, 1080, 1350)
			if got != tt.want {
				t.Errorf("glowRegion = %v, want %v", got, tt.want)
			}
		})
	}
	if got := glowRegion(layout.Point{X: -5000, Y: 540}, 100, 10, 1080, 1350); !got.Empty() {
		t.Errorf("offscreen glow region = %v, want empty", got)
	}
}

func TestOversizedGlowBounded(t *testing.T) {
	p := &Plan{Width: 200, Height: 200, Layers: []Layer{&Glow{
		Center:  layout.Point{X: 100, Y: 100},
		Radius:  5e5,
		Color:   red,
		Blurs:   []float64{4},
		Opacity: 1,
	}}}
	start := time.Now()
	img := Paint(p, nil, nil)
	if d := time.Since(start); d > 5*time.Second {
		t.Errorf("oversized glow took %v", d)
	}
	if got := img.RGBAAt(100, 100); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("glow center = %v, want red", got)
	}
}

func TestOversizedInsetRenders(t *testing.T) {
	st, err := state.Decode([]byte(`{"post": {"template": "t3", "t3": {"insetSize": 5000}}}`))
	if err != nil {
		t.Fatal(err)
	}
	start := time.Now()
	img := Render(withImages(st), state.ModePost, testImages(), faces(t))
	if d := time.Since(start); d > 10*time.Second {
		t.Errorf("render took %v", d)
	}
	if b := img.Bounds(); b.Dx() != 1080 || b.Dy() != 1350 {
		t.Errorf("canvas = %v", b)
	}
}

func TestFade(t *testing.T) {
	src := solidImage(2, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 200})
	got := fade(src, 0.5).(*image.NRGBA).NRGBAAt(1, 1)
	if want := (color.NRGBA{R: 10, G: 20, B: 30, A: 100}); got != want {
		t.Errorf("fade(0.5) = %v, want %v", got, want)
	}
	if fade(src, 1) != src {
		t.Error("fade(1) copied the bitmap")
	}
	if got := fade(src, -1).(*image.NRGBA).NRGBAAt(0, 0); got.A != 0 {
		t.Errorf("fade(-1) alpha = %d, want 0", got.A)
	}
}

func TestTintKeepsAlpha(t *testing.T) {
	src := solidImage(2, 2, color.NRGBA{R: 200, G: 200, B: 200, A: 128})
	got := tint(src, color.NRGBA{G: 255, A: 255}).(*image.NRGBA).NRGBAAt(0, 1)
	if want := (color.NRGBA{G: 255, A: 128}); got != want {
		t.Errorf("tint = %v, want %v", got, want)
	}
}
