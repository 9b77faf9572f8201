package state

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xob0t/poststencil/pkg/imageload"
)

func TestDefaultIsNormalized(t *testing.T) {
	st := Default()
	before, _ := json.Marshal(st)
	st.Normalize()
	after, _ := json.Marshal(st)
	if !bytes.Equal(before, after) {
		t.Error("Normalize changed the defaults")
	}
	if w := Validate(Default()); len(w) != 0 {
		t.Errorf("defaults produce warnings: %v", w)
	}
}

func TestDecodeKeepsDefaults(t *testing.T) {
	st, err := Decode([]byte(`{"post":{"template":"t3","t3":{"headline":{"text":"hi"}}}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if st.Post.Template != TemplateT3 {
		t.Errorf("template = %q", st.Post.Template)
	}
	h := st.Post.T3.Headline
	if h.Text != "hi" {
		t.Errorf("text = %q", h.Text)
	}
	def := Default().Post.T3.Headline
	if h.Size != def.Size || h.Font != def.Font || h.Color != def.Color {
		t.Errorf("absent fields lost their defaults: %+v", h)
	}
}

func TestDecodeZeroPercentSurvives(t *testing.T) {
	st, err := Decode([]byte(`{"post":{"style":{"image":{"posX":0,"posY":100},"watermark":{"posX":130}}}}`))
	if err != nil {
		t.Fatal(err)
	}
	if st.Post.Style.Image.PosX != 0 || st.Post.Style.Image.PosY != 100 {
		t.Errorf("focal = %v,%v", st.Post.Style.Image.PosX, st.Post.Style.Image.PosY)
	}
	if st.Post.Style.Watermark.PosX != 130 {
		t.Errorf("watermark posX clamped to %v; horizontal overflow must survive", st.Post.Style.Watermark.PosX)
	}
}

func TestNormalizeRepairs(t *testing.T) {
	st, err := Decode([]byte(`{
		"post": {
			"template": "t9",
			"style": {
				"headline": {"size": -4, "color": "nope", "align": "sideways"},
				"image": {"scale": 0, "opacity": 250, "posX": -5},
				"gradient": {"stops": [{"pos": 80, "color": "#000"}, {"pos": 10, "color": "#fff"}, {"pos": 5, "color": "bad"}]}
			}
		},
		"highlight": {"iconSize": 400}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	s := st.Post.Style
	if st.Post.Template != TemplateStyle {
		t.Errorf("unknown template kept: %q", st.Post.Template)
	}
	if s.Headline.Size != def.Post.Style.Headline.Size || s.Headline.Color != def.Post.Style.Headline.Color {
		t.Errorf("headline not repaired: %+v", s.Headline)
	}
	if s.Headline.Align != def.Post.Style.Headline.Align {
		t.Errorf("align = %q", s.Headline.Align)
	}
	if s.Image.Scale != 100 || s.Image.Opacity != 100 || s.Image.PosX != 0 {
		t.Errorf("image = %+v", s.Image)
	}
	if len(s.Gradient.Stops) != 2 || s.Gradient.Stops[0].Pos != 10 {
		t.Errorf("stops not filtered and sorted: %+v", s.Gradient.Stops)
	}
	if st.Highlight.IconSize != 100 {
		t.Errorf("icon size = %v, want 100", st.Highlight.IconSize)
	}
}

func TestNormalizeClamps(t *testing.T) {
	st, err := Decode([]byte(`{
		"post": {
			"style": {"image": {"scale": 50}},
			"t2": {"image": {"scale": 180}},
			"t3": {"insetSize": 5000, "glow": {"blur": 1e6}}
		}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := st.Post.Style.Image.Scale; got != 100 {
		t.Errorf("scale 50 normalized to %v, want 100", got)
	}
	if got := st.Post.T2.Image.Scale; got != 180 {
		t.Errorf("scale 180 normalized to %v, want 180", got)
	}
	if got := st.Post.T3.InsetSize; got != PostWidth {
		t.Errorf("inset size = %v, want %v", got, PostWidth)
	}
	if got := st.Post.T3.Glow.Blur; got != PostWidth {
		t.Errorf("glow blur = %v, want %v", got, PostWidth)
	}
}

func TestApplyData(t *testing.T) {
	st := Default()
	if err := ApplyData(st, []byte(`{"post":{"t4":{"source":{"text":"AP"}}}}`)); err != nil {
		t.Fatal(err)
	}
	if st.Post.T4.Source.Text != "AP" {
		t.Errorf("override not applied")
	}
	if st.Post.T4.Category.Text != Default().Post.T4.Category.Text {
		t.Errorf("untouched field changed")
	}
	if err := ApplyData(st, nil); err != nil {
		t.Errorf("empty data: %v", err)
	}
	if err := ApplyData(st, []byte(`{`)); err == nil {
		t.Error("malformed data should fail")
	}
}

func TestValidateWarnings(t *testing.T) {
	_, warnings, err := DecodeChecked([]byte(`{
		"post": {
			"template": "t9",
			"t2": {"panelColor": "#12"},
			"style": {"headline": {"text": "a [b {c}] d"}, "image": {"src": "/home/me/pic.png"}}
		}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(warnings, "\n")
	for _, want := range []string{"post.template", "post.t2.panelColor", "post.style.headline.text", "post.style.image.src"} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing warning for %s in:\n%s", want, joined)
		}
	}
}

func TestImageRefsAndFonts(t *testing.T) {
	st := Default()
	st.Post.Template = TemplateT3
	st.Post.T3.Backdrop.Src = "https://x.test/a.jpg"
	st.Post.T3.Inset.Src = "https://x.test/a.jpg"
	st.Post.T3.Watermark.Src = "https://x.test/logo.png"
	if refs := st.ImageRefs(ModePost); len(refs) != 1 {
		t.Errorf("refs = %v, want the shared photo once and no hidden watermark", refs)
	}
	st.Post.T3.Watermark.Show = true
	if refs := st.ImageRefs(ModePost); len(refs) != 2 {
		t.Errorf("refs = %v", refs)
	}
	st.Highlight.Icon = "data:image/png;base64,AA=="
	if refs := st.ImageRefs(ModeHighlight); len(refs) != 1 {
		t.Errorf("highlight refs = %v", refs)
	}
	fonts := st.Fonts(ModePost)
	if len(fonts) != 2 || fonts[0] != FontMontserrat || fonts[1] != FontInter {
		t.Errorf("fonts = %v", fonts)
	}
}

func TestModeSize(t *testing.T) {
	if w, h := ModePost.Size(); w != PostWidth || h != PostHeight {
		t.Errorf("post = %dx%d", w, h)
	}
	if w, h := ModeHighlight.Size(); w != h {
		t.Errorf("highlight not square: %dx%d", w, h)
	}
	if _, err := ParseMode("story"); err == nil {
		t.Error("unknown mode accepted")
	}
	if m, _ := ParseMode(""); m != ModePost {
		t.Errorf("empty mode = %q", m)
	}
}

func writeBundle(t *testing.T, files map[string][]byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "sample.psbundle")
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		w.Write(data)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLoadBundleInlinesAssets(t *testing.T) {
	p := writeBundle(t, map[string][]byte{
		"state.json":       []byte(`{"post":{"style":{"image":{"src":"assets/photo.png"},"watermark":{"src":"https://x.test/w.png"}}}}`),
		"assets/photo.png": tinyPNG(t),
	})
	st, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	src := st.Post.Style.Image.Src
	if imageload.Classify(src) != imageload.KindEmbedded || !strings.HasPrefix(src, "data:image/png;base64,") {
		t.Errorf("asset not inlined: %.40s", src)
	}
	if st.Post.Style.Watermark.Src != "https://x.test/w.png" {
		t.Errorf("remote ref rewritten: %q", st.Post.Style.Watermark.Src)
	}
}

func TestLoadBundleErrors(t *testing.T) {
	tests := map[string]map[string][]byte{
		"missing state": {"assets/a.png": tinyPNG(t)},
		"missing asset": {"state.json": []byte(`{"post":{"t2":{"image":{"src":"assets/nope.png"}}}}`)},
		"zip slip":      {"state.json": []byte(`{}`), "../evil.png": tinyPNG(t)},
	}
	for name, files := range tests {
		if _, err := LoadBundle(writeBundle(t, files)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestExampleJSONDecodes(t *testing.T) {
	stateJSON, dataJSON := ExampleJSON()
	st, err := Decode([]byte(stateJSON))
	if err != nil {
		t.Fatalf("example state: %v", err)
	}
	if err := ApplyData(st, []byte(dataJSON)); err != nil {
		t.Fatalf("example data: %v", err)
	}
	if st.Post.Template != TemplateT4 || st.Post.T4.Category.Text != "UPDATE" {
		t.Errorf("example data not applied: %+v", st.Post.T4.Category)
	}
}

func TestDecodeResolved(t *testing.T) {
	doc := []byte(`{"post":{"style":{"image":{"src":"asset:1"}}}}`)
	uri := imageload.EncodeDataURI("image/png", []byte("png"))
	st, warnings, err := DecodeResolved(doc, func(ref string) (string, error) {
		if ref == "asset:1" {
			return uri, nil
		}
		return ref, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	if st.Post.Style.Image.Src != uri {
		t.Errorf("src = %q", st.Post.Style.Image.Src)
	}

	if _, warnings, _ := DecodeChecked(doc); len(warnings) != 1 {
		t.Errorf("unresolved warnings = %v", warnings)
	}
}
