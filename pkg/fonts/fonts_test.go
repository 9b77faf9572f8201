package fonts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestParseGoogleFontSpec(t *testing.T) {
	tests := []struct {
		spec           string
		family, weight string
		ok             bool
	}{
		{"google:Inter:800", "Inter", "800", true},
		{"google:Bebas Neue:400", "Bebas Neue", "400", true},
		{"google:Inter", "", "", false},
		{"local:Inter:400", "", "", false},
		{"google::400", "", "", false},
	}
	for _, tt := range tests {
		f, w, ok := ParseGoogleFontSpec(tt.spec)
		if f != tt.family || w != tt.weight || ok != tt.ok {
			t.Errorf("ParseGoogleFontSpec(%q) = %q, %q, %v", tt.spec, f, w, ok)
		}
	}
}

func TestOfflineFallsBackToEmbedded(t *testing.T) {
	m := New(Options{Offline: true, CacheDir: t.TempDir(), Logger: quiet()})
	m.Ensure(context.Background(), Anton, "inter", "Comic Neue")
	for _, fam := range []string{Anton, Inter, "Comic Neue"} {
		if src := m.Source(fam); src != SourceEmbedded {
			t.Errorf("%s source = %q, want embedded", fam, src)
		}
	}
	face, err := m.Face(Anton, 48)
	if err != nil {
		t.Fatal(err)
	}
	defer face.Close()
	if h := face.Metrics().Height.Ceil(); h < 40 || h > 80 {
		t.Errorf("48px face height = %d", h)
	}
}

func TestEnsureDownloadsAndCaches(t *testing.T) {
	var cssHits, fontHits atomic.Int32
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/css2", func(w http.ResponseWriter, r *http.Request) {
		cssHits.Add(1)
		if !strings.HasPrefix(r.URL.Query().Get("family"), "Inter:wght@") {
			http.Error(w, "bad family", http.StatusBadRequest)
			return
		}
		fmt.Fprintf(w, "@font-face { src: url(%s/inter.ttf) format('truetype'); }", srv.URL)
	})
	mux.HandleFunc("/inter.ttf", func(w http.ResponseWriter, r *http.Request) {
		fontHits.Add(1)
		w.Write(goregular.TTF)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	m := New(Options{CacheDir: dir, CSSEndpoint: srv.URL + "/css2", Logger: quiet()})
	m.Ensure(context.Background(), Inter, Inter)
	if src := m.Source(Inter); src != SourceGoogle {
		t.Fatalf("source = %q, want google", src)
	}
	if cssHits.Load() != 1 || fontHits.Load() != 1 {
		t.Errorf("hits css=%d font=%d, want 1 each", cssHits.Load(), fontHits.Load())
	}
	if _, err := os.Stat(filepath.Join(dir, "Inter-400.ttf")); err != nil {
		t.Errorf("font not cached: %v", err)
	}

	again := New(Options{CacheDir: dir, Offline: true, Logger: quiet()})
	again.Ensure(context.Background(), Inter)
	if src := again.Source(Inter); src != SourceCache {
		t.Errorf("second manager source = %q, want cache", src)
	}
}

func TestLocalSourceOverride(t *testing.T) {
	p := filepath.Join(t.TempDir(), "mine.ttf")
	if err := os.WriteFile(p, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	m := New(Options{Offline: true, CacheDir: t.TempDir(), Sources: map[string]string{Anton: p}, Logger: quiet()})
	m.Ensure(context.Background(), Anton)
	if src := m.Source(Anton); src != SourceLocal {
		t.Errorf("source = %q, want local", src)
	}

	missing := New(Options{Offline: true, CacheDir: t.TempDir(), Sources: map[string]string{Anton: p + ".gone"}, Logger: quiet()})
	missing.Ensure(context.Background(), Anton)
	if src := missing.Source(Anton); src != SourceEmbedded {
		t.Errorf("missing local source = %q, want embedded", src)
	}
}

func TestFaceCacheReuses(t *testing.T) {
	m := New(Options{Offline: true, CacheDir: t.TempDir(), Logger: quiet()})
	c := m.NewFaceCache()
	defer c.Close()
	a := c.Face(Inter, 32)
	b := c.Face("inter", 32.001)
	if a == nil || a != b {
		t.Error("equal requests should share a face")
	}
	if c.Face(Inter, 40) == a {
		t.Error("different sizes should not share a face")
	}
}

func TestIsWOFF2(t *testing.T) {
	if !isWOFF2("x.WOFF2", nil) || !isWOFF2("x", []byte("wOF2rest")) || isWOFF2("x.ttf", goregular.TTF) {
		t.Error("WOFF2 detection wrong")
	}
}
