package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xob0t/poststencil/pkg/generator"
	"github.com/xob0t/poststencil/pkg/imageload"
)

// ///////////////////////////////////////////////
// Load
// ///////////////////////////////////////////////

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:   "empty file keeps defaults",
			config: "",
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				if !reflect.DeepEqual(cfg, DefaultConfig()) {
					t.Errorf("cfg = %+v, want defaults", cfg)
				}
			},
		},
		{
			name: "partial override preserves other defaults",
			config: `
[images]
timeout = "3s"
direct_hosts = ["*.example.com"]

[export]
format = "jpeg"
`,
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				if cfg.Images.Timeout.Duration != 3*time.Second {
					t.Errorf("Timeout = %v", cfg.Images.Timeout)
				}
				if !reflect.DeepEqual(cfg.Images.DirectHosts, []string{"*.example.com"}) {
					t.Errorf("DirectHosts = %v", cfg.Images.DirectHosts)
				}
				if !reflect.DeepEqual(cfg.Images.Proxies, imageload.DefaultProxies) {
					t.Errorf("Proxies = %v, want defaults", cfg.Images.Proxies)
				}
				if cfg.Export.JPEGQuality != 92 || cfg.Server.Addr != "127.0.0.1:8080" {
					t.Errorf("defaults lost: %+v %+v", cfg.Export, cfg.Server)
				}
				if enc := cfg.Encoding(); enc.Format != generator.FormatJPEG || enc.Quality != 92 {
					t.Errorf("Encoding = %+v", enc)
				}
			},
		},
		{
			name: "proxy chain replaced in order",
			config: `
[images]
proxies = ["https://b.test/?u={url}", "https://a.test/{raw}"]
`,
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				opts := cfg.LoaderOptions(nil)
				var names []string
				for _, s := range opts.Strategies {
					names = append(names, s.Name())
				}
				if want := []string{"direct", "b.test", "a.test"}; !reflect.DeepEqual(names, want) {
					t.Errorf("strategies = %v, want %v", names, want)
				}
			},
		},
		{
			name: "font sources",
			config: `
[fonts]
offline = true

[fonts.sources]
Anton = "/opt/fonts/Anton.ttf"
`,
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				opts := cfg.FontOptions(nil)
				if !opts.Offline || opts.Sources["Anton"] != "/opt/fonts/Anton.ttf" {
					t.Errorf("FontOptions = %+v", opts)
				}
			},
		},
		{name: "malformed toml", config: "[images\n", wantErr: "parse config"},
		{name: "bad duration", config: "[images]\ntimeout = \"soon\"\n", wantErr: "invalid duration"},
		{name: "bad level", config: "[log]\nlevel = \"loud\"\n", wantErr: "log.level"},
		{name: "bad format", config: "[export]\nformat = \"gif\"\n", wantErr: "export.format"},
		{name: "bad quality", config: "[export]\njpeg_quality = 0\n", wantErr: "jpeg_quality"},
		{name: "proxy without placeholder", config: "[images]\nproxies = [\"https://p.test/\"]\n", wantErr: "images.proxies"},
		{name: "bad glob", config: "[images]\ndirect_hosts = [\"[a-\"]\n", wantErr: "direct_hosts"},
		{name: "zero timeout", config: "[images]\ntimeout = \"0s\"\n", wantErr: "images.timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.config))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Error("missing file did not yield defaults")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	cfg := DefaultConfig()
	cfg.Log.Level = "debug"
	cfg.Export.MinDuration = Duration{750 * time.Millisecond}
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `min_duration = "750ms"`) {
		t.Errorf("saved config:\n%s", data)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Log.Level != "debug" || got.Export.MinDuration != cfg.Export.MinDuration ||
		got.Server != cfg.Server || !reflect.DeepEqual(got.Images.Proxies, cfg.Images.Proxies) {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestDefaultsValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatal(err)
	}
}
