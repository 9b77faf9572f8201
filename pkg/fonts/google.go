// google.go - Download fonts from the Google Fonts CSS API.
//
// Specs use the form "google:FAMILY:WEIGHT" (e.g. "google:Inter:800").
// Downloads are converted to SFNT and cached on disk.
package fonts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tdewolff/font"
	"github.com/xob0t/poststencil/pkg/generator"
)

const googleCSSEndpoint = "https://fonts.googleapis.com/css2"

// fontURLRe extracts the font file URL from the CSS response.
var fontURLRe = regexp.MustCompile(`url\((https?://[^)]+)\)`)

// ParseGoogleFontSpec splits "google:Family:Weight".
func ParseGoogleFontSpec(spec string) (family, weight string, ok bool) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 || parts[0] != "google" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// cacheFile is the cached SFNT path for a spec.
func (m *Manager) cacheFile(family, weight string) string {
	name := strings.ReplaceAll(family, " ", "_")
	return filepath.Join(m.opts.CacheDir, fmt.Sprintf("%s-%s.ttf", name, weight))
}

// fetchGoogle returns SFNT bytes for spec, from the cache when present.
func (m *Manager) fetchGoogle(ctx context.Context, spec string) ([]byte, string, error) {
	family, weight, ok := ParseGoogleFontSpec(spec)
	if !ok {
		return nil, "", fmt.Errorf("invalid google font spec %q: expected google:FAMILY:WEIGHT", spec)
	}

	cache := m.cacheFile(family, weight)
	if data, err := os.ReadFile(cache); err == nil {
		return data, SourceCache, nil
	}
	if m.opts.Offline {
		return nil, "", fmt.Errorf("%s wght@%s not cached and downloads are disabled", family, weight)
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	cssURL := fmt.Sprintf("%s?family=%s:wght@%s", m.opts.CSSEndpoint, url.QueryEscape(family), weight)
	// A modern UA gets WOFF2, which is converted below.
	css, err := m.get(ctx, cssURL, 1<<20, "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")
	if err != nil {
		return nil, "", fmt.Errorf("fetch CSS for %s: %w", family, err)
	}
	match := fontURLRe.FindSubmatch(css)
	if match == nil {
		return nil, "", fmt.Errorf("no font URL in Google Fonts CSS for %s wght@%s", family, weight)
	}
	fontURL := string(match[1])

	data, err := m.get(ctx, fontURL, 10<<20, "")
	if err != nil {
		return nil, "", fmt.Errorf("download %s: %w", family, err)
	}
	if data, err = maybeConvertWOFF2(fontURL, data); err != nil {
		return nil, "", err
	}

	if err := os.MkdirAll(m.opts.CacheDir, 0o755); err != nil {
		m.log.Warn("font cache unavailable", "dir", m.opts.CacheDir, "error", err)
	} else if err := generator.WriteFile(cache, data); err != nil {
		m.log.Warn("failed to cache font", "file", cache, "error", err)
	}
	return data, SourceGoogle, nil
}

func (m *Manager) get(ctx context.Context, target string, limit int64, ua string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// maybeConvertWOFF2 converts WOFF2 data to SFNT when needed.
func maybeConvertWOFF2(name string, data []byte) ([]byte, error) {
	if !isWOFF2(name, data) {
		return data, nil
	}
	sfnt, err := font.ToSFNT(data)
	if err != nil {
		return nil, fmt.Errorf("convert woff2 to sfnt: %w", err)
	}
	return sfnt, nil
}

// isWOFF2 checks the extension or the "wOF2" magic.
func isWOFF2(name string, data []byte) bool {
	if strings.HasSuffix(strings.ToLower(name), ".woff2") {
		return true
	}
	return len(data) >= 4 && string(data[:4]) == "wOF2"
}
