package imageload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-retryablehttp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/xob0t/poststencil/pkg/logger"
)

// ErrTainted marks a payload that fetched fine but cannot be used on the
// canvas: empty, oversized, or not an image.
var ErrTainted = errors.New("tainted image")

const (
	DefaultTimeout   = 8 * time.Second
	DefaultMaxPixels = 40_000_000
	DefaultMaxBytes  = 32 << 20
	loadConcurrency  = 8
)

// Options configures a Loader. Zero values take defaults.
type Options struct {
	Strategies  []Strategy
	Timeout     time.Duration // per attempt
	MaxPixels   int
	MaxBytes    int64
	RetryMax    int      // HTTP-level retries per attempt
	DirectHosts []string // doublestar globs; matching hosts skip the proxies
	Logger      *slog.Logger
	UserAgent   string
}

// Loader fetches and decodes images.
type Loader struct {
	client *retryablehttp.Client
	opts   Options
	log    *slog.Logger
}

// New creates a loader.
func New(opts Options) *Loader {
	if len(opts.Strategies) == 0 {
		opts.Strategies = Strategies(DefaultProxies)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = DefaultMaxPixels
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "poststencil"
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	client := retryablehttp.NewClient()
	client.RetryMax = max(opts.RetryMax, 0)
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = time.Second
	client.HTTPClient.Timeout = opts.Timeout
	client.Logger = log.With("component", "imageload")

	return &Loader{client: client, opts: opts, log: log}
}

// Load resolves ref to a bitmap, or nil when every avenue failed.
func (l *Loader) Load(ctx context.Context, ref string) image.Image {
	ref = strings.TrimSpace(ref)
	switch Classify(ref) {
	case KindEmbedded:
		img, err := l.loadEmbedded(ref)
		if err != nil {
			l.log.Warn("embedded image rejected", "error", err)
			return nil
		}
		return img
	case KindRemote:
		return l.loadRemote(ctx, ref)
	case KindInvalid:
		l.log.Warn("unsupported image reference", "ref", truncate(ref))
	}
	return nil
}

// LoadAll loads every distinct non-empty ref concurrently.
func (l *Loader) LoadAll(ctx context.Context, refs []string) Cache {
	cache := make(Cache, len(refs))
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(loadConcurrency)

	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		g.Go(func() error {
			img := l.Load(ctx, ref)
			mu.Lock()
			cache[ref] = img
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return cache
}

func (l *Loader) loadEmbedded(ref string) (image.Image, error) {
	mediaType, data, err := DecodeDataURI(ref)
	if err != nil {
		return nil, err
	}
	if mediaType == "text/plain" {
		// No declared type; sniff it.
		mediaType = ""
	}
	return l.decode(data, mediaType)
}

func (l *Loader) loadRemote(ctx context.Context, ref string) image.Image {
	chain := l.opts.Strategies
	if l.directOnly(ref) {
		chain = []Strategy{Direct{}}
	}
	for _, s := range chain {
		if ctx.Err() != nil {
			return nil
		}
		target := s.Rewrite(ref)
		logger.Trace(l.log, "image attempt", "strategy", s.Name(), "target", truncate(target))
		img, err := l.attempt(ctx, target)
		if err == nil {
			l.log.Debug("image loaded", "strategy", s.Name(), "url", truncate(ref))
			return img
		}
		l.log.Debug("image attempt failed", "strategy", s.Name(), "url", truncate(ref), "error", err)
	}
	l.log.Warn("image unavailable, layer skipped", "url", truncate(ref))
	return nil
}

// attempt performs one fetch with its own timeout.
func (l *Loader) attempt(ctx context.Context, target string) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", l.opts.UserAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, l.opts.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > l.opts.MaxBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrTainted, l.opts.MaxBytes)
	}
	return l.decode(data, resp.Header.Get("Content-Type"))
}

// decode applies the acceptance checks and decodes data.
func (l *Loader) decode(data []byte, contentType string) (image.Image, error) {
	if err := Accept(data, contentType, l.opts.MaxPixels); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

// Accept reports whether a payload may be drawn. It rejects empty bodies,
// non-image content types and images over maxPixels, all as ErrTainted.
func Accept(data []byte, contentType string, maxPixels int) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty body", ErrTainted)
	}
	mt := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if mt == "" || mt == "application/octet-stream" {
		mt = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mt, "image/") {
		return fmt.Errorf("%w: content type %q", ErrTainted, mt)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: empty image", ErrTainted)
	}
	if maxPixels > 0 && cfg.Width*cfg.Height > maxPixels {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTainted, cfg.Width, cfg.Height, maxPixels)
	}
	return nil
}

// directOnly reports whether ref's host matches a direct-host glob.
func (l *Loader) directOnly(ref string) bool {
	if len(l.opts.DirectHosts) == 0 {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, pattern := range l.opts.DirectHosts {
		matched, err := doublestar.Match(strings.ToLower(pattern), host)
		if err != nil {
			l.log.Warn("invalid glob pattern", "pattern", pattern, "error", err)
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

func truncate(s string) string {
	const limit = 96
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// Cache maps refs to decoded bitmaps for one export. A nil entry means the
// ref failed to load.
type Cache map[string]image.Image

// Get returns the bitmap for ref, or nil.
func (c Cache) Get(ref string) image.Image {
	if c == nil {
		return nil
	}
	return c[strings.TrimSpace(ref)]
}
