// fonts.go - Font catalog with local, Google Fonts and embedded sources.
// Every family resolves to something: when neither a local file nor a
// download is available, an embedded Go font stands in.
package fonts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/sync/errgroup"
)

// Family names of the catalog.
const (
	Anton           = "Anton"
	BebasNeue       = "Bebas Neue"
	Montserrat      = "Montserrat"
	Inter           = "Inter"
	PlayfairDisplay = "Playfair Display"
)

// Where a resolved font came from.
const (
	SourceLocal    = "local"
	SourceCache    = "cache"
	SourceGoogle   = "google"
	SourceEmbedded = "embedded"
)

// Entry describes one catalog family.
type Entry struct {
	Google   string // google:FAMILY:WEIGHT
	Fallback []byte // embedded TTF used when nothing else resolves
}

// Catalog is the fixed set of families the templates draw with.
var Catalog = map[string]Entry{
	Anton:           {Google: "google:Anton:400", Fallback: gobold.TTF},
	BebasNeue:       {Google: "google:Bebas Neue:400", Fallback: gobold.TTF},
	Montserrat:      {Google: "google:Montserrat:700", Fallback: gobold.TTF},
	Inter:           {Google: "google:Inter:400", Fallback: goregular.TTF},
	PlayfairDisplay: {Google: "google:Playfair Display:700", Fallback: gomedium.TTF},
}

// Options configures a Manager.
type Options struct {
	// Sources overrides a family's source: a local file path or a
	// google:FAMILY:WEIGHT spec.
	Sources     map[string]string
	CacheDir    string
	Offline     bool // never download
	CSSEndpoint string
	Timeout     time.Duration
	Logger      *slog.Logger
}

// Manager resolves families once and hands out faces.
type Manager struct {
	opts   Options
	log    *slog.Logger
	client *retryablehttp.Client

	mu      sync.RWMutex
	fonts   map[string]*opentype.Font
	sources map[string]string
}

// New creates a font manager. Nothing is resolved until Ensure or Face.
func New(opts Options) *Manager {
	if opts.CSSEndpoint == "" {
		opts.CSSEndpoint = googleCSSEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.CacheDir == "" {
		opts.CacheDir = DefaultCacheDir()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 250 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = opts.Timeout
	client.Logger = log.With("component", "fonts")

	return &Manager{
		opts:    opts,
		log:     log,
		client:  client,
		fonts:   make(map[string]*opentype.Font),
		sources: make(map[string]string),
	}
}

// DefaultCacheDir returns the per-user font cache directory.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "poststencil", "fonts")
}

// Ensure resolves the given families concurrently. It never fails: a
// family that cannot be loaded falls back to an embedded face and is
// logged.
func (m *Manager) Ensure(ctx context.Context, families ...string) {
	var g errgroup.Group
	seen := make(map[string]struct{}, len(families))
	for _, fam := range families {
		fam = canonical(fam)
		if _, dup := seen[fam]; dup || m.resolved(fam) {
			continue
		}
		seen[fam] = struct{}{}
		g.Go(func() error {
			m.resolve(ctx, fam)
			return nil
		})
	}
	_ = g.Wait()
}

// Source reports where family was resolved from, or "" before Ensure.
func (m *Manager) Source(family string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sources[canonical(family)]
}

func (m *Manager) resolved(family string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.fonts[family]
	return ok
}

func (m *Manager) resolve(ctx context.Context, family string) *opentype.Font {
	f, src := m.load(ctx, family)
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.fonts[family]; ok {
		return prev
	}
	m.fonts[family] = f
	m.sources[family] = src
	m.log.Debug("font resolved", "family", family, "source", src)
	return f
}

// load walks the source chain: local file, Google Fonts, embedded.
func (m *Manager) load(ctx context.Context, family string) (*opentype.Font, string) {
	entry, known := Catalog[family]
	spec := entry.Google
	if override, ok := m.opts.Sources[family]; ok && override != "" {
		if _, _, isGoogle := ParseGoogleFontSpec(override); isGoogle {
			spec = override
		} else if f, err := loadLocal(override); err == nil {
			return f, SourceLocal
		} else {
			m.log.Warn("local font unavailable", "family", family, "path", override, "error", err)
		}
	}

	if spec != "" {
		data, src, err := m.fetchGoogle(ctx, spec)
		if err == nil {
			var f *opentype.Font
			if f, err = opentype.Parse(data); err == nil {
				return f, src
			}
		}
		m.log.Warn("font unavailable, using embedded fallback", "family", family, "error", err)
	}

	fallback := goregular.TTF
	if known {
		fallback = entry.Fallback
	} else {
		m.log.Warn("font family not in catalog", "family", family)
	}
	f, err := opentype.Parse(fallback)
	if err != nil {
		// Embedded fonts always parse.
		panic(fmt.Sprintf("parse embedded font: %v", err))
	}
	return f, SourceEmbedded
}

func loadLocal(p string) (*opentype.Font, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	data, err = maybeConvertWOFF2(p, data)
	if err != nil {
		return nil, err
	}
	return opentype.Parse(data)
}

// Face returns a face of family at sizePx CSS pixels. Unresolved families
// are resolved on demand without network access.
func (m *Manager) Face(family string, sizePx float64) (font.Face, error) {
	family = canonical(family)
	m.mu.RLock()
	f, ok := m.fonts[family]
	m.mu.RUnlock()
	if !ok {
		ctx, cancel := context.WithCancel(context.Background())
		cancel() // resolve offline
		f = m.resolve(ctx, family)
	}
	// At 72 DPI one point is one pixel.
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s face: %w", family, err)
	}
	return face, nil
}

func canonical(family string) string {
	family = strings.TrimSpace(family)
	for name := range Catalog {
		if strings.EqualFold(name, family) {
			return name
		}
	}
	return family
}
