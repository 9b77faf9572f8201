// Package export drives one render from state to encoded bytes: it gathers
// images and fonts, plans and paints the active template, and serializes the
// result. An Exporter runs at most one export at a time.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xob0t/poststencil/pkg/fonts"
	"github.com/xob0t/poststencil/pkg/generator"
	"github.com/xob0t/poststencil/pkg/imageload"
	"github.com/xob0t/poststencil/pkg/render"
	"github.com/xob0t/poststencil/pkg/state"
)

var (
	// ErrBusy rejects an export started while another is in flight.
	ErrBusy = errors.New("export already in progress")
	// ErrRender wraps a failure during layout or painting.
	ErrRender = errors.New("render failed")
	// ErrSerialize wraps a failure encoding the finished frame.
	ErrSerialize = errors.New("serialize failed")
)

// ImageLoader resolves image references for one export.
type ImageLoader interface {
	LoadAll(ctx context.Context, refs []string) imageload.Cache
}

// Options configures an Exporter.
type Options struct {
	Images   ImageLoader
	Fonts    *fonts.Manager
	Encoding generator.Config
	// MinDuration is a floor on wall time per export. Output is unaffected.
	MinDuration time.Duration
	Logger      *slog.Logger
}

// Exporter renders states. It is safe for concurrent use; overlapping
// calls to Export fail with ErrBusy.
type Exporter struct {
	opts Options
	log  *slog.Logger
	busy atomic.Bool
}

// Result is a finished export.
type Result struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
	Template    string
	Elapsed     time.Duration
}

// New creates an exporter. A nil Fonts uses an offline manager with
// embedded fallbacks; a nil Images uses a default loader.
func New(opts Options) *Exporter {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.Images == nil {
		opts.Images = imageload.New(imageload.Options{Logger: log})
	}
	if opts.Fonts == nil {
		opts.Fonts = fonts.New(fonts.Options{Offline: true, Logger: log})
	}
	return &Exporter{opts: opts, log: log.With("component", "export")}
}

// Busy reports whether an export is in flight.
func (x *Exporter) Busy() bool { return x.busy.Load() }

// Export renders st in mode and encodes it. It never emits partial output.
func (x *Exporter) Export(ctx context.Context, st *state.State, mode state.Mode) (*Result, error) {
	if !x.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer x.busy.Store(false)

	start := time.Now()
	images, err := x.prepare(ctx, st, mode)
	if err != nil {
		return nil, err
	}
	faces := x.opts.Fonts.NewFaceCache()
	defer faces.Close()

	plan, img, err := paint(st, mode, images, faces)
	if err != nil {
		x.log.Error("render failed", "mode", mode, "error", err)
		return nil, err
	}
	data, err := generator.EncodeBytes(img, x.opts.Encoding)
	if err != nil {
		x.log.Error("serialize failed", "mode", mode, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrSerialize, err)
	}

	if err := x.floor(ctx, start); err != nil {
		return nil, err
	}
	res := &Result{
		Data:        data,
		ContentType: x.contentType(),
		Width:       plan.Width,
		Height:      plan.Height,
		Template:    plan.Template,
		Elapsed:     time.Since(start),
	}
	x.log.Info("export finished", "mode", mode, "template", res.Template,
		"bytes", len(data), "elapsed", res.Elapsed.Round(time.Millisecond))
	return res, nil
}

// Layout resolves images and fonts and returns the plan without painting.
// It does not take the export slot.
func (x *Exporter) Layout(ctx context.Context, st *state.State, mode state.Mode) (*render.Plan, error) {
	images, err := x.prepare(ctx, st, mode)
	if err != nil {
		return nil, err
	}
	faces := x.opts.Fonts.NewFaceCache()
	defer faces.Close()
	return build(st, mode, images, faces)
}

// prepare fetches images and ensures fonts concurrently and waits for both.
func (x *Exporter) prepare(ctx context.Context, st *state.State, mode state.Mode) (imageload.Cache, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	refs := st.ImageRefs(mode)
	families := st.Fonts(mode)

	var images imageload.Cache
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		images = x.opts.Images.LoadAll(gctx, refs)
		return nil
	})
	g.Go(func() error {
		x.opts.Fonts.Ensure(gctx, families...)
		return nil
	})
	_ = g.Wait()
	x.log.Debug("sources ready", "images", len(images), "refs", len(refs), "fonts", len(families))
	return images, ctx.Err()
}

// paint plans and draws, turning a panic into ErrRender.
// build is Build with the same panic guard as paint.
func build(st *state.State, mode state.Mode, images imageload.Cache, faces render.FaceSource) (plan *render.Plan, err error) {
	defer func() {
		if r := recover(); r != nil {
			plan, err = nil, fmt.Errorf("%w: %v", ErrRender, r)
		}
	}()
	return render.Build(st, mode, images, faces), nil
}

func paint(st *state.State, mode state.Mode, images imageload.Cache, faces render.FaceSource) (plan *render.Plan, img *image.RGBA, err error) {
	defer func() {
		if r := recover(); r != nil {
			plan, img = nil, nil
			err = fmt.Errorf("%w: %v", ErrRender, r)
		}
	}()
	plan = render.Build(st, mode, images, faces)
	img = render.Paint(plan, images, faces)
	return plan, img, nil
}

func (x *Exporter) floor(ctx context.Context, start time.Time) error {
	wait := x.opts.MinDuration - time.Since(start)
	if wait <= 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (x *Exporter) contentType() string {
	f := x.opts.Encoding.Format
	if f == "" {
		f = generator.FormatPNG
	}
	return f.ContentType()
}
