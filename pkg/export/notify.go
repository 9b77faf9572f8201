package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xob0t/poststencil/pkg/state"
)

// Notifier receives user-facing outcome messages.
type Notifier interface {
	Success(msg string)
	Failure(msg string)
}

// StateProvider returns the state to export.
type StateProvider interface {
	CurrentState() *state.State
}

// ExportCurrent exports the provider's state and reports the outcome to n.
func (x *Exporter) ExportCurrent(ctx context.Context, sp StateProvider, mode state.Mode, n Notifier) (*Result, error) {
	st := sp.CurrentState()
	if st == nil {
		err := errors.New("no state to export")
		n.Failure(Message(err))
		return nil, err
	}
	res, err := x.Export(ctx, st, mode)
	if err != nil {
		n.Failure(Message(err))
		return nil, err
	}
	n.Success(fmt.Sprintf("Exported %s %dx%d", mode, res.Width, res.Height))
	return res, nil
}

// Message maps an export error to a message fit for the user.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrBusy):
		return "An export is already running. Please wait for it to finish."
	case errors.Is(err, ErrSerialize):
		return "The image could not be saved. One of the source images may be unusable; try replacing it."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Export cancelled."
	default:
		return "Export failed. Please try again."
	}
}

// LogNotifier writes outcomes to a logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Success(msg string) { l.logger().Info(msg) }
func (l LogNotifier) Failure(msg string) { l.logger().Error(msg) }

func (l LogNotifier) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

// StaticState provides a fixed state.
type StaticState struct{ State *state.State }

func (s StaticState) CurrentState() *state.State { return s.State }
