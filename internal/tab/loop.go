package tab

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/anstrom/scandeck/internal/logging"
)

// ErrLoopStopped is returned by Do once the loop has exited.
var ErrLoopStopped = stderrors.New("tab loop stopped")

// Loop is the single goroutine that owns a Notebook. A ticker polls running
// scans; Do runs other work between ticks.
type Loop struct {
	notebook *Notebook
	interval time.Duration
	calls    chan func()
	done     chan struct{}
	logger   *logging.Logger
}

// NewLoop creates a loop polling every interval.
func NewLoop(nb *Notebook, interval time.Duration) *Loop {
	return &Loop{
		notebook: nb,
		interval: interval,
		calls:    make(chan func()),
		done:     make(chan struct{}),
		logger:   logging.Default().WithComponent("tab-loop"),
	}
}

// Run processes ticks and calls until ctx is done, then closes every tab.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	defer close(l.done)

	l.logger.Info("tab loop started", "interval", l.interval)
	for {
		select {
		case <-ctx.Done():
			l.notebook.CloseAll()
			l.logger.Info("tab loop stopped")
			return
		case <-ticker.C:
			l.notebook.TickAll()
		case fn := <-l.calls:
			fn()
		}
	}
}

// Do runs fn on the loop goroutine and returns its error.
func (l *Loop) Do(ctx context.Context, fn func(nb *Notebook) error) error {
	result := make(chan error, 1)
	call := func() { result <- fn(l.notebook) }

	select {
	case l.calls <- call:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
