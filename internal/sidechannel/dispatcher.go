// Package sidechannel runs best-effort work whose failure must never reach the caller.
package sidechannel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/onyxandcode/onyx-site/pkg/logging"
)

// Task is one unit of best-effort work.
type Task func(ctx context.Context) error

// Observer records task outcomes. *metrics.SiteMetrics satisfies it.
type Observer interface {
	ObserveSideChannel(task string, ok bool, seconds float64)
}

// Dispatcher runs tasks detached from the caller's cancellation. A task error or
// panic is logged and counted, never returned.
type Dispatcher struct {
	logger   *logging.Logger
	observer Observer
	inline   bool
	wg       sync.WaitGroup
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithInline makes Go run tasks on the calling goroutine.
func WithInline(inline bool) Option {
	return func(d *Dispatcher) { d.inline = inline }
}

// WithObserver attaches an outcome observer.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) { d.observer = o }
}

// NewDispatcher creates a dispatcher. Tasks run on their own goroutine unless WithInline(true).
func NewDispatcher(logger *logging.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	d := &Dispatcher{logger: logger}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Go dispatches task under name. The task context keeps ctx's values but not its
// deadline or cancellation, so a finished HTTP request does not abort it.
func (d *Dispatcher) Go(ctx context.Context, name string, task Task) {
	if task == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	if d.inline {
		d.run(detached, name, task)
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run(detached, name, task)
	}()
}

// Wait blocks until every dispatched task has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// WaitContext waits for in-flight tasks or until ctx is done.
func (d *Dispatcher) WaitContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run(ctx context.Context, name string, task Task) {
	start := time.Now()
	err := safeCall(ctx, task)
	elapsed := time.Since(start)
	if d.observer != nil {
		d.observer.ObserveSideChannel(name, err == nil, elapsed.Seconds())
	}
	if err != nil {
		d.logger.Warn("side-channel task failed",
			"task", name,
			"error", err,
			"duration_ms", elapsed.Milliseconds(),
		)
		return
	}
	d.logger.Debug("side-channel task completed", "task", name, "duration_ms", elapsed.Milliseconds())
}

func safeCall(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sidechannel: task panicked: %v", r)
		}
	}()
	return task(ctx)
}
