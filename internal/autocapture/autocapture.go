// Package autocapture re-captures a fixed screen region on an interval.
package autocapture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/scrcap/internal/capture"
	"github.com/example/scrcap/internal/logger"
)

// ErrDisabled is returned by Tick once a capture has failed.
var ErrDisabled = errors.New("auto capture disabled")

// Source captures a root rectangle. *capture.Capturer implements it.
type Source interface {
	CaptureRootRegion(rect image.Rectangle, includeCursor bool) (capture.Result, error)
}

// Options configures a Runner.
type Options struct {
	Rect          image.Rectangle
	Interval      time.Duration
	IncludeCursor bool
	// OnCapture receives every non-empty capture. A returned error disables the runner.
	OnCapture func(capture.Result) error
	// OnFailure is called once, with the error that disabled the runner.
	OnFailure func(error)
}

// Runner performs periodic captures. Ticks never overlap.
type Runner struct {
	mu       sync.Mutex
	src      Source
	opts     Options
	disabled bool
	count    int
	log      *zerolog.Logger
}

// New returns a runner capturing opts.Rect from src.
func New(src Source, opts Options) (*Runner, error) {
	if opts.Interval <= 0 {
		return nil, fmt.Errorf("auto capture interval must be positive, got %s", opts.Interval)
	}
	if opts.Rect.Empty() {
		return nil, fmt.Errorf("auto capture region is empty")
	}
	return &Runner{src: src, opts: opts, log: logger.WithComponent("autocapture")}, nil
}

// Enabled reports whether the runner still accepts ticks.
func (r *Runner) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.disabled
}

// Count returns the number of captures delivered.
func (r *Runner) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Tick performs one capture. An empty capture is skipped and retried on the
// next tick. Any error disables the runner and is reported to OnFailure.
func (r *Runner) Tick() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disabled {
		return ErrDisabled
	}
	res, err := r.src.CaptureRootRegion(r.opts.Rect, r.opts.IncludeCursor)
	if err != nil {
		return r.fail(fmt.Errorf("auto capture %v: %w", r.opts.Rect, err))
	}
	if res.Empty() {
		r.log.Debug().Stringer("rect", r.opts.Rect).Msg("empty capture, retrying next tick")
		return nil
	}
	if r.opts.OnCapture != nil {
		if err := r.opts.OnCapture(res); err != nil {
			return r.fail(fmt.Errorf("auto capture output: %w", err))
		}
	}
	r.count++
	r.log.Debug().Int("count", r.count).Msg("captured")
	return nil
}

func (r *Runner) fail(err error) error {
	r.disabled = true
	r.log.Error().Err(err).Msg("auto capture disabled")
	if r.opts.OnFailure != nil {
		r.opts.OnFailure(err)
	}
	return err
}

// Run captures immediately and then on every interval until ctx is done or a
// capture fails. A capture in progress is never interrupted.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()

	r.log.Info().
		Stringer("rect", r.opts.Rect).
		Dur("interval", r.opts.Interval).
		Msg("auto capture started")

	if err := r.Tick(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Tick(); err != nil {
				return err
			}
		}
	}
}
