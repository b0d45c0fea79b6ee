// Package tasks runs best-effort side effects, such as seeding default
// categories or sending invite emails, outside the request that caused them.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrShuttingDown is logged for tasks submitted after Shutdown began.
var ErrShuttingDown = errors.New("task runner is shutting down")

// Recorder receives the outcome of every task run.
type Recorder interface {
	TaskFinished(task string, err error)
}

// Runner starts tasks on their own goroutine with a context detached from the
// caller and bounded by timeout. Failures and panics are logged, never
// propagated.
type Runner struct {
	timeout  time.Duration
	recorder Recorder

	mu       sync.Mutex
	closed   bool
	wg       sync.WaitGroup
	baseCtx  context.Context
	cancelFn context.CancelFunc
}

func NewRunner(timeout time.Duration, recorder Recorder) *Runner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		timeout:  timeout,
		recorder: recorder,
		baseCtx:  ctx,
		cancelFn: cancel,
	}
}

// Go schedules fn. It never blocks the caller.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		log.Warn().Str("task", name).Err(ErrShuttingDown).Msg("Background task dropped")
		r.finish(name, ErrShuttingDown)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		r.finish(name, r.run(name, fn))
	}()
}

func (r *Runner) run(name string, fn func(ctx context.Context) error) (err error) {
	ctx, cancel := context.WithTimeout(r.baseCtx, r.timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
			log.Error().Interface("panic", p).Str("task", name).Msg("Background task panicked")
		}
	}()

	start := time.Now()
	if err := fn(ctx); err != nil {
		log.Warn().Err(err).Str("task", name).Dur("duration", time.Since(start)).Msg("Background task failed")
		return err
	}

	log.Debug().Str("task", name).Dur("duration", time.Since(start)).Msg("Background task completed")
	return nil
}

func (r *Runner) finish(name string, err error) {
	if r.recorder != nil {
		r.recorder.TaskFinished(name, err)
	}
}

// Shutdown stops accepting tasks and waits for in-flight ones. When ctx ends
// first, running tasks are cancelled and ctx.Err() is returned.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancelFn()
		return nil
	case <-ctx.Done():
		r.cancelFn()
		return ctx.Err()
	}
}
