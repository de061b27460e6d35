// SPDX-License-Identifier: MPL-2.0

package locator

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultVirtualEnvTimeout bounds a single virtual environment probe.
const DefaultVirtualEnvTimeout = 10 * time.Second

type (
	// probeWorker runs blocking filesystem checks against virtual
	// environments on a single background goroutine. A job that outlives its
	// timeout is abandoned together with the goroutine running it; the next
	// job starts a fresh worker. Abandoned workers exit once their job
	// returns.
	probeWorker struct {
		mu   sync.Mutex
		jobs chan probeJob
		quit chan struct{}
	}

	probeJob struct {
		ctx  context.Context
		fn   func(context.Context) (string, error)
		done chan probeJobResult
	}

	probeJobResult struct {
		path string
		err  error
	}
)

// Do runs fn on the worker and waits at most timeout for its result.
func (w *probeWorker) Do(ctx context.Context, timeout time.Duration, fn func(context.Context) (string, error)) (string, error) {
	jobs := w.acquire()

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	job := probeJob{ctx: runCtx, fn: fn, done: make(chan probeJobResult, 1)}

	select {
	case jobs <- job:
	case <-runCtx.Done():
		w.abandon(jobs)
		return "", probeDoneErr(ctx, timeout)
	}

	select {
	case r := <-job.done:
		return r.path, r.err
	case <-runCtx.Done():
		w.abandon(jobs)
		return "", probeDoneErr(ctx, timeout)
	}
}

// Close stops the current worker, if any.
func (w *probeWorker) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.jobs != nil {
		close(w.quit)
		w.jobs, w.quit = nil, nil
	}
}

func (w *probeWorker) acquire() chan probeJob {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.jobs == nil {
		w.jobs = make(chan probeJob)
		w.quit = make(chan struct{})
		go runProbeWorker(w.jobs, w.quit)
	}
	return w.jobs
}

// abandon drops the worker that owns jobs. It is a no-op when that worker
// was already replaced.
func (w *probeWorker) abandon(jobs chan probeJob) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.jobs == jobs {
		close(w.quit)
		w.jobs, w.quit = nil, nil
	}
}

func runProbeWorker(jobs <-chan probeJob, quit <-chan struct{}) {
	for {
		select {
		case <-quit:
			return
		case job := <-jobs:
			path, err := job.fn(job.ctx)
			job.done <- probeJobResult{path: path, err: err}
		}
	}
}

func probeDoneErr(parent context.Context, timeout time.Duration) error {
	if err := parent.Err(); err != nil {
		return err
	}
	return fmt.Errorf("%w after %s", ErrProbeTimeout, timeout)
}
