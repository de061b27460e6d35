// SPDX-License-Identifier: MPL-2.0

package locator

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

// DefaultVersionTimeout bounds a single `version` invocation.
const DefaultVersionTimeout = 30 * time.Second

type (
	// TestResult is the cached outcome of running `<executable> version`:
	// either a Version or an *ExecutionError / *ParseError.
	TestResult struct {
		Version Version
		Err     error
	}

	// TesterOption configures a VersionTester.
	TesterOption func(*VersionTester)

	// VersionTester runs executables to learn their version and caches the
	// outcome per Executable, failures included.
	VersionTester struct {
		runner  Runner
		goos    string
		timeout time.Duration
		logger  *log.Logger

		mu sync.RWMutex
		// epoch is bumped by every drop; runs that started in an older epoch
		// return their result without caching it.
		epoch   uint64
		results map[Executable]TestResult
		group   singleflight.Group
	}
)

// WithTesterGOOS sets the host OS used to classify version types.
func WithTesterGOOS(goos string) TesterOption {
	return func(t *VersionTester) {
		t.goos = goos
	}
}

// WithVersionTimeout bounds each version run.
func WithVersionTimeout(timeout time.Duration) TesterOption {
	return func(t *VersionTester) {
		if timeout > 0 {
			t.timeout = timeout
		}
	}
}

// WithTesterLogger sets the tester logger.
func WithTesterLogger(logger *log.Logger) TesterOption {
	return func(t *VersionTester) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewVersionTester creates a tester running executables through runner.
func NewVersionTester(runner Runner, opts ...TesterOption) *VersionTester {
	t := &VersionTester{
		runner:  runner,
		goos:    runtime.GOOS,
		timeout: DefaultVersionTimeout,
		logger:  log.NewWithOptions(os.Stderr, log.Options{Prefix: "locator"}),
		results: make(map[Executable]TestResult),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OK reports whether the result holds a version.
func (r TestResult) OK() bool {
	return r.Err == nil
}

// Cached returns the stored result for exe without running anything.
func (t *VersionTester) Cached(exe Executable) (TestResult, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.results[exe]
	return r, ok
}

// Result returns the cached result for exe, running the executable on a miss.
// Concurrent callers for the same executable share one run. A result produced
// after ctx is done is returned but not stored.
func (t *VersionTester) Result(ctx context.Context, exe Executable) TestResult {
	if r, ok := t.Cached(exe); ok {
		return r
	}

	v, _, _ := t.group.Do(groupKey(exe), func() (any, error) {
		t.mu.RLock()
		r, ok := t.results[exe]
		epoch := t.epoch
		t.mu.RUnlock()
		if ok {
			return r, nil
		}

		r = t.test(ctx, exe)
		if ctx.Err() != nil {
			return r, nil
		}

		t.mu.Lock()
		if t.epoch == epoch {
			t.results[exe] = r
		}
		t.mu.Unlock()
		return r, nil
	})
	return v.(TestResult)
}

// Drop forgets the result for exe.
func (t *VersionTester) Drop(exe Executable) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.results, exe)
	t.epoch++
}

// DropAll forgets every result.
func (t *VersionTester) DropAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.results)
	t.epoch++
}

func (t *VersionTester) test(ctx context.Context, exe Executable) TestResult {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exe.Command("version")
	t.logger.Debug("testing executable", "command", cmd.String())

	res, err := t.runner.Run(ctx, cmd)
	if err != nil {
		return TestResult{Version: NullVersion, Err: &ExecutionError{Executable: exe, Cause: err}}
	}

	output := res.Combined()
	v, ok := ParseVersionOutput(output, exe, t.goos)
	if !ok {
		return TestResult{Version: NullVersion, Err: &ParseError{Executable: exe, ExitCode: res.ExitCode, Output: output}}
	}
	return TestResult{Version: v}
}

func groupKey(exe Executable) string {
	return fmt.Sprintf("%d\x00%s\x00%s", exe.Kind, exe.EnvID, exe.Path)
}
