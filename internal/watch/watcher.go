// SPDX-License-Identifier: MPL-2.0

// Package watch reports debounced changes to a fixed set of directories.
//
// Each Target names one directory (watched non-recursively) and the
// doublestar patterns its file names must match. Events arriving within the
// debounce window are coalesced so the callback fires once with every changed
// path, tagged with the label of the target it belongs to.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is the quiet period before the callback fires. Editors
// commonly write a temp file and rename it over the original; both events
// land inside this window.
const defaultDebounce = 300 * time.Millisecond

// defaultIgnores lists file name patterns that never trigger callbacks.
var defaultIgnores = []string{
	"*.swp",
	"*.swo",
	"*~",
	".#*",
	".DS_Store",
}

// ErrNoTargets is returned by New when no target directory could be watched.
var ErrNoTargets = errors.New("watch: no watchable directories")

type (
	// Target is a directory to watch.
	Target struct {
		// Label identifies the target in reported changes.
		Label string
		// Dir is the watched directory. Subdirectories are not watched.
		Dir string
		// Patterns are doublestar patterns matched against file base names
		// (e.g. "config.cue", "enc.exe"). An empty slice matches every
		// file that is not ignored.
		Patterns []string
		// Optional targets whose directory does not exist are skipped
		// instead of failing New.
		Optional bool
	}

	// Change is a single changed path.
	Change struct {
		Label string
		Path  string
	}

	// Config holds the parameters for a Watcher.
	Config struct {
		Targets []Target

		// Ignore are additional doublestar patterns for file names that never
		// trigger callbacks. They are merged with the built-in ignores.
		Ignore []string

		// Debounce is the quiet period after the last event before the callback
		// fires. Zero or negative values fall back to defaultDebounce.
		Debounce time.Duration

		// OnChange receives the deduplicated changes, sorted by label then
		// path. A nil callback is a no-op.
		OnChange func(ctx context.Context, changes []Change) error

		// Logger defaults to a stderr logger prefixed "watch".
		Logger *log.Logger
	}

	// Watcher fires a debounced callback when files in its targets change.
	// Run must be called exactly once; calling it a second time returns an
	// error.
	Watcher struct {
		fsw      *fsnotify.Watcher
		targets  []Target
		ignores  []string
		onChange func(ctx context.Context, changes []Change) error
		logger   *log.Logger
		debounce time.Duration
		started  atomic.Bool
	}
)

// New validates cfg, resolves every target directory to an absolute path and
// registers it with fsnotify.
func New(cfg Config) (*Watcher, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "watch"})
	}

	if err := validatePatterns(cfg.Ignore, "ignore"); err != nil {
		return nil, err
	}

	targets := make([]Target, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		if err := validatePatterns(t.Patterns, "watch"); err != nil {
			return nil, err
		}
		abs, err := filepath.Abs(t.Dir)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %q: %w", t.Dir, err)
		}
		t.Dir = abs
		targets = append(targets, t)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	ignores := make([]string, 0, len(defaultIgnores)+len(cfg.Ignore))
	ignores = append(ignores, defaultIgnores...)
	ignores = append(ignores, cfg.Ignore...)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		ignores:  ignores,
		onChange: cfg.OnChange,
		logger:   logger,
		debounce: debounce,
	}

	if err := w.addTargets(targets); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("close after init failure", "error", closeErr)
		}
		return nil, err
	}

	return w, nil
}

// Targets returns the targets actually being watched.
func (w *Watcher) Targets() []Target {
	return slices.Clone(w.targets)
}

// Run blocks until ctx is canceled, processing filesystem events and
// dispatching debounced callbacks. It returns nil on cancellation and
// propagates fatal watcher errors.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[Change]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire may run after ctx is canceled because it is scheduled with
	// time.AfterFunc. Only one callback runs at a time; a tick that finds
	// one in flight re-arms the timer so pending changes are not dropped.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("callback still running, deferring")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changes := make([]Change, 0, len(pending))
		for c := range pending {
			changes = append(changes, c)
		}
		clear(pending)
		mu.Unlock()

		slices.SortFunc(changes, func(a, b Change) int {
			if c := strings.Compare(a.Label, b.Label); c != 0 {
				return c
			}
			return strings.Compare(a.Path, b.Path)
		})

		if w.onChange != nil {
			if err := w.onChange(ctx, changes); err != nil {
				w.logger.Error("change callback failed", "error", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if closeErr := w.fsw.Close(); closeErr != nil {
			w.logger.Warn("close fsnotify", "error", closeErr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
				continue
			}
			c, ok := w.classify(evt.Name)
			if !ok {
				continue
			}
			w.logger.Debug("change", "label", c.Label, "path", c.Path, "op", evt.Op.String())

			mu.Lock()
			pending[c] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "error", err)
		}
	}
}

// addTargets registers each distinct target directory. Missing optional
// directories are skipped.
func (w *Watcher) addTargets(targets []Target) error {
	added := make(map[string]bool, len(targets))
	for _, t := range targets {
		info, err := os.Stat(t.Dir)
		switch {
		case err == nil && !info.IsDir():
			err = fmt.Errorf("%s is not a directory", t.Dir)
		case errors.Is(err, fs.ErrNotExist) && t.Optional:
			w.logger.Debug("skipping missing directory", "label", t.Label, "dir", t.Dir)
			continue
		}
		if err != nil {
			if t.Optional {
				w.logger.Warn("skipping unwatchable directory", "label", t.Label, "dir", t.Dir, "error", err)
				continue
			}
			return fmt.Errorf("watch: %s: %w", t.Label, err)
		}

		if !added[t.Dir] {
			if err := w.fsw.Add(t.Dir); err != nil {
				if !t.Optional {
					return fmt.Errorf("watch: add directory %q: %w", t.Dir, err)
				}
				w.logger.Warn("skipping unwatchable directory", "label", t.Label, "dir", t.Dir, "error", err)
				continue
			}
			added[t.Dir] = true
		}
		w.targets = append(w.targets, t)
	}

	if len(w.targets) == 0 {
		return ErrNoTargets
	}
	return nil
}

// classify maps an event path to the first target whose directory holds it
// and whose patterns match its base name.
func (w *Watcher) classify(path string) (Change, bool) {
	dir, name := filepath.Split(path)
	dir = filepath.Clean(dir)
	if w.isIgnored(name) {
		return Change{}, false
	}
	for _, t := range w.targets {
		if t.Dir == dir && matchesAny(t.Patterns, name, true) {
			return Change{Label: t.Label, Path: path}, true
		}
	}
	return Change{}, false
}

func (w *Watcher) isIgnored(name string) bool {
	return matchesAny(w.ignores, name, false)
}

// matchesAny reports whether name matches one of patterns; an empty pattern
// list yields emptyResult.
func matchesAny(patterns []string, name string, emptyResult bool) bool {
	if len(patterns) == 0 {
		return emptyResult
	}
	for _, pat := range patterns {
		if matched, err := doublestar.Match(pat, name); err == nil && matched {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

// validatePatterns checks that every pattern is a valid doublestar glob. The
// label (e.g. "watch" or "ignore") is used in error messages.
func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q", label, pat)
		}
	}
	return nil
}
