// SPDX-License-Identifier: MPL-2.0

package locator

import (
	"context"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/enc4idea/enclocate/internal/testutil"
	"github.com/enc4idea/enclocate/pkg/platform"
)

type (
	// countingFs counts Stat calls made by probes.
	countingFs struct {
		afero.Fs
		stats atomic.Int64
	}

	// blockingFs blocks every Stat under prefix until release is closed.
	blockingFs struct {
		afero.Fs
		prefix  string
		release chan struct{}
	}

	fakeVirtualEnvs struct {
		envs   []VirtualEnv
		root   func(VirtualEnv) string
		lists  atomic.Int64
		listFn func() ([]VirtualEnv, error)
	}

	fakeRunner struct {
		mu       sync.Mutex
		commands []Command
		result   ProcessResult
		err      error
		// gate, when set, blocks every run until closed.
		gate chan struct{}
	}

	fakeSettings struct {
		projects map[string]string
		global   string
	}

	recordingNotifier struct {
		mu       sync.Mutex
		errors   []string
		warnings []string
		expired  int
	}
)

func (fs *countingFs) Stat(name string) (os.FileInfo, error) {
	fs.stats.Add(1)
	return fs.Fs.Stat(name)
}

func (fs *blockingFs) Stat(name string) (os.FileInfo, error) {
	if strings.HasPrefix(name, fs.prefix) {
		<-fs.release
	}
	return fs.Fs.Stat(name)
}

func (v *fakeVirtualEnvs) Supported() bool { return true }

func (v *fakeVirtualEnvs) Installed(context.Context) ([]VirtualEnv, error) {
	v.lists.Add(1)
	if v.listFn != nil {
		return v.listFn()
	}
	return v.envs, nil
}

func (v *fakeVirtualEnvs) Root(env VirtualEnv) string {
	if v.root != nil {
		return v.root(env)
	}
	return "/wsl/" + env.ID
}

func (r *fakeRunner) Run(ctx context.Context, c Command) (ProcessResult, error) {
	r.mu.Lock()
	r.commands = append(r.commands, c)
	gate := r.gate
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return ProcessResult{}, err
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ProcessResult{}, ctx.Err()
		}
	}
	return r.result, r.err
}

func (r *fakeRunner) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.commands)
}

func (s fakeSettings) ProjectPath(dir string) (string, bool) {
	p, ok := s.projects[dir]
	return p, ok
}

func (s fakeSettings) GlobalPath() (string, bool) {
	return s.global, s.global != ""
}

func (n *recordingNotifier) ReportError(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

func (n *recordingNotifier) ReportWarning(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.warnings = append(n.warnings, msg)
}

func (n *recordingNotifier) ExpireNotifications() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.expired++
}

// newTestDetector returns a Linux detector over fs with an empty PATH.
func newTestDetector(fs afero.Fs, opts ...DetectorOption) *Detector {
	base := []DetectorOption{
		WithFs(fs),
		WithGOOS(platform.Linux),
		WithPathEnv(func() string { return "" }),
		WithLogger(testutil.DiscardLogger()),
	}
	return NewDetector(append(base, opts...)...)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}
