// SPDX-License-Identifier: MPL-2.0

package locator

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// stubProbe stores a fixed path and counts its runs.
type stubProbe struct {
	cache  *DetectionCache
	domain Domain
	path   string
	runs   atomic.Int64
	// hold, when set, blocks Run until closed.
	hold    chan struct{}
	started chan struct{}
}

func (p *stubProbe) Domain() Domain { return p.domain }

func (p *stubProbe) Current() (DetectedPath, bool) { return p.cache.Read(p.domain) }

func (p *stubProbe) Run(context.Context) {
	p.runs.Add(1)
	if p.started != nil {
		close(p.started)
	}
	if p.hold != nil {
		<-p.hold
	}
	p.cache.store(p.domain, DetectedPath{Path: p.path})
}

func TestDetectionCache_Memoization(t *testing.T) {
	t.Parallel()

	var cleared atomic.Int64
	cache := NewDetectionCache(func() { cleared.Add(1) })
	probe := &stubProbe{cache: cache, domain: EnvironmentDomain(), path: "/usr/bin/enc"}

	if _, ok := cache.Read(probe.Domain()); ok {
		t.Fatal("Read() before probing reported a result")
	}

	if ran := cache.EnsureProbed(t.Context(), probe); !ran {
		t.Error("first EnsureProbed() did not run the probe")
	}
	if ran := cache.EnsureProbed(t.Context(), probe); ran {
		t.Error("second EnsureProbed() ran the probe again")
	}
	if got := probe.runs.Load(); got != 1 {
		t.Errorf("probe runs = %d, want 1", got)
	}

	first, ok := cache.Read(probe.Domain())
	if !ok || first.Path != "/usr/bin/enc" {
		t.Fatalf("Read() = %+v, %v; want /usr/bin/enc, true", first, ok)
	}
	second, _ := cache.Read(probe.Domain())
	if first != second {
		t.Errorf("consecutive reads differ: %+v vs %+v", first, second)
	}

	cache.Clear()
	if cleared.Load() != 1 {
		t.Errorf("onClear calls = %d, want 1", cleared.Load())
	}
	if _, ok := cache.Read(probe.Domain()); ok {
		t.Error("Read() after Clear() still reports a result")
	}

	cache.EnsureProbed(t.Context(), probe)
	if got := probe.runs.Load(); got != 2 {
		t.Errorf("probe runs after Clear() = %d, want 2", got)
	}
}

func TestDetectionCache_ConcurrentEnsureProbedRunsOnce(t *testing.T) {
	t.Parallel()

	cache := NewDetectionCache(nil)
	probe := &stubProbe{cache: cache, domain: SystemDefaultPathsDomain(), path: "/usr/bin/enc"}

	const callers = 32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for range callers {
		wg.Go(func() {
			<-start
			cache.EnsureProbed(t.Context(), probe)
		})
	}
	close(start)
	wg.Wait()

	if got := probe.runs.Load(); got != 1 {
		t.Errorf("probe runs = %d, want 1", got)
	}
}

func TestDetectionCache_ReadDoesNotWaitForProbe(t *testing.T) {
	t.Parallel()

	cache := NewDetectionCache(nil)
	probe := &stubProbe{
		cache:   cache,
		domain:  EnvironmentDomain(),
		path:    "/usr/bin/enc",
		hold:    make(chan struct{}),
		started: make(chan struct{}),
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		cache.EnsureProbed(context.Background(), probe)
	}()
	<-probe.started

	read := make(chan bool, 1)
	go func() {
		_, ok := cache.Read(probe.Domain())
		read <- ok
	}()

	select {
	case ok := <-read:
		if ok {
			t.Error("Read() during a running probe reported a result")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Read() blocked on a running probe")
	}

	close(probe.hold)
	<-done
	if _, ok := cache.Read(probe.Domain()); !ok {
		t.Error("Read() after the probe finished reported no result")
	}
}

func TestDetectionCache_Snapshot(t *testing.T) {
	t.Parallel()

	cache := NewDetectionCache(nil)
	cache.store(EnvironmentDomain(), DetectedPath{Path: "/bin/enc"})
	cache.store(VirtualEnvironmentDomain("Ubuntu"), nothingFound)

	snap := cache.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot() has %d entries, want 2", len(snap))
	}
	snap[SystemDefaultPathsDomain()] = DetectedPath{Path: "/x"}
	if _, ok := cache.Read(SystemDefaultPathsDomain()); ok {
		t.Error("mutating the snapshot changed the cache")
	}
}
