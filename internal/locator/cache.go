// SPDX-License-Identifier: MPL-2.0

package locator

import (
	"context"
	"maps"
	"sync"
)

// DetectionCache stores one DetectedPath per Domain.
//
// Two locks are involved. probeMu is the single process-wide probe mutex: it
// serializes every probe run and every Clear, so a domain is probed at most
// once until invalidated. mu only guards the entry map, so Read never waits
// for a running probe.
type DetectionCache struct {
	probeMu sync.Mutex
	mu      sync.RWMutex
	entries map[Domain]DetectedPath
	onClear func()
}

// NewDetectionCache returns an empty cache. onClear, when non-nil, is called
// after every Clear once the locks are released.
func NewDetectionCache(onClear func()) *DetectionCache {
	return &DetectionCache{
		entries: make(map[Domain]DetectedPath),
		onClear: onClear,
	}
}

// Read returns the stored result for d without probing. The boolean is false
// when d has not been probed since the last Clear.
func (c *DetectionCache) Read(d Domain) (DetectedPath, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.entries[d]
	return p, ok
}

// EnsureProbed runs p if its domain has no stored result yet. It reports
// whether the probe actually ran. Concurrent callers block on the probe mutex
// instead of duplicating work.
func (c *DetectionCache) EnsureProbed(ctx context.Context, p Probe) bool {
	c.probeMu.Lock()
	defer c.probeMu.Unlock()
	return c.ensureLocked(ctx, p)
}

// probeInOrder walks probes under the probe mutex, running the ones that were
// not probed yet, and stops at the first concrete path.
func (c *DetectionCache) probeInOrder(ctx context.Context, probes []Probe) (path string, ran bool) {
	c.probeMu.Lock()
	defer c.probeMu.Unlock()

	for _, p := range probes {
		if c.ensureLocked(ctx, p) {
			ran = true
		}
		if res, ok := p.Current(); ok && res.Found() {
			return res.Path, ran
		}
	}
	return "", ran
}

func (c *DetectionCache) ensureLocked(ctx context.Context, p Probe) bool {
	if _, ok := p.Current(); ok {
		return false
	}
	p.Run(ctx)
	return true
}

// Clear drops every stored result. The next EnsureProbed of any domain runs
// its probe again.
func (c *DetectionCache) Clear() {
	c.probeMu.Lock()
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
	c.probeMu.Unlock()

	if c.onClear != nil {
		c.onClear()
	}
}

// Snapshot returns a copy of all stored results.
func (c *DetectionCache) Snapshot() map[Domain]DetectedPath {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.entries)
}

// store records the result of a probe. Probes call it from Run, which always
// executes under probeMu.
func (c *DetectionCache) store(d Domain, p DetectedPath) {
	c.mu.Lock()
	c.entries[d] = p
	c.mu.Unlock()
}

// virtualResults returns the per-environment results probed so far.
func (c *DetectionCache) virtualResults() map[string]DetectedPath {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]DetectedPath)
	for d, p := range c.entries {
		if d.Kind == DomainVirtualEnvironment {
			out[d.EnvID] = p
		}
	}
	return out
}
