// SPDX-License-Identifier: MPL-2.0

package locator

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/enc4idea/enclocate/pkg/platform"
)

// DefaultToolName is the executable looked up when none is configured.
const DefaultToolName = "enc"

type (
	// DetectorOption configures a Detector.
	DetectorOption func(*Detector)

	// Detector resolves the tool executable by probing search domains in
	// priority order and memoizing each domain's result in a DetectionCache.
	Detector struct {
		cache           *DetectionCache
		fs              afero.Fs
		goos            string
		tool            string
		pathEnv         func() string
		winRoot         string
		venvs           VirtualEnvProvider
		scanVirtualEnvs bool
		virtualTimeout  time.Duration
		worker          *probeWorker
		logger          *log.Logger
		events          *listenerSet
	}
)

// WithFs sets the filesystem probes inspect.
func WithFs(fs afero.Fs) DetectorOption {
	return func(d *Detector) {
		d.fs = fs
	}
}

// WithGOOS sets the target operating system. It selects the executable name
// and the default install locations.
func WithGOOS(goos string) DetectorOption {
	return func(d *Detector) {
		d.goos = goos
	}
}

// WithToolName sets the base name of the executable.
func WithToolName(name string) DetectorOption {
	return func(d *Detector) {
		d.tool = name
	}
}

// WithPathEnv sets the source of the PATH value.
func WithPathEnv(fn func() string) DetectorOption {
	return func(d *Detector) {
		d.pathEnv = fn
	}
}

// WithWindowsRoot sets the drive root holding Program Files and cygwin.
func WithWindowsRoot(root string) DetectorOption {
	return func(d *Detector) {
		d.winRoot = root
	}
}

// WithVirtualEnvs sets the virtual environment provider. A nil provider
// disables virtual environments.
func WithVirtualEnvs(p VirtualEnvProvider) DetectorOption {
	return func(d *Detector) {
		if p == nil {
			p = noVirtualEnvs{}
		}
		d.venvs = p
	}
}

// WithVirtualEnvScan toggles probing every installed virtual environment
// when no environment hint is given.
func WithVirtualEnvScan(enabled bool) DetectorOption {
	return func(d *Detector) {
		d.scanVirtualEnvs = enabled
	}
}

// WithVirtualEnvTimeout bounds each virtual environment probe.
func WithVirtualEnvTimeout(timeout time.Duration) DetectorOption {
	return func(d *Detector) {
		if timeout > 0 {
			d.virtualTimeout = timeout
		}
	}
}

// WithLogger sets the detector logger.
func WithLogger(logger *log.Logger) DetectorOption {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDetector creates a detector for the current host. Options override the
// host defaults.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{
		fs:              afero.NewOsFs(),
		goos:            runtime.GOOS,
		tool:            DefaultToolName,
		pathEnv:         func() string { return os.Getenv("PATH") },
		winRoot:         defaultWindowsRoot(),
		venvs:           noVirtualEnvs{},
		scanVirtualEnvs: true,
		virtualTimeout:  DefaultVirtualEnvTimeout,
		worker:          &probeWorker{},
		logger:          log.NewWithOptions(os.Stderr, log.Options{Prefix: "locator"}),
		events:          &listenerSet{},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.cache = NewDetectionCache(func() { d.events.emit(EventDetectionInvalidated) })
	return d
}

// Executable returns the path of the executable.
//
// Without detectIfNeeded only cached results are consulted: the first domain
// with a concrete path wins, a domain that was not probed yet before any hit
// makes the result undetermined ("", false), and a fully probed miss returns
// the default executable name. With detectIfNeeded missing domains are
// probed in order until one yields a path.
func (d *Detector) Executable(ctx context.Context, hint *VirtualEnv, detectIfNeeded bool) (string, bool) {
	probes := d.Probes(hint)
	if path, ok := d.cached(probes); ok || !detectIfNeeded {
		return path, ok
	}

	path, ran := d.cache.probeInOrder(ctx, probes)
	if ran {
		d.events.emit(EventExecutableDetected)
	}
	if path == "" {
		return d.DefaultExecutable(), true
	}
	return path, true
}

// Detect forces detection. It never returns an empty path.
func (d *Detector) Detect(ctx context.Context, hint *VirtualEnv) string {
	path, _ := d.Executable(ctx, hint, true)
	return path
}

// Lookup is the error-returning form of a cached Executable call. It returns
// ErrNotYetDetected when the scan is undetermined and ErrNotFound when every
// domain was probed without a hit.
func (d *Detector) Lookup(hint *VirtualEnv) (string, error) {
	for _, p := range d.Probes(hint) {
		res, ok := p.Current()
		if !ok {
			return "", ErrNotYetDetected
		}
		if res.Found() {
			return res.Path, nil
		}
	}
	return "", ErrNotFound
}

func (d *Detector) cached(probes []Probe) (string, bool) {
	for _, p := range probes {
		res, ok := p.Current()
		if !ok {
			return "", false
		}
		if res.Found() {
			return res.Path, true
		}
	}
	return d.DefaultExecutable(), true
}

// Probes returns the probe sequence for hint in priority order: the hinted
// virtual environment, PATH, the default install locations and finally every
// virtual environment when no hint is given.
func (d *Detector) Probes(hint *VirtualEnv) []Probe {
	supported := d.venvs.Supported()

	probes := make([]Probe, 0, 4)
	if hint != nil && supported {
		probes = append(probes, &virtualEnvProbe{d: d, env: *hint})
	}
	probes = append(probes, &envProbe{d: d}, &systemProbe{d: d})
	if hint == nil && supported && d.scanVirtualEnvs {
		probes = append(probes, &allVirtualEnvsProbe{d: d})
	}
	return probes
}

// Clear invalidates every detection result.
func (d *Detector) Clear() {
	d.cache.Clear()
}

// Snapshot returns the raw per-domain results.
func (d *Detector) Snapshot() map[Domain]DetectedPath {
	return d.cache.Snapshot()
}

// DefaultExecutable is the bare executable name, resolved by the OS at
// launch time.
func (d *Detector) DefaultExecutable() string {
	return d.executableName()
}

// ToolName returns the configured base name of the executable.
func (d *Detector) ToolName() string {
	return d.tool
}

// VirtualEnvsSupported reports whether virtual environments are probed.
func (d *Detector) VirtualEnvsSupported() bool {
	return d.venvs.Supported()
}

// Subscribe registers fn for detection events and returns its unsubscribe
// function.
func (d *Detector) Subscribe(fn func(Event)) func() {
	return d.events.subscribe(fn)
}

// Close stops the virtual environment probe worker.
func (d *Detector) Close() {
	d.worker.Close()
}

func (d *Detector) executableName() string {
	return platform.ExecutableName(d.goos, d.tool)
}

func defaultWindowsRoot() string {
	if drive := os.Getenv("SystemDrive"); drive != "" {
		return drive + `\`
	}
	return `C:\`
}
