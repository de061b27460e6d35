// SPDX-License-Identifier: MPL-2.0

package locator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/enc4idea/enclocate/internal/issue"
)

type (
	// Settings supplies user-configured executable paths.
	Settings interface {
		// ProjectPath returns the override configured for the project rooted
		// at dir.
		ProjectPath(dir string) (string, bool)
		// GlobalPath returns the application-wide override.
		GlobalPath() (string, bool)
	}

	// Notifier surfaces problems to the user.
	Notifier interface {
		ReportError(msg string)
		ReportWarning(msg string)
	}

	// NotificationExpirer is implemented by notifiers that can retract the
	// messages they showed once the problem is gone.
	NotificationExpirer interface {
		ExpireNotifications()
	}

	// Project is the workspace a lookup is made for.
	Project struct {
		Dir string
		// Trusted projects may override the executable path.
		Trusted bool
		// Default marks the template project used outside any workspace; it
		// is always allowed to override.
		Default bool
	}

	// Dependencies are the collaborators of a Manager. Nil fields get host
	// defaults.
	Dependencies struct {
		Settings Settings
		Detector *Detector
		Tester   *VersionTester
		Notifier Notifier
		Policy   *Policy
		Logger   *log.Logger
	}

	// Manager is the entry point for callers: it combines configured
	// overrides, detection, version testing and the supported version policy.
	Manager struct {
		detector *Detector
		tester   *VersionTester
		notifier Notifier
		logger   *log.Logger
		events   *listenerSet

		mu       sync.RWMutex
		settings Settings
		policy   Policy
	}

	noSettings struct{}

	logNotifier struct {
		logger *log.Logger
	}
)

// NewManager wires a Manager from deps.
func NewManager(deps Dependencies) *Manager {
	logger := deps.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "locator"})
	}
	m := &Manager{
		detector: deps.Detector,
		tester:   deps.Tester,
		notifier: deps.Notifier,
		logger:   logger,
		events:   &listenerSet{},
		settings: deps.Settings,
		policy:   DefaultPolicy(),
	}
	if m.detector == nil {
		m.detector = NewDetector(WithLogger(logger))
	}
	if m.tester == nil {
		m.tester = NewVersionTester(NewExecRunner(), WithTesterLogger(logger))
	}
	if m.notifier == nil {
		m.notifier = logNotifier{logger: logger}
	}
	if m.settings == nil {
		m.settings = noSettings{}
	}
	if deps.Policy != nil {
		m.policy = *deps.Policy
	}
	m.detector.Subscribe(func(e Event) { m.events.emit(e.Kind) })
	return m
}

// PathToExecutable returns the executable path for project, forcing
// detection when needed. A nil project means no project context. The
// lookup order is the trusted project override, the global override, then
// detection; the bare executable name is the last resort.
func (m *Manager) PathToExecutable(ctx context.Context, project *Project) string {
	path, _ := m.pathToExecutable(ctx, project, true)
	return path
}

// CachedPathToExecutable is PathToExecutable without detection: it reports
// false when no override applies and detection has not completed yet.
func (m *Manager) CachedPathToExecutable(ctx context.Context, project *Project) (string, bool) {
	return m.pathToExecutable(ctx, project, false)
}

// DetectedExecutable returns the detected path, ignoring configured
// overrides. Without detectIfNeeded it reports false when detection has not
// completed yet.
func (m *Manager) DetectedExecutable(ctx context.Context, project *Project, detectIfNeeded bool) (string, bool) {
	return m.detector.Executable(ctx, m.projectVirtualEnv(project), detectIfNeeded)
}

// Executable returns the Executable used for project.
func (m *Manager) Executable(ctx context.Context, project *Project) Executable {
	return ParseExecutable(m.PathToExecutable(ctx, project))
}

// ExecutableFor maps a path to an Executable.
func (m *Manager) ExecutableFor(path string) Executable {
	return ParseExecutable(path)
}

// DropExecutableCache invalidates detection so the next lookup probes again.
func (m *Manager) DropExecutableCache() {
	m.detector.Clear()
}

// Version returns the cached version of the executable used for project.
// It never runs probes or processes; NullVersion means unknown for now.
func (m *Manager) Version(ctx context.Context, project *Project) Version {
	path, ok := m.pathToExecutable(ctx, project, false)
	if !ok {
		return NullVersion
	}
	return m.VersionOf(ParseExecutable(path))
}

// VersionOf returns the cached version of exe or NullVersion.
func (m *Manager) VersionOf(exe Executable) Version {
	r, ok := m.tester.Cached(exe)
	if !ok || !r.OK() {
		return NullVersion
	}
	return r.Version
}

// TryVersion is Version with an explicit "known" flag.
func (m *Manager) TryVersion(ctx context.Context, project *Project) (Version, bool) {
	v := m.Version(ctx, project)
	return v, !v.IsNull()
}

// VersionOrIdentify returns the cached version or identifies it, blocking.
// Identification failures yield NullVersion.
func (m *Manager) VersionOrIdentify(ctx context.Context, project *Project) Version {
	if v, ok := m.TryVersion(ctx, project); ok {
		return v
	}
	v, err := m.IdentifyVersion(ctx, m.Executable(ctx, project))
	if err != nil {
		m.logger.Debug("cannot identify version", "error", err)
		return NullVersion
	}
	return v
}

// IdentifyVersion runs exe (or reuses its cached result) and returns the
// version. Failures are *ToolNotInstalledError when the bare executable name
// could not be started, *VersionIdentificationError otherwise.
func (m *Manager) IdentifyVersion(ctx context.Context, exe Executable) (Version, error) {
	r := m.tester.Result(ctx, exe)
	if r.OK() {
		return r.Version, nil
	}

	idErr := VersionIdentificationError{Executable: exe, Cause: r.Err}
	var execErr *ExecutionError
	if !exe.IsVirtual() && exe.Path == m.detector.DefaultExecutable() &&
		errors.As(r.Err, &execErr) && isNoSuchFile(execErr.Cause) {
		return NullVersion, &ToolNotInstalledError{VersionIdentificationError: idErr}
	}
	return NullVersion, &idErr
}

// IdentifyVersionAt identifies the version of the executable at path.
func (m *Manager) IdentifyVersionAt(ctx context.Context, path string) (Version, error) {
	return m.IdentifyVersion(ctx, ParseExecutable(path))
}

// DropVersionCache forgets the version of exe.
func (m *Manager) DropVersionCache(exe Executable) {
	m.tester.Drop(exe)
	m.events.emit(EventVersionCacheDropped)
}

// DropAllVersionCaches forgets every version.
func (m *Manager) DropAllVersionCaches() {
	m.tester.DropAll()
	m.events.emit(EventVersionCacheDropped)
}

// TestVersionValid identifies the version used for project and checks it
// against the policy. Problems are reported through the notifier: failure
// to identify as an error, a too old version as a warning.
func (m *Manager) TestVersionValid(ctx context.Context, project *Project) bool {
	exe := m.Executable(ctx, project)

	v, err := m.IdentifyVersion(ctx, exe)
	if err != nil {
		m.notifier.ReportError(versionErrorMessage(exe, err))
		return false
	}

	policy := m.Policy()
	if !policy.IsSupported(v) {
		unsupported := &UnsupportedVersionError{Executable: exe, Version: v, Minimum: policy.Minimum()}
		m.notifier.ReportWarning(issue.NewErrorContext().
			WithOperation("validate "+m.detector.ToolName()+" version").
			WithResource(exe.String()).
			WithSuggestion(fmt.Sprintf("Upgrade %s to %s or newer", m.detector.ToolName(), policy.Minimum())).
			WithIssue(issue.UnsupportedVersionId).
			Wrap(unsupported).
			Build().
			Format(false))
		return false
	}

	if exp, ok := m.notifier.(NotificationExpirer); ok {
		exp.ExpireNotifications()
	}
	return true
}

// UpdateSettings installs new settings and policy, then drops every cache.
func (m *Manager) UpdateSettings(settings Settings, policy Policy) {
	if settings == nil {
		settings = noSettings{}
	}
	m.mu.Lock()
	m.settings = settings
	m.policy = policy
	m.mu.Unlock()

	m.events.emit(EventSettingsChanged)
	m.detector.Clear()
	m.DropAllVersionCaches()
}

// Policy returns the supported version policy.
func (m *Manager) Policy() Policy {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.policy
}

// Detector exposes the underlying detector.
func (m *Manager) Detector() *Detector {
	return m.detector
}

// Subscribe registers fn for every manager event and returns its
// unsubscribe function.
func (m *Manager) Subscribe(fn func(Event)) func() {
	return m.events.subscribe(fn)
}

func (m *Manager) pathToExecutable(ctx context.Context, project *Project, detectIfNeeded bool) (string, bool) {
	if path, ok := m.configuredPath(project); ok {
		return path, true
	}
	return m.detector.Executable(ctx, m.projectVirtualEnv(project), detectIfNeeded)
}

func (m *Manager) configuredPath(project *Project) (string, bool) {
	m.mu.RLock()
	settings := m.settings
	m.mu.RUnlock()

	if project != nil && (project.Trusted || project.Default) {
		if path, ok := settings.ProjectPath(project.Dir); ok && path != "" {
			return path, true
		}
	}
	if path, ok := settings.GlobalPath(); ok && path != "" {
		return path, true
	}
	return "", false
}

// projectVirtualEnv derives the virtual environment hint from a project
// living under a WSL UNC root. The version is resolved when probing.
func (m *Manager) projectVirtualEnv(project *Project) *VirtualEnv {
	if project == nil || !m.detector.VirtualEnvsSupported() {
		return nil
	}
	envID, _, ok := ParseUNCPath(project.Dir)
	if !ok {
		return nil
	}
	return &VirtualEnv{ID: envID}
}

func versionErrorMessage(exe Executable, err error) string {
	ctx := issue.NewErrorContext().
		WithOperation("identify version").
		WithResource(exe.String()).
		Wrap(err)

	var notInstalled *ToolNotInstalledError
	if errors.As(err, &notInstalled) {
		ctx.WithIssue(issue.ToolNotInstalledId).WithSuggestions(
			"Install "+exe.Path+" and make sure it is on PATH",
			"Or set tool.path in the configuration to the executable location",
		)
	} else {
		ctx.WithIssue(issue.VersionUnidentifiedId).
			WithSuggestion("Check that the configured executable path points to a working " + exe.Path)
	}
	return ctx.Build().Format(false)
}

func (noSettings) ProjectPath(string) (string, bool) { return "", false }
func (noSettings) GlobalPath() (string, bool)        { return "", false }

func (n logNotifier) ReportError(msg string)   { n.logger.Error(msg) }
func (n logNotifier) ReportWarning(msg string) { n.logger.Warn(msg) }
