// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/enc4idea/enclocate/internal/locator"
	"github.com/enc4idea/enclocate/pkg/platform"
)

const (
	// LogLevelDebug logs probe activity and cache decisions.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default level.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs only timeouts and failed probes.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs only errors.
	LogLevelError LogLevel = "error"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level written by the CLI logger.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidConfigError collects every field that failed validation.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// ToolConfig describes the tool being located.
	ToolConfig struct {
		// Name is the bare executable name searched during detection.
		Name string `json:"name" mapstructure:"name"`
		// Path is the global executable override. Empty means detect.
		Path string `json:"path,omitempty" mapstructure:"path"`
		// MinimumVersion is the oldest version considered supported.
		MinimumVersion string `json:"minimum_version" mapstructure:"minimum_version"`
	}

	// ProjectConfig carries per-project settings.
	ProjectConfig struct {
		// Dir is the project root. Relative entries are resolved against the
		// directory holding the config file.
		Dir string `json:"dir" mapstructure:"dir"`
		// Path overrides the executable for this project. It is only honored
		// when the project is trusted.
		Path string `json:"path,omitempty" mapstructure:"path"`
		// Trusted marks the project as trusted.
		Trusted bool `json:"trusted" mapstructure:"trusted"`
	}

	// DetectionConfig tunes executable detection.
	DetectionConfig struct {
		// VirtualEnvs enables probing of virtual environments (WSL).
		VirtualEnvs bool `json:"virtual_envs" mapstructure:"virtual_envs"`
		// ScanAllVirtualEnvs enables the aggregated scan across every
		// installed virtual environment.
		ScanAllVirtualEnvs bool `json:"scan_all_virtual_envs" mapstructure:"scan_all_virtual_envs"`
		// VirtualEnvTimeout bounds a single virtual environment probe.
		VirtualEnvTimeout time.Duration `json:"virtual_env_timeout" mapstructure:"virtual_env_timeout"`
		// VersionTimeout bounds a single "<tool> version" run.
		VersionTimeout time.Duration `json:"version_timeout" mapstructure:"version_timeout"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		// Verbose enables debug logging.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// LogLevel is the minimum level logged when Verbose is off.
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
	}

	// Config is the complete application configuration.
	Config struct {
		Tool      ToolConfig      `json:"tool" mapstructure:"tool"`
		Projects  []ProjectConfig `json:"projects" mapstructure:"projects"`
		Detection DetectionConfig `json:"detection" mapstructure:"detection"`
		UI        UIConfig        `json:"ui" mapstructure:"ui"`

		// Source is the file the configuration was read from, empty when
		// only defaults apply.
		Source string `json:"-" mapstructure:"-"`
	}
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Tool: ToolConfig{
			Name:           locator.DefaultToolName,
			MinimumVersion: locator.DefaultMinimumVersion,
		},
		Projects: []ProjectConfig{},
		Detection: DetectionConfig{
			VirtualEnvs:        runtime.GOOS == platform.Windows,
			ScanAllVirtualEnvs: true,
			VirtualEnvTimeout:  locator.DefaultVirtualEnvTimeout,
			VersionTimeout:     locator.DefaultVersionTimeout,
		},
		UI: UIConfig{
			LogLevel: LogLevelInfo,
		},
	}
}

// Error implements the error interface.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel so callers can use errors.Is for programmatic detection.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// IsValid returns whether the LogLevel is one of the defined levels,
// and a list of validation errors if it is not.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig so callers can use errors.Is for programmatic detection.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Validate checks the constraints the CUE schema cannot express: tool name
// rules, minimum version syntax, positive timeouts and unique project dirs.
func (c *Config) Validate() error {
	var errs []error

	if err := platform.ValidateToolName(c.Tool.Name); err != nil {
		errs = append(errs, fmt.Errorf("tool.name: %w", err))
	}
	if _, err := locator.NewPolicy(c.Tool.MinimumVersion); err != nil {
		errs = append(errs, fmt.Errorf("tool.minimum_version: %w", err))
	}
	if c.Detection.VirtualEnvTimeout <= 0 {
		errs = append(errs, fmt.Errorf("detection.virtual_env_timeout: must be positive, got %s", c.Detection.VirtualEnvTimeout))
	}
	if c.Detection.VersionTimeout <= 0 {
		errs = append(errs, fmt.Errorf("detection.version_timeout: must be positive, got %s", c.Detection.VersionTimeout))
	}
	if ok, lvlErrs := c.UI.LogLevel.IsValid(); !ok {
		for _, err := range lvlErrs {
			errs = append(errs, fmt.Errorf("ui.log_level: %w", err))
		}
	}

	seen := make(map[string]int, len(c.Projects))
	for i, p := range c.Projects {
		if strings.TrimSpace(p.Dir) == "" {
			errs = append(errs, fmt.Errorf("projects[%d].dir: must not be empty", i))
			continue
		}
		key := projectKey(p.Dir)
		if first, dup := seen[key]; dup {
			errs = append(errs, fmt.Errorf("projects[%d]: duplicate dir %q (same as projects[%d])", i, p.Dir, first))
			continue
		}
		seen[key] = i
	}

	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// ProjectPath returns the executable override recorded for the project rooted
// at dir.
func (c *Config) ProjectPath(dir string) (string, bool) {
	p, ok := c.project(dir)
	if !ok || p.Path == "" {
		return "", false
	}
	return p.Path, true
}

// GlobalPath returns the global executable override.
func (c *Config) GlobalPath() (string, bool) {
	if c.Tool.Path == "" {
		return "", false
	}
	return c.Tool.Path, true
}

// Project returns the locator view of the project rooted at dir. Unknown
// directories are untrusted.
func (c *Config) Project(dir string) *locator.Project {
	p, ok := c.project(dir)
	return &locator.Project{Dir: dir, Trusted: ok && p.Trusted}
}

// Policy returns the version policy for Tool.MinimumVersion, falling back to
// the default policy when the value does not parse.
func (c *Config) Policy() locator.Policy {
	p, err := locator.NewPolicy(c.Tool.MinimumVersion)
	if err != nil {
		return locator.DefaultPolicy()
	}
	return p
}

func (c *Config) project(dir string) (ProjectConfig, bool) {
	key := projectKey(dir)
	for _, p := range c.Projects {
		if projectKey(p.Dir) == key {
			return p, true
		}
	}
	return ProjectConfig{}, false
}

// resolveProjectDirs anchors relative project dirs at base.
func (c *Config) resolveProjectDirs(base string) {
	for i, p := range c.Projects {
		if p.Dir != "" && !filepath.IsAbs(p.Dir) && !isUNC(p.Dir) {
			c.Projects[i].Dir = filepath.Join(base, p.Dir)
		}
	}
}

func projectKey(dir string) string {
	if isUNC(dir) {
		return strings.ToLower(strings.TrimRight(strings.ReplaceAll(dir, "/", `\`), `\`))
	}
	key := filepath.Clean(dir)
	if runtime.GOOS == platform.Windows {
		key = strings.ToLower(key)
	}
	return key
}

func isUNC(p string) bool {
	return strings.HasPrefix(p, `\\`)
}
