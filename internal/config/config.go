// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/enc4idea/enclocate/internal/issue"
	"github.com/enc4idea/enclocate/pkg/platform"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "enclocate"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment variables overriding config keys,
	// e.g. ENCLOCATE_TOOL_PATH for tool.path.
	EnvPrefix = "ENCLOCATE"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the enclocate configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// FilePath returns the path of the config file inside ConfigDir, or inside
// configDirPath when it is set.
func FilePath(configDirPath string) (string, error) {
	cfgDir, err := configDirWithOverride(configDirPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()

	resolvedPath := ""
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'enclocate config init' to write a default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cuePath, err := FilePath(opts.ConfigDirPath)
		if err != nil {
			return nil, err
		}
		if fileExists(cuePath) {
			resolvedPath = cuePath
		}
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'enclocate config show' to see the effective configuration").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Source = resolvedPath
	if resolvedPath != "" {
		base, err := filepath.Abs(filepath.Dir(resolvedPath))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config directory: %w", err)
		}
		cfg.resolveProjectDirs(base)
	}

	if err := cfg.Validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Use a bare executable name for tool.name").
			WithSuggestion("Write tool.minimum_version as MAJOR.MINOR[.PATCH]").
			WithSuggestion("List each project dir only once").
			Wrap(err).
			BuildError()
	}

	return &cfg, nil
}

// newViper returns a viper instance carrying the defaults and the
// environment binding.
func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("tool.name", defaults.Tool.Name)
	v.SetDefault("tool.path", defaults.Tool.Path)
	v.SetDefault("tool.minimum_version", defaults.Tool.MinimumVersion)
	v.SetDefault("projects", []map[string]any{})
	v.SetDefault("detection.virtual_envs", defaults.Detection.VirtualEnvs)
	v.SetDefault("detection.scan_all_virtual_envs", defaults.Detection.ScanAllVirtualEnvs)
	v.SetDefault("detection.virtual_env_timeout", defaults.Detection.VirtualEnvTimeout)
	v.SetDefault("detection.version_timeout", defaults.Detection.VersionTimeout)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.log_level", string(defaults.UI.LogLevel))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
//
// The file is decoded to a map rather than a struct so that viper keeps its
// defaults and environment overrides for keys the file leaves out.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := checkFileSize(data, path); err != nil {
		return err
	}

	configMap, err := decodeCUE(data, path)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// decodeCUE unifies data with the embedded #Config schema and decodes the
// result.
func decodeCUE(data []byte, path string) (map[string]any, error) {
	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return nil, formatCUEError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return nil, formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return nil, formatCUEError(err, path)
	}
	return configMap, nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default configuration to the config
// directory unless a config file is already present. It returns the path of
// the file.
func CreateDefaultConfig(configDirPath string) (string, error) {
	cfgPath, err := FilePath(configDirPath)
	if err != nil {
		return "", err
	}
	if fileExists(cfgPath) {
		return cfgPath, nil
	}
	if err := Save(DefaultConfig(), configDirPath); err != nil {
		return "", err
	}
	return cfgPath, nil
}

// Save writes cfg as CUE into the config directory.
func Save(cfg *Config, configDirPath string) error {
	cfgPath, err := FilePath(configDirPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateCUE renders cfg in the config file format.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// enclocate configuration\n\n")

	sb.WriteString("tool: {\n")
	fmt.Fprintf(&sb, "\tname: %q\n", cfg.Tool.Name)
	if cfg.Tool.Path != "" {
		fmt.Fprintf(&sb, "\tpath: %q\n", cfg.Tool.Path)
	}
	fmt.Fprintf(&sb, "\tminimum_version: %q\n", cfg.Tool.MinimumVersion)
	sb.WriteString("}\n")

	if len(cfg.Projects) > 0 {
		sb.WriteString("\nprojects: [\n")
		for _, p := range cfg.Projects {
			fmt.Fprintf(&sb, "\t{dir: %q", p.Dir)
			if p.Path != "" {
				fmt.Fprintf(&sb, ", path: %q", p.Path)
			}
			if p.Trusted {
				sb.WriteString(", trusted: true")
			}
			sb.WriteString("},\n")
		}
		sb.WriteString("]\n")
	}

	sb.WriteString("\ndetection: {\n")
	fmt.Fprintf(&sb, "\tvirtual_envs: %v\n", cfg.Detection.VirtualEnvs)
	fmt.Fprintf(&sb, "\tscan_all_virtual_envs: %v\n", cfg.Detection.ScanAllVirtualEnvs)
	fmt.Fprintf(&sb, "\tvirtual_env_timeout: %q\n", cfg.Detection.VirtualEnvTimeout.String())
	fmt.Fprintf(&sb, "\tversion_timeout: %q\n", cfg.Detection.VersionTimeout.String())
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tlog_level: %q\n", cfg.UI.LogLevel)
	sb.WriteString("}\n")

	return sb.String()
}
