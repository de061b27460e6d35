// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/enc4idea/enclocate/internal/issue"
	"github.com/enc4idea/enclocate/internal/locator"
	"github.com/enc4idea/enclocate/internal/testutil"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Tool.Name != "enc" {
		t.Errorf("Tool.Name = %q, want enc", cfg.Tool.Name)
	}
	if cfg.Tool.Path != "" {
		t.Errorf("Tool.Path = %q, want empty", cfg.Tool.Path)
	}
	if cfg.Tool.MinimumVersion != locator.DefaultMinimumVersion {
		t.Errorf("Tool.MinimumVersion = %q, want %q", cfg.Tool.MinimumVersion, locator.DefaultMinimumVersion)
	}
	if got, want := cfg.Detection.VirtualEnvs, runtime.GOOS == "windows"; got != want {
		t.Errorf("Detection.VirtualEnvs = %v, want %v", got, want)
	}
	if !cfg.Detection.ScanAllVirtualEnvs {
		t.Error("expected ScanAllVirtualEnvs to be true by default")
	}
	if cfg.Detection.VirtualEnvTimeout != 10*time.Second {
		t.Errorf("VirtualEnvTimeout = %s, want 10s", cfg.Detection.VirtualEnvTimeout)
	}
	if cfg.Detection.VersionTimeout != 30*time.Second {
		t.Errorf("VersionTimeout = %s, want 30s", cfg.Detection.VersionTimeout)
	}
	if cfg.UI.LogLevel != LogLevelInfo {
		t.Errorf("UI.LogLevel = %q, want info", cfg.UI.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}

	xdg := t.TempDir()
	testutil.SetConfigHome(t, xdg)

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if want := filepath.Join(xdg, AppName); dir != want {
		t.Errorf("ConfigDir() = %q, want %q", dir, want)
	}
}

func TestConfigDir_Override(t *testing.T) {
	t.Cleanup(Reset)

	SetConfigDirOverride("/custom/dir")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if dir != "/custom/dir" {
		t.Errorf("ConfigDir() = %q, want /custom/dir", dir)
	}

	Reset()
	if configDirOverride != "" {
		t.Error("Reset() should clear the override")
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := NewProvider().Load(t.Context(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Source != "" {
		t.Errorf("Source = %q, want empty", cfg.Source)
	}
	if cfg.Tool.Name != locator.DefaultToolName {
		t.Errorf("Tool.Name = %q, want default", cfg.Tool.Name)
	}
	if cfg.Detection.VersionTimeout != locator.DefaultVersionTimeout {
		t.Errorf("VersionTimeout = %s, want default", cfg.Detection.VersionTimeout)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeConfig(t, dir, `
tool: {
	path: "/opt/enc/bin/enc"
	minimum_version: "2.20"
}
projects: [
	{dir: "work/app", path: "/work/enc", trusted: true},
	{dir: "/srv/other"},
]
detection: {
	virtual_envs: true
	virtual_env_timeout: "2s"
	version_timeout: "1m30s"
}
ui: log_level: "debug"
`)

	cfg, err := NewProvider().Load(t.Context(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Source != path {
		t.Errorf("Source = %q, want %q", cfg.Source, path)
	}
	if cfg.Tool.Name != "enc" {
		t.Errorf("Tool.Name = %q, want default enc", cfg.Tool.Name)
	}
	if cfg.Tool.Path != "/opt/enc/bin/enc" {
		t.Errorf("Tool.Path = %q", cfg.Tool.Path)
	}
	if cfg.Policy().Minimum() != "2.20.0" {
		t.Errorf("Policy().Minimum() = %q, want 2.20.0", cfg.Policy().Minimum())
	}
	if !cfg.Detection.VirtualEnvs {
		t.Error("VirtualEnvs should be true")
	}
	if !cfg.Detection.ScanAllVirtualEnvs {
		t.Error("ScanAllVirtualEnvs should keep its default")
	}
	if cfg.Detection.VirtualEnvTimeout != 2*time.Second {
		t.Errorf("VirtualEnvTimeout = %s, want 2s", cfg.Detection.VirtualEnvTimeout)
	}
	if cfg.Detection.VersionTimeout != 90*time.Second {
		t.Errorf("VersionTimeout = %s, want 1m30s", cfg.Detection.VersionTimeout)
	}
	if cfg.UI.LogLevel != LogLevelDebug {
		t.Errorf("LogLevel = %q, want debug", cfg.UI.LogLevel)
	}

	if len(cfg.Projects) != 2 {
		t.Fatalf("len(Projects) = %d, want 2", len(cfg.Projects))
	}
	base, err := filepath.Abs(dir)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(base, "work", "app"); cfg.Projects[0].Dir != want {
		t.Errorf("Projects[0].Dir = %q, want %q", cfg.Projects[0].Dir, want)
	}
	if !cfg.Projects[0].Trusted || cfg.Projects[0].Path != "/work/enc" {
		t.Errorf("Projects[0] = %+v", cfg.Projects[0])
	}
	if cfg.Projects[1].Trusted {
		t.Error("Projects[1] should default to untrusted")
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	t.Parallel()

	_, err := NewProvider().Load(t.Context(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue"),
	})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *issue.ActionableError, got %T", err)
	}
	if ae.IssueId != issue.ConfigLoadFailedId {
		t.Errorf("IssueId = %d, want ConfigLoadFailedId", ae.IssueId)
	}
	if !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("error = %q, want mention of missing file", err)
	}
	if ae.Issue() == nil {
		t.Error("Issue() = nil, want the config catalog entry")
	}
	if got := ae.Format(false); !strings.Contains(got, "  • Use 'enclocate config init' to write a default configuration") {
		t.Errorf("Format(false) = %q, want the config init suggestion", got)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantIs  error
	}{
		{name: "syntax error", content: "tool: {name: "},
		{name: "unknown field", content: `colour: "red"`},
		{name: "bad log level", content: `ui: log_level: "loud"`},
		{name: "bad duration", content: `detection: version_timeout: "soon"`},
		{name: "tool name with separator", content: `tool: name: "bin/enc"`},
		{name: "wrong type", content: `detection: virtual_envs: "yes"`},
		{
			name:    "zero timeout",
			content: `detection: virtual_env_timeout: "0s"`,
			wantIs:  ErrInvalidConfig,
		},
		{
			name:    "duplicate project dir",
			content: `projects: [{dir: "/a/b"}, {dir: "/a/b/"}]`,
			wantIs:  ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, err := NewProvider().Load(t.Context(), LoadOptions{ConfigDirPath: dir})
			if err == nil {
				t.Fatal("expected error")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("expected *issue.ActionableError, got %T: %v", err, err)
			}
			if ae.IssueId != issue.ConfigLoadFailedId {
				t.Errorf("IssueId = %d, want ConfigLoadFailedId", ae.IssueId)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.wantIs)
			}
		})
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `tool: path: "/from/file"`)
	t.Setenv("ENCLOCATE_TOOL_PATH", "/from/env")
	t.Setenv("ENCLOCATE_DETECTION_VERSION_TIMEOUT", "5s")

	cfg, err := NewProvider().Load(t.Context(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Tool.Path != "/from/env" {
		t.Errorf("Tool.Path = %q, want /from/env", cfg.Tool.Path)
	}
	if cfg.Detection.VersionTimeout != 5*time.Second {
		t.Errorf("VersionTimeout = %s, want 5s", cfg.Detection.VersionTimeout)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestSave_GeneratesLoadableCUE(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Tool.Path = `C:\Program Files\Enc\bin\enc.exe`
	cfg.Projects = []ProjectConfig{{Dir: "/work/p", Path: "/work/enc", Trusted: true}}
	cfg.Detection.VirtualEnvTimeout = 1500 * time.Millisecond
	cfg.UI.Verbose = true

	if err := Save(cfg, dir); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := NewProvider().Load(t.Context(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() after Save() error: %v", err)
	}
	if loaded.Tool.Path != cfg.Tool.Path {
		t.Errorf("Tool.Path = %q, want %q", loaded.Tool.Path, cfg.Tool.Path)
	}
	if loaded.Detection.VirtualEnvTimeout != cfg.Detection.VirtualEnvTimeout {
		t.Errorf("VirtualEnvTimeout = %s, want %s", loaded.Detection.VirtualEnvTimeout, cfg.Detection.VirtualEnvTimeout)
	}
	if len(loaded.Projects) != 1 || !loaded.Projects[0].Trusted {
		t.Errorf("Projects = %+v", loaded.Projects)
	}
	if !loaded.UI.Verbose {
		t.Error("UI.Verbose lost in round trip")
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested")

	path, err := CreateDefaultConfig(dir)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error: %v", err)
	}
	if want := filepath.Join(dir, "config.cue"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	// An existing file is left untouched.
	writeConfig(t, dir, `tool: name: "custom"`)
	if _, err := CreateDefaultConfig(dir); err != nil {
		t.Fatalf("second CreateDefaultConfig() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "custom") {
		t.Errorf("existing config was overwritten:\n%s", data)
	}
}
