// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"io/fs"
	"slices"
	"testing"
)

func TestDetectSandboxFrom(t *testing.T) {
	t.Parallel()

	missing := func(string) error { return fs.ErrNotExist }
	present := func(path string) error {
		if path == "/.flatpak-info" {
			return nil
		}
		return fs.ErrNotExist
	}
	env := func(vals map[string]string) func(string) string {
		return func(k string) string { return vals[k] }
	}

	tests := []struct {
		name string
		env  map[string]string
		stat func(string) error
		want SandboxType
	}{
		{"no sandbox", nil, missing, SandboxNone},
		{"snap", map[string]string{"SNAP_NAME": "enclocate"}, missing, SandboxSnap},
		{"flatpak", nil, present, SandboxFlatpak},
		{"flatpak takes precedence", map[string]string{"SNAP_NAME": "x"}, present, SandboxFlatpak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := detectSandboxFrom(env(tt.env), tt.stat); got != tt.want {
				t.Errorf("detectSandboxFrom() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHostCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		st       SandboxType
		wantPath string
		wantArgs []string
	}{
		{"none", SandboxNone, "/usr/bin/enc", []string{"version"}},
		{"flatpak", SandboxFlatpak, "flatpak-spawn", []string{"--host", "/usr/bin/enc", "version"}},
		{"snap", SandboxSnap, "snap", []string{"run", "--shell", "/usr/bin/enc", "version"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path, args := HostCommand(tt.st, "/usr/bin/enc", []string{"version"})
			if path != tt.wantPath {
				t.Errorf("path = %q, want %q", path, tt.wantPath)
			}
			if !slices.Equal(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestValidateToolName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "enc", false},
		{"dashed", "git-lfs", false},
		{"empty", "", true},
		{"whitespace", "  ", true},
		{"separator", "bin/enc", true},
		{"backslash", `bin\enc`, true},
		{"inner space", "my tool", true},
		{"reserved", "con", true},
		{"reserved with extension", "NUL.exe", true},
		{"COM10 allowed", "com10", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateToolName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateToolName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidToolName) {
				t.Errorf("error does not wrap ErrInvalidToolName: %v", err)
			}
		})
	}
}

func TestExecutableName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goos, base, want string
	}{
		{Linux, "enc", "enc"},
		{Darwin, "enc", "enc"},
		{Windows, "enc", "enc.exe"},
		{Windows, "enc.EXE", "enc.EXE"},
	}
	for _, tt := range tests {
		if got := ExecutableName(tt.goos, tt.base); got != tt.want {
			t.Errorf("ExecutableName(%q, %q) = %q, want %q", tt.goos, tt.base, got, tt.want)
		}
	}
}

func TestSplitPathList(t *testing.T) {
	t.Parallel()

	got := SplitPathList(Linux, "/usr/local/bin::/usr/bin")
	if !slices.Equal(got, []string{"/usr/local/bin", "/usr/bin"}) {
		t.Errorf("unix split = %v", got)
	}

	got = SplitPathList(Windows, `C:\Windows;"C:\Program Files\Enc\cmd";`)
	if !slices.Equal(got, []string{`C:\Windows`, `C:\Program Files\Enc\cmd`}) {
		t.Errorf("windows split = %v", got)
	}

	if got := SplitPathList(Linux, ""); got != nil {
		t.Errorf("empty split = %v, want nil", got)
	}
}
