// SPDX-License-Identifier: MPL-2.0

package locator

import (
	"path/filepath"
	"strings"

	"github.com/enc4idea/enclocate/pkg/platform"
)

// PatchExecutablePath rewrites Windows launcher wrappers (<tool>-cmd.exe,
// <tool>-bash.exe) to the real executable in the sibling bin directory, when
// it exists. Other paths are returned unchanged with false.
func (d *Detector) PatchExecutablePath(path string) (string, bool) {
	if d.goos != platform.Windows {
		return path, false
	}
	base := strings.ToLower(filepath.Base(path))
	if base != strings.ToLower(d.tool)+"-cmd.exe" && base != strings.ToLower(d.tool)+"-bash.exe" {
		return path, false
	}
	candidate := filepath.Join(filepath.Dir(path), "bin", d.executableName())
	if !d.isFile(candidate) {
		return path, false
	}
	return candidate, true
}

// BashExecutablePath returns the bash shipped with a Windows installation of
// the tool: for <root>\cmd\<tool>.exe or <root>\bin\<tool>.exe it is
// <root>\bin\bash.exe.
func (d *Detector) BashExecutablePath(exe Executable) (string, bool) {
	if d.goos != platform.Windows || exe.IsVirtual() {
		return "", false
	}
	if !strings.EqualFold(filepath.Base(exe.Path), d.executableName()) {
		return "", false
	}
	binDir := filepath.Dir(exe.Path)
	switch strings.ToLower(filepath.Base(binDir)) {
	case "cmd", "bin":
	default:
		return "", false
	}
	bash := filepath.Join(filepath.Dir(binDir), "bin", platform.ExecutableName(d.goos, "bash"))
	if !d.isFile(bash) {
		return "", false
	}
	return bash, true
}

// DependencyPaths lists files whose change alters what exe runs. On macOS
// the /usr/bin shim forwards to the Command Line Tools, selected through
// the Xcode preferences.
func (d *Detector) DependencyPaths(exe Executable) []string {
	if d.goos != platform.Darwin || exe.IsVirtual() || exe.Path != "/usr/bin/"+d.tool {
		return nil
	}
	return []string{
		"/Library/Developer/CommandLineTools/usr/bin/" + d.tool,
		"/Library/Preferences/com.apple.dt.Xcode",
	}
}
