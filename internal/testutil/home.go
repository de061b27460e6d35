// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"runtime"
	"testing"
)

// SetHomeDir points the platform home variable at dir for the rest of the
// test: USERPROFILE on Windows, HOME elsewhere. Like t.Setenv it cannot be
// used in parallel tests.
func SetHomeDir(t testing.TB, dir string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", dir)
		return
	}
	t.Setenv("HOME", dir)
}

// SetConfigHome points the per-user configuration root at dir: APPDATA on
// Windows, XDG_CONFIG_HOME elsewhere. macOS derives its configuration root
// from HOME, so HOME is redirected there instead.
func SetConfigHome(t testing.TB, dir string) {
	t.Helper()

	switch runtime.GOOS {
	case "windows":
		t.Setenv("APPDATA", dir)
	case "darwin":
		SetHomeDir(t, dir)
	default:
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
}
