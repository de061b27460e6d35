// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride replaces the platform config directory when set.
// os.UserHomeDir ignores HOME on some platforms, so tests pin the
// directory here instead.
var configDirOverride string

// Reset clears test overrides. Call from test cleanup to restore defaults.
func Reset() {
	configDirOverride = ""
}

// SetConfigDirOverride makes ConfigDir return dir.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
