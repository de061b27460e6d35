// SPDX-License-Identifier: MPL-2.0

package platform

import "strings"

// OS name constants for runtime.GOOS comparisons.
// Centralizes the string literals to avoid scattered magic strings.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// ExecutableName returns the on-disk file name of a tool for the given OS.
// Windows binaries carry the ".exe" suffix; everything else uses the bare name.
func ExecutableName(goos, base string) string {
	if goos == Windows && !strings.HasSuffix(strings.ToLower(base), ".exe") {
		return base + ".exe"
	}
	return base
}

// PathListSeparator returns the PATH list separator for goos. It differs from
// os.PathListSeparator in that goos may describe a platform other than the
// running one, which lets callers simulate Windows lookups on Unix hosts.
func PathListSeparator(goos string) string {
	if goos == Windows {
		return ";"
	}
	return ":"
}

// SplitPathList splits a PATH-like value into its entries for goos. Empty
// entries are dropped; quotes around Windows entries are removed.
func SplitPathList(goos, value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, PathListSeparator(goos))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if goos == Windows {
			p = strings.Trim(p, `"`)
		}
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
