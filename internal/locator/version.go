// SPDX-License-Identifier: MPL-2.0

package locator

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/enc4idea/enclocate/pkg/platform"
)

const (
	// VersionTypeUndefined is a plain Unix or macOS build.
	VersionTypeUndefined VersionType = "undefined"
	// VersionTypeMSYS is the native Windows build (".windows." suffix).
	VersionTypeMSYS VersionType = "msys"
	// VersionTypeCygwin is any other Windows build.
	VersionTypeCygwin VersionType = "cygwin"
	// VersionTypeWSL is a build running inside a WSL distribution.
	VersionTypeWSL VersionType = "wsl"
	// VersionTypeNull marks an unknown version.
	VersionTypeNull VersionType = "null"
)

// versionLinePattern matches "<tool> version 2.39.1[.4][suffix]".
var versionLinePattern = regexp.MustCompile(`(?i)\bversion\s+(\d+)\.(\d+)\.(\d+)(?:\.(\d+))?(\S*)`)

type (
	// VersionType records which distribution of the tool produced a version.
	VersionType string

	// Version is a structured major.minor.revision.patch version.
	Version struct {
		Major    int
		Minor    int
		Revision int
		Patch    int
		Type     VersionType
	}
)

// NullVersion is returned when the version is unknown or not identified yet.
var NullVersion = Version{Type: VersionTypeNull}

// IsNull reports whether v is the unknown-version sentinel.
func (v Version) IsNull() bool {
	return v.Type == VersionTypeNull
}

// Compare orders versions numerically, ignoring Type.
func (v Version) Compare(o Version) int {
	if c := cmp.Compare(v.Major, o.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Minor, o.Minor); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Revision, o.Revision); c != 0 {
		return c
	}
	return cmp.Compare(v.Patch, o.Patch)
}

// String formats the version; the patch component is omitted when zero.
func (v Version) String() string {
	if v.IsNull() {
		return "unknown"
	}
	if v.Patch != 0 {
		return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Revision, v.Patch)
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Revision)
}

// Semver returns the version as a canonical "vMAJOR.MINOR.PATCH" string.
// The fourth component has no semver counterpart and is dropped.
func (v Version) Semver() string {
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Revision)
}

// ParseVersionOutput extracts a Version from the combined output of
// "<tool> version". The first line carrying a version wins, so warnings
// printed before it are tolerated.
func ParseVersionOutput(output string, exe Executable, goos string) (Version, bool) {
	for line := range strings.SplitSeq(output, "\n") {
		m := versionLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		nums := [4]int{}
		for i := range nums {
			if m[i+1] == "" {
				continue
			}
			n, err := strconv.Atoi(m[i+1])
			if err != nil {
				return NullVersion, false
			}
			nums[i] = n
		}
		return Version{
			Major:    nums[0],
			Minor:    nums[1],
			Revision: nums[2],
			Patch:    nums[3],
			Type:     versionTypeOf(m[5], exe, goos),
		}, true
	}
	return NullVersion, false
}

func versionTypeOf(suffix string, exe Executable, goos string) VersionType {
	lower := strings.ToLower(suffix)
	switch {
	case exe.IsVirtual():
		return VersionTypeWSL
	case strings.Contains(lower, ".windows.") || strings.Contains(lower, ".msysgit."):
		return VersionTypeMSYS
	case goos == platform.Windows:
		return VersionTypeCygwin
	default:
		return VersionTypeUndefined
	}
}
