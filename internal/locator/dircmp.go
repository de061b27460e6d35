// SPDX-License-Identifier: MPL-2.0

package locator

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// dirVersionPattern parses up to four dotted numeric components.
var dirVersionPattern = regexp.MustCompile(`^(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:\.(\d+))?.*$`)

// installDir is a candidate installation directory found under a
// "Program Files" root.
type installDir struct {
	parent string // base name of the Program Files root
	name   string // base name of the candidate directory
	path   string
}

// sortInstallDirs orders candidates best-first for tool.
func sortInstallDirs(tool string, dirs []installDir) {
	toolWithVersion := regexp.MustCompile(`^` + regexp.QuoteMeta(strings.ToLower(tool)) + `[ _]*([\d.]*).*$`)
	slices.SortStableFunc(dirs, func(a, b installDir) int {
		return -compareInstallDirs(strings.ToLower(tool), toolWithVersion, a, b)
	})
}

// compareInstallDirs returns a positive number when a is a better default
// candidate than b. A directory named exactly like the tool beats any
// versioned directory; versioned directories compare numerically.
func compareInstallDirs(tool string, toolWithVersion *regexp.Regexp, a, b installDir) int {
	name1 := strings.ToLower(a.name)
	name2 := strings.ToLower(b.name)

	if name1 == tool {
		if name2 == tool {
			return compareInstallDirsFallback(a, b)
		}
		return 1
	} else if name2 == tool {
		return -1
	}

	m1 := toolWithVersion.FindStringSubmatch(name1)
	m2 := toolWithVersion.FindStringSubmatch(name2)
	if m1 == nil || m2 == nil {
		return compareInstallDirsFallback(a, b)
	}

	v1, ok1 := parseDirVersion(m1[1])
	v2, ok2 := parseDirVersion(m2[1])
	if !ok1 || !ok2 {
		return compareInstallDirsFallback(a, b)
	}
	if c := v1.Compare(v2); c != 0 {
		return c
	}
	return compareInstallDirsFallback(a, b)
}

// compareInstallDirsFallback prefers "Program Files" over "Program Files (x86)"
// and otherwise compares names lexicographically.
func compareInstallDirsFallback(a, b installDir) int {
	if c := strings.Compare(a.parent, b.parent); c != 0 {
		return -c
	}
	return strings.Compare(strings.ToLower(a.name), strings.ToLower(b.name))
}

// parseDirVersion parses "2.30.1" style fragments of directory names. Missing
// components default to zero.
func parseDirVersion(s string) (Version, bool) {
	m := dirVersionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, false
	}
	var nums [4]int
	for i := range nums {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Version{}, false
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Revision: nums[2], Patch: nums[3], Type: VersionTypeUndefined}, true
}
