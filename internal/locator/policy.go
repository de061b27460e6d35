// SPDX-License-Identifier: MPL-2.0

package locator

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// DefaultMinimumVersion is the oldest tool version considered supported.
const DefaultMinimumVersion = "2.19.0"

// Policy classifies identified versions as supported or unsupported. It never
// influences detection.
type Policy struct {
	minimum string
}

// NewPolicy returns a policy accepting versions at or above minimum. The
// minimum may be given with or without a leading "v" and with two or three
// components ("2.19" means "2.19.0").
func NewPolicy(minimum string) (Policy, error) {
	v := strings.TrimSpace(minimum)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) || semver.Prerelease(v) != "" || semver.Build(v) != "" {
		return Policy{}, fmt.Errorf("invalid minimum version %q: expected MAJOR.MINOR[.PATCH]", minimum)
	}
	return Policy{minimum: semver.Canonical(v)}, nil
}

// DefaultPolicy returns the policy for DefaultMinimumVersion.
func DefaultPolicy() Policy {
	return Policy{minimum: "v" + DefaultMinimumVersion}
}

// Minimum returns the minimum version without the "v" prefix.
func (p Policy) Minimum() string {
	if p.minimum == "" {
		return DefaultMinimumVersion
	}
	return strings.TrimPrefix(p.minimum, "v")
}

// IsSupported reports whether v satisfies the policy. The null version is
// never supported.
func (p Policy) IsSupported(v Version) bool {
	if v.IsNull() {
		return false
	}
	minimum := p.minimum
	if minimum == "" {
		minimum = "v" + DefaultMinimumVersion
	}
	return semver.Compare(v.Semver(), minimum) >= 0
}
