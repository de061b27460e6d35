// SPDX-License-Identifier: MPL-2.0

package locator

import "fmt"

const (
	// DomainEnvironment is the PATH environment variable.
	DomainEnvironment DomainKind = iota + 1
	// DomainSystemDefaultPaths covers conventional install directories.
	DomainSystemDefaultPaths
	// DomainVirtualEnvironment is a single virtual environment's root filesystem.
	DomainVirtualEnvironment
	// DomainAllVirtualEnvironments marks that every installed virtual
	// environment has been probed.
	DomainAllVirtualEnvironments
)

type (
	// DomainKind enumerates the search contexts probed for the tool.
	DomainKind int

	// Domain identifies one independent search context. Virtual environment
	// domains are keyed by the environment identifier. Domain is comparable and
	// used directly as the DetectionCache key.
	Domain struct {
		Kind  DomainKind
		EnvID string
	}

	// DetectedPath is the stored outcome of probing one domain. An empty Path
	// means the domain was probed and nothing was found; a domain that was not
	// probed yet has no DetectedPath at all.
	DetectedPath struct {
		Path string
	}
)

// EnvironmentDomain returns the PATH domain.
func EnvironmentDomain() Domain { return Domain{Kind: DomainEnvironment} }

// SystemDefaultPathsDomain returns the well-known directories domain.
func SystemDefaultPathsDomain() Domain { return Domain{Kind: DomainSystemDefaultPaths} }

// VirtualEnvironmentDomain returns the domain of a single virtual environment.
func VirtualEnvironmentDomain(envID string) Domain {
	return Domain{Kind: DomainVirtualEnvironment, EnvID: envID}
}

// AllVirtualEnvironmentsDomain returns the aggregate virtual environment domain.
func AllVirtualEnvironmentsDomain() Domain { return Domain{Kind: DomainAllVirtualEnvironments} }

// String returns a stable, human-readable domain key.
func (d Domain) String() string {
	switch d.Kind {
	case DomainEnvironment:
		return "env"
	case DomainSystemDefaultPaths:
		return "system"
	case DomainVirtualEnvironment:
		return "virtual:" + d.EnvID
	case DomainAllVirtualEnvironments:
		return "virtual:*"
	default:
		return fmt.Sprintf("unknown(%d)", int(d.Kind))
	}
}

// Found reports whether the probe located the executable.
func (p DetectedPath) Found() bool {
	return p.Path != ""
}

// nothingFound is the explicit "probed, nothing found" marker.
var nothingFound = DetectedPath{}
