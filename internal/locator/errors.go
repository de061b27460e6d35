// SPDX-License-Identifier: MPL-2.0

package locator

import (
	"errors"
	"fmt"
)

var (
	// ErrNotYetDetected is returned when a cached lookup hits a domain that was
	// not probed yet. Callers retry later or force detection.
	ErrNotYetDetected = errors.New("executable not detected yet")

	// ErrNotFound is returned when every domain was probed and none contains
	// the executable. Callers fall back to the default executable name.
	ErrNotFound = errors.New("executable not found")

	// ErrProbeTimeout is the sentinel wrapped when a virtual environment probe
	// exceeds its deadline.
	ErrProbeTimeout = errors.New("probe timed out")
)

type (
	// ExecutionError is returned when the executable could not be started.
	ExecutionError struct {
		Executable Executable
		Cause      error
	}

	// ParseError is returned when the executable ran but its version output
	// was not recognized.
	ParseError struct {
		Executable Executable
		ExitCode   int
		Output     string
	}

	// VersionIdentificationError wraps an ExecutionError or ParseError when
	// raised through Manager.IdentifyVersion.
	VersionIdentificationError struct {
		Executable Executable
		Cause      error
	}

	// ToolNotInstalledError is returned by Manager.IdentifyVersion when the
	// default executable name could not be found at all: the tool is most
	// likely not installed.
	ToolNotInstalledError struct {
		VersionIdentificationError
	}

	// UnsupportedVersionError is a policy classification, not an execution
	// failure: the tool ran but is older than the supported minimum.
	UnsupportedVersionError struct {
		Executable Executable
		Version    Version
		Minimum    string
	}
)

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("cannot run %s: %v", e.Executable, e.Cause)
}

// Unwrap returns the underlying start failure.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	out := e.Output
	if len(out) > 120 {
		out = out[:120] + "..."
	}
	return fmt.Sprintf("unrecognized version output from %s (exit code %d): %q", e.Executable, e.ExitCode, out)
}

// Error implements the error interface.
func (e *VersionIdentificationError) Error() string {
	return fmt.Sprintf("cannot identify version of %s: %v", e.Executable, e.Cause)
}

// Unwrap returns the ExecutionError or ParseError.
func (e *VersionIdentificationError) Unwrap() error {
	return e.Cause
}

// Error implements the error interface.
func (e *ToolNotInstalledError) Error() string {
	return fmt.Sprintf("%s is not installed or not on PATH: %v", e.Executable.Path, e.Cause)
}

// Error implements the error interface.
func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("%s version %s is not supported, minimum is %s", e.Executable, e.Version, e.Minimum)
}

// Unwrap exposes the embedded VersionIdentificationError so callers matching
// on it also see tool-not-installed failures.
func (e *ToolNotInstalledError) Unwrap() error {
	return &e.VersionIdentificationError
}
