// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidToolName is the sentinel error wrapped by InvalidToolNameError.
var ErrInvalidToolName = errors.New("invalid tool name")

type (
	// InvalidToolNameError is returned when a tool name cannot be used as an
	// executable file name on every supported platform.
	InvalidToolNameError struct {
		Name   string
		Reason string
	}
)

// windowsReservedNames are device names Windows refuses as file names,
// regardless of extension.
var windowsReservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// Error implements the error interface.
func (e *InvalidToolNameError) Error() string {
	return fmt.Sprintf("invalid tool name %q: %s", e.Name, e.Reason)
}

// Unwrap returns ErrInvalidToolName for errors.Is() compatibility.
func (e *InvalidToolNameError) Unwrap() error {
	return ErrInvalidToolName
}

// IsWindowsReservedName checks if a file name is a Windows device name.
// Extensions are ignored, so "nul.exe" is reserved as well.
func IsWindowsReservedName(name string) bool {
	upper := strings.ToUpper(name)
	if idx := strings.LastIndex(upper, "."); idx != -1 {
		upper = upper[:idx]
	}
	return windowsReservedNames[upper]
}

// ValidateToolName checks that name is usable as a bare executable name on all
// platforms: non-empty, no path separators or whitespace, and not a Windows
// device name.
func ValidateToolName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return &InvalidToolNameError{Name: name, Reason: "must not be empty"}
	case strings.ContainsAny(name, `/\`):
		return &InvalidToolNameError{Name: name, Reason: "must not contain path separators"}
	case strings.ContainsAny(name, " \t\r\n"):
		return &InvalidToolNameError{Name: name, Reason: "must not contain whitespace"}
	case IsWindowsReservedName(name):
		return &InvalidToolNameError{Name: name, Reason: "is a reserved Windows device name"}
	}
	return nil
}
