// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"sync"
)

// Sandbox type constants.
const (
	// SandboxNone indicates no sandbox environment detected.
	SandboxNone SandboxType = ""
	// SandboxFlatpak indicates a Flatpak sandbox environment.
	SandboxFlatpak SandboxType = "flatpak"
	// SandboxSnap indicates a Snap sandbox environment.
	SandboxSnap SandboxType = "snap"
)

// detectOnce caches the sandbox detection result for the lifetime of the process.
//
// INVARIANT: detectSandboxFrom MUST NOT panic; sync.OnceValue re-panics on
// every call after a panicking first call.
var detectOnce = sync.OnceValue(func() SandboxType {
	return detectSandboxFrom(os.Getenv, statFile)
})

// SandboxType identifies the type of application sandbox, if any.
type SandboxType string

// DetectSandbox returns the sandbox the current process runs in. The tool
// being located lives on the host, so sandboxed processes must spawn it
// through the sandbox's host bridge.
func DetectSandbox() SandboxType {
	return detectOnce()
}

// HostCommand rewrites a command so it runs on the host system when st is a
// sandbox. Outside a sandbox the command is returned unchanged.
//
// For Flatpak the command becomes "flatpak-spawn --host <path> <args...>".
// For Snap it becomes "snap run --shell <path> <args...>".
func HostCommand(st SandboxType, path string, args []string) (string, []string) {
	var spawn string
	var prefix []string
	switch st {
	case SandboxFlatpak:
		spawn, prefix = "flatpak-spawn", []string{"--host"}
	case SandboxSnap:
		spawn, prefix = "snap", []string{"run", "--shell"}
	default:
		return path, args
	}

	out := make([]string, 0, len(prefix)+1+len(args))
	out = append(out, prefix...)
	out = append(out, path)
	out = append(out, args...)
	return spawn, out
}

// detectSandboxFrom performs sandbox detection using the provided lookup functions.
// Flatpak takes precedence because /.flatpak-info is present in every Flatpak
// sandbox; Snap is recognized by the SNAP_NAME variable.
func detectSandboxFrom(lookupEnv func(string) string, statFile func(string) error) SandboxType {
	if err := statFile("/.flatpak-info"); err == nil {
		return SandboxFlatpak
	}
	if lookupEnv("SNAP_NAME") != "" {
		return SandboxSnap
	}
	return SandboxNone
}

func statFile(path string) error {
	_, err := os.Stat(path)
	return err
}
