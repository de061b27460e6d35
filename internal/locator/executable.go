// SPDX-License-Identifier: MPL-2.0

package locator

import (
	"path"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

const (
	// ExecutableLocal runs directly on the host.
	ExecutableLocal ExecutableKind = iota
	// ExecutableVirtual runs inside a virtual environment.
	ExecutableVirtual
)

// wslLauncher is the host binary used to start processes inside WSL.
const wslLauncher = "wsl.exe"

// uncPrefixes are the host-visible roots of WSL distributions.
var uncPrefixes = []string{`\\wsl$\`, `\\wsl.localhost\`}

type (
	// ExecutableKind discriminates the Executable union.
	ExecutableKind int

	// Executable identifies a runnable tool instance: either a host path or a
	// path inside a virtual environment. It is comparable and used as the
	// version cache key.
	Executable struct {
		Kind  ExecutableKind
		EnvID string
		Path  string
	}

	// Command is a fully resolved process invocation.
	Command struct {
		Path string
		Args []string
		Dir  string
	}
)

// LocalExecutable returns a host executable.
func LocalExecutable(p string) Executable {
	return Executable{Kind: ExecutableLocal, Path: p}
}

// VirtualExecutable returns an executable living in virtual environment envID.
func VirtualExecutable(envID, p string) Executable {
	return Executable{Kind: ExecutableVirtual, EnvID: envID, Path: p}
}

// ParseExecutable maps a configured or detected path to an Executable. Paths
// under a WSL UNC root become virtual executables; everything else is local.
func ParseExecutable(p string) Executable {
	if envID, inner, ok := ParseUNCPath(p); ok {
		return VirtualExecutable(envID, inner)
	}
	return LocalExecutable(p)
}

// ParseUNCPath splits a Windows UNC path of the form \\wsl$\<distro>\rest or
// \\wsl.localhost\<distro>\rest into the distribution name and the Linux path.
// Forward slashes are accepted in place of backslashes.
func ParseUNCPath(p string) (envID, linuxPath string, ok bool) {
	normalized := strings.ReplaceAll(p, "/", `\`)
	lower := strings.ToLower(normalized)
	for _, prefix := range uncPrefixes {
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		rest := normalized[len(prefix):]
		envID, inner, _ := strings.Cut(rest, `\`)
		if envID == "" {
			return "", "", false
		}
		return envID, path.Clean("/" + strings.ReplaceAll(inner, `\`, "/")), true
	}
	return "", "", false
}

// UNCRoot returns the host-visible root of a WSL distribution.
func UNCRoot(envID string) string {
	return `\\wsl.localhost\` + envID
}

// IsVirtual reports whether the executable runs inside a virtual environment.
func (e Executable) IsVirtual() bool {
	return e.Kind == ExecutableVirtual
}

// String returns the identity of the executable.
func (e Executable) String() string {
	if e.Kind == ExecutableVirtual {
		return e.EnvID + ":" + e.Path
	}
	return e.Path
}

// Command builds the host command line that runs the executable with args.
func (e Executable) Command(args ...string) Command {
	switch e.Kind {
	case ExecutableVirtual:
		full := make([]string, 0, 4+len(args))
		full = append(full, "--distribution", e.EnvID, "--exec", e.Path)
		full = append(full, args...)
		return Command{Path: wslLauncher, Args: full}
	default:
		return Command{Path: e.Path, Args: args}
	}
}

// String renders the command as a shell-quoted line for logs and display.
func (c Command) String() string {
	parts := make([]string, 0, 1+len(c.Args))
	for _, s := range append([]string{c.Path}, c.Args...) {
		q, err := syntax.Quote(s, syntax.LangPOSIX)
		if err != nil {
			q = s
		}
		parts = append(parts, q)
	}
	return strings.Join(parts, " ")
}
