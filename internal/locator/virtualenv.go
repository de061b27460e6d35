// SPDX-License-Identifier: MPL-2.0

package locator

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/enc4idea/enclocate/pkg/platform"
)

type (
	// VirtualEnv identifies a virtual environment (a WSL distribution). A zero
	// Version means the version was not resolved yet.
	VirtualEnv struct {
		ID      string
		Version int
	}

	// VirtualEnvProvider enumerates virtual environments and maps them to
	// host-visible roots.
	VirtualEnvProvider interface {
		// Supported reports whether virtual environments exist on this host.
		Supported() bool
		// Installed lists the installed environments. It may block.
		Installed(ctx context.Context) ([]VirtualEnv, error)
		// Root returns the host-visible path of the environment's root.
		Root(env VirtualEnv) string
	}

	// WSLProvider lists WSL distributions through wsl.exe.
	WSLProvider struct {
		runner Runner
		goos   string
	}

	// noVirtualEnvs is the provider used when virtual environments are
	// disabled.
	noVirtualEnvs struct{}
)

// NewWSLProvider returns a provider that is only supported on Windows hosts.
func NewWSLProvider(runner Runner, goos string) *WSLProvider {
	return &WSLProvider{runner: runner, goos: goos}
}

// Supported reports whether the host is Windows.
func (p *WSLProvider) Supported() bool {
	return p.goos == platform.Windows
}

// Installed runs `wsl.exe --list --verbose` and parses its table.
func (p *WSLProvider) Installed(ctx context.Context) ([]VirtualEnv, error) {
	res, err := p.runner.Run(ctx, Command{Path: wslLauncher, Args: []string{"--list", "--verbose"}})
	if err != nil {
		return nil, fmt.Errorf("list WSL distributions: %w", err)
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("list WSL distributions: %s exited with code %d: %s",
			wslLauncher, res.ExitCode, strings.TrimSpace(decodeWSLOutput(res.Stdout+res.Stderr)))
	}
	return ParseWSLList(res.Stdout)
}

// Root returns the \\wsl.localhost UNC root of env.
func (p *WSLProvider) Root(env VirtualEnv) string {
	return UNCRoot(env.ID)
}

func (noVirtualEnvs) Supported() bool                                 { return false }
func (noVirtualEnvs) Installed(context.Context) ([]VirtualEnv, error) { return nil, nil }
func (noVirtualEnvs) Root(VirtualEnv) string                          { return "" }

// ParseWSLList parses the output of `wsl.exe --list --verbose`:
//
//	  NAME            STATE           VERSION
//	* Ubuntu-22.04    Running         2
//	  docker-desktop  Stopped         2
//
// wsl.exe writes UTF-16LE; plain UTF-8 input is accepted as well.
func ParseWSLList(raw string) ([]VirtualEnv, error) {
	var (
		envs       []VirtualEnv
		seenHeader bool
	)
	sc := bufio.NewScanner(strings.NewReader(decodeWSLOutput(raw)))
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(sc.Text()), "*"))
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if !seenHeader {
			seenHeader = true
			if strings.EqualFold(fields[0], "NAME") {
				continue
			}
		}
		if len(fields) < 3 {
			return nil, fmt.Errorf("unexpected WSL list line %q", line)
		}
		version, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil {
			return nil, fmt.Errorf("unexpected WSL version in line %q: %w", line, err)
		}
		envs = append(envs, VirtualEnv{ID: fields[0], Version: version})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return envs, nil
}

// decodeWSLOutput converts UTF-16LE output to UTF-8. Input without NUL bytes
// is returned unchanged.
func decodeWSLOutput(raw string) string {
	if !strings.Contains(raw, "\x00") {
		return raw
	}
	decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().String(raw)
	if err != nil {
		return strings.ReplaceAll(raw, "\x00", "")
	}
	return decoded
}
