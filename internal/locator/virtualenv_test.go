// SPDX-License-Identifier: MPL-2.0

package locator

import (
	"errors"
	"slices"
	"testing"

	"golang.org/x/text/encoding/unicode"

	"github.com/enc4idea/enclocate/pkg/platform"
)

const wslListOutput = "  NAME            STATE           VERSION\r\n" +
	"* Ubuntu-22.04    Running         2\r\n" +
	"  docker-desktop  Stopped         2\r\n" +
	"  Legacy          Stopped         1\r\n"

func TestParseWSLList(t *testing.T) {
	t.Parallel()

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(wslListOutput)
	if err != nil {
		t.Fatalf("encode UTF-16: %v", err)
	}

	want := []VirtualEnv{
		{ID: "Ubuntu-22.04", Version: 2},
		{ID: "docker-desktop", Version: 2},
		{ID: "Legacy", Version: 1},
	}

	for name, input := range map[string]string{"utf-8": wslListOutput, "utf-16le": utf16} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseWSLList(input)
			if err != nil {
				t.Fatalf("ParseWSLList() error = %v", err)
			}
			if !slices.Equal(got, want) {
				t.Errorf("ParseWSLList() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestParseWSLList_Malformed(t *testing.T) {
	t.Parallel()

	for _, input := range []string{
		"NAME STATE VERSION\nUbuntu Running two\n",
		"NAME STATE VERSION\nUbuntu\n",
	} {
		if _, err := ParseWSLList(input); err == nil {
			t.Errorf("ParseWSLList(%q) succeeded, want an error", input)
		}
	}

	got, err := ParseWSLList("")
	if err != nil || len(got) != 0 {
		t.Errorf("ParseWSLList(\"\") = %v, %v; want empty, nil", got, err)
	}
}

func TestWSLProvider(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{result: ProcessResult{Stdout: wslListOutput}}
	p := NewWSLProvider(runner, platform.Windows)

	if !p.Supported() {
		t.Error("Supported() = false on windows")
	}
	if NewWSLProvider(runner, platform.Linux).Supported() {
		t.Error("Supported() = true on linux")
	}

	envs, err := p.Installed(t.Context())
	if err != nil {
		t.Fatalf("Installed() error = %v", err)
	}
	if len(envs) != 3 {
		t.Errorf("Installed() returned %d environments, want 3", len(envs))
	}
	if got := runner.commands[0]; got.Path != "wsl.exe" || !slices.Equal(got.Args, []string{"--list", "--verbose"}) {
		t.Errorf("command = %+v, want wsl.exe --list --verbose", got)
	}
	if got := p.Root(VirtualEnv{ID: "Ubuntu"}); got != `\\wsl.localhost\Ubuntu` {
		t.Errorf("Root() = %q", got)
	}
}

func TestWSLProvider_Failures(t *testing.T) {
	t.Parallel()

	startErr := errors.New("not found")
	p := NewWSLProvider(&fakeRunner{err: startErr}, platform.Windows)
	if _, err := p.Installed(t.Context()); !errors.Is(err, startErr) {
		t.Errorf("Installed() error = %v, want wrapped start error", err)
	}

	p = NewWSLProvider(&fakeRunner{result: ProcessResult{ExitCode: 1, Stderr: "no distributions"}}, platform.Windows)
	if _, err := p.Installed(t.Context()); err == nil {
		t.Error("Installed() with non-zero exit succeeded, want an error")
	}
}
