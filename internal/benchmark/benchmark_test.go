// SPDX-License-Identifier: MPL-2.0

package benchmark

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/enc4idea/enclocate/internal/config"
	"github.com/enc4idea/enclocate/internal/locator"
	"github.com/enc4idea/enclocate/internal/testutil"
	"github.com/enc4idea/enclocate/pkg/platform"
)

// sampleConfig is a representative config.cue with several project overrides.
const sampleConfig = `
tool: {
	name: "enc"
	minimum_version: "2.19.0"
}

projects: [
	{dir: "/work/app", path: "/opt/enc/bin/enc", trusted: true},
	{dir: "/work/lib"},
	{dir: "/work/tools", path: "/usr/local/enc/bin/enc"},
	{dir: "\\\\wsl$\\Ubuntu\\home\\u\\svc", trusted: true},
]

detection: {
	scan_all_virtual_envs: false
	version_timeout: "10s"
}

ui: {
	log_level: "warn"
}
`

// versionRunner answers every command with a fixed version line.
type versionRunner struct{}

func (versionRunner) Run(context.Context, locator.Command) (locator.ProcessResult, error) {
	return locator.ProcessResult{Stdout: "enc version 2.39.1\n"}, nil
}

// longPath returns a PATH of n empty directories followed by /usr/bin.
func longPath(n int) string {
	dirs := make([]string, 0, n+1)
	for i := range n {
		dirs = append(dirs, fmt.Sprintf("/home/u/bin%d", i))
	}
	return strings.Join(append(dirs, "/usr/bin"), ":")
}

func newDetector(b *testing.B, pathEnv string) *locator.Detector {
	b.Helper()
	d := locator.NewDetector(
		locator.WithFs(testutil.MemFs(b, map[string]string{"/usr/bin/enc": ""})),
		locator.WithGOOS(platform.Linux),
		locator.WithPathEnv(func() string { return pathEnv }),
		locator.WithLogger(testutil.DiscardLogger()),
	)
	b.Cleanup(d.Close)
	return d
}

// BenchmarkConfigLoad benchmarks CUE parsing, schema validation and decoding
// of the configuration file.
func BenchmarkConfigLoad(b *testing.B) {
	path := filepath.Join(b.TempDir(), "config.cue")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		b.Fatalf("Failed to write config: %v", err)
	}
	provider := config.NewProvider()

	b.ResetTimer()
	for b.Loop() {
		if _, err := provider.Load(b.Context(), config.LoadOptions{ConfigFilePath: path}); err != nil {
			b.Fatalf("Load failed: %v", err)
		}
	}
}

// BenchmarkDetect benchmarks a full detection pass over a long PATH.
func BenchmarkDetect(b *testing.B) {
	d := newDetector(b, longPath(40))

	b.ResetTimer()
	for b.Loop() {
		d.Clear()
		if got := d.Detect(b.Context(), nil); got != "/usr/bin/enc" {
			b.Fatalf("Detect() = %q", got)
		}
	}
}

// BenchmarkCachedPathToExecutable benchmarks the non-blocking lookup an
// editor performs on every action.
func BenchmarkCachedPathToExecutable(b *testing.B) {
	m := locator.NewManager(locator.Dependencies{
		Settings: config.DefaultConfig(),
		Detector: newDetector(b, longPath(40)),
		Tester:   locator.NewVersionTester(versionRunner{}, locator.WithTesterLogger(testutil.DiscardLogger())),
		Logger:   testutil.DiscardLogger(),
	})
	project := &locator.Project{Dir: "/work/app"}
	m.PathToExecutable(b.Context(), project)

	b.ResetTimer()
	for b.Loop() {
		if _, ok := m.CachedPathToExecutable(b.Context(), project); !ok {
			b.Fatal("CachedPathToExecutable() undetermined after detection")
		}
	}
}

// BenchmarkIdentifyVersion benchmarks an uncached version identification.
func BenchmarkIdentifyVersion(b *testing.B) {
	m := locator.NewManager(locator.Dependencies{
		Detector: newDetector(b, "/usr/bin"),
		Tester:   locator.NewVersionTester(versionRunner{}, locator.WithTesterLogger(testutil.DiscardLogger())),
		Logger:   testutil.DiscardLogger(),
	})
	exe := locator.LocalExecutable("/usr/bin/enc")

	b.ResetTimer()
	for b.Loop() {
		m.DropAllVersionCaches()
		if _, err := m.IdentifyVersion(b.Context(), exe); err != nil {
			b.Fatalf("IdentifyVersion failed: %v", err)
		}
	}
}

// BenchmarkParseVersionOutput benchmarks version parsing with warnings
// printed before the version line.
func BenchmarkParseVersionOutput(b *testing.B) {
	output := strings.Repeat("warning: unable to access config\n", 8) + "enc version 2.39.1.windows.1\n"
	exe := locator.LocalExecutable(`C:\Program Files\Enc\cmd\enc.exe`)

	b.ResetTimer()
	for b.Loop() {
		if _, ok := locator.ParseVersionOutput(output, exe, platform.Windows); !ok {
			b.Fatal("ParseVersionOutput failed")
		}
	}
}

// BenchmarkCommandString benchmarks rendering a WSL command line for logs.
func BenchmarkCommandString(b *testing.B) {
	exe := locator.ParseExecutable(`\\wsl$\Ubuntu\usr\bin\enc`)

	b.ResetTimer()
	for b.Loop() {
		_ = exe.Command("commit", "-m", "two words", "--author=A U Thor <a@example.com>").String()
	}
}
