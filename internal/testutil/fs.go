// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// MemFs returns an in-memory filesystem holding files. Map keys are paths,
// values file contents; parent directories are created as needed.
func MemFs(t testing.TB, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		MustWriteFile(t, fs, path, content)
	}
	return fs
}

// MustWriteFile writes content to path on fs, creating parent directories.
// The test fails immediately if the write fails.
func MustWriteFile(t testing.TB, fs afero.Fs, path, content string) {
	t.Helper()
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := afero.WriteFile(fs, path, []byte(content), 0o755); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MustMkdirFs creates a directory on fs along with any necessary parents.
func MustMkdirFs(t testing.TB, fs afero.Fs, path string) {
	t.Helper()
	if err := fs.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}
