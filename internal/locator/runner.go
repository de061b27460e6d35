// SPDX-License-Identifier: MPL-2.0

package locator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"

	"github.com/enc4idea/enclocate/pkg/platform"
)

type (
	// ProcessResult is the outcome of a process that was started.
	ProcessResult struct {
		ExitCode int
		Stdout   string
		Stderr   string
	}

	// Runner starts processes. An error is returned only when the process
	// could not be started or was interrupted; a non-zero exit code is not an
	// error.
	Runner interface {
		Run(ctx context.Context, c Command) (ProcessResult, error)
	}

	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// ExecRunnerOption configures an ExecRunner.
	ExecRunnerOption func(*ExecRunner)

	// ExecRunner runs commands with os/exec. Inside a Flatpak or Snap sandbox
	// commands are forwarded to the host.
	ExecRunner struct {
		execCommand ExecCommandFunc
		sandbox     platform.SandboxType
	}
)

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) ExecRunnerOption {
	return func(r *ExecRunner) {
		r.execCommand = fn
	}
}

// WithSandbox overrides sandbox detection.
func WithSandbox(st platform.SandboxType) ExecRunnerOption {
	return func(r *ExecRunner) {
		r.sandbox = st
	}
}

// NewExecRunner creates a runner for the current host.
func NewExecRunner(opts ...ExecRunnerOption) *ExecRunner {
	r := &ExecRunner{
		execCommand: exec.CommandContext,
		sandbox:     platform.DetectSandbox(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts c and waits for it to exit.
func (r *ExecRunner) Run(ctx context.Context, c Command) (ProcessResult, error) {
	name, args := platform.HostCommand(r.sandbox, c.Path, c.Args)
	cmd := r.execCommand(ctx, name, args...)
	cmd.Dir = c.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := ProcessResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("run %s: %w", c.Path, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, fmt.Errorf("start %s: %w", c.Path, err)
}

// Combined returns stdout followed by stderr.
func (r ProcessResult) Combined() string {
	return r.Stdout + r.Stderr
}

// isNoSuchFile reports whether err means the executable does not exist.
func isNoSuchFile(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}
