// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/enc4idea/enclocate/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by every subcommand.
type rootFlagValues struct {
	configPath string
	verbose    bool
	projectDir string
	trusted    bool
}

// NewRootCommand builds the command tree on top of app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "enclocate",
		Short: "Locate the enc executable and check its version",
		Long: TitleStyle.Render("enclocate") + SubtitleStyle.Render(" - locate the enc executable") + `

enclocate finds the enc executable the way an IDE integration would:
configured overrides first, then PATH, the platform's default install
locations and, on Windows, WSL distributions. It identifies the version
of what it found and checks it against the configured minimum.

` + SubtitleStyle.Render("Examples:") + `
  enclocate path                    Print the executable path
  enclocate path --project .        Honor this project's override
  enclocate version                 Run "enc version" and print the result
  enclocate version --cached        Print the version identified earlier, if any
  enclocate validate                Exit non-zero for unsupported versions
  enclocate detect                  Show what every search domain found
  enclocate watch                   Re-validate when config or installs change`,
		SilenceUsage: true,
	}
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/enclocate/config.cue)")
	pf.StringVarP(&flags.projectDir, "project", "p", "", "project directory whose settings apply")
	pf.BoolVar(&flags.trusted, "trusted", false, "treat the project as trusted for this invocation")

	rootCmd.AddCommand(
		newPathCommand(app, flags),
		newVersionCommand(app, flags),
		newValidateCommand(app, flags),
		newDetectCommand(app, flags),
		newWatchCommand(app, flags),
		newConfigCommand(app, flags),
		newExplainCommand(app),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the resulting status code.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// errorHandler prints actionable errors with their suggestions and stays
// quiet for bare exit codes.
func errorHandler(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		fmt.Fprintln(w, ErrorStyle.Render("Error: ")+ae.Format(false))
		if found := ae.Issue(); found != nil {
			fmt.Fprintf(w, "\n%s\n", SubtitleStyle.Render(fmt.Sprintf("Run 'enclocate explain %d' for details.", found.Id())))
		}
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
