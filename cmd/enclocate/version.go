// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/enc4idea/enclocate/internal/issue"
	"github.com/enc4idea/enclocate/internal/locator"

	"github.com/spf13/cobra"
)

// newVersionCommand creates the `enclocate version` command. It reports
// the version of the located tool, not of enclocate itself.
func newVersionCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:   "version [PATH]",
		Short: "Identify the version of the executable",
		Long: `Identify the version of the executable by running it.

Without PATH the executable for the current project is used. With --cached
no process is started and only a previously identified version is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), rootFlags)
			if err != nil {
				return err
			}
			defer s.Close()

			project, err := s.project()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if cached {
				if len(args) > 0 {
					return fmt.Errorf("--cached cannot be combined with an explicit path")
				}
				if v, ok := s.manager.TryVersion(cmd.Context(), project); ok {
					fmt.Fprintln(out, v)
					return nil
				}
				fmt.Fprintln(out, SubtitleStyle.Render("unknown (not yet identified)"))
				return nil
			}

			var exe locator.Executable
			if len(args) > 0 {
				exe = s.manager.ExecutableFor(args[0])
			} else {
				exe = s.manager.Executable(cmd.Context(), project)
			}

			v, err := s.manager.IdentifyVersion(cmd.Context(), exe)
			if err != nil {
				return &ExitError{Code: 1, Err: versionError(exe, err)}
			}

			status := SuccessStyle.Render("supported")
			if policy := s.manager.Policy(); !policy.IsSupported(v) {
				status = WarningStyle.Render("unsupported, minimum is " + policy.Minimum())
			}
			fmt.Fprintf(out, "%s %s (%s)\n", v, PathStyle.Render(exe.String()), status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&cached, "cached", false, "print only an already identified version; never run the executable")

	return cmd
}

// versionError attaches the matching issue to an identification failure.
func versionError(exe locator.Executable, err error) error {
	id := issue.VersionUnidentifiedId
	var notInstalled *locator.ToolNotInstalledError
	if errors.As(err, &notInstalled) {
		id = issue.ToolNotInstalledId
	}
	return issue.NewErrorContext().
		WithOperation("identify version").
		WithResource(exe.String()).
		WithIssue(id).
		Wrap(err).
		Build()
}
