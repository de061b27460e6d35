// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newValidateCommand creates the `enclocate validate` command.
func newValidateCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that the executable has a supported version",
		Long: `Check that the executable has a supported version.

Exits with status 1 when the version cannot be identified or is older than
the configured minimum. Problems are printed to stderr.`,
		Args: cobra.NoArgs,
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
			if !s.manager.TestVersionValid(cmd.Context(), project) {
				return silentExit(1)
			}

			exe := s.manager.Executable(cmd.Context(), project)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s is supported\n",
				SuccessStyle.Render("✓"), PathStyle.Render(exe.String()), s.manager.VersionOf(exe))
			return nil
		},
	}
}
