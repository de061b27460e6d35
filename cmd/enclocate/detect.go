// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/enc4idea/enclocate/internal/locator"

	"github.com/spf13/cobra"
)

// newDetectCommand creates the `enclocate detect` command.
func newDetectCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Run detection and show what every search location found",
		Long: `Run detection from scratch and show what every search location found.

Locations are probed in order of precedence until one has the executable;
locations after the first hit are not probed and not shown. Configured overrides
are not applied.`,
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

			detector := s.manager.Detector()
			detector.Clear()
			path, _ := s.manager.DetectedExecutable(cmd.Context(), project, true)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, TitleStyle.Render("Detection results"))
			printSnapshot(out, detector.Snapshot())
			fmt.Fprintln(out)

			if path == detector.DefaultExecutable() {
				fmt.Fprintf(out, "%s %s\n", keyStyle.Render("Result"),
					WarningStyle.Render(path+" (not found, the OS resolves it at launch)"))
				return nil
			}
			fmt.Fprintf(out, "%s %s\n", keyStyle.Render("Result"), PathStyle.Render(path))
			return nil
		},
	}
}

func printSnapshot(out io.Writer, snapshot map[locator.Domain]locator.DetectedPath) {
	domains := slices.SortedFunc(maps.Keys(snapshot), func(a, b locator.Domain) int {
		if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
			return c
		}
		return cmp.Compare(a.EnvID, b.EnvID)
	})
	for _, d := range domains {
		res := snapshot[d]
		value := SubtitleStyle.Render("(not found)")
		if res.Found() {
			value = SuccessStyle.Render(res.Path)
		}
		fmt.Fprintf(out, "  %s %s\n", keyStyle.Render(d.String()), value)
	}
}
