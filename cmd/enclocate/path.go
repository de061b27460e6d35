// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/enc4idea/enclocate/internal/issue"
	"github.com/enc4idea/enclocate/internal/locator"

	"github.com/spf13/cobra"
)

type pathFlagValues struct {
	noDetect        bool
	command         bool
	bash            bool
	deps            bool
	resolveLauncher bool
}

// newPathCommand creates the `enclocate path` command.
func newPathCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &pathFlagValues{}

	cmd := &cobra.Command{
		Use:   "path [-- ARGS...]",
		Short: "Print the path of the executable",
		Long: `Print the path of the executable that would be used.

Configured overrides win over detection. With --command the arguments after
"--" are appended and the full command line is printed, translated for WSL
when the executable lives in a distribution.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPath(cmd, app, rootFlags, flags, args)
		},
	}

	cmd.Flags().BoolVar(&flags.noDetect, "no-detect", false, "only use cached results; fail when detection has not run")
	cmd.Flags().BoolVar(&flags.command, "command", false, "print the command line for the arguments after --")
	cmd.Flags().BoolVar(&flags.bash, "bash", false, "print the bash shipped with a Windows installation")
	cmd.Flags().BoolVar(&flags.deps, "deps", false, "list files whose change alters what the executable runs")
	cmd.Flags().BoolVar(&flags.resolveLauncher, "resolve-launcher", false, "rewrite Windows launcher wrappers to the real executable")

	return cmd
}

func runPath(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *pathFlagValues, args []string) error {
	if len(args) > 0 && !flags.command {
		return fmt.Errorf("unexpected arguments %q; use --command to build a command line", args)
	}

	s, err := app.open(cmd.Context(), rootFlags)
	if err != nil {
		return err
	}
	defer s.Close()

	project, err := s.project()
	if err != nil {
		return err
	}

	var path string
	if flags.noDetect {
		cached, ok := s.manager.CachedPathToExecutable(cmd.Context(), project)
		if !ok {
			return &ExitError{Code: 2, Err: issue.NewErrorContext().
				WithOperation("resolve executable path").
				WithSuggestion("Run without --no-detect to probe the search locations").
				Wrap(locator.ErrNotYetDetected).
				Build()}
		}
		path = cached
	} else {
		path = s.manager.PathToExecutable(cmd.Context(), project)
	}

	if flags.resolveLauncher {
		if patched, ok := s.manager.Detector().PatchExecutablePath(path); ok {
			s.logger.Debug("resolved launcher", "from", path, "to", patched)
			path = patched
		}
	}

	exe := s.manager.ExecutableFor(path)
	out := cmd.OutOrStdout()

	if flags.command {
		fmt.Fprintln(out, exe.Command(args...).String())
	} else {
		fmt.Fprintln(out, path)
	}

	if flags.bash {
		printBashPath(out, s, exe)
	}
	if flags.deps {
		for _, dep := range s.manager.Detector().DependencyPaths(exe) {
			fmt.Fprintf(out, "%s %s\n", SubtitleStyle.Render("depends on"), dep)
		}
	}
	return nil
}

func printBashPath(out io.Writer, s *session, exe locator.Executable) {
	bash, ok := s.manager.Detector().BashExecutablePath(exe)
	if !ok {
		fmt.Fprintln(out, SubtitleStyle.Render("bash: (not bundled)"))
		return
	}
	fmt.Fprintf(out, "bash: %s\n", bash)
}
