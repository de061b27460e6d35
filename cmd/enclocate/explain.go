// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/enc4idea/enclocate/internal/issue"

	"github.com/spf13/cobra"
)

// newExplainCommand creates the `enclocate explain` command, which prints
// the long explanation of a reported problem.
func newExplainCommand(_ *App) *cobra.Command {
	var style string

	cmd := &cobra.Command{
		Use:   "explain [ID]",
		Short: "Explain a reported problem",
		Long: `Explain a reported problem.

Without ID every known problem is listed. Errors that have an explanation
print its ID.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				listIssues(cmd)
				return nil
			}

			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid issue ID %q: must be a number", args[0])
			}
			found := issue.Get(issue.Id(n))
			if found == nil {
				return fmt.Errorf("unknown issue ID %d; run 'enclocate explain' to list them", n)
			}
			rendered, err := found.Render(style)
			if err != nil {
				return err
			}
			fmt.Fprint(out, rendered)
			return nil
		},
	}

	cmd.Flags().StringVar(&style, "style", "dark", "glamour style used to render the explanation")

	return cmd
}

func listIssues(cmd *cobra.Command) {
	issues := issue.Values()
	slices.SortFunc(issues, func(a, b *issue.Issue) int {
		return cmp.Compare(a.Id(), b.Id())
	})

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, TitleStyle.Render("Known problems"))
	for _, i := range issues {
		fmt.Fprintf(out, "  %s %s\n", PathStyle.Render(fmt.Sprintf("%-3d", i.Id())), issueTitle(i))
	}
}

// issueTitle returns the first markdown heading of the issue text.
func issueTitle(i *issue.Issue) string {
	for line := range strings.Lines(string(i.MarkdownMsg())) {
		if title, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return strings.TrimSuffix(title, "!")
		}
	}
	return ""
}
