// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"sync"
)

// cliNotifier prints manager notifications to the terminal. It remembers
// whether a problem is outstanding so watch mode can announce recovery.
type cliNotifier struct {
	mu          sync.Mutex
	w           io.Writer
	outstanding int
}

func newCLINotifier(w io.Writer) *cliNotifier {
	return &cliNotifier{w: w}
}

// ReportError prints msg as an error.
func (n *cliNotifier) ReportError(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.outstanding++
	fmt.Fprintln(n.w, ErrorStyle.Render("Error: ")+msg)
}

// ReportWarning prints msg as a warning.
func (n *cliNotifier) ReportWarning(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.outstanding++
	fmt.Fprintln(n.w, WarningStyle.Render("Warning: ")+msg)
}

// ExpireNotifications is called once validation succeeds again.
func (n *cliNotifier) ExpireNotifications() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.outstanding > 0 {
		fmt.Fprintln(n.w, SuccessStyle.Render("Resolved: ")+"previous problems no longer apply")
	}
	n.outstanding = 0
}
