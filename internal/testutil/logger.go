// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"io"

	"github.com/charmbracelet/log"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *log.Logger {
	return log.New(io.Discard)
}
