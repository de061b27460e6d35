// SPDX-License-Identifier: MPL-2.0

// Package testutil holds fixtures shared by enclocate tests: in-memory
// install trees (MemFs, MustWriteFile), home and config directory
// redirection, and a logger that discards output.
package testutil
