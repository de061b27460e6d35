// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for enclocate.
//
// Every command opens a session from the App: the loaded configuration plus
// the locator Manager built from it. Dependencies are injected through
// Dependencies so tests run commands against an in-memory filesystem and a
// fake process runner.
package cmd
