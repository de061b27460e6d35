// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform helpers shared by the locator and
// the CLI: OS name constants, executable naming, PATH list splitting, tool name
// validation and detection of application sandboxes that require spawning
// processes on the host.
package platform
