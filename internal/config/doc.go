// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/enclocate/config.cue (or the XDG equivalent on
// Linux, ~/Library/Application Support/enclocate/config.cue on macOS,
// %APPDATA%\enclocate\config.cue on Windows). It names the located tool, records global
// and per-project executable overrides with their trust flag, and tunes detection
// timeouts and virtual environment probing. Environment variables prefixed with
// ENCLOCATE_ override individual keys.
//
// Files are validated against an embedded CUE schema (config_schema.cue) before being
// merged into Viper. *Config satisfies locator.Settings.
package config
