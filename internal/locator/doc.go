// SPDX-License-Identifier: MPL-2.0

// Package locator finds an external command-line tool and identifies its version.
//
// Detection walks an ordered list of probes, one per search domain: the PATH
// environment variable, well-known system install directories, and the root
// filesystems of WSL-style virtual environments. Each domain is probed at most
// once until the DetectionCache is cleared; probing is serialized by a single
// process-wide mutex, while reads of already-probed domains never block.
//
// Detector exposes a cheap, non-blocking "current best guess" and a blocking
// "detect now" path. VersionTester runs "<tool> version" and memoizes the
// outcome per Executable. Manager ties both together with the settings
// override and reports problems through a Notifier.
//
// Blocking operations (Detect, IdentifyVersion, TestVersionValid) must not be
// called from latency-sensitive goroutines. Version and Executable with
// detectIfNeeded=false only read caches.
package locator
