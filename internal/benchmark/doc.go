// SPDX-License-Identifier: MPL-2.0

// Package benchmark provides benchmarks for PGO profile generation.
// They cover the hot paths of an IDE-style caller:
//   - CUE configuration loading and validation
//   - PATH and default location probing
//   - Cached executable and version lookups
//   - Version output parsing and command line rendering
//
// To generate a PGO profile, run:
//
//	go test -run '^$' -bench . -cpuprofile default.pgo ./internal/benchmark
package benchmark
