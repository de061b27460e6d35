// SPDX-License-Identifier: MPL-2.0

// Package issue is the catalog of problems enclocate knows how to explain,
// such as a missing tool or a broken configuration.
// Errors built with ErrorContext carry suggestions and may link a catalog
// entry that `enclocate explain` renders as Markdown.
package issue
