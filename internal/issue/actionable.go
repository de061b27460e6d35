// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a user-facing failure: what enclocate was doing,
	// the path or file it was doing it to, and what the user can try next.
	// IssueId optionally points at a catalog entry shown by `enclocate explain`.
	ActionableError struct {
		Operation   string
		Resource    string
		Suggestions []string
		Cause       error
		IssueId     Id
	}

	// ErrorContext assembles an ActionableError step by step:
	//
	//	return issue.NewErrorContext().
	//		WithOperation("identify version").
	//		WithResource("/usr/bin/enc").
	//		WithIssue(issue.VersionUnidentifiedId).
	//		Wrap(err).
	//		BuildError()
	ErrorContext struct {
		operation   string
		resource    string
		suggestions []string
		cause       error
		issueId     Id
	}
)

// NewErrorContext starts an empty builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error renders "failed to <operation>[: <resource>][: <cause>]".
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format returns Error followed by one bullet per suggestion. Verbose output
// also numbers every error in the cause chain.
func (e *ActionableError) Format(verbose bool) string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		sb.WriteString("\n")
		for _, s := range e.Suggestions {
			sb.WriteString("\n  • " + s)
		}
	}

	if verbose && e.Cause != nil {
		sb.WriteString("\n\nError chain:")
		for depth, err := 1, e.Cause; err != nil; depth, err = depth+1, errors.Unwrap(err) {
			fmt.Fprintf(&sb, "\n  %d. %s", depth, err)
		}
	}
	return sb.String()
}

// Issue returns the linked catalog issue, or nil.
func (e *ActionableError) Issue() *Issue {
	if e.IssueId == 0 {
		return nil
	}
	return Get(e.IssueId)
}

func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.operation = op
	return c
}

func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.resource = res
	return c
}

func (c *ErrorContext) WithSuggestion(s string) *ErrorContext {
	c.suggestions = append(c.suggestions, s)
	return c
}

func (c *ErrorContext) WithSuggestions(s ...string) *ErrorContext {
	c.suggestions = append(c.suggestions, s...)
	return c
}

// WithIssue links the error to a catalog entry.
func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.issueId = id
	return c
}

func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.cause = err
	return c
}

// Build returns nil when no operation was set.
func (c *ErrorContext) Build() *ActionableError {
	if c.operation == "" {
		return nil
	}
	return &ActionableError{
		Operation:   c.operation,
		Resource:    c.resource,
		Suggestions: c.suggestions,
		Cause:       c.cause,
		IssueId:     c.issueId,
	}
}

// BuildError is Build typed as error, so a missing operation yields a nil
// interface rather than a typed nil.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}
