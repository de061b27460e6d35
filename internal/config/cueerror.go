// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// maxConfigFileSize caps how much of a config file is handed to CUE.
const maxConfigFileSize = 1 << 20

// formatCUEError flattens a CUE error into "<file>: <field.path>: <message>"
// lines. List indices are rendered as "projects[1].dir".
func formatCUEError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrs := errors.Errors(err)
	if len(cueErrs) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	lines := make([]string, 0, len(cueErrs))
	for _, e := range cueErrs {
		field := fieldPath(errors.Path(e))
		msg := e.Error()
		if field != "" {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, field), ":"))
			msg = field + ": " + msg
		}
		lines = append(lines, msg)
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filePath, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

// fieldPath joins CUE path selectors, dropping the "#Config" definition
// root that unification with the schema prepends.
func fieldPath(path []string) string {
	var sb strings.Builder
	for _, part := range path {
		switch {
		case strings.HasPrefix(part, "#"):
			continue
		case isIndex(part) && sb.Len() > 0:
			sb.WriteString("[" + part + "]")
		default:
			if sb.Len() > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(part)
		}
	}
	return sb.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func checkFileSize(data []byte, path string) error {
	if len(data) > maxConfigFileSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", path, len(data), maxConfigFileSize)
	}
	return nil
}
