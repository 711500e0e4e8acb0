// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package pp

import (
	"fmt"
	"strings"
)

// Severity classifies a diagnostic.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Error is a preprocessor diagnostic with its source location.
type Error struct {
	Severity Severity
	Loc      SourceLoc
	Message  string
	Token    string // Offending token text, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Token != "" {
		msg = fmt.Sprintf("'%s' : %s", e.Token, e.Message)
	}
	if e.Loc.Line == 0 {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Loc, msg)
}

// FormatWithContext returns the message followed by the offending source
// line and a caret under the error column.
func (e *Error) FormatWithContext(source string) string {
	if source == "" || e.Loc.Line == 0 {
		return e.Error()
	}

	lines := strings.Split(source, "\n")
	lineNum := e.Loc.Line
	if lineNum < 1 || lineNum > len(lines) {
		return e.Error()
	}

	line := lines[lineNum-1]
	col := e.Loc.Column
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}

	label := "error"
	if e.Severity == SeverityWarning {
		label = "warning"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", label, e.Message)
	fmt.Fprintf(&sb, "  --> line %d:%d\n", lineNum, col)
	sb.WriteString("   |\n")
	fmt.Fprintf(&sb, "%3d| %s\n", lineNum, line)
	fmt.Fprintf(&sb, "   | %s^\n", strings.Repeat(" ", col-1))

	return sb.String()
}

// Errors is a list of preprocessor diagnostics.
type Errors []*Error

// Error implements the error interface.
func (el Errors) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	if len(el) == 1 {
		return el[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", el[0].Error(), len(el)-1)
}

// FormatAll returns all diagnostics formatted with source context.
func (el Errors) FormatAll(source string) string {
	var sb strings.Builder
	for i, e := range el {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(e.FormatWithContext(source))
	}
	return sb.String()
}

// HasErrors returns true if the list holds at least one error-severity entry.
func (el Errors) HasErrors() bool {
	for _, e := range el {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Reporter receives diagnostics raised while replaying a TokenStream.
type Reporter interface {
	CurrentLoc() SourceLoc
	Error(loc SourceLoc, message, token string)
}
