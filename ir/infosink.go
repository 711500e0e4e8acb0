package ir

import (
	"fmt"
	"strings"
)

// Severity classifies a Diagnostic.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	}
	return "INFO"
}

// Diagnostic is one message emitted while building or linking.
type Diagnostic struct {
	Severity Severity
	Loc      SourceLoc
	Message  string
}

func (d Diagnostic) String() string {
	if d.Loc.Line == 0 {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Loc, d.Message)
}

// Diagnostics is an ordered list of diagnostics. It implements error so
// that callers can return the error-severity subset directly.
type Diagnostics []Diagnostic

// Error implements the error interface.
func (ds Diagnostics) Error() string {
	switch len(ds) {
	case 0:
		return "no errors"
	case 1:
		return ds[0].String()
	}
	return fmt.Sprintf("%s (and %d more)", ds[0].String(), len(ds)-1)
}

// InfoSink collects diagnostics in emission order.
type InfoSink struct {
	diags Diagnostics
}

// Error records an error.
func (s *InfoSink) Error(loc SourceLoc, message string) {
	s.diags = append(s.diags, Diagnostic{SeverityError, loc, message})
}

// Warn records a warning.
func (s *InfoSink) Warn(loc SourceLoc, message string) {
	s.diags = append(s.diags, Diagnostic{SeverityWarning, loc, message})
}

// Info records an informational message.
func (s *InfoSink) Info(loc SourceLoc, message string) {
	s.diags = append(s.diags, Diagnostic{SeverityInfo, loc, message})
}

// Diagnostics returns everything recorded so far.
func (s *InfoSink) Diagnostics() Diagnostics { return s.diags }

// Filter returns the diagnostics of one severity.
func (s *InfoSink) Filter(sev Severity) Diagnostics {
	var out Diagnostics
	for _, d := range s.diags {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// Err returns the recorded errors as an error, or nil when there are none.
func (s *InfoSink) Err() error {
	if errs := s.Filter(SeverityError); len(errs) > 0 {
		return errs
	}
	return nil
}

// String renders one diagnostic per line.
func (s *InfoSink) String() string {
	var sb strings.Builder
	for _, d := range s.diags {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
