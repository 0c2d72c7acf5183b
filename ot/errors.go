package ot

import (
	"errors"
	"fmt"
)

// ErrorKind classifies what went wrong while decoding font binary data.
type ErrorKind int

const (
	// KindUnspecified is the zero value; the error carries no classification.
	KindUnspecified ErrorKind = iota
	// KindTruncated indicates fewer bytes available than a fixed-width field requires.
	KindTruncated
	// KindOutOfBounds indicates a computed offset or length exceeding the buffer.
	KindOutOfBounds
	// KindUnsupportedFormat indicates a leading magic/version tag that is not recognized.
	KindUnsupportedFormat
	// KindInvalidDiscriminant indicates a versioned table's format/version number
	// matching none of the known constants.
	KindInvalidDiscriminant
	// KindMalformedInvariant indicates a violated structural invariant, e.g. a
	// format-4 cmap without the required terminal 0xFFFF segment.
	KindMalformedInvariant
)

// String returns a short name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindTruncated:
		return "truncated"
	case KindOutOfBounds:
		return "out of bounds"
	case KindUnsupportedFormat:
		return "unsupported format"
	case KindInvalidDiscriminant:
		return "invalid discriminant"
	case KindMalformedInvariant:
		return "malformed invariant"
	}
	return "unspecified"
}

// ErrorSeverity represents the severity level of a font parsing error.
type ErrorSeverity int

const (
	// SeverityCritical indicates a severe error that makes the font unusable or unreliable.
	SeverityCritical ErrorSeverity = iota
	// SeverityMajor indicates a significant error that may affect functionality but doesn't prevent usage.
	SeverityMajor
	// SeverityMinor indicates a minor issue that can be safely ignored in most cases.
	SeverityMinor
)

// String returns a human-readable representation of the error severity.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityMajor:
		return "MAJOR"
	case SeverityMinor:
		return "MINOR"
	default:
		return "UNKNOWN"
	}
}

// FontError represents an error encountered during font parsing.
// Errors are accumulated during parsing and can be inspected after parsing
// completes; failing operations additionally return them directly.
// Every error identifies the table and byte offset that triggered it, to make
// debugging of malformed or adversarial font files tractable.
type FontError struct {
	Kind     ErrorKind     // classification of the failure
	Table    Tag           // the OpenType table where the error occurred (zero Tag for font-level errors)
	Section  string        // specific section within the table (e.g., "Header", "Segments")
	Issue    string        // human-readable description of the issue
	Severity ErrorSeverity // severity level of the error
	Offset   uint32        // byte offset in the font file where the error occurred (0 if unknown)
}

// Error implements the error interface.
func (e FontError) Error() string {
	loc := "font"
	if e.Table != 0 {
		loc = e.Table.String()
	}
	if e.Section != "" {
		loc = loc + "/" + e.Section
	}
	if e.Offset > 0 {
		return fmt.Sprintf("[%s] %s at offset %d: %s (%s)", e.Severity, loc, e.Offset, e.Issue, e.Kind)
	}
	return fmt.Sprintf("[%s] %s: %s (%s)", e.Severity, loc, e.Issue, e.Kind)
}

// IsKind reports whether err is (or wraps) a FontError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var fe FontError
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}

// FontWarning represents a non-critical issue encountered during font parsing.
// Warnings indicate potential problems but do not prevent font usage.
type FontWarning struct {
	Table  Tag    // the OpenType table where the warning occurred
	Issue  string // human-readable description of the warning
	Offset uint32 // byte offset in the font file where the warning occurred (0 if unknown)
}

// String returns a human-readable representation of the warning.
func (w FontWarning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("[WARNING] %s at offset %d: %s", w.Table, w.Offset, w.Issue)
	}
	return fmt.Sprintf("[WARNING] %s: %s", w.Table, w.Issue)
}

// errorCollector accumulates errors and warnings during font parsing.
// This is an internal helper used by the parser to collect issues as they
// are discovered.
type errorCollector struct {
	errors   []FontError
	warnings []FontWarning
}

// addError records a parsing error and returns it, so that failing parse paths
// can collect and propagate in one step.
func (ec *errorCollector) addError(kind ErrorKind, table Tag, section string, issue string, severity ErrorSeverity, offset uint32) FontError {
	e := FontError{
		Kind:     kind,
		Table:    table,
		Section:  section,
		Issue:    issue,
		Severity: severity,
		Offset:   offset,
	}
	ec.errors = append(ec.errors, e)
	return e
}

// addWarning records a parsing warning.
func (ec *errorCollector) addWarning(table Tag, issue string, offset uint32) {
	ec.warnings = append(ec.warnings, FontWarning{
		Table:  table,
		Issue:  issue,
		Offset: offset,
	})
}

// hasErrors returns true if any errors have been recorded.
func (ec *errorCollector) hasErrors() bool {
	return len(ec.errors) > 0
}

// hasWarnings returns true if any warnings have been recorded.
func (ec *errorCollector) hasWarnings() bool {
	return len(ec.warnings) > 0
}

// criticalErrors returns all errors with critical severity.
func (ec *errorCollector) criticalErrors() []FontError {
	critical := make([]FontError, 0)
	for _, err := range ec.errors {
		if err.Severity == SeverityCritical {
			critical = append(critical, err)
		}
	}
	return critical
}

// hasCriticalErrors returns true if any critical errors have been recorded.
func (ec *errorCollector) hasCriticalErrors() bool {
	for _, err := range ec.errors {
		if err.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
