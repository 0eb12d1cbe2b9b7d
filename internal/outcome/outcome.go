// Package outcome classifies stage failures and renders them as the text
// that flows through the rest of the pipeline.
package outcome

import (
	"errors"
	"fmt"
)

// Kind classifies why a stage could not produce its payload
type Kind string

const (
	MissingCredential Kind = "missing_credential"
	NetworkFailure    Kind = "network_failure"
	ParseFailure      Kind = "parse_failure"
)

// Error is the classified failure of a stage
type Error struct {
	Kind     Kind
	Advisory string // set for MissingCredential
	Err      error
}

func (e *Error) Error() string {
	if e.Kind == MissingCredential {
		return e.Advisory
	}
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Missing returns a MissingCredential error carrying the advisory text
func Missing(advisory string) *Error {
	return &Error{Kind: MissingCredential, Advisory: advisory}
}

func Network(err error) *Error {
	return &Error{Kind: NetworkFailure, Err: err}
}

func Parse(err error) *Error {
	return &Error{Kind: ParseFailure, Err: err}
}

// KindOf extracts the classification from err. Unclassified errors count as
// network failures.
func KindOf(err error) Kind {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return NetworkFailure
}

// Render turns a stage result into text. A nil err yields text, a missing
// credential yields its advisory, anything else "prefix: detail".
func Render(text string, err error, prefix string) string {
	if err == nil {
		return text
	}

	var oe *Error
	if errors.As(err, &oe) && oe.Kind == MissingCredential {
		return oe.Advisory
	}

	return fmt.Sprintf("%s: %v", prefix, err)
}
