package resource

import "fmt"

// Error types for resource automaton operations

// ErrMalformedTable indicates that a transition table violates the offline
// format: missing rows, out-of-range targets, duplicate inputs in a row, or
// missing sentinels. This is a target description bug and is never recovered.
var ErrMalformedTable = &Error{
	Kind:    MalformedTable,
	Message: "malformed DFA transition table",
}

// ErrEncodingOverflow indicates that a resource descriptor does not fit the
// fixed MaxResTerms x MaxResources encoding.
var ErrEncodingOverflow = &Error{
	Kind:    EncodingOverflow,
	Message: "resource descriptor exceeds DFA input encoding",
}

// ErrInvalidConfig indicates that the provided configuration is invalid.
// This is caught during automaton construction.
var ErrInvalidConfig = &Error{
	Kind:    InvalidConfig,
	Message: "invalid automaton configuration",
}

// ErrUnknownClass indicates a scheduling class that the itineraries do not
// describe.
var ErrUnknownClass = &Error{
	Kind:    UnknownClass,
	Message: "unknown scheduling class",
}

// ErrUnreservable indicates that an instruction cannot be reserved even from
// the empty state. The table can never accept it, so packetization of the
// enclosing range cannot make progress.
var ErrUnreservable = &Error{
	Kind:    Unreservable,
	Message: "instruction resources rejected by an empty DFA state",
}

// ErrorKind classifies resource automaton errors into categories
type ErrorKind uint8

const (
	// MalformedTable indicates the transition table failed validation
	MalformedTable ErrorKind = iota

	// EncodingOverflow indicates a descriptor exceeded the term/bit limits
	EncodingOverflow

	// InvalidConfig indicates configuration validation failed
	InvalidConfig

	// UnknownClass indicates a scheduling class outside the itineraries
	UnknownClass

	// Unreservable indicates the start state has no transition for an input
	Unreservable
)

// String returns a human-readable error kind name
func (k ErrorKind) String() string {
	switch k {
	case MalformedTable:
		return "MalformedTable"
	case EncodingOverflow:
		return "EncodingOverflow"
	case InvalidConfig:
		return "InvalidConfig"
	case UnknownClass:
		return "UnknownClass"
	case Unreservable:
		return "Unreservable"
	default:
		return fmt.Sprintf("UnknownErrorKind(%d)", k)
	}
}

// Error represents a fatal resource automaton error.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error // Optional underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error (for errors.Is/As)
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements error comparison for errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// tableError builds a MalformedTable error with a formatted detail.
func tableError(format string, args ...any) *Error {
	return &Error{
		Kind:    MalformedTable,
		Message: ErrMalformedTable.Message,
		Cause:   fmt.Errorf(format, args...),
	}
}

// overflowError builds an EncodingOverflow error with a formatted detail.
func overflowError(format string, args ...any) *Error {
	return &Error{
		Kind:    EncodingOverflow,
		Message: ErrEncodingOverflow.Message,
		Cause:   fmt.Errorf(format, args...),
	}
}
