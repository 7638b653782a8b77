package main

import "errors"

// ErrorKind classifies the failure modes from spec §7. Each maps to a
// specific CLI exit behavior (see main.go).
type ErrorKind int

const (
	// ErrOutputOpen: cannot create the output sink. Fatal, exit 1.
	ErrOutputOpen ErrorKind = iota
	// ErrUnknownFormat: format string not in the allowed set. Fatal, exit 2.
	ErrUnknownFormat
	// ErrInputOpen: cannot open an input file. Warning only; continue.
	ErrInputOpen
	// ErrMalformedWire: varint overflow, truncation, invalid field layout.
	// Aborts the current input, continues with the next.
	ErrMalformedWire
	// ErrBadDictionary: unresolved or cyclic dictionary reference. Folded
	// into ErrMalformedWire for CLI purposes per spec §7.
	ErrBadDictionary
	// ErrBadRegex: blacklist file contains an invalid pattern. Warning,
	// treated as no filter.
	ErrBadRegex
)

func (k ErrorKind) String() string {
	switch k {
	case ErrOutputOpen:
		return "OutputOpen"
	case ErrUnknownFormat:
		return "UnknownFormat"
	case ErrInputOpen:
		return "InputOpen"
	case ErrMalformedWire:
		return "MalformedWire"
	case ErrBadDictionary:
		return "BadDictionary"
	case ErrBadRegex:
		return "BadRegex"
	default:
		return "Unknown"
	}
}

// ConvertError wraps an underlying cause with a classification used to
// decide CLI exit behavior.
type ConvertError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *ConvertError) Error() string {
	if e.Err == nil {
		return e.Kind.String() + ": " + e.Op
	}
	return e.Kind.String() + ": " + e.Op + ": " + e.Err.Error()
}

func (e *ConvertError) Unwrap() error { return e.Err }

func newConvertError(kind ErrorKind, op string, cause error) *ConvertError {
	return &ConvertError{Kind: kind, Op: op, Err: cause}
}

// Is allows errors.Is(err, ErrMalformedWire) style checks against a bare
// ErrorKind by wrapping it as a sentinel-free comparison.
func kindOf(err error) (ErrorKind, bool) {
	var ce *ConvertError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}
