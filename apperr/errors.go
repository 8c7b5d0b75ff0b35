// Package apperr classifies the failures the processing pipeline can raise.
// Callers use the kind to tell a rejected input from a server-side failure
// without parsing messages.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is a coarse-grained categorization for pipeline errors.
type Kind string

const (
	KindMissingInput    Kind = "missing_input"
	KindMalformedInput  Kind = "malformed_input"
	KindEmptyInput      Kind = "empty_input"
	KindMalformedRecord Kind = "malformed_record"
	KindNoNumericData   Kind = "no_numeric_data"
	KindImageEncoding   Kind = "image_encoding"
	KindInternal        Kind = "internal"
)

// Sentinel errors, one per kind, so errors.Is works on anything wrapping an *Error.
var (
	ErrMissingInput    = errors.New("missing input")
	ErrMalformedInput  = errors.New("malformed input")
	ErrEmptyInput      = errors.New("empty input")
	ErrMalformedRecord = errors.New("malformed record")
	ErrNoNumericData   = errors.New("no numeric data")
	ErrImageEncoding   = errors.New("image encoding failed")
)

var sentinels = map[Kind]error{
	KindMissingInput:    ErrMissingInput,
	KindMalformedInput:  ErrMalformedInput,
	KindEmptyInput:      ErrEmptyInput,
	KindMalformedRecord: ErrMalformedRecord,
	KindNoNumericData:   ErrNoNumericData,
	KindImageEncoding:   ErrImageEncoding,
}

// ClientFault reports whether errors of this kind are caused by the caller's input.
func (k Kind) ClientFault() bool {
	switch k {
	case KindMissingInput, KindMalformedInput, KindEmptyInput, KindMalformedRecord, KindNoNumericData:
		return true
	}
	return false
}

// Error wraps an underlying error with operation context and a kind.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

// New builds an *Error with a formatted message as its cause.
func New(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches op and kind to err. A nil err yields nil.
func Wrap(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the sentinel of the same kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// Message returns the cause without the op/kind prefix, suitable for end users.
func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

// KindOf returns the kind of the outermost *Error in err's chain,
// or KindInternal when err carries no classification.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// IsKind helps callers classify errors without type assertions.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}
