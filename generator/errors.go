package generator

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind classifies why generation failed.
type Kind int

const (
	KindUnknown Kind = iota
	// KindTypeNotFound: the type or one of its supertypes could not be
	// loaded.
	KindTypeNotFound
	// KindPathInvalid: the input directory path is malformed.
	KindPathInvalid
	// KindCannotExtend: the type cannot legally be subclassed or
	// implemented.
	KindCannotExtend
	// KindWriteFailed: creating the output directory or file failed.
	KindWriteFailed
)

func (k Kind) String() string {
	switch k {
	case KindTypeNotFound:
		return "type-not-found"
	case KindPathInvalid:
		return "path-invalid"
	case KindCannotExtend:
		return "cannot-extend"
	case KindWriteFailed:
		return "write-failed"
	}
	return "unknown"
}

// Error is the only error type returned by Generator operations.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	switch {
	case e.Msg == "" && e.Cause == nil:
		return e.Kind.String()
	case e.Cause == nil:
		return e.Msg
	}
	return e.Msg + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the Err* sentinels by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Msg == "" && t.Cause == nil && t.Kind == e.Kind
}

var (
	ErrTypeNotFound = &Error{Kind: KindTypeNotFound}
	ErrPathInvalid  = &Error{Kind: KindPathInvalid}
	ErrCannotExtend = &Error{Kind: KindCannotExtend}
	ErrWriteFailed  = &Error{Kind: KindWriteFailed}
)

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{
		Kind:  kind,
		Msg:   fmt.Sprintf(format, args...),
		Cause: cause,
	}
}
