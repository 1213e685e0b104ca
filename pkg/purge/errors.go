package purge

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind string

const (
	// KindArgument indicates caller misuse, such as purging an empty tag
	// list or reading the tag scope outside a request.
	KindArgument Kind = "argument"

	// KindProvider indicates the bound CDN integration failed a purge call.
	KindProvider Kind = "provider"

	// KindDecode indicates a provider received a response it could not parse.
	KindDecode Kind = "decode"
)

// Error is the error type returned by this module. It carries a Kind for
// classification, a human-readable message, and the underlying cause when
// one exists.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("purge %s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("purge %s error: %s", e.Kind, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewArgumentError returns a KindArgument error.
func NewArgumentError(message string, cause error) *Error {
	return &Error{Kind: KindArgument, Message: message, Err: cause}
}

// NewProviderError returns a KindProvider error.
func NewProviderError(message string, cause error) *Error {
	return &Error{Kind: KindProvider, Message: message, Err: cause}
}

// NewDecodeError returns a KindDecode error.
func NewDecodeError(message string, cause error) *Error {
	return &Error{Kind: KindDecode, Message: message, Err: cause}
}

// IsKind reports whether err is (or wraps) an Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
