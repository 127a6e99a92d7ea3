// Package apperr defines the stable error kinds surfaced by the document
// store. Every failure returned to a caller carries exactly one Kind.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is a machine-checkable error category.
type Kind string

const (
	KindUnsupportedType Kind = "UNSUPPORTED_TYPE"
	KindPayloadTooLarge Kind = "PAYLOAD_TOO_LARGE"
	KindNotFound        Kind = "NOT_FOUND"
	KindInvalidArgument Kind = "INVALID_ARGUMENT"
	KindStorageWrite    Kind = "STORAGE_WRITE_ERROR"
	KindCatalog         Kind = "CATALOG_ERROR"
	// KindOrphanBlob is advisory only. It is logged and counted, never returned.
	KindOrphanBlob Kind = "ORPHAN_BLOB"
	KindInternal   Kind = "INTERNAL"
)

// Error is a kinded error with a human-readable message and optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New returns a kinded error without a cause. Used for package sentinels.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and operation name to err. A nil err yields nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of the outermost *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var kerr *Error
	if errors.As(err, &kerr) {
		return kerr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to the status code used by the HTTP layer.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnsupportedType:
		return http.StatusUnsupportedMediaType
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindStorageWrite:
		return http.StatusInsufficientStorage
	default:
		return http.StatusInternalServerError
	}
}
