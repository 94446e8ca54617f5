package editor

import "errors"

// Kind classifies dispatcher-level failures. Codes surface in logs via the
// router's err_code attribute.
type Kind string

const (
	KindDownloadFailure   Kind = "DOWNLOAD_FAILURE"
	KindUnsupportedFormat Kind = "UNSUPPORTED_FORMAT"
	KindInvalidParameters Kind = "INVALID_PARAMETERS"
	KindNoActiveArtifact  Kind = "NO_ACTIVE_ARTIFACT"
	KindOperationFailure  Kind = "OPERATION_FAILURE"
	KindOpUnavailable     Kind = "OP_UNAVAILABLE"
)

// Error carries a failure kind, a user-visible message, and the cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Code reports the error kind for structured logging.
func (e *Error) Code() string { return string(e.Kind) }

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf extracts the Kind from an error chain, or empty when absent.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// UserMessage returns the text shown to the user for an error.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Something went wrong. Please try again."
}
