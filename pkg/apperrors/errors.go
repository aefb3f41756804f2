package apperrors

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Kind classifies a pipeline failure. Every kind is terminal for the event.
type Kind string

const (
	KindMissingIdentifier Kind = "missing_identifier"
	KindConfigNotFound    Kind = "config_not_found"
	KindIntegrity         Kind = "integrity"
	KindExternalLookup    Kind = "external_lookup"
	KindRatingService     Kind = "rating_service"
	KindStore             Kind = "store"
	KindSerialization     Kind = "serialization"
	KindNotification      Kind = "notification"
	KindInvalidPayload    Kind = "invalid_payload"
	KindUnknown           Kind = "unknown"
)

// Error is a classified pipeline failure. Message is what the webhook sender
// sees in err_description, so it must never carry credentials.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" && e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable reports false: a classified failure is terminal for the event.
func (e *Error) IsRetryable() bool {
	return false
}

// New creates a classified error with a fixed message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies cause. The message defaults to the cause's text.
func Wrap(kind Kind, cause error) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Message: cause.Error(), Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain,
// or KindUnknown when there is none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
