package auth

import (
	"fmt"
	"time"
)

// Kind classifies service failures for the transport layer.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindConflict       Kind = "conflict"
	KindNotFound       Kind = "not_found"
	KindUnknownAccount Kind = "unknown_account"
	KindUnauthorized   Kind = "unauthorized"
	KindRateLimited    Kind = "rate_limited"
	KindInternal       Kind = "internal"
)

// Error is returned by every Service operation. Message is safe to show to
// clients; Err carries the underlying cause for logs.
type Error struct {
	Kind       Kind
	Message    string
	RetryAfter time.Duration
	// Remaining is the number of login attempts left before a lock, when known.
	Remaining *int
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func internalError(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

func rateLimited(msg string, retryAfter time.Duration) *Error {
	return &Error{Kind: KindRateLimited, Message: msg, RetryAfter: retryAfter}
}

// ceilSeconds rounds d up to whole seconds.
func ceilSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}

// RetryAfterSeconds is RetryAfter rounded up, for the Retry-After header.
func (e *Error) RetryAfterSeconds() int {
	return ceilSeconds(e.RetryAfter)
}
