package apperror

import (
	"errors"
	"net/http"
)

// Kind is the machine-readable discriminant sent to clients in the "code" field.
type Kind string

const (
	KindValidation         Kind = "VALIDATION_ERROR"
	KindConflict           Kind = "CONFLICT"
	KindAuth               Kind = "AUTH_ERROR"
	KindTokenExpired       Kind = "TOKEN_EXPIRED"
	KindTokenInvalid       Kind = "INVALID_TOKEN"
	KindVerificationFailed Kind = "VERIFICATION_FAILED"
	KindForbidden          Kind = "FORBIDDEN"
	KindNotFound           Kind = "NOT_FOUND"
	KindUpstream           Kind = "UPSTREAM_ERROR"
	KindInternal           Kind = "INTERNAL_ERROR"
)

var statusByKind = map[Kind]int{
	KindValidation:         http.StatusBadRequest,
	KindConflict:           http.StatusBadRequest,
	KindAuth:               http.StatusUnauthorized,
	KindTokenExpired:       http.StatusUnauthorized,
	KindTokenInvalid:       http.StatusUnauthorized,
	KindVerificationFailed: http.StatusForbidden,
	KindForbidden:          http.StatusForbidden,
	KindNotFound:           http.StatusNotFound,
	KindUpstream:           http.StatusInternalServerError,
	KindInternal:           http.StatusInternalServerError,
}

// Status returns the HTTP status code bound to the kind.
func (k Kind) Status() int {
	if status, ok := statusByKind[k]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is the single error type crossing the service boundary.
type Error struct {
	Kind     Kind
	Message  string
	Details  string
	Fallback string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetails returns a copy carrying operator-facing details.
func (e *Error) WithDetails(details string) *Error {
	c := *e
	c.Details = details
	return &c
}

// WithFallback returns a copy carrying a user-visible fallback message.
func (e *Error) WithFallback(fallback string) *Error {
	c := *e
	c.Fallback = fallback
	return &c
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error { return New(KindValidation, message) }
func Conflict(message string) *Error   { return New(KindConflict, message) }
func Auth(message string) *Error       { return New(KindAuth, message) }
func Forbidden(message string) *Error  { return New(KindForbidden, message) }
func NotFound(message string) *Error   { return New(KindNotFound, message) }
func TokenExpired() *Error             { return New(KindTokenExpired, "Token expired") }
func TokenInvalid(message string) *Error {
	return New(KindTokenInvalid, message)
}

func Upstream(message, reason string) *Error {
	return &Error{Kind: KindUpstream, Message: message, Details: reason}
}

func Internal(err error) *Error {
	return Wrap(KindInternal, "Internal server error", err)
}

// As extracts an *Error from the chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the kind of err, treating foreign errors as internal.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
