// Package apperr classifies domain errors so the HTTP layer can pick a status code
// without knowing every package's sentinels.
package apperr

import "errors"

type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindConflict
	KindNotFound
	KindUnauthorized
	KindForbidden
)

// Error carries a client-safe message. Msg is returned to callers verbatim.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func Invalid(msg string) *Error      { return &Error{Kind: KindInvalid, Msg: msg} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Msg: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Msg: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Msg: msg} }
func Forbidden(msg string) *Error    { return &Error{Kind: KindForbidden, Msg: msg} }

// KindOf reports the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-safe message of err, or fallback when err is internal.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return fallback
}
