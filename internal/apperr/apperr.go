// Package apperr defines the error kinds the service layer surfaces to
// transport. Every service failure is one of three terminal kinds; the
// handler layer maps them to HTTP statuses.
package apperr

import "errors"

type Kind int

const (
	KindNotFound Kind = iota
	KindForbidden
	KindBadRequest
)

// Error is a service-level failure with a caller-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func NotFound(msg string) error   { return &Error{Kind: KindNotFound, Message: msg} }
func Forbidden(msg string) error  { return &Error{Kind: KindForbidden, Message: msg} }
func BadRequest(msg string) error { return &Error{Kind: KindBadRequest, Message: msg} }

// KindOf returns the kind of err and whether err is an apperr.Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func IsNotFound(err error) bool   { k, ok := KindOf(err); return ok && k == KindNotFound }
func IsForbidden(err error) bool  { k, ok := KindOf(err); return ok && k == KindForbidden }
func IsBadRequest(err error) bool { k, ok := KindOf(err); return ok && k == KindBadRequest }
