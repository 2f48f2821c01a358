package apperror

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindNoActiveMembership Kind = "NO_ACTIVE_MEMBERSHIP"
	KindMembershipExpired  Kind = "MEMBERSHIP_EXPIRED"
	KindAlreadyCheckedIn   Kind = "ALREADY_CHECKED_IN"
	KindDailyLimitReached  Kind = "DAILY_LIMIT_REACHED"
	KindCheckInNotFound    Kind = "CHECK_IN_NOT_FOUND"
	KindAlreadyCheckedOut  Kind = "ALREADY_CHECKED_OUT"

	KindBadRequest Kind = "BAD_REQUEST"
	KindNotFound   Kind = "NOT_FOUND"
	KindForbidden  Kind = "FORBIDDEN"
	KindConflict   Kind = "CONFLICT"
	KindInternal   Kind = "INTERNAL"
)

var statusByKind = map[Kind]int{
	KindNoActiveMembership: http.StatusForbidden,
	KindMembershipExpired:  http.StatusForbidden,
	KindAlreadyCheckedIn:   http.StatusForbidden,
	KindDailyLimitReached:  http.StatusForbidden,
	KindCheckInNotFound:    http.StatusNotFound,
	KindAlreadyCheckedOut:  http.StatusBadRequest,
	KindBadRequest:         http.StatusBadRequest,
	KindNotFound:           http.StatusNotFound,
	KindForbidden:          http.StatusForbidden,
	KindConflict:           http.StatusConflict,
	KindInternal:           http.StatusInternalServerError,
}

// Error is a classified domain failure. Limit is set only for
// KindDailyLimitReached.
type Error struct {
	Kind    Kind
	Message string
	Limit   int
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Status is the HTTP status the transport should answer with.
func (e *Error) Status() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies cause under kind while keeping it reachable via errors.Is/As.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func BadRequest(message string) *Error { return New(KindBadRequest, message) }
func NotFound(message string) *Error   { return New(KindNotFound, message) }
func Forbidden(message string) *Error  { return New(KindForbidden, message) }
func Conflict(message string) *Error   { return New(KindConflict, message) }

func Internal(message string, cause error) *Error {
	return Wrap(KindInternal, message, cause)
}

// As extracts the classified error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
