package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a business-rule rejection. Storage failures are NOT wrapped
// here; they propagate raw and surface as a generic 500 at the API boundary.
type Kind string

const (
	KindNotFound       Kind = "not_found"
	KindUnauthorized   Kind = "unauthorized"
	KindConflict       Kind = "conflict"
	KindCooldownActive Kind = "cooldown_active"
	KindValidation     Kind = "validation"
	KindQuotaExceeded  Kind = "quota_exceeded"
)

type Error struct {
	Kind             Kind   `json:"kind"`
	Message          string `json:"message"`
	RemainingMinutes int    `json:"remaining_minutes,omitempty"` // only set for cooldown_active
}

func (e *Error) Error() string {
	return e.Message
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...interface{}) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func QuotaExceeded(format string, args ...interface{}) *Error {
	return &Error{Kind: KindQuotaExceeded, Message: fmt.Sprintf(format, args...)}
}

func CooldownActive(remainingMinutes int) *Error {
	return &Error{
		Kind:             KindCooldownActive,
		Message:          fmt.Sprintf("previous request was rejected, wait %d more minute(s)", remainingMinutes),
		RemainingMinutes: remainingMinutes,
	}
}

// IsKind reports whether err is a business error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// StatusCode maps an error to the HTTP status the handler layer should return.
func StatusCode(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return 500
	}
	switch appErr.Kind {
	case KindNotFound:
		return 404
	case KindUnauthorized:
		return 403
	case KindConflict:
		return 409
	case KindCooldownActive:
		return 429
	case KindValidation:
		return 400
	case KindQuotaExceeded:
		return 422
	default:
		return 500
	}
}
