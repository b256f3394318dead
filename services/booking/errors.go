package booking

import (
	"errors"
	"fmt"
)

// Error codes for the booking core. The HTTP layer maps these onto
// response statuses; the scheduler only logs them.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeAlreadyCancelled    = "ALREADY_CANCELLED"
	CodeAlreadyStarted      = "ALREADY_STARTED"
	CodeAlreadyCompleted    = "ALREADY_COMPLETED"
	CodeInvalidCancellation = "INVALID_CANCELLATION"
	CodeInvalidExtension    = "INVALID_EXTENSION"
	CodeInvalidState        = "INVALID_STATE"
	CodeInvalidDuration     = "INVALID_DURATION"
	CodeForbidden           = "FORBIDDEN"
	CodeRefundFailed        = "REFUND_FAILED"
)

// BookingError carries a stable machine code plus a human message.
type BookingError struct {
	Code    string
	Message string
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewBookingError(code, format string, args ...interface{}) error {
	return &BookingError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrCode extracts the booking error code, or "" for foreign errors.
func ErrCode(err error) string {
	var be *BookingError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// IsCode reports whether err is a BookingError with the given code.
func IsCode(err error, code string) bool {
	return ErrCode(err) == code
}
