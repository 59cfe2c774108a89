package apperror

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Kind groups failures so callers can react without parsing messages.
type Kind string

const (
	KindAuthorization Kind = "authorization"
	KindState         Kind = "state"
	KindValidation    Kind = "validation"
	KindFunds         Kind = "funds"
	KindOracle        Kind = "oracle"
	KindTimelock      Kind = "timelock"
	KindInvariant     Kind = "invariant"
	KindNotFound      Kind = "not_found"
	KindInternal      Kind = "internal"
)

// Error is a failure with a stable machine-readable Code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New returns a sentinel error. Compare with errors.Is.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// As unwraps err to an *Error, or nil when err carries none.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// KindOf returns the Kind of err; unknown errors are KindInternal.
func KindOf(err error) Kind {
	if e := As(err); e != nil {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps a Kind to the response status used by the API.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindAuthorization:
		return fiber.StatusForbidden
	case KindState:
		return fiber.StatusConflict
	case KindValidation:
		return fiber.StatusBadRequest
	case KindFunds:
		return fiber.StatusPaymentRequired
	case KindOracle:
		return fiber.StatusBadGateway
	case KindTimelock:
		return fiber.StatusLocked
	case KindInvariant:
		return fiber.StatusUnprocessableEntity
	case KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
