package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind is the stable, machine-readable error discriminator returned to clients.
// Handlers and services agree on these; HTTP status is derived, never stored.
type Kind string

const (
	KindMissingContext        Kind = "MISSING_CONTEXT"
	KindInvalidContext        Kind = "INVALID_CONTEXT"
	KindUnauthorized          Kind = "UNAUTHORIZED"
	KindForbidden             Kind = "FORBIDDEN"
	KindNotFound              Kind = "NOT_FOUND"
	KindInvalidAssignment     Kind = "INVALID_ASSIGNMENT"
	KindNoStockForContext     Kind = "NO_STOCK_FOR_CONTEXT"
	KindInsufficientStock     Kind = "INSUFFICIENT_STOCK"
	KindInvalidStockOperation Kind = "INVALID_STOCK_OPERATION"
	KindUnknownMovementType   Kind = "UNKNOWN_MOVEMENT_TYPE"
	KindAlreadySigned         Kind = "ALREADY_SIGNED"
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// As unwraps err into an *Error when it is one (directly or wrapped).
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func IsKind(err error, kind Kind) bool {
	if ae, ok := As(err); ok {
		return ae.Kind == kind
	}
	return false
}

// StatusOf maps an error kind to its HTTP status equivalent.
func StatusOf(kind Kind) int {
	switch kind {
	case KindMissingContext, KindInvalidContext, KindInvalidAssignment,
		KindInvalidStockOperation, KindUnknownMovementType:
		return fiber.StatusBadRequest
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound, KindNoStockForContext:
		return fiber.StatusNotFound
	case KindInsufficientStock, KindAlreadySigned:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
