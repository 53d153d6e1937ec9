package order

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrItemNotFound         = errors.New("order item not found")
	ErrCartLineNotFound     = errors.New("cart line not found")
	ErrEmptySelection       = errors.New("no cart lines selected")
	ErrUnauthorized         = errors.New("order belongs to another user")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrDuplicateOrderNumber = errors.New("order number already exists")
)

// InvalidTransitionError names the rejected (from, to) pair so callers can
// explain the rejection.
type InvalidTransitionError struct {
	Entity string // "order", "item" or "payment"
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s status transition from %s to %s", e.Entity, e.From, e.To)
}

func invalidOrderTransition(from, to OrderStatus) error {
	return &InvalidTransitionError{Entity: "order", From: string(from), To: string(to)}
}

func invalidItemTransition(from, to ItemStatus) error {
	return &InvalidTransitionError{Entity: "item", From: string(from), To: string(to)}
}

func invalidPaymentTransition(from, to PaymentStatus) error {
	return &InvalidTransitionError{Entity: "payment", From: string(from), To: string(to)}
}

// IsInvalidTransition reports whether err is a rejected state transition.
func IsInvalidTransition(err error) bool {
	var target *InvalidTransitionError
	return errors.As(err, &target)
}
