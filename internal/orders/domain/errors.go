package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/pkg/errors"
)

// Domain-specific errors
var (
	ErrEmptyCart               = errors.NewValidation("cart is empty", nil)
	ErrUnknownPaymentMethod    = errors.NewValidation("unknown payment method", nil)
	ErrMissingPaymentReference = errors.NewValidation("e_wallet payments require a payment reference", nil)
	ErrMissingPaymentProof     = errors.NewValidation("e_wallet payments require a proof of payment", nil)
	ErrInvalidRefundAmount     = errors.NewValidation("refund amount must be greater than 0", nil)
)

// NewInvalidCartItem creates a validation error for a malformed cart line
func NewInvalidCartItem(index int, reason string) error {
	return errors.NewValidation("invalid cart item", map[string]interface{}{
		"index":  index,
		"reason": reason,
	})
}

// NewUnknownProduct creates a validation error for a product that no longer exists
func NewUnknownProduct(productID string) error {
	return errors.NewValidation("unknown product in cart", map[string]interface{}{
		"product_id": productID,
	})
}

// NewInsufficientStock creates a conflict error for a stock shortfall at checkout
func NewInsufficientStock(productID string) error {
	return errors.NewConflict(fmt.Sprintf("insufficient stock for product '%s'", productID))
}

// NewInvalidTransition creates a validation error for an illegal status edge
func NewInvalidTransition(from, to Status) error {
	return errors.NewValidation(
		fmt.Sprintf("cannot transition order from '%s' to '%s'", from, to), nil)
}

// NewTransitionForbidden creates a forbidden error when the actor's role
// lacks permission for the requested edge
func NewTransitionForbidden(role Role, from, to Status) error {
	return errors.NewForbidden(
		fmt.Sprintf("role '%s' may not transition order from '%s' to '%s'", role, from, to))
}

// NewUnknownStatus creates a validation error for an unrecognized status value
func NewUnknownStatus(value string) error {
	return errors.NewValidation(fmt.Sprintf("unknown order status '%s'", value), nil)
}

// NewRefundExceedsTotal creates a validation error when the requested refund
// is larger than the amount paid
func NewRefundExceedsTotal(amount, total decimal.Decimal) error {
	return errors.NewValidation("refund amount exceeds order total", map[string]interface{}{
		"refund_amount": amount.String(),
		"total_amount":  total.String(),
	})
}

// NewOrderNotFound creates a not found error with the order ID
func NewOrderNotFound(orderID string) error {
	return errors.NewNotFound("order", orderID)
}

// ErrDuplicateOrder is returned when an idempotency key has already produced an order
var ErrDuplicateOrder = errors.NewConflict("an order already exists for this idempotency key")
