package domain

import (
	"storefront/pkg/errors"
)

// NewProductNotFound creates a not found error for a catalog miss
func NewProductNotFound(productID string) error {
	return errors.NewNotFound("product", productID)
}

// NewLineNotFound creates a not found error for a cart line that is not present
func NewLineNotFound(productID string) error {
	return errors.NewNotFound("cart item", productID)
}
