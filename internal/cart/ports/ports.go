package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/cart/domain"
)

// CartStore persists session carts. Get returns an empty cart when the
// session has none.
type CartStore interface {
	Get(ctx context.Context, sessionID string) (domain.Cart, error)
	Set(ctx context.Context, sessionID string, cart domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// Product is the catalog view the cart context needs when snapshotting a line
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// CatalogReader resolves a single product for an add-to-cart snapshot
type CatalogReader interface {
	GetProduct(ctx context.Context, productID string) (*Product, error)
}
