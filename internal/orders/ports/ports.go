package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/orders/domain"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create persists a new order. Returns domain.ErrDuplicateOrder when the
	// idempotency key has already produced an order.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by its opaque order id
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)

	// GetByIdempotencyKey retrieves the order created under an idempotency key
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)

	// ListByUserID retrieves a customer's orders, newest first
	ListByUserID(ctx context.Context, userID string) ([]*domain.Order, error)

	// ApplyTransition applies a planned status change as a conditional
	// update keyed on (orderID, change.From). Returns false without error
	// when the precondition no longer holds.
	ApplyTransition(ctx context.Context, orderID string, change *domain.StatusChange) (bool, error)
}

// Product is the catalog view the order context needs
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Stock int
}

// StockLine is one product/quantity pair to reserve at checkout
type StockLine struct {
	ProductID string
	Quantity  int
}

// ProductCatalog resolves authoritative product data and stock
type ProductCatalog interface {
	// GetByIDs resolves products by id; absent ids are simply missing from
	// the result map.
	GetByIDs(ctx context.Context, ids []string) (map[string]Product, error)

	// ReserveStock atomically decrements stock for every line, failing the
	// whole reservation when any product would go below zero.
	ReserveStock(ctx context.Context, lines []StockLine) error

	// ReleaseStock returns previously reserved stock
	ReleaseStock(ctx context.Context, lines []StockLine) error
}

// CartClearer signals the session cart to empty itself after a successful
// checkout. The cart is owned by the session layer, not by this context.
type CartClearer interface {
	Clear(ctx context.Context, sessionID string) error
}

// EventPublisher defines the interface for publishing order lifecycle events
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
	PublishOrderStatusChanged(ctx context.Context, order *domain.Order, from, to domain.Status, actor domain.Actor) error
	PublishOrderRefunded(ctx context.Context, order *domain.Order) error
}
