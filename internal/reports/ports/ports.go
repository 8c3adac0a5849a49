package ports

import (
	"context"
	"time"

	"storefront/internal/reports/domain"
)

// OrderQuery reads persisted orders for aggregation. Orders come back
// sorted by creation time ascending. Nil window bounds are open-ended; an
// empty or "all" status matches everything.
type OrderQuery interface {
	ListOrders(ctx context.Context, start, end *time.Time, status string) ([]domain.OrderRecord, error)
}

// UserDirectory resolves customer emails for the order export. User records
// are owned by the identity layer; this is a read-only view.
type UserDirectory interface {
	EmailsByIDs(ctx context.Context, userIDs []string) (map[string]string, error)
}
