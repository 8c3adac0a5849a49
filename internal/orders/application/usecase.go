package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/orders/domain"
	"storefront/internal/orders/ports"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

// OrderUseCase orchestrates the order lifecycle: checkout, status
// transitions and refunds. It is the only writer of order status fields.
type OrderUseCase struct {
	repo      ports.OrderRepository
	catalog   ports.ProductCatalog
	cart      ports.CartClearer
	publisher ports.EventPublisher
	taxRate   decimal.Decimal
	log       *logger.Logger
}

// NewOrderUseCase creates a new order use case
func NewOrderUseCase(
	repo ports.OrderRepository,
	catalog ports.ProductCatalog,
	cart ports.CartClearer,
	publisher ports.EventPublisher,
	taxRate decimal.Decimal,
	log *logger.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		repo:      repo,
		catalog:   catalog,
		cart:      cart,
		publisher: publisher,
		taxRate:   taxRate,
		log:       log,
	}
}

// CheckoutItem is one requested order line: the client supplies only the
// product id and quantity, never the price.
type CheckoutItem struct {
	ProductID string
	Quantity  int
}

// CheckoutInput represents the input for creating an order from a cart
type CheckoutInput struct {
	UserID           string
	SessionID        string
	Items            []CheckoutItem
	PaymentMethod    domain.PaymentMethod
	PaymentReference string
	PaymentProofRef  string
	IdempotencyKey   string
}

// Checkout turns the submitted cart into a durable pending order: validates
// the lines, resolves authoritative prices, validates the payment selection,
// reserves stock, persists the order and clears the session cart.
func (uc *OrderUseCase) Checkout(ctx context.Context, input CheckoutInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}
	for i, item := range input.Items {
		if item.ProductID == "" {
			return nil, domain.NewInvalidCartItem(i, "missing product id")
		}
		if item.Quantity <= 0 {
			return nil, domain.NewInvalidCartItem(i, "quantity must be positive")
		}
	}

	// A retried submission with the same key returns the order it already
	// created instead of inserting a duplicate.
	if input.IdempotencyKey != "" {
		existing, err := uc.repo.GetByIdempotencyKey(ctx, input.IdempotencyKey)
		if err != nil && !errors.Is(err, errors.CodeNotFound) {
			return nil, err
		}
		if existing != nil {
			uc.log.WithContext(ctx).Info("checkout replay, returning existing order",
				zap.String("order_id", existing.OrderID),
				zap.String("idempotency_key", input.IdempotencyKey),
			)
			return existing, nil
		}
	}

	ids := make([]string, 0, len(input.Items))
	for _, item := range input.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := uc.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve products")
	}

	lines := make([]domain.PricedLine, 0, len(input.Items))
	stock := make([]ports.StockLine, 0, len(input.Items))
	for _, item := range input.Items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, domain.NewUnknownProduct(item.ProductID)
		}
		lines = append(lines, domain.PricedLine{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
		})
		stock = append(stock, ports.StockLine{ProductID: product.ID, Quantity: item.Quantity})
	}

	pricing, err := domain.PriceLines(lines, uc.taxRate)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidatePayment(input.PaymentMethod, input.PaymentReference, input.PaymentProofRef); err != nil {
		return nil, err
	}

	if err := uc.catalog.ReserveStock(ctx, stock); err != nil {
		return nil, err
	}

	order := domain.NewOrder(
		input.UserID,
		pricing,
		input.PaymentMethod,
		input.PaymentReference,
		input.PaymentProofRef,
		input.IdempotencyKey,
		time.Now(),
	)

	if err := uc.repo.Create(ctx, order); err != nil {
		if errors.Is(err, errors.CodeConflict) && input.IdempotencyKey != "" {
			// Lost the race against a concurrent retry: hand back the stock
			// and return the order the other request created.
			if releaseErr := uc.catalog.ReleaseStock(ctx, stock); releaseErr != nil {
				uc.log.WithContext(ctx).Error("failed to release stock after duplicate checkout",
					zap.Error(releaseErr),
				)
			}
			return uc.repo.GetByIdempotencyKey(ctx, input.IdempotencyKey)
		}
		if releaseErr := uc.catalog.ReleaseStock(ctx, stock); releaseErr != nil {
			uc.log.WithContext(ctx).Error("failed to release stock after checkout failure",
				zap.Error(releaseErr),
			)
		}
		return nil, errors.Wrap(err, "failed to create order")
	}

	if uc.publisher != nil {
		if err := uc.publisher.PublishOrderCreated(ctx, order); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish order created event",
				zap.Error(err),
				zap.String("order_id", order.OrderID),
			)
		}
	}

	// The cart belongs to the session layer; a failed clear leaves a stale
	// cart but never fails the checkout.
	if input.SessionID != "" {
		if err := uc.cart.Clear(ctx, input.SessionID); err != nil {
			uc.log.WithContext(ctx).Warn("failed to clear session cart",
				zap.Error(err),
				zap.String("session_id", input.SessionID),
			)
		}
	}

	uc.log.WithContext(ctx).Info("order created",
		zap.String("order_id", order.OrderID),
		zap.String("user_id", order.UserID),
		zap.String("total", order.TotalAmount.String()),
		zap.String("payment_method", string(order.PaymentMethod)),
	)

	return order, nil
}

// GetOrder retrieves an order visible to the actor: owners see their own
// orders, admins see everything
func (uc *OrderUseCase) GetOrder(ctx context.Context, orderID string, actor domain.Actor) (*domain.Order, error) {
	order, err := uc.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && order.UserID != actor.ID {
		return nil, domain.NewOrderNotFound(orderID)
	}
	return order, nil
}

// ListOrders retrieves the actor's order history, newest first
func (uc *OrderUseCase) ListOrders(ctx context.Context, actor domain.Actor) ([]*domain.Order, error) {
	return uc.repo.ListByUserID(ctx, actor.ID)
}

// TransitionInput represents a requested status transition
type TransitionInput struct {
	OrderID string
	Target  domain.Status
	Reason  string
	Actor   domain.Actor
}

// Transition moves an order along the status state machine. The write is a
// compare-and-set on the expected prior status, so a concurrent transition
// surfaces as an invalid edge instead of a lost update.
func (uc *OrderUseCase) Transition(ctx context.Context, input TransitionInput) (*domain.Order, error) {
	order, err := uc.repo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	change, err := order.PlanTransition(input.Target, input.Actor, input.Reason, time.Now())
	if err != nil {
		return nil, err
	}

	return uc.applyChange(ctx, order, change, input.Actor)
}

// RefundInput represents a refund request against an order
type RefundInput struct {
	OrderID string
	Full    bool
	Amount  decimal.Decimal
	Reason  string
	Actor   domain.Actor
}

// ProcessRefund computes the refund amount, bounded by the order total, and
// records it through the state machine's refund edge
func (uc *OrderUseCase) ProcessRefund(ctx context.Context, input RefundInput) (*domain.Order, error) {
	order, err := uc.repo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	amount := input.Amount
	if input.Full {
		amount = order.TotalAmount
	} else {
		if !amount.IsPositive() {
			return nil, domain.ErrInvalidRefundAmount
		}
		if amount.GreaterThan(order.TotalAmount) {
			return nil, domain.NewRefundExceedsTotal(amount, order.TotalAmount)
		}
	}

	change, err := order.PlanTransition(domain.StatusRefund, input.Actor, input.Reason, time.Now())
	if err != nil {
		return nil, err
	}
	change.RefundAmount = &amount
	change.RefundReason = input.Reason

	updated, err := uc.applyChange(ctx, order, change, input.Actor)
	if err != nil {
		return nil, err
	}

	if uc.publisher != nil {
		if err := uc.publisher.PublishOrderRefunded(ctx, updated); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish order refunded event",
				zap.Error(err),
				zap.String("order_id", updated.OrderID),
			)
		}
	}

	uc.log.WithContext(ctx).Info("refund processed",
		zap.String("order_id", updated.OrderID),
		zap.String("refund_amount", amount.String()),
		zap.Bool("full", input.Full),
	)

	return updated, nil
}

func (uc *OrderUseCase) applyChange(ctx context.Context, order *domain.Order, change *domain.StatusChange, actor domain.Actor) (*domain.Order, error) {
	applied, err := uc.repo.ApplyTransition(ctx, order.OrderID, change)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update order status")
	}
	if !applied {
		// The precondition no longer holds: someone else moved the order
		// between our read and our write.
		fresh, err := uc.repo.GetByID(ctx, order.OrderID)
		if err != nil {
			return nil, err
		}
		return nil, domain.NewInvalidTransition(fresh.Status, change.To)
	}

	change.Apply(order)

	if uc.publisher != nil {
		if err := uc.publisher.PublishOrderStatusChanged(ctx, order, change.From, change.To, actor); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish status changed event",
				zap.Error(err),
				zap.String("order_id", order.OrderID),
			)
		}
	}

	uc.log.WithContext(ctx).Info("order status changed",
		zap.String("order_id", order.OrderID),
		zap.String("from", string(change.From)),
		zap.String("to", string(change.To)),
		zap.String("actor_role", string(actor.Role)),
	)

	return order, nil
}
