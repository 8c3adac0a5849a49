package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"storefront/internal/orders/domain"
	"storefront/internal/orders/ports"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

// MockOrderRepository is an in-memory order store keyed by order id. It
// mirrors the conditional-update semantics of the real repository.
type MockOrderRepository struct {
	orders map[string]domain.Order
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{orders: make(map[string]domain.Order)}
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order.IdempotencyKey != "" {
		for _, existing := range m.orders {
			if existing.IdempotencyKey == order.IdempotencyKey {
				return domain.ErrDuplicateOrder
			}
		}
	}
	m.orders[order.OrderID] = *order
	return nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return nil, domain.NewOrderNotFound(orderID)
	}
	return &order, nil
}

func (m *MockOrderRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	for _, order := range m.orders {
		if order.IdempotencyKey == key {
			result := order
			return &result, nil
		}
	}
	return nil, errors.NewNotFound("order", key)
}

func (m *MockOrderRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	var result []*domain.Order
	for _, order := range m.orders {
		if order.UserID == userID {
			o := order
			result = append(result, &o)
		}
	}
	return result, nil
}

func (m *MockOrderRepository) ApplyTransition(ctx context.Context, orderID string, change *domain.StatusChange) (bool, error) {
	order, ok := m.orders[orderID]
	if !ok || order.Status != change.From {
		return false, nil
	}
	change.Apply(&order)
	m.orders[orderID] = order
	return true, nil
}

// MockProductCatalog tracks stock levels so reservations are observable.
type MockProductCatalog struct {
	products map[string]ports.Product
}

func NewMockProductCatalog(products ...ports.Product) *MockProductCatalog {
	m := &MockProductCatalog{products: make(map[string]ports.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *MockProductCatalog) GetByIDs(ctx context.Context, ids []string) (map[string]ports.Product, error) {
	result := make(map[string]ports.Product)
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func (m *MockProductCatalog) ReserveStock(ctx context.Context, lines []ports.StockLine) error {
	for _, line := range lines {
		p := m.products[line.ProductID]
		if p.Stock < line.Quantity {
			return domain.NewInsufficientStock(line.ProductID)
		}
	}
	for _, line := range lines {
		p := m.products[line.ProductID]
		p.Stock -= line.Quantity
		m.products[line.ProductID] = p
	}
	return nil
}

func (m *MockProductCatalog) ReleaseStock(ctx context.Context, lines []ports.StockLine) error {
	for _, line := range lines {
		p := m.products[line.ProductID]
		p.Stock += line.Quantity
		m.products[line.ProductID] = p
	}
	return nil
}

type MockCartClearer struct {
	cleared []string
}

func (m *MockCartClearer) Clear(ctx context.Context, sessionID string) error {
	m.cleared = append(m.cleared, sessionID)
	return nil
}

type MockEventPublisher struct {
	created       int
	statusChanged int
	refunded      int
}

func (m *MockEventPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	m.created++
	return nil
}

func (m *MockEventPublisher) PublishOrderStatusChanged(ctx context.Context, order *domain.Order, from, to domain.Status, actor domain.Actor) error {
	m.statusChanged++
	return nil
}

func (m *MockEventPublisher) PublishOrderRefunded(ctx context.Context, order *domain.Order) error {
	m.refunded++
	return nil
}

type fixture struct {
	uc        *OrderUseCase
	repo      *MockOrderRepository
	catalog   *MockProductCatalog
	cart      *MockCartClearer
	publisher *MockEventPublisher
}

func newFixture(products ...ports.Product) *fixture {
	repo := NewMockOrderRepository()
	catalog := NewMockProductCatalog(products...)
	cart := &MockCartClearer{}
	publisher := &MockEventPublisher{}
	taxRate := decimal.NewFromFloat(0.12)
	log := logger.New("orders-test", "error", "console")

	return &fixture{
		uc:        NewOrderUseCase(repo, catalog, cart, publisher, taxRate, log),
		repo:      repo,
		catalog:   catalog,
		cart:      cart,
		publisher: publisher,
	}
}

func widget(stock int) ports.Product {
	return ports.Product{ID: "p-1", Name: "Widget", Price: decimal.NewFromInt(100), Stock: stock}
}

func baseCheckout() CheckoutInput {
	return CheckoutInput{
		UserID:        "user-1",
		SessionID:     "sess-1",
		Items:         []CheckoutItem{{ProductID: "p-1", Quantity: 2}},
		PaymentMethod: domain.PaymentCashOnDelivery,
	}
}

func TestCheckout_Success(t *testing.T) {
	f := newFixture(widget(10))

	order, err := f.uc.Checkout(context.Background(), baseCheckout())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if order.Status != domain.StatusPending {
		t.Errorf("expected status pending, got %s", order.Status)
	}
	if !order.Subtotal.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected subtotal 200, got %s", order.Subtotal)
	}
	if !order.Tax.Equal(decimal.NewFromInt(24)) {
		t.Errorf("expected tax 24, got %s", order.Tax)
	}
	if !order.TotalAmount.Equal(decimal.NewFromInt(224)) {
		t.Errorf("expected total 224, got %s", order.TotalAmount)
	}

	if f.catalog.products["p-1"].Stock != 8 {
		t.Errorf("expected stock 8 after reservation, got %d", f.catalog.products["p-1"].Stock)
	}
	if len(f.cart.cleared) != 1 || f.cart.cleared[0] != "sess-1" {
		t.Errorf("expected session cart to be cleared, got %v", f.cart.cleared)
	}
	if f.publisher.created != 1 {
		t.Errorf("expected one created event, got %d", f.publisher.created)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture(widget(10))

	input := baseCheckout()
	input.Items = nil

	if _, err := f.uc.Checkout(context.Background(), input); err != domain.ErrEmptyCart {
		t.Errorf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckout_EWalletRequiresReference(t *testing.T) {
	f := newFixture(widget(10))

	input := baseCheckout()
	input.PaymentMethod = domain.PaymentEWallet
	input.PaymentProofRef = "proof-1"

	if _, err := f.uc.Checkout(context.Background(), input); err != domain.ErrMissingPaymentReference {
		t.Errorf("expected ErrMissingPaymentReference, got %v", err)
	}
	if f.catalog.products["p-1"].Stock != 10 {
		t.Errorf("expected stock untouched, got %d", f.catalog.products["p-1"].Stock)
	}
}

func TestCheckout_UnknownProduct(t *testing.T) {
	f := newFixture(widget(10))

	input := baseCheckout()
	input.Items = append(input.Items, CheckoutItem{ProductID: "p-missing", Quantity: 1})

	if _, err := f.uc.Checkout(context.Background(), input); !errors.Is(err, errors.CodeValidation) {
		t.Errorf("expected validation error for unknown product, got %v", err)
	}
}

func TestCheckout_InsufficientStock(t *testing.T) {
	f := newFixture(widget(1))

	if _, err := f.uc.Checkout(context.Background(), baseCheckout()); !errors.Is(err, errors.CodeConflict) {
		t.Errorf("expected conflict error, got %v", err)
	}
	if f.catalog.products["p-1"].Stock != 1 {
		t.Errorf("expected stock untouched, got %d", f.catalog.products["p-1"].Stock)
	}
}

func TestCheckout_InvalidQuantity(t *testing.T) {
	f := newFixture(widget(10))

	input := baseCheckout()
	input.Items = []CheckoutItem{{ProductID: "p-1", Quantity: 0}}

	if _, err := f.uc.Checkout(context.Background(), input); !errors.Is(err, errors.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCheckout_IdempotentReplay(t *testing.T) {
	f := newFixture(widget(10))

	input := baseCheckout()
	input.IdempotencyKey = "key-1"

	first, err := f.uc.Checkout(context.Background(), input)
	if err != nil {
		t.Fatalf("first checkout failed: %v", err)
	}

	second, err := f.uc.Checkout(context.Background(), input)
	if err != nil {
		t.Fatalf("replayed checkout failed: %v", err)
	}

	if second.OrderID != first.OrderID {
		t.Errorf("expected replay to return the original order, got %s and %s", first.OrderID, second.OrderID)
	}
	if f.catalog.products["p-1"].Stock != 8 {
		t.Errorf("expected stock decremented exactly once, got %d", f.catalog.products["p-1"].Stock)
	}
	if f.publisher.created != 1 {
		t.Errorf("expected a single created event, got %d", f.publisher.created)
	}
}

func TestGetOrder_OwnershipScope(t *testing.T) {
	f := newFixture(widget(10))

	order, err := f.uc.Checkout(context.Background(), baseCheckout())
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if _, err := f.uc.GetOrder(context.Background(), order.OrderID, domain.Actor{ID: "user-1", Role: domain.RoleCustomer}); err != nil {
		t.Errorf("owner lookup failed: %v", err)
	}
	if _, err := f.uc.GetOrder(context.Background(), order.OrderID, domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}); err != nil {
		t.Errorf("admin lookup failed: %v", err)
	}
	if _, err := f.uc.GetOrder(context.Background(), order.OrderID, domain.Actor{ID: "user-2", Role: domain.RoleCustomer}); !errors.Is(err, errors.CodeNotFound) {
		t.Errorf("expected not found for foreign customer, got %v", err)
	}
}

func TestTransition_CustomerCancel(t *testing.T) {
	f := newFixture(widget(10))
	actor := domain.Actor{ID: "user-1", Role: domain.RoleCustomer}

	order, err := f.uc.Checkout(context.Background(), baseCheckout())
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	cancelled, err := f.uc.Transition(context.Background(), TransitionInput{
		OrderID: order.OrderID,
		Target:  domain.StatusCancelled,
		Actor:   actor,
	})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Errorf("expected cancelled, got %s", cancelled.Status)
	}
	if f.publisher.statusChanged != 1 {
		t.Errorf("expected one status event, got %d", f.publisher.statusChanged)
	}

	// The edge is gone once taken.
	if _, err := f.uc.Transition(context.Background(), TransitionInput{
		OrderID: order.OrderID,
		Target:  domain.StatusCancelled,
		Actor:   actor,
	}); !errors.Is(err, errors.CodeValidation) {
		t.Errorf("expected invalid transition on second cancel, got %v", err)
	}
}

func TestTransition_ConcurrentUpdateSurfacesAsInvalidEdge(t *testing.T) {
	f := newFixture(widget(10))
	admin := domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}

	order, err := f.uc.Checkout(context.Background(), baseCheckout())
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	// Move the stored order out from under the planned transition.
	stored := f.repo.orders[order.OrderID]
	stored.Status = domain.StatusCancelled
	f.repo.orders[order.OrderID] = stored

	if _, err := f.uc.Transition(context.Background(), TransitionInput{
		OrderID: order.OrderID,
		Target:  domain.StatusPaid,
		Actor:   admin,
	}); !errors.Is(err, errors.CodeValidation) {
		t.Errorf("expected invalid transition after concurrent update, got %v", err)
	}
}

func TestProcessRefund_Partial(t *testing.T) {
	f := newFixture(widget(10))
	admin := domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}

	order, err := f.uc.Checkout(context.Background(), baseCheckout())
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	refunded, err := f.uc.ProcessRefund(context.Background(), RefundInput{
		OrderID: order.OrderID,
		Amount:  decimal.NewFromInt(50),
		Reason:  "damaged item",
		Actor:   admin,
	})
	if err != nil {
		t.Fatalf("refund failed: %v", err)
	}

	if refunded.Status != domain.StatusRefund {
		t.Errorf("expected status refund, got %s", refunded.Status)
	}
	if refunded.RefundAmount == nil || !refunded.RefundAmount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected refund amount 50, got %v", refunded.RefundAmount)
	}
	if refunded.RefundReason != "damaged item" {
		t.Errorf("expected refund reason carried, got %q", refunded.RefundReason)
	}
	if refunded.RefundProcessedAt == nil {
		t.Error("expected RefundProcessedAt to be set")
	}
	if f.publisher.refunded != 1 {
		t.Errorf("expected one refunded event, got %d", f.publisher.refunded)
	}

	// Refunded orders cannot be cancelled by the customer.
	if _, err := f.uc.Transition(context.Background(), TransitionInput{
		OrderID: order.OrderID,
		Target:  domain.StatusCancelled,
		Actor:   domain.Actor{ID: "user-1", Role: domain.RoleCustomer},
	}); err == nil {
		t.Error("expected cancel after refund to fail")
	}
}

func TestProcessRefund_FullUsesOrderTotal(t *testing.T) {
	f := newFixture(widget(10))
	admin := domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}

	order, err := f.uc.Checkout(context.Background(), baseCheckout())
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	refunded, err := f.uc.ProcessRefund(context.Background(), RefundInput{
		OrderID: order.OrderID,
		Full:    true,
		Reason:  "customer request",
		Actor:   admin,
	})
	if err != nil {
		t.Fatalf("refund failed: %v", err)
	}
	if refunded.RefundAmount == nil || !refunded.RefundAmount.Equal(order.TotalAmount) {
		t.Errorf("expected refund amount %s, got %v", order.TotalAmount, refunded.RefundAmount)
	}
}

func TestProcessRefund_RejectsBadAmounts(t *testing.T) {
	f := newFixture(widget(10))
	admin := domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}

	order, err := f.uc.Checkout(context.Background(), baseCheckout())
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if _, err := f.uc.ProcessRefund(context.Background(), RefundInput{
		OrderID: order.OrderID,
		Amount:  decimal.NewFromInt(1000),
		Actor:   admin,
	}); !errors.Is(err, errors.CodeValidation) {
		t.Errorf("expected validation error for refund above total, got %v", err)
	}

	if _, err := f.uc.ProcessRefund(context.Background(), RefundInput{
		OrderID: order.OrderID,
		Amount:  decimal.Zero,
		Actor:   admin,
	}); err != domain.ErrInvalidRefundAmount {
		t.Errorf("expected ErrInvalidRefundAmount, got %v", err)
	}

	// Failed refunds leave the order untouched.
	fresh, err := f.uc.GetOrder(context.Background(), order.OrderID, admin)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if fresh.Status != domain.StatusPending || fresh.RefundAmount != nil {
		t.Errorf("expected pending order without refund fields, got status=%s refund=%v", fresh.Status, fresh.RefundAmount)
	}
}
