package application

import (
	"context"
	"hash/fnv"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/cart/domain"
	"storefront/internal/cart/ports"
	"storefront/pkg/logger"
)

// lockStripes bounds the number of session mutexes; sessions hash onto them
const lockStripes = 64

// CartService owns all cart mutations. Every mutation is a pure op applied
// under the session's critical section, so a double-click cannot interleave
// two read-modify-write cycles on the same cart.
type CartService struct {
	store   ports.CartStore
	catalog ports.CatalogReader
	locks   [lockStripes]sync.Mutex
	log     *logger.Logger
}

// NewCartService creates a new cart service
func NewCartService(store ports.CartStore, catalog ports.CatalogReader, log *logger.Logger) *CartService {
	return &CartService{
		store:   store,
		catalog: catalog,
		log:     log,
	}
}

func (s *CartService) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%lockStripes]
}

// Get returns the session's cart, empty when none exists
func (s *CartService) Get(ctx context.Context, sessionID string) (domain.Cart, error) {
	return s.store.Get(ctx, sessionID)
}

// Add snapshots the product's current name and price into the cart,
// incrementing the quantity when the product is already there
func (s *CartService) Add(ctx context.Context, sessionID, productID string) (domain.Cart, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.Cart{}, err
	}
	if product == nil {
		return domain.Cart{}, domain.NewProductNotFound(productID)
	}

	return s.mutate(ctx, sessionID, domain.AddOp{
		Item: domain.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Qty:       1,
		},
	})
}

// Increase increments the quantity of an existing cart line
func (s *CartService) Increase(ctx context.Context, sessionID, productID string) (domain.Cart, error) {
	return s.mutateExisting(ctx, sessionID, productID, domain.IncreaseOp{ProductID: productID})
}

// Decrease decrements the quantity of an existing cart line; the line is
// removed when the quantity reaches zero
func (s *CartService) Decrease(ctx context.Context, sessionID, productID string) (domain.Cart, error) {
	return s.mutateExisting(ctx, sessionID, productID, domain.DecreaseOp{ProductID: productID})
}

// Remove drops a cart line regardless of quantity
func (s *CartService) Remove(ctx context.Context, sessionID, productID string) (domain.Cart, error) {
	return s.mutateExisting(ctx, sessionID, productID, domain.RemoveOp{ProductID: productID})
}

// Clear empties the session cart. Checkout calls this after the order is
// persisted.
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}

	s.log.WithContext(ctx).Debug("cart cleared",
		zap.String("session_id", sessionID),
	)
	return nil
}

func (s *CartService) mutate(ctx context.Context, sessionID string, op domain.Op) (domain.Cart, error) {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	updated := op.Apply(cart)
	if err := s.store.Set(ctx, sessionID, updated); err != nil {
		return domain.Cart{}, err
	}

	return updated, nil
}

// mutateExisting rejects the mutation when the product has no line in the cart
func (s *CartService) mutateExisting(ctx context.Context, sessionID, productID string, op domain.Op) (domain.Cart, error) {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}
	if cart.Find(productID) < 0 {
		return domain.Cart{}, domain.NewLineNotFound(productID)
	}

	updated := op.Apply(cart)
	if err := s.store.Set(ctx, sessionID, updated); err != nil {
		return domain.Cart{}, err
	}

	return updated, nil
}
