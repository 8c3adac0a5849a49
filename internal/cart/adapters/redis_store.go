package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/cart/domain"
	apperrors "storefront/pkg/errors"
)

// RedisCartStore persists session carts as JSON blobs in Redis. The TTL
// mirrors the session lifetime: an untouched cart expires with its session.
type RedisCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCartStore creates a new Redis-backed cart store
func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the session's cart, or an empty cart when the key is missing
func (s *RedisCartStore) Get(ctx context.Context, sessionID string) (domain.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return domain.Cart{}, apperrors.NewInternal("failed to read cart", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return domain.Cart{}, apperrors.NewInternal("failed to decode cart", err)
	}

	return cart, nil
}

// Set stores the cart and refreshes its TTL
func (s *RedisCartStore) Set(ctx context.Context, sessionID string, cart domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return apperrors.NewInternal("failed to encode cart", err)
	}

	if err := s.client.Set(ctx, cartKey(sessionID), data, s.ttl).Err(); err != nil {
		return apperrors.NewInternal("failed to write cart", err)
	}

	return nil
}

// Delete drops the session's cart
func (s *RedisCartStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return apperrors.NewInternal("failed to delete cart", err)
	}
	return nil
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}
