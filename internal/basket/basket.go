package basket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/go-redis/redis/v8"
)

// ErrNotFound signals that no basket exists under the requested id
var ErrNotFound = errors.New("basket not found")

// Store keeps baskets as JSON documents in Redis, one key per basket.
// Baskets are client-owned and mutable; the order workflow deletes them on
// checkout.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore creates a basket store backed by Redis
func NewStore(addr, password string, db int) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Store{rdb: rdb, ttl: 30 * 24 * time.Hour}, nil
}

// GetClient returns the underlying Redis client
func (s *Store) GetClient() *redis.Client {
	return s.rdb
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.rdb.Close()
}

func basketKey(id string) string {
	return fmt.Sprintf("basket:%s", id)
}

// Get retrieves a basket by id
func (s *Store) Get(ctx context.Context, basketID string) (*models.Basket, error) {
	data, err := s.rdb.Get(ctx, basketKey(basketID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("basket %s: %w", basketID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get basket: %w", err)
	}

	var basket models.Basket
	if err := json.Unmarshal(data, &basket); err != nil {
		return nil, fmt.Errorf("failed to decode basket: %w", err)
	}
	return &basket, nil
}

// Put stores a basket under its id, resetting the expiry
func (s *Store) Put(ctx context.Context, basket *models.Basket) error {
	data, err := json.Marshal(basket)
	if err != nil {
		return fmt.Errorf("failed to encode basket: %w", err)
	}

	if err := s.rdb.Set(ctx, basketKey(basket.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store basket: %w", err)
	}
	return nil
}

// Delete removes a basket. Deleting a missing basket is not an error.
func (s *Store) Delete(ctx context.Context, basketID string) error {
	if err := s.rdb.Del(ctx, basketKey(basketID)).Err(); err != nil {
		return fmt.Errorf("failed to delete basket: %w", err)
	}
	return nil
}
