package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/domain"
)

// slotKey is the well-known slot name, kept from the original storefront.
const slotKey = "cartItems"

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		key:    slotKey,
	}
}

type RedisStore struct {
	client *redis.Client
	key    string
}

func (s RedisStore) Get(ctx context.Context) (domain.Cart, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Cart{}, ErrEmptySlot
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("redis get failed: %w", err)
	}

	var lines []domain.CartLine
	if err2 := json.Unmarshal(data, &lines); err2 != nil {
		return domain.Cart{}, fmt.Errorf("unmarshal cart failed: %w", err2)
	}

	return domain.Cart{Lines: lines}, nil
}

func (s RedisStore) Set(ctx context.Context, cart domain.Cart) error {
	data, err := json.Marshal(cart.Lines)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	// No TTL: the slot lives until checkout completes or the cart is cleared.
	if ret := s.client.Set(ctx, s.key, string(data), 0); ret.Err() != nil {
		return fmt.Errorf("redis set failed: %w", ret.Err())
	}
	return nil
}

func (s RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
