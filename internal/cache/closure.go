// Package cache keeps computed slide closures in redis.
//
// Entries are keyed by a store-wide generation number. Every mutation of
// the containment graph bumps the generation, which orphans all older
// entries at once; they expire through their TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// ClosureCache implements deck.ClosureCache using Redis.
type ClosureCache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*ClosureCache)

// WithTTL sets the expiration for cached closures.
func WithTTL(ttl time.Duration) Option {
	return func(c *ClosureCache) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(c *ClosureCache) {
		c.prefix = prefix
	}
}

// New creates a cache with its own client.
func New(address, password string, db int, opts ...Option) *ClosureCache {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a cache from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *ClosureCache {
	c := &ClosureCache{
		client: client,
		prefix: "decktree:",
		ttl:    10 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ClosureCache) genKey() string {
	return c.prefix + "generation"
}

func (c *ClosureCache) key(gen int64, deckID uuid.UUID) string {
	return c.prefix + "closure:" + strconv.FormatInt(gen, 10) + ":" + deckID.String()
}

// Generation returns the current generation; 0 before the first mutation.
func (c *ClosureCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey()).Int64()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read cache generation: %w", err)
	}
	return gen, nil
}

// Get returns the cached closure for deckID under gen.
func (c *ClosureCache) Get(ctx context.Context, gen int64, deckID uuid.UUID) ([]uuid.UUID, bool, error) {
	val, err := c.client.Get(ctx, c.key(gen, deckID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get from redis: %w", err)
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(val, &ids); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal closure: %w", err)
	}
	return ids, true, nil
}

// Put stores a closure computed while gen was current.
func (c *ClosureCache) Put(ctx context.Context, gen int64, deckID uuid.UUID, ids []uuid.UUID) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal closure: %w", err)
	}
	if err := c.client.Set(ctx, c.key(gen, deckID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Invalidate bumps the generation so no existing entry is served again.
func (c *ClosureCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.genKey()).Err(); err != nil {
		return fmt.Errorf("failed to bump cache generation: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (c *ClosureCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client.
func (c *ClosureCache) Close() error {
	return c.client.Close()
}
