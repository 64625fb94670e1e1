package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ofekfell/mediaflow/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces cache keys.
const DefaultPrefix = "mediaflow:asset:"

// Cache implements ports.AssetCache on Redis, so several processes sharing
// a download directory reuse each other's retrievals.
type Cache struct {
	client backend.UniversalClient
	prefix string
	ttl    time.Duration
}

// Option configures the cache.
type Option func(*Cache)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// WithTTL expires entries after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// New connects to addr.
func New(addr string, opts ...Option) *Cache {
	client := backend.NewClient(&backend.Options{Addr: addr})
	return NewFromClient(client, opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client backend.UniversalClient, opts ...Option) *Cache {
	c := &Cache{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (c *Cache) Client() backend.UniversalClient { return c.client }

// Prefix returns the key prefix in use.
func (c *Cache) Prefix() string { return c.prefix }

func (c *Cache) key(ref string) string {
	return c.prefix + ref
}

// Get returns the cached path for ref. An entry whose file no longer exists
// is dropped and reported as a miss.
func (c *Cache) Get(ctx context.Context, ref string) (string, error) {
	path, err := c.client.Get(ctx, c.key(ref)).Result()
	if errors.Is(err, backend.Nil) {
		return "", ports.ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", ref, err)
	}

	if _, err := os.Stat(path); err != nil {
		if delErr := c.Delete(ctx, ref); delErr != nil {
			return "", delErr
		}
		return "", ports.ErrCacheMiss
	}
	return path, nil
}

// Put records path for ref.
func (c *Cache) Put(ctx context.Context, ref, path string) error {
	if err := c.client.Set(ctx, c.key(ref), path, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", ref, err)
	}
	return nil
}

// Delete forgets ref.
func (c *Cache) Delete(ctx context.Context, ref string) error {
	if err := c.client.Del(ctx, c.key(ref)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", ref, err)
	}
	return nil
}

// Close closes the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}

var _ ports.AssetCache = (*Cache)(nil)
