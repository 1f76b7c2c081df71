// Package embedding provides name embeddings for semantic matching: a bounded
// read-through cache in front of a (possibly slow) embedding provider.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/banking/sanctions-screening/internal/pkg/logger"
)

// Provider computes an embedding vector for a normalized name
type Provider interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// RemoteStore is an optional cache tier shared between service instances
type RemoteStore interface {
	Get(ctx context.Context, key string) ([]float64, bool, error)
	Set(ctx context.Context, key string, vec []float64) error
}

// CacheConfig bounds the in-process cache
type CacheConfig struct {
	Size         int           // max entries, 0 means unbounded
	TTL          time.Duration // 0 means entries never expire
	FetchTimeout time.Duration // upper bound for one provider call shared by waiters
}

// Cache is a read-through embedding cache keyed by normalized name.
//
// It is safe for concurrent use. Concurrent misses for the same key share one
// provider call. A caller that gives up (context done) does not cancel the
// shared call, so the result still lands in the cache for the next caller.
// Returned vectors are shared and must not be modified.
type Cache struct {
	provider Provider
	remote   RemoteStore
	local    *expirable.LRU[string, []float64]
	group    singleflight.Group
	cfg      CacheConfig
	log      *logger.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// CacheOption configures a Cache
type CacheOption func(*Cache)

// WithRemoteStore adds a shared second tier consulted before the provider
func WithRemoteStore(r RemoteStore) CacheOption {
	return func(c *Cache) {
		c.remote = r
	}
}

// NewCache creates a cache in front of provider
func NewCache(provider Provider, cfg CacheConfig, log *logger.Logger, opts ...CacheOption) *Cache {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Second
	}
	c := &Cache{
		provider: provider,
		local:    expirable.NewLRU[string, []float64](cfg.Size, nil, cfg.TTL),
		cfg:      cfg,
		log:      log.Named("embedding_cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Embedding returns the embedding for a normalized name, fetching it on a miss
func (c *Cache) Embedding(ctx context.Context, key string) ([]float64, error) {
	if vec, ok := c.local.Get(key); ok {
		c.hits.Add(1)
		return vec, nil
	}
	c.misses.Add(1)

	ch := c.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.FetchTimeout)
		defer cancel()
		return c.load(fetchCtx, key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]float64), nil
	}
}

func (c *Cache) load(ctx context.Context, key string) ([]float64, error) {
	if c.remote != nil {
		vec, ok, err := c.remote.Get(ctx, key)
		switch {
		case err != nil:
			c.log.Debug("remote embedding lookup failed", logger.ErrorField(err))
		case ok && validVector(vec):
			c.local.Add(key, vec)
			return vec, nil
		}
	}

	vec, err := c.provider.Embed(ctx, key)
	if err != nil {
		return nil, err
	}
	if !validVector(vec) {
		return nil, fmt.Errorf("provider returned an unusable embedding for %q", key)
	}

	c.local.Add(key, vec)
	if c.remote != nil {
		if err := c.remote.Set(ctx, key, vec); err != nil {
			c.log.Debug("remote embedding store failed", logger.ErrorField(err))
		}
	}
	return vec, nil
}

// Warm fetches embeddings for keys until ctx is done or the provider fails.
// It returns the number of keys that are now cached.
func (c *Cache) Warm(ctx context.Context, keys []string) (int, error) {
	warmed := 0
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return warmed, err
		}
		if _, err := c.Embedding(ctx, k); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return warmed, err
			}
			return warmed, fmt.Errorf("warm %q: %w", k, err)
		}
		warmed++
	}
	return warmed, nil
}

// Len returns the number of locally cached embeddings
func (c *Cache) Len() int {
	return c.local.Len()
}

// Stats returns local hit and miss counts
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func validVector(vec []float64) bool {
	if len(vec) == 0 {
		return false
	}
	for _, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
