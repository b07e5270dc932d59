package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProductCache keeps product lookup results in Redis as JSON. A nil cache or nil client
// turns every call into a miss, so callers never need to check for one.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProductCache constructs a cache helper. A non-positive ttl defaults to 5 minutes.
func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProductCache{client: client, ttl: ttl}
}

func productCacheKey(companyID int, query string) string {
	return fmt.Sprintf("product:%d:%s", companyID, strings.ToLower(strings.TrimSpace(query)))
}

// Get returns the cached product for a lookup query, reporting whether it existed.
func (c *ProductCache) Get(ctx context.Context, companyID int, query string) (*Product, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	data, err := c.client.Get(ctx, productCacheKey(companyID, query)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false, err
	}
	return &p, true, nil
}

// Set stores p under the lookup query with the configured TTL.
func (c *ProductCache) Set(ctx context.Context, companyID int, query string, p *Product) error {
	if c == nil || c.client == nil || p == nil {
		return nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, productCacheKey(companyID, query), data, c.ttl).Err()
}
