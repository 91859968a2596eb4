// Package cache stores finished comparison results in Redis so repeat
// lookups for the same product skip the scraping fan-out entirely.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"pricecheck/internal/errs"
	"pricecheck/internal/product"
)

const keyPrefix = "price_check:"

// Results is a cache-aside store for comparison results.
type Results struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewResults(rdb *redis.Client, ttl time.Duration) *Results {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Results{rdb: rdb, ttl: ttl}
}

// cacheKey derives a fixed-length key from the query so arbitrary user
// input never lands in the keyspace verbatim.
func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached result for the query, or nil on a miss.
func (r *Results) Get(ctx context.Context, query string) (*product.ComparisonResult, error) {
	raw, err := r.rdb.Get(ctx, cacheKey(query)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindCache, "cache read", err)
	}

	var result product.ComparisonResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		// A corrupt entry behaves like a miss; the fresh result
		// overwrites it.
		return nil, nil
	}
	return &result, nil
}

// Put stores the result under the query's key with the configured TTL.
func (r *Results) Put(ctx context.Context, query string, result *product.ComparisonResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return errs.Wrap(errs.KindCache, "encode cached result", err)
	}
	if err := r.rdb.SetEx(ctx, cacheKey(query), raw, r.ttl).Err(); err != nil {
		return errs.Wrap(errs.KindCache, "cache write", err)
	}
	return nil
}

// Invalidate drops the cached result for the query, if any.
func (r *Results) Invalidate(ctx context.Context, query string) error {
	if err := r.rdb.Del(ctx, cacheKey(query)).Err(); err != nil {
		return errs.Wrap(errs.KindCache, "cache delete", err)
	}
	return nil
}
