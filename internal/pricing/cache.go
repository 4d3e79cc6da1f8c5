package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sellerdeskhq/sellerdesk-backend/pkg/enums"
)

// CacheStore is the slice of the redis client the pricing cache needs.
type CacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	PriceCacheKey(currency, productID, customerGroupID, asOfBucket string) string
	PriceVersionKey(currency string) string
}

// resolutionCache is a read-through cache for resolved prices. It lives at the
// service edge; the resolver itself never touches it. Keys carry a per-currency
// generation counter, so a price-book write invalidates the whole currency with
// a single INCR instead of a key scan.
type resolutionCache struct {
	store CacheStore
	ttl   time.Duration
}

func newResolutionCache(store CacheStore, ttl time.Duration) *resolutionCache {
	if store == nil || ttl <= 0 {
		return nil
	}
	return &resolutionCache{store: store, ttl: ttl}
}

func (c *resolutionCache) get(ctx context.Context, req ResolveRequest) (*Resolution, bool) {
	if c == nil {
		return nil, false
	}
	key, err := c.key(ctx, req)
	if err != nil {
		return nil, false
	}
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var res Resolution
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, false
	}
	return &res, true
}

func (c *resolutionCache) put(ctx context.Context, req ResolveRequest, res *Resolution) {
	if c == nil || res == nil {
		return
	}
	key, err := c.key(ctx, req)
	if err != nil {
		return
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return
	}
	_ = c.store.Set(ctx, key, string(payload), c.ttl)
}

func (c *resolutionCache) invalidate(ctx context.Context, currency enums.Currency) error {
	if c == nil {
		return nil
	}
	_, err := c.store.Incr(ctx, c.store.PriceVersionKey(string(currency)))
	return err
}

func (c *resolutionCache) key(ctx context.Context, req ResolveRequest) (string, error) {
	version, err := c.store.Get(ctx, c.store.PriceVersionKey(string(req.Currency)))
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			return "", err
		}
		version = "0"
	}
	// Minute buckets bound staleness across validity-window edges to the
	// same order as the TTL itself.
	bucket := fmt.Sprintf("v%s:%s", version, req.AsOf.UTC().Format("2006-01-02T15:04"))
	return c.store.PriceCacheKey(string(req.Currency), req.ProductID, req.CustomerGroupID, bucket), nil
}
