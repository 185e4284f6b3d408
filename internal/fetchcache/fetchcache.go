package fetchcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mmcloughlin/geohash"

	"github.com/yourorg/listings-api/internal/redisx"
)

// Cache is a generic key -> payload cache with TTL and optional ETag, used
// by provider adapters to avoid redundant upstream calls. Adapters degrade
// to a direct fetch when the cache is absent or unreachable.
type Cache struct {
	Redis *redisx.Client
	TTL   time.Duration
}

type entry struct {
	Payload json.RawMessage `json:"payload_json"`
	ETag    string          `json:"etag,omitempty"`
}

func New(r *redisx.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &Cache{Redis: r, TTL: ttl}
}

func (c *Cache) Enabled() bool { return c != nil && c.Redis != nil }

// GeoKey scopes a cache key to a ~1.2km cell so nearby lookups of the same
// provider share an entry.
func GeoKey(provider string, lat, lng float64, extra string) string {
	k := "fetch:" + provider + ":" + geohash.EncodeWithPrecision(lat, lng, 6)
	if extra != "" {
		k += ":" + extra
	}
	return k
}

func Key(provider, extra string) string {
	return "fetch:" + provider + ":" + extra
}

// Get returns the cached payload and etag for key, or found=false.
func (c *Cache) Get(ctx context.Context, key string) (payload json.RawMessage, etag string, found bool) {
	if !c.Enabled() {
		return nil, "", false
	}
	val, err := c.Redis.Get(ctx, key)
	if err != nil || val == "" {
		return nil, "", false
	}
	var e entry
	if err := json.Unmarshal([]byte(val), &e); err != nil {
		return nil, "", false
	}
	return e.Payload, e.ETag, true
}

// Put stores payload under key for the cache TTL. Errors are swallowed: the
// cache is an optimization, never a dependency.
func (c *Cache) Put(ctx context.Context, key string, payload json.RawMessage, etag string) {
	if !c.Enabled() {
		return
	}
	b, err := json.Marshal(entry{Payload: payload, ETag: etag})
	if err != nil {
		return
	}
	_ = c.Redis.Set(ctx, key, string(b), c.TTL)
}
