package apiclient

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Store is the key/value capability the cache persists into.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

const cachePrefix = "apicache:"

type cacheEntry struct {
	Status    int         `msgpack:"s"`
	Header    http.Header `msgpack:"h"`
	Body      []byte      `msgpack:"b"`
	NoContent bool        `msgpack:"n"`
	StoredAt  time.Time   `msgpack:"t"`
}

// Cache keeps successful GET responses in a Store for ttl.
type Cache struct {
	store  Store
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

type CacheOption func(*Cache)

func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

func NewCache(store Store, ttl time.Duration, logger *slog.Logger, opts ...CacheOption) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cache{store: store, ttl: ttl, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached result for url. Expired or unreadable entries are
// dropped and reported as a miss.
func (c *Cache) Get(ctx context.Context, url string) (*Result, bool) {
	key := cachePrefix + url
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "api cache read failed", "url", url, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var e cacheEntry
	packed, err := base64.RawURLEncoding.DecodeString(raw)
	if err == nil {
		err = msgpack.Unmarshal(packed, &e)
	}
	if err != nil {
		c.logger.WarnContext(ctx, "api cache entry unreadable", "url", url, "error", err)
		c.evict(ctx, key)
		return nil, false
	}
	if c.now().Sub(e.StoredAt) >= c.ttl {
		c.evict(ctx, key)
		return nil, false
	}

	return &Result{Status: e.Status, Header: e.Header, Raw: e.Body, NoContent: e.NoContent}, true
}

// Put stores res under url. Failures are logged.
func (c *Cache) Put(ctx context.Context, url string, res *Result) {
	packed, err := msgpack.Marshal(cacheEntry{
		Status:    res.Status,
		Header:    res.Header,
		Body:      res.Raw,
		NoContent: res.NoContent,
		StoredAt:  c.now(),
	})
	if err != nil {
		c.logger.WarnContext(ctx, "api cache encode failed", "url", url, "error", err)
		return
	}
	if err := c.store.Set(ctx, cachePrefix+url, base64.RawURLEncoding.EncodeToString(packed)); err != nil {
		c.logger.WarnContext(ctx, "api cache write failed", "url", url, "error", err)
	}
}

func (c *Cache) evict(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, key); err != nil {
		c.logger.WarnContext(ctx, "api cache evict failed", "key", key, "error", err)
	}
}
