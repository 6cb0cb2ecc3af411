package marketdata

import (
	"context"
	"strings"
	"time"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/financial"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/metrics"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

// Cache is a JSON key-value store with expiry. A miss is errors.ErrNotFound.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CachedProvider serves repeated fetches for a symbol from a cache.
// Cache errors fall through to the wrapped provider.
type CachedProvider struct {
	next  Provider
	cache Cache
	ttl   time.Duration
	log   *logger.Logger
}

var _ Provider = (*CachedProvider)(nil)

// NewCachedProvider wraps next with a response cache
func NewCachedProvider(next Provider, cache Cache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		next:  next,
		cache: cache,
		ttl:   ttl,
		log:   logger.Get().With("component", "marketdata_cache", "provider", next.Name()),
	}
}

func (c *CachedProvider) Name() string { return c.next.Name() }

func (c *CachedProvider) FetchKeyMetrics(ctx context.Context, ticker string) (*financial.Metric, error) {
	key := c.key(ticker)

	var cached financial.Metric
	err := c.cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return &cached, nil
	case errors.Is(err, errors.ErrNotFound):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		c.log.Warnw("Cache read failed", "key", key, "error", err)
	}

	m, err := c.next.FetchKeyMetrics(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if m == nil || m.CurrentPrice == nil {
		return m, nil
	}

	if err := c.cache.Set(ctx, key, m, c.ttl); err != nil {
		c.log.Warnw("Cache write failed", "key", key, "error", err)
	}
	return m, nil
}

func (c *CachedProvider) key(ticker string) string {
	return "marketdata:" + c.next.Name() + ":" + strings.ToUpper(strings.TrimSpace(ticker))
}
