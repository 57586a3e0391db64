package oracle

import (
	"context"
	"fmt"
	"time"

	"rtoken/core"
	"rtoken/pkg/concurrency"
	"rtoken/pkg/resthttp"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const defaultCacheTTL = 10 * time.Second

// PriceService http price oracle
type PriceService struct {
	client *resthttp.Client
	ttl    time.Duration
	cache  gcache.Cache
	sf     *singleflight.Group
	limit  *concurrency.GoLimit
}

// New new oracle price service
func New(cfg core.PriceOracleConfig) *PriceService {
	ttl := cfg.CacheTTL.Duration()
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return &PriceService{
		client: resthttp.New(cfg.EndPoint, 0),
		ttl:    ttl,
		cache:  gcache.New(1024).LRU().Build(),
		sf:     &singleflight.Group{},
		limit:  concurrency.NewGoLimit(8),
	}
}

// LatestPrice latest ticker of feed, served from cache within ttl
func (s *PriceService) LatestPrice(ctx context.Context, feed string) (decimal.Decimal, time.Time, error) {
	if v, err := s.cache.Get(feed); err == nil {
		if ticker, ok := v.(*core.PriceTicker); ok {
			return ticker.Price, ticker.UpdatedAt(), nil
		}
	}

	v, err, _ := s.sf.Do(feed, func() (interface{}, error) {
		ticker, err := s.PullPriceTicker(ctx, feed)
		if err != nil {
			return nil, err
		}

		_ = s.cache.SetWithExpire(feed, ticker, s.ttl)
		return ticker, nil
	})
	if err != nil {
		return decimal.Zero, time.Time{}, fmt.Errorf("pull %s: %w", feed, core.ErrPriceUnavailable)
	}

	ticker := v.(*core.PriceTicker)
	return ticker.Price, ticker.UpdatedAt(), nil
}

// PullPriceTicker pull price ticker
func (s *PriceService) PullPriceTicker(ctx context.Context, feed string) (*core.PriceTicker, error) {
	path := "/api/v2/tickers/" + feed
	logger.FromContext(ctx).Debugln("pull price:", path)

	var ticker core.PriceTicker
	if err := s.client.GetJSON(ctx, path, &ticker); err != nil {
		return nil, err
	}

	if !ticker.Price.IsPositive() {
		return nil, core.ErrInvalidPrice
	}

	// a ticker without a publish time can not be checked for staleness
	if ticker.Timestamp <= 0 {
		return nil, fmt.Errorf("ticker %s has no timestamp: %w", feed, core.ErrPriceUnavailable)
	}

	return &ticker, nil
}

// Prefetch warm the cache for feeds, failures are logged and skipped
func (s *PriceService) Prefetch(ctx context.Context, feeds []string) error {
	log := logger.FromContext(ctx).WithField("service", "oracle")

	var g errgroup.Group
	for _, feed := range feeds {
		feed := feed
		if err := s.limit.Acquire(ctx); err != nil {
			break
		}

		g.Go(func() error {
			defer s.limit.Release()
			if _, _, err := s.LatestPrice(ctx, feed); err != nil {
				log.WithError(err).Warnln("prefetch", feed)
			}
			return nil
		})
	}

	return g.Wait()
}
