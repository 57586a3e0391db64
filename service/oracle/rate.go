package oracle

import (
	"context"
	"sync"

	"rtoken/core"

	"github.com/shopspring/decimal"
)

type feedRate struct {
	oracle core.PriceOracle
	feed   string
}

// NewRateFeed read an exchange rate from a price feed
func NewRateFeed(oracle core.PriceOracle, feed string) core.RateSource {
	return &feedRate{oracle: oracle, feed: feed}
}

func (r *feedRate) ExchangeRate(ctx context.Context) (decimal.Decimal, error) {
	rate, _, err := r.oracle.LatestPrice(ctx, r.feed)
	return rate, err
}

// Rate settable exchange rate
type Rate struct {
	mu   sync.RWMutex
	rate decimal.Decimal
	err  error
}

// NewRate new settable rate
func NewRate(rate decimal.Decimal) *Rate {
	return &Rate{rate: rate}
}

// Set update the rate and clear any failure
func (r *Rate) Set(rate decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rate = rate
	r.err = nil
}

// Fail make ExchangeRate return err
func (r *Rate) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.err = err
}

func (r *Rate) ExchangeRate(_ context.Context) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.rate, r.err
}
