package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceTicker price ticker
type PriceTicker struct {
	Provider  string          `json:"provider,omitempty"`
	Symbol    string          `json:"symbol,omitempty"`
	Price     decimal.Decimal `json:"price,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

// UpdatedAt time the ticker was observed
func (t *PriceTicker) UpdatedAt() time.Time {
	return time.Unix(t.Timestamp, 0)
}

// PriceOracle external price feeds
type PriceOracle interface {
	// LatestPrice latest price of the feed and the time it was published
	LatestPrice(ctx context.Context, feed string) (decimal.Decimal, time.Time, error)
}

// RateSource exchange rate of a collateral token to its reference unit
type RateSource interface {
	ExchangeRate(ctx context.Context) (decimal.Decimal, error)
}

// RewardSource the external claim hook of an asset
type RewardSource interface {
	// Claim credit holder with its pending rewards, returns the amount
	Claim(ctx context.Context, holder string) (decimal.Decimal, error)
}

// Clock time source
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock wall clock
var SystemClock Clock = systemClock{}
