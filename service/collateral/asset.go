package collateral

import (
	"context"
	"fmt"
	"time"

	"rtoken/core"

	"github.com/shopspring/decimal"
)

// AssetConfig priced, non-collateral asset
type AssetConfig struct {
	Token          string
	Feed           string
	MaxTradeVolume decimal.Decimal
	// OracleTimeout max age of a price, zero disables the check
	OracleTimeout time.Duration
}

// Asset plain asset priced by one feed, eg RSR or reward tokens
type Asset struct {
	cfg     AssetConfig
	oracle  core.PriceOracle
	rewards core.RewardSource
	reward  string
	clock   core.Clock
}

// NewAsset new plain asset, rewards may be nil
func NewAsset(cfg AssetConfig, oracle core.PriceOracle, rewards core.RewardSource, rewardToken string, clock core.Clock) (*Asset, error) {
	if cfg.Token == "" || cfg.Feed == "" || !cfg.MaxTradeVolume.IsPositive() {
		return nil, core.ErrInvalidCollateralConfig
	}

	if rewards == nil {
		rewardToken = ""
	}

	return &Asset{
		cfg:     cfg,
		oracle:  oracle,
		rewards: rewards,
		reward:  rewardToken,
		clock:   clock,
	}, nil
}

func (a *Asset) Token() string {
	return a.cfg.Token
}

func (a *Asset) Price(ctx context.Context) (decimal.Decimal, error) {
	return feedPrice(ctx, a.oracle, a.clock, a.cfg.Feed, a.cfg.OracleTimeout)
}

func (a *Asset) MaxTradeVolume() decimal.Decimal {
	return a.cfg.MaxTradeVolume
}

func (a *Asset) IsCollateral() bool {
	return false
}

func (a *Asset) RewardToken() string {
	return a.reward
}

func (a *Asset) ClaimRewards(ctx context.Context, holder string) (decimal.Decimal, error) {
	return claim(ctx, a.rewards, holder)
}

// feedPrice latest positive price of feed no older than timeout
func feedPrice(ctx context.Context, oracle core.PriceOracle, clock core.Clock, feed string, timeout time.Duration) (decimal.Decimal, error) {
	price, at, err := oracle.LatestPrice(ctx, feed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("feed %s: %v: %w", feed, err, core.ErrPriceUnavailable)
	}

	if timeout > 0 && clock.Now().Sub(at) > timeout {
		return decimal.Zero, fmt.Errorf("feed %s stale since %s: %w", feed, at.Format(time.RFC3339), core.ErrPriceUnavailable)
	}

	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("feed %s: %w", feed, core.ErrInvalidPrice)
	}

	return price, nil
}

func claim(ctx context.Context, rewards core.RewardSource, holder string) (amount decimal.Decimal, err error) {
	if rewards == nil {
		return decimal.Zero, nil
	}

	defer func() {
		if r := recover(); r != nil {
			amount, err = decimal.Zero, fmt.Errorf("claim rewards panic: %v", r)
		}
	}()

	return rewards.Claim(ctx, holder)
}
