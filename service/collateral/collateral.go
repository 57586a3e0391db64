package collateral

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rtoken/core"
	"rtoken/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Config collateral plugin config
type Config struct {
	Token          string
	TargetName     string
	MaxTradeVolume decimal.Decimal
	OracleTimeout  time.Duration
	// PegFeed target units per reference unit, empty means pegged at 1
	PegFeed string
	// TargetFeed unit of account per target unit, empty means 1
	TargetFeed        string
	DefaultThreshold  decimal.Decimal
	DelayUntilDefault time.Duration
	// RefPerTokThreshold rate below which the collateral is IFFY, zero disables
	RefPerTokThreshold decimal.Decimal
}

// Validate check config
func (cfg Config) Validate() error {
	if cfg.Token == "" || cfg.TargetName == "" {
		return core.ErrInvalidCollateralConfig
	}

	if !cfg.DefaultThreshold.IsPositive() {
		return core.ErrDefaultThresholdZero
	}

	if !cfg.RefPerTokThreshold.IsZero() && cfg.RefPerTokThreshold.LessThan(one) {
		return core.ErrRefPerTokThresholdTooLow
	}

	if !cfg.MaxTradeVolume.IsPositive() || cfg.DelayUntilDefault <= 0 {
		return core.ErrInvalidCollateralConfig
	}

	return nil
}

// Collateral yield bearing or fiat collateral
type Collateral struct {
	cfg     Config
	oracle  core.PriceOracle
	rate    core.RateSource
	rewards core.RewardSource
	reward  string
	clock   core.Clock
	events  core.EventEmitter

	mu        sync.RWMutex
	status    core.CollateralStatus
	prevRef   decimal.Decimal
	actualRef decimal.Decimal
	iffySince time.Time
}

// New new collateral, rate and rewards may be nil
func New(
	cfg Config,
	oracle core.PriceOracle,
	rate core.RateSource,
	rewards core.RewardSource,
	rewardToken string,
	clock core.Clock,
	events core.EventEmitter,
) (*Collateral, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if rewards == nil {
		rewardToken = ""
	}

	c := &Collateral{
		cfg:     cfg,
		oracle:  oracle,
		rate:    rate,
		rewards: rewards,
		reward:  rewardToken,
		clock:   clock,
		events:  events,
		status:  core.CollateralStatusSound,
	}

	if r, err := c.readRate(context.Background()); err == nil && r.IsPositive() {
		c.prevRef, c.actualRef = r, r
	}

	return c, nil
}

func (c *Collateral) Token() string {
	return c.cfg.Token
}

func (c *Collateral) TargetName() string {
	return c.cfg.TargetName
}

func (c *Collateral) MaxTradeVolume() decimal.Decimal {
	return c.cfg.MaxTradeVolume
}

func (c *Collateral) DelayUntilDefault() time.Duration {
	return c.cfg.DelayUntilDefault
}

func (c *Collateral) IsCollateral() bool {
	return true
}

func (c *Collateral) RewardToken() string {
	return c.reward
}

func (c *Collateral) ClaimRewards(ctx context.Context, holder string) (decimal.Decimal, error) {
	return claim(ctx, c.rewards, holder)
}

func (c *Collateral) Status() core.CollateralStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.status
}

// RefPerTok the confirmed high-water mark, or the raw rate once DISABLED
func (c *Collateral) RefPerTok() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.status == core.CollateralStatusDisabled {
		return c.actualRef
	}

	return c.prevRef
}

func (c *Collateral) ActualRefPerTok() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.actualRef
}

// PrevReferencePrice high-water mark of the exchange rate
func (c *Collateral) PrevReferencePrice() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.prevRef
}

func (c *Collateral) TargetPerRef(ctx context.Context) (decimal.Decimal, error) {
	if c.cfg.PegFeed == "" {
		return one, nil
	}

	return feedPrice(ctx, c.oracle, c.clock, c.cfg.PegFeed, c.cfg.OracleTimeout)
}

func (c *Collateral) PricePerTarget(ctx context.Context) (decimal.Decimal, error) {
	if c.cfg.TargetFeed == "" {
		return one, nil
	}

	return feedPrice(ctx, c.oracle, c.clock, c.cfg.TargetFeed, c.cfg.OracleTimeout)
}

// Price price = actual_ref_per_tok * target_per_ref * uoa_per_target
func (c *Collateral) Price(ctx context.Context) (decimal.Decimal, error) {
	targetPerRef, err := c.TargetPerRef(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	pricePerTarget, err := c.PricePerTarget(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	ref := c.ActualRefPerTok()
	if !ref.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s ref per tok %s: %w", c.cfg.Token, ref, core.ErrInvalidPrice)
	}

	return number.Floor(ref.Mul(targetPerRef).Mul(pricePerTarget)), nil
}

// Refresh poll the rate source and peg feed, advancing the status machine
func (c *Collateral) Refresh(ctx context.Context) {
	log := logger.FromContext(ctx).WithField("collateral", c.cfg.Token)

	rate, rateErr := c.readRate(ctx)
	targetPerRef, pegErr := c.TargetPerRef(ctx)
	_, targetErr := c.PricePerTarget(ctx)
	now := c.clock.Now()

	c.mu.Lock()
	old := c.status
	if rateErr == nil && rate.IsPositive() {
		c.actualRef = rate
	}

	if old == core.CollateralStatusDisabled {
		c.mu.Unlock()
		return
	}

	next := core.CollateralStatusSound
	switch {
	case rateErr != nil, !rate.IsPositive():
		log.WithError(rateErr).Warnln("invalid exchange rate", rate)
		next = core.CollateralStatusDisabled
	case pegErr != nil, targetErr != nil:
		log.WithError(firstErr(pegErr, targetErr)).Warnln("oracle unavailable")
		next = core.CollateralStatusDisabled
	case rate.LessThan(c.prevRef),
		targetPerRef.Sub(one).Abs().GreaterThan(c.cfg.DefaultThreshold),
		!c.cfg.RefPerTokThreshold.IsZero() && rate.LessThan(c.cfg.RefPerTokThreshold):
		next = core.CollateralStatusIffy
	}

	if next == core.CollateralStatusIffy {
		if old != core.CollateralStatusIffy {
			c.iffySince = now
		} else if now.Sub(c.iffySince) >= c.cfg.DelayUntilDefault {
			next = core.CollateralStatusDisabled
		}
	}

	if next == core.CollateralStatusSound {
		c.iffySince = time.Time{}
		if rate.GreaterThan(c.prevRef) {
			c.prevRef = rate
		}
	}

	status, err := old.Transition(next)
	if err != nil {
		c.mu.Unlock()
		log.WithError(err).Errorln("transition", old, next)
		return
	}

	c.status = status
	c.mu.Unlock()

	if status != old {
		log.Infoln("status changed", old, "->", status)
		if c.events != nil {
			c.events.Emit(ctx, core.NewEvent(core.EventDefaultStatusChanged, c.cfg.Token, &core.DefaultStatusChangedEvent{
				Token: c.cfg.Token,
				Old:   old,
				New:   status,
			}, now))
		}
	}
}

func (c *Collateral) Checkpoint() func() {
	c.mu.RLock()
	status, prev, actual, since := c.status, c.prevRef, c.actualRef, c.iffySince
	c.mu.RUnlock()

	return func() {
		c.mu.Lock()
		c.status, c.prevRef, c.actualRef, c.iffySince = status, prev, actual, since
		c.mu.Unlock()
	}
}

func (c *Collateral) readRate(ctx context.Context) (rate decimal.Decimal, err error) {
	if c.rate == nil {
		return one, nil
	}

	defer func() {
		if r := recover(); r != nil {
			rate, err = decimal.Zero, fmt.Errorf("exchange rate panic: %v", r)
		}
	}()

	return c.rate.ExchangeRate(ctx)
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}
