package collateral

import (
	"context"
	"errors"
	"testing"
	"time"

	"rtoken/core"
	"rtoken/pkg/number"
	"rtoken/service/oracle"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type emitter struct{ events []*core.Event }

func (e *emitter) Emit(_ context.Context, event *core.Event) { e.events = append(e.events, event) }

type fixture struct {
	clock  *clock
	oracle *oracle.Memory
	rate   *oracle.Rate
	events *emitter
	coll   *Collateral
}

func newFixture(t *testing.T, mutate ...func(*Config)) *fixture {
	f := &fixture{
		clock:  &clock{t: time.Unix(1700000000, 0)},
		rate:   oracle.NewRate(number.Decimal("1")),
		events: &emitter{},
	}
	f.oracle = oracle.NewMemory(f.clock)
	f.oracle.Set("DAI-USD", number.Decimal("1"))

	cfg := Config{
		Token:             "cDAI",
		TargetName:        "USD",
		MaxTradeVolume:    number.Decimal("1000000"),
		OracleTimeout:     48 * time.Hour,
		PegFeed:           "DAI-USD",
		DefaultThreshold:  number.Decimal("0.05"),
		DelayUntilDefault: 24 * time.Hour,
	}
	for _, fn := range mutate {
		fn(&cfg)
	}

	coll, err := New(cfg, f.oracle, f.rate, nil, "", f.clock, f.events)
	require.NoError(t, err)
	f.coll = coll
	return f
}

func (f *fixture) refresh() core.CollateralStatus {
	f.coll.Refresh(context.Background())
	return f.coll.Status()
}

func TestConfigValidate(t *testing.T) {
	base := Config{
		Token:             "cDAI",
		TargetName:        "USD",
		MaxTradeVolume:    number.Decimal("1"),
		DefaultThreshold:  number.Decimal("0.05"),
		DelayUntilDefault: time.Hour,
	}
	assert.NoError(t, base.Validate())

	cfg := base
	cfg.DefaultThreshold = decimal.Zero
	assert.Equal(t, core.ErrDefaultThresholdZero, cfg.Validate())

	cfg = base
	cfg.RefPerTokThreshold = number.Decimal("0.99")
	assert.Equal(t, core.ErrRefPerTokThresholdTooLow, cfg.Validate())

	cfg = base
	cfg.RefPerTokThreshold = number.Decimal("1")
	assert.NoError(t, cfg.Validate())

	cfg = base
	cfg.DelayUntilDefault = 0
	assert.Equal(t, core.ErrInvalidCollateralConfig, cfg.Validate())
}

func TestRefreshAppreciation(t *testing.T) {
	f := newFixture(t)

	f.rate.Set(number.Decimal("1.02"))
	assert.Equal(t, core.CollateralStatusSound, f.refresh())
	assert.Equal(t, "1.02", f.coll.RefPerTok().String())
	assert.Equal(t, "1.02", f.coll.PrevReferencePrice().String())

	price, err := f.coll.Price(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.02", price.String())
	assert.Empty(t, f.events.events)
}

func TestRefreshRegressionEscalates(t *testing.T) {
	f := newFixture(t)
	f.rate.Set(number.Decimal("1.1"))
	f.refresh()

	f.rate.Set(number.Decimal("1.05"))
	assert.Equal(t, core.CollateralStatusIffy, f.refresh())
	// valuation keeps the high-water mark while IFFY
	assert.Equal(t, "1.1", f.coll.RefPerTok().String())
	assert.Equal(t, "1.05", f.coll.ActualRefPerTok().String())

	f.clock.Advance(23 * time.Hour)
	assert.Equal(t, core.CollateralStatusIffy, f.refresh())

	f.clock.Advance(time.Hour)
	f.oracle.Set("DAI-USD", number.Decimal("1"))
	assert.Equal(t, core.CollateralStatusDisabled, f.refresh())
	assert.Equal(t, "1.05", f.coll.RefPerTok().String())

	// sticky even when the rate recovers
	f.rate.Set(number.Decimal("2"))
	assert.Equal(t, core.CollateralStatusDisabled, f.refresh())

	require.Len(t, f.events.events, 2)
	last := f.events.events[1].Data.(*core.DefaultStatusChangedEvent)
	assert.Equal(t, core.CollateralStatusIffy, last.Old)
	assert.Equal(t, core.CollateralStatusDisabled, last.New)
}

func TestRefreshRecovers(t *testing.T) {
	f := newFixture(t)

	f.oracle.Set("DAI-USD", number.Decimal("0.9"))
	assert.Equal(t, core.CollateralStatusIffy, f.refresh())

	f.clock.Advance(time.Hour)
	f.oracle.Set("DAI-USD", number.Decimal("0.99"))
	assert.Equal(t, core.CollateralStatusSound, f.refresh())

	// the timer restarts after recovering
	f.oracle.Set("DAI-USD", number.Decimal("0.9"))
	assert.Equal(t, core.CollateralStatusIffy, f.refresh())
	f.clock.Advance(23 * time.Hour)
	assert.Equal(t, core.CollateralStatusIffy, f.refresh())
}

func TestRefreshHardDefault(t *testing.T) {
	t.Run("rate source fails", func(t *testing.T) {
		f := newFixture(t)
		f.rate.Fail(errors.New("revert"))
		assert.Equal(t, core.CollateralStatusDisabled, f.refresh())
	})

	t.Run("zero rate", func(t *testing.T) {
		f := newFixture(t)
		f.rate.Set(decimal.Zero)
		assert.Equal(t, core.CollateralStatusDisabled, f.refresh())
	})

	t.Run("stale oracle", func(t *testing.T) {
		f := newFixture(t)
		f.clock.Advance(49 * time.Hour)
		assert.Equal(t, core.CollateralStatusDisabled, f.refresh())
	})

	t.Run("oracle fails", func(t *testing.T) {
		f := newFixture(t)
		f.oracle.Fail("DAI-USD", errors.New("revert"))
		assert.Equal(t, core.CollateralStatusDisabled, f.refresh())

		_, err := f.coll.Price(context.Background())
		assert.True(t, errors.Is(err, core.ErrPriceUnavailable))
	})
}

func TestRefPerTokThreshold(t *testing.T) {
	f := newFixture(t, func(cfg *Config) {
		cfg.RefPerTokThreshold = number.Decimal("1.01")
	})

	assert.Equal(t, core.CollateralStatusIffy, f.refresh())

	f.rate.Set(number.Decimal("1.02"))
	assert.Equal(t, core.CollateralStatusSound, f.refresh())
}

func TestCheckpoint(t *testing.T) {
	f := newFixture(t)
	restore := f.coll.Checkpoint()

	f.rate.Fail(errors.New("revert"))
	assert.Equal(t, core.CollateralStatusDisabled, f.refresh())

	restore()
	assert.Equal(t, core.CollateralStatusSound, f.coll.Status())
	assert.Equal(t, "1", f.coll.RefPerTok().String())
}

func TestAsset(t *testing.T) {
	c := &clock{t: time.Unix(1700000000, 0)}
	o := oracle.NewMemory(c)
	o.Set("RSR-USD", number.Decimal("0.01"))

	_, err := NewAsset(AssetConfig{Token: "RSR"}, o, nil, "", c)
	assert.Equal(t, core.ErrInvalidCollateralConfig, err)

	a, err := NewAsset(AssetConfig{
		Token:          "RSR",
		Feed:           "RSR-USD",
		MaxTradeVolume: number.Decimal("1000"),
		OracleTimeout:  time.Minute,
	}, o, nil, "COMP", c)
	require.NoError(t, err)

	assert.False(t, a.IsCollateral())
	assert.Empty(t, a.RewardToken())

	price, err := a.Price(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.01", price.String())

	c.Advance(2 * time.Minute)
	_, err = a.Price(context.Background())
	assert.True(t, errors.Is(err, core.ErrPriceUnavailable))

	amount, err := a.ClaimRewards(context.Background(), "backing-manager")
	assert.NoError(t, err)
	assert.True(t, amount.IsZero())
}
