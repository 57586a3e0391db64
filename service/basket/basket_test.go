package basket

import (
	"context"
	"errors"
	"testing"
	"time"

	"rtoken/core"
	"rtoken/pkg/number"
	"rtoken/service/collateral"
	"rtoken/service/event"
	"rtoken/service/ledger"
	"rtoken/service/oracle"
	"rtoken/service/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

type fixture struct {
	clock   *clock
	oracle  *oracle.Memory
	rates   map[string]*oracle.Rate
	ledger  *ledger.Memory
	bus     *event.Bus
	rec     *event.Recorder
	reg     registry.Registry
	handler Handler
}

func newFixture(t *testing.T, tokens ...string) *fixture {
	f := &fixture{
		clock:  &clock{t: time.Unix(1700000000, 0)},
		rates:  map[string]*oracle.Rate{},
		ledger: ledger.New(),
		rec:    event.NewRecorder(0),
	}
	f.oracle = oracle.NewMemory(f.clock)
	f.bus = event.New(f.rec)
	f.reg = registry.New(f.clock, f.bus)
	f.handler = New(f.reg, f.ledger, f.clock, f.bus)

	for _, token := range tokens {
		rate := oracle.NewRate(number.Decimal("1"))
		coll, err := collateral.New(collateral.Config{
			Token:             token,
			TargetName:        "USD",
			MaxTradeVolume:    number.Decimal("1000000"),
			DefaultThreshold:  number.Decimal("0.05"),
			DelayUntilDefault: time.Hour,
		}, f.oracle, rate, nil, "", f.clock, f.bus)
		require.NoError(t, err)
		require.NoError(t, f.reg.Register(context.Background(), coll))
		f.rates[token] = rate
	}

	return f
}

func prime(amounts map[string]string, order ...string) []*core.PrimeEntry {
	entries := make([]*core.PrimeEntry, 0, len(order))
	for _, token := range order {
		entries = append(entries, &core.PrimeEntry{Token: token, TargetAmt: number.Decimal(amounts[token])})
	}

	return entries
}

func TestSetPrimeBasket(t *testing.T) {
	f := newFixture(t, "cDAI", "cUSDC")
	ctx := context.Background()

	assert.True(t, errors.Is(f.handler.SetPrimeBasket(ctx, nil), core.ErrInvalidBasket))
	err := f.handler.SetPrimeBasket(ctx, prime(map[string]string{"cDAI": "0.5", "cUSDT": "0.5"}, "cDAI", "cUSDT"))
	assert.True(t, errors.Is(err, core.ErrAssetNotRegistered))
	err = f.handler.SetPrimeBasket(ctx, prime(map[string]string{"cDAI": "0"}, "cDAI"))
	assert.True(t, errors.Is(err, core.ErrInvalidBasket))

	assert.Equal(t, core.BasketStateUnset, f.handler.State())
	assert.Equal(t, core.ErrBasketUnset, f.handler.RefreshBasket(ctx))

	require.NoError(t, f.handler.SetPrimeBasket(ctx, prime(map[string]string{"cDAI": "0.5", "cUSDC": "0.5"}, "cDAI", "cUSDC")))
	require.NoError(t, f.handler.RefreshBasket(ctx))
	assert.Equal(t, core.BasketStateSound, f.handler.State())
	assert.Equal(t, core.CollateralStatusSound, f.handler.Status())
	assert.Equal(t, []string{"cDAI", "cUSDC"}, f.handler.Basket().Tokens())
	assert.Equal(t, "USD", f.handler.PrimeBasket()[0].TargetName)
}

func TestQuantityAndBasketsHeld(t *testing.T) {
	f := newFixture(t, "aUSDT", "cDAI")
	ctx := context.Background()
	require.NoError(t, f.handler.SetPrimeBasket(ctx, prime(map[string]string{"aUSDT": "0.5", "cDAI": "0.5"}, "aUSDT", "cDAI")))
	require.NoError(t, f.handler.RefreshBasket(ctx))

	require.NoError(t, f.ledger.Mint("aUSDT", core.AccountBackingManager, number.Decimal("50")))
	require.NoError(t, f.ledger.Mint("cDAI", core.AccountBackingManager, number.Decimal("50")))
	assert.Equal(t, "100", f.handler.BasketsHeldBy(core.AccountBackingManager).String())

	f.rates["aUSDT"].Set(number.Decimal("2"))
	f.rates["cDAI"].Set(number.Decimal("1.6"))
	f.reg.Refresh(ctx)

	assert.Equal(t, "0.25", f.handler.Quantity("aUSDT").String())
	assert.Equal(t, "0.3125", f.handler.Quantity("cDAI").String())
	assert.Equal(t, "160", f.handler.BasketsHeldBy(core.AccountBackingManager).String())
	assert.True(t, f.handler.BasketsHeldBy("nobody").IsZero())

	price, err := f.handler.Price(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", price.String())
}

func TestRefreshBasketWithBackups(t *testing.T) {
	f := newFixture(t, "cDAI", "cUSDC", "aUSDT", "aBUSD", "aTUSD")
	ctx := context.Background()
	require.NoError(t, f.handler.SetPrimeBasket(ctx, prime(map[string]string{"cDAI": "0.5", "cUSDC": "0.5"}, "cDAI", "cUSDC")))
	require.NoError(t, f.handler.SetBackupConfig(ctx, &core.BackupConfig{
		TargetName: "USD",
		Max:        2,
		Tokens:     []string{"aUSDT", "aBUSD", "aTUSD"},
	}))
	require.NoError(t, f.handler.RefreshBasket(ctx))

	f.rates["cDAI"].Fail(errors.New("revert"))
	f.rates["aUSDT"].Fail(errors.New("revert"))
	changes := f.reg.Refresh(ctx)
	require.Len(t, changes, 2)
	assert.Equal(t, core.CollateralStatusDisabled, f.handler.Status())

	require.NoError(t, f.handler.CheckBasket(ctx, changes))
	basket := f.handler.Basket()
	assert.False(t, basket.Disabled)
	assert.Equal(t, int64(2), basket.Nonce)
	assert.Equal(t, []string{"cUSDC", "aBUSD", "aTUSD"}, basket.Tokens())
	assert.Equal(t, "0.25", basket.RefAmt("aBUSD").String())
	assert.Equal(t, "0.25", basket.RefAmt("aTUSD").String())
	assert.Equal(t, core.CollateralStatusSound, f.handler.Status())

	// a second check is a no-op
	require.NoError(t, f.handler.CheckBasket(ctx, nil))
	assert.Equal(t, int64(2), f.handler.Basket().Nonce)

	f.bus.Flush(ctx)
	sets := f.rec.Events(core.EventBasketSet)
	require.Len(t, sets, 2)
	data := sets[1].Data.(*core.BasketSetEvent)
	assert.Len(t, data.Prev, 2)
	assert.Len(t, data.Next, 3)
}

func TestRefreshBasketBackupRemainder(t *testing.T) {
	f := newFixture(t, "cDAI", "aUSDT", "aBUSD", "aTUSD")
	ctx := context.Background()
	require.NoError(t, f.handler.SetPrimeBasket(ctx, prime(map[string]string{"cDAI": "1"}, "cDAI")))
	require.NoError(t, f.handler.SetBackupConfig(ctx, &core.BackupConfig{
		TargetName: "USD",
		Max:        3,
		Tokens:     []string{"aUSDT", "aBUSD", "aTUSD"},
	}))
	require.NoError(t, f.handler.RefreshBasket(ctx))

	f.rates["cDAI"].Fail(errors.New("revert"))
	require.NoError(t, f.handler.CheckBasket(ctx, f.reg.Refresh(ctx)))

	basket := f.handler.Basket()
	assert.Equal(t, []string{"aUSDT", "aBUSD", "aTUSD"}, basket.Tokens())
	assert.Equal(t, "0.333333333333333333", basket.RefAmt("aUSDT").String())
	assert.Equal(t, "0.333333333333333333", basket.RefAmt("aBUSD").String())
	assert.Equal(t, "0.333333333333333334", basket.RefAmt("aTUSD").String())

	sum := basket.RefAmt("aUSDT").Add(basket.RefAmt("aBUSD")).Add(basket.RefAmt("aTUSD"))
	assert.Equal(t, "1", sum.String())
}

func TestRefreshBasketWithoutBackups(t *testing.T) {
	f := newFixture(t, "cDAI", "cUSDC")
	ctx := context.Background()
	require.NoError(t, f.handler.SetPrimeBasket(ctx, prime(map[string]string{"cDAI": "0.5", "cUSDC": "0.5"}, "cDAI", "cUSDC")))
	require.NoError(t, f.handler.RefreshBasket(ctx))

	f.rates["cDAI"].Fail(errors.New("revert"))
	require.NoError(t, f.handler.CheckBasket(ctx, f.reg.Refresh(ctx)))

	assert.Equal(t, core.BasketStateDisabled, f.handler.State())
	assert.Equal(t, []string{"cUSDC"}, f.handler.Basket().Tokens())
	assert.True(t, f.handler.BasketsHeldBy(core.AccountBackingManager).IsZero())
}

func TestSetBackupConfig(t *testing.T) {
	f := newFixture(t, "cDAI")
	ctx := context.Background()

	assert.Equal(t, core.ErrInvalidBasket, f.handler.SetBackupConfig(ctx, &core.BackupConfig{}))
	err := f.handler.SetBackupConfig(ctx, &core.BackupConfig{TargetName: "EUR", Max: 1, Tokens: []string{"cDAI"}})
	assert.True(t, errors.Is(err, core.ErrInvalidBasket))

	require.NoError(t, f.handler.SetBackupConfig(ctx, &core.BackupConfig{TargetName: "USD", Max: 1, Tokens: []string{"cDAI"}}))
	assert.Len(t, f.handler.BackupConfigs(), 1)
}

func TestCheckpoint(t *testing.T) {
	f := newFixture(t, "cDAI")
	ctx := context.Background()
	require.NoError(t, f.handler.SetPrimeBasket(ctx, prime(map[string]string{"cDAI": "1"}, "cDAI")))

	restore := f.handler.Checkpoint()
	require.NoError(t, f.handler.RefreshBasket(ctx))
	restore()

	assert.Equal(t, core.BasketStateUnset, f.handler.State())
	assert.Nil(t, f.handler.Basket())
}
