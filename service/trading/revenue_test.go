package trading

import (
	"context"
	"errors"
	"testing"
	"time"

	"rtoken/core"
	"rtoken/pkg/number"
	"rtoken/service/auction"
	"rtoken/service/collateral"
	"rtoken/service/distributor"
	"rtoken/service/event"
	"rtoken/service/ledger"
	"rtoken/service/oracle"
	"rtoken/service/registry"
	"rtoken/service/rewards"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

type fixture struct {
	params  core.Params
	clock   *clock
	oracle  *oracle.Memory
	ledger  *ledger.Memory
	bus     *event.Bus
	reg     registry.Registry
	house   *auction.House
	dist    distributor.Distributor
	comp    *rewards.Pool
	trader  *RevenueTrader
	backing string
}

func newFixture(t *testing.T, maxTradeVolume string) *fixture {
	ctx := context.Background()
	f := &fixture{
		params:  core.DefaultParams(),
		clock:   &clock{t: time.Unix(1700000000, 0)},
		ledger:  ledger.New(),
		backing: core.AccountBackingManager,
	}
	bus := event.New()
	f.bus = bus
	f.oracle = oracle.NewMemory(f.clock)
	f.oracle.Set("RSR/USD", number.Decimal("1"))
	f.oracle.Set("COMP/USD", number.Decimal("1"))
	f.reg = registry.New(f.clock, bus)
	f.house = auction.New(f.ledger, f.clock)
	f.dist = distributor.New(f.ledger, f.params, f.clock, bus)
	f.comp = rewards.NewPool(f.ledger, "COMP")

	rsr, err := collateral.NewAsset(collateral.AssetConfig{
		Token:          "RSR",
		Feed:           "RSR/USD",
		MaxTradeVolume: number.Decimal("1000000"),
	}, f.oracle, nil, "", f.clock)
	require.NoError(t, err)
	require.NoError(t, f.reg.Register(ctx, rsr))

	comp, err := collateral.NewAsset(collateral.AssetConfig{
		Token:          "COMP",
		Feed:           "COMP/USD",
		MaxTradeVolume: number.Decimal(maxTradeVolume),
	}, f.oracle, f.comp, "COMP", f.clock)
	require.NoError(t, err)
	require.NoError(t, f.reg.Register(ctx, comp))

	require.NoError(t, f.dist.SetDistribution(ctx, core.DestinationStRSR, core.RevenueShare{RSRDist: 1}))

	f.trader = NewRevenueTrader(Config{
		Params:   f.params,
		Ledger:   f.ledger,
		Registry: f.reg,
		Auctions: f.house,
		Clock:    f.clock,
		Events:   bus,
	}, core.AccountRSRTrader, "RSR", f.backing, f.dist)

	return f
}

func (f *fixture) bid(t *testing.T, auctionID int64, sell, buy string) {
	require.NoError(t, f.ledger.Mint("RSR", "bidder", number.Decimal(buy)))
	require.NoError(t, f.house.PlaceBid(context.Background(), auctionID, &auction.Bid{
		Bidder:     "bidder",
		SellAmount: number.Decimal(sell),
		BuyAmount:  number.Decimal(buy),
	}))
}

func TestRevenueTraderCapsTradeSize(t *testing.T) {
	f := newFixture(t, "100")
	ctx := context.Background()
	require.NoError(t, f.ledger.Mint("COMP", core.AccountRSRTrader, number.Decimal("150")))

	require.NoError(t, f.trader.ManageTokens(ctx))
	trade, ok := f.trader.OpenTrade("COMP")
	require.True(t, ok)
	assert.Equal(t, "100", trade.SellAmount.String())
	assert.Equal(t, "99", trade.MinBuyAmount.String())
	assert.Equal(t, "50", f.ledger.BalanceOf("COMP", core.AccountRSRTrader).String())

	// still running, no second trade for the same token
	require.NoError(t, f.trader.ManageTokens(ctx))
	assert.Equal(t, 1, f.trader.OpenTradesCount())
	assert.Len(t, f.trader.Trades(), 1)

	f.bid(t, trade.AuctionID, "100", "99")
	f.clock.t = trade.EndTime

	require.NoError(t, f.trader.ManageTokens(ctx))
	trades := f.trader.Trades()
	require.Len(t, trades, 2)
	assert.Equal(t, core.TradeStatusClosed, trades[0].Status)
	assert.Equal(t, "99", trades[0].BoughtAmount.String())
	assert.Equal(t, "50", trades[1].SellAmount.String())
	assert.Equal(t, "49.5", trades[1].MinBuyAmount.String())

	assert.Equal(t, "99", f.ledger.BalanceOf("RSR", core.AccountStRSR).String())
	assert.True(t, f.ledger.BalanceOf("RSR", core.AccountRSRTrader).IsZero())

	var (
		started []*core.TradeStartedEvent
		settled []*core.TradeSettledEvent
	)
	for _, e := range f.bus.Pending() {
		switch data := e.Data.(type) {
		case *core.TradeStartedEvent:
			started = append(started, data)
		case *core.TradeSettledEvent:
			settled = append(settled, data)
		}
	}
	require.Len(t, started, 2)
	require.Len(t, settled, 1)

	// enough to rebuild the trade without reading state
	assert.Equal(t, trade.ID, started[0].TradeID)
	assert.Equal(t, trade.AuctionID, started[0].AuctionID)
	assert.True(t, trade.EndTime.Equal(started[0].EndTime))
	assert.Equal(t, core.AccountRSRTrader, started[0].Trader)
	assert.Equal(t, trades[1].AuctionID, started[1].AuctionID)
	assert.Equal(t, trade.AuctionID, settled[0].AuctionID)
	assert.Equal(t, "99", settled[0].BoughtAmount.String())
}

func TestRevenueTraderSkipsDust(t *testing.T) {
	f := newFixture(t, "100")
	ctx := context.Background()
	require.NoError(t, f.ledger.Mint("COMP", core.AccountRSRTrader, number.Decimal("0.005")))

	require.NoError(t, f.trader.ManageTokens(ctx))
	assert.Equal(t, 0, f.trader.OpenTradesCount())
	assert.Equal(t, "0.005", f.ledger.BalanceOf("COMP", core.AccountRSRTrader).String())
}

func TestRevenueTraderSkipsUnpricedToken(t *testing.T) {
	f := newFixture(t, "100")
	ctx := context.Background()
	require.NoError(t, f.ledger.Mint("COMP", core.AccountRSRTrader, number.Decimal("10")))
	require.NoError(t, f.ledger.Mint("RSR", core.AccountRSRTrader, number.Decimal("5")))
	f.oracle.Fail("COMP/USD", errors.New("feed down"))

	require.NoError(t, f.trader.ManageTokens(ctx))
	assert.Equal(t, 0, f.trader.OpenTradesCount())
	assert.Equal(t, "5", f.ledger.BalanceOf("RSR", core.AccountStRSR).String())
}

func TestRevenueTraderSettlementPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("revert", func(t *testing.T) {
		f := newFixture(t, "100")
		require.NoError(t, f.ledger.Mint("COMP", core.AccountRSRTrader, number.Decimal("100")))
		require.NoError(t, f.trader.ManageTokens(ctx))
		trade, _ := f.trader.OpenTrade("COMP")

		f.bid(t, trade.AuctionID, "100", "90")
		f.clock.t = trade.EndTime

		err := f.trader.ManageTokens(ctx)
		assert.True(t, errors.Is(err, core.ErrAuctionBelowMinimum))
		assert.Equal(t, 1, f.trader.OpenTradesCount())
	})

	t.Run("accept", func(t *testing.T) {
		f := newFixture(t, "100")
		f.trader.Params.SettlementPolicy = core.SettlementPolicyAccept
		require.NoError(t, f.ledger.Mint("COMP", core.AccountRSRTrader, number.Decimal("100")))
		require.NoError(t, f.trader.ManageTokens(ctx))
		trade, _ := f.trader.OpenTrade("COMP")

		f.bid(t, trade.AuctionID, "100", "90")
		f.clock.t = trade.EndTime

		require.NoError(t, f.trader.ManageTokens(ctx))
		assert.Equal(t, 0, f.trader.OpenTradesCount())
		assert.Equal(t, "90", f.ledger.BalanceOf("RSR", core.AccountStRSR).String())
	})
}

func TestRevenueTraderClaimAndSweepRewards(t *testing.T) {
	f := newFixture(t, "100")
	ctx := context.Background()
	f.comp.SetRewards(core.AccountRSRTrader, number.Decimal("2"))

	claims, err := f.trader.ClaimAndSweepRewards(ctx)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.True(t, claims[0].Claimed())
	assert.Equal(t, "2", claims[0].Amount.String())
	assert.Equal(t, "2", f.ledger.BalanceOf("COMP", f.backing).String())
	assert.True(t, f.ledger.BalanceOf("COMP", core.AccountRSRTrader).IsZero())

	var claimed []*core.RewardsClaimedEvent
	for _, e := range f.bus.Pending() {
		if data, ok := e.Data.(*core.RewardsClaimedEvent); ok {
			claimed = append(claimed, data)
		}
	}
	require.Len(t, claimed, 1)
	assert.Equal(t, "COMP", claimed[0].Asset)
	assert.Equal(t, core.AccountRSRTrader, claimed[0].Holder)
	assert.Equal(t, "COMP", claimed[0].Token)
	assert.Equal(t, "2", claimed[0].Amount.String())

	f.comp.Fail(errors.New("claim reverted"))
	claims, err = f.trader.ClaimAndSweepRewards(ctx)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.False(t, claims[0].Claimed())
	assert.True(t, claims[0].Amount.IsZero())
}
