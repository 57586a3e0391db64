package trading

import (
	"errors"
	"testing"

	"rtoken/core"
	"rtoken/pkg/number"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookOneOpenTradePerSellToken(t *testing.T) {
	b := NewBook(core.AccountRSRTrader)

	first := &core.Trade{Sell: "COMP", Buy: "RSR"}
	require.NoError(t, b.Add(first))
	assert.Equal(t, int64(0), first.Index)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, core.TradeStatusOpen, first.Status)

	err := b.Add(&core.Trade{Sell: "COMP", Buy: "RSR"})
	assert.True(t, errors.Is(err, core.ErrTradeAlreadyOpen))

	require.NoError(t, b.Add(&core.Trade{Sell: "AAVE", Buy: "RSR"}))
	assert.Equal(t, 2, b.Count())

	closed, err := b.Close("COMP", &core.AuctionResult{
		SoldAmount:   number.Decimal("1"),
		BoughtAmount: number.Decimal("2"),
	})
	require.NoError(t, err)
	assert.Equal(t, core.TradeStatusClosed, closed.Status)
	assert.Equal(t, 1, b.Count())

	next := &core.Trade{Sell: "COMP", Buy: "RSR"}
	require.NoError(t, b.Add(next))
	assert.Equal(t, int64(2), next.Index)
	assert.NotEqual(t, first.ID, next.ID)

	open := b.OpenTrades()
	require.Len(t, open, 2)
	assert.Equal(t, "AAVE", open[0].Sell)
	assert.Equal(t, "COMP", open[1].Sell)
	assert.Len(t, b.All(), 3)
}

func TestBookCheckpoint(t *testing.T) {
	b := NewBook(core.AccountRTokenTrader)
	require.NoError(t, b.Add(&core.Trade{Sell: "COMP", Buy: "RTKN"}))

	restore := b.Checkpoint()
	_, err := b.Close("COMP", &core.AuctionResult{})
	require.NoError(t, err)
	require.NoError(t, b.Add(&core.Trade{Sell: "AAVE", Buy: "RTKN"}))

	restore()
	assert.Equal(t, 1, b.Count())
	assert.Len(t, b.All(), 1)
	trade, ok := b.Open("COMP")
	require.True(t, ok)
	assert.Equal(t, core.TradeStatusOpen, trade.Status)

	next := &core.Trade{Sell: "AAVE", Buy: "RTKN"}
	require.NoError(t, b.Add(next))
	assert.Equal(t, int64(1), next.Index)
}

func TestBelowMinimum(t *testing.T) {
	trade := &core.Trade{
		SellAmount:   number.Decimal("100"),
		MinBuyAmount: number.Decimal("99"),
	}

	for _, c := range []struct {
		sold, bought string
		below        bool
	}{
		{"100", "99", false},
		{"100", "98.99", true},
		{"50", "49.5", false},
		{"50", "49", true},
		{"0", "0", false},
	} {
		result := &core.AuctionResult{
			SoldAmount:   number.Decimal(c.sold),
			BoughtAmount: number.Decimal(c.bought),
		}
		assert.Equal(t, c.below, belowMinimum(trade, result), "sold %s bought %s", c.sold, c.bought)
	}
}
