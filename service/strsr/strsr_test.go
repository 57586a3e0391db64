package strsr

import (
	"context"
	"errors"
	"testing"
	"time"

	"rtoken/core"
	"rtoken/pkg/number"
	"rtoken/service/event"
	"rtoken/service/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newStRSR(t *testing.T) (*StRSR, *ledger.Memory, *event.Bus) {
	l := ledger.New()
	require.NoError(t, l.Mint("RSR", "alice", number.Decimal("100")))
	require.NoError(t, l.Mint("RSR", "bob", number.Decimal("100")))

	bus := event.New()
	return New(core.DefaultParams(), l, &clock{t: time.Unix(1700000000, 0)}, bus), l, bus
}

func TestStakeAndRevenue(t *testing.T) {
	s, l, bus := newStRSR(t)
	ctx := context.Background()

	shares, err := s.Stake(ctx, "alice", number.Decimal("100"))
	require.NoError(t, err)
	assert.Equal(t, "100", shares.String())
	assert.Equal(t, "1", s.ExchangeRate().String())

	// revenue sent by the distributor
	require.NoError(t, l.Mint("RSR", core.AccountStRSR, number.Decimal("50")))
	require.NoError(t, s.Payout(ctx))
	assert.Equal(t, "1.5", s.ExchangeRate().String())
	require.Len(t, bus.Pending(), 1)
	assert.Equal(t, core.EventStakeCredited, bus.Pending()[0].Type)

	shares, err = s.Stake(ctx, "bob", number.Decimal("30"))
	require.NoError(t, err)
	assert.Equal(t, "20", shares.String())

	amount, err := s.Unstake(ctx, "alice", number.Decimal("100"))
	require.NoError(t, err)
	assert.Equal(t, "150", amount.String())
	assert.Equal(t, "150", l.BalanceOf("RSR", "alice").String())
	assert.Equal(t, "30", s.RSRBalance().String())

	_, err = s.Unstake(ctx, "alice", number.Decimal("1"))
	assert.True(t, errors.Is(err, core.ErrInsufficientBalance))
}

func TestSeize(t *testing.T) {
	s, l, _ := newStRSR(t)
	ctx := context.Background()

	_, err := s.Stake(ctx, "alice", number.Decimal("100"))
	require.NoError(t, err)

	require.NoError(t, s.Seize(ctx, core.AccountBackingManager, number.Decimal("40")))
	assert.Equal(t, "40", l.BalanceOf("RSR", core.AccountBackingManager).String())
	assert.Equal(t, "0.6", s.ExchangeRate().String())

	err = s.Seize(ctx, core.AccountBackingManager, number.Decimal("61"))
	assert.True(t, errors.Is(err, core.ErrInsufficientBalance))
}

func TestRevenueHeldWithoutStakers(t *testing.T) {
	s, l, bus := newStRSR(t)
	ctx := context.Background()

	require.NoError(t, l.Mint("RSR", core.AccountStRSR, number.Decimal("50")))
	require.NoError(t, s.Payout(ctx))
	assert.Empty(t, bus.Pending())
	assert.Equal(t, "1", s.ExchangeRate().String())

	// held revenue is spent first when seized
	require.NoError(t, s.Seize(ctx, core.AccountBackingManager, number.Decimal("30")))
	assert.Equal(t, "20", s.RSRBalance().String())

	shares, err := s.Stake(ctx, "alice", number.Decimal("100"))
	require.NoError(t, err)
	assert.Equal(t, "100", shares.String())
	assert.Equal(t, "1", s.ExchangeRate().String())
	assert.Empty(t, bus.Pending())

	require.NoError(t, s.Payout(ctx))
	assert.Equal(t, "1.2", s.ExchangeRate().String())
	require.Len(t, bus.Pending(), 1)
	credited := bus.Pending()[0].Data.(*core.StakeCreditedEvent)
	assert.Equal(t, "20", credited.Amount.String())
}

func TestCheckpoint(t *testing.T) {
	s, _, _ := newStRSR(t)
	ctx := context.Background()

	restore := s.Checkpoint()
	_, err := s.Stake(ctx, "alice", number.Decimal("10"))
	require.NoError(t, err)

	restore()
	assert.True(t, s.SharesOf("alice").IsZero())
	assert.Equal(t, "1", s.ExchangeRate().String())
}
