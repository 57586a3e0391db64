package furnace

import (
	"context"
	"testing"
	"time"

	"rtoken/core"
	"rtoken/pkg/number"
	"rtoken/service/event"
	"rtoken/service/ledger"
	"rtoken/service/rtoken"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newFurnace(t *testing.T, ratio string) (*Furnace, *ledger.Memory, *clock, *event.Bus) {
	params := core.DefaultParams()
	params.FurnaceRatio = number.Decimal(ratio)

	c := &clock{t: time.Unix(1700000000, 0)}
	l := ledger.New()
	bus := event.New()
	rt := rtoken.New(params, number.Decimal("1000000"), l, nil, c, bus)
	require.NoError(t, l.Mint(params.RToken, core.AccountFurnace, number.Decimal("100")))
	require.NoError(t, l.Mint(params.RToken, "alice", number.Decimal("100")))

	return New(params, rt, l, c, bus), l, c, bus
}

func TestMeltWholePeriods(t *testing.T) {
	f, l, c, bus := newFurnace(t, "0.5")
	ctx := context.Background()
	start := f.LastPayout()

	c.t = c.t.Add(59 * time.Minute)
	melted, err := f.Melt(ctx)
	require.NoError(t, err)
	assert.True(t, melted.IsZero())

	c.t = start.Add(2*time.Hour + 30*time.Minute)
	melted, err = f.Melt(ctx)
	require.NoError(t, err)
	assert.Equal(t, "75", melted.String())
	assert.Equal(t, "25", l.BalanceOf("RTKN", core.AccountFurnace).String())
	assert.Equal(t, "125", l.TotalSupply("RTKN").String())
	assert.Equal(t, start.Add(2*time.Hour), f.LastPayout())

	require.Len(t, bus.Pending(), 1)
	assert.Equal(t, core.EventMelted, bus.Pending()[0].Type)
}

func TestMeltAllWithFullRatio(t *testing.T) {
	f, l, c, _ := newFurnace(t, "1")

	c.t = c.t.Add(time.Hour)
	melted, err := f.Melt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "100", melted.String())
	assert.True(t, l.BalanceOf("RTKN", core.AccountFurnace).IsZero())
}

func TestCheckpoint(t *testing.T) {
	f, _, c, _ := newFurnace(t, "1")
	start := f.LastPayout()

	restore := f.Checkpoint()
	c.t = c.t.Add(time.Hour)
	_, err := f.Melt(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, start, f.LastPayout())

	restore()
	assert.Equal(t, start, f.LastPayout())
}
