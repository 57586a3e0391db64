package rewards

import (
	"context"
	"errors"
	"testing"

	"rtoken/pkg/number"
	"rtoken/service/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolClaim(t *testing.T) {
	l := ledger.New()
	p := NewPool(l, "COMP")
	ctx := context.Background()

	p.SetRewards("backing-manager", number.Decimal("0.8"))
	amount, err := p.Claim(ctx, "backing-manager")
	require.NoError(t, err)
	assert.Equal(t, "0.8", amount.String())
	assert.Equal(t, "0.8", l.BalanceOf("COMP", "backing-manager").String())

	// nothing left
	amount, err = p.Claim(ctx, "backing-manager")
	require.NoError(t, err)
	assert.True(t, amount.IsZero())

	p.Fail(errors.New("revert"))
	_, err = p.Claim(ctx, "backing-manager")
	assert.Error(t, err)
}

func TestPoolCheckpoint(t *testing.T) {
	l := ledger.New()
	p := NewPool(l, "COMP")

	p.SetRewards("rsr-trader", number.Decimal("1"))
	restore := p.Checkpoint()
	_, err := p.Claim(context.Background(), "rsr-trader")
	require.NoError(t, err)
	restore()

	amount, err := p.Claim(context.Background(), "rsr-trader")
	require.NoError(t, err)
	assert.Equal(t, "1", amount.String())
}
