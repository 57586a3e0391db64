package id

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTradeID(t *testing.T) {
	a := TradeID("rsr-trader", 1)
	assert.Equal(t, a, TradeID("rsr-trader", 1))
	assert.Equal(t, UUIDFromString("rsr-trader:1"), a)
	assert.NotEqual(t, a, TradeID("rsr-trader", 2))
	assert.NotEqual(t, a, TradeID("rtoken-trader", 1))

	u, err := uuid.FromString(a)
	assert.NoError(t, err)
	assert.EqualValues(t, 3, u.Version())
}
