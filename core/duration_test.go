package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationUnmarshalJSON(t *testing.T) {
	var cfg ProtocolConfig
	require.NoError(t, json.Unmarshal([]byte(`{"auction_length":"30m","furnace_period":3600000000000}`), &cfg))
	assert.Equal(t, 30*time.Minute, cfg.AuctionLength.Duration())
	assert.Equal(t, time.Hour, cfg.FurnacePeriod.Duration())

	params, err := cfg.Params()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, params.AuctionLength)
	assert.Equal(t, time.Hour, params.FurnacePeriod)

	assert.Error(t, json.Unmarshal([]byte(`{"auction_length":"soon"}`), &cfg))

	b, err := json.Marshal(Duration(90 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(b))
}
