package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"rtoken/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	filename := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o600))
	return filename
}

func TestLoad(t *testing.T) {
	filename := writeConfig(t, `
protocol:
  rtoken: RUSD
  auction_length: 30m
  settlement_policy: accept
collaterals:
  - token: cUSDC
    target_name: USD
    default_threshold: "0.05"
distribution:
  - dest: STRSR
    rsr_dist: 60
`)

	var cfg core.Config
	require.NoError(t, Load(filename, &cfg))
	assert.Equal(t, "RUSD", cfg.Protocol.RToken)
	assert.Equal(t, 30*time.Minute, cfg.Protocol.AuctionLength.Duration())
	require.Len(t, cfg.Collaterals, 1)
	assert.Equal(t, "USD", cfg.Collaterals[0].TargetName)
	require.Len(t, cfg.Distribution, 1)
	assert.EqualValues(t, 60, cfg.Distribution[0].RSRDist)

	params, err := cfg.Protocol.Params()
	require.NoError(t, err)
	assert.Equal(t, core.SettlementPolicyAccept, params.SettlementPolicy)
}

func TestLoadRejectsInvalidParams(t *testing.T) {
	filename := writeConfig(t, `
protocol:
  settlement_policy: maybe
`)

	var cfg core.Config
	assert.Error(t, Load(filename, &cfg))
}
