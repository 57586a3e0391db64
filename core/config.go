package core

import (
	"rtoken/pkg/number"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Config rtoken node config
type Config struct {
	App          App                  `json:"app"`
	DB           db.Config            `json:"db"`
	PriceOracle  PriceOracleConfig    `json:"price_oracle"`
	Protocol     ProtocolConfig       `json:"protocol"`
	Assets       []AssetConfig        `json:"assets"`
	Collaterals  []CollateralConfig   `json:"collaterals"`
	Basket       BasketConfig         `json:"basket"`
	Distribution []DistributionConfig `json:"distribution"`
	Keeper       Keeper               `json:"keeper"`
}

// App app config
type App struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// PriceOracleConfig http price oracle config
type PriceOracleConfig struct {
	EndPoint string   `json:"end_point"`
	CacheTTL Duration `json:"cache_ttl"`
}

// ProtocolConfig protocol params config
type ProtocolConfig struct {
	RSR              string   `json:"rsr"`
	RToken           string   `json:"rtoken"`
	AuctionLength    Duration `json:"auction_length"`
	MaxTradeSlippage string   `json:"max_trade_slippage"`
	MinTradeVolume   string   `json:"min_trade_volume"`
	SettlementPolicy string   `json:"settlement_policy"`
	FurnaceRatio     string   `json:"furnace_ratio"`
	FurnacePeriod    Duration `json:"furnace_period"`
	// RTokenMaxTradeVolume max value of rtoken sold in one auction
	RTokenMaxTradeVolume string `json:"rtoken_max_trade_volume"`
}

// Params merge the config into the default params
func (c ProtocolConfig) Params() (Params, error) {
	p := DefaultParams()
	if c.RSR != "" {
		p.RSR = c.RSR
	}
	if c.RToken != "" {
		p.RToken = c.RToken
	}
	if c.AuctionLength > 0 {
		p.AuctionLength = c.AuctionLength.Duration()
	}
	if c.MaxTradeSlippage != "" {
		p.MaxTradeSlippage = number.Decimal(c.MaxTradeSlippage)
	}
	if c.MinTradeVolume != "" {
		p.MinTradeVolume = number.Decimal(c.MinTradeVolume)
	}
	if c.SettlementPolicy != "" {
		p.SettlementPolicy = SettlementPolicy(c.SettlementPolicy)
	}
	if c.FurnaceRatio != "" {
		p.FurnaceRatio = number.Decimal(c.FurnaceRatio)
	}
	if c.FurnacePeriod > 0 {
		p.FurnacePeriod = c.FurnacePeriod.Duration()
	}

	return p, p.Validate()
}

// AssetConfig plain asset
type AssetConfig struct {
	Token          string   `json:"token"`
	Feed           string   `json:"feed"`
	MaxTradeVolume string   `json:"max_trade_volume"`
	OracleTimeout  Duration `json:"oracle_timeout"`
	RewardToken    string   `json:"reward_token"`
}

// CollateralConfig collateral plugin
type CollateralConfig struct {
	Token          string   `json:"token"`
	TargetName     string   `json:"target_name"`
	MaxTradeVolume string   `json:"max_trade_volume"`
	OracleTimeout  Duration `json:"oracle_timeout"`
	// PegFeed target per reference unit
	PegFeed string `json:"peg_feed"`
	// TargetFeed unit of account per target unit, empty means 1
	TargetFeed string `json:"target_feed"`
	// RateFeed reference per token, empty means 1
	RateFeed           string   `json:"rate_feed"`
	DefaultThreshold   string   `json:"default_threshold"`
	DelayUntilDefault  Duration `json:"delay_until_default"`
	RefPerTokThreshold string   `json:"ref_per_tok_threshold"`
	RewardToken        string   `json:"reward_token"`
}

// BasketConfig prime basket and backups
type BasketConfig struct {
	Prime   []PrimeConfig   `json:"prime"`
	Backups []*BackupConfig `json:"backups"`
}

// PrimeConfig prime basket entry
type PrimeConfig struct {
	Token     string `json:"token"`
	TargetAmt string `json:"target_amt"`
}

// Amount target amount as decimal
func (c PrimeConfig) Amount() decimal.Decimal {
	return number.Decimal(c.TargetAmt)
}

// DistributionConfig initial revenue share
type DistributionConfig struct {
	Dest       string `json:"dest"`
	RTokenDist uint64 `json:"rtoken_dist"`
	RSRDist    uint64 `json:"rsr_dist"`
}

// Keeper keeper worker config
type Keeper struct {
	// Spec cron spec, eg "@every 1m"
	Spec string `json:"spec"`
}
