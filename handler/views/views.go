package views

import (
	"time"

	"rtoken/core"

	"github.com/shopspring/decimal"
)

// Overview protocol summary
type Overview struct {
	RToken              string                `json:"rtoken"`
	RSR                 string                `json:"rsr"`
	Price               decimal.Decimal       `json:"price"`
	TotalSupply         decimal.Decimal       `json:"total_supply"`
	BasketsNeeded       decimal.Decimal       `json:"baskets_needed"`
	BasketsHeld         decimal.Decimal       `json:"baskets_held"`
	FullyCollateralized bool                  `json:"fully_collateralized"`
	TotalAssetValue     decimal.Decimal       `json:"total_asset_value"`
	BasketState         core.BasketState      `json:"basket_state"`
	BasketStatus        core.CollateralStatus `json:"basket_status"`
	StRSRExchangeRate   decimal.Decimal       `json:"strsr_exchange_rate"`
}

// BasketEntry basket member with its current quantity
type BasketEntry struct {
	Token    string          `json:"token"`
	RefAmt   decimal.Decimal `json:"ref_amt"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Basket current basket
type Basket struct {
	Nonce     int64                `json:"nonce"`
	State     core.BasketState     `json:"state"`
	Entries   []*BasketEntry       `json:"entries"`
	Timestamp time.Time            `json:"timestamp"`
	Prime     []*core.PrimeEntry   `json:"prime"`
	Backups   []*core.BackupConfig `json:"backups"`
}

// Asset registered asset
type Asset struct {
	Token          string                 `json:"token"`
	IsCollateral   bool                   `json:"is_collateral"`
	Price          decimal.Decimal        `json:"price"`
	PriceError     string                 `json:"price_error,omitempty"`
	MaxTradeVolume decimal.Decimal        `json:"max_trade_volume"`
	RewardToken    string                 `json:"reward_token,omitempty"`
	Status         *core.CollateralStatus `json:"status,omitempty"`
	TargetName     string                 `json:"target_name,omitempty"`
	RefPerTok      decimal.Decimal        `json:"ref_per_tok"`
	ActualRef      decimal.Decimal        `json:"actual_ref_per_tok"`
}

// Distribution revenue table
type Distribution struct {
	Destinations []*core.Destination `json:"destinations"`
	Totals       core.RevenueTotals  `json:"totals"`
}
