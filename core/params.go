package core

import (
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/shopspring/decimal"
)

// SettlementPolicy what to do with an auction that clears below its minimum
type SettlementPolicy string

const (
	// SettlementPolicyRevert fail the whole call, the auction can be retried
	SettlementPolicyRevert SettlementPolicy = "revert"
	// SettlementPolicyAccept keep the bad clearing result
	SettlementPolicyAccept SettlementPolicy = "accept"
)

const (
	// MaxDistribution max share of one destination
	MaxDistribution uint64 = 10000
)

// Accounts well known ledger accounts of the protocol
const (
	AccountBackingManager = "backing-manager"
	AccountRSRTrader      = "rsr-trader"
	AccountRTokenTrader   = "rtoken-trader"
	AccountFurnace        = "furnace"
	AccountStRSR          = "strsr"
	AccountAuctionHouse   = "auction-house"
)

// Params protocol parameters
type Params struct {
	RSR    string
	RToken string

	AuctionLength    time.Duration
	MaxTradeSlippage decimal.Decimal
	// MinTradeVolume unit of account value below which balances are dust
	MinTradeVolume   decimal.Decimal
	SettlementPolicy SettlementPolicy

	// FurnaceRatio fraction of the furnace balance melted per period
	FurnaceRatio  decimal.Decimal
	FurnacePeriod time.Duration
}

// DefaultParams defaults
func DefaultParams() Params {
	return Params{
		RSR:              "RSR",
		RToken:           "RTKN",
		AuctionLength:    15 * time.Minute,
		MaxTradeSlippage: decimal.New(1, -2),
		MinTradeVolume:   decimal.New(1, -2),
		SettlementPolicy: SettlementPolicyRevert,
		FurnaceRatio:     decimal.New(1, 0),
		FurnacePeriod:    time.Hour,
	}
}

// Validate check params
func (p Params) Validate() error {
	if p.RSR == "" || p.RToken == "" || p.RSR == p.RToken {
		return ErrOperationForbidden
	}

	if p.AuctionLength <= 0 || p.FurnacePeriod <= 0 {
		return ErrInvalidAmount
	}

	if p.MaxTradeSlippage.IsNegative() || p.MaxTradeSlippage.GreaterThanOrEqual(decimal.New(1, 0)) {
		return ErrInvalidAmount
	}

	if p.MinTradeVolume.IsNegative() {
		return ErrInvalidAmount
	}

	if p.FurnaceRatio.IsNegative() || p.FurnaceRatio.GreaterThan(decimal.New(1, 0)) {
		return ErrInvalidAmount
	}

	if !govalidator.IsIn(string(p.SettlementPolicy), string(SettlementPolicyRevert), string(SettlementPolicyAccept)) {
		return ErrOperationForbidden
	}

	return nil
}
