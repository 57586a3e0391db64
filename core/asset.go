package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CollateralStatus collateral health
type CollateralStatus int

const (
	// CollateralStatusSound healthy
	CollateralStatusSound CollateralStatus = iota
	// CollateralStatusIffy soft default, may recover
	CollateralStatusIffy
	// CollateralStatusDisabled hard default, terminal
	CollateralStatusDisabled
)

var collateralStatusNames = map[CollateralStatus]string{
	CollateralStatusSound:    "SOUND",
	CollateralStatusIffy:     "IFFY",
	CollateralStatusDisabled: "DISABLED",
}

// collateralTransitions every legal edge of the status machine. DISABLED has none.
var collateralTransitions = map[CollateralStatus][]CollateralStatus{
	CollateralStatusSound: {CollateralStatusSound, CollateralStatusIffy, CollateralStatusDisabled},
	CollateralStatusIffy:  {CollateralStatusSound, CollateralStatusIffy, CollateralStatusDisabled},
}

func (s CollateralStatus) String() string {
	if name, ok := collateralStatusNames[s]; ok {
		return name
	}

	return "UNKNOWN"
}

// MarshalText encode status as its name
func (s CollateralStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CanTransition whether s may move to next
func (s CollateralStatus) CanTransition(next CollateralStatus) bool {
	for _, to := range collateralTransitions[s] {
		if to == next {
			return true
		}
	}

	return false
}

// Transition move s to next, rejecting illegal edges
func (s CollateralStatus) Transition(next CollateralStatus) (CollateralStatus, error) {
	if !s.CanTransition(next) {
		return s, ErrIllegalStatusTransition
	}

	return next, nil
}

// Worse return the more severe status
func (s CollateralStatus) Worse(o CollateralStatus) CollateralStatus {
	if o > s {
		return o
	}

	return s
}

// IAsset a priced token known to the asset registry
type IAsset interface {
	// Token erc20 identity of the asset
	Token() string
	// Price unit of account per whole token
	Price(ctx context.Context) (decimal.Decimal, error)
	// MaxTradeVolume max unit of account value sold in one auction
	MaxTradeVolume() decimal.Decimal
	IsCollateral() bool
	// RewardToken token minted by ClaimRewards, empty if the asset earns nothing
	RewardToken() string
	// ClaimRewards claim pending rewards of holder, returns the amount received
	ClaimRewards(ctx context.Context, holder string) (decimal.Decimal, error)
}

// ICollateral an asset that can back the basket
type ICollateral interface {
	IAsset
	// Refresh poll the rate and oracle sources and advance the status machine
	Refresh(ctx context.Context)
	Status() CollateralStatus
	TargetName() string
	// RefPerTok reference units per token, the high-water mark unless DISABLED
	RefPerTok() decimal.Decimal
	// ActualRefPerTok most recently observed exchange rate
	ActualRefPerTok() decimal.Decimal
	// TargetPerRef target units per reference unit from the peg feed
	TargetPerRef(ctx context.Context) (decimal.Decimal, error)
	// PricePerTarget unit of account per target unit
	PricePerTarget(ctx context.Context) (decimal.Decimal, error)
	DelayUntilDefault() time.Duration
}

// StatusChange a collateral status move observed on refresh
type StatusChange struct {
	Token string           `json:"token"`
	From  CollateralStatus `json:"from"`
	To    CollateralStatus `json:"to"`
}

// IAssetRegistry token to asset mapping
type IAssetRegistry interface {
	Register(ctx context.Context, asset IAsset) error
	SwapRegistered(ctx context.Context, asset IAsset) error
	Unregister(ctx context.Context, token string) error
	IsRegistered(token string) bool
	ToAsset(token string) (IAsset, error)
	ToColl(token string) (ICollateral, error)
	// Tokens registered tokens in registration order
	Tokens() []string
	Assets() []IAsset
	// Refresh refresh every collateral, returns the status changes
	Refresh(ctx context.Context) []*StatusChange
}
