package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// IRToken the basket backed token supply bookkeeping
type IRToken interface {
	IAsset
	TotalSupply() decimal.Decimal
	// BasketsNeeded basket units the supply is redeemable for
	BasketsNeeded() decimal.Decimal
	SetBasketsNeeded(ctx context.Context, baskets decimal.Decimal) error
	// Mint new supply without changing baskets needed
	Mint(ctx context.Context, to string, amount decimal.Decimal) error
	// Melt burn supply without changing baskets needed
	Melt(ctx context.Context, from string, amount decimal.Decimal) error
	// Issue deposit basket collateral into the backing manager and mint
	Issue(ctx context.Context, issuer string, amount decimal.Decimal) error
}

// IStRSR staked rsr pool, the backing manager's last resort for recollateralization
type IStRSR interface {
	Account() string
	// RSRBalance rsr held for stakers
	RSRBalance() decimal.Decimal
	// Seize take amount rsr from stakers to to
	Seize(ctx context.Context, to string, amount decimal.Decimal) error
}

// IFurnace melts rtoken sent to it over time
type IFurnace interface {
	Account() string
	// Melt burn the share of the balance due since the last melt
	Melt(ctx context.Context) (decimal.Decimal, error)
}
