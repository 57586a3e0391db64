package core

import (
	"github.com/shopspring/decimal"
)

// Ledger token balances of every account
type Ledger interface {
	BalanceOf(token, account string) decimal.Decimal
	TotalSupply(token string) decimal.Decimal
	Transfer(token, from, to string, amount decimal.Decimal) error
	Mint(token, to string, amount decimal.Decimal) error
	Burn(token, from string, amount decimal.Decimal) error
}

// Checkpointer a stateful component that can roll back
type Checkpointer interface {
	// Checkpoint snapshot the state, calling restore rolls back to it
	Checkpoint() (restore func())
}
