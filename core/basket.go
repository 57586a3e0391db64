package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// BasketState lifecycle of the reference basket
type BasketState int

const (
	// BasketStateUnset no basket selected yet
	BasketStateUnset BasketState = iota
	// BasketStateSound basket fully described by sound collateral
	BasketStateSound
	// BasketStateDisabled some target could not be covered
	BasketStateDisabled
)

func (s BasketState) String() string {
	switch s {
	case BasketStateSound:
		return "SOUND"
	case BasketStateDisabled:
		return "DISABLED"
	default:
		return "UNSET"
	}
}

// MarshalText encode state as its name
func (s BasketState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// PrimeEntry governance chosen basket member
type PrimeEntry struct {
	Token string `json:"token"`
	// TargetName target unit the collateral is pegged to, eg USD
	TargetName string `json:"target_name"`
	// TargetAmt target units per basket unit
	TargetAmt decimal.Decimal `json:"target_amt"`
}

// BackupConfig ordered substitutes for one target name
type BackupConfig struct {
	TargetName string   `json:"target_name"`
	Max        int      `json:"max"`
	Tokens     []string `json:"tokens"`
}

// BasketEntry member of the current basket
type BasketEntry struct {
	Token string `json:"token"`
	// RefAmt reference units per basket unit
	RefAmt decimal.Decimal `json:"ref_amt"`
}

// Basket the current reference basket
type Basket struct {
	Nonce     int64          `json:"nonce"`
	Entries   []*BasketEntry `json:"entries"`
	Disabled  bool           `json:"disabled"`
	Timestamp time.Time      `json:"timestamp"`
}

// RefAmt reference units per basket unit of token
func (b *Basket) RefAmt(token string) decimal.Decimal {
	for _, e := range b.Entries {
		if e.Token == token {
			return e.RefAmt
		}
	}

	return decimal.Zero
}

// Tokens basket tokens in order
func (b *Basket) Tokens() []string {
	tokens := make([]string, len(b.Entries))
	for idx, e := range b.Entries {
		tokens[idx] = e.Token
	}

	return tokens
}

// Clone deep copy
func (b *Basket) Clone() *Basket {
	c := *b
	c.Entries = make([]*BasketEntry, len(b.Entries))
	for idx, e := range b.Entries {
		entry := *e
		c.Entries[idx] = &entry
	}

	return &c
}

// IBasketHandler basket selection and valuation
type IBasketHandler interface {
	SetPrimeBasket(ctx context.Context, entries []*PrimeEntry) error
	SetBackupConfig(ctx context.Context, cfg *BackupConfig) error
	PrimeBasket() []*PrimeEntry
	BackupConfigs() []*BackupConfig
	// RefreshBasket select a new basket from prime and backups
	RefreshBasket(ctx context.Context) error
	// CheckBasket refresh the basket when changes leave a member DISABLED
	CheckBasket(ctx context.Context, changes []*StatusChange) error
	Basket() *Basket
	State() BasketState
	// Status worst status among basket collateral
	Status() CollateralStatus
	// Quantity tokens per basket unit
	Quantity(token string) decimal.Decimal
	BasketsHeldBy(account string) decimal.Decimal
	// Price unit of account per basket unit
	Price(ctx context.Context) (decimal.Decimal, error)
}
