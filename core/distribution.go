package core

import (
	"context"

	"github.com/shopspring/decimal"
)

const (
	// DestinationFurnace sentinel destination melting rtoken
	DestinationFurnace = "FURNACE"
	// DestinationStRSR sentinel destination crediting stakers
	DestinationStRSR = "STRSR"
)

// RevenueShare shares of rtoken and rsr revenue routed to a destination
type RevenueShare struct {
	RTokenDist uint64 `json:"rtoken_dist"`
	RSRDist    uint64 `json:"rsr_dist"`
}

// IsZero no share at all
func (s RevenueShare) IsZero() bool {
	return s.RTokenDist == 0 && s.RSRDist == 0
}

// RevenueTotals sums of every destination's shares
type RevenueTotals struct {
	RTokenTotal uint64 `json:"rtoken_total"`
	RSRTotal    uint64 `json:"rsr_total"`
}

// Destination a revenue destination and its share
type Destination struct {
	Address string       `json:"address"`
	Share   RevenueShare `json:"share"`
}

// IDistributor revenue routing table
type IDistributor interface {
	SetDistribution(ctx context.Context, dest string, share RevenueShare) error
	Distribution(dest string) RevenueShare
	Destinations() []*Destination
	Totals() RevenueTotals
	// Distribute move amount of token from the sender to every destination pro rata
	Distribute(ctx context.Context, token, from string, amount decimal.Decimal) error
}
