package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TradeStatus trade lifecycle
type TradeStatus int

const (
	// TradeStatusNotStarted created, auction not opened
	TradeStatusNotStarted TradeStatus = iota
	// TradeStatusOpen auction running
	TradeStatusOpen
	// TradeStatusClosed settled
	TradeStatusClosed
)

func (s TradeStatus) String() string {
	switch s {
	case TradeStatusOpen:
		return "OPEN"
	case TradeStatusClosed:
		return "CLOSED"
	default:
		return "NOT_STARTED"
	}
}

// MarshalText encode status as its name
func (s TradeStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Trade one auction of a trader
type Trade struct {
	ID           string          `json:"id"`
	Index        int64           `json:"index"`
	Trader       string          `json:"trader"`
	Sell         string          `json:"sell"`
	Buy          string          `json:"buy"`
	SellAmount   decimal.Decimal `json:"sell_amount"`
	MinBuyAmount decimal.Decimal `json:"min_buy_amount"`
	AuctionID    int64           `json:"auction_id"`
	StartTime    time.Time       `json:"start_time"`
	EndTime      time.Time       `json:"end_time"`
	Status       TradeStatus     `json:"status"`
	SoldAmount   decimal.Decimal `json:"sold_amount"`
	BoughtAmount decimal.Decimal `json:"bought_amount"`
}

// AuctionRequest parameters of a new batch auction
type AuctionRequest struct {
	Seller       string
	Sell         string
	Buy          string
	SellAmount   decimal.Decimal
	MinBuyAmount decimal.Decimal
	Duration     time.Duration
}

// AuctionResult clearing outcome
type AuctionResult struct {
	SoldAmount   decimal.Decimal
	BoughtAmount decimal.Decimal
}

// AuctionHouse external batch auction market
type AuctionHouse interface {
	// Open take custody of the sell amount and start an auction
	Open(ctx context.Context, req *AuctionRequest) (auctionID int64, endTime time.Time, err error)
	// Settle clear the auction and pay the seller
	Settle(ctx context.Context, auctionID int64) (*AuctionResult, error)
}

// RewardClaim outcome of one asset's claim hook
type RewardClaim struct {
	Asset       string          `json:"asset"`
	RewardToken string          `json:"reward_token"`
	Amount      decimal.Decimal `json:"amount"`
	Err         error           `json:"-"`
}

// Claimed whether the hook succeeded
func (c *RewardClaim) Claimed() bool {
	return c.Err == nil
}

// ITrader backing manager or revenue trader
type ITrader interface {
	Account() string
	// ManageTokens settle due trades then act on held balances
	ManageTokens(ctx context.Context) error
	// SettleTrades settle every trade past its end time
	SettleTrades(ctx context.Context) error
	ClaimAndSweepRewards(ctx context.Context) ([]*RewardClaim, error)
	Trades() []*Trade
	OpenTrade(sell string) (*Trade, bool)
	OpenTradesCount() int
}
