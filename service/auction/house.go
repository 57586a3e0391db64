package auction

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"rtoken/core"
	"rtoken/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Bid offer of BuyAmount buy tokens for SellAmount sell tokens
type Bid struct {
	Bidder     string          `json:"bidder"`
	SellAmount decimal.Decimal `json:"sell_amount"`
	BuyAmount  decimal.Decimal `json:"buy_amount"`
}

// Auction batch auction state
type Auction struct {
	ID           int64               `json:"id"`
	Seller       string              `json:"seller"`
	Sell         string              `json:"sell"`
	Buy          string              `json:"buy"`
	SellAmount   decimal.Decimal     `json:"sell_amount"`
	MinBuyAmount decimal.Decimal     `json:"min_buy_amount"`
	EndTime      time.Time           `json:"end_time"`
	Bids         []*Bid              `json:"bids"`
	Settled      bool                `json:"settled"`
	Result       *core.AuctionResult `json:"result,omitempty"`
}

func (a *Auction) clone() *Auction {
	c := *a
	c.Bids = make([]*Bid, len(a.Bids))
	for idx, b := range a.Bids {
		bid := *b
		c.Bids[idx] = &bid
	}
	if a.Result != nil {
		r := *a.Result
		c.Result = &r
	}

	return &c
}

// House in-process batch auction market, bids fill best price first
type House struct {
	ledger core.Ledger
	clock  core.Clock

	mu       sync.RWMutex
	nextID   int64
	auctions map[int64]*Auction
}

// New new auction house holding custody in the auction house ledger account
func New(ledger core.Ledger, clock core.Clock) *House {
	return &House{
		ledger:   ledger,
		clock:    clock,
		auctions: map[int64]*Auction{},
	}
}

func (h *House) Open(ctx context.Context, req *core.AuctionRequest) (int64, time.Time, error) {
	if !req.SellAmount.IsPositive() || req.MinBuyAmount.IsNegative() || req.Sell == req.Buy {
		return 0, time.Time{}, core.ErrInvalidAmount
	}

	if err := h.ledger.Transfer(req.Sell, req.Seller, core.AccountAuctionHouse, req.SellAmount); err != nil {
		return 0, time.Time{}, err
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	a := &Auction{
		ID:           id,
		Seller:       req.Seller,
		Sell:         req.Sell,
		Buy:          req.Buy,
		SellAmount:   req.SellAmount,
		MinBuyAmount: req.MinBuyAmount,
		EndTime:      h.clock.Now().Add(req.Duration),
	}
	h.auctions[id] = a
	h.mu.Unlock()

	logger.FromContext(ctx).WithField("service", "auction").
		Infof("auction %d opened: %s %s for %s", id, req.SellAmount, req.Sell, req.Buy)
	return id, a.EndTime, nil
}

// PlaceBid escrow the bid's buy tokens until settlement
func (h *House) PlaceBid(_ context.Context, id int64, bid *Bid) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	a, ok := h.auctions[id]
	if !ok {
		return core.ErrAuctionNotFound
	}

	if a.Settled || !h.clock.Now().Before(a.EndTime) {
		return core.ErrAuctionClosed
	}

	if !bid.SellAmount.IsPositive() || bid.SellAmount.GreaterThan(a.SellAmount) || bid.BuyAmount.IsNegative() {
		return core.ErrInvalidBid
	}

	if err := h.ledger.Transfer(a.Buy, bid.Bidder, core.AccountAuctionHouse, bid.BuyAmount); err != nil {
		return err
	}

	b := *bid
	a.Bids = append(a.Bids, &b)
	return nil
}

func (h *House) Settle(ctx context.Context, id int64) (*core.AuctionResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	a, ok := h.auctions[id]
	if !ok {
		return nil, core.ErrAuctionNotFound
	}

	if a.Settled {
		return nil, core.ErrAuctionClosed
	}

	if h.clock.Now().Before(a.EndTime) {
		return nil, core.ErrAuctionNotEnded
	}

	bids := append([]*Bid(nil), a.Bids...)
	sort.SliceStable(bids, func(i, j int) bool {
		// buy_i / sell_i > buy_j / sell_j
		return bids[i].BuyAmount.Mul(bids[j].SellAmount).GreaterThan(bids[j].BuyAmount.Mul(bids[i].SellAmount))
	})

	left := a.SellAmount
	result := &core.AuctionResult{}
	for _, b := range bids {
		fill := decimal.Min(left, b.SellAmount)
		pay := b.BuyAmount
		if fill.LessThan(b.SellAmount) {
			pay = number.MulDiv(b.BuyAmount, fill, b.SellAmount)
		}

		if fill.IsPositive() {
			if err := h.ledger.Transfer(a.Sell, core.AccountAuctionHouse, b.Bidder, fill); err != nil {
				return nil, err
			}
		}

		if refund := b.BuyAmount.Sub(pay); refund.IsPositive() {
			if err := h.ledger.Transfer(a.Buy, core.AccountAuctionHouse, b.Bidder, refund); err != nil {
				return nil, err
			}
		}

		left = left.Sub(fill)
		result.SoldAmount = result.SoldAmount.Add(fill)
		result.BoughtAmount = result.BoughtAmount.Add(pay)
	}

	if result.BoughtAmount.IsPositive() {
		if err := h.ledger.Transfer(a.Buy, core.AccountAuctionHouse, a.Seller, result.BoughtAmount); err != nil {
			return nil, err
		}
	}

	if left.IsPositive() {
		if err := h.ledger.Transfer(a.Sell, core.AccountAuctionHouse, a.Seller, left); err != nil {
			return nil, err
		}
	}

	a.Settled = true
	a.Result = result
	logger.FromContext(ctx).WithField("service", "auction").
		Infof("auction %d settled: sold %s %s bought %s %s", id, result.SoldAmount, a.Sell, result.BoughtAmount, a.Buy)

	r := *result
	return &r, nil
}

// Auction copy of auction id
func (h *House) Auction(id int64) (*Auction, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	a, ok := h.auctions[id]
	if !ok {
		return nil, fmt.Errorf("auction %d: %w", id, core.ErrAuctionNotFound)
	}

	return a.clone(), nil
}

// Auctions every auction ordered by id
func (h *House) Auctions() []*Auction {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*Auction, 0, len(h.auctions))
	for id := int64(0); id < h.nextID; id++ {
		if a, ok := h.auctions[id]; ok {
			out = append(out, a.clone())
		}
	}

	return out
}

func (h *House) Checkpoint() func() {
	h.mu.RLock()
	nextID := h.nextID
	auctions := make(map[int64]*Auction, len(h.auctions))
	for k, v := range h.auctions {
		auctions[k] = v.clone()
	}
	h.mu.RUnlock()

	return func() {
		h.mu.Lock()
		h.nextID = nextID
		h.auctions = auctions
		h.mu.Unlock()
	}
}
