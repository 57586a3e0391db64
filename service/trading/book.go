package trading

import (
	"fmt"
	"sort"
	"sync"

	"rtoken/core"
	"rtoken/pkg/id"
)

// Book trades of one trader, at most one open trade per sell token
type Book struct {
	mu        sync.RWMutex
	trader    string
	nextIndex int64
	open      map[string]*core.Trade
	trades    []*core.Trade
}

// NewBook new trade book of trader
func NewBook(trader string) *Book {
	return &Book{
		trader: trader,
		open:   map[string]*core.Trade{},
	}
}

// Add register an open trade, numbering it
func (b *Book) Add(trade *core.Trade) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.open[trade.Sell]; ok {
		return fmt.Errorf("%s selling %s: %w", b.trader, trade.Sell, core.ErrTradeAlreadyOpen)
	}

	trade.Trader = b.trader
	trade.Index = b.nextIndex
	trade.ID = id.TradeID(b.trader, trade.Index)
	trade.Status = core.TradeStatusOpen
	b.nextIndex++

	b.open[trade.Sell] = trade
	b.trades = append(b.trades, trade)
	return nil
}

// Open the open trade selling token
func (b *Book) Open(sell string) (*core.Trade, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	trade, ok := b.open[sell]
	if !ok {
		return nil, false
	}

	c := *trade
	return &c, true
}

// OpenTrades open trades ordered by index
func (b *Book) OpenTrades() []*core.Trade {
	b.mu.RLock()
	defer b.mu.RUnlock()

	trades := make([]*core.Trade, 0, len(b.open))
	for _, trade := range b.open {
		c := *trade
		trades = append(trades, &c)
	}

	sort.Slice(trades, func(i, j int) bool {
		return trades[i].Index < trades[j].Index
	})

	return trades
}

// Count number of open trades
func (b *Book) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.open)
}

// Close settle the open trade selling token
func (b *Book) Close(sell string, result *core.AuctionResult) (*core.Trade, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	trade, ok := b.open[sell]
	if !ok {
		return nil, fmt.Errorf("%s selling %s: %w", b.trader, sell, core.ErrAuctionNotFound)
	}

	trade.Status = core.TradeStatusClosed
	trade.SoldAmount = result.SoldAmount
	trade.BoughtAmount = result.BoughtAmount
	delete(b.open, sell)

	c := *trade
	return &c, nil
}

// All every trade ordered by index
func (b *Book) All() []*core.Trade {
	b.mu.RLock()
	defer b.mu.RUnlock()

	trades := make([]*core.Trade, len(b.trades))
	for idx, trade := range b.trades {
		c := *trade
		trades[idx] = &c
	}

	return trades
}

func (b *Book) Checkpoint() func() {
	b.mu.RLock()
	nextIndex := b.nextIndex
	trades := make([]*core.Trade, len(b.trades))
	open := make(map[string]*core.Trade, len(b.open))
	for idx, trade := range b.trades {
		c := *trade
		trades[idx] = &c
		if trade.Status == core.TradeStatusOpen {
			open[c.Sell] = &c
		}
	}
	b.mu.RUnlock()

	return func() {
		b.mu.Lock()
		b.nextIndex, b.trades, b.open = nextIndex, trades, open
		b.mu.Unlock()
	}
}
