package oracle

import (
	"context"
	"sync"
	"time"

	"rtoken/core"

	"github.com/shopspring/decimal"
)

// Memory settable price feeds for simulations and tests
type Memory struct {
	mu     sync.RWMutex
	clock  core.Clock
	prices map[string]*core.PriceTicker
	errs   map[string]error
}

// NewMemory new memory oracle
func NewMemory(clock core.Clock) *Memory {
	return &Memory{
		clock:  clock,
		prices: map[string]*core.PriceTicker{},
		errs:   map[string]error{},
	}
}

// Set publish price now
func (m *Memory) Set(feed string, price decimal.Decimal) {
	m.SetAt(feed, price, m.clock.Now())
}

// SetAt publish price at t
func (m *Memory) SetAt(feed string, price decimal.Decimal, t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prices[feed] = &core.PriceTicker{
		Provider:  "memory",
		Symbol:    feed,
		Price:     price,
		Timestamp: t.Unix(),
	}
	delete(m.errs, feed)
}

// Fail make the feed return err until the next Set
func (m *Memory) Fail(feed string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.errs[feed] = err
}

func (m *Memory) LatestPrice(_ context.Context, feed string) (decimal.Decimal, time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.errs[feed]; ok {
		return decimal.Zero, time.Time{}, err
	}

	ticker, ok := m.prices[feed]
	if !ok {
		return decimal.Zero, time.Time{}, core.ErrPriceUnavailable
	}

	return ticker.Price, ticker.UpdatedAt(), nil
}
