package furnace

import (
	"context"
	"sync"
	"time"

	"rtoken/core"
	"rtoken/internal/rmath"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Furnace melts a ratio of its rtoken balance every period
type Furnace struct {
	rtoken core.IRToken
	ledger core.Ledger
	ratio  decimal.Decimal
	period time.Duration
	clock  core.Clock
	events core.EventEmitter

	mu         sync.Mutex
	lastPayout time.Time
}

// New new furnace, the first period starts now
func New(params core.Params, rtoken core.IRToken, ledger core.Ledger, clock core.Clock, events core.EventEmitter) *Furnace {
	return &Furnace{
		rtoken:     rtoken,
		ledger:     ledger,
		ratio:      params.FurnaceRatio,
		period:     params.FurnacePeriod,
		clock:      clock,
		events:     events,
		lastPayout: clock.Now(),
	}
}

func (f *Furnace) Account() string {
	return core.AccountFurnace
}

// LastPayout start of the current period
func (f *Furnace) LastPayout() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.lastPayout
}

// Melt burn ratio of the balance for every whole period since the last payout
func (f *Furnace) Melt(ctx context.Context) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.clock.Now()
	periods := int64(now.Sub(f.lastPayout) / f.period)
	if periods <= 0 {
		return decimal.Zero, nil
	}

	balance := f.ledger.BalanceOf(f.rtoken.Token(), core.AccountFurnace)
	amount := rmath.MeltAmount(balance, f.ratio, periods)
	if amount.IsPositive() {
		if err := f.rtoken.Melt(ctx, core.AccountFurnace, amount); err != nil {
			return decimal.Zero, err
		}

		logger.FromContext(ctx).WithField("service", "furnace").Infof("melted %s over %d periods", amount, periods)
		if f.events != nil {
			f.events.Emit(ctx, core.NewEvent(core.EventMelted, core.AccountFurnace, &core.MeltedEvent{Amount: amount}, now))
		}
	}

	f.lastPayout = f.lastPayout.Add(time.Duration(periods) * f.period)
	return amount, nil
}

func (f *Furnace) Checkpoint() func() {
	f.mu.Lock()
	lastPayout := f.lastPayout
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		f.lastPayout = lastPayout
		f.mu.Unlock()
	}
}
