package strsr

import (
	"context"
	"fmt"
	"sync"

	"rtoken/core"
	"rtoken/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// StRSR staked rsr pool, revenue sent to it raises the rsr per share
type StRSR struct {
	rsr    string
	ledger core.Ledger
	clock  core.Clock
	events core.EventEmitter

	mu     sync.RWMutex
	shares map[string]decimal.Decimal
	total  decimal.Decimal
	// backing rsr accounted to stakers, the ledger balance above it is uncredited revenue
	backing decimal.Decimal
}

// New new empty pool
func New(params core.Params, ledger core.Ledger, clock core.Clock, events core.EventEmitter) *StRSR {
	return &StRSR{
		rsr:    params.RSR,
		ledger: ledger,
		clock:  clock,
		events: events,
		shares: map[string]decimal.Decimal{},
	}
}

func (s *StRSR) Account() string {
	return core.AccountStRSR
}

func (s *StRSR) RSRBalance() decimal.Decimal {
	return s.ledger.BalanceOf(s.rsr, core.AccountStRSR)
}

// ExchangeRate rsr per share, 1 while nothing is staked
func (s *StRSR) ExchangeRate() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.exchangeRate()
}

func (s *StRSR) exchangeRate() decimal.Decimal {
	if !s.total.IsPositive() {
		return one
	}

	return number.Div(s.backing, s.total)
}

// SharesOf shares held by account
func (s *StRSR) SharesOf(account string) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.shares[account]
}

// Stake deposit amount rsr from account for shares at the current rate
func (s *StRSR) Stake(ctx context.Context, account string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, core.ErrInvalidAmount
	}

	if err := s.Payout(ctx); err != nil {
		return decimal.Zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	shares := number.Div(amount, s.exchangeRate())
	if !shares.IsPositive() {
		return decimal.Zero, core.ErrInvalidAmount
	}

	if err := s.ledger.Transfer(s.rsr, account, core.AccountStRSR, amount); err != nil {
		return decimal.Zero, err
	}

	s.shares[account] = s.shares[account].Add(shares)
	s.total = s.total.Add(shares)
	s.backing = s.backing.Add(amount)
	return shares, nil
}

// Unstake redeem shares of account for rsr at the current rate
func (s *StRSR) Unstake(ctx context.Context, account string, shares decimal.Decimal) (decimal.Decimal, error) {
	if !shares.IsPositive() {
		return decimal.Zero, core.ErrInvalidAmount
	}

	if err := s.Payout(ctx); err != nil {
		return decimal.Zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shares[account].LessThan(shares) {
		return decimal.Zero, core.ErrInsufficientBalance
	}

	amount := number.Floor(shares.Mul(s.exchangeRate()))
	if err := s.ledger.Transfer(s.rsr, core.AccountStRSR, account, amount); err != nil {
		return decimal.Zero, err
	}

	s.shares[account] = s.shares[account].Sub(shares)
	if s.shares[account].IsZero() {
		delete(s.shares, account)
	}
	s.total = s.total.Sub(shares)
	s.backing = s.backing.Sub(amount)
	return amount, nil
}

// Payout credit rsr received since the last payout to the stakers.
// With nothing staked the revenue is held and credited on the first payout after a stake.
func (s *StRSR) Payout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	revenue := s.RSRBalance().Sub(s.backing)
	if !revenue.IsPositive() || !s.total.IsPositive() {
		return nil
	}

	s.backing = s.backing.Add(revenue)
	rate := s.exchangeRate()

	logger.FromContext(ctx).WithField("service", "strsr").Infof("credited %s rsr, rate %s", revenue, rate)
	if s.events != nil {
		s.events.Emit(ctx, core.NewEvent(core.EventStakeCredited, core.AccountStRSR, &core.StakeCreditedEvent{
			Amount:       revenue,
			ExchangeRate: rate,
		}, s.clock.Now()))
	}

	return nil
}

// Seize move amount rsr to the backing manager, stakers absorb the loss
func (s *StRSR) Seize(ctx context.Context, to string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	if err := s.Payout(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	balance := s.RSRBalance()
	if balance.LessThan(amount) {
		return fmt.Errorf("seize %s rsr: %w", amount, core.ErrInsufficientBalance)
	}

	if err := s.ledger.Transfer(s.rsr, core.AccountStRSR, to, amount); err != nil {
		return err
	}

	// held revenue goes first, stakers only lose what it does not cover
	held := decimal.Max(decimal.Zero, balance.Sub(s.backing))
	if loss := amount.Sub(held); loss.IsPositive() {
		s.backing = decimal.Max(decimal.Zero, s.backing.Sub(loss))
	}
	logger.FromContext(ctx).WithField("service", "strsr").Warnf("seized %s rsr to %s", amount, to)
	return nil
}

func (s *StRSR) Checkpoint() func() {
	s.mu.RLock()
	shares := make(map[string]decimal.Decimal, len(s.shares))
	for k, v := range s.shares {
		shares[k] = v
	}
	total, backing := s.total, s.backing
	s.mu.RUnlock()

	return func() {
		s.mu.Lock()
		s.shares, s.total, s.backing = shares, total, backing
		s.mu.Unlock()
	}
}
