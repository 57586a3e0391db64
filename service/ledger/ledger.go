package ledger

import (
	"fmt"
	"sync"

	"rtoken/core"

	"github.com/shopspring/decimal"
)

// Memory in-memory token balances, stands in for the erc20 contracts
type Memory struct {
	mu       sync.RWMutex
	balances map[string]map[string]decimal.Decimal
	supply   map[string]decimal.Decimal
}

// New new memory ledger
func New() *Memory {
	return &Memory{
		balances: map[string]map[string]decimal.Decimal{},
		supply:   map[string]decimal.Decimal{},
	}
}

func (l *Memory) BalanceOf(token, account string) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.balances[token][account]
}

func (l *Memory) TotalSupply(token string) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.supply[token]
}

func (l *Memory) Transfer(token, from, to string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return core.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	bal := l.balances[token][from]
	if bal.LessThan(amount) {
		return fmt.Errorf("transfer %s %s from %s: %w", amount, token, from, core.ErrInsufficientBalance)
	}

	l.set(token, from, bal.Sub(amount))
	l.set(token, to, l.balances[token][to].Add(amount))
	return nil
}

func (l *Memory) Mint(token, to string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return core.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.set(token, to, l.balances[token][to].Add(amount))
	l.supply[token] = l.supply[token].Add(amount)
	return nil
}

func (l *Memory) Burn(token, from string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return core.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	bal := l.balances[token][from]
	if bal.LessThan(amount) {
		return fmt.Errorf("burn %s %s from %s: %w", amount, token, from, core.ErrInsufficientBalance)
	}

	l.set(token, from, bal.Sub(amount))
	l.supply[token] = l.supply[token].Sub(amount)
	return nil
}

// Balances every non-zero balance of account
func (l *Memory) Balances(account string) map[string]decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := map[string]decimal.Decimal{}
	for token, accounts := range l.balances {
		if bal := accounts[account]; bal.IsPositive() {
			out[token] = bal
		}
	}

	return out
}

func (l *Memory) Checkpoint() func() {
	l.mu.RLock()
	balances := make(map[string]map[string]decimal.Decimal, len(l.balances))
	for token, accounts := range l.balances {
		c := make(map[string]decimal.Decimal, len(accounts))
		for k, v := range accounts {
			c[k] = v
		}
		balances[token] = c
	}

	supply := make(map[string]decimal.Decimal, len(l.supply))
	for k, v := range l.supply {
		supply[k] = v
	}
	l.mu.RUnlock()

	return func() {
		l.mu.Lock()
		l.balances = balances
		l.supply = supply
		l.mu.Unlock()
	}
}

func (l *Memory) set(token, account string, amount decimal.Decimal) {
	accounts, ok := l.balances[token]
	if !ok {
		accounts = map[string]decimal.Decimal{}
		l.balances[token] = accounts
	}

	accounts[account] = amount
}
