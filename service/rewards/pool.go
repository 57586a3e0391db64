package rewards

import (
	"context"
	"sync"

	"rtoken/core"

	"github.com/shopspring/decimal"
)

// Pool pending rewards per holder, minted to the holder on claim
type Pool struct {
	mu      sync.Mutex
	ledger  core.Ledger
	token   string
	pending map[string]decimal.Decimal
	err     error
}

// NewPool new reward pool of token
func NewPool(ledger core.Ledger, token string) *Pool {
	return &Pool{
		ledger:  ledger,
		token:   token,
		pending: map[string]decimal.Decimal{},
	}
}

// Token reward token
func (p *Pool) Token() string {
	return p.token
}

// SetRewards set the claimable rewards of holder
func (p *Pool) SetRewards(holder string, amount decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pending[holder] = amount
}

// Fail make every claim fail with err, nil restores
func (p *Pool) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.err = err
}

func (p *Pool) Claim(_ context.Context, holder string) (decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return decimal.Zero, p.err
	}

	amount := p.pending[holder]
	if amount.IsZero() {
		return decimal.Zero, nil
	}

	if err := p.ledger.Mint(p.token, holder, amount); err != nil {
		return decimal.Zero, err
	}

	delete(p.pending, holder)
	return amount, nil
}

func (p *Pool) Checkpoint() func() {
	p.mu.Lock()
	pending := make(map[string]decimal.Decimal, len(p.pending))
	for k, v := range p.pending {
		pending[k] = v
	}
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		p.pending = pending
		p.mu.Unlock()
	}
}
