package rtoken

import (
	"context"
	"fmt"
	"sync"

	"rtoken/core"
	"rtoken/internal/rmath"
	"rtoken/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// RToken rtoken bookkeeping with rollback support
type RToken interface {
	core.IRToken
	core.Checkpointer
}

type rtoken struct {
	token          string
	maxTradeVolume decimal.Decimal
	ledger         core.Ledger
	basket         core.IBasketHandler
	clock          core.Clock
	events         core.EventEmitter

	mu            sync.RWMutex
	basketsNeeded decimal.Decimal
}

// New new rtoken
func New(
	params core.Params,
	maxTradeVolume decimal.Decimal,
	ledger core.Ledger,
	basket core.IBasketHandler,
	clock core.Clock,
	events core.EventEmitter,
) RToken {
	return &rtoken{
		token:          params.RToken,
		maxTradeVolume: maxTradeVolume,
		ledger:         ledger,
		basket:         basket,
		clock:          clock,
		events:         events,
	}
}

func (r *rtoken) Token() string {
	return r.token
}

// Price price = basket_price * baskets_needed / supply
func (r *rtoken) Price(ctx context.Context) (decimal.Decimal, error) {
	basketPrice, err := r.basket.Price(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	return rmath.RTokenPrice(basketPrice, r.BasketsNeeded(), r.TotalSupply()), nil
}

func (r *rtoken) MaxTradeVolume() decimal.Decimal {
	return r.maxTradeVolume
}

func (r *rtoken) IsCollateral() bool {
	return false
}

func (r *rtoken) RewardToken() string {
	return ""
}

func (r *rtoken) ClaimRewards(_ context.Context, _ string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (r *rtoken) TotalSupply() decimal.Decimal {
	return r.ledger.TotalSupply(r.token)
}

func (r *rtoken) BasketsNeeded() decimal.Decimal {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.basketsNeeded
}

func (r *rtoken) SetBasketsNeeded(ctx context.Context, baskets decimal.Decimal) error {
	if baskets.IsNegative() {
		return core.ErrInvalidAmount
	}

	r.mu.Lock()
	old := r.basketsNeeded
	r.basketsNeeded = baskets
	r.mu.Unlock()

	if r.events != nil && !old.Equal(baskets) {
		r.events.Emit(ctx, core.NewEvent(core.EventBasketsNeededSet, r.token, &core.BasketsNeededSetEvent{
			Old: old,
			New: baskets,
		}, r.clock.Now()))
	}

	return nil
}

func (r *rtoken) Mint(_ context.Context, to string, amount decimal.Decimal) error {
	return r.ledger.Mint(r.token, to, amount)
}

func (r *rtoken) Melt(_ context.Context, from string, amount decimal.Decimal) error {
	return r.ledger.Burn(r.token, from, amount)
}

// Issue move the basket collateral for amount from issuer to the backing manager
// and mint amount rtoken to issuer
func (r *rtoken) Issue(ctx context.Context, issuer string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	if r.basket.State() != core.BasketStateSound || r.basket.Status() != core.CollateralStatusSound {
		return fmt.Errorf("issue: basket %s: %w", r.basket.State(), core.ErrOperationForbidden)
	}

	supply := r.TotalSupply()
	needed := r.BasketsNeeded()
	baskets := amount
	if supply.IsPositive() {
		baskets = number.MulDiv(amount, needed, supply)
	}

	for _, token := range r.basket.Basket().Tokens() {
		qty := number.MulCeil(r.basket.Quantity(token), baskets)
		if err := r.ledger.Transfer(token, issuer, core.AccountBackingManager, qty); err != nil {
			return err
		}
	}

	if err := r.Mint(ctx, issuer, amount); err != nil {
		return err
	}

	logger.FromContext(ctx).WithField("service", "rtoken").Infof("%s issued %s for %s baskets", issuer, amount, baskets)
	return r.SetBasketsNeeded(ctx, needed.Add(baskets))
}

func (r *rtoken) Checkpoint() func() {
	r.mu.RLock()
	needed := r.basketsNeeded
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		r.basketsNeeded = needed
		r.mu.Unlock()
	}
}
