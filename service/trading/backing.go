package trading

import (
	"context"
	"fmt"

	"rtoken/core"
	"rtoken/internal/rmath"
	"rtoken/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// BackingManager holds the basket collateral, trades surplus for deficit
// and hands revenue to the revenue traders
type BackingManager struct {
	trader
	basket       core.IBasketHandler
	rtoken       core.IRToken
	distributor  core.IDistributor
	stRSR        core.IStRSR
	rsrTrader    string
	rTokenTrader string
}

// NewBackingManager new backing manager
func NewBackingManager(
	cfg Config,
	basket core.IBasketHandler,
	rtoken core.IRToken,
	distributor core.IDistributor,
	stRSR core.IStRSR,
	rsrTrader, rTokenTrader string,
) *BackingManager {
	return &BackingManager{
		trader:       newTrader(cfg, core.AccountBackingManager),
		basket:       basket,
		rtoken:       rtoken,
		distributor:  distributor,
		stRSR:        stRSR,
		rsrTrader:    rsrTrader,
		rTokenTrader: rTokenTrader,
	}
}

// ManageTokens settle due trades, then recollateralize when short of baskets
// or hand out the excess when fully collateralized
func (m *BackingManager) ManageTokens(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("trader", m.account)

	if err := m.SettleTrades(ctx); err != nil {
		return err
	}

	if m.book.Count() > 0 {
		return nil
	}

	if m.basket.State() != core.BasketStateSound {
		log.Debugln("basket is", m.basket.State())
		return nil
	}

	if status := m.basket.Status(); status != core.CollateralStatusSound {
		log.Debugln("basket status is", status)
		return nil
	}

	held := m.basket.BasketsHeldBy(m.account)
	needed := m.rtoken.BasketsNeeded()
	if held.LessThan(needed) {
		return m.recollateralize(ctx, needed)
	}

	return m.handout(ctx, held, needed)
}

// ClaimAndSweepRewards claim rewards into the backing manager
func (m *BackingManager) ClaimAndSweepRewards(ctx context.Context) ([]*core.RewardClaim, error) {
	return m.claimRewards(ctx), nil
}

// required tokens the backing manager keeps for baskets
func (m *BackingManager) required(token string, baskets decimal.Decimal) decimal.Decimal {
	return number.MulCeil(m.basket.Quantity(token), baskets)
}

// handout mint rtoken for baskets held above needed, then split every
// balance above the basket requirement between the revenue traders
func (m *BackingManager) handout(ctx context.Context, held, needed decimal.Decimal) error {
	log := logger.FromContext(ctx).WithField("trader", m.account)

	if held.GreaterThan(needed) && needed.IsPositive() {
		if mint := rmath.MintAmount(m.rtoken.TotalSupply(), held, needed); mint.IsPositive() {
			if err := m.rtoken.Mint(ctx, m.account, mint); err != nil {
				return fmt.Errorf("mint: %w", err)
			}

			log.Infof("minted %s %s for %s baskets held above %s needed", mint, m.Params.RToken, held, needed)
		}

		if err := m.rtoken.SetBasketsNeeded(ctx, held); err != nil {
			return err
		}

		needed = held
	}

	// rsr at the backing manager goes back to the stakers
	if balance := m.Ledger.BalanceOf(m.Params.RSR, m.account); balance.IsPositive() && m.stRSR != nil {
		if err := m.Ledger.Transfer(m.Params.RSR, m.account, m.stRSR.Account(), balance); err != nil {
			return err
		}
	}

	totals := m.distributor.Totals()
	for _, token := range m.tokens() {
		balance := m.Ledger.BalanceOf(token, m.account)
		excess := balance.Sub(m.required(token, needed))
		if !excess.IsPositive() {
			continue
		}

		toRSR, toRToken := rmath.SplitRevenue(excess, totals.RSRTotal, totals.RTokenTotal)
		if toRSR.IsPositive() {
			if err := m.Ledger.Transfer(token, m.account, m.rsrTrader, toRSR); err != nil {
				return err
			}
		}

		if toRToken.IsPositive() {
			if err := m.Ledger.Transfer(token, m.account, m.rTokenTrader, toRToken); err != nil {
				return err
			}
		}

		log.Debugf("handout %s %s, %s to %s and %s to %s", excess, token, toRSR, m.rsrTrader, toRToken, m.rTokenTrader)
	}

	return nil
}

// tokens registered tokens and rtoken
func (m *BackingManager) tokens() []string {
	tokens := m.Registry.Tokens()
	for _, token := range tokens {
		if token == m.Params.RToken {
			return tokens
		}
	}

	return append(tokens, m.Params.RToken)
}

type position struct {
	token    string
	amount   decimal.Decimal
	price    decimal.Decimal
	value    decimal.Decimal
	disabled bool
	asset    core.IAsset
}

// recollateralize sell the best surplus for the largest deficit, one trade at a time
func (m *BackingManager) recollateralize(ctx context.Context, needed decimal.Decimal) error {
	log := logger.FromContext(ctx).WithField("trader", m.account)

	var surplus, deficit, rsr *position
	for _, token := range m.Registry.Tokens() {
		if token == m.Params.RToken {
			continue
		}

		asset, err := m.Registry.ToAsset(token)
		if err != nil {
			continue
		}

		balance := m.Ledger.BalanceOf(token, m.account)
		required := m.required(token, needed)
		if balance.Equal(required) {
			continue
		}

		price, err := asset.Price(ctx)
		if err != nil || !price.IsPositive() {
			log.WithError(err).Warnln("skip unpriced", token)
			continue
		}

		p := &position{token: token, price: price, asset: asset}
		if balance.LessThan(required) {
			p.amount = required.Sub(balance)
			p.value = p.amount.Mul(price)
			if deficit == nil || p.value.GreaterThan(deficit.value) {
				deficit = p
			}

			continue
		}

		p.amount = balance.Sub(required)
		p.value = p.amount.Mul(price)
		if token == m.Params.RSR {
			rsr = p
			continue
		}

		if coll, err := m.Registry.ToColl(token); err == nil {
			p.disabled = coll.Status() == core.CollateralStatusDisabled
		}

		if surplus == nil || better(p, surplus) {
			surplus = p
		}
	}

	if deficit == nil {
		return nil
	}

	if surplus == nil {
		surplus = rsr
	}

	if surplus == nil {
		var err error
		if surplus, err = m.seizeRSR(ctx, deficit); err != nil {
			return err
		}
	}

	if surplus == nil {
		log.Warnf("undercollateralized, short %s %s with nothing to sell", deficit.amount, deficit.token)
		return nil
	}

	// enough to cover the deficit after slippage, capped by the max trade volume
	want := number.DivCeil(deficit.value, surplus.price.Mul(rmath.One.Sub(m.Params.MaxTradeSlippage)))
	sellAmount := decimal.Min(surplus.amount, want)
	sellAmount = rmath.SellAmount(sellAmount, surplus.asset.MaxTradeVolume(), surplus.price)
	if rmath.IsDust(sellAmount, surplus.price, m.Params.MinTradeVolume) {
		log.Debugf("skip dust %s %s", sellAmount, surplus.token)
		return nil
	}

	minBuy := rmath.MinBuyAmount(sellAmount, surplus.price, deficit.price, m.Params.MaxTradeSlippage)
	return m.openTrade(ctx, surplus.token, deficit.token, sellAmount, minBuy)
}

// better disabled collateral goes first, then the larger value
func better(a, b *position) bool {
	if a.disabled != b.disabled {
		return a.disabled
	}

	return a.value.GreaterThan(b.value)
}

// seizeRSR take rsr from the stakers worth the deficit
func (m *BackingManager) seizeRSR(ctx context.Context, deficit *position) (*position, error) {
	if m.stRSR == nil {
		return nil, nil
	}

	available := m.stRSR.RSRBalance()
	if !available.IsPositive() {
		return nil, nil
	}

	asset, err := m.Registry.ToAsset(m.Params.RSR)
	if err != nil {
		return nil, nil
	}

	price, err := asset.Price(ctx)
	if err != nil || !price.IsPositive() {
		logger.FromContext(ctx).WithError(err).Warnln("rsr unpriced")
		return nil, nil
	}

	want := number.DivCeil(deficit.value, price.Mul(rmath.One.Sub(m.Params.MaxTradeSlippage)))
	amount := rmath.SellAmount(decimal.Min(available, want), asset.MaxTradeVolume(), price)
	if !amount.IsPositive() {
		return nil, nil
	}

	if err := m.stRSR.Seize(ctx, m.account, amount); err != nil {
		return nil, fmt.Errorf("seize rsr: %w", err)
	}

	return &position{
		token:  m.Params.RSR,
		amount: amount,
		price:  price,
		value:  amount.Mul(price),
		asset:  asset,
	}, nil
}
