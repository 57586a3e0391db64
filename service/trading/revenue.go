package trading

import (
	"context"
	"errors"
	"fmt"

	"rtoken/core"
	"rtoken/internal/rmath"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// RevenueTrader sells every held token for its buy token and hands the
// buy token to the distributor
type RevenueTrader struct {
	trader
	buy         string
	backing     string
	distributor core.IDistributor
}

// NewRevenueTrader new trader buying buyToken, sweeping rewards to backing
func NewRevenueTrader(cfg Config, account, buyToken, backing string, distributor core.IDistributor) *RevenueTrader {
	return &RevenueTrader{
		trader:      newTrader(cfg, account),
		buy:         buyToken,
		backing:     backing,
		distributor: distributor,
	}
}

// BuyToken the token this trader buys
func (t *RevenueTrader) BuyToken() string {
	return t.buy
}

// ManageTokens settle due trades, distribute the buy token and open an
// auction for every other held token
func (t *RevenueTrader) ManageTokens(ctx context.Context) error {
	if err := t.SettleTrades(ctx); err != nil {
		return err
	}

	for _, token := range t.tokens() {
		if err := t.manageToken(ctx, token); err != nil {
			return fmt.Errorf("%s manage %s: %w", t.account, token, err)
		}
	}

	return nil
}

// tokens every registered token, plus both revenue tokens
func (t *RevenueTrader) tokens() []string {
	tokens := t.Registry.Tokens()
	seen := make(map[string]bool, len(tokens)+2)
	for _, token := range tokens {
		seen[token] = true
	}

	for _, token := range []string{t.Params.RToken, t.Params.RSR} {
		if !seen[token] {
			tokens = append(tokens, token)
		}
	}

	return tokens
}

func (t *RevenueTrader) manageToken(ctx context.Context, token string) error {
	log := logger.FromContext(ctx).WithField("trader", t.account)

	balance := t.Ledger.BalanceOf(token, t.account)
	if balance.Sign() <= 0 {
		return nil
	}

	if token == t.buy {
		err := t.distributor.Distribute(ctx, token, t.account, balance)
		if errors.Is(err, core.ErrNothingToDistribute) {
			log.Debugln("no destination for", token)
			return nil
		}

		return err
	}

	if _, ok := t.book.Open(token); ok {
		return nil
	}

	sellPrice, buyPrice, maxTradeVolume, err := t.prices(ctx, token)
	if err != nil {
		log.WithError(err).Warnln("skip", token)
		return nil
	}

	sellAmount := rmath.SellAmount(balance, maxTradeVolume, sellPrice)
	if rmath.IsDust(sellAmount, sellPrice, t.Params.MinTradeVolume) {
		log.Debugf("skip %s dust %s", token, balance)
		return nil
	}

	minBuy := rmath.MinBuyAmount(sellAmount, sellPrice, buyPrice, t.Params.MaxTradeSlippage)
	return t.openTrade(ctx, token, t.buy, sellAmount, minBuy)
}

func (t *RevenueTrader) prices(ctx context.Context, token string) (sellPrice, buyPrice, maxTradeVolume decimal.Decimal, err error) {
	sellAsset, err := t.Registry.ToAsset(token)
	if err != nil {
		return
	}

	buyAsset, err := t.Registry.ToAsset(t.buy)
	if err != nil {
		return
	}

	if sellPrice, err = sellAsset.Price(ctx); err != nil {
		return
	}

	if buyPrice, err = buyAsset.Price(ctx); err != nil {
		return
	}

	if sellPrice.Sign() <= 0 || buyPrice.Sign() <= 0 {
		err = core.ErrInvalidPrice
		return
	}

	maxTradeVolume = sellAsset.MaxTradeVolume()
	return
}

// ClaimAndSweepRewards claim rewards and move what was received to the backing manager
func (t *RevenueTrader) ClaimAndSweepRewards(ctx context.Context) ([]*core.RewardClaim, error) {
	claims := t.claimRewards(ctx)

	for _, claim := range claims {
		if !claim.Claimed() || claim.Amount.Sign() <= 0 {
			continue
		}

		balance := t.Ledger.BalanceOf(claim.RewardToken, t.account)
		amount := decimal.Min(balance, claim.Amount)
		if amount.Sign() <= 0 {
			continue
		}

		if err := t.Ledger.Transfer(claim.RewardToken, t.account, t.backing, amount); err != nil {
			return claims, fmt.Errorf("sweep %s: %w", claim.RewardToken, err)
		}
	}

	return claims, nil
}
