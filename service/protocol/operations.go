package protocol

import (
	"context"
	"fmt"

	"rtoken/core"
	"rtoken/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Refresh poll every collateral and switch the basket when a member defaulted
func (p *Protocol) Refresh(ctx context.Context) error {
	return p.atomic(ctx, p.refresh)
}

func (p *Protocol) refresh(ctx context.Context) error {
	changes := p.registry.Refresh(ctx)
	return p.basket.CheckBasket(ctx, changes)
}

// ClaimRewards claim rewards of every trader, sweep them to the backing
// manager and hand them out to the revenue traders
func (p *Protocol) ClaimRewards(ctx context.Context) ([]*core.RewardClaim, error) {
	var claims []*core.RewardClaim
	err := p.atomic(ctx, func(ctx context.Context) error {
		claims = nil
		for _, t := range p.Traders() {
			c, err := t.ClaimAndSweepRewards(ctx)
			if err != nil {
				return fmt.Errorf("%s: %w", t.Account(), err)
			}

			claims = append(claims, c...)
		}

		return p.backing.ManageTokens(ctx)
	})

	return claims, err
}

// RunAuctionsForAllTraders refresh, then let every trader settle and open auctions,
// finally credit stakers and melt
func (p *Protocol) RunAuctionsForAllTraders(ctx context.Context) error {
	return p.atomic(ctx, func(ctx context.Context) error {
		if err := p.refresh(ctx); err != nil {
			return err
		}

		for _, t := range p.Traders() {
			if err := t.ManageTokens(ctx); err != nil {
				return fmt.Errorf("%s: %w", t.Account(), err)
			}
		}

		if err := p.stRSR.Payout(ctx); err != nil {
			return err
		}

		_, err := p.furnace.Melt(ctx)
		return err
	})
}

// ManageTokens run one trader only
func (p *Protocol) ManageTokens(ctx context.Context, account string) error {
	t, err := p.trader(account)
	if err != nil {
		return err
	}

	return p.atomic(ctx, t.ManageTokens)
}

// SettleTrades settle the due trades of one trader
func (p *Protocol) SettleTrades(ctx context.Context, account string) error {
	t, err := p.trader(account)
	if err != nil {
		return err
	}

	return p.atomic(ctx, t.SettleTrades)
}

func (p *Protocol) trader(account string) (core.ITrader, error) {
	for _, t := range p.Traders() {
		if t.Account() == account {
			return t, nil
		}
	}

	return nil, fmt.Errorf("trader %s: %w", account, core.ErrOperationForbidden)
}

// Melt melt the furnace balance due
func (p *Protocol) Melt(ctx context.Context) (decimal.Decimal, error) {
	var melted decimal.Decimal
	err := p.atomic(ctx, func(ctx context.Context) (err error) {
		melted, err = p.furnace.Melt(ctx)
		return
	})

	return melted, err
}

// Issue deposit basket collateral from issuer and mint amount rtoken
func (p *Protocol) Issue(ctx context.Context, issuer string, amount decimal.Decimal) error {
	return p.atomic(ctx, func(ctx context.Context) error {
		if err := p.refresh(ctx); err != nil {
			return err
		}

		return p.rtoken.Issue(ctx, issuer, amount)
	})
}

// Stake stake rsr of account
func (p *Protocol) Stake(ctx context.Context, account string, amount decimal.Decimal) (decimal.Decimal, error) {
	var shares decimal.Decimal
	err := p.atomic(ctx, func(ctx context.Context) (err error) {
		shares, err = p.stRSR.Stake(ctx, account, amount)
		return
	})

	return shares, err
}

// Unstake redeem staked shares of account
func (p *Protocol) Unstake(ctx context.Context, account string, shares decimal.Decimal) (decimal.Decimal, error) {
	var amount decimal.Decimal
	err := p.atomic(ctx, func(ctx context.Context) (err error) {
		amount, err = p.stRSR.Unstake(ctx, account, shares)
		return
	})

	return amount, err
}

// SetDistribution governance, set the revenue share of dest
func (p *Protocol) SetDistribution(ctx context.Context, dest string, share core.RevenueShare) error {
	return p.atomic(ctx, func(ctx context.Context) error {
		return p.distributor.SetDistribution(ctx, dest, share)
	})
}

// SetPrimeBasket governance, takes effect on the next basket switch
func (p *Protocol) SetPrimeBasket(ctx context.Context, entries []*core.PrimeEntry) error {
	return p.atomic(ctx, func(ctx context.Context) error {
		return p.basket.SetPrimeBasket(ctx, entries)
	})
}

// SetBackupConfig governance, backups of one target name
func (p *Protocol) SetBackupConfig(ctx context.Context, cfg *core.BackupConfig) error {
	return p.atomic(ctx, func(ctx context.Context) error {
		return p.basket.SetBackupConfig(ctx, cfg)
	})
}

// SwitchBasket governance, refresh collateral then select a new basket
func (p *Protocol) SwitchBasket(ctx context.Context) error {
	return p.atomic(ctx, func(ctx context.Context) error {
		p.registry.Refresh(ctx)
		return p.basket.RefreshBasket(ctx)
	})
}

// Register governance, add an asset
func (p *Protocol) Register(ctx context.Context, asset core.IAsset) error {
	return p.atomic(ctx, func(ctx context.Context) error {
		return p.registry.Register(ctx, asset)
	})
}

// SwapRegistered governance, replace the asset of an already registered token
func (p *Protocol) SwapRegistered(ctx context.Context, asset core.IAsset) error {
	return p.atomic(ctx, func(ctx context.Context) error {
		if err := p.registry.SwapRegistered(ctx, asset); err != nil {
			return err
		}

		return p.switchIfMember(ctx, asset.Token())
	})
}

// Unregister governance, remove an asset
func (p *Protocol) Unregister(ctx context.Context, token string) error {
	if token == p.params.RToken {
		return core.ErrOperationForbidden
	}

	return p.atomic(ctx, func(ctx context.Context) error {
		if err := p.registry.Unregister(ctx, token); err != nil {
			return err
		}

		return p.switchIfMember(ctx, token)
	})
}

// switchIfMember a basket built on a replaced asset is switched
func (p *Protocol) switchIfMember(ctx context.Context, token string) error {
	b := p.basket.Basket()
	if b == nil {
		return nil
	}

	for _, t := range b.Tokens() {
		if t == token {
			return p.basket.RefreshBasket(ctx)
		}
	}

	return nil
}

// RTokenPrice unit of account per rtoken
func (p *Protocol) RTokenPrice(ctx context.Context) (decimal.Decimal, error) {
	return p.rtoken.Price(ctx)
}

// FullyCollateralized backing manager holds at least the baskets needed
func (p *Protocol) FullyCollateralized() bool {
	return p.basket.BasketsHeldBy(core.AccountBackingManager).GreaterThanOrEqual(p.rtoken.BasketsNeeded())
}

// TotalAssetValue value of every priced asset the backing manager holds, rtoken excluded
func (p *Protocol) TotalAssetValue(ctx context.Context) decimal.Decimal {
	log := logger.FromContext(ctx)

	var total decimal.Decimal
	for _, asset := range p.registry.Assets() {
		token := asset.Token()
		if token == p.params.RToken {
			continue
		}

		balance := p.ledger.BalanceOf(token, core.AccountBackingManager)
		if !balance.IsPositive() {
			continue
		}

		price, err := asset.Price(ctx)
		if err != nil {
			log.WithError(err).Debugln("skip unpriced", token)
			continue
		}

		total = total.Add(balance.Mul(price))
	}

	return number.Floor(total)
}

// Trades every trade of every trader
func (p *Protocol) Trades() []*core.Trade {
	var trades []*core.Trade
	for _, t := range p.Traders() {
		trades = append(trades, t.Trades()...)
	}

	return trades
}
