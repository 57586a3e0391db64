package trading

import (
	"context"
	"fmt"

	"rtoken/core"
	"rtoken/internal/metrics"

	"github.com/fox-one/pkg/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"
)

// Trader trading engine component with rollback support
type Trader interface {
	core.ITrader
	core.Checkpointer
}

// Config shared dependencies of every trader
type Config struct {
	Params   core.Params
	Ledger   core.Ledger
	Registry core.IAssetRegistry
	Auctions core.AuctionHouse
	Clock    core.Clock
	Events   core.EventEmitter
}

type trader struct {
	Config
	account string
	book    *Book
}

func newTrader(cfg Config, account string) trader {
	return trader{
		Config:  cfg,
		account: account,
		book:    NewBook(account),
	}
}

func (t *trader) Account() string {
	return t.account
}

func (t *trader) Trades() []*core.Trade {
	return t.book.All()
}

func (t *trader) OpenTrade(sell string) (*core.Trade, bool) {
	return t.book.Open(sell)
}

func (t *trader) OpenTradesCount() int {
	return t.book.Count()
}

func (t *trader) Checkpoint() func() {
	return t.book.Checkpoint()
}

func (t *trader) emit(ctx context.Context, typ core.EventType, data interface{}) {
	if t.Events != nil {
		t.Events.Emit(ctx, core.NewEvent(typ, t.account, data, t.Clock.Now()))
	}
}

// openTrade hand sellAmount of sell to the auction house
func (t *trader) openTrade(ctx context.Context, sell, buy string, sellAmount, minBuy decimal.Decimal) error {
	if _, ok := t.book.Open(sell); ok {
		return fmt.Errorf("%s selling %s: %w", t.account, sell, core.ErrTradeAlreadyOpen)
	}

	auctionID, endTime, err := t.Auctions.Open(ctx, &core.AuctionRequest{
		Seller:       t.account,
		Sell:         sell,
		Buy:          buy,
		SellAmount:   sellAmount,
		MinBuyAmount: minBuy,
		Duration:     t.Params.AuctionLength,
	})
	if err != nil {
		return fmt.Errorf("open auction: %w", err)
	}

	trade := &core.Trade{
		Sell:         sell,
		Buy:          buy,
		SellAmount:   sellAmount,
		MinBuyAmount: minBuy,
		AuctionID:    auctionID,
		StartTime:    t.Clock.Now(),
		EndTime:      endTime,
	}

	if err := t.book.Add(trade); err != nil {
		return err
	}

	logger.FromContext(ctx).WithField("trader", t.account).
		Infof("trade %d started, sell %s %s for at least %s %s", trade.Index, sellAmount, sell, minBuy, buy)

	t.emit(ctx, core.EventTradeStarted, &core.TradeStartedEvent{
		Trader:       t.account,
		Index:        trade.Index,
		TradeID:      trade.ID,
		AuctionID:    trade.AuctionID,
		EndTime:      trade.EndTime,
		Sell:         sell,
		Buy:          buy,
		SellAmount:   sellAmount,
		MinBuyAmount: minBuy,
	})

	return nil
}

// belowMinimum whether the clearing price is worse than the trade's minimum,
// bought / sold < min_buy / sell_amount
func belowMinimum(trade *core.Trade, result *core.AuctionResult) bool {
	if result.SoldAmount.Sign() <= 0 {
		return false
	}

	return result.BoughtAmount.Mul(trade.SellAmount).LessThan(trade.MinBuyAmount.Mul(result.SoldAmount))
}

// SettleTrades settle every open trade past its end time
func (t *trader) SettleTrades(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("trader", t.account)
	now := t.Clock.Now()

	for _, trade := range t.book.OpenTrades() {
		if now.Before(trade.EndTime) {
			continue
		}

		result, err := t.Auctions.Settle(ctx, trade.AuctionID)
		if err != nil {
			return fmt.Errorf("settle trade %d: %w", trade.Index, err)
		}

		if belowMinimum(trade, result) {
			if t.Params.SettlementPolicy != core.SettlementPolicyAccept {
				return fmt.Errorf("settle trade %d: %w", trade.Index, core.ErrAuctionBelowMinimum)
			}

			log.Warnf("trade %d cleared below minimum, bought %s for %s", trade.Index, result.BoughtAmount, result.SoldAmount)
		}

		if _, err := t.book.Close(trade.Sell, result); err != nil {
			return err
		}

		log.Infof("trade %d settled, sold %s %s bought %s %s", trade.Index, result.SoldAmount, trade.Sell, result.BoughtAmount, trade.Buy)

		t.emit(ctx, core.EventTradeSettled, &core.TradeSettledEvent{
			Trader:       t.account,
			Index:        trade.Index,
			AuctionID:    trade.AuctionID,
			Sell:         trade.Sell,
			Buy:          trade.Buy,
			SoldAmount:   result.SoldAmount,
			BoughtAmount: result.BoughtAmount,
		})
	}

	return nil
}

// claimRewards run every asset's claim hook for this trader's account,
// a failing hook is skipped without stopping the others
func (t *trader) claimRewards(ctx context.Context) []*core.RewardClaim {
	log := logger.FromContext(ctx).WithField("trader", t.account)

	var (
		claims []*core.RewardClaim
		merr   *multierror.Error
	)

	for _, asset := range t.Registry.Assets() {
		rewardToken := asset.RewardToken()
		if rewardToken == "" {
			continue
		}

		amount, err := asset.ClaimRewards(ctx, t.account)
		claim := &core.RewardClaim{
			Asset:       asset.Token(),
			RewardToken: rewardToken,
			Amount:      amount,
			Err:         err,
		}
		claims = append(claims, claim)

		if err != nil {
			claim.Amount = decimal.Zero
			merr = multierror.Append(merr, fmt.Errorf("claim %s: %w", asset.Token(), err))
			metrics.ClaimFailures.WithLabelValues(asset.Token()).Inc()
			continue
		}

		t.emit(ctx, core.EventRewardsClaimed, &core.RewardsClaimedEvent{
			Asset:  asset.Token(),
			Holder: t.account,
			Token:  rewardToken,
			Amount: amount,
		})
	}

	if err := merr.ErrorOrNil(); err != nil {
		log.WithError(err).Warnln("some reward claims failed")
	}

	return claims
}
