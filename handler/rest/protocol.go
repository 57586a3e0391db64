package rest

import (
	"context"
	"net/http"

	"rtoken/core"
	"rtoken/handler/render"
	"rtoken/handler/views"
	"rtoken/service/protocol"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

func overviewHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var view views.Overview
		p.View(func() {
			view = views.Overview{
				RToken:              p.Params().RToken,
				RSR:                 p.Params().RSR,
				TotalSupply:         p.RToken().TotalSupply(),
				BasketsNeeded:       p.RToken().BasketsNeeded(),
				BasketsHeld:         p.Basket().BasketsHeldBy(core.AccountBackingManager),
				FullyCollateralized: p.FullyCollateralized(),
				TotalAssetValue:     p.TotalAssetValue(ctx),
				BasketState:         p.Basket().State(),
				BasketStatus:        p.Basket().Status(),
				StRSRExchangeRate:   p.StRSR().ExchangeRate(),
			}

			if price, err := p.RTokenPrice(ctx); err == nil {
				view.Price = price
			}
		})

		render.JSON(w, view)
	}
}

func basketHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var view views.Basket
		p.View(func() { view = basketView(p) })
		render.JSON(w, view)
	}
}

func basketView(p *protocol.Protocol) views.Basket {
	view := views.Basket{
		State:   p.Basket().State(),
		Prime:   p.Basket().PrimeBasket(),
		Backups: p.Basket().BackupConfigs(),
	}

	if b := p.Basket().Basket(); b != nil {
		view.Nonce = b.Nonce
		view.Timestamp = b.Timestamp
		for _, e := range b.Entries {
			view.Entries = append(view.Entries, &views.BasketEntry{
				Token:    e.Token,
				RefAmt:   e.RefAmt,
				Quantity: p.Basket().Quantity(e.Token),
			})
		}
	}

	return view
}

func assetsHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var out []*views.Asset
		p.View(func() { out = assetViews(ctx, p.Registry().Assets()) })
		render.JSON(w, out)
	}
}

func assetViews(ctx context.Context, assets []core.IAsset) []*views.Asset {
	out := make([]*views.Asset, 0, len(assets))
	for _, asset := range assets {
		view := &views.Asset{
			Token:          asset.Token(),
			IsCollateral:   asset.IsCollateral(),
			MaxTradeVolume: asset.MaxTradeVolume(),
			RewardToken:    asset.RewardToken(),
		}

		if price, err := asset.Price(ctx); err != nil {
			view.PriceError = err.Error()
		} else {
			view.Price = price
		}

		if coll, ok := asset.(core.ICollateral); ok {
			status := coll.Status()
			view.Status = &status
			view.TargetName = coll.TargetName()
			view.RefPerTok = coll.RefPerTok()
			view.ActualRef = coll.ActualRefPerTok()
		}

		out = append(out, view)
	}

	return out
}

func distributionHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var view views.Distribution
		p.View(func() { view = distributionView(p) })
		render.JSON(w, view)
	}
}

func distributionView(p *protocol.Protocol) views.Distribution {
	return views.Distribution{
		Destinations: p.Distributor().Destinations(),
		Totals:       p.Distributor().Totals(),
	}
}

func setDistributionHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body core.Destination
		if err := bind(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := p.SetDistribution(r.Context(), body.Address, body.Share); err != nil {
			render.Err(w, err)
			return
		}

		var view views.Distribution
		p.View(func() { view = distributionView(p) })
		render.JSON(w, view)
	}
}

func tradesHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trader := r.URL.Query().Get("trader")

		trades := make([]*core.Trade, 0)
		p.View(func() {
			for _, t := range p.Trades() {
				if trader == "" || t.Trader == trader {
					trades = append(trades, t)
				}
			}
		})

		render.JSON(w, trades)
	}
}

func balancesHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account := chi.URLParam(r, "account")

		balances := map[string]decimal.Decimal{}
		p.View(func() {
			tokens := append(p.Registry().Tokens(), p.Params().RSR, p.Params().RToken)
			for _, token := range tokens {
				if balance := p.Ledger().BalanceOf(token, account); !balance.IsZero() {
					balances[token] = balance
				}
			}
		})

		render.JSON(w, balances)
	}
}

type amountRequest struct {
	Account string          `json:"account"`
	Amount  decimal.Decimal `json:"amount"`
}

func issueHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body amountRequest
		if err := bind(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := p.Issue(r.Context(), body.Account, body.Amount); err != nil {
			render.Err(w, err)
			return
		}

		var supply decimal.Decimal
		p.View(func() { supply = p.RToken().TotalSupply() })
		render.JSON(w, render.H{"total_supply": supply})
	}
}

func stakeHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body amountRequest
		if err := bind(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		shares, err := p.Stake(r.Context(), body.Account, body.Amount)
		if err != nil {
			render.Err(w, err)
			return
		}

		render.JSON(w, render.H{"shares": shares})
	}
}
