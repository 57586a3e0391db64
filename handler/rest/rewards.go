package rest

import (
	"context"
	"errors"
	"net/http"

	"rtoken/handler/render"
	"rtoken/service/protocol"
	"rtoken/service/rewards"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

type rewardsRequest struct {
	Holder string          `json:"holder"`
	Amount decimal.Decimal `json:"amount"`
}

// rewardsHandler accrue claimable rewards on an in process reward source
func rewardsHandler(p *protocol.Protocol, pools map[string]*rewards.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pool, ok := pools[chi.URLParam(r, "token")]
		if !ok {
			render.NotFoundRequest(w, errors.New("reward token not found"))
			return
		}

		var body rewardsRequest
		if err := bind(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		if body.Holder == "" || !body.Amount.IsPositive() {
			render.BadRequest(w, errors.New("holder and a positive amount are required"))
			return
		}

		if err := p.Atomic(r.Context(), func(ctx context.Context) error {
			pool.SetRewards(body.Holder, body.Amount)
			return nil
		}); err != nil {
			render.Err(w, err)
			return
		}

		render.JSON(w, render.H{"token": pool.Token(), "holder": body.Holder, "amount": body.Amount})
	}
}
