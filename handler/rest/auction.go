package rest

import (
	"context"
	"net/http"

	"rtoken/handler/render"
	"rtoken/service/auction"
	"rtoken/service/protocol"

	"github.com/go-chi/chi"
	"github.com/spf13/cast"
)

func auctionsHandler(house *auction.House) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		open := cast.ToBool(r.URL.Query().Get("open"))

		auctions := make([]*auction.Auction, 0)
		for _, a := range house.Auctions() {
			if open && a.Settled {
				continue
			}

			auctions = append(auctions, a)
		}

		render.JSON(w, auctions)
	}
}

func bidHandler(p *protocol.Protocol, house *auction.House) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := cast.ToInt64E(chi.URLParam(r, "id"))
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		var bid auction.Bid
		if err := bind(r, &bid); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := p.Atomic(r.Context(), func(ctx context.Context) error {
			return house.PlaceBid(ctx, id, &bid)
		}); err != nil {
			render.Err(w, err)
			return
		}

		a, err := house.Auction(id)
		if err != nil {
			render.Err(w, err)
			return
		}

		render.JSON(w, a)
	}
}
