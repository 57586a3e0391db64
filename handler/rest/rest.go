package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"rtoken/core"
	"rtoken/handler/render"
	"rtoken/service/auction"
	"rtoken/service/protocol"
	"rtoken/service/rewards"

	"github.com/go-chi/chi"
)

// Handle handle rest api request
func Handle(p *protocol.Protocol, house *auction.House, events core.EventStore, pools map[string]*rewards.Pool) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/overview", overviewHandler(p))
	router.Get("/basket", basketHandler(p))
	router.Get("/assets", assetsHandler(p))
	router.Get("/distribution", distributionHandler(p))
	router.Post("/distribution", setDistributionHandler(p))
	router.Get("/trades", tradesHandler(p))
	router.Get("/balances/{account}", balancesHandler(p))
	router.Post("/issue", issueHandler(p))
	router.Post("/stake", stakeHandler(p))

	if house != nil {
		router.Get("/auctions", auctionsHandler(house))
		router.Post("/auctions/{id}/bids", bidHandler(p, house))
	}

	if events != nil {
		router.Get("/events", eventsHandler(events))
	}

	if len(pools) > 0 {
		router.Post("/rewards/{token}", rewardsHandler(p, pools))
	}

	return router
}

func bind(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}

	return nil
}
