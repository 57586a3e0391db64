package rest

import (
	"net/http"

	"rtoken/core"
	"rtoken/handler/render"

	"github.com/spf13/cast"
)

func eventsHandler(events core.EventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		query := r.URL.Query()

		from := cast.ToInt64(query.Get("from"))
		limit := cast.ToInt(query.Get("limit"))

		var (
			list []*core.Event
			err  error
		)
		if typ := query.Get("type"); typ != "" {
			list, err = events.ListByType(ctx, core.EventType(typ), from, limit)
		} else {
			list, err = events.List(ctx, from, limit)
		}

		if err != nil {
			render.Err(w, err)
			return
		}

		render.JSON(w, list)
	}
}
