package hc

import (
	"net/http"
	"time"

	"rtoken/handler/render"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

// Handle handle hc request, ready may be nil
func Handle(ver string, ready func() error) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NoCache)
	r.Handle("/", handle(ver, ready))
	return r
}

func handle(version string, ready func() error) http.HandlerFunc {
	b := time.Now()
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := time.Since(b).Truncate(time.Millisecond)

		if ready != nil {
			if err := ready(); err != nil {
				render.Error(w, http.StatusServiceUnavailable, -1, err)
				return
			}
		}

		render.JSON(w, render.H{
			"uptime":  uptime.String(),
			"version": version,
		})
	}
}
