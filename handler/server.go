package handler

import (
	"errors"
	"net/http"

	"rtoken/core"
	"rtoken/handler/hc"
	"rtoken/handler/render"
	"rtoken/handler/rest"
	"rtoken/internal/metrics"
	"rtoken/service/auction"
	"rtoken/service/protocol"
	"rtoken/service/rewards"

	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/rs/cors"
)

// Server server
type Server struct {
	protocol *protocol.Protocol
	house    *auction.House
	events   core.EventStore
	pools    map[string]*rewards.Pool
	version  string
}

// New new server function
func New(
	p *protocol.Protocol,
	house *auction.House,
	events core.EventStore,
	pools map[string]*rewards.Pool,
	version string,
) Server {
	return Server{
		protocol: p,
		house:    house,
		events:   events,
		pools:    pools,
		version:  version,
	}
}

// Handler root mux with health check, metrics and the rest api
func (s Server) Handler() http.Handler {
	mux := chi.NewMux()
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(cors.AllowAll().Handler)
	mux.Use(logger.WithRequestID)
	mux.Use(middleware.Logger)
	mux.Use(metrics.Middleware)

	mux.Mount("/hc", hc.Handle(s.version, s.ready))
	mux.Mount("/metrics", metrics.Handler())
	mux.Mount("/api", s.HandleRestAPI())

	return mux
}

// HandleRestAPI handle restful apis
func (s Server) HandleRestAPI() http.Handler {
	r := chi.NewRouter()
	r.Use(render.WrapResponse)
	r.Mount("/", rest.Handle(s.protocol, s.house, s.events, s.pools))

	return r
}

// ready the protocol has a basket to issue against
func (s Server) ready() error {
	var err error
	s.protocol.View(func() {
		if s.protocol.Basket().Basket() == nil {
			err = errors.New("no basket")
		}
	})

	return err
}
