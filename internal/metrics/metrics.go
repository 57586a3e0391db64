// Package metrics provides Prometheus instrumentation for the rtoken node.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TradesStarted counts opened auctions by trader.
	TradesStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rtoken_trades_started_total",
		Help: "Total number of auctions opened",
	}, []string{"trader", "sell", "buy"})

	// TradesSettled counts settled auctions by trader.
	TradesSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rtoken_trades_settled_total",
		Help: "Total number of auctions settled",
	}, []string{"trader", "sell", "buy"})

	// RewardsClaimed cumulative claimed reward amount by token.
	RewardsClaimed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rtoken_rewards_claimed_total",
		Help: "Cumulative reward tokens claimed",
	}, []string{"token"})

	// ClaimFailures counts reward claim hooks that failed.
	ClaimFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rtoken_reward_claim_failures_total",
		Help: "Reward claims that failed and were skipped",
	}, []string{"asset"})

	// CollateralStatus current status per collateral, 0 sound 1 iffy 2 disabled.
	CollateralStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rtoken_collateral_status",
		Help: "Collateral status, 0 sound 1 iffy 2 disabled",
	}, []string{"token"})

	// BasketSwitches counts basket refreshes.
	BasketSwitches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rtoken_basket_switches_total",
		Help: "Number of basket switches",
	})

	// Melted cumulative rtoken melted by the furnace.
	Melted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rtoken_melted_total",
		Help: "Cumulative rtoken melted",
	})

	// BasketsNeeded baskets backing the supply.
	BasketsNeeded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rtoken_baskets_needed",
		Help: "Basket units the rtoken supply is redeemable for",
	})

	// BasketsHeld baskets held by the backing manager.
	BasketsHeld = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rtoken_baskets_held",
		Help: "Basket units held by the backing manager",
	})

	// TotalAssetValue unit of account value of every registered asset held by the protocol.
	TotalAssetValue = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rtoken_total_asset_value",
		Help: "Unit of account value of protocol holdings",
	})

	// KeeperRuns counts keeper ticks by result.
	KeeperRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rtoken_keeper_runs_total",
		Help: "Keeper ticks by result",
	}, []string{"result"})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rtoken_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rtoken_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
