package event

import (
	"context"
	"sync"

	"rtoken/core"
	"rtoken/internal/metrics"

	"github.com/fox-one/pkg/logger"
)

// Logger log every event
func Logger() Subscriber {
	return SubscriberFunc(func(ctx context.Context, e *core.Event) {
		logger.FromContext(ctx).WithField("emitter", e.Emitter).
			WithField("event", e.Type).
			Infoln(string(e.Payload))
	})
}

// Metrics update prometheus collectors from events
func Metrics() Subscriber {
	return SubscriberFunc(func(ctx context.Context, e *core.Event) {
		switch data := e.Data.(type) {
		case *core.TradeStartedEvent:
			metrics.TradesStarted.WithLabelValues(data.Trader, data.Sell, data.Buy).Inc()
		case *core.TradeSettledEvent:
			metrics.TradesSettled.WithLabelValues(data.Trader, data.Sell, data.Buy).Inc()
		case *core.RewardsClaimedEvent:
			metrics.RewardsClaimed.WithLabelValues(data.Token).Add(data.Amount.InexactFloat64())
		case *core.DefaultStatusChangedEvent:
			metrics.CollateralStatus.WithLabelValues(data.Token).Set(float64(data.New))
		case *core.BasketSetEvent:
			metrics.BasketSwitches.Inc()
		case *core.MeltedEvent:
			metrics.Melted.Add(data.Amount.InexactFloat64())
		case *core.BasketsNeededSetEvent:
			metrics.BasketsNeeded.Set(data.New.InexactFloat64())
		}
	})
}

// Store persist events for indexers
func Store(events core.EventStore) Subscriber {
	return SubscriberFunc(func(ctx context.Context, e *core.Event) {
		if err := events.Save(ctx, e); err != nil {
			logger.FromContext(ctx).WithError(err).Errorln("events.Save", e.Type)
		}
	})
}

// Recorder keep the latest committed events in memory
type Recorder struct {
	mu     sync.RWMutex
	limit  int
	events []*core.Event
}

// NewRecorder keep at most limit events, zero means unlimited
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

func (r *Recorder) Handle(_ context.Context, e *core.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)
	if r.limit > 0 && len(r.events) > r.limit {
		r.events = r.events[len(r.events)-r.limit:]
	}
}

// Events recorded events, optionally filtered by type
func (r *Recorder) Events(types ...core.EventType) []*core.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(types) == 0 {
		return append([]*core.Event(nil), r.events...)
	}

	var out []*core.Event
	for _, e := range r.events {
		for _, typ := range types {
			if e.Type == typ {
				out = append(out, e)
				break
			}
		}
	}

	return out
}

// Reset drop recorded events
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = nil
}
