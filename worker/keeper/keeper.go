package keeper

import (
	"context"

	"rtoken/core"
	"rtoken/internal/metrics"
	"rtoken/service/protocol"
	"rtoken/worker"

	"github.com/fox-one/pkg/logger"
)

// Prefetcher warms the price cache before a tick
type Prefetcher interface {
	Prefetch(ctx context.Context, feeds []string) error
}

// Config keeper config
type Config struct {
	// Spec cron spec, defaults to every minute
	Spec  string
	Feeds []string
}

// Keeper refresh collateral, claim rewards and run auctions on a schedule
type Keeper struct {
	cfg      Config
	protocol *protocol.Protocol
	prices   Prefetcher
}

// New new keeper, prices may be nil
func New(cfg Config, p *protocol.Protocol, prices Prefetcher) *Keeper {
	if cfg.Spec == "" {
		cfg.Spec = "@every 1m"
	}

	return &Keeper{
		cfg:      cfg,
		protocol: p,
		prices:   prices,
	}
}

// Run tick until ctx is done
func (k *Keeper) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "keeper")

	job, err := worker.NewBaseJob(k.cfg.Spec, func() error {
		return k.Tick(ctx)
	})
	if err != nil {
		return err
	}

	job.OnError = func(err error) {
		log.WithError(err).Errorln("tick")
	}

	log.Infoln("keeper started", k.cfg.Spec)
	return worker.RunJob(ctx, job)
}

// Tick one keeper round
func (k *Keeper) Tick(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "keeper")

	if k.prices != nil && len(k.cfg.Feeds) > 0 {
		if err := k.prices.Prefetch(ctx, k.cfg.Feeds); err != nil {
			log.WithError(err).Warnln("prefetch prices")
		}
	}

	claims, err := k.protocol.ClaimRewards(ctx)
	if err != nil {
		metrics.KeeperRuns.WithLabelValues("claim_failed").Inc()
		log.WithError(err).Errorln("claim rewards")
	}

	for _, c := range claims {
		if !c.Claimed() {
			log.WithError(c.Err).Debugln("claim skipped", c.Asset)
		}
	}

	if err := k.protocol.RunAuctionsForAllTraders(ctx); err != nil {
		metrics.KeeperRuns.WithLabelValues("failed").Inc()
		return err
	}

	k.observe(ctx)
	metrics.KeeperRuns.WithLabelValues("ok").Inc()
	return nil
}

func (k *Keeper) observe(ctx context.Context) {
	p := k.protocol

	metrics.BasketsNeeded.Set(p.RToken().BasketsNeeded().InexactFloat64())
	metrics.BasketsHeld.Set(p.Basket().BasketsHeldBy(core.AccountBackingManager).InexactFloat64())
	metrics.TotalAssetValue.Set(p.TotalAssetValue(ctx).InexactFloat64())
}
