package protocol

import (
	"context"
	"fmt"
	"sync"

	"rtoken/core"
	"rtoken/service/basket"
	"rtoken/service/distributor"
	"rtoken/service/event"
	"rtoken/service/furnace"
	"rtoken/service/registry"
	"rtoken/service/rtoken"
	"rtoken/service/strsr"
	"rtoken/service/trading"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Ledger balances with rollback support
type Ledger interface {
	core.Ledger
	core.Checkpointer
}

// Config dependencies of the protocol
type Config struct {
	Params core.Params
	// RTokenMaxTradeVolume max value of rtoken sold in one auction
	RTokenMaxTradeVolume decimal.Decimal
	Ledger               Ledger
	Auctions             core.AuctionHouse
	Clock                core.Clock
	Events               *event.Bus
}

// Protocol one rtoken instance, every state changing call is all or nothing
type Protocol struct {
	params core.Params
	clock  core.Clock
	ledger Ledger
	events *event.Bus

	registry     registry.Registry
	basket       basket.Handler
	distributor  distributor.Distributor
	rtoken       rtoken.RToken
	auctions     core.AuctionHouse
	backing      *trading.BackingManager
	rsrTrader    *trading.RevenueTrader
	rTokenTrader *trading.RevenueTrader
	furnace      *furnace.Furnace
	stRSR        *strsr.StRSR

	mu            sync.Mutex
	checkpointers []core.Checkpointer
}

// New assemble the components, the rtoken itself is registered as an asset
func New(ctx context.Context, cfg Config) (*Protocol, error) {
	if err := cfg.Params.Validate(); err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}

	if !cfg.RTokenMaxTradeVolume.IsPositive() {
		return nil, fmt.Errorf("rtoken max trade volume: %w", core.ErrInvalidAmount)
	}

	if cfg.Events == nil {
		cfg.Events = event.New()
	}

	p := &Protocol{
		params:   cfg.Params,
		clock:    cfg.Clock,
		ledger:   cfg.Ledger,
		events:   cfg.Events,
		auctions: cfg.Auctions,
	}

	p.registry = registry.New(cfg.Clock, cfg.Events)
	p.basket = basket.New(p.registry, cfg.Ledger, cfg.Clock, cfg.Events)
	p.distributor = distributor.New(cfg.Ledger, cfg.Params, cfg.Clock, cfg.Events)
	p.rtoken = rtoken.New(cfg.Params, cfg.RTokenMaxTradeVolume, cfg.Ledger, p.basket, cfg.Clock, cfg.Events)
	p.furnace = furnace.New(cfg.Params, p.rtoken, cfg.Ledger, cfg.Clock, cfg.Events)
	p.stRSR = strsr.New(cfg.Params, cfg.Ledger, cfg.Clock, cfg.Events)

	tc := trading.Config{
		Params:   cfg.Params,
		Ledger:   cfg.Ledger,
		Registry: p.registry,
		Auctions: cfg.Auctions,
		Clock:    cfg.Clock,
		Events:   cfg.Events,
	}
	p.rsrTrader = trading.NewRevenueTrader(tc, core.AccountRSRTrader, cfg.Params.RSR, core.AccountBackingManager, p.distributor)
	p.rTokenTrader = trading.NewRevenueTrader(tc, core.AccountRTokenTrader, cfg.Params.RToken, core.AccountBackingManager, p.distributor)
	p.backing = trading.NewBackingManager(tc, p.basket, p.rtoken, p.distributor, p.stRSR, core.AccountRSRTrader, core.AccountRTokenTrader)

	p.checkpointers = []core.Checkpointer{
		cfg.Ledger,
		p.registry,
		p.basket,
		p.distributor,
		p.rtoken,
		p.backing,
		p.rsrTrader,
		p.rTokenTrader,
		p.furnace,
		p.stRSR,
		cfg.Events,
	}
	if c, ok := cfg.Auctions.(core.Checkpointer); ok {
		p.checkpointers = append(p.checkpointers, c)
	}

	if err := p.atomic(ctx, func(ctx context.Context) error {
		return p.registry.Register(ctx, p.rtoken)
	}); err != nil {
		return nil, err
	}

	return p, nil
}

// Track roll back c together with the protocol, eg an in process reward source
func (p *Protocol) Track(c core.Checkpointer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.checkpointers = append(p.checkpointers, c)
}

// atomic run fn, restoring every component when it fails and
// publishing the buffered events when it succeeds
func (p *Protocol) atomic(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	restores := make([]func(), len(p.checkpointers))
	for idx, c := range p.checkpointers {
		restores[idx] = c.Checkpoint()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}

		if err != nil {
			for idx := len(restores) - 1; idx >= 0; idx-- {
				restores[idx]()
			}

			logger.FromContext(ctx).WithError(err).Warnln("rolled back")
			return
		}

		p.events.Flush(ctx)
	}()

	return fn(ctx)
}

// Atomic run fn as one all or nothing step, eg a bid on an open auction
func (p *Protocol) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return p.atomic(ctx, fn)
}

// View run fn while no state changing call is in flight
func (p *Protocol) View(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fn()
}

func (p *Protocol) Params() core.Params                     { return p.params }
func (p *Protocol) Ledger() core.Ledger                     { return p.ledger }
func (p *Protocol) Registry() core.IAssetRegistry           { return p.registry }
func (p *Protocol) Basket() core.IBasketHandler             { return p.basket }
func (p *Protocol) Distributor() core.IDistributor          { return p.distributor }
func (p *Protocol) RToken() core.IRToken                    { return p.rtoken }
func (p *Protocol) Auctions() core.AuctionHouse             { return p.auctions }
func (p *Protocol) BackingManager() *trading.BackingManager { return p.backing }
func (p *Protocol) RSRTrader() *trading.RevenueTrader       { return p.rsrTrader }
func (p *Protocol) RTokenTrader() *trading.RevenueTrader    { return p.rTokenTrader }
func (p *Protocol) Furnace() *furnace.Furnace               { return p.furnace }
func (p *Protocol) StRSR() *strsr.StRSR                     { return p.stRSR }
func (p *Protocol) Events() *event.Bus                      { return p.events }

// Traders backing manager first, then the revenue traders
func (p *Protocol) Traders() []core.ITrader {
	return []core.ITrader{p.backing, p.rsrTrader, p.rTokenTrader}
}
