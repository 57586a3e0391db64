package cmd

import (
	"context"
	"fmt"

	"rtoken/core"
	"rtoken/pkg/number"
	"rtoken/service/auction"
	"rtoken/service/collateral"
	"rtoken/service/event"
	"rtoken/service/ledger"
	"rtoken/service/oracle"
	"rtoken/service/protocol"
	"rtoken/service/rewards"
	eventstore "rtoken/store/event"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

const defaultRTokenMaxTradeVolume = "1000000"

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideConfig() *core.Config {
	return &cfg
}

func provideEventStore(database *db.DB) core.EventStore {
	return eventstore.New(database)
}

func providePriceService() *oracle.PriceService {
	return oracle.New(cfg.PriceOracle)
}

func provideEventBus(store core.EventStore) *event.Bus {
	bus := event.New(event.Logger(), event.Metrics())
	if store != nil {
		bus.Subscribe(event.Store(store))
	}

	return bus
}

// node everything the api server and the keeper share
type node struct {
	protocol *protocol.Protocol
	house    *auction.House
	pools    map[string]*rewards.Pool
	feeds    []string
}

// provideNode assemble the protocol from the config: assets, collateral,
// basket and revenue distribution
func provideNode(ctx context.Context, c *core.Config, prices core.PriceOracle, bus *event.Bus) (*node, error) {
	params, err := c.Protocol.Params()
	if err != nil {
		return nil, fmt.Errorf("protocol params: %w", err)
	}

	mtv := c.Protocol.RTokenMaxTradeVolume
	if mtv == "" {
		mtv = defaultRTokenMaxTradeVolume
	}

	l := ledger.New()
	house := auction.New(l, core.SystemClock)
	p, err := protocol.New(ctx, protocol.Config{
		Params:               params,
		RTokenMaxTradeVolume: number.Decimal(mtv),
		Ledger:               l,
		Auctions:             house,
		Clock:                core.SystemClock,
		Events:               bus,
	})
	if err != nil {
		return nil, err
	}

	n := &node{
		protocol: p,
		house:    house,
		pools:    map[string]*rewards.Pool{},
	}

	for _, a := range c.Assets {
		asset, err := collateral.NewAsset(collateral.AssetConfig{
			Token:          a.Token,
			Feed:           a.Feed,
			MaxTradeVolume: number.Decimal(a.MaxTradeVolume),
			OracleTimeout:  a.OracleTimeout.Duration(),
		}, prices, n.rewardSource(l, a.RewardToken), a.RewardToken, core.SystemClock)
		if err != nil {
			return nil, fmt.Errorf("asset %s: %w", a.Token, err)
		}

		if err := p.Register(ctx, asset); err != nil {
			return nil, fmt.Errorf("register %s: %w", a.Token, err)
		}

		n.addFeeds(a.Feed)
	}

	targets := map[string]string{}
	for _, cc := range c.Collaterals {
		var rate core.RateSource
		if cc.RateFeed != "" {
			rate = oracle.NewRateFeed(prices, cc.RateFeed)
		}

		coll, err := collateral.New(collateral.Config{
			Token:              cc.Token,
			TargetName:         cc.TargetName,
			MaxTradeVolume:     number.Decimal(cc.MaxTradeVolume),
			OracleTimeout:      cc.OracleTimeout.Duration(),
			PegFeed:            cc.PegFeed,
			TargetFeed:         cc.TargetFeed,
			DefaultThreshold:   number.Decimal(cc.DefaultThreshold),
			DelayUntilDefault:  cc.DelayUntilDefault.Duration(),
			RefPerTokThreshold: number.Decimal(cc.RefPerTokThreshold),
		}, prices, rate, n.rewardSource(l, cc.RewardToken), cc.RewardToken, core.SystemClock, bus)
		if err != nil {
			return nil, fmt.Errorf("collateral %s: %w", cc.Token, err)
		}

		if err := p.Register(ctx, coll); err != nil {
			return nil, fmt.Errorf("register %s: %w", cc.Token, err)
		}

		targets[cc.Token] = cc.TargetName
		n.addFeeds(cc.PegFeed, cc.TargetFeed, cc.RateFeed)
	}

	if len(c.Basket.Prime) > 0 {
		entries := make([]*core.PrimeEntry, 0, len(c.Basket.Prime))
		for _, e := range c.Basket.Prime {
			entries = append(entries, &core.PrimeEntry{
				Token:      e.Token,
				TargetName: targets[e.Token],
				TargetAmt:  e.Amount(),
			})
		}

		if err := p.SetPrimeBasket(ctx, entries); err != nil {
			return nil, fmt.Errorf("prime basket: %w", err)
		}

		for _, b := range c.Basket.Backups {
			if err := p.SetBackupConfig(ctx, b); err != nil {
				return nil, fmt.Errorf("backup %s: %w", b.TargetName, err)
			}
		}

		if err := p.SwitchBasket(ctx); err != nil {
			return nil, fmt.Errorf("switch basket: %w", err)
		}
	}

	for _, d := range c.Distribution {
		share := core.RevenueShare{RTokenDist: d.RTokenDist, RSRDist: d.RSRDist}
		if err := p.SetDistribution(ctx, d.Dest, share); err != nil {
			return nil, fmt.Errorf("distribution %s: %w", d.Dest, err)
		}
	}

	return n, nil
}

// rewardSource in process reward pool per reward token, shared by every asset paying it
func (n *node) rewardSource(l *ledger.Memory, token string) core.RewardSource {
	if token == "" {
		return nil
	}

	pool, ok := n.pools[token]
	if !ok {
		pool = rewards.NewPool(l, token)
		n.pools[token] = pool
		n.protocol.Track(pool)
	}

	return pool
}

func (n *node) addFeeds(feeds ...string) {
	for _, feed := range feeds {
		if feed != "" {
			n.feeds = append(n.feeds, feed)
		}
	}
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}

	return d, nil
}
