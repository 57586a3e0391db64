package distributor

import (
	"context"
	"fmt"
	"sync"

	"rtoken/core"
	"rtoken/internal/rmath"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Distributor revenue table with rollback support
type Distributor interface {
	core.IDistributor
	core.Checkpointer
}

type distributor struct {
	ledger core.Ledger
	rsr    string
	rtoken string
	clock  core.Clock
	events core.EventEmitter

	mu     sync.RWMutex
	dests  []string
	shares map[string]core.RevenueShare
}

// New new distributor routing rsr and rtoken through ledger
func New(ledger core.Ledger, params core.Params, clock core.Clock, events core.EventEmitter) Distributor {
	return &distributor{
		ledger: ledger,
		rsr:    params.RSR,
		rtoken: params.RToken,
		clock:  clock,
		events: events,
		shares: map[string]core.RevenueShare{},
	}
}

// ValidateShare check a destination share
func ValidateShare(dest string, share core.RevenueShare) error {
	switch {
	case dest == "":
		return core.ErrOperationForbidden
	case dest == core.DestinationFurnace && share.RSRDist > 0:
		return core.ErrFurnaceGetsRSR
	case dest == core.DestinationStRSR && share.RTokenDist > 0:
		return core.ErrStRSRGetsRToken
	case share.RSRDist > core.MaxDistribution:
		return core.ErrRSRDistributionTooHigh
	case share.RTokenDist > core.MaxDistribution:
		return core.ErrRTokenDistributionTooHigh
	}

	return nil
}

func (d *distributor) SetDistribution(ctx context.Context, dest string, share core.RevenueShare) error {
	if err := ValidateShare(dest, share); err != nil {
		return err
	}

	d.mu.Lock()
	prev, existed := d.shares[dest]
	d.shares[dest] = share
	if totals := d.totals(); totals.RSRTotal == 0 && totals.RTokenTotal == 0 {
		if existed {
			d.shares[dest] = prev
		} else {
			delete(d.shares, dest)
		}
		d.mu.Unlock()
		return core.ErrEmptyDistribution
	}

	if !existed {
		d.dests = append(d.dests, dest)
	}

	if share.IsZero() {
		delete(d.shares, dest)
		d.dests = remove(d.dests, dest)
	}
	d.mu.Unlock()

	logger.FromContext(ctx).WithField("service", "distributor").
		Infof("set distribution %s rtoken %d rsr %d", dest, share.RTokenDist, share.RSRDist)

	if d.events != nil {
		d.events.Emit(ctx, core.NewEvent(core.EventDistributionSet, "distributor", &core.DistributionSetEvent{
			Dest:       dest,
			RTokenDist: share.RTokenDist,
			RSRDist:    share.RSRDist,
		}, d.clock.Now()))
	}

	return nil
}

func (d *distributor) Distribution(dest string) core.RevenueShare {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.shares[dest]
}

func (d *distributor) Destinations() []*core.Destination {
	d.mu.RLock()
	defer d.mu.RUnlock()

	dests := make([]*core.Destination, len(d.dests))
	for idx, dest := range d.dests {
		dests[idx] = &core.Destination{Address: dest, Share: d.shares[dest]}
	}

	return dests
}

func (d *distributor) Totals() core.RevenueTotals {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.totals()
}

// Distribute send floor(amount * share / total) to every destination,
// the rounding remainder stays with the sender
func (d *distributor) Distribute(ctx context.Context, token, from string, amount decimal.Decimal) error {
	if token != d.rsr && token != d.rtoken {
		return core.ErrDistributeToken
	}

	if amount.IsNegative() {
		return core.ErrInvalidAmount
	}

	if amount.IsZero() {
		return nil
	}

	d.mu.RLock()
	totals := d.totals()
	type transfer struct {
		to     string
		amount decimal.Decimal
	}
	var transfers []transfer
	total := totals.RTokenTotal
	if token == d.rsr {
		total = totals.RSRTotal
	}

	if total > 0 {
		for _, dest := range d.dests {
			share := d.shares[dest].RTokenDist
			if token == d.rsr {
				share = d.shares[dest].RSRDist
			}

			if amt := rmath.ShareOf(amount, share, total); amt.IsPositive() {
				transfers = append(transfers, transfer{to: account(dest), amount: amt})
			}
		}
	}
	d.mu.RUnlock()

	if total == 0 {
		return fmt.Errorf("distribute %s: %w", token, core.ErrNothingToDistribute)
	}

	log := logger.FromContext(ctx).WithField("service", "distributor")
	for _, t := range transfers {
		if err := d.ledger.Transfer(token, from, t.to, t.amount); err != nil {
			return err
		}

		log.Debugf("distribute %s %s from %s to %s", t.amount, token, from, t.to)
	}

	return nil
}

func (d *distributor) Checkpoint() func() {
	d.mu.RLock()
	dests := append([]string(nil), d.dests...)
	shares := make(map[string]core.RevenueShare, len(d.shares))
	for k, v := range d.shares {
		shares[k] = v
	}
	d.mu.RUnlock()

	return func() {
		d.mu.Lock()
		d.dests = dests
		d.shares = shares
		d.mu.Unlock()
	}
}

func (d *distributor) totals() core.RevenueTotals {
	var totals core.RevenueTotals
	for _, share := range d.shares {
		totals.RTokenTotal += share.RTokenDist
		totals.RSRTotal += share.RSRDist
	}

	return totals
}

// account ledger account of a destination
func account(dest string) string {
	switch dest {
	case core.DestinationFurnace:
		return core.AccountFurnace
	case core.DestinationStRSR:
		return core.AccountStRSR
	default:
		return dest
	}
}

func remove(list []string, item string) []string {
	out := list[:0:0]
	for _, v := range list {
		if v != item {
			out = append(out, v)
		}
	}

	return out
}
