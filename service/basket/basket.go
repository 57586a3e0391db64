package basket

import (
	"context"
	"fmt"
	"sync"

	"rtoken/core"
	"rtoken/internal/rmath"
	"rtoken/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Handler basket handler with rollback support
type Handler interface {
	core.IBasketHandler
	core.Checkpointer
}

type handler struct {
	registry core.IAssetRegistry
	ledger   core.Ledger
	clock    core.Clock
	events   core.EventEmitter

	mu      sync.RWMutex
	prime   []*core.PrimeEntry
	targets []string
	backups map[string]*core.BackupConfig
	basket  *core.Basket
	nonce   int64
}

// New new basket handler
func New(registry core.IAssetRegistry, ledger core.Ledger, clock core.Clock, events core.EventEmitter) Handler {
	return &handler{
		registry: registry,
		ledger:   ledger,
		clock:    clock,
		events:   events,
		backups:  map[string]*core.BackupConfig{},
	}
}

func (h *handler) SetPrimeBasket(ctx context.Context, entries []*core.PrimeEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("empty prime basket: %w", core.ErrInvalidBasket)
	}

	prime := make([]*core.PrimeEntry, 0, len(entries))
	seen := map[string]bool{}
	for _, e := range entries {
		if seen[e.Token] {
			return fmt.Errorf("duplicated %s: %w", e.Token, core.ErrInvalidBasket)
		}
		seen[e.Token] = true

		if !e.TargetAmt.IsPositive() {
			return fmt.Errorf("%s target amount %s: %w", e.Token, e.TargetAmt, core.ErrInvalidBasket)
		}

		coll, err := h.registry.ToColl(e.Token)
		if err != nil {
			return err
		}

		if e.TargetName != "" && e.TargetName != coll.TargetName() {
			return fmt.Errorf("%s target %s != %s: %w", e.Token, e.TargetName, coll.TargetName(), core.ErrInvalidBasket)
		}

		prime = append(prime, &core.PrimeEntry{
			Token:      e.Token,
			TargetName: coll.TargetName(),
			TargetAmt:  e.TargetAmt,
		})
	}

	h.mu.Lock()
	h.prime = prime
	h.mu.Unlock()

	logger.FromContext(ctx).WithField("service", "basket").Infoln("prime basket set", len(prime), "entries")
	return nil
}

func (h *handler) SetBackupConfig(ctx context.Context, cfg *core.BackupConfig) error {
	if cfg.TargetName == "" || cfg.Max < 0 {
		return core.ErrInvalidBasket
	}

	for _, token := range cfg.Tokens {
		coll, err := h.registry.ToColl(token)
		if err != nil {
			return err
		}

		if coll.TargetName() != cfg.TargetName {
			return fmt.Errorf("backup %s target %s != %s: %w", token, coll.TargetName(), cfg.TargetName, core.ErrInvalidBasket)
		}
	}

	h.mu.Lock()
	if _, ok := h.backups[cfg.TargetName]; !ok {
		h.targets = append(h.targets, cfg.TargetName)
	}
	h.backups[cfg.TargetName] = &core.BackupConfig{
		TargetName: cfg.TargetName,
		Max:        cfg.Max,
		Tokens:     append([]string(nil), cfg.Tokens...),
	}
	h.mu.Unlock()

	return nil
}

func (h *handler) PrimeBasket() []*core.PrimeEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*core.PrimeEntry, len(h.prime))
	for idx, e := range h.prime {
		entry := *e
		out[idx] = &entry
	}

	return out
}

func (h *handler) BackupConfigs() []*core.BackupConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*core.BackupConfig, 0, len(h.targets))
	for _, target := range h.targets {
		cfg := *h.backups[target]
		cfg.Tokens = append([]string(nil), cfg.Tokens...)
		out = append(out, &cfg)
	}

	return out
}

// RefreshBasket keep prime collateral that is not DISABLED and cover the
// missing target weight of each target name with up to max SOUND backups
func (h *handler) RefreshBasket(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("service", "basket")

	h.mu.Lock()
	if len(h.prime) == 0 {
		h.mu.Unlock()
		return core.ErrBasketUnset
	}

	var (
		targets  []string
		total    = map[string]decimal.Decimal{}
		good     = map[string]decimal.Decimal{}
		entries  []*core.BasketEntry
		disabled bool
	)

	for _, e := range h.prime {
		if _, ok := total[e.TargetName]; !ok {
			targets = append(targets, e.TargetName)
		}
		total[e.TargetName] = total[e.TargetName].Add(e.TargetAmt)

		if h.isGood(e.Token, core.CollateralStatusIffy) {
			good[e.TargetName] = good[e.TargetName].Add(e.TargetAmt)
			entries = add(entries, e.Token, e.TargetAmt)
		}
	}

	for _, target := range targets {
		missing := total[target].Sub(good[target])
		if !missing.IsPositive() {
			continue
		}

		var picked []string
		if cfg, ok := h.backups[target]; ok {
			for _, token := range cfg.Tokens {
				if len(picked) >= cfg.Max {
					break
				}

				if h.isGood(token, core.CollateralStatusSound) {
					picked = append(picked, token)
				}
			}
		}

		if len(picked) == 0 {
			log.Warnln("no sound backup for target", target)
			disabled = true
			continue
		}

		// the last backup takes the rounding remainder so the target stays whole
		each := number.Div(missing, decimal.NewFromInt(int64(len(picked))))
		last := len(picked) - 1
		for _, token := range picked[:last] {
			entries = add(entries, token, each)
		}
		entries = add(entries, picked[last], missing.Sub(each.Mul(decimal.NewFromInt(int64(last)))))
	}

	var prev []*core.BasketEntry
	if h.basket != nil {
		prev = h.basket.Clone().Entries
	}

	h.nonce++
	h.basket = &core.Basket{
		Nonce:     h.nonce,
		Entries:   entries,
		Disabled:  disabled || len(entries) == 0,
		Timestamp: h.clock.Now(),
	}
	next := h.basket.Clone()
	h.mu.Unlock()

	log.Infof("basket %d set with %d entries, disabled %v", next.Nonce, len(next.Entries), next.Disabled)
	if h.events != nil {
		h.events.Emit(ctx, core.NewEvent(core.EventBasketSet, "basket", &core.BasketSetEvent{
			Nonce:    next.Nonce,
			Prev:     prev,
			Next:     next.Entries,
			Disabled: next.Disabled,
		}, next.Timestamp))
	}

	return nil
}

func (h *handler) CheckBasket(ctx context.Context, changes []*core.StatusChange) error {
	h.mu.RLock()
	basket := h.basket
	h.mu.RUnlock()

	if basket == nil {
		return nil
	}

	for _, c := range changes {
		logger.FromContext(ctx).WithField("service", "basket").Debugf("%s %s -> %s", c.Token, c.From, c.To)
	}

	for _, token := range basket.Tokens() {
		if !h.isGood(token, core.CollateralStatusIffy) {
			return h.RefreshBasket(ctx)
		}
	}

	return nil
}

func (h *handler) Basket() *core.Basket {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.basket == nil {
		return nil
	}

	return h.basket.Clone()
}

func (h *handler) State() core.BasketState {
	h.mu.RLock()
	defer h.mu.RUnlock()

	switch {
	case h.basket == nil:
		return core.BasketStateUnset
	case h.basket.Disabled:
		return core.BasketStateDisabled
	default:
		return core.BasketStateSound
	}
}

func (h *handler) Status() core.CollateralStatus {
	basket := h.Basket()
	if basket == nil || basket.Disabled {
		return core.CollateralStatusDisabled
	}

	status := core.CollateralStatusSound
	for _, token := range basket.Tokens() {
		coll, err := h.registry.ToColl(token)
		if err != nil {
			return core.CollateralStatusDisabled
		}

		status = status.Worse(coll.Status())
	}

	return status
}

func (h *handler) Quantity(token string) decimal.Decimal {
	h.mu.RLock()
	basket := h.basket
	h.mu.RUnlock()

	if basket == nil {
		return decimal.Zero
	}

	coll, err := h.registry.ToColl(token)
	if err != nil {
		return decimal.Zero
	}

	return rmath.Quantity(basket.RefAmt(token), coll.RefPerTok())
}

func (h *handler) BasketsHeldBy(account string) decimal.Decimal {
	basket := h.Basket()
	if basket == nil || basket.Disabled || len(basket.Entries) == 0 {
		return decimal.Zero
	}

	var held decimal.Decimal
	for idx, token := range basket.Tokens() {
		if !h.isGood(token, core.CollateralStatusIffy) {
			return decimal.Zero
		}

		baskets := rmath.BasketsHeld(h.ledger.BalanceOf(token, account), h.Quantity(token))
		if idx == 0 || baskets.LessThan(held) {
			held = baskets
		}
	}

	return held
}

func (h *handler) Price(ctx context.Context) (decimal.Decimal, error) {
	basket := h.Basket()
	if basket == nil {
		return decimal.Zero, core.ErrBasketUnset
	}

	var sum decimal.Decimal
	for _, token := range basket.Tokens() {
		asset, err := h.registry.ToAsset(token)
		if err != nil {
			return decimal.Zero, err
		}

		price, err := asset.Price(ctx)
		if err != nil {
			return decimal.Zero, err
		}

		sum = sum.Add(h.Quantity(token).Mul(price))
	}

	return number.Floor(sum), nil
}

func (h *handler) Checkpoint() func() {
	h.mu.RLock()
	prime := h.prime
	targets := append([]string(nil), h.targets...)
	backups := make(map[string]*core.BackupConfig, len(h.backups))
	for k, v := range h.backups {
		backups[k] = v
	}
	var basket *core.Basket
	if h.basket != nil {
		basket = h.basket.Clone()
	}
	nonce := h.nonce
	h.mu.RUnlock()

	return func() {
		h.mu.Lock()
		h.prime, h.targets, h.backups, h.basket, h.nonce = prime, targets, backups, basket, nonce
		h.mu.Unlock()
	}
}

// isGood registered collateral whose status is at most worst
func (h *handler) isGood(token string, worst core.CollateralStatus) bool {
	coll, err := h.registry.ToColl(token)
	if err != nil {
		return false
	}

	return coll.Status() <= worst
}

// add merge refAmt into entries, a backup may also be a prime member
func add(entries []*core.BasketEntry, token string, refAmt decimal.Decimal) []*core.BasketEntry {
	for _, e := range entries {
		if e.Token == token {
			e.RefAmt = e.RefAmt.Add(refAmt)
			return entries
		}
	}

	return append(entries, &core.BasketEntry{Token: token, RefAmt: refAmt})
}
