package registry

import (
	"context"
	"fmt"
	"sync"

	"rtoken/core"

	"github.com/fox-one/pkg/logger"
)

type registry struct {
	mu     sync.RWMutex
	clock  core.Clock
	events core.EventEmitter
	tokens []string
	assets map[string]core.IAsset
}

// Registry asset registry with rollback support
type Registry interface {
	core.IAssetRegistry
	core.Checkpointer
}

// New new asset registry
func New(clock core.Clock, events core.EventEmitter) Registry {
	return &registry{
		clock:  clock,
		events: events,
		assets: map[string]core.IAsset{},
	}
}

func (r *registry) Register(ctx context.Context, asset core.IAsset) error {
	r.mu.Lock()
	token := asset.Token()
	if _, ok := r.assets[token]; ok {
		r.mu.Unlock()
		return fmt.Errorf("register %s: %w", token, core.ErrAssetAlreadyRegistered)
	}

	r.assets[token] = asset
	r.tokens = append(r.tokens, token)
	r.mu.Unlock()

	r.emit(ctx, core.EventAssetRegistered, asset)
	return nil
}

func (r *registry) SwapRegistered(ctx context.Context, asset core.IAsset) error {
	r.mu.Lock()
	token := asset.Token()
	old, ok := r.assets[token]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("swap %s: %w", token, core.ErrAssetNotRegistered)
	}

	r.assets[token] = asset
	r.mu.Unlock()

	r.emit(ctx, core.EventAssetUnregistered, old)
	r.emit(ctx, core.EventAssetRegistered, asset)
	return nil
}

func (r *registry) Unregister(ctx context.Context, token string) error {
	r.mu.Lock()
	asset, ok := r.assets[token]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("unregister %s: %w", token, core.ErrAssetNotRegistered)
	}

	delete(r.assets, token)
	for idx, t := range r.tokens {
		if t == token {
			r.tokens = append(r.tokens[:idx:idx], r.tokens[idx+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.emit(ctx, core.EventAssetUnregistered, asset)
	return nil
}

func (r *registry) IsRegistered(token string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.assets[token]
	return ok
}

func (r *registry) ToAsset(token string) (core.IAsset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	asset, ok := r.assets[token]
	if !ok {
		return nil, fmt.Errorf("%s: %w", token, core.ErrAssetNotRegistered)
	}

	return asset, nil
}

func (r *registry) ToColl(token string) (core.ICollateral, error) {
	asset, err := r.ToAsset(token)
	if err != nil {
		return nil, err
	}

	coll, ok := asset.(core.ICollateral)
	if !ok || !asset.IsCollateral() {
		return nil, fmt.Errorf("%s: %w", token, core.ErrNotCollateral)
	}

	return coll, nil
}

func (r *registry) Tokens() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.tokens...)
}

func (r *registry) Assets() []core.IAsset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	assets := make([]core.IAsset, len(r.tokens))
	for idx, token := range r.tokens {
		assets[idx] = r.assets[token]
	}

	return assets
}

func (r *registry) Refresh(ctx context.Context) []*core.StatusChange {
	log := logger.FromContext(ctx).WithField("service", "registry")

	var changes []*core.StatusChange
	for _, asset := range r.Assets() {
		coll, ok := asset.(core.ICollateral)
		if !ok {
			continue
		}

		from := coll.Status()
		coll.Refresh(ctx)
		if to := coll.Status(); to != from {
			log.Infof("%s %s -> %s", coll.Token(), from, to)
			changes = append(changes, &core.StatusChange{
				Token: coll.Token(),
				From:  from,
				To:    to,
			})
		}
	}

	return changes
}

// Checkpoint snapshot the mapping and every checkpointable asset
func (r *registry) Checkpoint() func() {
	r.mu.RLock()
	tokens := append([]string(nil), r.tokens...)
	assets := make(map[string]core.IAsset, len(r.assets))
	var restores []func()
	for k, v := range r.assets {
		assets[k] = v
		if c, ok := v.(core.Checkpointer); ok {
			restores = append(restores, c.Checkpoint())
		}
	}
	r.mu.RUnlock()

	return func() {
		for _, restore := range restores {
			restore()
		}

		r.mu.Lock()
		r.tokens = tokens
		r.assets = assets
		r.mu.Unlock()
	}
}

func (r *registry) emit(ctx context.Context, typ core.EventType, asset core.IAsset) {
	if r.events == nil {
		return
	}

	r.events.Emit(ctx, core.NewEvent(typ, "registry", &core.AssetEvent{
		Token:        asset.Token(),
		IsCollateral: asset.IsCollateral(),
	}, r.clock.Now()))
}
