package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// EventType event kind
type EventType string

const (
	EventDistributionSet      EventType = "DistributionSet"
	EventBasketSet            EventType = "BasketSet"
	EventTradeStarted         EventType = "TradeStarted"
	EventTradeSettled         EventType = "TradeSettled"
	EventRewardsClaimed       EventType = "RewardsClaimed"
	EventDefaultStatusChanged EventType = "DefaultStatusChanged"
	EventAssetRegistered      EventType = "AssetRegistered"
	EventAssetUnregistered    EventType = "AssetUnregistered"
	EventBasketsNeededSet     EventType = "BasketsNeededSet"
	EventMelted               EventType = "Melted"
	EventStakeCredited        EventType = "StakeCredited"
)

// Event observable protocol event
type Event struct {
	ID        int64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	Type      EventType      `sql:"size:32;index:idx_events_type" json:"type"`
	Emitter   string         `sql:"size:64" json:"emitter"`
	Payload   types.JSONText `sql:"type:text" json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`

	Data interface{} `sql:"-" json:"-"`
}

// NewEvent build an event carrying data
func NewEvent(typ EventType, emitter string, data interface{}, at time.Time) *Event {
	payload, _ := json.Marshal(data)
	return &Event{
		Type:      typ,
		Emitter:   emitter,
		Payload:   payload,
		CreatedAt: at,
		Data:      data,
	}
}

// DistributionSetEvent destination share updated
type DistributionSetEvent struct {
	Dest       string `json:"dest"`
	RTokenDist uint64 `json:"rtoken_dist"`
	RSRDist    uint64 `json:"rsr_dist"`
}

// BasketSetEvent basket switched
type BasketSetEvent struct {
	Nonce    int64          `json:"nonce"`
	Prev     []*BasketEntry `json:"prev"`
	Next     []*BasketEntry `json:"next"`
	Disabled bool           `json:"disabled"`
}

// TradeStartedEvent auction opened
type TradeStartedEvent struct {
	Trader       string          `json:"trader"`
	Index        int64           `json:"index"`
	TradeID      string          `json:"trade_id"`
	AuctionID    int64           `json:"auction_id"`
	EndTime      time.Time       `json:"end_time"`
	Sell         string          `json:"sell"`
	Buy          string          `json:"buy"`
	SellAmount   decimal.Decimal `json:"sell_amount"`
	MinBuyAmount decimal.Decimal `json:"min_buy_amount"`
}

// TradeSettledEvent auction cleared
type TradeSettledEvent struct {
	Trader       string          `json:"trader"`
	Index        int64           `json:"index"`
	AuctionID    int64           `json:"auction_id"`
	Sell         string          `json:"sell"`
	Buy          string          `json:"buy"`
	SoldAmount   decimal.Decimal `json:"sold_amount"`
	BoughtAmount decimal.Decimal `json:"bought_amount"`
}

// RewardsClaimedEvent claim hook result
type RewardsClaimedEvent struct {
	// Asset registered asset whose claim hook paid out
	Asset string `json:"asset"`
	// Holder account the rewards were claimed for
	Holder string          `json:"holder"`
	Token  string          `json:"token"`
	Amount decimal.Decimal `json:"amount"`
}

// DefaultStatusChangedEvent collateral status moved
type DefaultStatusChangedEvent struct {
	Token string           `json:"token"`
	Old   CollateralStatus `json:"old"`
	New   CollateralStatus `json:"new"`
}

// AssetEvent asset registered or unregistered
type AssetEvent struct {
	Token        string `json:"token"`
	IsCollateral bool   `json:"is_collateral"`
}

// BasketsNeededSetEvent rtoken backing target changed
type BasketsNeededSetEvent struct {
	Old decimal.Decimal `json:"old"`
	New decimal.Decimal `json:"new"`
}

// MeltedEvent furnace burnt rtoken
type MeltedEvent struct {
	Amount decimal.Decimal `json:"amount"`
}

// StakeCreditedEvent rsr rewards credited to stakers
type StakeCreditedEvent struct {
	Amount       decimal.Decimal `json:"amount"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
}

// EventEmitter receives events from components
type EventEmitter interface {
	Emit(ctx context.Context, event *Event)
}

// EventStore event persistence
type EventStore interface {
	Save(ctx context.Context, event *Event) error
	List(ctx context.Context, fromID int64, limit int) ([]*Event, error)
	ListByType(ctx context.Context, typ EventType, fromID int64, limit int) ([]*Event, error)
}
