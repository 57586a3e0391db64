package event

import (
	"context"

	"rtoken/core"

	"github.com/fox-one/pkg/store/db"
)

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Event{})

		if err := tx.AutoMigrate(core.Event{}).Error; err != nil {
			return err
		}

		if err := tx.AddIndex("idx_events_created", "created_at").Error; err != nil {
			return err
		}

		return nil
	})
}

type eventStore struct {
	db *db.DB
}

// New new event store
func New(db *db.DB) core.EventStore {
	return &eventStore{
		db: db,
	}
}

func (s *eventStore) Save(_ context.Context, event *core.Event) error {
	return s.db.Update().Create(event).Error
}

func (s *eventStore) List(_ context.Context, fromID int64, limit int) ([]*core.Event, error) {
	var events []*core.Event
	if limit <= 0 {
		limit = 500
	}

	if err := s.db.View().Where("id > ?", fromID).Order("id ASC").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

func (s *eventStore) ListByType(_ context.Context, typ core.EventType, fromID int64, limit int) ([]*core.Event, error) {
	var events []*core.Event
	if limit <= 0 {
		limit = 500
	}

	if err := s.db.View().Where("type = ? AND id > ?", typ, fromID).Order("id ASC").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}
