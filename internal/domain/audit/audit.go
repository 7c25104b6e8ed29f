package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"hrdesk/internal/domain/records"
)

const DefaultRetain = 1000

type Event struct {
	ID         string    `json:"id"`
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	RequestID  string    `json:"requestId,omitempty"`
	At         time.Time `json:"at"`
}

type Filter struct {
	Action     string
	EntityType string
	Actor      string
}

func (f Filter) match(evt Event) bool {
	if f.Action != "" && evt.Action != f.Action {
		return false
	}
	if f.EntityType != "" && evt.EntityType != f.EntityType {
		return false
	}
	if f.Actor != "" && evt.Actor != f.Actor {
		return false
	}
	return true
}

type Service struct {
	Store  *records.Store
	Retain int
}

func New(store *records.Store, retain int) *Service {
	if retain <= 0 {
		retain = DefaultRetain
	}
	return &Service{Store: store, Retain: retain}
}

// Record appends an event and drops the oldest ones past Retain. A corrupt
// log is started over.
func (s *Service) Record(ctx context.Context, actor, action, entityType, entityID, requestID string) error {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()

	events, err := records.Get[Event](ctx, s.Store, records.AuditLog)
	if err != nil && !errors.Is(err, records.ErrCorrupt) {
		return err
	}
	events = append(events, Event{
		ID:         uuid.NewString(),
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  requestID,
		At:         s.Store.Now().UTC(),
	})
	if over := len(events) - s.Retain; over > 0 {
		events = events[over:]
	}
	return records.Set(ctx, s.Store, records.AuditLog, events)
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	events, err := records.Get[Event](ctx, s.Store, records.AuditLog)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, evt := range events {
		if filter.match(evt) {
			total++
		}
	}
	return total, nil
}

// List returns matching events newest first.
func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Event, error) {
	events, err := records.Get[Event](ctx, s.Store, records.AuditLog)
	if err != nil {
		return []Event{}, err
	}
	out := []Event{}
	skipped := 0
	for i := len(events) - 1; i >= 0; i-- {
		evt := events[i]
		if !filter.match(evt) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, evt)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
