// Package records persists named record collections as JSON arrays in a
// kv.Backend and layers the employee helpers on top.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"hrdesk/internal/platform/kv"
)

var (
	ErrCorrupt  = errors.New("records: collection is corrupt")
	ErrNotFound = errors.New("records: not found")
)

type Store struct {
	backend kv.Backend
	log     *slog.Logger
	now     func() time.Time

	idMu   sync.Mutex
	lastID int64

	writeMu sync.Mutex
}

type lockKey struct{}

type Option func(*Store)

func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(backend kv.Backend, opts ...Option) *Store {
	s := &Store{backend: backend, log: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Backend() kv.Backend {
	return s.backend
}

func (s *Store) Now() time.Time {
	return s.now()
}

// Lock serializes read-modify-write cycles on the store. The returned context
// marks the lock as held, so nested calls made with it do not lock again.
// Every mutation that reads a collection before writing it must run under
// Lock, or concurrent callers lose each other's updates.
func (s *Store) Lock(ctx context.Context) (context.Context, func()) {
	if held, _ := ctx.Value(lockKey{}).(*Store); held == s {
		return ctx, func() {}
	}
	s.writeMu.Lock()
	return context.WithValue(ctx, lockKey{}, s), s.writeMu.Unlock
}

// Get reads a collection. An absent key is an empty collection. A corrupt
// value also yields an empty (non-nil) slice, paired with an error wrapping
// ErrCorrupt so callers can tell the two apart.
func Get[T any](ctx context.Context, s *Store, name string) ([]T, error) {
	raw, ok, err := s.backend.Get(ctx, name)
	if err != nil {
		s.log.Warn("record collection read failed", "collection", name, "err", err)
		return []T{}, fmt.Errorf("read %s: %w", name, err)
	}
	if !ok || raw == "" {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.log.Warn("record collection corrupt", "collection", name, "err", err)
		return []T{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, name, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Set replaces a collection. Serialization and quota faults come back as
// errors and are logged; nothing is written on failure.
func Set[T any](ctx context.Context, s *Store, name string, items []T) error {
	raw, err := encode(items)
	if err != nil {
		s.log.Warn("record collection encode failed", "collection", name, "err", err)
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := s.backend.Set(ctx, name, raw); err != nil {
		s.log.Warn("record collection write failed", "collection", name, "err", err)
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, name string) error {
	if err := s.backend.Delete(ctx, name); err != nil {
		s.log.Warn("record collection remove failed", "collection", name, "err", err)
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// Clear wipes every collection.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Clear(ctx); err != nil {
		s.log.Warn("record store clear failed", "err", err)
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}

// Batch stages several collection writes that commit together.
type Batch struct {
	entries map[string]string
	err     error
}

func (s *Store) NewBatch() *Batch {
	return &Batch{entries: map[string]string{}}
}

func Put[T any](b *Batch, name string, items []T) {
	if b.err != nil {
		return
	}
	raw, err := encode(items)
	if err != nil {
		b.err = fmt.Errorf("encode %s: %w", name, err)
		return
	}
	b.entries[name] = raw
}

// Commit writes every staged collection or none.
func (s *Store) Commit(ctx context.Context, b *Batch) error {
	if b.err != nil {
		s.log.Warn("record batch encode failed", "err", b.err)
		return b.err
	}
	if len(b.entries) == 0 {
		return nil
	}
	if err := s.backend.SetMulti(ctx, b.entries); err != nil {
		s.log.Warn("record batch write failed", "collections", len(b.entries), "err", err)
		return fmt.Errorf("write batch: %w", err)
	}
	return nil
}

// NextID returns prefix plus a millisecond timestamp that never repeats
// within this store.
func (s *Store) NextID(prefix string) string {
	return prefix + strconv.FormatInt(s.nextStamp(), 10)
}

// NextStamp is a strictly increasing millisecond timestamp, used for
// document ids.
func (s *Store) NextStamp() int64 {
	return s.nextStamp()
}

func (s *Store) nextStamp() int64 {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	stamp := s.now().UnixMilli()
	if stamp <= s.lastID {
		stamp = s.lastID + 1
	}
	s.lastID = stamp
	return stamp
}

func encode[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
