package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/smallbiznis/prodline/internal/clock"
	slotdomain "github.com/smallbiznis/prodline/internal/slot/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrNotFound reports that no record matched an update or removal.
	ErrNotFound = errors.New("record_not_found")
)

// Position selects where Insert places a new record.
type Position int

const (
	// Prepend places the record at the head so newest entries list first.
	Prepend Position = iota
	// Append places the record at the tail.
	Append
)

// Store keeps an ordered record collection in a single durable slot.
// Every mutation rewrites the full payload, so order is exactly what the
// last writer committed. A malformed or missing payload reads as empty
// rather than failing the caller.
type Store[T any] struct {
	mu    sync.Mutex
	key   string
	db    *gorm.DB
	slots slotdomain.Repository
	clk   clock.Clock
	log   *zap.Logger
}

// New builds a store bound to one slot key.
func New[T any](key string, db *gorm.DB, slots slotdomain.Repository, clk clock.Clock, log *zap.Logger) *Store[T] {
	return &Store[T]{
		key:   key,
		db:    db,
		slots: slots,
		clk:   clk,
		log:   log.Named("store." + key),
	}
}

// Key returns the slot key this store persists under.
func (s *Store[T]) Key() string {
	return s.key
}

// List returns the stored records in persisted order.
func (s *Store[T]) List(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Insert adds a record at the requested position and persists the result.
func (s *Store[T]) Insert(ctx context.Context, rec T, pos Position) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if pos == Prepend {
		items = append([]T{rec}, items...)
	} else {
		items = append(items, rec)
	}
	if err := s.persist(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Update rewrites the first record the matcher accepts, keeping its
// position. Callers pass an identity matcher first and may retry with a
// natural-key matcher when the identity lookup misses.
func (s *Store[T]) Update(ctx context.Context, match func(T) bool, apply func(T) T) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i, item := range items {
		if match(item) {
			items[i] = apply(item)
			if err := s.persist(ctx, items); err != nil {
				return nil, err
			}
			return items, nil
		}
	}
	return nil, ErrNotFound
}

// Upsert updates the first matching record in place or inserts the
// candidate at the requested position when nothing matches.
func (s *Store[T]) Upsert(ctx context.Context, match func(T) bool, merge func(existing T) T, insert T, pos Position) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i, item := range items {
		if match(item) {
			items[i] = merge(item)
			if err := s.persist(ctx, items); err != nil {
				return nil, err
			}
			return items, nil
		}
	}
	if pos == Prepend {
		items = append([]T{insert}, items...)
	} else {
		items = append(items, insert)
	}
	if err := s.persist(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Remove drops every record the matcher accepts. Removing nothing is
// not an error.
func (s *Store[T]) Remove(ctx context.Context, match func(T) bool) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	kept := items[:0:0]
	for _, item := range items {
		if !match(item) {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return items, nil
	}
	if kept == nil {
		kept = []T{}
	}
	if err := s.persist(ctx, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// Replace persists the given list verbatim.
func (s *Store[T]) Replace(ctx context.Context, items []T) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if items == nil {
		items = []T{}
	}
	if err := s.persist(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Mutate loads the list, applies fn, and persists whatever fn returns.
// It serializes with every other mutation on this store.
func (s *Store[T]) Mutate(ctx context.Context, fn func([]T) ([]T, error)) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	next, err := fn(items)
	if err != nil {
		return nil, err
	}
	if next == nil {
		next = []T{}
	}
	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *Store[T]) load(ctx context.Context) ([]T, error) {
	rec, err := s.slots.Get(ctx, s.db, s.key)
	if err != nil {
		return nil, err
	}
	if rec == nil || len(rec.Payload) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(rec.Payload, &items); err != nil {
		s.log.Warn("malformed slot payload, starting empty", zap.Error(err))
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (s *Store[T]) persist(ctx context.Context, items []T) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.slots.Put(ctx, s.db, &slotdomain.Slot{
		SlotKey:   s.key,
		Payload:   datatypes.JSON(payload),
		UpdatedAt: s.now(),
	})
}

func (s *Store[T]) now() time.Time {
	if s.clk != nil {
		return s.clk.Now()
	}
	return time.Now().UTC()
}
