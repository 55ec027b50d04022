package events

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps events in process memory. Used for tests and
// STORE_DRIVER=memory deployments.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

var (
	_ Store  = (*MemoryStore)(nil)
	_ Writer = (*MemoryStore)(nil)
	_ Editor = (*MemoryStore)(nil)
)

func NewMemoryStore(initial ...Event) *MemoryStore {
	s := &MemoryStore{}
	_ = s.InsertMany(context.Background(), initial)
	return s
}

func (s *MemoryStore) Find(ctx context.Context, f Filter) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		if f.Matches(ev) {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Count(ctx context.Context, f Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, ev := range s.events {
		if f.Matches(ev) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Distinct(ctx context.Context, field string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, ev := range s.events {
		var v string
		switch field {
		case "city":
			v = ev.City
		case "category":
			v = ev.Category
		default:
			return nil, fmt.Errorf("distinct: unsupported field %q", field)
		}
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) InsertMany(ctx context.Context, evs []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range evs {
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		s.events = append(s.events, ev)
	}
	return nil
}

func (s *MemoryStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	return nil
}

func (s *MemoryStore) Create(ctx context.Context, ev Event) (Event, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if err := s.InsertMany(ctx, []Event{ev}); err != nil {
		return Event{}, err
	}
	return ev, nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id string) (Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.events[i], nil
	}
	return Event{}, ErrNotFound
}

// Update replaces the stored event with the same ID. It does not change the
// document count.
func (s *MemoryStore) Update(ctx context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(ev.ID)
	if i < 0 {
		return ErrNotFound
	}
	s.events[i] = ev
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.events = append(s.events[:i], s.events[i+1:]...)
	return nil
}

// indexOf must be called with s.mu held.
func (s *MemoryStore) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.events {
		if s.events[i].ID == id {
			return i
		}
	}
	return -1
}

// Unavailable is a Store that always fails. It stands in for a backend that
// could not be reached at startup so the bot keeps answering.
type Unavailable struct{ Err error }

func (u Unavailable) err() error {
	if u.Err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, u.Err)
	}
	return ErrUnavailable
}

func (u Unavailable) Find(context.Context, Filter) ([]Event, error) {
	return nil, u.err()
}

func (u Unavailable) Count(context.Context, Filter) (int64, error) {
	return 0, u.err()
}

func (u Unavailable) Distinct(context.Context, string) ([]string, error) {
	return nil, u.err()
}
