package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fitaccess/gymgate/internal/gymgate/types"
)

type AccessEventStore struct {
	mu     sync.RWMutex
	events []types.AccessEvent
}

func NewAccessEventStore() *AccessEventStore {
	return &AccessEventStore{}
}

func (s *AccessEventStore) Append(_ context.Context, ev types.AccessEvent) error {
	if ev.ProcessedAt.IsZero() {
		ev.ProcessedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *AccessEventStore) Fetch(_ context.Context, f types.EventFilter) ([]types.AccessEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	var out []types.AccessEvent
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		ev := s.events[i]
		if f.BranchID != "" && ev.BranchID != f.BranchID {
			continue
		}
		if f.EventType != "" && ev.Type != f.EventType {
			continue
		}
		if f.AccessGranted != nil && ev.AccessGranted != *f.AccessGranted {
			continue
		}
		if f.From != nil && ev.ProcessedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && ev.ProcessedAt.After(*f.To) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}
