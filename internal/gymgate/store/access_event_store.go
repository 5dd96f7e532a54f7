package store

import (
	"context"

	"github.com/fitaccess/gymgate/internal/gymgate/types"
)

// AccessEventStore persists access decisions as an append-only audit log.
// There is intentionally no update or delete surface.
type AccessEventStore interface {
	Append(ctx context.Context, ev types.AccessEvent) error

	// Fetch returns events most-recent-first, joined with device and
	// person display names where those rows still exist.
	Fetch(ctx context.Context, f types.EventFilter) ([]types.AccessEvent, error)
}
