package store

import (
	"context"
	"time"

	"github.com/fitaccess/gymgate/internal/gymgate/types"
)

// CommandStore persists device commands and their status transitions.
type CommandStore interface {
	Create(ctx context.Context, cmd types.DeviceCommand) error
	Get(ctx context.Context, id string) (types.DeviceCommand, error)

	// SetStatus advances the command state machine. executedAt is stamped
	// for terminal transitions (acknowledged/failed); pass the zero time
	// otherwise.
	SetStatus(ctx context.Context, id string, status types.CommandStatus, message string, executedAt time.Time) error
}
