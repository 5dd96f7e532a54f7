package store

import (
	"context"
	"time"

	"github.com/fitaccess/gymgate/internal/gymgate/types"
)

// HeartbeatUpdate is the liveness mutation applied by the heartbeat
// receiver. It is deliberately separate from types.DeviceUpdate so no
// other path can set is_online or last_heartbeat.
type HeartbeatUpdate struct {
	ReceivedAt      time.Time
	IPAddress       string // empty = leave unchanged
	FirmwareVersion string // empty = leave unchanged
	Config          string // empty = leave unchanged
}

// DeviceStore persists the device registry.
type DeviceStore interface {
	Create(ctx context.Context, d types.Device) error
	Update(ctx context.Context, id string, upd types.DeviceUpdate) (types.Device, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (types.Device, error)
	List(ctx context.Context, branchID string) ([]types.Device, error)

	// ListByType returns devices of one type, optionally branch-scoped.
	// Used by the sync queue to fan out to face terminals.
	ListByType(ctx context.Context, branchID string, t types.DeviceType) ([]types.Device, error)

	// RecordHeartbeat applies the liveness update for one device. It is
	// the only write path that touches is_online/last_heartbeat besides
	// MarkOfflineStale.
	RecordHeartbeat(ctx context.Context, id string, upd HeartbeatUpdate) error

	// MarkOfflineStale flips is_online off for devices whose last
	// heartbeat is older than cutoff. Returns the number of rows changed.
	MarkOfflineStale(ctx context.Context, cutoff time.Time) (int64, error)

	// TouchLastSync stamps last_sync after a completed biometric sync.
	TouchLastSync(ctx context.Context, id string, t time.Time) error
}
