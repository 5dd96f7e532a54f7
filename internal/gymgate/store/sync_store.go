package store

import (
	"context"
	"time"

	"github.com/fitaccess/gymgate/internal/gymgate/types"
)

// SyncStore persists the biometric sync queue.
//
// The queue substitutes an upsert on the (person, device) composite key
// for locking: concurrent enrollment intents for the same pair collapse
// to the latest one instead of accumulating duplicate rows.
type SyncStore interface {
	// Upsert inserts the item or, when a row for (person_kind, person_id,
	// device_id) already exists, replaces its intent: sync_type, photo_url,
	// person_name and queued_at are taken from item, status resets to
	// pending, and retry_count and error_message are preserved from the
	// existing row.
	Upsert(ctx context.Context, item types.BiometricSyncItem) error

	Get(ctx context.Context, id string) (types.BiometricSyncItem, error)

	// Pending returns pending items oldest-first (FIFO fairness),
	// optionally filtered to one device.
	Pending(ctx context.Context, deviceID string) ([]types.BiometricSyncItem, error)

	// HasPending reports whether any pending item targets the device.
	// Heartbeat hot path, kept separate from Pending to stay a cheap
	// EXISTS query.
	HasPending(ctx context.Context, deviceID string) (bool, error)

	// Claim atomically moves the given pending items to syncing.
	Claim(ctx context.Context, ids []string, t time.Time) error

	// Resolve finishes an attempt: success moves the item to completed and
	// clears error_message; failure moves it to failed, increments
	// retry_count and records errMsg. processed_at is stamped either way.
	Resolve(ctx context.Context, id string, success bool, errMsg string, t time.Time) (types.BiometricSyncItem, error)

	// RetryEligible returns failed items with retry_count below max whose
	// processed_at is older than the per-item backoff cutoff computed by
	// the caller.
	RetryEligible(ctx context.Context, maxRetries int, before time.Time) ([]types.BiometricSyncItem, error)

	// Requeue flips a failed item back to pending, preserving retry_count
	// and error_message (the message is cleared only when the next attempt
	// resolves).
	Requeue(ctx context.Context, id string, t time.Time) error

	// MarkDeleteIntents rewrites a person's items as delete intents,
	// optionally scoped to specific devices. Returns the number of rows
	// affected.
	MarkDeleteIntents(ctx context.Context, kind types.PersonKind, personID string, deviceIDs []string, t time.Time) (int64, error)
}
