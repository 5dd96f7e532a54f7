package types

import "time"

// SyncType is the enrollment intent carried by a sync item.
type SyncType string

const (
	SyncTypeAdd    SyncType = "add"
	SyncTypeUpdate SyncType = "update"
	SyncTypeDelete SyncType = "delete"
)

// SyncStatus is the sync item state machine:
// pending → syncing → completed | failed.
// pending and failed are re-enterable via a fresh upsert on the same
// (person, device) key; completed is terminal until superseded.
type SyncStatus string

const (
	SyncStatusPending   SyncStatus = "pending"
	SyncStatusSyncing   SyncStatus = "syncing"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
)

// PersonKind distinguishes the two person tables a sync item can target.
type PersonKind string

const (
	PersonKindMember PersonKind = "member"
	PersonKindStaff  PersonKind = "staff"
)

// BiometricSyncItem is one unit of enrollment work for one device.
// At most one row exists per (person, device) pair: re-queuing upserts on
// that composite key so the latest intent supersedes a stale one.
type BiometricSyncItem struct {
	ID          string     `json:"id"`
	Type        SyncType   `json:"sync_type"`
	PersonKind  PersonKind `json:"person_kind"`
	PersonID    string     `json:"person_id"`
	DeviceID    string     `json:"device_id"`
	PhotoURL    string     `json:"photo_url,omitempty"`
	PersonUUID  string     `json:"person_uuid"`
	PersonName  string     `json:"person_name"`
	Status      SyncStatus `json:"status"`
	RetryCount  int        `json:"retry_count"`
	ErrorMsg    string     `json:"error_message,omitempty"`
	QueuedAt    time.Time  `json:"queued_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// QueueSyncRequest is the admin-facing enrollment request body.
// Empty DeviceIDs fans out to every registered face terminal.
type QueueSyncRequest struct {
	PhotoURL   string   `json:"photo_url" validate:"required"`
	PersonName string   `json:"person_name" validate:"required"`
	DeviceIDs  []string `json:"device_ids,omitempty"`
}

// QueueSyncResult reports how many items were queued, or a business
// rejection (e.g. no registered face terminals) with Success=false.
type QueueSyncResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Queued  int    `json:"queued"`
}
