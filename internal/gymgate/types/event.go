package types

import "time"

// EventType classifies an access event.
type EventType string

const (
	EventTypeCheckIn       EventType = "check_in"
	EventTypeCheckOut      EventType = "check_out"
	EventTypeManualTrigger EventType = "manual_trigger"
	EventTypeDenial        EventType = "denial"
)

// AccessEvent is one grant/deny decision in the append-only audit log.
// Once written it is never mutated. DeviceID is nullable because a device
// may be deleted after the fact; the audit history survives it.
type AccessEvent struct {
	ID              string    `json:"id"`
	DeviceID        *string   `json:"device_id,omitempty"`
	BranchID        string    `json:"branch_id"`
	MemberID        *string   `json:"member_id,omitempty"`
	StaffID         *string   `json:"staff_id,omitempty"`
	Type            EventType `json:"event_type"`
	AccessGranted   bool      `json:"access_granted"`
	DenialReason    string    `json:"denial_reason,omitempty"`
	ConfidenceScore *float64  `json:"confidence_score,omitempty"`
	PhotoURL        string    `json:"photo_url,omitempty"`
	DeviceMessage   string    `json:"device_message,omitempty"`
	ProcessedAt     time.Time `json:"processed_at"`

	// Display joins, populated on fetch only.
	DeviceName string `json:"device_name,omitempty"`
	PersonName string `json:"person_name,omitempty"`
}

// EventFilter narrows an access-event query.
type EventFilter struct {
	BranchID      string
	EventType     EventType
	AccessGranted *bool
	From          *time.Time
	To            *time.Time
	Limit         int
}
