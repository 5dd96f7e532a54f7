package types

import "time"

// DeviceType identifies the kind of physical terminal.
type DeviceType string

const (
	DeviceTypeTurnstile    DeviceType = "turnstile"
	DeviceTypeFaceTerminal DeviceType = "face_terminal"
	DeviceTypeOther        DeviceType = "other"
)

// Device is a registered physical access terminal at a branch.
//
// IsOnline and LastHeartbeat are owned exclusively by the heartbeat path
// (and the liveness sweeper); the registry's mutation surface cannot set
// them, so an administrator cannot spoof liveness.
type Device struct {
	ID              string     `json:"id"`
	BranchID        string     `json:"branch_id"`
	Name            string     `json:"device_name"`
	IPAddress       string     `json:"ip_address"`
	Type            DeviceType `json:"device_type"`
	Model           string     `json:"model,omitempty"`
	FirmwareVersion string     `json:"firmware_version,omitempty"`
	SerialNumber    string     `json:"serial_number,omitempty"`
	RelayMode       string     `json:"relay_mode,omitempty"`
	RelayDelay      int        `json:"relay_delay"` // seconds the relay stays open
	IsOnline        bool       `json:"is_online"`
	LastHeartbeat   *time.Time `json:"last_heartbeat,omitempty"`
	LastSync        *time.Time `json:"last_sync,omitempty"`
	Config          string     `json:"config,omitempty"` // opaque JSON blob, device-defined
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewDevice holds the admin-settable fields for device creation.
type NewDevice struct {
	BranchID     string     `json:"branch_id" validate:"required"`
	Name         string     `json:"device_name" validate:"required"`
	IPAddress    string     `json:"ip_address" validate:"required"`
	Type         DeviceType `json:"device_type" validate:"omitempty,oneof=turnstile face_terminal other"`
	Model        string     `json:"model"`
	SerialNumber string     `json:"serial_number"`
	RelayMode    string     `json:"relay_mode"`
	RelayDelay   int        `json:"relay_delay" validate:"gte=0"`
	Config       string     `json:"config"`
}

// DeviceUpdate carries optional field updates. Liveness fields are absent
// here on purpose; only the heartbeat receiver may mutate them.
type DeviceUpdate struct {
	Name         *string     `json:"device_name,omitempty"`
	IPAddress    *string     `json:"ip_address,omitempty"`
	Type         *DeviceType `json:"device_type,omitempty"`
	Model        *string     `json:"model,omitempty"`
	SerialNumber *string     `json:"serial_number,omitempty"`
	RelayMode    *string     `json:"relay_mode,omitempty"`
	RelayDelay   *int        `json:"relay_delay,omitempty"`
	Config       *string     `json:"config,omitempty"`
}
