package types

import "time"

// CommandStatus tracks a remote action through its lifecycle:
// pending → sent → acknowledged | failed.
type CommandStatus string

const (
	CommandStatusPending      CommandStatus = "pending"
	CommandStatusSent         CommandStatus = "sent"
	CommandStatusAcknowledged CommandStatus = "acknowledged"
	CommandStatusFailed       CommandStatus = "failed"
)

// CommandType identifies the requested remote action.
type CommandType string

const (
	CommandTypeRelayOpen CommandType = "relay_open"
)

// DeviceCommand is a staff-requested remote action against a device.
// Status transitions past "sent" are pushed by the device's own callback
// and observed by the issuing client on the command's realtime channel.
type DeviceCommand struct {
	ID          string        `json:"id"`
	DeviceID    string        `json:"device_id"`
	Type        CommandType   `json:"command_type"`
	Payload     string        `json:"payload,omitempty"` // arbitrary JSON
	IssuedBy    string        `json:"issued_by"`
	Status      CommandStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	ExecutedAt  *time.Time    `json:"executed_at,omitempty"`
	LastMessage string        `json:"last_message,omitempty"`
}

// TriggerRelayRequest is the staff-facing relay-open request body.
type TriggerRelayRequest struct {
	DeviceID string `json:"device_id" validate:"required"`
	Duration int    `json:"duration,omitempty" validate:"gte=0"` // seconds; 0 = use device default
}

// TriggerRelayResult is the acknowledgement returned to the issuing client.
type TriggerRelayResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	CommandID  string `json:"command_id,omitempty"`
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name,omitempty"`
	Duration   int    `json:"duration"`
}

// CommandAck is the device callback body reporting command execution.
type CommandAck struct {
	Status  CommandStatus `json:"status" validate:"required,oneof=acknowledged failed"`
	Message string        `json:"message,omitempty"`
}
