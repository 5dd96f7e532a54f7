package types

// HeartbeatRequest is the periodic liveness ping from a terminal.
type HeartbeatRequest struct {
	DeviceID        string `json:"device_id"`
	IPAddress       string `json:"ip_address,omitempty"`
	FirmwareVersion string `json:"firmware_version,omitempty"`
	Status          string `json:"status,omitempty"` // opaque device-reported state blob
}

// HeartbeatResponse tells the device whether it has queued sync work.
// HasPendingSyncs is the pull signal: a resource-constrained terminal only
// opens a second channel to fetch enrollment work when this is true.
type HeartbeatResponse struct {
	Success         bool   `json:"success"`
	DeviceID        string `json:"device_id"`
	HasPendingSyncs bool   `json:"has_pending_syncs"`
	ServerTime      string `json:"server_time"`
}
