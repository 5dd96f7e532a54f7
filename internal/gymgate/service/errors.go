package service

import "errors"

var (
	// ErrInvalidDeviceID rejects requests with a missing device_id.
	ErrInvalidDeviceID = errors.New("device_id is required")

	// ErrInvalidDeviceType rejects updates carrying a type outside the
	// known enum.
	ErrInvalidDeviceType = errors.New("invalid device type")

	// ErrForbidden is returned before any table is touched when the
	// requesting staff role may not trigger devices.
	ErrForbidden = errors.New("role not permitted to trigger devices")
)
