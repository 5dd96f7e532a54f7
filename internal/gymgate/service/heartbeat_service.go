package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fitaccess/gymgate/internal/gymgate/store"
	"github.com/fitaccess/gymgate/internal/gymgate/types"
	"github.com/fitaccess/gymgate/internal/logging"
	"github.com/fitaccess/gymgate/internal/metrics"
)

// HeartbeatService is the device liveness write path. It is the only
// caller of RecordHeartbeat, so is_online/last_heartbeat can never be
// set from the admin CRUD surface.
type HeartbeatService struct {
	devices store.DeviceStore
	syncs   store.SyncStore
}

func NewHeartbeatService(ds store.DeviceStore, ss store.SyncStore) *HeartbeatService {
	return &HeartbeatService{devices: ds, syncs: ss}
}

// Record applies a heartbeat and answers whether the device has queued
// sync work. Unknown devices get store.ErrDeviceNotFound; the handler
// turns that into a 404 so a misconfigured terminal notices.
func (s *HeartbeatService) Record(ctx context.Context, req types.HeartbeatRequest) (types.HeartbeatResponse, error) {
	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		return types.HeartbeatResponse{}, ErrInvalidDeviceID
	}

	now := time.Now().UTC()
	err := s.devices.RecordHeartbeat(ctx, deviceID, store.HeartbeatUpdate{
		ReceivedAt:      now,
		IPAddress:       strings.TrimSpace(req.IPAddress),
		FirmwareVersion: strings.TrimSpace(req.FirmwareVersion),
		Config:          req.Status,
	})
	if err != nil {
		if errors.Is(err, store.ErrDeviceNotFound) {
			metrics.RecordHeartbeat("unknown_device")
			logging.Warn().Str("device_id", deviceID).Msg("heartbeat from unregistered device")
		}
		return types.HeartbeatResponse{}, err
	}

	hasPending, err := s.syncs.HasPending(ctx, deviceID)
	if err != nil {
		return types.HeartbeatResponse{}, err
	}

	metrics.RecordHeartbeat("ok")

	return types.HeartbeatResponse{
		Success:         true,
		DeviceID:        deviceID,
		HasPendingSyncs: hasPending,
		ServerTime:      now.Format(time.RFC3339Nano),
	}, nil
}
