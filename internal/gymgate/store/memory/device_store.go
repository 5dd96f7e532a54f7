package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fitaccess/gymgate/internal/gymgate/store"
	"github.com/fitaccess/gymgate/internal/gymgate/types"
)

type DeviceStore struct {
	mu      sync.RWMutex
	devices map[string]types.Device
}

func NewDeviceStore() *DeviceStore {
	return &DeviceStore{devices: make(map[string]types.Device)}
}

func (s *DeviceStore) Create(_ context.Context, d types.Device) error {
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[d.ID] = d
	return nil
}

func (s *DeviceStore) Update(_ context.Context, id string, upd types.DeviceUpdate) (types.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.devices[id]
	if !ok {
		return types.Device{}, store.ErrDeviceNotFound
	}

	if upd.Name != nil {
		d.Name = *upd.Name
	}
	if upd.IPAddress != nil {
		d.IPAddress = *upd.IPAddress
	}
	if upd.Type != nil {
		d.Type = *upd.Type
	}
	if upd.Model != nil {
		d.Model = *upd.Model
	}
	if upd.SerialNumber != nil {
		d.SerialNumber = *upd.SerialNumber
	}
	if upd.RelayMode != nil {
		d.RelayMode = *upd.RelayMode
	}
	if upd.RelayDelay != nil {
		d.RelayDelay = *upd.RelayDelay
	}
	if upd.Config != nil {
		d.Config = *upd.Config
	}
	d.UpdatedAt = time.Now().UTC()

	s.devices[id] = d
	return d, nil
}

func (s *DeviceStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.devices[id]; !ok {
		return store.ErrDeviceNotFound
	}
	delete(s.devices, id)
	return nil
}

func (s *DeviceStore) Get(_ context.Context, id string) (types.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.devices[id]
	if !ok {
		return types.Device{}, store.ErrDeviceNotFound
	}
	return d, nil
}

func (s *DeviceStore) List(_ context.Context, branchID string) ([]types.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.Device
	for _, d := range s.devices {
		if branchID != "" && d.BranchID != branchID {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *DeviceStore) ListByType(_ context.Context, branchID string, t types.DeviceType) ([]types.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.Device
	for _, d := range s.devices {
		if d.Type != t {
			continue
		}
		if branchID != "" && d.BranchID != branchID {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *DeviceStore) RecordHeartbeat(_ context.Context, id string, upd store.HeartbeatUpdate) error {
	t := upd.ReceivedAt
	if t.IsZero() {
		t = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.devices[id]
	if !ok {
		return store.ErrDeviceNotFound
	}

	d.IsOnline = true
	d.LastHeartbeat = &t
	if upd.IPAddress != "" {
		d.IPAddress = upd.IPAddress
	}
	if upd.FirmwareVersion != "" {
		d.FirmwareVersion = upd.FirmwareVersion
	}
	if upd.Config != "" {
		d.Config = upd.Config
	}
	d.UpdatedAt = t

	s.devices[id] = d
	return nil
}

func (s *DeviceStore) MarkOfflineStale(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed int64
	for id, d := range s.devices {
		if !d.IsOnline {
			continue
		}
		if d.LastHeartbeat != nil && !d.LastHeartbeat.Before(cutoff) {
			continue
		}
		d.IsOnline = false
		d.UpdatedAt = time.Now().UTC()
		s.devices[id] = d
		changed++
	}
	return changed, nil
}

func (s *DeviceStore) TouchLastSync(_ context.Context, id string, t time.Time) error {
	if t.IsZero() {
		t = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.devices[id]
	if !ok {
		return nil
	}
	d.LastSync = &t
	s.devices[id] = d
	return nil
}
