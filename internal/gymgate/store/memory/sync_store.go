package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fitaccess/gymgate/internal/gymgate/store"
	"github.com/fitaccess/gymgate/internal/gymgate/types"
)

type syncKey struct {
	kind     types.PersonKind
	personID string
	deviceID string
}

type SyncStore struct {
	mu    sync.RWMutex
	byID  map[string]types.BiometricSyncItem
	byKey map[syncKey]string
}

func NewSyncStore() *SyncStore {
	return &SyncStore{
		byID:  make(map[string]types.BiometricSyncItem),
		byKey: make(map[syncKey]string),
	}
}

func (s *SyncStore) Upsert(_ context.Context, item types.BiometricSyncItem) error {
	if item.QueuedAt.IsZero() {
		item.QueuedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := syncKey{item.PersonKind, item.PersonID, item.DeviceID}
	if existingID, ok := s.byKey[key]; ok {
		existing := s.byID[existingID]
		existing.Type = item.Type
		existing.PhotoURL = item.PhotoURL
		existing.PersonUUID = item.PersonUUID
		existing.PersonName = item.PersonName
		existing.Status = types.SyncStatusPending
		existing.QueuedAt = item.QueuedAt
		existing.ProcessedAt = nil
		s.byID[existingID] = existing
		return nil
	}

	item.Status = types.SyncStatusPending
	item.RetryCount = 0
	item.ErrorMsg = ""
	item.ProcessedAt = nil
	s.byID[item.ID] = item
	s.byKey[key] = item.ID
	return nil
}

func (s *SyncStore) Get(_ context.Context, id string) (types.BiometricSyncItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.byID[id]
	if !ok {
		return types.BiometricSyncItem{}, store.ErrSyncItemNotFound
	}
	return it, nil
}

func (s *SyncStore) Pending(_ context.Context, deviceID string) ([]types.BiometricSyncItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.BiometricSyncItem
	for _, it := range s.byID {
		if it.Status != types.SyncStatusPending {
			continue
		}
		if deviceID != "" && it.DeviceID != deviceID {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QueuedAt.Before(out[j].QueuedAt) })
	return out, nil
}

func (s *SyncStore) HasPending(_ context.Context, deviceID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, it := range s.byID {
		if it.Status == types.SyncStatusPending && it.DeviceID == deviceID {
			return true, nil
		}
	}
	return false, nil
}

func (s *SyncStore) Claim(_ context.Context, ids []string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		it, ok := s.byID[id]
		if !ok || it.Status != types.SyncStatusPending {
			continue
		}
		it.Status = types.SyncStatusSyncing
		s.byID[id] = it
	}
	return nil
}

func (s *SyncStore) Resolve(_ context.Context, id string, success bool, errMsg string, t time.Time) (types.BiometricSyncItem, error) {
	if t.IsZero() {
		t = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.byID[id]
	if !ok {
		return types.BiometricSyncItem{}, store.ErrSyncItemNotFound
	}

	if success {
		it.Status = types.SyncStatusCompleted
		it.ErrorMsg = ""
	} else {
		it.Status = types.SyncStatusFailed
		it.RetryCount++
		it.ErrorMsg = errMsg
	}
	ts := t.UTC()
	it.ProcessedAt = &ts

	s.byID[id] = it
	return it, nil
}

func (s *SyncStore) RetryEligible(_ context.Context, maxRetries int, before time.Time) ([]types.BiometricSyncItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.BiometricSyncItem
	for _, it := range s.byID {
		if it.Status != types.SyncStatusFailed || it.RetryCount >= maxRetries {
			continue
		}
		if it.ProcessedAt == nil || it.ProcessedAt.After(before) {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProcessedAt.Before(*out[j].ProcessedAt) })
	return out, nil
}

func (s *SyncStore) Requeue(_ context.Context, id string, t time.Time) error {
	if t.IsZero() {
		t = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.byID[id]
	if !ok || it.Status != types.SyncStatusFailed {
		return store.ErrSyncItemNotFound
	}

	it.Status = types.SyncStatusPending
	it.QueuedAt = t.UTC()
	it.ProcessedAt = nil
	s.byID[id] = it
	return nil
}

func (s *SyncStore) MarkDeleteIntents(_ context.Context, kind types.PersonKind, personID string, deviceIDs []string, t time.Time) (int64, error) {
	if t.IsZero() {
		t = time.Now().UTC()
	}

	scoped := make(map[string]struct{}, len(deviceIDs))
	for _, id := range deviceIDs {
		scoped[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var changed int64
	for id, it := range s.byID {
		if it.PersonKind != kind || it.PersonID != personID {
			continue
		}
		if len(scoped) > 0 {
			if _, ok := scoped[it.DeviceID]; !ok {
				continue
			}
		}
		it.Type = types.SyncTypeDelete
		it.Status = types.SyncStatusPending
		it.PhotoURL = ""
		it.QueuedAt = t.UTC()
		it.ProcessedAt = nil
		s.byID[id] = it
		changed++
	}
	return changed, nil
}
