package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fitaccess/gymgate/internal/gymgate/store"
	"github.com/fitaccess/gymgate/internal/gymgate/types"
	"github.com/fitaccess/gymgate/internal/logging"
	"github.com/fitaccess/gymgate/internal/metrics"
)

// SyncQueue manages biometric enrollment work for face terminals.
// Queuing is an upsert per (person, device) pair, so hammering the
// enroll button produces one item per terminal, not a pile.
type SyncQueue struct {
	devices  store.DeviceStore
	syncs    store.SyncStore
	people   store.PersonStore
	validate *validator.Validate
}

func NewSyncQueue(ds store.DeviceStore, ss store.SyncStore, ps store.PersonStore) *SyncQueue {
	return &SyncQueue{
		devices:  ds,
		syncs:    ss,
		people:   ps,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// personUUID derives the stable identity the terminal SDKs key faces by.
// Deterministic so re-enrollment overwrites rather than duplicates.
func personUUID(kind types.PersonKind, personID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(string(kind)+":"+personID)).String()
}

// QueueMember queues enrollment of a member's reference photo.
func (q *SyncQueue) QueueMember(ctx context.Context, memberID string, req types.QueueSyncRequest) (types.QueueSyncResult, error) {
	member, err := q.people.GetMember(ctx, memberID)
	if err != nil {
		return types.QueueSyncResult{}, err
	}

	name := strings.TrimSpace(req.PersonName)
	if name == "" {
		name = member.Name
	}

	syncType := types.SyncTypeAdd
	if member.BiometricEnrolled {
		syncType = types.SyncTypeUpdate
	}

	return q.queue(ctx, types.PersonKindMember, member.ID, member.BranchID, name, syncType, req)
}

// QueueStaff queues enrollment of a staff member's reference photo.
func (q *SyncQueue) QueueStaff(ctx context.Context, staffID string, req types.QueueSyncRequest) (types.QueueSyncResult, error) {
	staff, err := q.people.GetStaff(ctx, staffID)
	if err != nil {
		return types.QueueSyncResult{}, err
	}

	name := strings.TrimSpace(req.PersonName)
	if name == "" {
		name = staff.Name
	}

	syncType := types.SyncTypeAdd
	if staff.BiometricEnrolled {
		syncType = types.SyncTypeUpdate
	}

	return q.queue(ctx, types.PersonKindStaff, staff.ID, staff.BranchID, name, syncType, req)
}

func (q *SyncQueue) queue(ctx context.Context, kind types.PersonKind, personID, branchID, personName string, syncType types.SyncType, req types.QueueSyncRequest) (types.QueueSyncResult, error) {
	if err := q.validate.StructPartial(req, "PhotoURL"); err != nil {
		return types.QueueSyncResult{}, fmt.Errorf("invalid sync request: %w", err)
	}

	targets, err := q.resolveTargets(ctx, branchID, req.DeviceIDs)
	if err != nil {
		return types.QueueSyncResult{}, err
	}
	if len(targets) == 0 {
		return types.QueueSyncResult{
			Success: false,
			Message: "no face terminals registered for this branch",
		}, nil
	}

	// Photo is stored immediately; enrolled stays false until a terminal
	// confirms the sync.
	if err := q.people.SetBiometric(ctx, kind, personID, req.PhotoURL, false); err != nil {
		return types.QueueSyncResult{}, err
	}

	now := time.Now().UTC()
	for _, deviceID := range targets {
		item := types.BiometricSyncItem{
			ID:         uuid.NewString(),
			Type:       syncType,
			PersonKind: kind,
			PersonID:   personID,
			DeviceID:   deviceID,
			PhotoURL:   req.PhotoURL,
			PersonUUID: personUUID(kind, personID),
			PersonName: personName,
			QueuedAt:   now,
		}
		if err := q.syncs.Upsert(ctx, item); err != nil {
			return types.QueueSyncResult{}, err
		}
	}

	logging.Info().
		Str("person_kind", string(kind)).
		Str("person_id", personID).
		Int("devices", len(targets)).
		Str("sync_type", string(syncType)).
		Msg("biometric sync queued")

	return types.QueueSyncResult{
		Success: true,
		Message: fmt.Sprintf("queued for %d device(s)", len(targets)),
		Queued:  len(targets),
	}, nil
}

func (q *SyncQueue) resolveTargets(ctx context.Context, branchID string, deviceIDs []string) ([]string, error) {
	if len(deviceIDs) > 0 {
		out := make([]string, 0, len(deviceIDs))
		for _, id := range deviceIDs {
			if _, err := q.devices.Get(ctx, id); err != nil {
				return nil, err
			}
			out = append(out, id)
		}
		return out, nil
	}

	terminals, err := q.devices.ListByType(ctx, branchID, types.DeviceTypeFaceTerminal)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(terminals))
	for _, d := range terminals {
		out = append(out, d.ID)
	}
	return out, nil
}

// Remove queues deletion of a person's biometric data from terminals and
// clears the enrollment fields server-side immediately.
func (q *SyncQueue) Remove(ctx context.Context, kind types.PersonKind, personID string, deviceIDs []string) (types.QueueSyncResult, error) {
	branchID, name, err := q.lookupPerson(ctx, kind, personID)
	if err != nil {
		return types.QueueSyncResult{}, err
	}

	if err := q.people.SetBiometric(ctx, kind, personID, "", false); err != nil {
		return types.QueueSyncResult{}, err
	}

	now := time.Now().UTC()
	changed, err := q.syncs.MarkDeleteIntents(ctx, kind, personID, deviceIDs, now)
	if err != nil {
		return types.QueueSyncResult{}, err
	}

	// No existing rows to rewrite: fan fresh delete intents out so the
	// terminals still purge the face.
	if changed == 0 {
		targets, err := q.resolveTargets(ctx, branchID, deviceIDs)
		if err != nil {
			return types.QueueSyncResult{}, err
		}
		for _, deviceID := range targets {
			item := types.BiometricSyncItem{
				ID:         uuid.NewString(),
				Type:       types.SyncTypeDelete,
				PersonKind: kind,
				PersonID:   personID,
				DeviceID:   deviceID,
				PersonUUID: personUUID(kind, personID),
				PersonName: name,
				QueuedAt:   now,
			}
			if err := q.syncs.Upsert(ctx, item); err != nil {
				return types.QueueSyncResult{}, err
			}
			changed++
		}
	}

	return types.QueueSyncResult{
		Success: true,
		Message: fmt.Sprintf("deletion queued for %d device(s)", changed),
		Queued:  int(changed),
	}, nil
}

func (q *SyncQueue) lookupPerson(ctx context.Context, kind types.PersonKind, personID string) (branchID, name string, err error) {
	if kind == types.PersonKindStaff {
		st, err := q.people.GetStaff(ctx, personID)
		if err != nil {
			return "", "", err
		}
		return st.BranchID, st.Name, nil
	}
	m, err := q.people.GetMember(ctx, personID)
	if err != nil {
		return "", "", err
	}
	return m.BranchID, m.Name, nil
}

// PendingItems returns a device's pending work. With claim set the items
// are atomically moved to syncing before being returned, so two pulls
// cannot hand the same item to the device twice.
func (q *SyncQueue) PendingItems(ctx context.Context, deviceID string, claim bool) ([]types.BiometricSyncItem, error) {
	items, err := q.syncs.Pending(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if !claim || len(items) == 0 {
		return items, nil
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	if err := q.syncs.Claim(ctx, ids, time.Now().UTC()); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Status = types.SyncStatusSyncing
	}
	return items, nil
}

// Complete records the terminal's result for one item. Success flips the
// person's enrolled flag and stamps the device's last_sync; failure
// increments the retry counter and leaves enrollment untouched.
func (q *SyncQueue) Complete(ctx context.Context, itemID string, success bool, errMsg string) (types.BiometricSyncItem, error) {
	item, err := q.syncs.Resolve(ctx, itemID, success, errMsg, time.Now().UTC())
	if err != nil {
		return types.BiometricSyncItem{}, err
	}

	if !success {
		metrics.RecordSyncResolution("failed")
		logging.Warn().
			Str("sync_id", item.ID).
			Str("device_id", item.DeviceID).
			Int("retry_count", item.RetryCount).
			Str("error", errMsg).
			Msg("biometric sync failed")
		return item, nil
	}

	metrics.RecordSyncResolution("completed")
	if err := q.devices.TouchLastSync(ctx, item.DeviceID, time.Now().UTC()); err != nil {
		logging.Error().Err(err).Str("device_id", item.DeviceID).Msg("failed to stamp device last_sync")
	}

	if item.Type != types.SyncTypeDelete {
		if err := q.people.SetBiometric(ctx, item.PersonKind, item.PersonID, item.PhotoURL, true); err != nil &&
			!errors.Is(err, store.ErrMemberNotFound) && !errors.Is(err, store.ErrStaffNotFound) {
			return types.BiometricSyncItem{}, err
		}
	}
	return item, nil
}
