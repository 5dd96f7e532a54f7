package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/fitaccess/gymgate/internal/db"
	"github.com/fitaccess/gymgate/internal/gymgate/store"
	"github.com/fitaccess/gymgate/internal/gymgate/types"
)

type SyncStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewSyncStore(db *sql.DB, writer *dbpkg.Worker) *SyncStore {
	return &SyncStore{db: db, writer: writer}
}

const syncColumns = `
sync_id, sync_type, person_kind, person_id, device_id, photo_url,
person_uuid, person_name, status, retry_count, error_message,
queued_at_ms, processed_at_ms`

func scanSyncItem(row interface{ Scan(...any) error }) (types.BiometricSyncItem, error) {
	var it types.BiometricSyncItem
	var queuedMs int64
	var processedMs sql.NullInt64

	err := row.Scan(
		&it.ID, &it.Type, &it.PersonKind, &it.PersonID, &it.DeviceID, &it.PhotoURL,
		&it.PersonUUID, &it.PersonName, &it.Status, &it.RetryCount, &it.ErrorMsg,
		&queuedMs, &processedMs,
	)
	if err != nil {
		return types.BiometricSyncItem{}, err
	}

	it.QueuedAt = time.UnixMilli(queuedMs).UTC()
	it.ProcessedAt = msToTime(processedMs)
	return it, nil
}

// Upsert collapses repeated intents for one (person, device) pair into a
// single row. The conflict branch takes the new intent but keeps the old
// row's id, retry_count and error_message. The counter survives requeues
// and the message is only cleared when an attempt resolves.
func (s *SyncStore) Upsert(ctx context.Context, item types.BiometricSyncItem) error {
	if item.QueuedAt.IsZero() {
		item.QueuedAt = time.Now().UTC()
	}
	if item.Status == "" {
		item.Status = types.SyncStatusPending
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO biometric_sync_queue(
  sync_id, sync_type, person_kind, person_id, device_id, photo_url,
  person_uuid, person_name, status, retry_count, error_message,
  queued_at_ms, processed_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, '', ?, NULL)
ON CONFLICT(person_kind, person_id, device_id) DO UPDATE SET
  sync_type       = excluded.sync_type,
  photo_url       = excluded.photo_url,
  person_uuid     = excluded.person_uuid,
  person_name     = excluded.person_name,
  status          = 'pending',
  queued_at_ms    = excluded.queued_at_ms,
  processed_at_ms = NULL;
`,
			item.ID, string(item.Type), string(item.PersonKind), item.PersonID,
			item.DeviceID, item.PhotoURL, item.PersonUUID, item.PersonName,
			string(item.Status), item.QueuedAt.UTC().UnixMilli(),
		); err != nil {
			return fmt.Errorf("Upsert sync item: %w", err)
		}
		return nil
	})
}

func (s *SyncStore) Get(ctx context.Context, id string) (types.BiometricSyncItem, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT"+syncColumns+" FROM biometric_sync_queue WHERE sync_id = ?;", id)

	it, err := scanSyncItem(row)
	if err == sql.ErrNoRows {
		return types.BiometricSyncItem{}, store.ErrSyncItemNotFound
	}
	if err != nil {
		return types.BiometricSyncItem{}, fmt.Errorf("Get sync item: %w", err)
	}
	return it, nil
}

// Pending lists pending items oldest-first so no device's enrollment work
// starves behind newer intents.
func (s *SyncStore) Pending(ctx context.Context, deviceID string) ([]types.BiometricSyncItem, error) {
	q := "SELECT" + syncColumns + " FROM biometric_sync_queue WHERE status = 'pending'"
	var args []any
	if deviceID != "" {
		q += " AND device_id = ?"
		args = append(args, deviceID)
	}
	q += " ORDER BY queued_at_ms ASC;"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("Pending sync items: %w", err)
	}
	defer rows.Close()

	var out []types.BiometricSyncItem
	for rows.Next() {
		it, err := scanSyncItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sync item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *SyncStore) HasPending(ctx context.Context, deviceID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
SELECT 1 FROM biometric_sync_queue
WHERE device_id = ? AND status = 'pending'
LIMIT 1;
`, deviceID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("HasPending: %w", err)
	}
	return true, nil
}

func (s *SyncStore) Claim(ctx context.Context, ids []string, t time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	if t.IsZero() {
		t = time.Now().UTC()
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"UPDATE biometric_sync_queue SET status = 'syncing' WHERE status = 'pending' AND sync_id IN ("+placeholders+");",
			args...,
		); err != nil {
			return fmt.Errorf("Claim sync items: %w", err)
		}
		return nil
	})
}

func (s *SyncStore) Resolve(ctx context.Context, id string, success bool, errMsg string, t time.Time) (types.BiometricSyncItem, error) {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	ms := t.UTC().UnixMilli()

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var res sql.Result
		var err error
		if success {
			res, err = tx.ExecContext(ctx, `
UPDATE biometric_sync_queue
SET status = 'completed', error_message = '', processed_at_ms = ?
WHERE sync_id = ?;
`, ms, id)
		} else {
			res, err = tx.ExecContext(ctx, `
UPDATE biometric_sync_queue
SET status = 'failed', retry_count = retry_count + 1,
    error_message = ?, processed_at_ms = ?
WHERE sync_id = ?;
`, errMsg, ms, id)
		}
		if err != nil {
			return fmt.Errorf("Resolve sync item: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrSyncItemNotFound
		}
		return nil
	})
	if err != nil {
		return types.BiometricSyncItem{}, err
	}

	return s.Get(ctx, id)
}

func (s *SyncStore) RetryEligible(ctx context.Context, maxRetries int, before time.Time) ([]types.BiometricSyncItem, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT"+syncColumns+` FROM biometric_sync_queue
WHERE status = 'failed' AND retry_count < ? AND processed_at_ms IS NOT NULL AND processed_at_ms <= ?
ORDER BY processed_at_ms ASC;
`, maxRetries, before.UTC().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("RetryEligible: %w", err)
	}
	defer rows.Close()

	var out []types.BiometricSyncItem
	for rows.Next() {
		it, err := scanSyncItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sync item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *SyncStore) Requeue(ctx context.Context, id string, t time.Time) error {
	if t.IsZero() {
		t = time.Now().UTC()
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE biometric_sync_queue
SET status = 'pending', queued_at_ms = ?, processed_at_ms = NULL
WHERE sync_id = ? AND status = 'failed';
`, t.UTC().UnixMilli(), id)
		if err != nil {
			return fmt.Errorf("Requeue sync item: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrSyncItemNotFound
		}
		return nil
	})
}

func (s *SyncStore) MarkDeleteIntents(ctx context.Context, kind types.PersonKind, personID string, deviceIDs []string, t time.Time) (int64, error) {
	if t.IsZero() {
		t = time.Now().UTC()
	}

	q := `
UPDATE biometric_sync_queue
SET sync_type = 'delete', status = 'pending', photo_url = '',
    queued_at_ms = ?, processed_at_ms = NULL
WHERE person_kind = ? AND person_id = ?`
	args := []any{t.UTC().UnixMilli(), string(kind), personID}

	if len(deviceIDs) > 0 {
		placeholders := strings.Repeat("?,", len(deviceIDs))
		q += " AND device_id IN (" + placeholders[:len(placeholders)-1] + ")"
		for _, id := range deviceIDs {
			args = append(args, id)
		}
	}
	q += ";"

	var changed int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("MarkDeleteIntents: %w", err)
		}
		changed, _ = res.RowsAffected()
		return nil
	})
	return changed, err
}
