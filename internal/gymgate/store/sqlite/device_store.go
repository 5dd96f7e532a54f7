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

type DeviceStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewDeviceStore(db *sql.DB, writer *dbpkg.Worker) *DeviceStore {
	return &DeviceStore{db: db, writer: writer}
}

const deviceColumns = `
device_id, branch_id, device_name, ip_address, device_type, model,
firmware_version, serial_number, relay_mode, relay_delay_s, is_online,
last_heartbeat_ms, last_sync_ms, config, created_at_ms, updated_at_ms`

func scanDevice(row interface{ Scan(...any) error }) (types.Device, error) {
	var d types.Device
	var online int
	var hb, ls sql.NullInt64
	var createdMs, updatedMs int64

	err := row.Scan(
		&d.ID, &d.BranchID, &d.Name, &d.IPAddress, &d.Type, &d.Model,
		&d.FirmwareVersion, &d.SerialNumber, &d.RelayMode, &d.RelayDelay, &online,
		&hb, &ls, &d.Config, &createdMs, &updatedMs,
	)
	if err != nil {
		return types.Device{}, err
	}

	d.IsOnline = online == 1
	d.LastHeartbeat = msToTime(hb)
	d.LastSync = msToTime(ls)
	d.CreatedAt = time.UnixMilli(createdMs).UTC()
	d.UpdatedAt = time.UnixMilli(updatedMs).UTC()
	return d, nil
}

func (s *DeviceStore) Create(ctx context.Context, d types.Device) error {
	now := time.Now().UTC().UnixMilli()
	var online int
	if d.IsOnline {
		online = 1
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO devices(
  device_id, branch_id, device_name, ip_address, device_type, model,
  firmware_version, serial_number, relay_mode, relay_delay_s, is_online,
  last_heartbeat_ms, last_sync_ms, config, created_at_ms, updated_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
			d.ID, d.BranchID, d.Name, d.IPAddress, string(d.Type), d.Model,
			d.FirmwareVersion, d.SerialNumber, d.RelayMode, d.RelayDelay, online,
			timeToMS(d.LastHeartbeat), timeToMS(d.LastSync), d.Config, now, now,
		); err != nil {
			return fmt.Errorf("Create device: %w", err)
		}
		return nil
	})
}

// Update applies only the fields set on upd. The liveness columns are not
// reachable from here, they belong to RecordHeartbeat and MarkOfflineStale.
func (s *DeviceStore) Update(ctx context.Context, id string, upd types.DeviceUpdate) (types.Device, error) {
	sets := []string{"updated_at_ms = ?"}
	args := []any{time.Now().UTC().UnixMilli()}

	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if upd.Name != nil {
		add("device_name", *upd.Name)
	}
	if upd.IPAddress != nil {
		add("ip_address", *upd.IPAddress)
	}
	if upd.Type != nil {
		add("device_type", string(*upd.Type))
	}
	if upd.Model != nil {
		add("model", *upd.Model)
	}
	if upd.SerialNumber != nil {
		add("serial_number", *upd.SerialNumber)
	}
	if upd.RelayMode != nil {
		add("relay_mode", *upd.RelayMode)
	}
	if upd.RelayDelay != nil {
		add("relay_delay_s", *upd.RelayDelay)
	}
	if upd.Config != nil {
		add("config", *upd.Config)
	}

	args = append(args, id)

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE devices SET "+strings.Join(sets, ", ")+" WHERE device_id = ?;", args...)
		if err != nil {
			return fmt.Errorf("Update device: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrDeviceNotFound
		}
		return nil
	})
	if err != nil {
		return types.Device{}, err
	}

	return s.Get(ctx, id)
}

func (s *DeviceStore) Delete(ctx context.Context, id string) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM devices WHERE device_id = ?;", id)
		if err != nil {
			return fmt.Errorf("Delete device: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrDeviceNotFound
		}
		return nil
	})
}

func (s *DeviceStore) Get(ctx context.Context, id string) (types.Device, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT"+deviceColumns+" FROM devices WHERE device_id = ?;", id)

	d, err := scanDevice(row)
	if err == sql.ErrNoRows {
		return types.Device{}, store.ErrDeviceNotFound
	}
	if err != nil {
		return types.Device{}, fmt.Errorf("Get device: %w", err)
	}
	return d, nil
}

func (s *DeviceStore) List(ctx context.Context, branchID string) ([]types.Device, error) {
	q := "SELECT" + deviceColumns + " FROM devices"
	var args []any
	if branchID != "" {
		q += " WHERE branch_id = ?"
		args = append(args, branchID)
	}
	q += " ORDER BY device_name;"

	return s.queryDevices(ctx, q, args...)
}

func (s *DeviceStore) ListByType(ctx context.Context, branchID string, t types.DeviceType) ([]types.Device, error) {
	q := "SELECT" + deviceColumns + " FROM devices WHERE device_type = ?"
	args := []any{string(t)}
	if branchID != "" {
		q += " AND branch_id = ?"
		args = append(args, branchID)
	}
	q += " ORDER BY device_name;"

	return s.queryDevices(ctx, q, args...)
}

func (s *DeviceStore) queryDevices(ctx context.Context, q string, args ...any) ([]types.Device, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query devices: %w", err)
	}
	defer rows.Close()

	var out []types.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// RecordHeartbeat is the liveness write path. A heartbeat and an admin edit
// update disjoint column sets, so the two racing writers cannot clobber
// each other's fields.
func (s *DeviceStore) RecordHeartbeat(ctx context.Context, id string, upd store.HeartbeatUpdate) error {
	t := upd.ReceivedAt
	if t.IsZero() {
		t = time.Now().UTC()
	}
	ms := t.UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE devices
SET is_online         = 1,
    last_heartbeat_ms = ?,
    ip_address        = CASE WHEN ? != '' THEN ? ELSE ip_address END,
    firmware_version  = CASE WHEN ? != '' THEN ? ELSE firmware_version END,
    config            = CASE WHEN ? != '' THEN ? ELSE config END,
    updated_at_ms     = ?
WHERE device_id = ?;
`,
			ms,
			upd.IPAddress, upd.IPAddress,
			upd.FirmwareVersion, upd.FirmwareVersion,
			upd.Config, upd.Config,
			ms, id,
		)
		if err != nil {
			return fmt.Errorf("RecordHeartbeat: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrDeviceNotFound
		}
		return nil
	})
}

func (s *DeviceStore) MarkOfflineStale(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UTC().UnixMilli()

	var changed int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE devices
SET is_online     = 0,
    updated_at_ms = ?
WHERE is_online = 1
  AND (last_heartbeat_ms IS NULL OR last_heartbeat_ms < ?);
`, time.Now().UTC().UnixMilli(), cutoffMs)
		if err != nil {
			return fmt.Errorf("MarkOfflineStale: %w", err)
		}
		changed, _ = res.RowsAffected()
		return nil
	})
	return changed, err
}

func (s *DeviceStore) TouchLastSync(ctx context.Context, id string, t time.Time) error {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"UPDATE devices SET last_sync_ms = ? WHERE device_id = ?;",
			t.UTC().UnixMilli(), id,
		); err != nil {
			return fmt.Errorf("TouchLastSync: %w", err)
		}
		return nil
	})
}
