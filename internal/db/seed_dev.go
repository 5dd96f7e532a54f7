package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SeedDev loads a minimal fixture set so a fresh dev database has a branch,
// a member, an admin and a device to point terminals and the UI at.
// Everything upserts, so re-running is harmless.
func SeedDev(ctx context.Context, db *sql.DB) error {
	now := time.Now().UTC().UnixMilli()

	if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO branches(branch_id, name, created_at_ms)
VALUES ('branch_main', 'Main Branch', ?);`, now); err != nil {
		return fmt.Errorf("seed branches: %w", err)
	}

	end := time.Now().UTC().AddDate(0, 6, 0).UnixMilli()
	if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO members(member_id, branch_id, name, plan_name, membership_end_ms)
VALUES ('member-001', 'branch_main', 'Dev Member', 'Monthly Unlimited', ?);`, end); err != nil {
		return fmt.Errorf("seed member-001: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO staff(staff_id, branch_id, name, role)
VALUES ('staff-001', 'branch_main', 'Dev Admin', 'admin');`); err != nil {
		return fmt.Errorf("seed staff-001: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
INSERT INTO devices(
  device_id, branch_id, device_name, ip_address, device_type,
  relay_delay_s, created_at_ms, updated_at_ms
) VALUES ('device-001', 'branch_main', 'Front Turnstile', '192.168.1.40', 'turnstile', 5, ?, ?)
ON CONFLICT(device_id) DO UPDATE SET
  device_name   = excluded.device_name,
  ip_address    = excluded.ip_address,
  updated_at_ms = excluded.updated_at_ms;
`, now, now); err != nil {
		return fmt.Errorf("seed device-001: %w", err)
	}

	return nil
}
