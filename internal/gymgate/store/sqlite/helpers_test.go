package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fitaccess/gymgate/internal/db"
)

// openTestDB returns an in-memory SQLite connection with the same PRAGMAs
// and schema as production.  The connection is closed automatically when the
// test finishes.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Each call gets a unique in-memory database.  The shared-cache URI
	// keeps the database alive for the lifetime of the connection pool.
	dsn := fmt.Sprintf(
		"file:test_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)",
		t.Name(),
	)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("openTestDB: sql.Open: %v", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		t.Fatalf("openTestDB: ping: %v", err)
	}

	if err := db.Migrate(context.Background(), conn); err != nil {
		conn.Close()
		t.Fatalf("openTestDB: migrate: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// newTestWriter returns a db.Worker backed by conn.  The worker is closed
// automatically when the test finishes.
func newTestWriter(t *testing.T, conn *sql.DB) *db.Worker {
	t.Helper()

	w := db.NewWorker(conn)
	t.Cleanup(func() { w.Close() })
	return w
}

func seedBranch(t *testing.T, conn *sql.DB, branchID string) {
	t.Helper()

	_, err := conn.Exec(
		`INSERT INTO branches(branch_id, name, created_at_ms) VALUES (?, ?, ?);`,
		branchID, "Branch "+branchID, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		t.Fatalf("seedBranch: %v", err)
	}
}

func seedDevice(t *testing.T, conn *sql.DB, deviceID, branchID, deviceType string) {
	t.Helper()

	now := time.Now().UTC().UnixMilli()
	_, err := conn.Exec(`
INSERT INTO devices(
  device_id, branch_id, device_name, ip_address, device_type, model,
  firmware_version, serial_number, relay_mode, relay_delay_s, is_online,
  last_heartbeat_ms, last_sync_ms, config, created_at_ms, updated_at_ms
) VALUES (?, ?, ?, '10.0.0.1', ?, '', '', '', '', 5, 0, NULL, NULL, '', ?, ?);
`, deviceID, branchID, "Device "+deviceID, deviceType, now, now)
	if err != nil {
		t.Fatalf("seedDevice: %v", err)
	}
}

func seedMember(t *testing.T, conn *sql.DB, memberID, branchID string) {
	t.Helper()

	_, err := conn.Exec(`
INSERT INTO members(member_id, branch_id, name, plan_name, membership_end_ms, is_frozen, biometric_photo_url, biometric_enrolled)
VALUES (?, ?, ?, 'monthly', NULL, 0, '', 0);
`, memberID, branchID, "Member "+memberID)
	if err != nil {
		t.Fatalf("seedMember: %v", err)
	}
}

func seedStaff(t *testing.T, conn *sql.DB, staffID, branchID, role string) {
	t.Helper()

	_, err := conn.Exec(`
INSERT INTO staff(staff_id, branch_id, name, role, biometric_photo_url, biometric_enrolled)
VALUES (?, ?, ?, ?, '', 0);
`, staffID, branchID, "Staff "+staffID, role)
	if err != nil {
		t.Fatalf("seedStaff: %v", err)
	}
}
