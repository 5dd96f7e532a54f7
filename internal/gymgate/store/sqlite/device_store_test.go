package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fitaccess/gymgate/internal/gymgate/store"
	"github.com/fitaccess/gymgate/internal/gymgate/types"

	sqlitestore "github.com/fitaccess/gymgate/internal/gymgate/store/sqlite"
)

// ═══════════════════════════════════════════════════════════════════════════
// RecordHeartbeat — liveness write path
// ═══════════════════════════════════════════════════════════════════════════

func TestDeviceStore_RecordHeartbeat_MarksOnline(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	seedBranch(t, conn, "branch-1")
	seedDevice(t, conn, "dev-1", "branch-1", "turnstile")
	ds := sqlitestore.NewDeviceStore(conn, w)
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	err := ds.RecordHeartbeat(ctx, "dev-1", store.HeartbeatUpdate{
		ReceivedAt:      at,
		IPAddress:       "10.0.0.42",
		FirmwareVersion: "2.1.0",
	})
	if err != nil {
		t.Fatalf("RecordHeartbeat: %v", err)
	}

	d, err := ds.Get(ctx, "dev-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !d.IsOnline {
		t.Error("device should be online after heartbeat")
	}
	if d.LastHeartbeat == nil || !d.LastHeartbeat.Equal(at) {
		t.Errorf("last_heartbeat = %v, want %v", d.LastHeartbeat, at)
	}
	if d.IPAddress != "10.0.0.42" {
		t.Errorf("ip_address = %q, want refreshed", d.IPAddress)
	}
	if d.FirmwareVersion != "2.1.0" {
		t.Errorf("firmware_version = %q, want refreshed", d.FirmwareVersion)
	}
}

func TestDeviceStore_RecordHeartbeat_UnknownDevice(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	ds := sqlitestore.NewDeviceStore(conn, w)

	err := ds.RecordHeartbeat(context.Background(), "ghost", store.HeartbeatUpdate{})
	if !errors.Is(err, store.ErrDeviceNotFound) {
		t.Fatalf("err = %v, want ErrDeviceNotFound", err)
	}
}

func TestDeviceStore_RecordHeartbeat_EmptyFieldsLeaveValues(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	seedBranch(t, conn, "branch-1")
	seedDevice(t, conn, "dev-1", "branch-1", "turnstile")
	ds := sqlitestore.NewDeviceStore(conn, w)
	ctx := context.Background()

	if err := ds.RecordHeartbeat(ctx, "dev-1", store.HeartbeatUpdate{
		ReceivedAt: time.Now().UTC(),
		IPAddress:  "10.0.0.42",
	}); err != nil {
		t.Fatalf("RecordHeartbeat: %v", err)
	}

	// Second heartbeat without an IP must not blank the stored one.
	if err := ds.RecordHeartbeat(ctx, "dev-1", store.HeartbeatUpdate{
		ReceivedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("RecordHeartbeat: %v", err)
	}

	d, err := ds.Get(ctx, "dev-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.IPAddress != "10.0.0.42" {
		t.Errorf("ip_address = %q, empty heartbeat field must not overwrite", d.IPAddress)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// MarkOfflineStale — sweeper write path
// ═══════════════════════════════════════════════════════════════════════════

func TestDeviceStore_MarkOfflineStale(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	seedBranch(t, conn, "branch-1")
	seedDevice(t, conn, "stale", "branch-1", "turnstile")
	seedDevice(t, conn, "fresh", "branch-1", "turnstile")
	ds := sqlitestore.NewDeviceStore(conn, w)
	ctx := context.Background()

	now := time.Now().UTC()
	if err := ds.RecordHeartbeat(ctx, "stale", store.HeartbeatUpdate{ReceivedAt: now.Add(-5 * time.Minute)}); err != nil {
		t.Fatalf("RecordHeartbeat: %v", err)
	}
	if err := ds.RecordHeartbeat(ctx, "fresh", store.HeartbeatUpdate{ReceivedAt: now}); err != nil {
		t.Fatalf("RecordHeartbeat: %v", err)
	}

	changed, err := ds.MarkOfflineStale(ctx, now.Add(-2*time.Minute))
	if err != nil {
		t.Fatalf("MarkOfflineStale: %v", err)
	}
	if changed != 1 {
		t.Fatalf("changed = %d, want 1", changed)
	}

	staleDev, _ := ds.Get(ctx, "stale")
	if staleDev.IsOnline {
		t.Error("stale device should be offline")
	}
	freshDev, _ := ds.Get(ctx, "fresh")
	if !freshDev.IsOnline {
		t.Error("fresh device should stay online")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Update — partial updates, liveness unreachable
// ═══════════════════════════════════════════════════════════════════════════

func TestDeviceStore_Update_AppliesOnlySetFields(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	seedBranch(t, conn, "branch-1")
	seedDevice(t, conn, "dev-1", "branch-1", "turnstile")
	ds := sqlitestore.NewDeviceStore(conn, w)
	ctx := context.Background()

	if err := ds.RecordHeartbeat(ctx, "dev-1", store.HeartbeatUpdate{ReceivedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("RecordHeartbeat: %v", err)
	}

	name := "Front Gate"
	delay := 10
	got, err := ds.Update(ctx, "dev-1", types.DeviceUpdate{Name: &name, RelayDelay: &delay})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if got.Name != "Front Gate" {
		t.Errorf("name = %q", got.Name)
	}
	if got.RelayDelay != 10 {
		t.Errorf("relay_delay = %d", got.RelayDelay)
	}
	if got.IPAddress != "10.0.0.1" {
		t.Errorf("ip_address = %q, unset field must be untouched", got.IPAddress)
	}
	if !got.IsOnline {
		t.Error("metadata update must not clear liveness")
	}
}

func TestDeviceStore_Update_UnknownDevice(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	ds := sqlitestore.NewDeviceStore(conn, w)

	name := "x"
	_, err := ds.Update(context.Background(), "ghost", types.DeviceUpdate{Name: &name})
	if !errors.Is(err, store.ErrDeviceNotFound) {
		t.Fatalf("err = %v, want ErrDeviceNotFound", err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// ListByType
// ═══════════════════════════════════════════════════════════════════════════

func TestDeviceStore_ListByType_FiltersTerminals(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	seedBranch(t, conn, "branch-1")
	seedBranch(t, conn, "branch-2")
	seedDevice(t, conn, "gate-1", "branch-1", "turnstile")
	seedDevice(t, conn, "face-1", "branch-1", "face_terminal")
	seedDevice(t, conn, "face-2", "branch-2", "face_terminal")
	ds := sqlitestore.NewDeviceStore(conn, w)
	ctx := context.Background()

	got, err := ds.ListByType(ctx, "branch-1", types.DeviceTypeFaceTerminal)
	if err != nil {
		t.Fatalf("ListByType: %v", err)
	}
	if len(got) != 1 || got[0].ID != "face-1" {
		t.Fatalf("got %d devices, want exactly face-1", len(got))
	}

	all, err := ds.ListByType(ctx, "", types.DeviceTypeFaceTerminal)
	if err != nil {
		t.Fatalf("ListByType: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("unscoped list returned %d face terminals, want 2", len(all))
	}
}
