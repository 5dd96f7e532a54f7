package sqlite_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fitaccess/gymgate/internal/gymgate/types"

	sqlitestore "github.com/fitaccess/gymgate/internal/gymgate/store/sqlite"
)

func newAccessEvent(id, branchID string, at time.Time) types.AccessEvent {
	return types.AccessEvent{
		ID:            id,
		BranchID:      branchID,
		Type:          types.EventTypeCheckIn,
		AccessGranted: true,
		ProcessedAt:   at,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Append — log survives device removal
// ═══════════════════════════════════════════════════════════════════════════

func TestAccessEventStore_Append_SurvivesDeviceDeletion(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	seedBranch(t, conn, "branch-1")
	seedDevice(t, conn, "dev-1", "branch-1", "turnstile")
	es := sqlitestore.NewAccessEventStore(conn, w)
	ds := sqlitestore.NewDeviceStore(conn, w)
	ctx := context.Background()

	devID := "dev-1"
	ev := newAccessEvent("ev-1", "branch-1", time.Now().UTC())
	ev.DeviceID = &devID
	if err := es.Append(ctx, ev); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := ds.Delete(ctx, "dev-1"); err != nil {
		t.Fatalf("Delete device: %v", err)
	}

	got, err := es.Fetch(ctx, types.EventFilter{BranchID: "branch-1"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	if got[0].DeviceID == nil || *got[0].DeviceID != "dev-1" {
		t.Error("event must keep the recorded device_id after deletion")
	}
	if got[0].DeviceName != "" {
		t.Errorf("device_name = %q, want empty after device deletion", got[0].DeviceName)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Fetch — display joins, filters, ordering, limit
// ═══════════════════════════════════════════════════════════════════════════

func TestAccessEventStore_Fetch_JoinsDisplayNames(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	seedBranch(t, conn, "branch-1")
	seedDevice(t, conn, "dev-1", "branch-1", "turnstile")
	seedMember(t, conn, "member-001", "branch-1")
	es := sqlitestore.NewAccessEventStore(conn, w)
	ctx := context.Background()

	devID := "dev-1"
	memberID := "member-001"
	ev := newAccessEvent("ev-1", "branch-1", time.Now().UTC())
	ev.DeviceID = &devID
	ev.MemberID = &memberID
	if err := es.Append(ctx, ev); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := es.Fetch(ctx, types.EventFilter{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	if got[0].DeviceName != "Device dev-1" {
		t.Errorf("device_name = %q", got[0].DeviceName)
	}
	if got[0].PersonName != "Member member-001" {
		t.Errorf("person_name = %q", got[0].PersonName)
	}
}

func TestAccessEventStore_Fetch_Filters(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	seedBranch(t, conn, "branch-1")
	seedBranch(t, conn, "branch-2")
	es := sqlitestore.NewAccessEventStore(conn, w)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	granted := newAccessEvent("ev-1", "branch-1", base)
	if err := es.Append(ctx, granted); err != nil {
		t.Fatalf("Append: %v", err)
	}

	denied := newAccessEvent("ev-2", "branch-1", base.Add(time.Minute))
	denied.Type = types.EventTypeDenial
	denied.AccessGranted = false
	denied.DenialReason = "membership_expired"
	if err := es.Append(ctx, denied); err != nil {
		t.Fatalf("Append: %v", err)
	}

	other := newAccessEvent("ev-3", "branch-2", base.Add(2*time.Minute))
	if err := es.Append(ctx, other); err != nil {
		t.Fatalf("Append: %v", err)
	}

	byBranch, err := es.Fetch(ctx, types.EventFilter{BranchID: "branch-1"})
	if err != nil {
		t.Fatalf("Fetch by branch: %v", err)
	}
	if len(byBranch) != 2 {
		t.Fatalf("branch-1 returned %d events, want 2", len(byBranch))
	}

	deniedOnly := false
	byGranted, err := es.Fetch(ctx, types.EventFilter{AccessGranted: &deniedOnly})
	if err != nil {
		t.Fatalf("Fetch by granted: %v", err)
	}
	if len(byGranted) != 1 || byGranted[0].ID != "ev-2" {
		t.Fatalf("denied filter returned %d events", len(byGranted))
	}

	byType, err := es.Fetch(ctx, types.EventFilter{EventType: types.EventTypeDenial})
	if err != nil {
		t.Fatalf("Fetch by type: %v", err)
	}
	if len(byType) != 1 || byType[0].DenialReason != "membership_expired" {
		t.Fatalf("type filter returned %d events", len(byType))
	}

	from := base.Add(30 * time.Second)
	to := base.Add(90 * time.Second)
	byWindow, err := es.Fetch(ctx, types.EventFilter{From: &from, To: &to})
	if err != nil {
		t.Fatalf("Fetch by window: %v", err)
	}
	if len(byWindow) != 1 || byWindow[0].ID != "ev-2" {
		t.Fatalf("time window returned %d events", len(byWindow))
	}
}

func TestAccessEventStore_Fetch_NewestFirstAndLimit(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	seedBranch(t, conn, "branch-1")
	es := sqlitestore.NewAccessEventStore(conn, w)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		ev := newAccessEvent(
			fmt.Sprintf("ev-%03d", i),
			"branch-1",
			base.Add(time.Duration(i)*time.Second),
		)
		if err := es.Append(ctx, ev); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := es.Fetch(ctx, types.EventFilter{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 50 {
		t.Fatalf("default limit returned %d events, want 50", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].ProcessedAt.After(got[i-1].ProcessedAt) {
			t.Fatalf("events not in newest-first order at index %d", i)
		}
	}

	two, err := es.Fetch(ctx, types.EventFilter{Limit: 2})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(two) != 2 {
		t.Fatalf("limit 2 returned %d events", len(two))
	}
	if !two[0].ProcessedAt.Equal(base.Add(59 * time.Second)) {
		t.Errorf("first event processed_at = %v, want newest", two[0].ProcessedAt)
	}
}
