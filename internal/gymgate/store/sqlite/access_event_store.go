package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/fitaccess/gymgate/internal/db"
	"github.com/fitaccess/gymgate/internal/gymgate/types"
)

type AccessEventStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAccessEventStore(db *sql.DB, writer *dbpkg.Worker) *AccessEventStore {
	return &AccessEventStore{db: db, writer: writer}
}

// Append writes one audit row. There is no UPDATE statement anywhere in
// this file, the log is append-only.
func (s *AccessEventStore) Append(ctx context.Context, ev types.AccessEvent) error {
	if ev.ProcessedAt.IsZero() {
		ev.ProcessedAt = time.Now().UTC()
	}

	var deviceID any
	if ev.DeviceID != nil {
		deviceID = *ev.DeviceID
	}
	var memberID any
	if ev.MemberID != nil {
		memberID = *ev.MemberID
	}
	var staffID any
	if ev.StaffID != nil {
		staffID = *ev.StaffID
	}
	var confidence any
	if ev.ConfidenceScore != nil {
		confidence = *ev.ConfidenceScore
	}
	var granted int
	if ev.AccessGranted {
		granted = 1
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO access_events(
  event_id, device_id, branch_id, member_id, staff_id, event_type,
  access_granted, denial_reason, confidence_score, photo_url,
  device_message, processed_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
			ev.ID, deviceID, ev.BranchID, memberID, staffID, string(ev.Type),
			granted, ev.DenialReason, confidence, ev.PhotoURL,
			ev.DeviceMessage, ev.ProcessedAt.UTC().UnixMilli(),
		); err != nil {
			return fmt.Errorf("Append access event: %w", err)
		}
		return nil
	})
}

func (s *AccessEventStore) Fetch(ctx context.Context, f types.EventFilter) ([]types.AccessEvent, error) {
	q := `
SELECT e.event_id, e.device_id, e.branch_id, e.member_id, e.staff_id,
       e.event_type, e.access_granted, e.denial_reason, e.confidence_score,
       e.photo_url, e.device_message, e.processed_at_ms,
       COALESCE(d.device_name, ''),
       COALESCE(m.name, COALESCE(st.name, ''))
FROM access_events e
LEFT JOIN devices d ON d.device_id = e.device_id
LEFT JOIN members m ON m.member_id = e.member_id
LEFT JOIN staff st  ON st.staff_id = e.staff_id
WHERE 1=1`
	var args []any

	if f.BranchID != "" {
		q += " AND e.branch_id = ?"
		args = append(args, f.BranchID)
	}
	if f.EventType != "" {
		q += " AND e.event_type = ?"
		args = append(args, string(f.EventType))
	}
	if f.AccessGranted != nil {
		g := 0
		if *f.AccessGranted {
			g = 1
		}
		q += " AND e.access_granted = ?"
		args = append(args, g)
	}
	if f.From != nil {
		q += " AND e.processed_at_ms >= ?"
		args = append(args, f.From.UTC().UnixMilli())
	}
	if f.To != nil {
		q += " AND e.processed_at_ms <= ?"
		args = append(args, f.To.UTC().UnixMilli())
	}

	q += " ORDER BY e.processed_at_ms DESC"

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	q += " LIMIT ?;"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("Fetch access events: %w", err)
	}
	defer rows.Close()

	var out []types.AccessEvent
	for rows.Next() {
		var ev types.AccessEvent
		var deviceID, memberID, staffID sql.NullString
		var granted int
		var confidence sql.NullFloat64
		var processedMs int64

		if err := rows.Scan(
			&ev.ID, &deviceID, &ev.BranchID, &memberID, &staffID,
			&ev.Type, &granted, &ev.DenialReason, &confidence,
			&ev.PhotoURL, &ev.DeviceMessage, &processedMs,
			&ev.DeviceName, &ev.PersonName,
		); err != nil {
			return nil, fmt.Errorf("scan access event: %w", err)
		}

		ev.DeviceID = strPtr(deviceID)
		ev.MemberID = strPtr(memberID)
		ev.StaffID = strPtr(staffID)
		ev.AccessGranted = granted == 1
		if confidence.Valid {
			c := confidence.Float64
			ev.ConfidenceScore = &c
		}
		ev.ProcessedAt = time.UnixMilli(processedMs).UTC()
		out = append(out, ev)
	}
	return out, rows.Err()
}
