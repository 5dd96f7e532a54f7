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

type AttendanceStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAttendanceStore(db *sql.DB, writer *dbpkg.Worker) *AttendanceStore {
	return &AttendanceStore{db: db, writer: writer}
}

func attendanceTable(kind types.PersonKind) (table, personCol string) {
	if kind == types.PersonKindStaff {
		return "staff_attendance", "staff_id"
	}
	return "member_attendance", "member_id"
}

func (s *AttendanceStore) OpenRow(ctx context.Context, kind types.PersonKind, row types.Attendance) error {
	table, personCol := attendanceTable(kind)
	if row.CheckIn.IsZero() {
		row.CheckIn = time.Now().UTC()
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, fmt.Sprintf(`
INSERT INTO %s(attendance_id, %s, branch_id, method, check_in_ms, check_out_ms, duration_minutes)
VALUES (?, ?, ?, ?, ?, NULL, NULL);
`, table, personCol),
			row.ID, row.PersonID, row.BranchID, row.Method,
			row.CheckIn.UTC().UnixMilli(),
		)
		if err != nil {
			// The partial unique index on open rows fires here when the
			// person is already checked in.
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return store.ErrOpenAttendanceExists
			}
			return fmt.Errorf("OpenRow: %w", err)
		}
		return nil
	})
}

func (s *AttendanceStore) FindOpen(ctx context.Context, kind types.PersonKind, personID string) (types.Attendance, bool, error) {
	table, personCol := attendanceTable(kind)

	var a types.Attendance
	var checkInMs int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`
SELECT attendance_id, %s, branch_id, method, check_in_ms
FROM %s
WHERE %s = ? AND check_out_ms IS NULL
ORDER BY check_in_ms DESC
LIMIT 1;
`, personCol, table, personCol), personID).Scan(
		&a.ID, &a.PersonID, &a.BranchID, &a.Method, &checkInMs,
	)
	if err == sql.ErrNoRows {
		return types.Attendance{}, false, nil
	}
	if err != nil {
		return types.Attendance{}, false, fmt.Errorf("FindOpen: %w", err)
	}

	a.CheckIn = time.UnixMilli(checkInMs).UTC()
	return a, true, nil
}

func (s *AttendanceStore) CloseRow(ctx context.Context, kind types.PersonKind, rowID string, checkOut time.Time, durationMinutes int) error {
	table, _ := attendanceTable(kind)
	if checkOut.IsZero() {
		checkOut = time.Now().UTC()
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, fmt.Sprintf(`
UPDATE %s
SET check_out_ms = ?, duration_minutes = ?
WHERE attendance_id = ? AND check_out_ms IS NULL;
`, table), checkOut.UTC().UnixMilli(), durationMinutes, rowID)
		if err != nil {
			return fmt.Errorf("CloseRow: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("CloseRow: no open row %q", rowID)
		}
		return nil
	})
}
