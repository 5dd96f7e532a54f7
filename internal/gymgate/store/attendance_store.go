package store

import (
	"context"
	"errors"
	"time"

	"github.com/fitaccess/gymgate/internal/gymgate/types"
)

// ErrOpenAttendanceExists is returned by OpenRow when the person already
// has an open attendance row. The partial unique index enforces the same
// invariant at the database layer, so a racing second check-in surfaces as
// this error rather than a second open row.
var ErrOpenAttendanceExists = errors.New("open attendance row already exists")

// AttendanceStore persists member and staff attendance rows.
// Member and staff attendance live in separate tables but share the
// open-row invariant, so one interface serves both via the kind argument.
type AttendanceStore interface {
	// OpenRow inserts an open attendance row (check_out unset). Returns
	// ErrOpenAttendanceExists if the person already has one.
	OpenRow(ctx context.Context, kind types.PersonKind, row types.Attendance) error

	// FindOpen returns the newest open row for the person, or ok=false.
	FindOpen(ctx context.Context, kind types.PersonKind, personID string) (types.Attendance, bool, error)

	// CloseRow sets check_out on the row and records the duration in
	// minutes.
	CloseRow(ctx context.Context, kind types.PersonKind, rowID string, checkOut time.Time, durationMinutes int) error
}
