package sqlite

import (
	"database/sql"
	"time"
)

// msToTime converts a nullable ms-epoch column to a *time.Time.
func msToTime(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}

// timeToMS converts an optional time to a nullable ms-epoch value.
func timeToMS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().UnixMilli()
}

func strPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
