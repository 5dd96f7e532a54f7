package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fitaccess/gymgate/internal/gymgate/store"
	"github.com/fitaccess/gymgate/internal/gymgate/types"
)

type AttendanceStore struct {
	mu   sync.RWMutex
	rows map[types.PersonKind][]types.Attendance
}

func NewAttendanceStore() *AttendanceStore {
	return &AttendanceStore{rows: make(map[types.PersonKind][]types.Attendance)}
}

func (s *AttendanceStore) OpenRow(_ context.Context, kind types.PersonKind, row types.Attendance) error {
	if row.CheckIn.IsZero() {
		row.CheckIn = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.rows[kind] {
		if r.PersonID == row.PersonID && r.CheckOut == nil {
			return store.ErrOpenAttendanceExists
		}
	}
	s.rows[kind] = append(s.rows[kind], row)
	return nil
}

func (s *AttendanceStore) FindOpen(_ context.Context, kind types.PersonKind, personID string) (types.Attendance, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found types.Attendance
	var ok bool
	for _, r := range s.rows[kind] {
		if r.PersonID != personID || r.CheckOut != nil {
			continue
		}
		if !ok || r.CheckIn.After(found.CheckIn) {
			found = r
			ok = true
		}
	}
	return found, ok, nil
}

func (s *AttendanceStore) CloseRow(_ context.Context, kind types.PersonKind, rowID string, checkOut time.Time, durationMinutes int) error {
	if checkOut.IsZero() {
		checkOut = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.rows[kind]
	for i, r := range rows {
		if r.ID != rowID || r.CheckOut != nil {
			continue
		}
		out := checkOut.UTC()
		d := durationMinutes
		rows[i].CheckOut = &out
		rows[i].DurationMinutes = &d
		return nil
	}
	return fmt.Errorf("CloseRow: no open row %q", rowID)
}
