package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	dbpkg "github.com/fitaccess/gymgate/internal/db"
	"github.com/fitaccess/gymgate/internal/gymgate/store"
	"github.com/fitaccess/gymgate/internal/gymgate/types"
)

type PersonStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewPersonStore(db *sql.DB, writer *dbpkg.Worker) *PersonStore {
	return &PersonStore{db: db, writer: writer}
}

func (s *PersonStore) GetMember(ctx context.Context, id string) (types.Member, error) {
	var m types.Member
	var endMs sql.NullInt64
	var frozen, enrolled int

	err := s.db.QueryRowContext(ctx, `
SELECT member_id, branch_id, name, plan_name, membership_end_ms, is_frozen,
       biometric_photo_url, biometric_enrolled
FROM members WHERE member_id = ?;
`, id).Scan(
		&m.ID, &m.BranchID, &m.Name, &m.PlanName, &endMs, &frozen,
		&m.BiometricPhotoURL, &enrolled,
	)
	if err == sql.ErrNoRows {
		return types.Member{}, store.ErrMemberNotFound
	}
	if err != nil {
		return types.Member{}, fmt.Errorf("GetMember: %w", err)
	}

	m.MembershipEnd = msToTime(endMs)
	m.IsFrozen = frozen == 1
	m.BiometricEnrolled = enrolled == 1
	return m, nil
}

func (s *PersonStore) GetStaff(ctx context.Context, id string) (types.Staff, error) {
	var st types.Staff
	var enrolled int

	err := s.db.QueryRowContext(ctx, `
SELECT staff_id, branch_id, name, role, biometric_photo_url, biometric_enrolled
FROM staff WHERE staff_id = ?;
`, id).Scan(
		&st.ID, &st.BranchID, &st.Name, &st.Role, &st.BiometricPhotoURL, &enrolled,
	)
	if err == sql.ErrNoRows {
		return types.Staff{}, store.ErrStaffNotFound
	}
	if err != nil {
		return types.Staff{}, fmt.Errorf("GetStaff: %w", err)
	}

	st.BiometricEnrolled = enrolled == 1
	return st, nil
}

func (s *PersonStore) SetBiometric(ctx context.Context, kind types.PersonKind, personID string, photoURL string, enrolled bool) error {
	table, idCol, notFound := "members", "member_id", store.ErrMemberNotFound
	if kind == types.PersonKindStaff {
		table, idCol, notFound = "staff", "staff_id", store.ErrStaffNotFound
	}

	var flag int
	if enrolled {
		flag = 1
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, fmt.Sprintf(`
UPDATE %s SET biometric_photo_url = ?, biometric_enrolled = ? WHERE %s = ?;
`, table, idCol), photoURL, flag, personID)
		if err != nil {
			return fmt.Errorf("SetBiometric: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return notFound
		}
		return nil
	})
}
