package store

import (
	"context"
	"errors"

	"github.com/fitaccess/gymgate/internal/gymgate/types"
)

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrStaffNotFound  = errors.New("staff not found")
)

// PersonStore reads the member/staff slices this subsystem depends on and
// owns their biometric enrollment fields. The rest of the member and
// employee records belong to the CRM surface and are not touched here.
type PersonStore interface {
	GetMember(ctx context.Context, id string) (types.Member, error)
	GetStaff(ctx context.Context, id string) (types.Staff, error)

	// SetBiometric writes the person's reference photo and enrollment
	// flag. Queuing sets (photo, false); a confirmed device sync flips
	// enrolled to true; removal clears both.
	SetBiometric(ctx context.Context, kind types.PersonKind, personID string, photoURL string, enrolled bool) error
}
