package types

import "time"

// Role is a staff authorization role. Remote device actions are limited to
// the owner/admin/manager/staff set; other roles (e.g. trainer) are
// refused before any table is touched.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
	RoleTrainer Role = "trainer"
)

// CanTriggerDevices reports whether the role may dispatch device commands.
func (r Role) CanTriggerDevices() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleManager, RoleStaff:
		return true
	}
	return false
}

// Member is the slice of the CRM member record this subsystem reads and
// writes: membership validity for check-in, and the biometric enrollment
// fields the sync queue owns.
type Member struct {
	ID                string     `json:"id"`
	BranchID          string     `json:"branch_id"`
	Name              string     `json:"name"`
	PlanName          string     `json:"plan_name"`
	MembershipEnd     *time.Time `json:"membership_end,omitempty"`
	IsFrozen          bool       `json:"is_frozen"`
	BiometricPhotoURL string     `json:"biometric_photo_url,omitempty"`
	BiometricEnrolled bool       `json:"biometric_enrolled"`
}

// Staff is the slice of the employee record this subsystem reads and
// writes: the role for command authorization and the biometric fields.
type Staff struct {
	ID                string `json:"id"`
	BranchID          string `json:"branch_id"`
	Name              string `json:"name"`
	Role              Role   `json:"role"`
	BiometricPhotoURL string `json:"biometric_photo_url,omitempty"`
	BiometricEnrolled bool   `json:"biometric_enrolled"`
}
