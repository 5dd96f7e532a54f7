package types

import "time"

// Attendance is one check-in row for a member or staff person. A row with
// CheckOut unset is "open"; at most one open row may exist per person.
type Attendance struct {
	ID              string     `json:"id"`
	PersonID        string     `json:"person_id"`
	BranchID        string     `json:"branch_id"`
	Method          string     `json:"method,omitempty"` // face, card, manual, ...
	CheckIn         time.Time  `json:"check_in"`
	CheckOut        *time.Time `json:"check_out,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
}

// CheckInResult distinguishes a business rejection (Valid=false, never an
// error) from an accepted check-in.
type CheckInResult struct {
	Valid         bool   `json:"valid"`
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	Reason        string `json:"reason,omitempty"`
	PlanName      string `json:"plan_name,omitempty"`
	DaysRemaining int    `json:"days_remaining,omitempty"`
}

// CheckOutResult reports a closed attendance row, or Success=false when no
// open row existed (a business rejection, not an error).
type CheckOutResult struct {
	Success         bool   `json:"success"`
	Message         string `json:"message,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

// Check-in rejection reasons returned in CheckInResult.Reason.
const (
	ReasonUnknownMember     = "unknown_member"
	ReasonWrongBranch       = "wrong_branch"
	ReasonMembershipFrozen  = "membership_frozen"
	ReasonMembershipExpired = "membership_expired"
	ReasonAlreadyCheckedIn  = "already_checked_in"
)
