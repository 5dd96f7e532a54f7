package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fitaccess/gymgate/internal/gymgate/store"
	"github.com/fitaccess/gymgate/internal/gymgate/types"
)

// AttendanceService validates check-ins and check-outs. Business
// rejections (expired membership, double check-in, ...) come back as
// result values with Valid/Success false, never as errors; errors are
// reserved for storage failures.
type AttendanceService struct {
	people     store.PersonStore
	attendance store.AttendanceStore
	accessLog  *AccessLog
}

func NewAttendanceService(ps store.PersonStore, as store.AttendanceStore, al *AccessLog) *AttendanceService {
	return &AttendanceService{people: ps, attendance: as, accessLog: al}
}

// CheckInMember runs the gate checks in a fixed order so the member sees
// the most fundamental problem first: unknown, wrong branch, frozen,
// expired, already inside.
func (s *AttendanceService) CheckInMember(ctx context.Context, memberID, branchID, method string, deviceID *string) (types.CheckInResult, error) {
	now := time.Now().UTC()

	member, err := s.people.GetMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			return s.rejectMember(ctx, memberID, branchID, deviceID, types.ReasonUnknownMember, "member not found")
		}
		return types.CheckInResult{}, err
	}

	if branchID != "" && member.BranchID != branchID {
		return s.rejectMember(ctx, member.ID, branchID, deviceID, types.ReasonWrongBranch, "membership belongs to another branch")
	}
	if member.IsFrozen {
		return s.rejectMember(ctx, member.ID, member.BranchID, deviceID, types.ReasonMembershipFrozen, "membership is frozen")
	}
	if member.MembershipEnd != nil && member.MembershipEnd.Before(now) {
		return s.rejectMember(ctx, member.ID, member.BranchID, deviceID, types.ReasonMembershipExpired, "membership has expired")
	}

	row := types.Attendance{
		ID:       uuid.NewString(),
		PersonID: member.ID,
		BranchID: member.BranchID,
		Method:   method,
		CheckIn:  now,
	}
	if err := s.attendance.OpenRow(ctx, types.PersonKindMember, row); err != nil {
		if errors.Is(err, store.ErrOpenAttendanceExists) {
			return s.rejectMember(ctx, member.ID, member.BranchID, deviceID, types.ReasonAlreadyCheckedIn, "already checked in")
		}
		return types.CheckInResult{}, err
	}

	memberIDCopy := member.ID
	if _, err := s.accessLog.Record(ctx, types.AccessEvent{
		DeviceID:      deviceID,
		BranchID:      member.BranchID,
		MemberID:      &memberIDCopy,
		Type:          types.EventTypeCheckIn,
		AccessGranted: true,
	}); err != nil {
		return types.CheckInResult{}, err
	}

	days := 0
	if member.MembershipEnd != nil {
		days = int(member.MembershipEnd.Sub(now).Hours() / 24)
	}

	return types.CheckInResult{
		Valid:         true,
		Success:       true,
		Message:       fmt.Sprintf("welcome, %s", member.Name),
		PlanName:      member.PlanName,
		DaysRemaining: days,
	}, nil
}

// CheckOutMember closes the member's open attendance row. A missing open
// row is a rejection value, not an error.
func (s *AttendanceService) CheckOutMember(ctx context.Context, memberID, method string, deviceID *string) (types.CheckOutResult, error) {
	return s.checkOut(ctx, types.PersonKindMember, memberID, deviceID)
}

// CheckInStaff opens a staff attendance row. Staff check-in skips the
// membership checks; only existence, branch and the open-row invariant
// apply.
func (s *AttendanceService) CheckInStaff(ctx context.Context, staffID, branchID, method string, deviceID *string) (types.CheckInResult, error) {
	now := time.Now().UTC()

	staff, err := s.people.GetStaff(ctx, staffID)
	if err != nil {
		if errors.Is(err, store.ErrStaffNotFound) {
			return s.rejectStaff(ctx, staffID, branchID, deviceID, types.ReasonUnknownMember, "staff not found")
		}
		return types.CheckInResult{}, err
	}

	if branchID != "" && staff.BranchID != branchID {
		return s.rejectStaff(ctx, staff.ID, branchID, deviceID, types.ReasonWrongBranch, "staff belongs to another branch")
	}

	row := types.Attendance{
		ID:       uuid.NewString(),
		PersonID: staff.ID,
		BranchID: staff.BranchID,
		Method:   method,
		CheckIn:  now,
	}
	if err := s.attendance.OpenRow(ctx, types.PersonKindStaff, row); err != nil {
		if errors.Is(err, store.ErrOpenAttendanceExists) {
			return s.rejectStaff(ctx, staff.ID, staff.BranchID, deviceID, types.ReasonAlreadyCheckedIn, "already checked in")
		}
		return types.CheckInResult{}, err
	}

	staffIDCopy := staff.ID
	if _, err := s.accessLog.Record(ctx, types.AccessEvent{
		DeviceID:      deviceID,
		BranchID:      staff.BranchID,
		StaffID:       &staffIDCopy,
		Type:          types.EventTypeCheckIn,
		AccessGranted: true,
	}); err != nil {
		return types.CheckInResult{}, err
	}

	return types.CheckInResult{
		Valid:   true,
		Success: true,
		Message: fmt.Sprintf("welcome, %s", staff.Name),
	}, nil
}

func (s *AttendanceService) CheckOutStaff(ctx context.Context, staffID, method string, deviceID *string) (types.CheckOutResult, error) {
	return s.checkOut(ctx, types.PersonKindStaff, staffID, deviceID)
}

func (s *AttendanceService) checkOut(ctx context.Context, kind types.PersonKind, personID string, deviceID *string) (types.CheckOutResult, error) {
	now := time.Now().UTC()

	open, ok, err := s.attendance.FindOpen(ctx, kind, personID)
	if err != nil {
		return types.CheckOutResult{}, err
	}
	if !ok {
		return types.CheckOutResult{
			Success: false,
			Message: "no open attendance record",
		}, nil
	}

	minutes := int(now.Sub(open.CheckIn).Minutes())
	if err := s.attendance.CloseRow(ctx, kind, open.ID, now, minutes); err != nil {
		return types.CheckOutResult{}, err
	}

	ev := types.AccessEvent{
		DeviceID:      deviceID,
		BranchID:      open.BranchID,
		Type:          types.EventTypeCheckOut,
		AccessGranted: true,
	}
	personIDCopy := personID
	if kind == types.PersonKindStaff {
		ev.StaffID = &personIDCopy
	} else {
		ev.MemberID = &personIDCopy
	}
	if _, err := s.accessLog.Record(ctx, ev); err != nil {
		return types.CheckOutResult{}, err
	}

	return types.CheckOutResult{
		Success:         true,
		Message:         "checked out",
		DurationMinutes: minutes,
	}, nil
}

func (s *AttendanceService) rejectMember(ctx context.Context, memberID, branchID string, deviceID *string, reason, message string) (types.CheckInResult, error) {
	ev := types.AccessEvent{
		DeviceID:     deviceID,
		BranchID:     branchID,
		Type:         types.EventTypeDenial,
		DenialReason: reason,
	}
	if reason != types.ReasonUnknownMember {
		idCopy := memberID
		ev.MemberID = &idCopy
	}
	if _, err := s.accessLog.Record(ctx, ev); err != nil {
		return types.CheckInResult{}, err
	}
	return types.CheckInResult{Valid: false, Success: false, Reason: reason, Message: message}, nil
}

func (s *AttendanceService) rejectStaff(ctx context.Context, staffID, branchID string, deviceID *string, reason, message string) (types.CheckInResult, error) {
	ev := types.AccessEvent{
		DeviceID:     deviceID,
		BranchID:     branchID,
		Type:         types.EventTypeDenial,
		DenialReason: reason,
	}
	if reason != types.ReasonUnknownMember {
		idCopy := staffID
		ev.StaffID = &idCopy
	}
	if _, err := s.accessLog.Record(ctx, ev); err != nil {
		return types.CheckInResult{}, err
	}
	return types.CheckInResult{Valid: false, Success: false, Reason: reason, Message: message}, nil
}
