package httpapi

import "net/http"

// attendanceRequest is shared by the check-in and check-out endpoints.
// Business rejections ride a 200: the terminal renders the result body
// either way, and a denial is a successful validation, not a failed
// request.
type attendanceRequest struct {
	PersonID string  `json:"person_id"`
	BranchID string  `json:"branch_id,omitempty"`
	Method   string  `json:"method,omitempty"`
	DeviceID *string `json:"device_id,omitempty"`
}

func (s *Server) decodeAttendance(w http.ResponseWriter, r *http.Request) (attendanceRequest, bool) {
	var req attendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return req, false
	}
	if req.PersonID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "person_id is required")
		return req, false
	}
	if req.Method == "" {
		req.Method = "manual"
	}
	return req, true
}

func (s *Server) handleMemberCheckIn(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeAttendance(w, r)
	if !ok {
		return
	}

	result, err := s.attendance.CheckInMember(r.Context(), req.PersonID, req.BranchID, req.Method, req.DeviceID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMemberCheckOut(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeAttendance(w, r)
	if !ok {
		return
	}

	result, err := s.attendance.CheckOutMember(r.Context(), req.PersonID, req.Method, req.DeviceID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStaffCheckIn(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeAttendance(w, r)
	if !ok {
		return
	}

	result, err := s.attendance.CheckInStaff(r.Context(), req.PersonID, req.BranchID, req.Method, req.DeviceID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStaffCheckOut(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeAttendance(w, r)
	if !ok {
		return
	}

	result, err := s.attendance.CheckOutStaff(r.Context(), req.PersonID, req.Method, req.DeviceID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
