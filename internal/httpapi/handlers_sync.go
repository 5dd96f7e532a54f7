package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fitaccess/gymgate/internal/gymgate/types"
)

func (s *Server) handleQueueMemberSync(w http.ResponseWriter, r *http.Request) {
	s.queueSync(w, r, types.PersonKindMember)
}

func (s *Server) handleQueueStaffSync(w http.ResponseWriter, r *http.Request) {
	s.queueSync(w, r, types.PersonKindStaff)
}

func (s *Server) queueSync(w http.ResponseWriter, r *http.Request, kind types.PersonKind) {
	var req types.QueueSyncRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}

	personID := chi.URLParam(r, "personID")
	var result types.QueueSyncResult
	var err error
	if kind == types.PersonKindStaff {
		result, err = s.syncQueue.QueueStaff(r.Context(), personID, req)
	} else {
		result, err = s.syncQueue.QueueMember(r.Context(), personID, req)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	status := http.StatusAccepted
	if !result.Success {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, result)
}

func (s *Server) handleRemoveMemberSync(w http.ResponseWriter, r *http.Request) {
	s.removeSync(w, r, types.PersonKindMember)
}

func (s *Server) handleRemoveStaffSync(w http.ResponseWriter, r *http.Request) {
	s.removeSync(w, r, types.PersonKindStaff)
}

func (s *Server) removeSync(w http.ResponseWriter, r *http.Request, kind types.PersonKind) {
	// Optional body scoping removal to specific devices.
	var req struct {
		DeviceIDs []string `json:"device_ids"`
	}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json", err.Error())
			return
		}
	}

	result, err := s.syncQueue.Remove(r.Context(), kind, chi.URLParam(r, "personID"), req.DeviceIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, result)
}

func (s *Server) handleSyncPending(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	deviceID := q.Get("device_id")
	if deviceID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "device_id is required")
		return
	}

	claim := false
	if v := q.Get("claim"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "claim must be a boolean")
			return
		}
		claim = b
	}

	items, err := s.syncQueue.PendingItems(r.Context(), deviceID, claim)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if items == nil {
		items = []types.BiometricSyncItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "items": items})
}

func (s *Server) handleSyncComplete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Success bool   `json:"success"`
		Error   string `json:"error,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}

	item, err := s.syncQueue.Complete(r.Context(), chi.URLParam(r, "syncID"), req.Success, req.Error)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "item": item})
}
