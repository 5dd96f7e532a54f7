package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fitaccess/gymgate/internal/gymgate/types"
)

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := types.EventFilter{
		BranchID:  q.Get("branch_id"),
		EventType: types.EventType(q.Get("event_type")),
	}
	if v := q.Get("granted"); v != "" {
		granted, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "granted must be a boolean")
			return
		}
		f.AccessGranted = &granted
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "from must be RFC3339")
			return
		}
		f.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "to must be RFC3339")
			return
		}
		f.To = &t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer")
			return
		}
		f.Limit = n
	}

	events, err := s.accessLog.Fetch(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if events == nil {
		events = []types.AccessEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "events": events})
}
