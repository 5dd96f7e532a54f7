package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fitaccess/gymgate/internal/gymgate/types"
)

var ackValidate = validator.New(validator.WithRequiredStructEnabled())

func (s *Server) handleTriggerRelay(w http.ResponseWriter, r *http.Request) {
	var req types.TriggerRelayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	if req.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "device_id is required")
		return
	}

	result, err := s.dispatcher.TriggerRelay(r.Context(), staffIDFrom(r.Context()), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	status := http.StatusOK
	if !result.Success {
		// Business rejection (e.g. device offline). Nothing was written.
		status = http.StatusBadRequest
	}
	writeJSON(w, status, result)
}

func (s *Server) handleCommandAck(w http.ResponseWriter, r *http.Request) {
	var ack types.CommandAck
	if err := decodeJSON(r, &ack); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	if err := ackValidate.Struct(ack); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	cmd, err := s.dispatcher.Ack(r.Context(), chi.URLParam(r, "commandID"), ack)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "command": cmd})
}

func (s *Server) handleGetCommand(w http.ResponseWriter, r *http.Request) {
	cmd, err := s.dispatcher.Get(r.Context(), chi.URLParam(r, "commandID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "command": cmd})
}
