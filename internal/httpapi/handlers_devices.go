package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fitaccess/gymgate/internal/gymgate/types"
)

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.registry.List(r.Context(), r.URL.Query().Get("branch_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if devices == nil {
		devices = []types.Device{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "devices": devices})
}

func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req types.NewDevice
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}

	device, err := s.registry.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "device": device})
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	device, err := s.registry.Get(r.Context(), chi.URLParam(r, "deviceID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "device": device})
}

func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	var upd types.DeviceUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}

	device, err := s.registry.Update(r.Context(), chi.URLParam(r, "deviceID"), upd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "device": device})
}

func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Delete(r.Context(), chi.URLParam(r, "deviceID")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
