package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/fitaccess/gymgate/internal/gymgate/service"
	"github.com/fitaccess/gymgate/internal/gymgate/store"
	"github.com/fitaccess/gymgate/internal/logging"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

// decodeJSON decodes a request body, rejecting unknown fields so device
// firmware bugs surface as 400s instead of silently dropped fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// writeServiceError maps service and store errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors

	switch {
	case errors.Is(err, store.ErrDeviceNotFound):
		writeError(w, http.StatusNotFound, "device_not_found", "device not found")
	case errors.Is(err, store.ErrCommandNotFound):
		writeError(w, http.StatusNotFound, "command_not_found", "command not found")
	case errors.Is(err, store.ErrSyncItemNotFound):
		writeError(w, http.StatusNotFound, "sync_item_not_found", "sync item not found")
	case errors.Is(err, store.ErrMemberNotFound):
		writeError(w, http.StatusNotFound, "member_not_found", "member not found")
	case errors.Is(err, store.ErrStaffNotFound):
		writeError(w, http.StatusNotFound, "staff_not_found", "staff not found")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, service.ErrInvalidDeviceID):
		writeError(w, http.StatusBadRequest, "invalid_device_id", err.Error())
	case errors.Is(err, service.ErrInvalidDeviceType), errors.As(err, &verrs):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		logging.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
	}
}
