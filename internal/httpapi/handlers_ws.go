package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/fitaccess/gymgate/internal/logging"
	"github.com/fitaccess/gymgate/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is CORS-open; origin enforcement happens at the deployment
	// proxy like the rest of the surface.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleAccessEventsWS streams a branch's access events. A client gets
// only the branch it subscribed to; other branches' traffic never
// reaches its socket.
func (s *Server) handleAccessEventsWS(w http.ResponseWriter, r *http.Request) {
	branchID := r.URL.Query().Get("branch_id")
	if branchID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "branch_id is required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	realtime.NewClient(s.hub, conn, realtime.AccessEventsTopic(branchID)).Start()
}

// handleCommandWS streams one command's status transitions to the staff
// client that issued it.
func (s *Server) handleCommandWS(w http.ResponseWriter, r *http.Request) {
	commandID := chi.URLParam(r, "commandID")

	if _, err := s.dispatcher.Get(r.Context(), commandID); err != nil {
		writeServiceError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	realtime.NewClient(s.hub, conn, realtime.CommandTopic(commandID)).Start()
}
