// Package httpapi exposes the device-facing and staff-facing HTTP
// surface, plus the realtime websocket endpoints.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fitaccess/gymgate/internal/config"
	"github.com/fitaccess/gymgate/internal/gymgate/service"
	"github.com/fitaccess/gymgate/internal/logging"
	"github.com/fitaccess/gymgate/internal/realtime"
)

// Dependencies wires the server to the service layer.
type Dependencies struct {
	Config     *config.Config
	Registry   *service.DeviceRegistry
	Heartbeats *service.HeartbeatService
	Dispatcher *service.CommandDispatcher
	AccessLog  *service.AccessLog
	SyncQueue  *service.SyncQueue
	Attendance *service.AttendanceService
	Hub        *realtime.Hub
}

type Server struct {
	httpServer *http.Server
	shutdown   time.Duration

	registry   *service.DeviceRegistry
	heartbeats *service.HeartbeatService
	dispatcher *service.CommandDispatcher
	accessLog  *service.AccessLog
	syncQueue  *service.SyncQueue
	attendance *service.AttendanceService
	hub        *realtime.Hub
	jwt        *JWTManager
}

func NewServer(d Dependencies) *Server {
	s := &Server{
		shutdown:   d.Config.Server.ShutdownTimeout,
		registry:   d.Registry,
		heartbeats: d.Heartbeats,
		dispatcher: d.Dispatcher,
		accessLog:  d.AccessLog,
		syncQueue:  d.SyncQueue,
		attendance: d.Attendance,
		hub:        d.Hub,
		jwt:        NewJWTManager(d.Config.Auth.JWTSecret),
	}

	s.httpServer = &http.Server{
		Addr:              d.Config.Server.Addr,
		Handler:           s.router(d.Config),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) router(cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Device-facing endpoints. Unauthenticated but per-IP rate
		// limited; terminals authenticate implicitly by knowing their
		// registered device ID.
		r.Group(func(r chi.Router) {
			r.Use(httprate.Limit(
				cfg.Server.DeviceRateLimit,
				cfg.Server.DeviceRateLimitWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
			))

			r.Post("/device-heartbeat", s.handleHeartbeat)
			r.Post("/device-commands/{commandID}/ack", s.handleCommandAck)
			r.Get("/biometric-sync/pending", s.handleSyncPending)
			r.Post("/biometric-sync/{syncID}/complete", s.handleSyncComplete)

			r.Post("/attendance/members/check-in", s.handleMemberCheckIn)
			r.Post("/attendance/members/check-out", s.handleMemberCheckOut)
			r.Post("/attendance/staff/check-in", s.handleStaffCheckIn)
			r.Post("/attendance/staff/check-out", s.handleStaffCheckOut)
		})

		// Staff-facing endpoints, JWT required.
		r.Group(func(r chi.Router) {
			r.Use(s.jwt.requireStaff)

			r.Post("/device-trigger-relay", s.handleTriggerRelay)
			r.Get("/device-commands/{commandID}", s.handleGetCommand)

			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)
				r.Post("/", s.handleCreateDevice)
				r.Get("/{deviceID}", s.handleGetDevice)
				r.Put("/{deviceID}", s.handleUpdateDevice)
				r.Delete("/{deviceID}", s.handleDeleteDevice)
			})

			r.Get("/access-events", s.handleListEvents)

			r.Route("/biometric-sync", func(r chi.Router) {
				r.Post("/members/{personID}", s.handleQueueMemberSync)
				r.Delete("/members/{personID}", s.handleRemoveMemberSync)
				r.Post("/staff/{personID}", s.handleQueueStaffSync)
				r.Delete("/staff/{personID}", s.handleRemoveStaffSync)
			})
		})
	})

	// Realtime endpoints authenticate via the token query parameter.
	r.Group(func(r chi.Router) {
		r.Use(s.jwt.requireStaff)
		r.Get("/ws/access-events", s.handleAccessEventsWS)
		r.Get("/ws/commands/{commandID}", s.handleCommandWS)
	})

	return r
}

// Serve runs the HTTP server until ctx is canceled, then drains it
// within the configured shutdown timeout. Shaped for suture supervision.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.shutdown
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("http server shutdown failed")
		return err
	}
	logging.Info().Msg("http server stopped")
	return ctx.Err()
}

func (s *Server) String() string { return "http-server" }

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// JWT exposes the token manager so tests and the dev seed path can mint
// tokens.
func (s *Server) JWT() *JWTManager { return s.jwt }

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"realtime_clients": s.hub.ClientCount(),
	})
}
