package service

import (
	"context"
	"time"

	"github.com/fitaccess/gymgate/internal/config"
	"github.com/fitaccess/gymgate/internal/gymgate/store"
	"github.com/fitaccess/gymgate/internal/logging"
	"github.com/fitaccess/gymgate/internal/metrics"
)

// LivenessSweeper periodically marks devices offline once their last
// heartbeat falls outside the TTL. Devices never report going offline;
// silence is the only signal, and this loop is what turns silence into
// is_online=false.
//
// A TTL of 0 disables the sweeper.
type LivenessSweeper struct {
	devices  store.DeviceStore
	ttl      time.Duration
	interval time.Duration
}

func NewLivenessSweeper(ds store.DeviceStore, cfg config.LivenessConfig) *LivenessSweeper {
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &LivenessSweeper{
		devices:  ds,
		ttl:      cfg.OfflineTTL,
		interval: interval,
	}
}

// Serve runs the sweep loop until ctx is canceled. An immediate sweep on
// startup clears any backlog from downtime.
func (s *LivenessSweeper) Serve(ctx context.Context) error {
	if s.ttl <= 0 {
		logging.Info().Msg("liveness sweeper disabled (offline_ttl=0)")
		<-ctx.Done()
		return ctx.Err()
	}

	logging.Info().
		Dur("offline_ttl", s.ttl).
		Dur("sweep_interval", s.interval).
		Msg("liveness sweeper started")

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *LivenessSweeper) String() string { return "liveness-sweeper" }

func (s *LivenessSweeper) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.ttl)
	changed, err := s.devices.MarkOfflineStale(ctx, cutoff)
	if err != nil {
		logging.Error().Err(err).Msg("liveness sweep failed")
		return
	}
	if changed > 0 {
		metrics.RecordDevicesMarkedOffline(changed)
		logging.Info().
			Int64("devices", changed).
			Time("cutoff", cutoff).
			Msg("marked stale devices offline")
	}
}
