package service

import (
	"context"
	"time"

	"github.com/fitaccess/gymgate/internal/config"
	"github.com/fitaccess/gymgate/internal/gymgate/store"
	"github.com/fitaccess/gymgate/internal/gymgate/types"
	"github.com/fitaccess/gymgate/internal/logging"
)

// SyncRetrier requeues failed sync items with exponential backoff.
// An item that failed n times waits base*2^(n-1), capped at the max
// interval, before going back to pending. Items at the attempt limit
// stay failed for operator attention.
//
// MaxAttempts of 0 disables automatic retry.
type SyncRetrier struct {
	syncs store.SyncStore
	cfg   config.SyncRetryConfig
}

func NewSyncRetrier(ss store.SyncStore, cfg config.SyncRetryConfig) *SyncRetrier {
	if cfg.BaseInterval <= 0 {
		cfg.BaseInterval = 30 * time.Second
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 30 * time.Minute
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	return &SyncRetrier{syncs: ss, cfg: cfg}
}

// Serve runs the retry loop until ctx is canceled.
func (r *SyncRetrier) Serve(ctx context.Context) error {
	if r.cfg.MaxAttempts <= 0 {
		logging.Info().Msg("sync retrier disabled (max_attempts=0)")
		<-ctx.Done()
		return ctx.Err()
	}

	logging.Info().
		Int("max_attempts", r.cfg.MaxAttempts).
		Dur("base_interval", r.cfg.BaseInterval).
		Dur("poll_interval", r.cfg.PollInterval).
		Msg("sync retrier started")

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.pass(ctx)
		}
	}
}

func (r *SyncRetrier) String() string { return "sync-retrier" }

func (r *SyncRetrier) pass(ctx context.Context) {
	now := time.Now().UTC()

	items, err := r.syncs.RetryEligible(ctx, r.cfg.MaxAttempts, now)
	if err != nil {
		logging.Error().Err(err).Msg("sync retry query failed")
		return
	}

	for _, it := range items {
		if it.ProcessedAt == nil {
			continue
		}
		if now.Sub(*it.ProcessedAt) < r.backoffFor(it) {
			continue
		}
		if err := r.syncs.Requeue(ctx, it.ID, now); err != nil {
			logging.Error().Err(err).Str("sync_id", it.ID).Msg("sync requeue failed")
			continue
		}
		logging.Info().
			Str("sync_id", it.ID).
			Str("device_id", it.DeviceID).
			Int("retry_count", it.RetryCount).
			Msg("failed sync item requeued")
	}
}

func (r *SyncRetrier) backoffFor(it types.BiometricSyncItem) time.Duration {
	d := r.cfg.BaseInterval
	for i := 1; i < it.RetryCount; i++ {
		d *= 2
		if d >= r.cfg.MaxInterval {
			return r.cfg.MaxInterval
		}
	}
	if d > r.cfg.MaxInterval {
		d = r.cfg.MaxInterval
	}
	return d
}
