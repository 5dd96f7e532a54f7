package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitaccess/gymgate/internal/config"
	"github.com/fitaccess/gymgate/internal/gymgate/store/memory"
	"github.com/fitaccess/gymgate/internal/gymgate/types"
)

func TestSyncRetrier_BackoffDoublesAndCaps(t *testing.T) {
	r := NewSyncRetrier(memory.NewSyncStore(), config.SyncRetryConfig{
		MaxAttempts:  5,
		BaseInterval: 30 * time.Second,
		MaxInterval:  4 * time.Minute,
	})

	assert.Equal(t, 30*time.Second, r.backoffFor(types.BiometricSyncItem{RetryCount: 1}))
	assert.Equal(t, time.Minute, r.backoffFor(types.BiometricSyncItem{RetryCount: 2}))
	assert.Equal(t, 2*time.Minute, r.backoffFor(types.BiometricSyncItem{RetryCount: 3}))
	assert.Equal(t, 4*time.Minute, r.backoffFor(types.BiometricSyncItem{RetryCount: 4}))
	assert.Equal(t, 4*time.Minute, r.backoffFor(types.BiometricSyncItem{RetryCount: 10}))
}

func TestSyncRetrier_PassRequeuesCooledItems(t *testing.T) {
	syncs := memory.NewSyncStore()
	r := NewSyncRetrier(syncs, config.SyncRetryConfig{
		MaxAttempts:  3,
		BaseInterval: time.Minute,
		MaxInterval:  time.Hour,
	})
	ctx := context.Background()

	queue := func(id string) {
		require.NoError(t, syncs.Upsert(ctx, types.BiometricSyncItem{
			ID:         id,
			Type:       types.SyncTypeAdd,
			PersonKind: types.PersonKindMember,
			PersonID:   "person-" + id,
			DeviceID:   "face-1",
			PhotoURL:   "https://cdn.example.com/p.jpg",
		}))
	}
	queue("cooled")
	queue("fresh")
	queue("spent")

	// One failure two minutes ago: past the one-minute backoff.
	_, err := syncs.Resolve(ctx, "cooled", false, "timeout", time.Now().UTC().Add(-2*time.Minute))
	require.NoError(t, err)

	// One failure just now: still inside the backoff window.
	_, err = syncs.Resolve(ctx, "fresh", false, "timeout", time.Now().UTC())
	require.NoError(t, err)

	// At the attempt limit: left failed for operator attention.
	for i := 0; i < 3; i++ {
		_, err = syncs.Resolve(ctx, "spent", false, "timeout", time.Now().UTC().Add(-time.Hour))
		require.NoError(t, err)
	}

	r.pass(ctx)

	cooled, err := syncs.Get(ctx, "cooled")
	require.NoError(t, err)
	assert.Equal(t, types.SyncStatusPending, cooled.Status)
	assert.Equal(t, 1, cooled.RetryCount, "requeue must not reset the retry counter")
	assert.Equal(t, "timeout", cooled.ErrorMsg)

	fresh, err := syncs.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, types.SyncStatusFailed, fresh.Status)

	spent, err := syncs.Get(ctx, "spent")
	require.NoError(t, err)
	assert.Equal(t, types.SyncStatusFailed, spent.Status)
	assert.Equal(t, 3, spent.RetryCount)
}
