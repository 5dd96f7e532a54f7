package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fitaccess/gymgate/internal/gymgate/store"
	"github.com/fitaccess/gymgate/internal/gymgate/types"
	"github.com/fitaccess/gymgate/internal/logging"
)

// defaultRelayDelay is the relay-open duration used when neither the
// request nor the device specifies one.
const defaultRelayDelay = 5

// DeviceRegistry owns the device inventory: registration, metadata
// updates and lookups. Liveness is not writable from here.
type DeviceRegistry struct {
	devices  store.DeviceStore
	validate *validator.Validate
}

func NewDeviceRegistry(ds store.DeviceStore) *DeviceRegistry {
	return &DeviceRegistry{
		devices:  ds,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (r *DeviceRegistry) Register(ctx context.Context, req types.NewDevice) (types.Device, error) {
	if err := r.validate.Struct(req); err != nil {
		return types.Device{}, fmt.Errorf("invalid device: %w", err)
	}

	d := types.Device{
		ID:           uuid.NewString(),
		BranchID:     strings.TrimSpace(req.BranchID),
		Name:         strings.TrimSpace(req.Name),
		IPAddress:    strings.TrimSpace(req.IPAddress),
		Type:         req.Type,
		Model:        req.Model,
		SerialNumber: req.SerialNumber,
		RelayMode:    req.RelayMode,
		RelayDelay:   req.RelayDelay,
		Config:       req.Config,
	}
	if d.Type == "" {
		d.Type = types.DeviceTypeTurnstile
	}
	if d.RelayDelay <= 0 {
		d.RelayDelay = defaultRelayDelay
	}

	if err := r.devices.Create(ctx, d); err != nil {
		return types.Device{}, err
	}

	logging.Info().
		Str("device_id", d.ID).
		Str("branch_id", d.BranchID).
		Str("device_type", string(d.Type)).
		Msg("device registered")

	return r.devices.Get(ctx, d.ID)
}

func (r *DeviceRegistry) Update(ctx context.Context, id string, upd types.DeviceUpdate) (types.Device, error) {
	if upd.Type != nil {
		switch *upd.Type {
		case types.DeviceTypeTurnstile, types.DeviceTypeFaceTerminal, types.DeviceTypeOther:
		default:
			return types.Device{}, fmt.Errorf("%w %q", ErrInvalidDeviceType, *upd.Type)
		}
	}
	return r.devices.Update(ctx, id, upd)
}

func (r *DeviceRegistry) Delete(ctx context.Context, id string) error {
	if err := r.devices.Delete(ctx, id); err != nil {
		return err
	}
	logging.Info().Str("device_id", id).Msg("device deleted")
	return nil
}

func (r *DeviceRegistry) Get(ctx context.Context, id string) (types.Device, error) {
	return r.devices.Get(ctx, id)
}

func (r *DeviceRegistry) List(ctx context.Context, branchID string) ([]types.Device, error) {
	return r.devices.List(ctx, branchID)
}

// FaceTerminals lists the devices biometric sync fans out to.
func (r *DeviceRegistry) FaceTerminals(ctx context.Context, branchID string) ([]types.Device, error) {
	return r.devices.ListByType(ctx, branchID, types.DeviceTypeFaceTerminal)
}

// MarkOffline flips stale devices offline. Called by the liveness
// sweeper; exposed here so the sweeper stays storage-agnostic.
func (r *DeviceRegistry) MarkOffline(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.devices.MarkOfflineStale(ctx, cutoff)
}
