package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fitaccess/gymgate/internal/gymgate/store"
	"github.com/fitaccess/gymgate/internal/gymgate/types"
	"github.com/fitaccess/gymgate/internal/logging"
	"github.com/fitaccess/gymgate/internal/metrics"
	"github.com/fitaccess/gymgate/internal/realtime"
	"github.com/fitaccess/gymgate/internal/transport"
)

// CommandDispatcher issues remote actions against devices on behalf of
// staff and tracks them through the pending/sent/acknowledged/failed
// lifecycle.
type CommandDispatcher struct {
	devices   store.DeviceStore
	commands  store.CommandStore
	people    store.PersonStore
	accessLog *AccessLog
	transport transport.CommandTransport
	broadcast Broadcaster
}

func NewCommandDispatcher(
	ds store.DeviceStore,
	cs store.CommandStore,
	ps store.PersonStore,
	al *AccessLog,
	tr transport.CommandTransport,
	b Broadcaster,
) *CommandDispatcher {
	if b == nil {
		b = NopBroadcaster{}
	}
	return &CommandDispatcher{
		devices:   ds,
		commands:  cs,
		people:    ps,
		accessLog: al,
		transport: tr,
		broadcast: b,
	}
}

// TriggerRelay dispatches a relay-open command. The role check happens
// first; an unauthorized caller gets ErrForbidden and nothing is written.
// An offline device is a business rejection (Success=false), also with
// no writes.
func (d *CommandDispatcher) TriggerRelay(ctx context.Context, staffID string, req types.TriggerRelayRequest) (types.TriggerRelayResult, error) {
	staff, err := d.people.GetStaff(ctx, staffID)
	if err != nil {
		return types.TriggerRelayResult{}, err
	}
	if !staff.Role.CanTriggerDevices() {
		return types.TriggerRelayResult{}, ErrForbidden
	}

	device, err := d.devices.Get(ctx, req.DeviceID)
	if err != nil {
		return types.TriggerRelayResult{}, err
	}

	if !device.IsOnline {
		return types.TriggerRelayResult{
			Success:    false,
			Message:    "device is offline",
			DeviceID:   device.ID,
			DeviceName: device.Name,
		}, nil
	}

	duration := req.Duration
	if duration <= 0 {
		duration = device.RelayDelay
	}
	if duration <= 0 {
		duration = defaultRelayDelay
	}

	cmd := types.DeviceCommand{
		ID:       uuid.NewString(),
		DeviceID: device.ID,
		Type:     types.CommandTypeRelayOpen,
		Payload:  fmt.Sprintf(`{"duration":%d}`, duration),
		IssuedBy: staff.ID,
		Status:   types.CommandStatusPending,
	}
	if err := d.commands.Create(ctx, cmd); err != nil {
		return types.TriggerRelayResult{}, err
	}
	metrics.RecordCommandStatus(string(types.CommandStatusPending))

	staffIDCopy := staff.ID
	deviceIDCopy := device.ID
	if _, err := d.accessLog.Record(ctx, types.AccessEvent{
		DeviceID:      &deviceIDCopy,
		BranchID:      device.BranchID,
		StaffID:       &staffIDCopy,
		Type:          types.EventTypeManualTrigger,
		AccessGranted: true,
		DeviceMessage: fmt.Sprintf("relay opened remotely by %s", staff.Name),
	}); err != nil {
		logging.Error().Err(err).Str("command_id", cmd.ID).Msg("failed to record manual trigger event")
	}

	if err := d.transport.PublishCommand(ctx, cmd); err != nil {
		// The command row stays pending; the device can still pick it up
		// once the transport recovers.
		logging.Warn().Err(err).Str("command_id", cmd.ID).Msg("command publish failed")
		_ = d.commands.SetStatus(ctx, cmd.ID, types.CommandStatusPending, err.Error(), time.Time{})
	} else {
		if err := d.commands.SetStatus(ctx, cmd.ID, types.CommandStatusSent, "", time.Time{}); err != nil {
			return types.TriggerRelayResult{}, err
		}
		metrics.RecordCommandStatus(string(types.CommandStatusSent))
		d.publishStatus(ctx, cmd.ID)
	}

	return types.TriggerRelayResult{
		Success:    true,
		Message:    "relay open dispatched",
		CommandID:  cmd.ID,
		DeviceID:   device.ID,
		DeviceName: device.Name,
		Duration:   duration,
	}, nil
}

// Ack records the device's execution report and notifies the issuing
// client over the command's realtime channel.
func (d *CommandDispatcher) Ack(ctx context.Context, commandID string, ack types.CommandAck) (types.DeviceCommand, error) {
	if err := d.commands.SetStatus(ctx, commandID, ack.Status, ack.Message, time.Now().UTC()); err != nil {
		return types.DeviceCommand{}, err
	}
	metrics.RecordCommandStatus(string(ack.Status))

	cmd, err := d.commands.Get(ctx, commandID)
	if err != nil {
		return types.DeviceCommand{}, err
	}

	d.publishStatus(ctx, commandID)
	return cmd, nil
}

func (d *CommandDispatcher) Get(ctx context.Context, commandID string) (types.DeviceCommand, error) {
	return d.commands.Get(ctx, commandID)
}

func (d *CommandDispatcher) publishStatus(ctx context.Context, commandID string) {
	cmd, err := d.commands.Get(ctx, commandID)
	if err != nil {
		return
	}
	d.broadcast.Publish(realtime.Message{
		Topic: realtime.CommandTopic(cmd.ID),
		Type:  MessageTypeCommandStatus,
		Data:  cmd,
	})
}
