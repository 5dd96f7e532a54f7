// Package transport delivers dispatched commands to devices.
package transport

import (
	"context"

	"github.com/fitaccess/gymgate/internal/gymgate/types"
	"github.com/fitaccess/gymgate/internal/logging"
)

// CommandTransport pushes a command toward its device. A nil error means
// the command was handed to the delivery channel, not that the device
// executed it; execution is reported by the device's own ack callback.
type CommandTransport interface {
	PublishCommand(ctx context.Context, cmd types.DeviceCommand) error
}

// LogTransport is the dev fallback used when MQTT is disabled. It logs
// the command and reports success so the dispatch flow can be exercised
// without a broker.
type LogTransport struct{}

func (LogTransport) PublishCommand(_ context.Context, cmd types.DeviceCommand) error {
	logging.Info().
		Str("command_id", cmd.ID).
		Str("device_id", cmd.DeviceID).
		Str("command_type", string(cmd.Type)).
		Msg("command transport disabled, logging command only")
	return nil
}
