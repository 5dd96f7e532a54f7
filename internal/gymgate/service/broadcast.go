package service

import "github.com/fitaccess/gymgate/internal/realtime"

// Realtime message types.
const (
	MessageTypeAccessEvent   = "access_event"
	MessageTypeCommandStatus = "command_status"
)

// Broadcaster pushes realtime messages to subscribed clients. Satisfied
// by realtime.Hub; tests substitute a capture fake.
type Broadcaster interface {
	Publish(msg realtime.Message)
}

// NopBroadcaster discards messages. Used where no realtime surface is
// wired, e.g. in store-focused tests.
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(realtime.Message) {}
