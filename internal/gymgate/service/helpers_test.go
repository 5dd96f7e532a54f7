package service

import (
	"context"
	"sync"

	"github.com/fitaccess/gymgate/internal/gymgate/types"
	"github.com/fitaccess/gymgate/internal/realtime"
)

// captureBroadcaster records every published realtime message so tests
// can assert on topics and payloads.
type captureBroadcaster struct {
	mu   sync.Mutex
	msgs []realtime.Message
}

func (b *captureBroadcaster) Publish(msg realtime.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, msg)
}

func (b *captureBroadcaster) messages() []realtime.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]realtime.Message, len(b.msgs))
	copy(out, b.msgs)
	return out
}

func (b *captureBroadcaster) onTopic(topic string) []realtime.Message {
	var out []realtime.Message
	for _, m := range b.messages() {
		if m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}

// fakeTransport records published commands and optionally fails.
type fakeTransport struct {
	mu        sync.Mutex
	published []types.DeviceCommand
	err       error
}

func (t *fakeTransport) PublishCommand(_ context.Context, cmd types.DeviceCommand) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.published = append(t.published, cmd)
	return nil
}

func (t *fakeTransport) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.published)
}
