package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fitaccess/gymgate/internal/gymgate/store"
	"github.com/fitaccess/gymgate/internal/gymgate/types"
	"github.com/fitaccess/gymgate/internal/metrics"
	"github.com/fitaccess/gymgate/internal/realtime"
)

// AccessLog appends access decisions to the audit log and streams them
// to the branch's realtime subscribers.
type AccessLog struct {
	events    store.AccessEventStore
	broadcast Broadcaster
}

func NewAccessLog(es store.AccessEventStore, b Broadcaster) *AccessLog {
	if b == nil {
		b = NopBroadcaster{}
	}
	return &AccessLog{events: es, broadcast: b}
}

// Record persists the event and pushes it to the branch stream. The
// stored row is the source of truth; a dropped realtime message is
// recoverable from the log endpoint.
func (l *AccessLog) Record(ctx context.Context, ev types.AccessEvent) (types.AccessEvent, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.ProcessedAt.IsZero() {
		ev.ProcessedAt = time.Now().UTC()
	}

	if err := l.events.Append(ctx, ev); err != nil {
		return types.AccessEvent{}, err
	}

	metrics.RecordAccessEvent(string(ev.Type), ev.AccessGranted)

	l.broadcast.Publish(realtime.Message{
		Topic: realtime.AccessEventsTopic(ev.BranchID),
		Type:  MessageTypeAccessEvent,
		Data:  ev,
	})
	return ev, nil
}

func (l *AccessLog) Fetch(ctx context.Context, f types.EventFilter) ([]types.AccessEvent, error) {
	return l.events.Fetch(ctx, f)
}
