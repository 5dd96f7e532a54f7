package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fitaccess/gymgate/internal/gymgate/store"
	"github.com/fitaccess/gymgate/internal/gymgate/types"
)

type CommandStore struct {
	mu       sync.RWMutex
	commands map[string]types.DeviceCommand
}

func NewCommandStore() *CommandStore {
	return &CommandStore{commands: make(map[string]types.DeviceCommand)}
}

func (s *CommandStore) Create(_ context.Context, cmd types.DeviceCommand) error {
	if cmd.CreatedAt.IsZero() {
		cmd.CreatedAt = time.Now().UTC()
	}
	if cmd.Status == "" {
		cmd.Status = types.CommandStatusPending
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands[cmd.ID] = cmd
	return nil
}

func (s *CommandStore) Get(_ context.Context, id string) (types.DeviceCommand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cmd, ok := s.commands[id]
	if !ok {
		return types.DeviceCommand{}, store.ErrCommandNotFound
	}
	return cmd, nil
}

func (s *CommandStore) SetStatus(_ context.Context, id string, status types.CommandStatus, message string, executedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, ok := s.commands[id]
	if !ok {
		return store.ErrCommandNotFound
	}

	cmd.Status = status
	if message != "" {
		cmd.LastMessage = message
	}
	if !executedAt.IsZero() {
		t := executedAt.UTC()
		cmd.ExecutedAt = &t
	}

	s.commands[id] = cmd
	return nil
}
