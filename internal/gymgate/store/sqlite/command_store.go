package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/fitaccess/gymgate/internal/db"
	"github.com/fitaccess/gymgate/internal/gymgate/store"
	"github.com/fitaccess/gymgate/internal/gymgate/types"
)

type CommandStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewCommandStore(db *sql.DB, writer *dbpkg.Worker) *CommandStore {
	return &CommandStore{db: db, writer: writer}
}

func (s *CommandStore) Create(ctx context.Context, cmd types.DeviceCommand) error {
	if cmd.CreatedAt.IsZero() {
		cmd.CreatedAt = time.Now().UTC()
	}
	if cmd.Status == "" {
		cmd.Status = types.CommandStatusPending
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO device_commands(
  command_id, device_id, command_type, payload, issued_by, status,
  last_message, created_at_ms, executed_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
			cmd.ID, cmd.DeviceID, string(cmd.Type), cmd.Payload, cmd.IssuedBy,
			string(cmd.Status), cmd.LastMessage, cmd.CreatedAt.UTC().UnixMilli(),
			timeToMS(cmd.ExecutedAt),
		); err != nil {
			return fmt.Errorf("Create command: %w", err)
		}
		return nil
	})
}

func (s *CommandStore) Get(ctx context.Context, id string) (types.DeviceCommand, error) {
	var cmd types.DeviceCommand
	var createdMs int64
	var executedMs sql.NullInt64

	err := s.db.QueryRowContext(ctx, `
SELECT command_id, device_id, command_type, payload, issued_by, status,
       last_message, created_at_ms, executed_at_ms
FROM device_commands WHERE command_id = ?;
`, id).Scan(
		&cmd.ID, &cmd.DeviceID, &cmd.Type, &cmd.Payload, &cmd.IssuedBy,
		&cmd.Status, &cmd.LastMessage, &createdMs, &executedMs,
	)
	if err == sql.ErrNoRows {
		return types.DeviceCommand{}, store.ErrCommandNotFound
	}
	if err != nil {
		return types.DeviceCommand{}, fmt.Errorf("Get command: %w", err)
	}

	cmd.CreatedAt = time.UnixMilli(createdMs).UTC()
	cmd.ExecutedAt = msToTime(executedMs)
	return cmd, nil
}

func (s *CommandStore) SetStatus(ctx context.Context, id string, status types.CommandStatus, message string, executedAt time.Time) error {
	var execMs any
	if !executedAt.IsZero() {
		execMs = executedAt.UTC().UnixMilli()
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE device_commands
SET status         = ?,
    last_message   = CASE WHEN ? != '' THEN ? ELSE last_message END,
    executed_at_ms = COALESCE(?, executed_at_ms)
WHERE command_id = ?;
`, string(status), message, message, execMs, id)
		if err != nil {
			return fmt.Errorf("SetStatus command: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrCommandNotFound
		}
		return nil
	})
}
