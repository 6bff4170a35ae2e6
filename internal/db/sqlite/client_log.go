package sqlite

import (
	"context"
	"fmt"

	"github.com/javierhorta/mashi/internal/db"
)

func (c *sqliteClient) AppendModerationLog(ctx context.Context, entry *db.ModerationLogEntry) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO moderation_log (action, target_user_id, created_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`, entry.Action, entry.TargetUserID)
	if err != nil {
		return fmt.Errorf("failed to append moderation log: %w", err)
	}
	return nil
}
