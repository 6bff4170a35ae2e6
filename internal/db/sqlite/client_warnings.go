package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/javierhorta/mashi/internal/db"
)

func (c *sqliteClient) GetWarning(ctx context.Context, userID int64) (*db.UserWarning, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var warning db.UserWarning
	err := c.db.GetContext(ctx, &warning, `
		SELECT user_id, display_name, warnings_count, last_warning, banned_until, ban_reason
		FROM user_warnings
		WHERE user_id = ?
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get warnings for user %d: %w", userID, err)
	}
	return &warning, nil
}

func (c *sqliteClient) UpsertWarning(ctx context.Context, warning *db.UserWarning) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	query := `
		INSERT INTO user_warnings (user_id, display_name, warnings_count, last_warning, banned_until, ban_reason)
		VALUES (:user_id, :display_name, :warnings_count, :last_warning, :banned_until, :ban_reason)
		ON CONFLICT(user_id) DO UPDATE SET
			display_name = excluded.display_name,
			warnings_count = excluded.warnings_count,
			last_warning = excluded.last_warning,
			banned_until = excluded.banned_until,
			ban_reason = excluded.ban_reason
	`
	if _, err := c.db.NamedExecContext(ctx, query, warning); err != nil {
		return fmt.Errorf("failed to upsert warnings for user %d: %w", warning.UserID, err)
	}
	return nil
}
