package sqlite

import (
	"context"
	"fmt"
)

func (c *sqliteClient) EnsureSubscriber(ctx context.Context, chatID int64, username string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	_, err := c.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO subscribers (chat_id, username, joined_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`, chatID, username)
	if err != nil {
		return fmt.Errorf("failed to ensure subscriber %d: %w", chatID, err)
	}
	return nil
}

func (c *sqliteClient) IsSubscriber(ctx context.Context, chatID int64) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var count int
	if err := c.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM subscribers WHERE chat_id = ?`, chatID); err != nil {
		return false, fmt.Errorf("failed to check subscriber %d: %w", chatID, err)
	}
	return count > 0, nil
}
