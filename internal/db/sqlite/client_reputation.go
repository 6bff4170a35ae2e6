package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/javierhorta/mashi/internal/db"
)

func (c *sqliteClient) GetReputation(ctx context.Context, userID int64) (*db.UserReputation, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var rep db.UserReputation
	err := c.db.GetContext(ctx, &rep, `
		SELECT user_id, display_name, reputation, total_insults, last_insult, insult_memory, updated_at
		FROM user_reputation
		WHERE user_id = ?
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reputation for user %d: %w", userID, err)
	}
	return &rep, nil
}

func (c *sqliteClient) UpsertReputation(ctx context.Context, rep *db.UserReputation) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	query := `
		INSERT INTO user_reputation (user_id, display_name, reputation, total_insults, last_insult, insult_memory, updated_at)
		VALUES (:user_id, :display_name, :reputation, :total_insults, :last_insult, :insult_memory, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			display_name = excluded.display_name,
			reputation = excluded.reputation,
			total_insults = excluded.total_insults,
			last_insult = excluded.last_insult,
			insult_memory = excluded.insult_memory,
			updated_at = excluded.updated_at
	`
	if _, err := c.db.NamedExecContext(ctx, query, rep); err != nil {
		return fmt.Errorf("failed to upsert reputation for user %d: %w", rep.UserID, err)
	}
	return nil
}
