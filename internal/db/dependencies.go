package db

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

type Client interface {
	Close() error

	// GetReputation returns nil without error when the user has no record
	// yet; absence is a valid default, not a fetch failure.
	GetReputation(ctx context.Context, userID int64) (*UserReputation, error)
	UpsertReputation(ctx context.Context, rep *UserReputation) error

	GetWarning(ctx context.Context, userID int64) (*UserWarning, error)
	UpsertWarning(ctx context.Context, warning *UserWarning) error

	AppendModerationLog(ctx context.Context, entry *ModerationLogEntry) error

	EnsureSubscriber(ctx context.Context, chatID int64, username string) error
	IsSubscriber(ctx context.Context, chatID int64) (bool, error)
}
