package bot

import (
	"context"

	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/javierhorta/mashi/internal/db"
)

// ServiceBot defines bot-specific operations
type ServiceBot interface {
	GetBot() *api.BotAPI
}

// ServiceDB defines database-specific operations
type ServiceDB interface {
	GetDB() db.Client
}

// Service defines the core bot service interface
type Service interface {
	ServiceBot
	ServiceDB
	IsOwner(user *api.User) bool
	EnsureSubscriber(ctx context.Context, user *api.User) error
}

// Handler defines the interface for all update handlers in the system
type Handler interface {
	Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (proceed bool, err error)
}
