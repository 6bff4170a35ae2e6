package bot

import (
	"context"

	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/javierhorta/mashi/internal/config"
	"github.com/javierhorta/mashi/internal/db"
)

type service struct {
	bot *api.BotAPI
	db  db.Client
	cfg config.Config
}

func NewService(bot *api.BotAPI, db db.Client, cfg config.Config) *service {
	return &service{
		bot: bot,
		db:  db,
		cfg: cfg,
	}
}

func (s *service) GetBot() *api.BotAPI {
	return s.bot
}

func (s *service) GetDB() db.Client {
	return s.db
}

func (s *service) IsOwner(user *api.User) bool {
	return user != nil && user.ID == s.cfg.OwnerID
}

func (s *service) EnsureSubscriber(ctx context.Context, user *api.User) error {
	if user == nil {
		return nil
	}
	return s.db.EnsureSubscriber(ctx, user.ID, GetUN(user))
}
