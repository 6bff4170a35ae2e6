package handlers

import (
	"context"
	"fmt"
	"sync"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/javierhorta/mashi/internal/bot"
	"github.com/javierhorta/mashi/internal/classify"
	"github.com/javierhorta/mashi/internal/config"
	"github.com/javierhorta/mashi/internal/i18n"
	"github.com/javierhorta/mashi/internal/moderation"
	"github.com/javierhorta/mashi/internal/observability"
	"github.com/javierhorta/mashi/internal/reputation"
)

const (
	challengeTimeout = 3 * time.Minute
	rejectBanTimeout = 10 * time.Minute
)

type challengedUser struct {
	user               *api.User
	chatID             int64
	challengeMessageID int
	acceptUUID         string
	rejectUUID         string
	timeout            *time.Timer
}

// Gatekeeper judges everyone who crosses the temple gates: uninvited
// bots are expelled, keeper-invited bots tolerated, and humans are held
// at the door until they answer the age challenge.
type Gatekeeper struct {
	s          bot.Service
	actuator   *moderation.Actuator
	reputation *reputation.Service
	lang       string

	mutex   sync.Mutex
	joiners map[int64]map[int64]*challengedUser
}

func NewGatekeeper(s bot.Service, actuator *moderation.Actuator, reputation *reputation.Service) *Gatekeeper {
	return &Gatekeeper{
		s:          s,
		actuator:   actuator,
		reputation: reputation,
		lang:       config.Get().DefaultLanguage,
		joiners:    map[int64]map[int64]*challengedUser{},
	}
}

func (g *Gatekeeper) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (bool, error) {
	if u.CallbackQuery != nil {
		return false, g.handleChallenge(ctx, u, chat, user)
	}
	if u.Message != nil && u.Message.NewChatMembers != nil {
		if chat == nil {
			return true, nil
		}
		return true, g.handleNewChatMembers(ctx, u.Message, chat)
	}
	return true, nil
}

func (g *Gatekeeper) handleNewChatMembers(ctx context.Context, m *api.Message, chat *api.Chat) error {
	entry := g.getLogEntry().WithField("method", "handleNewChatMembers")

	for i := range m.NewChatMembers {
		joiner := &m.NewChatMembers[i]
		if joiner.ID == g.s.GetBot().Self.ID {
			continue
		}
		if joiner.IsBot {
			g.judgeBot(ctx, chat, m.From, joiner)
			continue
		}

		// A banished mortal sneaking back in before the sentence ran out.
		if g.reputation.IsBanned(ctx, joiner.ID) {
			entry.WithField("user_id", joiner.ID).Info("banned user rejoined, expelling")
			if g.actuator.BanUntil(ctx, chat.ID, joiner.ID, time.Now().Add(rejectBanTimeout)) == moderation.ResultOk {
				observability.RecordModerationAction("temp_ban")
			}
			continue
		}

		if err := g.challenge(ctx, chat, joiner); err != nil {
			entry.WithField("error", err.Error()).Error("cant issue challenge")
		}
	}
	return nil
}

// judgeBot expels bots nobody invited; bots brought by a keeper are
// tolerated with a pointed remark.
func (g *Gatekeeper) judgeBot(ctx context.Context, chat *api.Chat, adder, joiner *api.User) {
	addedByKeeper := false
	if adder != nil && !adder.IsBot {
		if isKeeper, err := g.isKeeper(chat, adder); err == nil {
			addedByKeeper = isKeeper
		}
	}

	if addedByKeeper {
		g.actuator.SendText(ctx, chat.ID, i18n.Get("A construct brought by the keepers. I will tolerate it, for now.", g.lang))
		return
	}
	if g.actuator.BanUntil(ctx, chat.ID, joiner.ID, time.Time{}) == moderation.ResultOk {
		observability.RecordModerationAction("ban")
		g.actuator.SendText(ctx, chat.ID, i18n.Get("An uninvited construct dares to cross my gates. Expelled.", g.lang))
		return
	}
	g.actuator.SendText(ctx, chat.ID, i18n.Get("I lack the power to punish here. Keepers of this temple, I summon you.", g.lang))
}

func (g *Gatekeeper) challenge(ctx context.Context, chat *api.Chat, joiner *api.User) error {
	b := g.s.GetBot()

	cu := &challengedUser{
		user:       joiner,
		chatID:     chat.ID,
		acceptUUID: uuid.New(),
		rejectUUID: uuid.New(),
	}

	g.actuator.MuteUntil(ctx, chat.ID, joiner.ID, time.Now().Add(challengeTimeout))

	msg := api.NewMessage(chat.ID, fmt.Sprintf("%s. %s", bot.GetFullName(joiner), i18n.Get("Are you of age to walk these halls?", g.lang)))
	msg.ReplyMarkup = api.NewInlineKeyboardMarkup(
		api.NewInlineKeyboardRow(
			api.NewInlineKeyboardButtonData(i18n.Get("I am of age", g.lang), cu.acceptUUID),
			api.NewInlineKeyboardButtonData(i18n.Get("I am not", g.lang), cu.rejectUUID),
		),
	)
	sent, err := b.Send(msg)
	if err != nil {
		return errors.WithMessage(err, "cant send challenge message")
	}
	cu.challengeMessageID = sent.MessageID
	cu.timeout = time.AfterFunc(challengeTimeout, func() {
		g.expire(cu)
	})

	g.mutex.Lock()
	defer g.mutex.Unlock()
	if g.joiners[chat.ID] == nil {
		g.joiners[chat.ID] = map[int64]*challengedUser{}
	}
	g.joiners[chat.ID][joiner.ID] = cu
	return nil
}

func (g *Gatekeeper) handleChallenge(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) error {
	entry := g.getLogEntry().WithField("method", "handleChallenge")
	b := g.s.GetBot()
	cq := u.CallbackQuery
	if chat == nil || user == nil {
		return nil
	}
	entry.WithFields(log.Fields{"data": cq.Data, "user": bot.GetUN(user)}).Debug("callback query data")

	cu := g.findByToken(chat.ID, cq.Data)
	if cu == nil {
		if _, err := b.Request(api.NewCallback(cq.ID, "")); err != nil {
			entry.WithField("error", err.Error()).Debug("cant answer stray callback")
		}
		return nil
	}

	if cu.user.ID != user.ID {
		if _, err := b.Request(api.NewCallback(cq.ID, i18n.Get("This judgement is not yours.", g.lang))); err != nil {
			return errors.WithMessage(err, "cant answer callback")
		}
		return nil
	}

	g.forget(cu)
	g.actuator.DeleteMessage(ctx, cu.chatID, cu.challengeMessageID, 0)

	switch cq.Data {
	case cu.acceptUUID:
		if _, err := b.Request(api.NewCallback(cq.ID, i18n.Get("The temple accepts your word. Enter.", g.lang))); err != nil {
			entry.WithField("error", err.Error()).Debug("cant answer callback")
		}
		g.actuator.Unmute(ctx, cu.chatID, cu.user.ID)
		g.actuator.SendText(ctx, cu.chatID, fmt.Sprintf(
			"Salve, mortal %s. Tus señales te delatan: caminas entre nosotros desde %s. %s",
			bot.GetFullName(cu.user),
			classify.EstimateAccountAge(cu.user.ID),
			i18n.Get("The temple accepts your word. Enter.", g.lang),
		))
	case cu.rejectUUID:
		if _, err := b.Request(api.NewCallbackWithAlert(cq.ID, i18n.Get("The gates close before you.", g.lang))); err != nil {
			entry.WithField("error", err.Error()).Debug("cant answer callback")
		}
		if g.actuator.BanUntil(ctx, cu.chatID, cu.user.ID, time.Now().Add(rejectBanTimeout)) == moderation.ResultOk {
			observability.RecordModerationAction("temp_ban")
		}
	}
	return nil
}

// expire kicks a joiner who never answered the challenge.
func (g *Gatekeeper) expire(cu *challengedUser) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	g.forget(cu)
	g.actuator.DeleteMessage(ctx, cu.chatID, cu.challengeMessageID, 0)
	if g.actuator.BanUntil(ctx, cu.chatID, cu.user.ID, time.Now().Add(rejectBanTimeout)) == moderation.ResultOk {
		observability.RecordModerationAction("temp_ban")
	}
}

func (g *Gatekeeper) findByToken(chatID int64, token string) *challengedUser {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	for _, cu := range g.joiners[chatID] {
		if cu.acceptUUID == token || cu.rejectUUID == token {
			return cu
		}
	}
	return nil
}

func (g *Gatekeeper) forget(cu *challengedUser) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if cu.timeout != nil {
		cu.timeout.Stop()
	}
	delete(g.joiners[cu.chatID], cu.user.ID)
}

func (g *Gatekeeper) isKeeper(chat *api.Chat, user *api.User) (bool, error) {
	if g.s.IsOwner(user) {
		return true, nil
	}
	chatMember, err := g.s.GetBot().GetChatMember(api.GetChatMemberConfig{
		ChatConfigWithUser: api.ChatConfigWithUser{
			UserID: user.ID,
			ChatConfig: api.ChatConfig{
				ChatID: chat.ID,
			},
		},
	})
	if err != nil {
		return false, errors.New("cant get chat member")
	}
	return chatMember.IsCreator() || chatMember.IsAdministrator(), nil
}

func (g *Gatekeeper) getLogEntry() *log.Entry {
	return log.WithField("object", "Gatekeeper")
}
