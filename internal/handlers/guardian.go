package handlers

import (
	"context"
	"strings"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/javierhorta/mashi/internal/adapters"
	"github.com/javierhorta/mashi/internal/adapters/llm"
	"github.com/javierhorta/mashi/internal/bot"
	"github.com/javierhorta/mashi/internal/config"
	"github.com/javierhorta/mashi/internal/engine"
	"github.com/javierhorta/mashi/internal/i18n"
	"github.com/javierhorta/mashi/internal/moderation"
	"github.com/javierhorta/mashi/internal/observability"
)

const personaName = "Mashi"

// Guardian runs every plain group message through the decision engine
// and carries out its verdict: penalties and notices first, then the
// in-character reply. Generation failures never leave an owed reply
// unanswered; a canned line from the matching pool goes out instead.
type Guardian struct {
	s        bot.Service
	engine   *engine.Engine
	actuator *moderation.Actuator
	history  *engine.ConversationContext
	llm      adapters.LLM
	cfg      config.Config
}

func NewGuardian(s bot.Service, eng *engine.Engine, actuator *moderation.Actuator, history *engine.ConversationContext, llmAPI adapters.LLM) *Guardian {
	return &Guardian{
		s:        s,
		engine:   eng,
		actuator: actuator,
		history:  history,
		llm:      llmAPI,
		cfg:      config.Get(),
	}
}

func (g *Guardian) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (bool, error) {
	if chat == nil || user == nil {
		return true, nil
	}
	m := u.Message
	switch {
	case
		m == nil,
		m.Text == "",
		m.IsCommand(),
		user.IsBot:
		return true, nil
	}

	done := observability.StartMessageProcessing()
	defer done("processed")

	ev := engine.Event{
		ChatID:        chat.ID,
		UserID:        user.ID,
		DisplayName:   bot.GetFullName(user),
		Text:          m.Text,
		At:            time.Unix(int64(m.Date), 0),
		IsOwner:       g.s.IsOwner(user),
		ReplyToBot:    g.isReplyToSelf(m),
		ForwardedFrom: forwardOriginName(m),
	}

	decision := g.engine.Decide(ctx, ev)
	g.history.Record(chat.ID, ev.DisplayName, ev.Text)

	if decision.MuteFor > 0 {
		g.punish(ctx, chat.ID, user.ID, decision)
		return false, nil
	}

	if decision.WasBanned {
		g.punish(ctx, chat.ID, user.ID, decision)
	} else if decision.WarnedCount > 0 {
		g.actuator.RecordWarning(ctx, user.ID)
		observability.RecordModerationAction("warn")
		if decision.Notice != "" {
			g.actuator.SendText(ctx, chat.ID, decision.Notice)
		}
	}

	reply := decision.Reply
	if reply == "" && decision.Prompt != nil {
		reply = g.generate(ctx, decision)
	}
	if reply == "" {
		return true, nil
	}

	g.actuator.SendReply(ctx, chat.ID, m.MessageID, reply)
	g.history.Record(chat.ID, personaName, reply)
	return false, nil
}

// punish applies the mute or temporary ban a decision carries. When the
// bot lacks chat privileges it asks the human administrators to step in
// instead of failing silently.
func (g *Guardian) punish(ctx context.Context, chatID, userID int64, decision engine.Decision) {
	now := time.Now()
	var result moderation.ResultKind
	var action string
	switch {
	case decision.MuteFor > 0:
		result = g.actuator.MuteUntil(ctx, chatID, userID, now.Add(decision.MuteFor))
		action = "mute"
	case decision.BanFor > 0:
		result = g.actuator.BanUntil(ctx, chatID, userID, now.Add(decision.BanFor))
		action = "temp_ban"
	default:
		return
	}

	switch result {
	case moderation.ResultOk:
		observability.RecordModerationAction(action)
	case moderation.ResultPermissionDenied:
		g.actuator.SendText(ctx, chatID, i18n.Get("I lack the power to punish here. Keepers of this temple, I summon you.", g.cfg.DefaultLanguage))
	}
	if decision.Notice != "" {
		g.actuator.SendText(ctx, chatID, decision.Notice)
	}
}

// generate asks the language model for the in-character reply, falling
// back to the category pool on any failure or empty completion.
func (g *Guardian) generate(ctx context.Context, decision engine.Decision) string {
	entry := g.getLogEntry().WithField("category", string(decision.Category))

	if g.llm == nil {
		observability.RecordLLMFallback()
		return g.engine.Fallback(decision.Category, decision.Evidence)
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.LLM.Timeout)
	defer cancel()

	resp, err := g.llm.ChatCompletion(ctx, []llm.ChatCompletionMessage{
		{Role: llm.RoleSystem, Content: decision.Prompt.System},
		{Role: llm.RoleUser, Content: decision.Prompt.UserTurn},
	})
	if err != nil {
		entry.WithField("error", err.Error()).Warn("completion failed, using fallback")
		observability.RecordLLMFallback()
		return g.engine.Fallback(decision.Category, decision.Evidence)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		entry.Warn("empty completion, using fallback")
		observability.RecordLLMFallback()
		return g.engine.Fallback(decision.Category, decision.Evidence)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content)
}

func (g *Guardian) isReplyToSelf(m *api.Message) bool {
	if m.ReplyToMessage == nil || m.ReplyToMessage.From == nil {
		return false
	}
	return m.ReplyToMessage.From.ID == g.s.GetBot().Self.ID
}

// forwardOriginName extracts a displayable origin for forwarded
// messages, so the guardian can attribute quoted words to their source
// instead of the forwarder.
func forwardOriginName(m *api.Message) string {
	origin := m.ForwardOrigin
	if origin == nil {
		return ""
	}
	switch {
	case origin.SenderUser != nil:
		return bot.GetFullName(origin.SenderUser)
	case origin.SenderUserName != "":
		return origin.SenderUserName
	case origin.SenderChat != nil:
		return origin.SenderChat.Title
	case origin.Chat != nil:
		return origin.Chat.Title
	}
	return ""
}

func (g *Guardian) getLogEntry() *log.Entry {
	return log.WithField("object", "Guardian")
}
