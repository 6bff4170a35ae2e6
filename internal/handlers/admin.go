package handlers

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/javierhorta/mashi/internal/bot"
	"github.com/javierhorta/mashi/internal/config"
	"github.com/javierhorta/mashi/internal/i18n"
	"github.com/javierhorta/mashi/internal/moderation"
	"github.com/javierhorta/mashi/internal/observability"
	"github.com/javierhorta/mashi/internal/reputation"
)

const commandMuteDuration = 1 * time.Hour

var relatos = []string{
	"Hace mil años, un mortal intentó robar el incienso del altar. Sus descendientes aún estornudan al entrar a los templos.",
	"Un emperador me ofreció su corona a cambio de la eternidad. Le di un espejo y le dije que la eternidad ya lo estaba mirando.",
	"Conocí a un monje que guardó silencio cuarenta años. Su primera palabra fue una queja sobre el clima. Los mortales no cambian.",
	"En los cimientos de este templo duerme una campana que solo suena cuando alguien dice la verdad completa. Lleva siglos muda.",
}

var chistes = []string{
	"¿Por qué los fantasmas no mienten? Porque se les ve todo. Los siglos no han mejorado mis chistes, lo sé.",
	"Un mortal me preguntó si los guardianes dormimos. Le dije que sí: con un ojo abierto y el otro juzgándote.",
	"¿Sabes qué le dijo una gárgola a otra? Nada. Llevan ochocientos años sin hablarse. Así son las familias.",
	"Me dijeron que sonriera más. Lo intenté en el año 1348. No volvió a pedírmelo nadie.",
}

// Admin handles the slash commands: subscription, flavor text, and the
// explicit moderation verbs reserved for the temple's keepers.
type Admin struct {
	s          bot.Service
	actuator   *moderation.Actuator
	reputation *reputation.Service
	lang       string
}

func NewAdmin(s bot.Service, actuator *moderation.Actuator, reputation *reputation.Service) *Admin {
	return &Admin{
		s:          s,
		actuator:   actuator,
		reputation: reputation,
		lang:       config.Get().DefaultLanguage,
	}
}

func (a *Admin) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (proceed bool, err error) {
	if chat == nil || user == nil {
		return true, nil
	}

	switch {
	case
		u.Message == nil,
		user.IsBot,
		!u.Message.IsCommand():
		return true, nil
	}
	m := u.Message

	entry := a.getLogEntry()
	entry.Trace("command:", m.Command())

	switch m.Command() {
	case "start":
		known, err := a.s.GetDB().IsSubscriber(ctx, user.ID)
		if err != nil {
			entry.WithField("error", err.Error()).Error("cant check subscriber")
		}
		if known {
			a.actuator.SendText(ctx, chat.ID, i18n.Get("You are already inscribed in the temple rolls.", a.lang))
			return false, nil
		}
		if err := a.s.EnsureSubscriber(ctx, user); err != nil {
			return false, errors.WithMessage(err, "cant ensure subscriber")
		}
		a.actuator.SendText(ctx, chat.ID, i18n.Get("The temple gates are open, mortal. Speak and be judged.", a.lang))
		return false, nil

	case "relato":
		a.actuator.SendReply(ctx, chat.ID, m.MessageID, relatos[rand.Intn(len(relatos))])
		return false, nil

	case "chiste":
		a.actuator.SendReply(ctx, chat.ID, m.MessageID, chistes[rand.Intn(len(chistes))])
		return false, nil

	case "purificar":
		// Purging messages is the master's prerogative alone.
		if !a.s.IsOwner(user) {
			a.actuator.SendReply(ctx, chat.ID, m.MessageID, i18n.Get("The temple only heeds its master.", a.lang))
			return false, nil
		}
		return false, a.purge(ctx, chat, m)

	case "advertir":
		return a.moderate(ctx, chat, user, m, a.warn)

	case "silenciar":
		return a.moderate(ctx, chat, user, m, a.mute)

	case "desterrar":
		return a.moderate(ctx, chat, user, m, a.banish)

	case "perdonar":
		return a.moderate(ctx, chat, user, m, a.pardon)

	case "reputacion":
		a.report(ctx, chat, user, m)
		return false, nil
	}

	entry.Trace("unknown command")
	return true, nil
}

func (a *Admin) purge(ctx context.Context, chat *api.Chat, m *api.Message) error {
	if m.ReplyToMessage == nil {
		a.actuator.SendReply(ctx, chat.ID, m.MessageID, i18n.Get("Reply to a message to purge it.", a.lang))
		return nil
	}
	target := m.ReplyToMessage
	var targetUserID int64
	if target.From != nil {
		targetUserID = target.From.ID
	}
	switch a.actuator.DeleteMessage(ctx, chat.ID, target.MessageID, targetUserID) {
	case moderation.ResultOk:
		observability.RecordModerationAction("delete")
		a.actuator.DeleteMessage(ctx, chat.ID, m.MessageID, 0)
		a.actuator.SendText(ctx, chat.ID, i18n.Get("It is done. The temple is cleaner.", a.lang))
	case moderation.ResultPermissionDenied:
		a.actuator.SendText(ctx, chat.ID, i18n.Get("The purge failed. My chains bind me.", a.lang))
	}
	return nil
}

// moderate runs a keeper-only verb against the user of the replied-to
// message, after checking the issuer can restrict members.
func (a *Admin) moderate(ctx context.Context, chat *api.Chat, user *api.User, m *api.Message, verb func(ctx context.Context, chat *api.Chat, target *api.User) error) (bool, error) {
	isKeeper, err := a.canRestrict(chat, user)
	if err != nil {
		return true, err
	}
	if !isKeeper {
		a.actuator.SendReply(ctx, chat.ID, m.MessageID, i18n.Get("The temple only heeds its master.", a.lang))
		return false, nil
	}
	if m.ReplyToMessage == nil || m.ReplyToMessage.From == nil {
		a.actuator.SendReply(ctx, chat.ID, m.MessageID, i18n.Get("Name a mortal by replying to their message.", a.lang))
		return false, nil
	}
	return false, verb(ctx, chat, m.ReplyToMessage.From)
}

func (a *Admin) warn(ctx context.Context, chat *api.Chat, target *api.User) error {
	count, wasBanned, err := a.reputation.AddWarning(ctx, target.ID, bot.GetFullName(target), "advertencia de un guardián humano")
	if err != nil {
		return errors.WithMessage(err, "cant record warning")
	}
	a.actuator.RecordWarning(ctx, target.ID)
	observability.RecordModerationAction("warn")

	if wasBanned {
		if a.actuator.BanUntil(ctx, chat.ID, target.ID, time.Now().Add(config.Get().Warnings.BanDuration)) == moderation.ResultOk {
			observability.RecordModerationAction("temp_ban")
		}
		a.actuator.SendText(ctx, chat.ID, i18n.Get("The judged has been cast out.", a.lang))
		return nil
	}
	a.actuator.SendText(ctx, chat.ID, fmt.Sprintf("%s (%d)", i18n.Get("The mark has been recorded.", a.lang), count))
	return nil
}

func (a *Admin) mute(ctx context.Context, chat *api.Chat, target *api.User) error {
	switch a.actuator.MuteUntil(ctx, chat.ID, target.ID, time.Now().Add(commandMuteDuration)) {
	case moderation.ResultOk:
		observability.RecordModerationAction("mute")
		a.actuator.SendText(ctx, chat.ID, i18n.Get("Silence falls upon the judged.", a.lang))
	case moderation.ResultPermissionDenied:
		a.actuator.SendText(ctx, chat.ID, i18n.Get("I lack the power to punish here. Keepers of this temple, I summon you.", a.lang))
	}
	return nil
}

func (a *Admin) banish(ctx context.Context, chat *api.Chat, target *api.User) error {
	switch a.actuator.BanUntil(ctx, chat.ID, target.ID, time.Time{}) {
	case moderation.ResultOk:
		observability.RecordModerationAction("ban")
		a.actuator.SendText(ctx, chat.ID, i18n.Get("The judged has been cast out.", a.lang))
	case moderation.ResultPermissionDenied:
		a.actuator.SendText(ctx, chat.ID, i18n.Get("I lack the power to punish here. Keepers of this temple, I summon you.", a.lang))
	}
	return nil
}

func (a *Admin) pardon(ctx context.Context, chat *api.Chat, target *api.User) error {
	switch a.actuator.Unban(ctx, chat.ID, target.ID) {
	case moderation.ResultOk:
		observability.RecordModerationAction("unban")
		a.actuator.SendText(ctx, chat.ID, i18n.Get("The temple forgives. The gates reopen.", a.lang))
	case moderation.ResultPermissionDenied:
		a.actuator.SendText(ctx, chat.ID, i18n.Get("I lack the power to punish here. Keepers of this temple, I summon you.", a.lang))
	}
	return nil
}

func (a *Admin) report(ctx context.Context, chat *api.Chat, user *api.User, m *api.Message) {
	subject := user
	if m.ReplyToMessage != nil && m.ReplyToMessage.From != nil {
		subject = m.ReplyToMessage.From
	}

	rep := a.reputation.Get(ctx, subject.ID)
	text := fmt.Sprintf("Los muros del templo guardan una reputación de %d para %s.", rep.Reputation, bot.GetFullName(subject))
	if warning, err := a.reputation.Warnings(ctx, subject.ID); err == nil && warning != nil && warning.WarningsCount > 0 {
		text += fmt.Sprintf(" Advertencias: %d.", warning.WarningsCount)
	}
	a.actuator.SendReply(ctx, chat.ID, m.MessageID, text)
}

func (a *Admin) canRestrict(chat *api.Chat, user *api.User) (bool, error) {
	if a.s.IsOwner(user) {
		return true, nil
	}
	chatMember, err := a.s.GetBot().GetChatMember(api.GetChatMemberConfig{
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
	switch {
	case
		chatMember.IsCreator(),
		chatMember.IsAdministrator() && chatMember.CanRestrictMembers:
		return true, nil
	}
	return false, nil
}

func (a *Admin) getLogEntry() *log.Entry {
	return log.WithField("object", "Admin")
}
