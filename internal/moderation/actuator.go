package moderation

import (
	"context"
	"strings"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/javierhorta/mashi/internal/db"
)

// ResultKind classifies the outcome of a moderation action. The engine
// decides per kind whether a human administrator must be asked to step
// in; nothing here is retried automatically.
type ResultKind string

const (
	ResultOk               ResultKind = "ok"
	ResultPermissionDenied ResultKind = "permission_denied"
	ResultNotFound         ResultKind = "not_found"
	ResultTransientFailure ResultKind = "transient_failure"
)

const msgNoPrivileges = "not enough rights"

// requester is the slice of the bot API the actuator needs.
type requester interface {
	Request(c api.Chattable) (*api.APIResponse, error)
	Send(c api.Chattable) (api.Message, error)
}

type logStore interface {
	AppendModerationLog(ctx context.Context, entry *db.ModerationLogEntry) error
}

// Actuator carries out engine decisions against the chat and records
// each action to the append-only moderation log.
type Actuator struct {
	bot   requester
	store logStore
}

func NewActuator(bot requester, store logStore) *Actuator {
	return &Actuator{bot: bot, store: store}
}

func (a *Actuator) SendText(ctx context.Context, chatID int64, text string) ResultKind {
	select {
	case <-ctx.Done():
		return ResultTransientFailure
	default:
	}
	msg := api.NewMessage(chatID, text)
	if _, err := a.bot.Send(msg); err != nil {
		return a.classify(err, "send text")
	}
	return ResultOk
}

func (a *Actuator) SendReply(ctx context.Context, chatID int64, replyToMessageID int, text string) ResultKind {
	select {
	case <-ctx.Done():
		return ResultTransientFailure
	default:
	}
	msg := api.NewMessage(chatID, text)
	msg.ReplyParameters.MessageID = replyToMessageID
	if _, err := a.bot.Send(msg); err != nil {
		return a.classify(err, "send reply")
	}
	return ResultOk
}

func (a *Actuator) DeleteMessage(ctx context.Context, chatID int64, messageID int, targetUserID int64) ResultKind {
	select {
	case <-ctx.Done():
		return ResultTransientFailure
	default:
	}
	if _, err := a.bot.Request(api.NewDeleteMessage(chatID, messageID)); err != nil {
		return a.classify(err, "delete message")
	}
	a.record(ctx, "delete", targetUserID)
	return ResultOk
}

// MuteUntil restricts the user from sending anything until the deadline.
func (a *Actuator) MuteUntil(ctx context.Context, chatID, userID int64, until time.Time) ResultKind {
	select {
	case <-ctx.Done():
		return ResultTransientFailure
	default:
	}
	if _, err := a.bot.Request(api.RestrictChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{
				ChatID: chatID,
			},
			UserID: userID,
		},
		UntilDate:   until.Unix(),
		Permissions: &api.ChatPermissions{},
	}); err != nil {
		return a.classify(err, "restrict member")
	}
	a.record(ctx, "mute", userID)
	return ResultOk
}

func (a *Actuator) Unmute(ctx context.Context, chatID, userID int64) ResultKind {
	select {
	case <-ctx.Done():
		return ResultTransientFailure
	default:
	}
	allAllowed := api.ChatPermissions{
		CanSendMessages:       true,
		CanSendAudios:         true,
		CanSendDocuments:      true,
		CanSendPhotos:         true,
		CanSendVideos:         true,
		CanSendVideoNotes:     true,
		CanSendVoiceNotes:     true,
		CanSendPolls:          true,
		CanSendOtherMessages:  true,
		CanAddWebPagePreviews: true,
	}
	if _, err := a.bot.Request(api.RestrictChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{
				ChatID: chatID,
			},
			UserID: userID,
		},
		Permissions: &allAllowed,
	}); err != nil {
		return a.classify(err, "unrestrict member")
	}
	a.record(ctx, "unmute", userID)
	return ResultOk
}

// BanUntil removes the user until the deadline; a zero deadline is a
// permanent ban.
func (a *Actuator) BanUntil(ctx context.Context, chatID, userID int64, until time.Time) ResultKind {
	select {
	case <-ctx.Done():
		return ResultTransientFailure
	default:
	}
	var untilUnix int64
	action := "ban"
	if !until.IsZero() {
		untilUnix = until.Unix()
		action = "temp_ban"
	}
	if _, err := a.bot.Request(api.BanChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{
				ChatID: chatID,
			},
			UserID: userID,
		},
		UntilDate:      untilUnix,
		RevokeMessages: true,
	}); err != nil {
		return a.classify(err, "ban member")
	}
	a.record(ctx, action, userID)
	return ResultOk
}

func (a *Actuator) Unban(ctx context.Context, chatID, userID int64) ResultKind {
	select {
	case <-ctx.Done():
		return ResultTransientFailure
	default:
	}
	if _, err := a.bot.Request(api.UnbanChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{
				ChatID: chatID,
			},
			UserID: userID,
		},
	}); err != nil {
		return a.classify(err, "unban member")
	}
	a.record(ctx, "unban", userID)
	return ResultOk
}

// RecordWarning logs a formal warning to the moderation trail; the
// warning counter itself lives with the reputation service.
func (a *Actuator) RecordWarning(ctx context.Context, userID int64) {
	a.record(ctx, "warn", userID)
}

func (a *Actuator) record(ctx context.Context, action string, targetUserID int64) {
	err := a.store.AppendModerationLog(ctx, &db.ModerationLogEntry{
		Action:       action,
		TargetUserID: targetUserID,
	})
	if err != nil {
		a.getLogEntry().WithFields(log.Fields{"action": action, "error": err.Error()}).Error("cant append moderation log")
	}
}

func (a *Actuator) classify(err error, operation string) ResultKind {
	entry := a.getLogEntry().WithFields(log.Fields{"operation": operation, "error": err.Error()})
	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, msgNoPrivileges), strings.Contains(message, "can't remove chat owner"):
		entry.Warn("insufficient privileges")
		return ResultPermissionDenied
	case strings.Contains(message, "not found"):
		entry.Warn("target not found")
		return ResultNotFound
	default:
		entry.Error("moderation action failed")
		return ResultTransientFailure
	}
}

func (a *Actuator) getLogEntry() *log.Entry {
	return log.WithField("object", "Actuator")
}
