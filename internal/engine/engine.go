package engine

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/javierhorta/mashi/internal/classify"
	"github.com/javierhorta/mashi/internal/config"
)

// Category tags the kind of reply owed, and selects the canned fallback
// pool when the language model fails.
type Category string

const (
	CategoryNone     Category = ""
	CategoryOwner    Category = "owner"
	CategoryHostile  Category = "hostile"
	CategoryNSFW     Category = "nsfw"
	CategoryGreeting Category = "greeting"
	CategoryPraise   Category = "praise"
	CategoryGeneric  Category = "generic"
)

// Event is the abstract inbound message the engine decides on. Transport
// details stay with the framework adapter.
type Event struct {
	ChatID        int64
	UserID        int64
	DisplayName   string
	Text          string
	At            time.Time
	IsOwner       bool
	ReplyToBot    bool
	ForwardedFrom string

	// Evidence is filled by the engine with the matched phrase when a
	// pattern classifier produced one.
	Evidence string
}

// Decision is the engine's verdict for one event. Side effects must be
// applied in order: the reputation mutation already happened inside
// Decide, then the actuator acts (mute/ban/notices), then the reply goes
// out.
type Decision struct {
	MuteFor     time.Duration
	Notice      string
	WarnedCount int
	WasBanned   bool
	BanFor      time.Duration
	Reply       string
	Prompt      *Prompt
	Category    Category
	Evidence    string
}

type reputationKeeper interface {
	Current(ctx context.Context, userID int64) int
	ApplyDelta(ctx context.Context, userID int64, displayName string, delta int, insultText string) (int, error)
	AddWarning(ctx context.Context, userID int64, displayName, reason string) (int, bool, error)
	IsBanned(ctx context.Context, userID int64) bool
}

type floodTracker interface {
	RecordAndCheck(userID int64, now time.Time) bool
	Forget(userID int64)
}

// Engine evaluates the moderation decision table for each inbound text
// event, after classification. Randomness is injected so tests are
// deterministic.
type Engine struct {
	reputation reputationKeeper
	flood      floodTracker
	history    *ConversationContext
	guardian   config.Guardian
	floodCfg   config.Flood
	warnings   config.Warnings
	rng        func() float64
}

func New(reputation reputationKeeper, flood floodTracker, history *ConversationContext, cfg config.Config) *Engine {
	return &Engine{
		reputation: reputation,
		flood:      flood,
		history:    history,
		guardian:   cfg.Guardian,
		floodCfg:   cfg.Flood,
		warnings:   cfg.Warnings,
		rng:        rand.Float64,
	}
}

// WithRand replaces the randomness source, used by tests.
func (e *Engine) WithRand(rng func() float64) *Engine {
	e.rng = rng
	return e
}

// Decide evaluates the decision table in priority order. Earlier rules
// suppress later ones; flood suppresses everything.
func (e *Engine) Decide(ctx context.Context, ev Event) Decision {
	entry := e.getLogEntry().WithFields(log.Fields{"chat_id": ev.ChatID, "user_id": ev.UserID})

	// A user under an unexpired temporary ban gets nothing, not even a
	// flood count; the read also clears an expired ban.
	if e.reputation.IsBanned(ctx, ev.UserID) {
		entry.Debug("ignoring message from banned user")
		return Decision{}
	}

	if e.flood.RecordAndCheck(ev.UserID, ev.At) {
		e.flood.Forget(ev.UserID)
		entry.Info("flood detected, muting")
		return Decision{
			MuteFor: e.floodCfg.MuteDuration,
			Notice:  fmt.Sprintf(floodNotice, ev.DisplayName),
		}
	}

	if ev.IsOwner {
		return Decision{
			Category: CategoryOwner,
			Prompt:   BuildPrompt(CategoryOwner, ev, 100, e.history.Window(ev.ChatID)),
		}
	}

	if hostile := classify.DetectHostility(ev.Text); hostile.Matched {
		return e.decideHostile(ctx, ev, hostile.Phrase)
	}

	if nsfw := classify.DetectNSFW(ev.Text); nsfw.Matched {
		return e.decideNSFW(ctx, ev, nsfw.Phrase)
	}

	if classify.DetectGreeting(ev.Text) {
		reputation := e.reputation.Current(ctx, ev.UserID)
		return Decision{
			Category: CategoryGreeting,
			Reply:    fmt.Sprintf("Salve, mortal %s. %s", ev.DisplayName, GreetingFlourish(reputation)),
		}
	}

	reputation := e.reputation.Current(ctx, ev.UserID)

	if classify.DetectPraise(ev.Text) && reputation >= e.guardian.PraiseThreshold {
		ev.Evidence = ""
		return Decision{
			Category: CategoryPraise,
			Prompt:   BuildPrompt(CategoryPraise, ev, reputation, e.history.Window(ev.ChatID)),
		}
	}

	if ev.ReplyToBot || e.mentionsGuardian(ev.Text) || e.rng() < e.replyOdds(reputation) {
		return Decision{
			Category: CategoryGeneric,
			Prompt:   BuildPrompt(CategoryGeneric, ev, reputation, e.history.Window(ev.ChatID)),
		}
	}

	// Good-behavior drift: normal messages nudge reputation up with a
	// fixed probability, intentional noise rather than a trust score.
	if e.rng() < e.guardian.GoodBehaviorOdds {
		if _, err := e.reputation.ApplyDelta(ctx, ev.UserID, ev.DisplayName, 1, ""); err != nil {
			entry.WithField("error", err.Error()).Error("cant apply good behavior drift")
		}
	}
	return Decision{}
}

func (e *Engine) decideHostile(ctx context.Context, ev Event, phrase string) Decision {
	entry := e.getLogEntry().WithFields(log.Fields{"chat_id": ev.ChatID, "user_id": ev.UserID, "phrase": phrase})

	newReputation, err := e.reputation.ApplyDelta(ctx, ev.UserID, ev.DisplayName, -e.guardian.HostilityPenalty, phrase)
	if err != nil {
		entry.WithField("error", err.Error()).Error("cant penalize reputation")
	}

	ev.Evidence = phrase
	decision := Decision{
		Category: CategoryHostile,
		Evidence: phrase,
		Prompt:   BuildPrompt(CategoryHostile, ev, newReputation, e.history.Window(ev.ChatID)),
	}

	if classify.DetectChallenge(ev.Text) && newReputation < e.guardian.WarningThreshold {
		count, wasBanned, err := e.reputation.AddWarning(ctx, ev.UserID, ev.DisplayName, "hostilidad reiterada: "+phrase)
		if err != nil {
			entry.WithField("error", err.Error()).Error("cant record warning")
		} else {
			decision.WarnedCount = count
			decision.WasBanned = wasBanned
			if wasBanned {
				decision.BanFor = e.warnings.BanDuration
				decision.Notice = fmt.Sprintf(banNotice, ev.DisplayName)
			} else {
				decision.Notice = fmt.Sprintf(warningNotice, ev.DisplayName, count, e.warnings.BanThreshold)
			}
		}
	}
	return decision
}

func (e *Engine) decideNSFW(ctx context.Context, ev Event, phrase string) Decision {
	reputation := e.reputation.Current(ctx, ev.UserID)
	if reputation < e.guardian.NSFWThreshold {
		return Decision{
			Category: CategoryNSFW,
			Evidence: phrase,
			Reply:    e.pick(gatedRefusals),
		}
	}
	ev.Evidence = phrase
	return Decision{
		Category: CategoryNSFW,
		Evidence: phrase,
		Prompt:   BuildPrompt(CategoryNSFW, ev, reputation, e.history.Window(ev.ChatID)),
	}
}

// Fallback returns a category-appropriate canned reply, used when the
// language model is unavailable or fails.
func (e *Engine) Fallback(category Category, evidence string) string {
	switch category {
	case CategoryOwner:
		return e.pick(fallbackOwner)
	case CategoryHostile:
		return fmt.Sprintf(e.pick(fallbackRetorts), evidence)
	case CategoryNSFW:
		return e.pick(fallbackNSFW)
	case CategoryPraise:
		return e.pick(fallbackPraise)
	default:
		return e.pick(fallbackGeneric)
	}
}

func (e *Engine) replyOdds(reputation int) float64 {
	if reputation >= e.guardian.PraiseThreshold {
		return e.guardian.ReplyOddsTrusted
	}
	return e.guardian.ReplyOddsDefault
}

func (e *Engine) mentionsGuardian(text string) bool {
	normalized := classify.FoldDiacritics(strings.ToLower(text))
	return strings.Contains(normalized, "mashi") || strings.Contains(normalized, "guardian")
}

func (e *Engine) pick(pool []string) string {
	return pool[int(e.rng()*float64(len(pool)))%len(pool)]
}

func (e *Engine) getLogEntry() *log.Entry {
	return log.WithField("object", "Engine")
}
