package reputation

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/javierhorta/mashi/internal/db"
)

// Store is the persistence slice the service needs.
type Store interface {
	GetReputation(ctx context.Context, userID int64) (*db.UserReputation, error)
	UpsertReputation(ctx context.Context, rep *db.UserReputation) error
	GetWarning(ctx context.Context, userID int64) (*db.UserWarning, error)
	UpsertWarning(ctx context.Context, warning *db.UserWarning) error
}

// Service owns per-user reputation and warning state. Updates are
// serialized per user so the clamp and counter invariants hold even if
// updates for different chats run in parallel.
type Service struct {
	store        Store
	banThreshold int
	banDuration  time.Duration
	now          func() time.Time

	locks sync.Map
}

func NewService(store Store, banThreshold int, banDuration time.Duration) *Service {
	return &Service{
		store:        store,
		banThreshold: banThreshold,
		banDuration:  banDuration,
		now:          time.Now,
	}
}

func (s *Service) lockFor(userID int64) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Get returns the user's record, or the lazy default when none exists.
// Absence is a valid default, never an error surfaced to the caller.
func (s *Service) Get(ctx context.Context, userID int64) *db.UserReputation {
	rep, err := s.store.GetReputation(ctx, userID)
	if err != nil {
		s.getLogEntry().WithField("user_id", userID).WithField("error", err.Error()).Error("cant read reputation, assuming default")
		return db.DefaultUserReputation(userID, "")
	}
	if rep == nil {
		return db.DefaultUserReputation(userID, "")
	}
	return rep
}

// Current returns the user's present reputation value.
func (s *Service) Current(ctx context.Context, userID int64) int {
	return s.Get(ctx, userID).Reputation
}

// ApplyDelta reads-or-creates the record, applies the delta clamped to
// [0,100], records the insult when one is given, and persists. On a
// storage failure the state simply does not move for this event; the
// prior value is returned alongside the error.
func (s *Service) ApplyDelta(ctx context.Context, userID int64, displayName string, delta int, insultText string) (int, error) {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	rep, err := s.store.GetReputation(ctx, userID)
	if err != nil {
		return db.DefaultReputation, errors.WithMessage(err, "cant read reputation")
	}
	if rep == nil {
		rep = db.DefaultUserReputation(userID, displayName)
	}
	prior := rep.Reputation

	rep.DisplayName = displayName
	rep.Reputation = clamp(rep.Reputation + delta)
	if insultText != "" {
		rep.TotalInsults++
		rep.LastInsult = insultText
		rep.InsultMemory = rep.InsultMemory.Remember(insultText)
	}
	rep.UpdatedAt = s.now()

	if err := s.store.UpsertReputation(ctx, rep); err != nil {
		return prior, errors.WithMessage(err, "cant persist reputation")
	}
	return rep.Reputation, nil
}

// AddWarning increments the user's warning counter. Reaching the ban
// threshold sets a temporary ban expiry and reports wasBanned.
func (s *Service) AddWarning(ctx context.Context, userID int64, displayName, reason string) (int, bool, error) {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	warning, err := s.store.GetWarning(ctx, userID)
	if err != nil {
		return 0, false, errors.WithMessage(err, "cant read warnings")
	}
	if warning == nil {
		warning = &db.UserWarning{UserID: userID}
	}

	now := s.now()
	warning.DisplayName = displayName
	warning.WarningsCount++
	warning.LastWarning = &now

	wasBanned := false
	if warning.WarningsCount >= s.banThreshold && warning.BannedUntil == nil {
		until := now.Add(s.banDuration)
		warning.BannedUntil = &until
		warning.BanReason = reason
		wasBanned = true
	}

	if err := s.store.UpsertWarning(ctx, warning); err != nil {
		return warning.WarningsCount - 1, false, errors.WithMessage(err, "cant persist warnings")
	}
	return warning.WarningsCount, wasBanned, nil
}

// IsBanned reports whether the user is under an unexpired temporary ban.
// An expired ban record is cleared on this read, there is no background
// sweep.
func (s *Service) IsBanned(ctx context.Context, userID int64) bool {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	warning, err := s.store.GetWarning(ctx, userID)
	if err != nil {
		s.getLogEntry().WithField("user_id", userID).WithField("error", err.Error()).Error("cant read warnings, assuming not banned")
		return false
	}
	if warning == nil || warning.BannedUntil == nil {
		return false
	}
	if warning.BannedUntil.After(s.now()) {
		return true
	}

	warning.BannedUntil = nil
	warning.BanReason = ""
	warning.WarningsCount = 0
	if err := s.store.UpsertWarning(ctx, warning); err != nil {
		s.getLogEntry().WithField("user_id", userID).WithField("error", err.Error()).Error("cant clear expired ban")
	}
	return false
}

// Warnings returns the stored warning record, nil when the user has none.
func (s *Service) Warnings(ctx context.Context, userID int64) (*db.UserWarning, error) {
	return s.store.GetWarning(ctx, userID)
}

func clamp(value int) int {
	if value < db.ReputationMin {
		return db.ReputationMin
	}
	if value > db.ReputationMax {
		return db.ReputationMax
	}
	return value
}

func (s *Service) getLogEntry() *log.Entry {
	return log.WithField("object", "ReputationService")
}
