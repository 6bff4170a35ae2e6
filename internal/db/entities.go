package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	DefaultReputation = 50
	ReputationMin     = 0
	ReputationMax     = 100

	// InsultMemorySize caps how many of the latest insults are remembered
	// per user, oldest evicted first.
	InsultMemorySize = 4
)

type (
	// UserReputation is the persistent civility score of a single user.
	// Reputation is always clamped to [0,100]; records are created lazily
	// and never deleted.
	UserReputation struct {
		UserID       int64        `db:"user_id"`
		DisplayName  string       `db:"display_name"`
		Reputation   int          `db:"reputation"`
		TotalInsults int          `db:"total_insults"`
		LastInsult   string       `db:"last_insult"`
		InsultMemory InsultMemory `db:"insult_memory"`
		UpdatedAt    time.Time    `db:"updated_at"`
	}

	UserWarning struct {
		UserID        int64      `db:"user_id"`
		DisplayName   string     `db:"display_name"`
		WarningsCount int        `db:"warnings_count"`
		LastWarning   *time.Time `db:"last_warning"`
		BannedUntil   *time.Time `db:"banned_until"`
		BanReason     string     `db:"ban_reason"`
	}

	// ModerationLogEntry is append-only; there is no read path in the bot,
	// it exists for manual inspection.
	ModerationLogEntry struct {
		ID           int64     `db:"id"`
		Action       string    `db:"action"`
		TargetUserID int64     `db:"target_user_id"`
		CreatedAt    time.Time `db:"created_at"`
	}

	Subscriber struct {
		ChatID   int64     `db:"chat_id"`
		Username string    `db:"username"`
		JoinedAt time.Time `db:"joined_at"`
	}

	InsultMemory []string
)

func DefaultUserReputation(userID int64, displayName string) *UserReputation {
	return &UserReputation{
		UserID:       userID,
		DisplayName:  displayName,
		Reputation:   DefaultReputation,
		InsultMemory: InsultMemory{},
	}
}

// Remember appends an insult, evicting the oldest entry once the memory
// is full. Order is oldest-first.
func (m InsultMemory) Remember(insult string) InsultMemory {
	m = append(m, insult)
	if len(m) > InsultMemorySize {
		m = m[len(m)-InsultMemorySize:]
	}
	return m
}

func (m InsultMemory) Value() (driver.Value, error) {
	if m == nil {
		m = InsultMemory{}
	}
	return json.Marshal(m)
}

func (m *InsultMemory) Scan(v interface{}) error {
	if v == nil {
		return nil
	}
	switch data := v.(type) {
	case string:
		return json.Unmarshal([]byte(data), m)
	case []byte:
		return json.Unmarshal(data, m)
	default:
		return fmt.Errorf("cannot scan type %T into InsultMemory", v)
	}
}
