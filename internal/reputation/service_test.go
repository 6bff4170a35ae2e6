package reputation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/javierhorta/mashi/internal/db"
)

type memoryStore struct {
	reputations map[int64]*db.UserReputation
	warnings    map[int64]*db.UserWarning
	failReads   bool
	failWrites  bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		reputations: make(map[int64]*db.UserReputation),
		warnings:    make(map[int64]*db.UserWarning),
	}
}

func (m *memoryStore) GetReputation(_ context.Context, userID int64) (*db.UserReputation, error) {
	if m.failReads {
		return nil, errors.New("store unavailable")
	}
	rep, ok := m.reputations[userID]
	if !ok {
		return nil, nil
	}
	clone := *rep
	return &clone, nil
}

func (m *memoryStore) UpsertReputation(_ context.Context, rep *db.UserReputation) error {
	if m.failWrites {
		return errors.New("store unavailable")
	}
	clone := *rep
	m.reputations[rep.UserID] = &clone
	return nil
}

func (m *memoryStore) GetWarning(_ context.Context, userID int64) (*db.UserWarning, error) {
	if m.failReads {
		return nil, errors.New("store unavailable")
	}
	warning, ok := m.warnings[userID]
	if !ok {
		return nil, nil
	}
	clone := *warning
	return &clone, nil
}

func (m *memoryStore) UpsertWarning(_ context.Context, warning *db.UserWarning) error {
	if m.failWrites {
		return errors.New("store unavailable")
	}
	clone := *warning
	m.warnings[warning.UserID] = &clone
	return nil
}

func newTestService(store Store) *Service {
	return NewService(store, 3, 3*time.Hour)
}

func TestApplyDeltaClampsToRange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := newTestService(newMemoryStore())

	got, err := service.ApplyDelta(ctx, 1, "mortal", -500, "idiota")
	if err != nil {
		t.Fatalf("apply delta: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected clamp at 0, got %d", got)
	}

	got, err = service.ApplyDelta(ctx, 1, "mortal", 500, "")
	if err != nil {
		t.Fatalf("apply delta: %v", err)
	}
	if got != 100 {
		t.Fatalf("expected clamp at 100, got %d", got)
	}
}

func TestApplyDeltaHostileMessageDropsTen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := newTestService(newMemoryStore())

	got, err := service.ApplyDelta(ctx, 1, "mortal", -10, "idiota")
	if err != nil {
		t.Fatalf("apply delta: %v", err)
	}
	if got != 40 {
		t.Fatalf("expected 50-10=40, got %d", got)
	}

	rep := service.Get(ctx, 1)
	if rep.TotalInsults != 1 || rep.LastInsult != "idiota" {
		t.Fatalf("insult not recorded: %#v", rep)
	}
}

func TestInsultMemoryCappedAtFourOldestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := newTestService(newMemoryStore())

	insults := []string{"uno", "dos", "tres", "cuatro", "cinco", "seis"}
	for _, insult := range insults {
		if _, err := service.ApplyDelta(ctx, 1, "mortal", -10, insult); err != nil {
			t.Fatalf("apply delta: %v", err)
		}
	}

	rep := service.Get(ctx, 1)
	if len(rep.InsultMemory) != db.InsultMemorySize {
		t.Fatalf("expected memory of %d, got %d", db.InsultMemorySize, len(rep.InsultMemory))
	}
	want := []string{"tres", "cuatro", "cinco", "seis"}
	for i, insult := range want {
		if rep.InsultMemory[i] != insult {
			t.Fatalf("expected memory %v, got %v", want, rep.InsultMemory)
		}
	}
	if rep.TotalInsults != len(insults) {
		t.Fatalf("expected %d total insults, got %d", len(insults), rep.TotalInsults)
	}
}

func TestApplyDeltaStorageFailureIsNoEffect(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore()
	service := newTestService(store)

	if _, err := service.ApplyDelta(ctx, 1, "mortal", -10, "idiota"); err != nil {
		t.Fatalf("apply delta: %v", err)
	}

	store.failWrites = true
	got, err := service.ApplyDelta(ctx, 1, "mortal", -10, "tonto")
	if err == nil {
		t.Fatal("expected storage error")
	}
	if got != 40 {
		t.Fatalf("expected prior value 40 on failure, got %d", got)
	}

	store.failWrites = false
	rep := service.Get(ctx, 1)
	if rep.Reputation != 40 || rep.TotalInsults != 1 {
		t.Fatalf("state mutated despite write failure: %#v", rep)
	}
}

func TestThirdWarningBans(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := newTestService(newMemoryStore())
	start := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return start }

	for i := 1; i <= 2; i++ {
		count, banned, err := service.AddWarning(ctx, 1, "provocador", "hostilidad")
		if err != nil {
			t.Fatalf("add warning %d: %v", i, err)
		}
		if count != i || banned {
			t.Fatalf("warning %d: count=%d banned=%v", i, count, banned)
		}
	}

	count, banned, err := service.AddWarning(ctx, 1, "provocador", "hostilidad")
	if err != nil {
		t.Fatalf("third warning: %v", err)
	}
	if count != 3 || !banned {
		t.Fatalf("expected ban on third warning, count=%d banned=%v", count, banned)
	}

	warning, err := service.Warnings(ctx, 1)
	if err != nil {
		t.Fatalf("read warnings: %v", err)
	}
	if warning.BannedUntil == nil || !warning.BannedUntil.After(start) {
		t.Fatalf("ban expiry not strictly in the future: %#v", warning.BannedUntil)
	}
	if warning.BanReason != "hostilidad" {
		t.Fatalf("ban reason not recorded: %q", warning.BanReason)
	}
}

func TestIsBannedLazilyClearsExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := newTestService(newMemoryStore())
	start := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return start }

	for i := 0; i < 3; i++ {
		if _, _, err := service.AddWarning(ctx, 1, "provocador", "hostilidad"); err != nil {
			t.Fatalf("add warning: %v", err)
		}
	}
	if !service.IsBanned(ctx, 1) {
		t.Fatal("expected user banned")
	}

	service.now = func() time.Time { return start.Add(4 * time.Hour) }
	if service.IsBanned(ctx, 1) {
		t.Fatal("expected ban expired")
	}

	warning, err := service.Warnings(ctx, 1)
	if err != nil {
		t.Fatalf("read warnings: %v", err)
	}
	if warning.BannedUntil != nil || warning.BanReason != "" || warning.WarningsCount != 0 {
		t.Fatalf("expired ban not cleared on read: %#v", warning)
	}
}
