package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/javierhorta/mashi/internal/db"
)

func newTestClient(t *testing.T) *sqliteClient {
	t.Helper()
	client, err := NewSQLiteClient(context.Background(), t.TempDir(), "test.db")
	if err != nil {
		t.Fatalf("new sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestGetReputationAbsentReturnsNil(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	rep, err := client.GetReputation(context.Background(), 404)
	if err != nil {
		t.Fatalf("get reputation: %v", err)
	}
	if rep != nil {
		t.Fatalf("expected nil record for unknown user, got %#v", rep)
	}
}

func TestUpsertReputationRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	rep := db.DefaultUserReputation(7, "mortal")
	rep.Reputation = 40
	rep.TotalInsults = 2
	rep.LastInsult = "idiota"
	rep.InsultMemory = db.InsultMemory{"tonto", "idiota"}
	if err := client.UpsertReputation(ctx, rep); err != nil {
		t.Fatalf("upsert reputation: %v", err)
	}

	got, err := client.GetReputation(ctx, 7)
	if err != nil {
		t.Fatalf("get reputation: %v", err)
	}
	if got == nil {
		t.Fatal("expected stored record, got nil")
	}
	if got.Reputation != 40 || got.TotalInsults != 2 || got.LastInsult != "idiota" {
		t.Fatalf("unexpected record: %#v", got)
	}
	if len(got.InsultMemory) != 2 || got.InsultMemory[1] != "idiota" {
		t.Fatalf("unexpected insult memory: %#v", got.InsultMemory)
	}

	rep.Reputation = 30
	if err := client.UpsertReputation(ctx, rep); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	got, err = client.GetReputation(ctx, 7)
	if err != nil {
		t.Fatalf("get reputation after update: %v", err)
	}
	if got.Reputation != 30 {
		t.Fatalf("expected updated reputation 30, got %d", got.Reputation)
	}
}

func TestWarningRoundTripWithBan(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	until := time.Now().Add(3 * time.Hour).UTC().Truncate(time.Second)
	warning := &db.UserWarning{
		UserID:        9,
		DisplayName:   "provocador",
		WarningsCount: 3,
		BannedUntil:   &until,
		BanReason:     "acumulación de advertencias",
	}
	if err := client.UpsertWarning(ctx, warning); err != nil {
		t.Fatalf("upsert warning: %v", err)
	}

	got, err := client.GetWarning(ctx, 9)
	if err != nil {
		t.Fatalf("get warning: %v", err)
	}
	if got == nil || got.WarningsCount != 3 {
		t.Fatalf("unexpected warning record: %#v", got)
	}
	if got.BannedUntil == nil || !got.BannedUntil.Equal(until) {
		t.Fatalf("expected banned_until %v, got %v", until, got.BannedUntil)
	}
}

func TestEnsureSubscriberIsInsertOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	if err := client.EnsureSubscriber(ctx, 42, "primero"); err != nil {
		t.Fatalf("ensure subscriber: %v", err)
	}
	if err := client.EnsureSubscriber(ctx, 42, "segundo"); err != nil {
		t.Fatalf("ensure subscriber again: %v", err)
	}

	var username string
	if err := client.db.GetContext(ctx, &username, "SELECT username FROM subscribers WHERE chat_id = ?", 42); err != nil {
		t.Fatalf("get subscriber: %v", err)
	}
	if username != "primero" {
		t.Fatalf("subscriber record mutated after creation: %q", username)
	}
	ok, err := client.IsSubscriber(ctx, 42)
	if err != nil || !ok {
		t.Fatalf("expected subscriber present, got %v %v", ok, err)
	}
}
