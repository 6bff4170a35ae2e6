package handlers

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/javierhorta/mashi/internal/adapters"
	"github.com/javierhorta/mashi/internal/adapters/llm"
	"github.com/javierhorta/mashi/internal/config"
	"github.com/javierhorta/mashi/internal/db"
	"github.com/javierhorta/mashi/internal/engine"
	"github.com/javierhorta/mashi/internal/flood"
	"github.com/javierhorta/mashi/internal/moderation"
	"github.com/javierhorta/mashi/internal/reputation"
)

const (
	testChatID = int64(-1001)
	testUserID = int64(7)
	testSelfID = int64(999)
)

func TestMain(m *testing.M) {
	os.Setenv("MASHI_TOKEN", "test-token")
	os.Exit(m.Run())
}

type memStore struct {
	mutex sync.Mutex
	reps  map[int64]*db.UserReputation
	warns map[int64]*db.UserWarning
}

func newMemStore() *memStore {
	return &memStore{
		reps:  map[int64]*db.UserReputation{},
		warns: map[int64]*db.UserWarning{},
	}
}

func (s *memStore) GetReputation(_ context.Context, userID int64) (*db.UserReputation, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if rep, ok := s.reps[userID]; ok {
		clone := *rep
		return &clone, nil
	}
	return nil, nil
}

func (s *memStore) UpsertReputation(_ context.Context, rep *db.UserReputation) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	clone := *rep
	s.reps[rep.UserID] = &clone
	return nil
}

func (s *memStore) GetWarning(_ context.Context, userID int64) (*db.UserWarning, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if warning, ok := s.warns[userID]; ok {
		clone := *warning
		return &clone, nil
	}
	return nil, nil
}

func (s *memStore) UpsertWarning(_ context.Context, warning *db.UserWarning) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	clone := *warning
	s.warns[warning.UserID] = &clone
	return nil
}

type stubBot struct {
	requests []api.Chattable
}

func (s *stubBot) Request(c api.Chattable) (*api.APIResponse, error) {
	s.requests = append(s.requests, c)
	return &api.APIResponse{Ok: true}, nil
}

func (s *stubBot) Send(c api.Chattable) (api.Message, error) {
	s.requests = append(s.requests, c)
	return api.Message{}, nil
}

type stubLogStore struct{}

func (s *stubLogStore) AppendModerationLog(_ context.Context, _ *db.ModerationLogEntry) error {
	return nil
}

type stubService struct {
	botAPI *api.BotAPI
	owner  int64
}

func (s *stubService) GetBot() *api.BotAPI { return s.botAPI }
func (s *stubService) GetDB() db.Client    { return nil }
func (s *stubService) IsOwner(user *api.User) bool {
	return user != nil && user.ID == s.owner
}
func (s *stubService) EnsureSubscriber(_ context.Context, _ *api.User) error { return nil }

type stubLLM struct {
	reply string
	err   error
}

func (s *stubLLM) ChatCompletion(_ context.Context, _ []llm.ChatCompletionMessage) (llm.ChatCompletionResponse, error) {
	if s.err != nil {
		return llm.ChatCompletionResponse{}, s.err
	}
	return llm.ChatCompletionResponse{
		Choices: []llm.ChatCompletionChoice{{Message: llm.ChatCompletionMessage{Role: llm.RoleAssistant, Content: s.reply}}},
	}, nil
}

type guardianFixture struct {
	guardian *Guardian
	bot      *stubBot
	chat     *api.Chat
	user     *api.User
}

func newGuardianFixture(t *testing.T, llmAPI adapters.LLM) *guardianFixture {
	t.Helper()

	cfg := config.Get()
	store := newMemStore()
	reputationService := reputation.NewService(store, cfg.Warnings.BanThreshold, cfg.Warnings.BanDuration)
	tracker := flood.NewTracker(cfg.Flood.Window, cfg.Flood.Threshold)
	history := engine.NewConversationContext(cfg.Guardian.HistoryWindowLines)
	decisionEngine := engine.New(reputationService, tracker, history, cfg).WithRand(func() float64 { return 0.99 })

	botStub := &stubBot{}
	actuator := moderation.NewActuator(botStub, &stubLogStore{})
	service := &stubService{botAPI: &api.BotAPI{Self: api.User{ID: testSelfID}}}

	return &guardianFixture{
		guardian: NewGuardian(service, decisionEngine, actuator, history, llmAPI),
		bot:      botStub,
		chat:     &api.Chat{ID: testChatID},
		user:     &api.User{ID: testUserID, FirstName: "Teo"},
	}
}

func textUpdate(text string) *api.Update {
	return &api.Update{
		Message: &api.Message{
			MessageID: 10,
			From:      &api.User{ID: testUserID, FirstName: "Teo"},
			Text:      text,
			Date:      int(time.Now().Unix()),
		},
	}
}

func sentTexts(requests []api.Chattable) []string {
	var texts []string
	for _, request := range requests {
		if msg, ok := request.(api.MessageConfig); ok {
			texts = append(texts, msg.Text)
		}
	}
	return texts
}

func TestGuardianIgnoresCommands(t *testing.T) {
	t.Parallel()

	f := newGuardianFixture(t, &stubLLM{reply: "nunca"})
	proceed, err := f.guardian.Handle(context.Background(), textUpdate("/start"), f.chat, f.user)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !proceed {
		t.Fatal("commands must pass through to the next handler")
	}
	if len(f.bot.requests) != 0 {
		t.Fatalf("expected no requests, got %d", len(f.bot.requests))
	}
}

func TestHostileMessageGetsCannedRetortWhenModelFails(t *testing.T) {
	t.Parallel()

	f := newGuardianFixture(t, &stubLLM{err: errors.New("model down")})
	proceed, err := f.guardian.Handle(context.Background(), textUpdate("eres un idiota"), f.chat, f.user)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if proceed {
		t.Fatal("a replied-to message must not pass through")
	}

	texts := sentTexts(f.bot.requests)
	if len(texts) != 1 {
		t.Fatalf("expected one reply, got %v", texts)
	}
	if !strings.Contains(texts[0], "idiota") {
		t.Fatalf("retort must quote the insult back, got %q", texts[0])
	}
}

func TestModelCompletionIsSentAsReply(t *testing.T) {
	t.Parallel()

	f := newGuardianFixture(t, &stubLLM{reply: "Te escucho, mortal."})

	u := textUpdate("qué opinas de esto")
	u.Message.ReplyToMessage = &api.Message{
		MessageID: 9,
		From:      &api.User{ID: testSelfID, IsBot: true},
	}
	proceed, err := f.guardian.Handle(context.Background(), u, f.chat, f.user)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if proceed {
		t.Fatal("a replied-to message must not pass through")
	}

	texts := sentTexts(f.bot.requests)
	if len(texts) != 1 || texts[0] != "Te escucho, mortal." {
		t.Fatalf("expected the completion as reply, got %v", texts)
	}
}

func TestFloodBurstMutesAndSuppressesReply(t *testing.T) {
	t.Parallel()

	f := newGuardianFixture(t, &stubLLM{reply: "nunca"})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := f.guardian.Handle(ctx, textUpdate("mensaje cualquiera"), f.chat, f.user); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}
	if len(f.bot.requests) != 0 {
		t.Fatalf("quiet messages must not trigger anything, got %d requests", len(f.bot.requests))
	}

	proceed, err := f.guardian.Handle(ctx, textUpdate("mensaje cualquiera"), f.chat, f.user)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if proceed {
		t.Fatal("a flooding message must not pass through")
	}

	var muted bool
	for _, request := range f.bot.requests {
		if _, ok := request.(api.RestrictChatMemberConfig); ok {
			muted = true
		}
	}
	if !muted {
		t.Fatal("expected a restrict request for the flooder")
	}
	texts := sentTexts(f.bot.requests)
	if len(texts) != 1 || !strings.Contains(texts[0], "Teo") {
		t.Fatalf("expected a single mute notice naming the flooder, got %v", texts)
	}
}
