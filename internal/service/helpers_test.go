package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"uny-compass-be/internal/dto"
	"uny-compass-be/internal/model"
	"uny-compass-be/internal/pkg/logger"
	"uny-compass-be/internal/repository/memory"
	"uny-compass-be/internal/repository/unitofwork"
	"uny-compass-be/pkg/advisory"
	"uny-compass-be/pkg/database"
	"uny-compass-be/pkg/events"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) (*gorm.DB, unitofwork.RepositoryFactory) {
	t.Helper()
	db, err := database.NewInMemoryDB()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db, unitofwork.NewRepositoryFactory(db)
}

type fakeAdvisory struct {
	mu      sync.Mutex
	prompts []string
	answers []advisory.AskResult
	status  advisory.StatusResult
}

func (f *fakeAdvisory) Ask(ctx context.Context, prompt string, uiSessionID uint) advisory.AskResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if len(f.answers) == 0 {
		return advisory.AskResult{Success: true, Answer: "default answer", ResponseTime: time.Millisecond}
	}
	res := f.answers[0]
	f.answers = f.answers[1:]
	return res
}

func (f *fakeAdvisory) CheckStatus(ctx context.Context) advisory.StatusResult {
	return f.status
}

func (f *fakeAdvisory) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func answer(text string) advisory.AskResult {
	return advisory.AskResult{Success: true, Answer: text, ResponseTime: 5 * time.Millisecond}
}

func failure(f advisory.Failure, reason string) advisory.AskResult {
	return advisory.AskResult{Failure: f, Reason: reason}
}

type fakeEventPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *fakeEventPublisher) Publish(ctx context.Context, event events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEventPublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []string
	for _, e := range f.events {
		res = append(res, e.EventType())
	}
	return res
}

type fakeTurnPublisher struct {
	mu    sync.Mutex
	turns []dto.PublishChatTurnMessage
}

func (f *fakeTurnPublisher) PublishChatTurn(ctx context.Context, msg dto.PublishChatTurnMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns = append(f.turns, msg)
	return nil
}

func (f *fakeTurnPublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.turns)
}

type fakeEmail struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (f *fakeEmail) SendResetToken(toEmail, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tokens == nil {
		f.tokens = map[string]string{}
	}
	f.tokens[toEmail] = token
	return nil
}

func (f *fakeEmail) tokenFor(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokens[email]
}

type chatFixture struct {
	db       *gorm.DB
	factory  unitofwork.RepositoryFactory
	cache    *memory.ContextCache
	advisory *fakeAdvisory
	turns    *fakeTurnPublisher
	chat     IChatService
	chatbot  IChatbotService
	auth     IAuthService
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	db, factory := newTestDB(t)
	f := &chatFixture{
		db:       db,
		factory:  factory,
		cache:    memory.NewContextCache(),
		advisory: &fakeAdvisory{},
		turns:    &fakeTurnPublisher{},
	}
	log := logger.NewNopLogger()
	f.chat = NewChatService(factory, f.cache, f.advisory, f.turns, log)
	f.chatbot = NewChatbotService(factory, f.cache, f.advisory, f.turns, log)
	f.auth = NewAuthService(factory, NewTokenService("test-secret", time.Hour), &fakeEmail{}, nil, log, time.Hour)
	return f
}

func (f *chatFixture) register(t *testing.T, username string) uint {
	t.Helper()
	res, err := f.auth.Register(context.Background(), &dto.RegisterRequest{
		Username: username,
		Email:    username + "@hunter.cuny.edu",
		Password: "secret1",
	})
	require.NoError(t, err)
	return res.User.Id
}

func (f *chatFixture) session(t *testing.T, userId uint) uint {
	t.Helper()
	s, err := f.chat.CreateChatSession(context.Background(), userId, &dto.CreateChatSessionRequest{})
	require.NoError(t, err)
	return s.Id
}

func (f *chatFixture) messageCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.Message{}).Count(&n).Error)
	return n
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }
