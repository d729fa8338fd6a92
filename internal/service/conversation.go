package service

import (
	"context"
	"strings"
	"time"

	"uny-compass-be/internal/entity"
	"uny-compass-be/internal/pkg/apperror"
	"uny-compass-be/internal/pkg/logger"
	"uny-compass-be/internal/repository/contract"
	"uny-compass-be/internal/repository/specification"
	"uny-compass-be/internal/repository/unitofwork"
	"uny-compass-be/pkg/contextwindow"
)

// FallbackMessage is shown to the student whenever the advisory upstream cannot answer.
const FallbackMessage = "I'm having trouble accessing the Hunter College information right now. Please try asking about specific programs or requirements."

// ensureSessionOwnership rejects sessions that are missing or belong to someone else.
func ensureSessionOwnership(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uint) error {
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if session == nil {
		return apperror.Forbidden("Access denied to this chat session")
	}
	return nil
}

// conversation glues the context cache to the message store when composing prompts.
type conversation struct {
	cache  contract.ConversationContextCache
	logger logger.ILogger
}

func withPersonality(question, personalityType string) string {
	pt := strings.TrimSpace(personalityType)
	switch strings.ToLower(pt) {
	case "", "chatbot", "unknown":
		return question
	}
	return "I am a " + strings.ToUpper(pt) + " personality type. " + question
}

// buildPrompt returns "<recent turns>User: <question>". A cold cache is rebuilt
// from the last stored messages so restarts do not lose the thread.
func (c *conversation) buildPrompt(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uint, question string) string {
	history, err := c.cache.GetContext(ctx, sessionId)
	if err != nil {
		c.logger.Warn("CONTEXT", "context cache read failed", map[string]interface{}{"session_id": sessionId, "error": err.Error()})
		history = ""
	}

	if history == "" {
		entries, err := c.reseed(ctx, uow, sessionId)
		if err != nil {
			c.logger.Warn("CONTEXT", "context reseed failed", map[string]interface{}{"session_id": sessionId, "error": err.Error()})
		}
		history = contextwindow.Render(entries)
	}

	return history + "User: " + question
}

// reseed replaces the cached window with the latest stored messages that are
// still inside the expiry window. Entries keep the messages' own timestamps.
func (c *conversation) reseed(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uint) ([]contextwindow.Entry, error) {
	latest, err := uow.MessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.Chronological{Desc: true},
		specification.Limit{N: contextwindow.MaxEntries},
	)
	if err != nil {
		return nil, err
	}

	entries := make([]contextwindow.Entry, 0, len(latest))
	for i := len(latest) - 1; i >= 0; i-- {
		m := latest[i]
		entries = append(entries, contextwindow.NewEntry(m.Content, m.IsUser, m.CreatedAt))
	}
	entries = contextwindow.Prune(entries, time.Now())

	if err := c.cache.Seed(ctx, sessionId, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// record appends a finished turn to the cache.
func (c *conversation) record(ctx context.Context, messages ...*entity.Message) {
	for _, m := range messages {
		if m == nil {
			continue
		}
		if err := c.cache.Add(ctx, m.ChatSessionId, m.Content, m.IsUser); err != nil {
			c.logger.Warn("CONTEXT", "context cache write failed", map[string]interface{}{"session_id": m.ChatSessionId, "error": err.Error()})
		}
	}
}
