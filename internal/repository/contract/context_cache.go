package contract

import (
	"context"

	"uny-compass-be/internal/entity"
	"uny-compass-be/pkg/contextwindow"
)

// ConversationContextCache keeps a short rolling window of recent turns per chat session.
// It is a disposable projection of the message store, never a source of truth.
type ConversationContextCache interface {
	Add(ctx context.Context, sessionID uint, content string, isUser bool) error
	GetContext(ctx context.Context, sessionID uint) (string, error)
	// Seed replaces the window with entries, keeping their own timestamps.
	Seed(ctx context.Context, sessionID uint, entries []contextwindow.Entry) error
	Clear(ctx context.Context, sessionID uint) error
	Stats(ctx context.Context) (*entity.ContextStats, error)
}
