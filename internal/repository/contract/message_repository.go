package contract

import (
	"context"

	"uny-compass-be/internal/entity"
	"uny-compass-be/internal/repository/specification"
)

type MessageRepository interface {
	// Create rejects blank content and never touches the parent session.
	Create(ctx context.Context, message *entity.Message) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
}
