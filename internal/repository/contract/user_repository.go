package contract

import (
	"context"

	"uny-compass-be/internal/entity"
	"uny-compass-be/internal/repository/specification"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)

	UpdateEmail(ctx context.Context, userId uint, email string) error
	UpdatePassword(ctx context.Context, userId uint, hash string) error

	// Token Management
	CreatePasswordResetToken(ctx context.Context, token *entity.PasswordResetToken) error
	FindPasswordResetToken(ctx context.Context, specs ...specification.Specification) (*entity.PasswordResetToken, error)
	MarkTokenUsed(ctx context.Context, id uint) error
}
