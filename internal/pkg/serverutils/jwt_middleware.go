package serverutils

import (
	"strings"

	"uny-compass-be/internal/entity"
	"uny-compass-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
)

// TokenVerifier is satisfied by the token service.
type TokenVerifier interface {
	Verify(token string) (*entity.TokenClaims, error)
}

// NewJwtMiddleware requires a valid bearer token and exposes its claims through ctx.Locals.
func NewJwtMiddleware(verifier TokenVerifier) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get(fiber.HeaderAuthorization)
		if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
			return apperror.TokenInvalid("Access token required")
		}
		tokenStr := strings.TrimSpace(authHeader[7:])
		if tokenStr == "" {
			return apperror.TokenInvalid("Access token required")
		}

		claims, err := verifier.Verify(tokenStr)
		if err != nil {
			return err
		}

		ctx.Locals(LocalUserID, claims.UserId)
		ctx.Locals(LocalUsername, claims.Username)
		return ctx.Next()
	}
}

// UserID returns the authenticated user id set by the JWT middleware.
func UserID(ctx *fiber.Ctx) (uint, error) {
	id, ok := ctx.Locals(LocalUserID).(uint)
	if !ok || id == 0 {
		return 0, apperror.TokenInvalid("Access token required")
	}
	return id, nil
}

func Username(ctx *fiber.Ctx) string {
	name, _ := ctx.Locals(LocalUsername).(string)
	return name
}
