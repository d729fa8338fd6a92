package serverutils

import (
	"strings"

	"uny-compass-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type CorsPolicy struct {
	AllowedOrigins  []string
	WildcardKeyword string
	WildcardSuffix  string
}

// IsAllowedOrigin accepts listed origins and preview deployments such as
// https://unycompass-git-feature.vercel.app.
func (p CorsPolicy) IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	for _, allowed := range p.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return p.WildcardKeyword != "" && p.WildcardSuffix != "" &&
		strings.Contains(origin, p.WildcardKeyword) &&
		strings.HasSuffix(origin, p.WildcardSuffix)
}

// CorsGuard rejects cross-origin requests from unknown origins before any handler runs.
func CorsGuard(p CorsPolicy) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if !p.IsAllowedOrigin(ctx.Get(fiber.HeaderOrigin)) {
			return apperror.Forbidden("CORS: Origin not allowed")
		}
		return ctx.Next()
	}
}

func Cors(p CorsPolicy) fiber.Handler {
	// fiber refuses credentials with a "*" origin list
	origins := strings.Join(p.AllowedOrigins, ",")
	if origins == "" {
		origins = "http://localhost:3000"
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowOriginsFunc: p.IsAllowedOrigin,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
	})
}
