package controller

import (
	"time"

	"uny-compass-be/internal/dto"
	"uny-compass-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

const serviceName = "uny-compass-be"

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Banner(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

// HealthCheck reports whether the database answers.
type HealthCheck func() error

type healthController struct {
	dbCheck       HealthCheck
	jwtConfigured bool
	environment   string
}

func NewHealthController(dbCheck HealthCheck, jwtConfigured bool, environment string) IHealthController {
	return &healthController{
		dbCheck:       dbCheck,
		jwtConfigured: jwtConfigured,
		environment:   environment,
	}
}

// RegisterRoutes mounts on the app root, not under /api.
func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/", c.Banner)
	r.Get("/api/health", c.Health)
}

func (c *healthController) Banner(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("UNY Compass API Server", fiber.Map{
		"service":     serviceName,
		"version":     "1.0.0",
		"environment": c.environment,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"status":      "running",
	}))
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "missing"
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	database := "missing"
	if c.dbCheck != nil {
		database = "configured"
		if err := c.dbCheck(); err != nil {
			database = "unreachable"
		}
	}

	return ctx.JSON(serverutils.SuccessResponse("Service healthy", dto.HealthResponse{
		Status:    "ok",
		Service:   serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Database:  database,
		JWT:       configured(c.jwtConfigured),
	}))
}
