package server

import (
	"context"

	"uny-compass-be/internal/bootstrap"
	"uny-compass-be/internal/config"
	"uny-compass-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "UNY Compass API",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: serverutils.FiberErrorHandler(container.Logger),
	})

	// Middleware
	app.Use(serverutils.Cors(container.CorsPolicy))
	app.Use(otelfiber.Middleware())
	app.Use(serverutils.ErrorHandlerMiddleware(container.Logger))
	app.Use(serverutils.CorsGuard(container.CorsPolicy))
	app.Use(recover.New())

	// Routes
	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	s.container.Logger.Info("SERVER", "server is running", map[string]interface{}{"addr": "http://localhost:" + s.cfg.App.Port})
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	c.HealthController.RegisterRoutes(app)

	api := app.Group("/api")

	c.AuthController.RegisterRoutes(api, c.JwtMiddleware)
	c.ChatController.RegisterRoutes(api, c.JwtMiddleware)
	c.ChatbotController.RegisterRoutes(api, c.JwtMiddleware)
}
