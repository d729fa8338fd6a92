package bootstrap

import (
	"context"
	"time"

	"uny-compass-be/internal/config"
	"uny-compass-be/internal/controller"
	"uny-compass-be/internal/pkg/logger"
	"uny-compass-be/internal/pkg/mailer"
	"uny-compass-be/internal/pkg/serverutils"
	"uny-compass-be/internal/repository/contract"
	"uny-compass-be/internal/repository/memory"
	"uny-compass-be/internal/repository/rediscache"
	"uny-compass-be/internal/repository/unitofwork"
	"uny-compass-be/internal/service"
	"uny-compass-be/pkg/advisory"
	"uny-compass-be/pkg/database"
	"uny-compass-be/pkg/events"

	pktNats "uny-compass-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Container struct {
	Logger logger.ILogger

	// Controllers
	AuthController    controller.IAuthController
	ChatController    controller.IChatController
	ChatbotController controller.IChatbotController
	HealthController  controller.IHealthController

	// HTTP plumbing
	JwtMiddleware  fiber.Handler
	CorsPolicy     serverutils.CorsPolicy
	AdvisoryWarmer *advisory.Client

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	AuditService    service.IAuditService

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	advisoryLogger := logger.NewIsolatedLogger(cfg.App.AdvisoryLogFilePath)

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.App.ClientURL,
	)

	c := &Container{Logger: sysLogger}
	c.closers = append(c.closers, func() { _ = advisoryLogger.Sync() })

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// NATS is optional; without it events are only logged
	var eventPublisher events.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "failed to connect NATS publisher, continuing without events", map[string]interface{}{"error": err.Error()})
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}

		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "failed to connect NATS subscriber, audit trail disabled", map[string]interface{}{"error": err.Error()})
		} else {
			auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)
			c.AuditService = service.NewAuditService(natsSub, auditLogger)
			c.closers = append(c.closers, natsSub.Close, func() { _ = auditLogger.Sync() })
		}
	}

	// 3. Infrastructure
	contextCache := newContextCache(cfg, sysLogger)

	advisoryClient := advisory.NewClient(advisory.Config{
		BaseURL:       cfg.Advisory.BaseURL,
		Timeout:       cfg.Advisory.Timeout,
		StatusTimeout: cfg.Advisory.StatusTimeout,
		MaxFailures:   uint32(cfg.Advisory.BreakerMaxFailures),
		Cooldown:      cfg.Advisory.BreakerCooldown,
	}, advisoryLogger)
	c.AdvisoryWarmer = advisoryClient

	// 4. Services
	tokenService := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	publisherService := service.NewPublisherService(service.ChatTurnTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, service.ChatTurnTopic, eventPublisher, sysLogger)

	authService := service.NewAuthService(uowFactory, tokenService, emailService, eventPublisher, sysLogger, cfg.Auth.ResetTokenTTL)
	chatService := service.NewChatService(uowFactory, contextCache, advisoryClient, publisherService, sysLogger)
	chatbotService := service.NewChatbotService(uowFactory, contextCache, advisoryClient, publisherService, sysLogger)

	// 5. Controllers
	c.JwtMiddleware = serverutils.NewJwtMiddleware(tokenService)
	c.CorsPolicy = serverutils.CorsPolicy{
		AllowedOrigins:  cfg.App.AllowedOrigins(),
		WildcardKeyword: cfg.App.CorsWildcardKeyword,
		WildcardSuffix:  cfg.App.CorsWildcardSuffix,
	}
	c.AuthController = controller.NewAuthController(authService)
	c.ChatController = controller.NewChatController(chatService)
	c.ChatbotController = controller.NewChatbotController(chatbotService)
	c.HealthController = controller.NewHealthController(
		func() error { return database.Ping(db) },
		cfg.Auth.JWTSecret != "",
		cfg.App.Environment,
	)

	return c
}

func newContextCache(cfg *config.Config, log logger.ILogger) contract.ConversationContextCache {
	if cfg.Cache.Driver != "redis" {
		return memory.NewContextCache()
	}

	rdb, err := rediscache.NewClient(cfg.App.RedisURL)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err = rdb.Ping(ctx).Err()
		cancel()
	}
	if err != nil {
		log.Warn("BOOTSTRAP", "redis unavailable, falling back to in-memory context cache", map[string]interface{}{"error": err.Error()})
		return memory.NewContextCache()
	}

	log.Info("BOOTSTRAP", "using redis context cache", nil)
	return rediscache.NewContextCache(rdb)
}

// Close releases the bus connections and flushes the loggers.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
