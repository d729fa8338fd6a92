package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"uny-compass-be/internal/bootstrap"
	"uny-compass-be/internal/config"
	"uny-compass-be/internal/server"
	"uny-compass-be/internal/tracer"
	"uny-compass-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	shutdownTracer := tracer.InitTracer(cfg.Telemetry)
	defer shutdownTracer(context.Background())

	// 2. Initialize Database
	gormDB, err := database.NewGormDB(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	if err := container.ConsumerService.Consume(ctx); err != nil {
		container.Logger.Error("MAIN", "consumer service failed to start", map[string]interface{}{"error": err})
	}
	if container.AuditService != nil {
		if err := container.AuditService.Start(ctx); err != nil {
			container.Logger.Warn("MAIN", "audit trail not running", map[string]interface{}{"error": err.Error()})
		}
	}
	go func() {
		if err := container.AdvisoryWarmer.Warmup(ctx); err != nil {
			container.Logger.Warn("MAIN", "advisory warmup failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			container.Logger.Error("MAIN", "graceful shutdown failed", map[string]interface{}{"error": err})
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		container.Logger.Error("MAIN", "server stopped", map[string]interface{}{"error": err})
	}
}
