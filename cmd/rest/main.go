package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mindease-be/internal/bootstrap"
	"mindease-be/internal/config"
	"mindease-be/internal/pkg/logger"
	"mindease-be/internal/server"
	"mindease-be/internal/tracer"
	"mindease-be/pkg/database"
)

func main() {
	// 0. Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Database
	gormDB, err := database.NewGormDB(database.GormConfig{
		DSN:  cfg.Database.DSN(),
		Role: cfg.Database.Role,
	})
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Dependencies
	container, err := bootstrap.NewContainer(gormDB, cfg, sysLogger)
	if err != nil {
		log.Fatalf("Unable to build container: %v", err)
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Background listeners
	if err := container.ListenForIngest(ctx); err != nil {
		sysLogger.Warn("MAIN", "Document listing will not refresh on ingest", map[string]interface{}{"error": err.Error()})
	}

	// 5. Server
	srv := server.New(cfg, container)
	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	if err := srv.Run(); err != nil {
		log.Fatal(err)
	}
}
