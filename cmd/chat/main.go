package main

import (
	"context"
	"log"

	"mindease-be/internal/bootstrap"
	"mindease-be/internal/config"
	"mindease-be/internal/dto"
	"mindease-be/internal/pkg/logger"
	"mindease-be/internal/tui"
	"mindease-be/pkg/database"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// File-only logger keeps the rendered screen intact
	sysLogger := logger.NewIsolatedLogger("logs/chat.log")

	db, err := database.NewGormDB(database.GormConfig{DSN: cfg.Database.DSN(), Role: cfg.Database.Role})
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	container, err := bootstrap.NewContainer(db, cfg, sysLogger)
	if err != nil {
		log.Fatalf("Unable to build container: %v", err)
	}
	defer container.Close()

	session, err := container.ChatbotService.CreateSession(context.Background(), &dto.CreateSessionRequest{})
	if err != nil {
		log.Fatalf("Unable to start a session: %v", err)
	}

	p := tea.NewProgram(tui.New(container.ChatbotService, session, sysLogger), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("chat client error: %v", err)
	}
}
