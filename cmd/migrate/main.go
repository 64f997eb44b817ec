package main

import (
	"flag"
	"log"

	"mindease-be/internal/config"
	"mindease-be/internal/migrations"
	"mindease-be/pkg/database"
)

func main() {
	rollback := flag.Bool("rollback", false, "roll back the last applied migration")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	db, err := database.NewGormDB(database.GormConfig{
		DSN:     cfg.Database.DSN(),
		Role:    cfg.Database.Role,
		Verbose: true,
	})
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	if *rollback {
		if err := migrations.GetMigrator(db).RollbackLast(); err != nil {
			log.Fatalf("Error: rollback failed: %v", err)
		}
		log.Println("✅ Rolled back the last migration.")
		return
	}

	log.Println("Migrating chunk store...")
	if err := migrations.Run(db); err != nil {
		log.Fatalf("Error: %v", err)
	}
	log.Println("✅ Success: docs_chunks_table is ready.")
}
