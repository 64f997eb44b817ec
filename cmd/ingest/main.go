package main

import (
	"context"
	"flag"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mindease-be/internal/bootstrap"
	"mindease-be/internal/config"
	"mindease-be/internal/dto"
	"mindease-be/internal/pkg/logger"
	"mindease-be/pkg/database"
	"mindease-be/pkg/events"

	"github.com/fatih/color"
)

var ingestExtensions = map[string]bool{".txt": true, ".md": true}

func main() {
	dir := flag.String("dir", "docs", "directory holding the .txt and .md documents")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	docs, err := collectDocuments(*dir)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *dir, err)
	}
	if len(docs) == 0 {
		color.Yellow("No .txt or .md files under %s", *dir)
		return
	}

	db, err := database.NewGormDB(database.GormConfig{DSN: cfg.Database.DSN(), Role: cfg.Database.Role})
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	container, err := bootstrap.NewContainer(db, cfg, sysLogger)
	if err != nil {
		log.Fatalf("Unable to build container: %v", err)
	}
	defer container.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := container.IngestService.Consume(ctx); err != nil {
		log.Fatalf("Failed to start ingest worker: %v", err)
	}

	color.Cyan("Ingesting %d documents from %s", len(docs), *dir)
	ingested, total, failed := runIngest(ctx, container.IngestService, docs)

	if len(ingested) > 0 {
		if err := container.Publisher.Publish(ctx, events.NewDocumentsIngested(ingested, total, time.Now())); err != nil {
			color.Yellow("Could not announce ingestion: %v", err)
		}
	}

	summary := color.New(color.Bold)
	summary.Printf("Done: %d documents, %d chunks, %d failed\n", len(ingested), total, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

type documentQueue interface {
	Publish(ctx context.Context, doc dto.IngestDocumentMessage) error
	Results() <-chan dto.IngestResult
}

// runIngest queues every document and waits for one result per queued document.
// A document that could not be queued counts as failed.
func runIngest(ctx context.Context, queue documentQueue, docs []dto.IngestDocumentMessage) (ingested []string, chunks, failed int) {
	queued := 0
	for _, doc := range docs {
		if err := queue.Publish(ctx, doc); err != nil {
			failed++
			color.Red("  ✗ %s: %v", doc.RelativePath, err)
			continue
		}
		queued++
	}

	for i := 0; i < queued; i++ {
		var res dto.IngestResult
		select {
		case res = <-queue.Results():
		case <-ctx.Done():
			return ingested, chunks, failed + queued - i
		}
		if res.Err != nil {
			failed++
			color.Red("  ✗ %s: %v", res.RelativePath, res.Err)
			continue
		}
		ingested = append(ingested, res.RelativePath)
		chunks += res.Chunks
		color.Green("  ✓ %s (%d chunks)", res.RelativePath, res.Chunks)
	}
	return ingested, chunks, failed
}

// collectDocuments reads every supported file under root; paths are stored relative to root
func collectDocuments(root string) ([]dto.IngestDocumentMessage, error) {
	var docs []dto.IngestDocumentMessage
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !ingestExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		docs = append(docs, dto.IngestDocumentMessage{
			RelativePath: filepath.ToSlash(rel),
			Content:      string(content),
		})
		return nil
	})
	return docs, err
}
