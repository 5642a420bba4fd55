package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"hunttickets/internal/config"
	"hunttickets/internal/database"
	"hunttickets/internal/logger"
	"hunttickets/internal/repository"
	"hunttickets/internal/search"
)

func main() {
	timeout := flag.Duration("timeout", 10*time.Minute, "Overall timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", "error", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	if !cfg.Elasticsearch.Enabled() {
		logger.Fatal("Elasticsearch is not configured, set ELASTICSEARCH_URL")
	}

	slog.Info("Connecting to database")
	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	es, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		logger.Fatal("Failed to connect to Elasticsearch", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := reindex(ctx, repository.NewEventRepository(db), es); err != nil {
		logger.Fatal("Reindex failed", "error", err)
	}
}

func reindex(ctx context.Context, events *repository.EventRepository, es *search.ElasticsearchClient) error {
	start := time.Now()

	all, err := events.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}
	slog.Info("Loaded events", "count", len(all))

	indexed, err := es.BulkIndex(ctx, all)
	if err != nil {
		return fmt.Errorf("failed to bulk index events: %w", err)
	}

	slog.Info("Reindex completed",
		"index", es.IndexName(),
		"events", len(all),
		"indexed", indexed,
		"duration", time.Since(start).String())
	return nil
}
