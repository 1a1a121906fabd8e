package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nsqio/go-nsq"

	"hivemind/apps/ingestor/internal/app"
	"hivemind/apps/ingestor/internal/config"
	"hivemind/apps/ingestor/internal/logger"
)

func main() {
	log := slog.New(logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil)))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		slog.Error("service exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer deps.DB.Close()
	defer deps.Embedder.Close()
	defer deps.NSQProducer.Stop()

	a, err := app.New(cfg, deps.DB, deps.VectorStore, deps.Embedder, deps.NSQProducer, log)
	if err != nil {
		return fmt.Errorf("app init: %w", err)
	}

	// Queue consumer for ingestion requests
	if cfg.EnableIngestWorker {
		consumer, err := nsq.NewConsumer(config.TopicIngestRequest, "ingestor", nsq.NewConfig())
		if err != nil {
			return fmt.Errorf("nsq consumer: %w", err)
		}
		consumer.AddHandler(nsq.HandlerFunc(func(m *nsq.Message) error {
			return a.IngestConsumer.HandleMessage(m)
		}))
		if err := consumer.ConnectToNSQLookupd(cfg.NSQLookupd); err != nil {
			return fmt.Errorf("nsq lookupd connect: %w", err)
		}
		defer consumer.Stop()
		slog.Info("ingest consumer connected", "topic", config.TopicIngestRequest)
	}

	if !cfg.EnableAPI {
		slog.Info("api disabled, running consumer only")
		<-ctx.Done()
		return nil
	}

	return a.Run(ctx)
}
