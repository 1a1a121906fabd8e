package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"hivemind/apps/ingestor/features/ingestion"
	"hivemind/apps/ingestor/features/stats"
	"hivemind/apps/ingestor/internal/config"
	"hivemind/apps/ingestor/internal/ingest"
	"hivemind/apps/ingestor/internal/middleware"
	"hivemind/apps/ingestor/internal/pipeline"
	"hivemind/apps/ingestor/internal/worker"
)

type App struct {
	Handler        http.Handler
	IngestService  *ingestion.Service
	IngestConsumer *worker.IngestConsumer

	port int
}

func New(
	cfg *config.Config,
	db *sql.DB,
	vecStore pipeline.VectorStore,
	embedder pipeline.Embedder,
	resultPub worker.ResultPublisher,
	logger *slog.Logger,
) (*App, error) {

	// Core: embed-and-store pipeline driven by the chunk orchestrator.
	pipe := pipeline.New(embedder, vecStore)
	orch := ingest.NewOrchestrator(pipe, cfg.IngestPolicy())

	// Feature: Ingestion
	batchRepo := ingestion.NewPostgresRepo(db)
	ingestService := ingestion.NewService(orch, batchRepo)
	ingestHandler := ingestion.NewHandler(ingestService)

	// Feature: Stats
	statsHandler := stats.NewHandler(batchRepo)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /ingest", middleware.CorrelationID(enableCORS(ingestHandler.IngestSingle)))
	mux.Handle("POST /ingest/batch", middleware.CorrelationID(enableCORS(ingestHandler.IngestBatch)))

	mux.Handle("GET /batches", middleware.CorrelationID(enableCORS(ingestHandler.List)))
	mux.Handle("GET /batches/{id}", middleware.CorrelationID(enableCORS(ingestHandler.Get)))

	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Worker (Ingest Consumer) Setup
	ingestConsumer := worker.NewIngestConsumer(ingestService, resultPub)

	return &App{
		Handler:        mux,
		IngestService:  ingestService,
		IngestConsumer: ingestConsumer,
		port:           cfg.ServerPort,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
