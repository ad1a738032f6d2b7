package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/cvgest/internal/api"
	"github.com/dgallion1/cvgest/internal/artifacts"
	"github.com/dgallion1/cvgest/internal/config"
	"github.com/dgallion1/cvgest/internal/events"
	"github.com/dgallion1/cvgest/internal/jobposting"
	"github.com/dgallion1/cvgest/internal/pipeline"
	"github.com/dgallion1/cvgest/internal/refine"
	"github.com/dgallion1/cvgest/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	refiner, closeLLM, err := refine.NewFromConfig(ctx, cfg, log)
	if err != nil {
		log.Error("llm client", "error", err)
		os.Exit(1)
	}

	deps := pipeline.Deps{
		Refiner: refiner,
		Fetcher: jobposting.NewFetcher(cfg.JobFetchTimeout),
		Events:  events.NopPublisher{},
	}

	var repo api.ResumeRepository
	var ps *store.Client
	if cfg.PathstoreURL != "" {
		ps = store.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
		deps.Store = ps
		repo = ps
	}
	if cfg.S3Bucket != "" {
		s3, err := artifacts.NewS3Store(ctx, cfg)
		if err != nil {
			log.Error("s3 client", "error", err)
			os.Exit(1)
		}
		deps.Artifacts = s3
	}
	if cfg.RabbitMQURL != "" {
		pub, err := events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			log.Error("rabbitmq", "error", err)
			os.Exit(1)
		}
		deps.Events = pub
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, deps, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, refiner, repo, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		closeLLM()
		deps.Events.Close()
		if ps != nil {
			ps.Close()
		}
	}()

	log.Info("starting cvgest",
		"port", cfg.Port,
		"llm", cfg.LLMProvider,
		"storage", ps != nil,
		"artifacts", deps.Artifacts != nil,
		"events", cfg.RabbitMQURL != "",
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
