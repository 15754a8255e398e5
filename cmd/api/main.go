package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dvloznov/finance-parser/internal/api"
	"github.com/dvloznov/finance-parser/internal/app"
	"github.com/dvloznov/finance-parser/internal/config"
	"github.com/dvloznov/finance-parser/internal/jobs"
	"github.com/dvloznov/finance-parser/internal/jobs/inmemory"
	"github.com/dvloznov/finance-parser/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "path to finance-parser.yaml (env vars override it)")
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	configured, err := logger.NewFromConfig(cfg.Log, os.Stderr)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure logger")
	}
	log = configured

	ctx := context.Background()

	a, err := app.New(ctx, cfg, log, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise parser")
	}
	defer a.Close()

	if a.Recorder != nil {
		if err := a.Recorder.EnsureTable(ctx); err != nil {
			log.Warn().Err(err).Msg("Audit table check failed; inserts may fail")
		}
	}

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.Server.QueueSize, cfg.Server.Workers, jobStore, log)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	// HTTP callers may only name bucket objects, never server-local files or stdin.
	loader := a.Loader.RemoteOnly()

	if err := jobQueue.Start(workerCtx, jobs.NewParseHandler(a.Processor, loader)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job queue")
	}

	handler := api.NewRouter(api.Deps{
		Parser:    a.Processor,
		Loader:    loader,
		Publisher: jobQueue,
		Store:     jobStore,
		Log:       log,
	})

	addr := ":" + strconv.Itoa(cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // synchronous parses may wait on the model
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", addr).
			Str("llm_provider", cfg.LLM.Provider).
			Bool("audit", cfg.Audit.Enabled).
			Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop the queue before cancelling workers so in-flight jobs can finish.
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
