package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/southeastwestnorth/tanzimapp/internal/config"
	"github.com/southeastwestnorth/tanzimapp/internal/handler"
	"github.com/southeastwestnorth/tanzimapp/internal/logger"
	"github.com/southeastwestnorth/tanzimapp/internal/router"
	"github.com/southeastwestnorth/tanzimapp/internal/service"
	"github.com/southeastwestnorth/tanzimapp/internal/store"
	"github.com/southeastwestnorth/tanzimapp/internal/validator"
	"github.com/southeastwestnorth/tanzimapp/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("bank_dir", cfg.BankDir).
		Msg("Starting Tanzim quiz server")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	// ─── Initialize Stores ─────────────────────────────────────────────
	// Everything lives in process memory: a quiz attempt never outlives
	// a restart.
	banks := store.NewBankStore(log)
	sessions := store.NewSessionStore()

	if loaded, err := banks.LoadDir(cfg.BankDir); err != nil {
		log.Warn().Err(err).Str("dir", cfg.BankDir).Msg("Bank directory scan failed")
	} else {
		log.Info().Int("banks", loaded).Msg("Question banks registered")
	}

	// ─── Initialize Services and Handlers ──────────────────────────────
	quizService := service.NewQuizService(cfg, banks, sessions, log)

	handlers := &router.Handlers{
		Bank:    handler.NewBankHandler(quizService, cfg.MaxUploadBytes),
		Session: handler.NewSessionHandler(quizService),
		WS:      handler.NewWSHandler(quizService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	reaper := worker.NewReaperWorker(sessions, time.Duration(cfg.SessionTTLMinutes)*time.Minute, log)
	go reaper.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	workerCancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
