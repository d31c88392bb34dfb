package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/hongminglow/messagely/internal/config"
	"github.com/hongminglow/messagely/internal/logging"
	"github.com/hongminglow/messagely/internal/server"
	"github.com/hongminglow/messagely/internal/storage"
	"github.com/hongminglow/messagely/internal/storage/memory"
	"github.com/hongminglow/messagely/internal/storage/postgres"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("prod")
		bootLogger.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(cfg.Env)
	if envErr != nil {
		logger.Info().Msg("no .env file found; relying on existing environment")
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init storage")
	}
	defer store.Close()

	srv := server.New(cfg, store, logger)

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Str("storage", cfg.Storage).Msg("messagely listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
}

func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (storage.Store, error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn().Msg("using in-memory storage; data is lost on restart")
		return memory.New(), nil
	}
	return postgres.New(ctx, cfg.DatabaseURL)
}
