package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/bitsctl/internal/config"
	"github.com/danmuck/bitsctl/internal/logging"
	"github.com/danmuck/bitsctl/internal/observability"
	"github.com/danmuck/bitsctl/internal/server"
)

func main() {
	configPath := flag.String("config", "cmd/bitsd/config.toml", "bitsd TOML config")
	flag.Parse()

	logging.ConfigureRuntime()
	logger := observability.InitLogger("bitsd")

	cfg := config.DefaultServerConfig()
	if _, err := os.Stat(*configPath); err == nil {
		loaded, err := config.LoadServerConfig(*configPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("config load failed")
		}
		cfg = loaded
	} else {
		logger.Warn().Str("path", *configPath).Msg("config not found; using defaults")
	}
	if os.Getenv(logging.EnvLogLevel) == "" {
		if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok {
			logger = logger.Level(lvl)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, logger)
	logger.Info().Str("name", cfg.Name).Str("addr", cfg.Addr).Msg("bitsd starting")
	if err := srv.Serve(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("bitsd stopped")
	}
	logger.Info().Msg("bitsd stopped")
}
