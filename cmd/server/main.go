package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/finleaf/finops/internal/ai"
	"github.com/finleaf/finops/internal/config"
	"github.com/finleaf/finops/internal/db"
	"github.com/finleaf/finops/internal/logger"
	"github.com/finleaf/finops/internal/server"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()
	if err := logger.Setup(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: "stdout"}); err != nil {
		log.Fatal().Err(err).Msg("logger setup failed")
	}

	dbConn, err := db.ConnectAndMigrate()
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if *migrateOnlyFlag {
		log.Info().Msg("migrations completed; exiting as requested")
		return
	}

	// The oracle is optional: without an API key the assist endpoints are
	// disabled and everything else runs normally.
	var oracle ai.Oracle
	if o, err := ai.NewOpenAIOracle(logger.WithComponent("oracle")); err != nil {
		log.Warn().Err(err).Msg("oracle disabled")
	} else {
		oracle = o
	}

	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("starting server")
	handler := server.New(dbConn, oracle, logger.WithComponent("http"))
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: handler}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("server gracefully stopped")
}
