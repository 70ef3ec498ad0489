package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/rs/zerolog"

	"vote-engine/internal/config"
	"vote-engine/internal/engine"
	"vote-engine/internal/handlers"
	"vote-engine/internal/realtime"
	"vote-engine/internal/remote"
	"vote-engine/internal/utils"
	"vote-engine/internal/voting"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("load config")
	}

	level := zerolog.InfoLevel
	if cfg.AppEnv == "dev" {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)

	metrics := utils.NewMetrics()
	system := actor.NewActorSystem()
	limiter := voting.NewLimiter(cfg.VoteMinInterval)
	submitter := remote.NewHTTPSubmitter(cfg.VoteBackendURL, logger)

	bus := realtime.NewBus(logger)
	go bus.Run()

	profiles := engine.NewInMemoryProfiles()
	rules := engine.NewInMemoryRules()
	eng := engine.NewEngine(system, engine.Options{
		Limiter:       limiter,
		Submitter:     submitter,
		Profiles:      profiles,
		Rules:         rules,
		Bus:           bus,
		Metrics:       metrics,
		Logger:        logger,
		SubmitTimeout: cfg.SubmitTimeout,
		FuzzEnabled:   cfg.FuzzEnabled,
	})

	if cfg.RealtimeURL != "" {
		feed := realtime.NewFeed(cfg.RealtimeURL, bus, logger)
		go feed.Run(context.Background())
	}

	server := handlers.NewServer(eng, profiles, rules, metrics, logger, cfg.AllowedOrigins, cfg.MetricsEnabled)

	logger.Info().
		Str("addr", cfg.Addr()).
		Str("backend", cfg.VoteBackendURL).
		Dur("submitTimeout", cfg.SubmitTimeout).
		Msg("vote engine listening")
	if err := http.ListenAndServe(cfg.Addr(), server.Router()); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}
