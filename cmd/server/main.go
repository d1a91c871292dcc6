// Command server runs the lunch-vote HTTP API.
//
// Startup order:
//  1. Load .env (best effort) and typed configuration
//  2. Configure zerolog (level, optional pretty console)
//  3. Open SQLite, migrate the schema, attach GORM tracing
//  4. Set up OpenTelemetry (no-op unless OTEL_ENABLED)
//  5. Build the notify hub, the Gin engine, and the winner decider
//  6. Serve until SIGINT/SIGTERM, then drain gracefully
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/calvada/lunchvote/internal/config"
	"github.com/calvada/lunchvote/internal/decider"
	httpapi "github.com/calvada/lunchvote/internal/http"
	"github.com/calvada/lunchvote/internal/notify"
	"github.com/calvada/lunchvote/internal/observability"
	"github.com/calvada/lunchvote/internal/repo"
	"github.com/calvada/lunchvote/internal/services"
	"github.com/calvada/lunchvote/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

// shutdownTimeout bounds the graceful drain after a termination signal.
const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate schema")
	}

	ctx := context.Background()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup opentelemetry")
	}
	if cfg.OTEL.Enabled {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			log.Fatal().Err(err).Msg("attach gorm tracing")
		}
	}

	hub := notify.NewHub()

	r := gin.New()
	httpapi.RegisterRoutes(r, db, hub, cfg)

	// Background winner decider. The store-level guard makes the decision
	// exactly-once, so this loop only has to be prompt.
	deciderCtx, stopDecider := context.WithCancel(ctx)
	sched := services.NewScheduleService(db, hub)
	sched.WinnerClearGrace = cfg.Voting.WinnerClearGrace
	dec := decider.New(sched, services.NewWinnerService(db, hub), hub)
	dec.Interval = cfg.Voting.DecisionInterval
	go dec.Run(deciderCtx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("base_path", cfg.APIBasePath).Str("version", version).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	stopDecider()

	drainCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := shutdownOTel(drainCtx); err != nil {
		log.Error().Err(err).Msg("opentelemetry shutdown failed")
	}
	log.Info().Msg("bye")
}
