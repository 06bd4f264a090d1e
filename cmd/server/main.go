package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hireloop/sessiongate/internal/access"
	"github.com/hireloop/sessiongate/internal/auth"
	"github.com/hireloop/sessiongate/internal/config"
	"github.com/hireloop/sessiongate/internal/gateway"
	"github.com/hireloop/sessiongate/internal/presence"
	"github.com/hireloop/sessiongate/internal/relay"
	"github.com/hireloop/sessiongate/internal/store"
	"github.com/hireloop/sessiongate/internal/track"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := store.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := store.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate session table")
	}

	gw := gateway.New(
		auth.NewAuthenticator(cfg.Secret),
		access.NewAuthorizer(store.NewInterviewStore(db), cfg.JoinBuffer),
		presence.NewRegistry(),
		track.NewTracker(store.NewSessionStore(db)),
		relay.NewRelay(),
	)

	r := gateway.SetupRouter(ctx, cfg, gw)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("sessiongate server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
