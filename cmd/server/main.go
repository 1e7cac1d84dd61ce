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

	router "github.com/imelnik/peerview/internal/adapters/http"
	wsadapter "github.com/imelnik/peerview/internal/adapters/signal"
	"github.com/imelnik/peerview/internal/auth"
	"github.com/imelnik/peerview/internal/config"
	sigcore "github.com/imelnik/peerview/internal/signal"
	"github.com/imelnik/peerview/internal/store"
	"github.com/imelnik/peerview/internal/tasks"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("CONFIG_ENV") == "dev" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("jwt_secret must be configured")
	}

	mongo, err := store.Connect(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongo")
	}
	stores := mongo.Stores()

	var generator tasks.Generator
	if cfg.GeminiAPIKey != "" {
		gem, err := tasks.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Error().Err(err).Msg("failed to init task generator, continuing without it")
		} else {
			generator = gem
		}
	} else {
		log.Warn().Msg("gemini_api_key not set, ai task generation disabled")
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)

	hub := sigcore.NewHub()
	go hub.Run(ctx)

	ws := wsadapter.NewController(
		hub,
		&store.RoomAccess{Rooms: stores.Rooms},
		cfg.ReadLimit,
		cfg.SendBuffer,
		cfg.WriteTimeout,
	)

	api := &router.API{
		Store:  stores,
		Tokens: tokens,
		Tasks:  generator,
		ICE:    cfg.ICEServers,
	}

	r := router.SetupRouter(ctx, cfg, api, ws)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("peerview server started")
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
	if err := mongo.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect")
	}
	log.Info().Msg("Server exited gracefully")
}
