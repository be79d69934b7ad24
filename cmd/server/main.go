package main

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/samaschen/timebomb-boardgame/internal/app"
	"github.com/samaschen/timebomb-boardgame/internal/config"
	"github.com/samaschen/timebomb-boardgame/internal/ports/ws"
)

func main() {
	_ = godotenv.Load()

	if err := config.Load(os.Getenv("CONFIG_FILE")); err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	cfg := config.Get()

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	registry := app.NewRegistry(nil, log.With().Str("component", "registry").Logger(),
		app.WithRoomTTL(cfg.RoomTTL()))
	hub := ws.NewHub(log.With().Str("component", "hub").Logger())
	tokens := ws.NewTokenIssuer([]byte(cfg.TokenSecret), cfg.ResumeTokenTTL())
	server := ws.NewServer(registry, hub, tokens, log.With().Str("component", "ws").Logger())

	go sweepLoop(registry, cfg.SweepInterval())

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Mount("/", server.Routes())

	log.Info().Str("addr", cfg.Addr).Msg("starting timebomb server")
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// sweepLoop periodically reclaims rooms abandoned mid-game.
func sweepLoop(registry *app.Registry, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		registry.Sweep()
	}
}
