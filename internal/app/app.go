package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/arena-server/internal/config"
	"github.com/vovakirdan/arena-server/internal/core"
	"github.com/vovakirdan/arena-server/internal/service/matches"
	"github.com/vovakirdan/arena-server/internal/session"
	"github.com/vovakirdan/arena-server/internal/store"
	"github.com/vovakirdan/arena-server/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/arena-server/internal/transport/http"
	"github.com/vovakirdan/arena-server/internal/voice"
	"github.com/vovakirdan/arena-server/internal/voice/livekit"
)

const (
	tokenIssuer    = "arena-server"
	recorderBuffer = 256
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	recorder        *matches.Recorder
	store           store.MatchStore
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	tokens, err := session.NewTokens(session.Config{
		Secret: []byte(cfg.Session.Secret),
		Issuer: tokenIssuer,
		TTL:    cfg.Session.TokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("init session tokens: %w", err)
	}
	if cfg.Session.Secret == "" {
		logger.Warn().Msg("session.secret is empty, resume tokens will not survive a restart")
	}

	deps := core.Deps{Tokens: tokens, Logger: logger}

	var voiceEngine voice.Engine
	if cfg.LiveKit.Enabled {
		voiceEngine = livekit.New(cfg.LiveKit.APIKey, cfg.LiveKit.APISecret, cfg.LiveKit.URL)
		logger.Info().Str("url", cfg.LiveKit.URL).Msg("voice channels enabled")
	}
	deps.Voice = voiceEngine

	a := &App{
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}

	// Match history is optional; interfaces stay nil when it is off.
	var history store.MatchStore
	if cfg.DatabasePath != "" {
		st, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("init store: %w", err)
		}
		logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

		a.store = st
		a.recorder = matches.NewRecorder(st, recorderBuffer, logger)
		history = st
		deps.Recorder = a.recorder
	}

	a.hub = core.NewHub(core.Options{
		Capacity:       cfg.Rooms.Capacity,
		ReadyTimeout:   cfg.Rooms.ReadyTimeout,
		ReconnectGrace: cfg.Session.ReconnectGrace,
		DefaultLives:   cfg.Rooms.DefaultLives,
		MaxMapTiles:    cfg.Rooms.MaxMapTiles,
	}, deps)
	a.server = transporthttp.NewServer(a.hub, history, *cfg, logger)

	return a, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)
	recorderDone := make(chan struct{})

	// The hub and recorder stop on this context even when the server fails on its own.
	runCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	go a.hub.Run(runCtx)

	if a.recorder != nil {
		go func() {
			defer close(recorderDone)
			a.recorder.Run(runCtx)
		}()
	} else {
		close(recorderDone)
	}

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("starting arena server")
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		stopWorkers()
		a.cleanup(recorderDone)
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		err := a.server.Shutdown(shutdownCtx)
		stopWorkers()
		a.cleanup(recorderDone)
		if err != nil {
			return err
		}
		return <-serverErr
	}
}

// cleanup waits for the recorder to flush and closes the database.
func (a *App) cleanup(recorderDone <-chan struct{}) {
	if a.recorder != nil {
		select {
		case <-recorderDone:
		case <-time.After(a.shutdownTimeout):
			a.log.Warn().Msg("match recorder did not stop in time")
		}
		if dropped := a.recorder.Dropped(); dropped > 0 {
			a.log.Warn().Int64("dropped", dropped).Msg("match notifications were dropped")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
