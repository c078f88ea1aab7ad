package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/arena-server/internal/config"
	"github.com/vovakirdan/arena-server/internal/core"
	"github.com/vovakirdan/arena-server/internal/store"
)

// NewServer builds the HTTP server. The WebSocket endpoint is served by the mux
// directly since it hijacks the connection; everything else goes to gin.
// matches may be nil when match history is disabled.
func NewServer(hub *core.Hub, matches store.MatchStore, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, WSOptions{
		MaxMessageBytes:    cfg.MaxMessageBytes,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		EventBuffer:        cfg.Session.EventBuffer,
	}, logger))
	mux.Handle("/", NewRouter(hub, matches, logger))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter registers the read-only API on a gin engine.
func NewRouter(hub *core.Hub, matches store.MatchStore, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	api := NewAPIHandlers(hub, matches, logger)

	router.GET("/health", api.Health)

	group := router.Group("/api")
	group.GET("/rooms", api.ListRooms)
	group.GET("/rooms/:id", api.GetRoom)
	group.GET("/players/:id", api.GetPlayer)
	group.GET("/stats", api.Stats)
	group.GET("/matches", api.ListMatches)
	group.GET("/matches/:id", api.GetMatch)

	return router
}
