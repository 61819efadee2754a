package http

import (
	"context"
	"net"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/polychat-server/internal/config"
	"github.com/vovakirdan/polychat-server/internal/core"
	"github.com/vovakirdan/polychat-server/internal/store"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports liveness and relay occupancy.
type HealthResponse struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
	Rooms       int    `json:"rooms"`
}

// NewServer builds an HTTP server with the WebSocket endpoint and the REST API.
func NewServer(relay *core.Relay, registry *core.Registry, st store.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler(registry))

	wsHandler := NewWSHandler(relay, WSOptions{
		MaxMessageBytes:   cfg.MaxMessageBytes,
		OutboundBuffer:    cfg.Relay.OutboundBuffer,
		MessagesPerMinute: cfg.Relay.MessagesPerMinute,
	}, logger)
	router.GET("/ws", gin.WrapH(wsHandler))

	userHandlers := NewUserHandlers(st, logger)
	roomHandlers := NewRoomHandlers(st, logger)

	api := router.Group("/api")
	{
		api.POST("/users", userHandlers.CreateUser)
		api.GET("/users/:id", userHandlers.GetUser)

		api.GET("/rooms", roomHandlers.ListRooms)
		api.POST("/rooms", roomHandlers.CreateRoom)
		api.GET("/rooms/:id/messages", roomHandlers.ListMessages)
	}

	// Shutdown does not track hijacked WebSocket connections; cancelling the
	// base context ends their handlers.
	baseCtx, cancel := context.WithCancel(context.Background())
	srv := &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancel)
	return srv
}

func healthHandler(registry *core.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(stdhttp.StatusOK, HealthResponse{
			Status:      "ok",
			Connections: registry.Connections(),
			Rooms:       registry.Rooms(),
		})
	}
}
