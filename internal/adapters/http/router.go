// Package http wires the REST surface: accounts, room CRUD, AI task
// generation, the WebRTC client configuration, and the signaling WebSocket
// upgrade endpoint.
package http

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/imelnik/peerview/internal/auth"
	"github.com/imelnik/peerview/internal/config"
	"github.com/imelnik/peerview/internal/store"
	"github.com/imelnik/peerview/internal/tasks"
)

// API bundles the collaborators the REST handlers delegate to.
type API struct {
	Store  store.Store
	Tokens *auth.Tokens
	Tasks  tasks.Generator
	ICE    []config.ICEServer
}

// WSHandler serves the signaling WebSocket upgrade. Implemented by the
// signal adapter; typed as an interface so router tests can stub it.
type WSHandler interface {
	Handle(ctx context.Context, c *gin.Context)
}

func SetupRouter(ctx context.Context, cfg *config.Config, api *API, ws WSHandler) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg.AllowedOrigins))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "peerview interview platform backend")
	})

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")

	g := r.Group("/api")

	authGroup := g.Group("/auth")
	authGroup.POST("/register", api.register)
	authGroup.POST("/login", api.login)

	protected := g.Group("", RequireAuth(api.Tokens))
	protected.GET("/users/profile", api.profile)

	rooms := protected.Group("/rooms")
	rooms.POST("", api.createRoom)
	rooms.GET("/my-rooms", api.myRooms)
	rooms.GET("/:id", api.getRoom)
	rooms.PUT("/:id", api.updateRoom)
	rooms.DELETE("/:id", api.deleteRoom)
	rooms.POST("/:id/generate-tasks", api.generateTasks)

	protected.GET("/webrtc/config", api.webrtcConfig)

	if ws != nil {
		protected.GET("/ws/signal", func(c *gin.Context) {
			ws.Handle(ctx, c)
		})
	}

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	conf := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		conf.AllowAllOrigins = true
		conf.AllowCredentials = false
	} else {
		conf.AllowOrigins = origins
	}
	return cors.New(conf)
}
