package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"signal-relay/internal/adapters/ws"
	"signal-relay/internal/app"
	"signal-relay/internal/config"
)

func SetupRouter(ctx context.Context, cfg *config.Config, router *app.Router) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	ctl := ws.NewController(router, cfg.ReadLimit, cfg.PingPeriod)
	r.GET("/ws", func(c *gin.Context) {
		ctl.Handle(ctx, c)
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/api/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, router.RoomStats())
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
