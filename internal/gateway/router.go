package gateway

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hireloop/sessiongate/internal/config"
	"github.com/hireloop/sessiongate/internal/metrics"
)

func SetupRouter(ctx context.Context, cfg *config.Config, g *Gateway) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/ws/session", func(c *gin.Context) {
		g.HandleWS(ctx, cfg, c)
	})

	return r
}
