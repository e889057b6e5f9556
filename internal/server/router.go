package server

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"

	"github.com/warit/linedrive/internal/config"
	"github.com/warit/linedrive/internal/files"
	"github.com/warit/linedrive/internal/logger"
	"github.com/warit/linedrive/internal/metrics"
	"github.com/warit/linedrive/internal/webhook"
)

// Dependencies groups the handlers and clients required by the HTTP router.
type Dependencies struct {
	Config         config.Config
	DB             *pgxpool.Pool
	ObjectStore    *minio.Client
	WebhookHandler *webhook.Handler
	FilesHandler   *files.Handler
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware())
	router.Use(metrics.Middleware())

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	if deps.WebhookHandler != nil {
		webhook.RegisterRoutes(router, deps.WebhookHandler)
	}

	api := router.Group("/v1")
	if deps.FilesHandler != nil {
		files.RegisterRoutes(api, deps.FilesHandler)
	}

	return router
}
