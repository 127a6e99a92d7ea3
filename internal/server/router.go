package server

import (
	"context"

	"github.com/abduss/docshelf/internal/config"
	"github.com/abduss/docshelf/internal/file"
	"github.com/abduss/docshelf/internal/folder"
	"github.com/abduss/docshelf/internal/logger"
	"github.com/abduss/docshelf/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger checks catalog connectivity. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config        config.Config
	DB            Pinger
	BlobProbe     func(ctx context.Context) error
	FileService   *file.Service
	FolderService *folder.Service
	Logger        *zap.Logger
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	if deps.Config.Storage.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = deps.Config.Storage.MaxUploadBytes
	}
	router.Use(gin.Recovery())
	router.Use(logger.Middleware(log))
	router.Use(metrics.Middleware())

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group("/v1")
	if deps.FolderService != nil {
		folder.RegisterRoutes(api, deps.FolderService)
	}
	if deps.FileService != nil {
		file.RegisterRoutes(api, deps.FileService)
	}

	return router
}
