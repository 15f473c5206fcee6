package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/config"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/service"
)

type HandlerSet struct {
	log           zerolog.Logger
	cfg           *config.AppConfig
	uploadService *service.UploadService
	cache         *redis.Client
}

// NewHandlerSet wires the HTTP handlers. cache may be nil when no redis is
// configured.
func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, uploads *service.UploadService, cache *redis.Client) HandlerSet {
	return HandlerSet{
		log:           log,
		cfg:           cfg,
		uploadService: uploads,
		cache:         cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	v1.POST("/cats", h.UploadCat)
}
