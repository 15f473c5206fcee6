package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Mode        string `json:"mode"`
	Bucket      string `json:"bucket"`
	Storage     string `json:"storage"`
	Cache       string `json:"cache,omitempty"`
}

func (h HandlerSet) Health(c *gin.Context) {
	resp := healthResponse{
		Status:      "ok",
		Environment: h.cfg.Environment,
		Mode:        h.cfg.Pipeline.Mode,
		Bucket:      h.cfg.Storage.Bucket,
		Storage:     h.cfg.Storage.Backend,
	}

	if h.cache != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		resp.Cache = "ok"
		if err := h.cache.Ping(ctx).Err(); err != nil {
			resp.Cache = "error"
			h.log.Error().Err(err).Msg("redis ping failed")
		}
	}

	c.JSON(http.StatusOK, resp)
}
