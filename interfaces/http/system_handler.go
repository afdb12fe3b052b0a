package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"instagram-relay/domain/repository"
	"instagram-relay/infrastructure/logger"
	"instagram-relay/usecase"
)

const recentPublishLimit = 20

type ISystemHandler interface {
	Health(c *gin.Context)
	Stats(c *gin.Context)
}

type SystemHandler struct {
	webhookUsecase usecase.IWebhookUsecase
	publishLog     repository.IPublishLog
	startedAt      time.Time
}

func NewSystemHandler(webhookUsecase usecase.IWebhookUsecase, publishLog repository.IPublishLog) ISystemHandler {
	return &SystemHandler{
		webhookUsecase: webhookUsecase,
		publishLog:     publishLog,
		startedAt:      time.Now(),
	}
}

// Health handles GET /health.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// Stats handles GET /api/stats: forwarding counters plus the latest publish
// audit entries.
func (h *SystemHandler) Stats(c *gin.Context) {
	out := gin.H{"webhooks": h.webhookUsecase.Stats()}

	if h.publishLog != nil {
		recent, err := h.publishLog.Recent(c.Request.Context(), recentPublishLimit)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Reading recent publish records failed")
		} else {
			out["recent_publishes"] = recent
		}
	}
	c.JSON(http.StatusOK, out)
}
