package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"instagram-relay/infrastructure/logger"
	"instagram-relay/usecase"
)

const signatureHeader = "X-Hub-Signature-256"

type IWebhookHandler interface {
	Verify(c *gin.Context)
	Receive(c *gin.Context)
}

type WebhookHandler struct {
	webhookUsecase usecase.IWebhookUsecase
}

func NewWebhookHandler(webhookUsecase usecase.IWebhookUsecase) IWebhookHandler {
	return &WebhookHandler{webhookUsecase: webhookUsecase}
}

// Verify handles GET /webhooks, the platform's subscription handshake.
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	echo, ok := h.webhookUsecase.VerifySubscription(mode, token, challenge)
	if !ok {
		logger.GetLogger().WithField("mode", mode).Warn("Webhook verification rejected")
		c.String(http.StatusForbidden, "Forbidden")
		return
	}
	c.String(http.StatusOK, echo)
}

// Receive handles POST /webhooks. The platform expects a fast 200 and
// retries aggressively otherwise, so the body is handed to the worker pool
// and the response goes out before any verification or parsing happens.
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Reading webhook body failed")
		c.String(http.StatusOK, "EVENT_RECEIVED")
		return
	}

	h.webhookUsecase.Enqueue(body, c.GetHeader(signatureHeader))
	c.String(http.StatusOK, "EVENT_RECEIVED")
}
