package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"instagram-relay/domain/dto"
	"instagram-relay/domain/model"
	"instagram-relay/infrastructure/logger"
	"instagram-relay/usecase"
)

const ErrorUnmarshal = "Error while unmarshal"

type IPublishHandler interface {
	PublishImage(c *gin.Context)
	PublishVideo(c *gin.Context)
	PublishCarousel(c *gin.Context)
	RefreshToken(c *gin.Context)
	RateLimit(c *gin.Context)
}

type PublishHandler struct {
	publishUsecase usecase.IPublishUsecase
	authUsecase    usecase.IAuthUsecase
}

func NewPublishHandler(publishUsecase usecase.IPublishUsecase, authUsecase usecase.IAuthUsecase) IPublishHandler {
	return &PublishHandler{publishUsecase: publishUsecase, authUsecase: authUsecase}
}

// PublishImage handles POST /publish/image.
func (h *PublishHandler) PublishImage(c *gin.Context) {
	var req dto.PublishImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "instagram_account_id, access_token and image_url are required", Details: err.Error()})
		return
	}

	res, err := h.publishUsecase.PublishImage(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PublishVideo handles POST /publish/video.
func (h *PublishHandler) PublishVideo(c *gin.Context) {
	var req dto.PublishVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "instagram_account_id, access_token and video_url are required", Details: err.Error()})
		return
	}

	res, err := h.publishUsecase.PublishVideo(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PublishCarousel handles POST /publish/carousel.
func (h *PublishHandler) PublishCarousel(c *gin.Context) {
	var req dto.PublishCarouselRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "instagram_account_id, access_token and items are required", Details: err.Error()})
		return
	}

	res, err := h.publishUsecase.PublishCarousel(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// RefreshToken handles POST /refresh-token.
func (h *PublishHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "access_token is required", Details: err.Error()})
		return
	}

	res, err := h.authUsecase.RefreshToken(c.Request.Context(), req.AccessToken)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// RateLimit handles GET /rate-limit.
func (h *PublishHandler) RateLimit(c *gin.Context) {
	accountID := c.Query("instagram_account_id")
	accessToken := c.Query("access_token")
	if accountID == "" || accessToken == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "instagram_account_id and access_token query parameters are required"})
		return
	}

	limit, err := h.publishUsecase.CheckPublishingLimit(c.Request.Context(), accountID, accessToken)
	if err != nil {
		h.respondError(c, err)
		return
	}

	remaining := limit.Total - limit.Used
	if remaining < 0 {
		remaining = 0
	}
	var pct float64
	if limit.Total > 0 {
		pct = float64(limit.Used) / float64(limit.Total) * 100
	}
	c.JSON(http.StatusOK, dto.RateLimitResponse{
		QuotaUsage:      limit.Used,
		QuotaTotal:      limit.Total,
		QuotaRemaining:  remaining,
		UsagePercentage: pct,
		LimitReached:    limit.Used >= limit.Total,
	})
}

// respondError maps workflow errors onto the publish surface's status codes.
// Upstream bodies are passed through in Details for diagnostics.
func (h *PublishHandler) respondError(c *gin.Context, err error) {
	status := model.HTTPStatusFor(err)
	res := dto.ErrorResponse{Error: err.Error()}

	var upstream *model.UpstreamError
	if errors.As(err, &upstream) {
		res.Details = upstream.RawBody
	}
	var failed *model.ContainerFailedError
	if errors.As(err, &failed) {
		res.Error = "media processing failed"
		res.Details = failed.Error()
	}
	if errors.Is(err, model.ErrPollTimeout) {
		res.Error = "media processing did not finish in time"
		res.Details = err.Error()
	}

	if status >= http.StatusInternalServerError {
		logger.GetLogger().WithField("error", err).Error("Publish request failed")
	} else {
		logger.GetLogger().WithField("error", err).WithField("status", status).Warn("Publish request rejected")
	}
	c.JSON(status, res)
}
