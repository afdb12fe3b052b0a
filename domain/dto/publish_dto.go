package dto

// PublishImageRequest is the body for POST /publish/image.
type PublishImageRequest struct {
	InstagramAccountID string `json:"instagram_account_id" binding:"required"`
	AccessToken        string `json:"access_token" binding:"required"`
	ImageURL           string `json:"image_url" binding:"required"`
	Caption            string `json:"caption,omitempty"`
}

// PublishVideoRequest is the body for POST /publish/video. MediaType selects
// REELS (default) or VIDEO.
type PublishVideoRequest struct {
	InstagramAccountID string `json:"instagram_account_id" binding:"required"`
	AccessToken        string `json:"access_token" binding:"required"`
	VideoURL           string `json:"video_url" binding:"required"`
	Caption            string `json:"caption,omitempty"`
	CoverURL           string `json:"cover_url,omitempty"`
	MediaType          string `json:"media_type,omitempty"`
}

// CarouselItem is one child of a carousel post.
type CarouselItem struct {
	ImageURL string `json:"image_url,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
}

// PublishCarouselRequest is the body for POST /publish/carousel.
type PublishCarouselRequest struct {
	InstagramAccountID string         `json:"instagram_account_id" binding:"required"`
	AccessToken        string         `json:"access_token" binding:"required"`
	Items              []CarouselItem `json:"items" binding:"required"`
	Caption            string         `json:"caption,omitempty"`
}

// PublishResponse is the success body of all publish endpoints.
type PublishResponse struct {
	Success      bool   `json:"success"`
	MediaID      string `json:"media_id"`
	InstagramURL string `json:"instagram_url"`
}

// RefreshTokenRequest is the body for POST /refresh-token.
type RefreshTokenRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
}

// RefreshTokenResponse mirrors the platform's refreshed long-lived token.
type RefreshTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	ExpiresAt   int64  `json:"expires_at"`
}

// RateLimitResponse is the body of GET /rate-limit.
type RateLimitResponse struct {
	QuotaUsage      int     `json:"quota_usage"`
	QuotaTotal      int     `json:"quota_total"`
	QuotaRemaining  int     `json:"quota_remaining"`
	UsagePercentage float64 `json:"usage_percentage"`
	LimitReached    bool    `json:"limit_reached"`
}

// ErrorResponse is the generic error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
