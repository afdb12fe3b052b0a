package repository

import (
	"context"

	"instagram-relay/domain/dto"
	"instagram-relay/domain/model"
)

// IInstagram is the platform API surface the relay depends on. The concrete
// client lives in infrastructure/clients/instagram; tests substitute a mock.
type IInstagram interface {
	// OAuth operations.
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (accessToken, userID string, err error)
	LongLivedToken(ctx context.Context, shortToken string) (accessToken string, expiresIn int64, err error)
	RefreshToken(ctx context.Context, longLivedToken string) (accessToken string, expiresIn int64, err error)
	UserInfo(ctx context.Context, accessToken string) (*dto.AuthResult, error)

	// Content publishing operations.
	CreateContainer(ctx context.Context, accountID string, spec model.MediaSpec, accessToken string) (containerID string, err error)
	ContainerStatus(ctx context.Context, containerID, accessToken string) (model.ContainerStatus, error)
	PublishContainer(ctx context.Context, accountID, containerID, accessToken string) (mediaID string, err error)
	Permalink(ctx context.Context, mediaID, accessToken string) (string, error)
	PublishingLimit(ctx context.Context, accountID, accessToken string) (*model.PublishingLimit, error)
}
