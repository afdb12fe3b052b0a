package repository

import (
	"context"

	"instagram-relay/domain/model"
)

// IForwarder delivers classified webhook events to the downstream backend.
// Delivery is best-effort; the backend owns persistence and retries.
type IForwarder interface {
	Forward(ctx context.Context, event *model.WebhookEvent) error
}
