package repository

import (
	"context"

	"instagram-relay/domain/model"
)

// IPublishLog is the audit trail of successfully published media. Optional:
// when no database is configured the workflow skips logging.
type IPublishLog interface {
	Record(ctx context.Context, rec *model.PublishRecord) error
	Recent(ctx context.Context, limit int) ([]*model.PublishRecord, error)
}
