package persistence

import (
	"context"
	"database/sql"
	"time"

	"instagram-relay/domain/model"
)

// PublishLogRepository stores the audit trail of published media in PostgreSQL.
type PublishLogRepository struct {
	db *sql.DB
}

func NewPublishLogRepository(db *sql.DB) *PublishLogRepository {
	return &PublishLogRepository{db: db}
}

func (r *PublishLogRepository) Record(ctx context.Context, rec *model.PublishRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	q := `INSERT INTO publish_log (account_id, media_id, media_type, created_at) VALUES ($1,$2,$3,$4) RETURNING id`
	return r.db.QueryRowContext(ctx, q, rec.AccountID, rec.MediaID, rec.MediaType, rec.CreatedAt).Scan(&rec.ID)
}

func (r *PublishLogRepository) Recent(ctx context.Context, limit int) ([]*model.PublishRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, account_id, media_id, media_type, created_at FROM publish_log ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*model.PublishRecord
	for rows.Next() {
		rec := &model.PublishRecord{}
		if err := rows.Scan(&rec.ID, &rec.AccountID, &rec.MediaID, &rec.MediaType, &rec.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}
