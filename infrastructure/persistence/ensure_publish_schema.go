package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EnsurePublishLogSchema creates the publish audit table if it is missing.
// Safe to call at startup.
func EnsurePublishLogSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ddl := `CREATE TABLE IF NOT EXISTS publish_log (
		id BIGSERIAL PRIMARY KEY,
		account_id TEXT NOT NULL,
		media_id TEXT NOT NULL,
		media_type TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating publish_log failed: %w", err)
	}
	return nil
}
