package persistence

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"instagram-relay/infrastructure/configuration"
)

// NewPostgreSQLDB opens the publish-log database from configuration.
func NewPostgreSQLDB() (*sql.DB, error) {
	conf := configuration.C.Database.Psql
	if conf.Host == "" || conf.Name == "" {
		return nil, fmt.Errorf("postgres not configured")
	}
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		conf.Host, conf.Port, conf.User, conf.Password, conf.Name)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
