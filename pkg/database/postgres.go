package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/sma-finance-mirror/pkg/config"
)

const applicationName = "finance-mirror"

// DSN builds the lib/pq connection string for the mirrored document store.
// Sessions default to read-only transactions; the mirror never writes.
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s application_name=%s default_transaction_read_only=on",
		cfg.Host,
		cfg.Port,
		cfg.User,
		quote(cfg.Password),
		cfg.Name,
		cfg.SSLMode,
		applicationName,
	)
}

// NewPostgres opens and pings the document store.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return db, nil
}

// quote wraps a value for the key=value DSN format when it is empty or holds
// spaces, quotes or backslashes.
func quote(value string) string {
	needs := value == ""
	escaped := make([]rune, 0, len(value))
	for _, r := range value {
		switch r {
		case '\'', '\\':
			needs = true
			escaped = append(escaped, '\\', r)
			continue
		case ' ':
			needs = true
		}
		escaped = append(escaped, r)
	}
	if !needs {
		return value
	}
	return "'" + string(escaped) + "'"
}
