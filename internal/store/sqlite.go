package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// OpenSQLite открывает файл SQLite (":memory:" тоже подходит).
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite не любит параллельных писателей.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite pragma: %w", err)
	}
	return &SQLStore{db: db, dialect: dialectSQLite, classify: classifySQLite}, nil
}

// Текст ошибки драйвера: "UNIQUE constraint failed: configurations.share_token".
func classifySQLite(err error) conflict {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return conflictNone
	}
	switch {
	case strings.Contains(msg, "configurations.share_token"):
		return conflictShareToken
	case strings.Contains(msg, "configurations.idempotency_key"):
		return conflictIdempotencyKey
	}
	return conflictNone
}
