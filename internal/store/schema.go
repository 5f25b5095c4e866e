package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"configurator-backend/internal/domain"
)

var postgresSchema = []string{
	`
CREATE TABLE IF NOT EXISTS settings (
    id                 INTEGER PRIMARY KEY,
    telegram_bot_token TEXT,
    telegram_chat_id   TEXT,
    notify_on_save     BOOLEAN NOT NULL DEFAULT FALSE
);
`,
	`
INSERT INTO settings (id)
VALUES (1)
ON CONFLICT (id) DO NOTHING;
`,
	`
CREATE TABLE IF NOT EXISTS catalog (
    id         INTEGER PRIMARY KEY,
    document   JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`,
	`
CREATE TABLE IF NOT EXISTS configurations (
    id                     TEXT PRIMARY KEY,
    selections             JSONB NOT NULL,
    installation_requested BOOLEAN NOT NULL DEFAULT FALSE,
    location               TEXT NOT NULL,
    total                  BIGINT NOT NULL,
    created_at             TIMESTAMPTZ NOT NULL,
    share_token            TEXT NOT NULL,
    idempotency_key        TEXT,
    client_ip              TEXT NOT NULL DEFAULT '',
    CONSTRAINT configurations_share_token_key UNIQUE (share_token),
    CONSTRAINT configurations_idempotency_key_key UNIQUE (idempotency_key)
);
`,
	`
CREATE INDEX IF NOT EXISTS configurations_created_at_idx
    ON configurations (created_at DESC);
`,
}

var sqliteSchema = []string{
	`
CREATE TABLE IF NOT EXISTS settings (
    id                 INTEGER PRIMARY KEY,
    telegram_bot_token TEXT,
    telegram_chat_id   TEXT,
    notify_on_save     BOOLEAN NOT NULL DEFAULT 0
);
`,
	`
INSERT INTO settings (id)
VALUES (1)
ON CONFLICT (id) DO NOTHING;
`,
	`
CREATE TABLE IF NOT EXISTS catalog (
    id         INTEGER PRIMARY KEY,
    document   TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`,
	`
CREATE TABLE IF NOT EXISTS configurations (
    id                     TEXT PRIMARY KEY,
    selections             TEXT NOT NULL,
    installation_requested BOOLEAN NOT NULL DEFAULT 0,
    location               TEXT NOT NULL,
    total                  INTEGER NOT NULL,
    created_at             TIMESTAMP NOT NULL,
    share_token            TEXT NOT NULL UNIQUE,
    idempotency_key        TEXT UNIQUE,
    client_ip              TEXT NOT NULL DEFAULT ''
);
`,
	`
CREATE INDEX IF NOT EXISTS configurations_created_at_idx
    ON configurations (created_at DESC);
`,
}

// EnsureSchema создаёт нужные таблицы, если их ещё нет.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	stmts := postgresSchema
	if s.dialect == dialectSQLite {
		stmts = sqliteSchema
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SeedCatalog записывает справочник, если таблица catalog пустая.
// Возвращает true, если запись была добавлена.
func (s *SQLStore) SeedCatalog(ctx context.Context, cat domain.Catalog) (bool, error) {
	var cnt int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog`).Scan(&cnt); err != nil {
		return false, err
	}
	if cnt > 0 {
		return false, nil
	}
	if err := s.SaveCatalog(ctx, cat); err != nil {
		return false, err
	}
	return true, nil
}

// SaveCatalog заменяет справочник после проверки.
func (s *SQLStore) SaveCatalog(ctx context.Context, cat domain.Catalog) error {
	if err := cat.Validate(); err != nil {
		return err
	}
	doc, err := json.Marshal(cat)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.q(`
INSERT INTO catalog (id, document, updated_at)
VALUES (1, $1, $2)
ON CONFLICT (id) DO UPDATE
  SET document   = EXCLUDED.document,
      updated_at = EXCLUDED.updated_at;
`), string(doc), time.Now().UTC())
	return err
}

// LoadCatalog читает справочник и строит индексы.
// domain.ErrNotFound, если справочник ещё не записан.
func (s *SQLStore) LoadCatalog(ctx context.Context) (*domain.Catalog, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, `SELECT document FROM catalog WHERE id = 1`).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var raw domain.Catalog
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return domain.NewCatalog(raw)
}
