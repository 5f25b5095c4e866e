// Package store — хранилища сохранённых конфигураций, справочника и настроек.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"configurator-backend/internal/domain"
)

// Settings — настройки уведомлений, одна строка с id = 1.
type Settings struct {
	TelegramBotToken string `json:"telegramBotToken"`
	TelegramChatID   string `json:"telegramChatId"`
	NotifyOnSave     bool   `json:"notifyOnSave"`
}

type dialect int

const (
	dialectPostgres dialect = iota
	dialectSQLite
)

type conflict int

const (
	conflictNone conflict = iota
	conflictShareToken
	conflictIdempotencyKey
)

// SQLStore — хранилище поверх database/sql. Запросы пишутся с $N,
// для SQLite они переписываются в ?N.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	// classify распознаёт нарушение уникальности у конкретного драйвера.
	classify func(error) conflict
}

func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

func (s *SQLStore) q(query string) string {
	if s.dialect == dialectSQLite {
		return placeholderRe.ReplaceAllString(query, "?$1")
	}
	return query
}

const configurationColumns = `id, selections, installation_requested, location, total, created_at, share_token, idempotency_key, client_ip`

// Create сохраняет конфигурацию; повтор с тем же ключом идемпотентности
// возвращает уже сохранённую запись.
func (s *SQLStore) Create(ctx context.Context, cfg *domain.Configuration) (*domain.Configuration, bool, error) {
	if cfg.IdempotencyKey != "" {
		existing, err := s.getOne(ctx, "idempotency_key", cfg.IdempotencyKey)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, false, err
		}
	}

	selections, err := json.Marshal(cfg.Selections)
	if err != nil {
		return nil, false, fmt.Errorf("encode selections: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.q(`
INSERT INTO configurations (`+configurationColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);
`),
		cfg.ID,
		string(selections),
		cfg.InstallationRequested,
		cfg.Location,
		int64(cfg.ComputedTotal),
		cfg.CreatedAt.UTC(),
		cfg.ShareToken,
		nullString(cfg.IdempotencyKey),
		cfg.ClientIP,
	)
	if err != nil {
		switch s.classify(err) {
		case conflictShareToken:
			return nil, false, domain.ErrDuplicateShareToken
		case conflictIdempotencyKey:
			// параллельная вставка с тем же ключом успела раньше
			existing, getErr := s.getOne(ctx, "idempotency_key", cfg.IdempotencyKey)
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("insert configuration: %w", err)
	}

	out := *cfg
	out.Selections = cfg.Selections.Clone()
	return &out, true, nil
}

func (s *SQLStore) GetByShareToken(ctx context.Context, token string) (*domain.Configuration, error) {
	return s.getOne(ctx, "share_token", token)
}

func (s *SQLStore) List(ctx context.Context, limit, offset int) ([]*domain.Configuration, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
SELECT `+configurationColumns+`
FROM configurations
ORDER BY created_at DESC, id ASC
LIMIT $1 OFFSET $2;
`), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Configuration
	for rows.Next() {
		cfg, err := scanConfiguration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// column подставляется только из кода, не из запроса пользователя.
func (s *SQLStore) getOne(ctx context.Context, column, value string) (*domain.Configuration, error) {
	row := s.db.QueryRowContext(ctx, s.q(`
SELECT `+configurationColumns+`
FROM configurations
WHERE `+column+` = $1;
`), value)
	cfg, err := scanConfiguration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return cfg, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanConfiguration(row rowScanner) (*domain.Configuration, error) {
	var (
		cfg        domain.Configuration
		selections []byte
		total      int64
		createdAt  dbTime
		idemKey    sql.NullString
	)
	if err := row.Scan(
		&cfg.ID,
		&selections,
		&cfg.InstallationRequested,
		&cfg.Location,
		&total,
		&createdAt,
		&cfg.ShareToken,
		&idemKey,
		&cfg.ClientIP,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(selections, &cfg.Selections); err != nil {
		return nil, fmt.Errorf("decode selections of %s: %w", cfg.ID, err)
	}
	cfg.ComputedTotal = domain.Money(total)
	cfg.CreatedAt = createdAt.Time
	cfg.IdempotencyKey = idemKey.String
	return &cfg, nil
}

// LoadSettings загружает настройки (id = 1).
func (s *SQLStore) LoadSettings(ctx context.Context) (*Settings, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT telegram_bot_token, telegram_chat_id, notify_on_save
FROM settings
WHERE id = 1;
`)
	var (
		st            Settings
		token, chatID sql.NullString
	)
	if err := row.Scan(&token, &chatID, &st.NotifyOnSave); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &Settings{}, nil
		}
		return nil, err
	}
	st.TelegramBotToken = token.String
	st.TelegramChatID = chatID.String
	return &st, nil
}

// SaveSettings сохраняет настройки (id всегда = 1).
func (s *SQLStore) SaveSettings(ctx context.Context, st *Settings) error {
	if st == nil {
		return fmt.Errorf("settings is nil")
	}
	_, err := s.db.ExecContext(ctx, s.q(`
INSERT INTO settings (id, telegram_bot_token, telegram_chat_id, notify_on_save)
VALUES (1, $1, $2, $3)
ON CONFLICT (id) DO UPDATE
  SET telegram_bot_token = EXCLUDED.telegram_bot_token,
      telegram_chat_id   = EXCLUDED.telegram_chat_id,
      notify_on_save     = EXCLUDED.notify_on_save;
`),
		st.TelegramBotToken,
		st.TelegramChatID,
		st.NotifyOnSave,
	)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// dbTime читает время и из TIMESTAMPTZ (postgres), и из текстовой колонки SQLite.
type dbTime struct {
	Time time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (t *dbTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case nil:
		t.Time = time.Time{}
		return nil
	}
	return fmt.Errorf("unsupported time value %T", src)
}

func (t *dbTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("cannot parse time %q", s)
}
