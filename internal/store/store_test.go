package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"configurator-backend/internal/domain"
)

type configurationStore interface {
	Create(ctx context.Context, cfg *domain.Configuration) (*domain.Configuration, bool, error)
	GetByShareToken(ctx context.Context, token string) (*domain.Configuration, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Configuration, error)
	LoadSettings(ctx context.Context) (*Settings, error)
	SaveSettings(ctx context.Context, st *Settings) error
}

func newConfiguration(id, token, key string, created time.Time) *domain.Configuration {
	return &domain.Configuration{
		ID: id,
		Selections: domain.Selection{
			domain.StepRoomType:   "bedroom",
			domain.StepWindowType: "standard",
			domain.StepProduct:    "plisse_premium",
			domain.StepMaterial:   "fabric_premium",
		},
		InstallationRequested: true,
		Location:              "lviv",
		ComputedTotal:         5000,
		CreatedAt:             created,
		ShareToken:            token,
		IdempotencyKey:        key,
		ClientIP:              "10.0.0.1",
	}
}

func runStoreSuite(t *testing.T, s configurationStore) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("create and get by share token", func(t *testing.T) {
		cfg := newConfiguration("cfg-1", "AAAAAAAAAAA1", "", base)
		stored, created, err := s.Create(ctx, cfg)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "cfg-1", stored.ID)

		got, err := s.GetByShareToken(ctx, "AAAAAAAAAAA1")
		require.NoError(t, err)
		assert.Equal(t, cfg.Selections, got.Selections)
		assert.True(t, got.InstallationRequested)
		assert.Equal(t, "lviv", got.Location)
		assert.Equal(t, domain.Money(5000), got.ComputedTotal)
		assert.True(t, base.Equal(got.CreatedAt), got.CreatedAt)
		assert.Equal(t, "10.0.0.1", got.ClientIP)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := s.GetByShareToken(ctx, "ZZZZZZZZZZZZ")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("idempotency key returns the first record", func(t *testing.T) {
		first, created, err := s.Create(ctx, newConfiguration("cfg-2", "AAAAAAAAAAA2", "key-2", base.Add(time.Minute)))
		require.NoError(t, err)
		require.True(t, created)

		again, created, err := s.Create(ctx, newConfiguration("cfg-3", "AAAAAAAAAAA3", "key-2", base.Add(2*time.Minute)))
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, again.ID)
		assert.Equal(t, "AAAAAAAAAAA2", again.ShareToken)

		_, err = s.GetByShareToken(ctx, "AAAAAAAAAAA3")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("duplicate share token", func(t *testing.T) {
		_, _, err := s.Create(ctx, newConfiguration("cfg-4", "AAAAAAAAAAA1", "", base))
		assert.ErrorIs(t, err, domain.ErrDuplicateShareToken)
	})

	t.Run("list newest first", func(t *testing.T) {
		items, err := s.List(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "cfg-2", items[0].ID)
		assert.Equal(t, "cfg-1", items[1].ID)

		page, err := s.List(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "cfg-1", page[0].ID)
	})

	t.Run("settings round trip", func(t *testing.T) {
		st, err := s.LoadSettings(ctx)
		require.NoError(t, err)
		assert.Empty(t, st.TelegramBotToken)

		require.NoError(t, s.SaveSettings(ctx, &Settings{TelegramBotToken: "bot", TelegramChatID: "42", NotifyOnSave: true}))
		st, err = s.LoadSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, Settings{TelegramBotToken: "bot", TelegramChatID: "42", NotifyOnSave: true}, *st)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, NewMemoryStore())
}

func openTestSQLite(t *testing.T) *SQLStore {
	t.Helper()
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "configurator.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.EnsureSchema(ctx))
	// повторный вызов не должен падать
	require.NoError(t, s.EnsureSchema(ctx))
	return s
}

func TestSQLiteStore(t *testing.T) {
	runStoreSuite(t, openTestSQLite(t))
}

func TestSQLiteCatalogSeedAndLoad(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	_, err := s.LoadCatalog(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	seeded, err := s.SeedCatalog(ctx, domain.DefaultCatalog())
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = s.SeedCatalog(ctx, domain.DefaultCatalog())
	require.NoError(t, err)
	assert.False(t, seeded)

	cat, err := s.LoadCatalog(ctx)
	require.NoError(t, err)
	p, ok := cat.Product("markizy_terrace")
	require.True(t, ok)
	assert.Equal(t, domain.Money(4500), p.BasePrice)
	assert.Equal(t, 0.85, cat.Pricing.LocationMultiplier("lviv"))

	total, _ := cat.TotalPrice(domain.Selection{
		domain.StepWindowType: "mansard",
		domain.StepProduct:    "plisse_premium",
		domain.StepMaterial:   "fabric_premium",
	}, true, "lviv")
	assert.Equal(t, domain.Money(7125), total)
}

func TestSQLiteSaveCatalogRejectsInvalid(t *testing.T) {
	s := openTestSQLite(t)
	broken := domain.DefaultCatalog()
	broken.Products[0].CompatibleMaterials = []string{"nope"}
	assert.Error(t, s.SaveCatalog(context.Background(), broken))
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	ctx := context.Background()
	s, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.EnsureSchema(ctx))
	_, err = s.DB().ExecContext(ctx, `TRUNCATE configurations`)
	require.NoError(t, err)
	_, err = s.DB().ExecContext(ctx, `UPDATE settings SET telegram_bot_token = NULL, telegram_chat_id = NULL, notify_on_save = FALSE WHERE id = 1`)
	require.NoError(t, err)

	runStoreSuite(t, s)
}

func TestPlaceholderRewrite(t *testing.T) {
	s := &SQLStore{dialect: dialectSQLite}
	assert.Equal(t, "SELECT * FROM t WHERE a = ?1 AND b = ?12", s.q("SELECT * FROM t WHERE a = $1 AND b = $12"))

	pg := &SQLStore{dialect: dialectPostgres}
	assert.Equal(t, "a = $1", pg.q("a = $1"))
}
