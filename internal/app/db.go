package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"configurator-backend/internal/assets"
	"configurator-backend/internal/configurator"
	"configurator-backend/internal/domain"
	"configurator-backend/internal/handlers"
	"configurator-backend/internal/platform/logger"
	"configurator-backend/internal/session"
	"configurator-backend/internal/store"
)

// backingStore — конфигурации плюс таблица settings.
type backingStore interface {
	configurator.ConfigurationStore
	handlers.SettingsStore
}

// openStore открывает хранилище по STORE_DRIVER, создаёт схему,
// засевает справочник и загружает его обратно из БД.
func openStore(ctx context.Context, cfg Config, log *logger.Logger) (backingStore, *domain.Catalog, func() error, error) {
	var (
		sqlStore *store.SQLStore
		err      error
	)
	switch cfg.StoreDriver {
	case "memory":
		log.Warn("using in-memory store, configurations are lost on restart")
		return store.NewMemoryStore(), domain.MustDefaultCatalog(), func() error { return nil }, nil
	case "postgres":
		sqlStore, err = store.OpenPostgres(ctx, cfg.DatabaseURL)
	case "sqlite":
		sqlStore, err = store.OpenSQLite(ctx, cfg.SQLitePath)
	default:
		err = fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, nil, nil, err
	}
	log.Info("DB connected", "driver", cfg.StoreDriver)

	// 1. Схема БД
	if err := sqlStore.EnsureSchema(ctx); err != nil {
		sqlStore.Close()
		return nil, nil, nil, err
	}
	// 2-3. Справочник: засеять и загрузить
	cat, err := seedCatalog(ctx, sqlStore, log)
	if err != nil {
		sqlStore.Close()
		return nil, nil, nil, err
	}
	return sqlStore, cat, sqlStore.Close, nil
}

// seedCatalog засевает стартовый справочник в пустую БД и читает
// актуальный справочник из неё.
func seedCatalog(ctx context.Context, s *store.SQLStore, log *logger.Logger) (*domain.Catalog, error) {
	seeded, err := s.SeedCatalog(ctx, domain.DefaultCatalog())
	if err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	if seeded {
		log.Info("catalog seeded with defaults")
	}
	cat, err := s.LoadCatalog(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		// на всякий случай, если таблица пустая
		return domain.MustDefaultCatalog(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

func openSessions(ctx context.Context, cfg Config) (session.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.SessionDriver {
	case "redis":
		rs, err := session.NewRedisStore(ctx, cfg.RedisAddr, cfg.SessionTTL)
		if err != nil {
			return nil, nil, err
		}
		return rs, rs.Close, nil
	case "file":
		fs, err := session.NewFileStore(cfg.SessionDir, cfg.SessionTTL)
		if err != nil {
			return nil, nil, err
		}
		return fs, noop, nil
	default:
		ms := session.NewMemoryStore(cfg.SessionTTL)
		ms.StartSweep(memorySweepInterval(cfg.SessionTTL))
		return ms, ms.Close, nil
	}
}

// openAssets: статика раздаётся из StaticDir по /static, либо S3 с presigned-ссылками.
func openAssets(ctx context.Context, cfg Config) (*assets.Library, assets.Uploader, error) {
	if cfg.AssetsDriver != "s3" {
		return assets.NewLibrary(nil, assets.StaticResolver{BaseURL: cfg.AssetsBaseURL}),
			assets.DirUploader{Dir: cfg.StaticDir}, nil
	}
	resolver, err := assets.NewS3Resolver(ctx, assets.S3Config{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		PathStyle:       cfg.S3PathStyle,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("s3 assets: %w", err)
	}
	return assets.NewLibrary(nil, resolver), resolver, nil
}

// memorySweepInterval: не реже TTL, но и не чаще раза в минуту.
func memorySweepInterval(ttl time.Duration) time.Duration {
	if ttl < time.Minute {
		return ttl
	}
	if ttl/10 > time.Minute {
		return time.Minute
	}
	return ttl / 10
}
