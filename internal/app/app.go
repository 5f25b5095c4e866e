package app

import (
	"context"
	"errors"
	"net/http"

	"configurator-backend/internal/configurator"
	"configurator-backend/internal/handlers"
	"configurator-backend/internal/notify"
	"configurator-backend/internal/platform/logger"
	"configurator-backend/internal/platform/metrics"
	"configurator-backend/internal/session"
)

type App struct {
	mux     *http.ServeMux
	Env     *handlers.Env
	closers []func() error
	pinger  func(ctx context.Context) error
}

func New(ctx context.Context, cfg Config, log *logger.Logger) (*App, error) {
	a := &App{mux: http.NewServeMux()}

	// 1. Хранилище и справочник
	st, cat, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeStore)
	if p, ok := st.(interface{ Ping(context.Context) error }); ok {
		a.pinger = p.Ping
	}

	// 2. Сессии
	sessions, closeSessions, err := openSessions(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeSessions)

	cookies, err := session.NewCookies(cfg.SessionSecret, cfg.SessionTTL, cfg.SecureCookies)
	if err != nil {
		a.Close()
		return nil, err
	}

	// 3. AR-модели
	models, uploads, err := openAssets(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	rec := metrics.New(nil)
	env := &handlers.Env{
		Catalog:           cat,
		Sessions:          sessions,
		Cookies:           cookies,
		AR:                configurator.NewARGate(cat),
		Models:            models,
		Uploads:           uploads,
		Settings:          st,
		AdminPasswordHash: cfg.AdminPasswordHash,
		PublicBaseURL:     cfg.PublicBaseURL,
		Log:               log,
		Metrics:           rec,
	}

	// 4. Уведомления и шлюз сохранения
	tg := notify.NewTelegram(notify.TelegramConfig{
		BotToken: cfg.TelegramBotToken,
		ChatID:   cfg.TelegramChatID,
		Settings: st,
		Catalog:  cat,
		ShareURL: env.ShareURL,
		Log:      log.With("component", "telegram"),
	})
	env.Gateway = configurator.NewGateway(configurator.GatewayConfig{
		Store:       st,
		Catalog:     cat,
		SaveTimeout: cfg.SaveTimeout,
		Notifier:    tg,
		Log:         log.With("component", "gateway"),
		Metrics:     rec,
	})
	a.Env = env

	registerRoutes(a.mux, env, a.health, cfg.StaticDir)

	if cfg.AdminPasswordHash == "" {
		log.Warn("ADMIN_PASSWORD_HASH is empty, admin API disabled")
	}
	return a, nil
}

func (a *App) Router() http.Handler {
	return a.mux
}

// health — 200, если хранилище отвечает.
func (a *App) health(ctx context.Context) error {
	if a.pinger == nil {
		return nil
	}
	return a.pinger(ctx)
}

// Close закрывает хранилища в обратном порядке.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
