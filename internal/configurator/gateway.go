package configurator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"configurator-backend/internal/domain"
	"configurator-backend/internal/platform/logger"
	"configurator-backend/internal/platform/metrics"
)

// ConfigurationStore — долговременное хранилище сохранённых конфигураций.
type ConfigurationStore interface {
	// Create сохраняет запись. Если запись с тем же IdempotencyKey уже есть,
	// возвращает её и created=false. Занятый токен: domain.ErrDuplicateShareToken.
	Create(ctx context.Context, cfg *domain.Configuration) (stored *domain.Configuration, created bool, err error)
	// GetByShareToken: domain.ErrNotFound, если записи нет.
	GetByShareToken(ctx context.Context, token string) (*domain.Configuration, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Configuration, error)
}

// Notifier получает уведомление о новой конфигурации (менеджеру).
type Notifier interface {
	ConfigurationSaved(ctx context.Context, cfg *domain.Configuration) error
}

const (
	shareTokenAttempts = 3
	notifyTimeout      = 10 * time.Second
)

type GatewayConfig struct {
	Store       ConfigurationStore
	Catalog     *domain.Catalog
	SaveTimeout time.Duration
	Notifier    Notifier
	Log         *logger.Logger
	Metrics     *metrics.Recorder
}

// Gateway сохраняет конфигурации и ищет их по токену ссылки.
type Gateway struct {
	store       ConfigurationStore
	catalog     *domain.Catalog
	saveTimeout time.Duration
	notifier    Notifier
	log         *logger.Logger
	metrics     *metrics.Recorder

	group singleflight.Group
	now   func() time.Time
	newID func() string
}

func NewGateway(cfg GatewayConfig) *Gateway {
	g := &Gateway{
		store:       cfg.Store,
		catalog:     cfg.Catalog,
		saveTimeout: cfg.SaveTimeout,
		notifier:    cfg.Notifier,
		log:         cfg.Log,
		metrics:     cfg.Metrics,
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
	}
	if g.saveTimeout <= 0 {
		g.saveTimeout = 5 * time.Second
	}
	if g.log == nil {
		g.log = logger.Nop()
	}
	return g
}

// SaveRequest — то, что клиент прислал на сохранение.
type SaveRequest struct {
	Selections            domain.Selection
	InstallationRequested bool
	Location              string
	// ClientTotal только сверяется с пересчётом и логируется.
	ClientTotal    *domain.Money
	IdempotencyKey string
	ClientIP       string
}

type SaveResult struct {
	Configuration *domain.Configuration
	Created       bool
	Warnings      []error
}

// Save сохраняет конфигурацию. Повтор с тем же ключом идемпотентен;
// одновременные дубли схлопываются в один вызов хранилища.
func (g *Gateway) Save(ctx context.Context, req SaveRequest) (SaveResult, error) {
	if req.IdempotencyKey == "" {
		return g.save(ctx, req)
	}
	// общий вызов не должен зависеть от отмены запроса первого клиента;
	// сверху его ограничивает SaveTimeout
	shared := context.WithoutCancel(ctx)
	v, err, _ := g.group.Do(req.IdempotencyKey, func() (interface{}, error) {
		return g.save(shared, req)
	})
	if err != nil {
		return SaveResult{}, err
	}
	return v.(SaveResult), nil
}

func (g *Gateway) save(ctx context.Context, req SaveRequest) (SaveResult, error) {
	start := g.now()
	ctx, cancel := context.WithTimeout(ctx, g.saveTimeout)
	defer cancel()

	location := req.Location
	if location == "" {
		location = domain.DefaultLocation
	}
	cfg := &domain.Configuration{
		ID:                    g.newID(),
		Selections:            req.Selections.Clone(),
		InstallationRequested: req.InstallationRequested,
		Location:              location,
		CreatedAt:             start.UTC(),
		IdempotencyKey:        req.IdempotencyKey,
		ClientIP:              req.ClientIP,
	}
	warnings := cfg.Recompute(g.catalog)
	if req.ClientTotal != nil && *req.ClientTotal != cfg.ComputedTotal {
		g.log.Warn("client total differs from computed total",
			"client_total", int64(*req.ClientTotal),
			"computed_total", int64(cfg.ComputedTotal),
		)
	}

	var (
		stored  *domain.Configuration
		created bool
		err     error
	)
	for attempt := 0; attempt < shareTokenAttempts; attempt++ {
		cfg.ShareToken, err = domain.GenerateShareToken()
		if err != nil {
			break
		}
		stored, created, err = g.store.Create(ctx, cfg)
		if !errors.Is(err, domain.ErrDuplicateShareToken) {
			break
		}
		g.log.Debug("share token collision, retrying", "attempt", attempt+1)
	}
	if err != nil {
		g.metrics.Save("failed", g.now().Sub(start))
		g.log.Error("save configuration failed", "error", err)
		return SaveResult{}, &domain.PersistenceError{Op: "save configuration", Err: err}
	}

	status := "replayed"
	if created {
		status = "created"
		g.notify(stored)
	}
	g.metrics.Save(status, g.now().Sub(start))
	g.log.Info("configuration saved", "config_id", stored.ID, "created", created, "total", int64(stored.ComputedTotal))

	return SaveResult{Configuration: stored, Created: created, Warnings: warnings}, nil
}

// GetByShareToken возвращает сохранённую конфигурацию по токену ссылки.
func (g *Gateway) GetByShareToken(ctx context.Context, token string) (*domain.Configuration, error) {
	if !domain.ValidShareToken(token) {
		g.metrics.ShareLookup(false)
		return nil, &domain.ShareTokenNotFoundError{Token: token}
	}
	cfg, err := g.store.GetByShareToken(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		g.metrics.ShareLookup(false)
		return nil, &domain.ShareTokenNotFoundError{Token: token}
	}
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load configuration", Err: err}
	}
	g.metrics.ShareLookup(true)
	return cfg, nil
}

// List — последние сохранённые конфигурации (для админки).
func (g *Gateway) List(ctx context.Context, limit, offset int) ([]*domain.Configuration, error) {
	switch {
	case limit <= 0:
		limit = 50
	case limit > 200:
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	items, err := g.store.List(ctx, limit, offset)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list configurations", Err: err}
	}
	return items, nil
}

// notify не влияет на результат сохранения.
func (g *Gateway) notify(cfg *domain.Configuration) {
	if g.notifier == nil {
		return
	}
	snapshot := *cfg
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		err := g.notifier.ConfigurationSaved(ctx, &snapshot)
		g.metrics.Notification(err == nil)
		if err != nil {
			g.log.Warn("notify manager failed", "config_id", snapshot.ID, "error", fmt.Sprint(err))
		}
	}()
}
