package store

import (
	"context"
	"sort"
	"sync"

	"configurator-backend/internal/domain"
)

// MemoryStore — хранилище в памяти процесса. Для тестов и локального запуска.
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[string]*domain.Configuration
	byToken  map[string]string
	byKey    map[string]string
	settings Settings
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*domain.Configuration),
		byToken: make(map[string]string),
		byKey:   make(map[string]string),
	}
}

func (m *MemoryStore) Create(ctx context.Context, cfg *domain.Configuration) (*domain.Configuration, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if cfg.IdempotencyKey != "" {
		if id, ok := m.byKey[cfg.IdempotencyKey]; ok {
			return clone(m.byID[id]), false, nil
		}
	}
	if _, taken := m.byToken[cfg.ShareToken]; taken {
		return nil, false, domain.ErrDuplicateShareToken
	}

	stored := clone(cfg)
	m.byID[stored.ID] = stored
	m.byToken[stored.ShareToken] = stored.ID
	if stored.IdempotencyKey != "" {
		m.byKey[stored.IdempotencyKey] = stored.ID
	}
	return clone(stored), true, nil
}

func (m *MemoryStore) GetByShareToken(ctx context.Context, token string) (*domain.Configuration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byToken[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(m.byID[id]), nil
}

func (m *MemoryStore) List(ctx context.Context, limit, offset int) ([]*domain.Configuration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	all := make([]*domain.Configuration, 0, len(m.byID))
	for _, cfg := range m.byID {
		all = append(all, clone(cfg))
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *MemoryStore) LoadSettings(ctx context.Context) (*Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := m.settings
	return &st, nil
}

func (m *MemoryStore) SaveSettings(ctx context.Context, st *Settings) error {
	if st == nil {
		return nil
	}
	m.mu.Lock()
	m.settings = *st
	m.mu.Unlock()
	return nil
}

func clone(cfg *domain.Configuration) *domain.Configuration {
	out := *cfg
	out.Selections = cfg.Selections.Clone()
	return &out
}
