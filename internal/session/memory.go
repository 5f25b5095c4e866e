package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore — сессии в памяти процесса, с истечением по TTL.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
}

// StartSweep раз в interval удаляет истёкшие записи: брошенные сессии
// никто больше не читает. Останавливается через Close.
func (m *MemoryStore) StartSweep(interval time.Duration) {
	if interval <= 0 || m.ttl <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				m.Sweep()
			case <-m.stop:
				return
			}
		}
	}()
}

// Sweep удаляет истёкшие записи и возвращает их число.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for k, e := range m.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryStore) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	return nil
}

func memoryKey(sessionID, key string) string { return sessionID + "/" + key }

func (m *MemoryStore) Load(ctx context.Context, sessionID, key string) ([]byte, error) {
	if err := checkID(sessionID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[memoryKey(sessionID, key)]
	if !ok {
		return nil, nil
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		delete(m.entries, memoryKey(sessionID, key))
		return nil, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (m *MemoryStore) Save(ctx context.Context, sessionID, key string, value []byte) error {
	if err := checkID(sessionID); err != nil {
		return err
	}
	if err := checkKey(key); err != nil {
		return err
	}
	e := memoryEntry{value: append([]byte(nil), value...)}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}
	m.mu.Lock()
	m.entries[memoryKey(sessionID, key)] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, sessionID, key string) error {
	if err := checkID(sessionID); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.entries, memoryKey(sessionID, key))
	m.mu.Unlock()
	return nil
}
