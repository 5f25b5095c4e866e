package configurator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"configurator-backend/internal/domain"
	"configurator-backend/internal/platform/metrics"
	"configurator-backend/internal/store"
)

func fullSelection() domain.Selection {
	return domain.Selection{
		domain.StepRoomType:   "bedroom",
		domain.StepWindowType: "mansard",
		domain.StepProduct:    "plisse_premium",
		domain.StepMaterial:   "fabric_premium",
	}
}

func newTestGateway(s ConfigurationStore, n Notifier) *Gateway {
	return NewGateway(GatewayConfig{
		Store:       s,
		Catalog:     domain.MustDefaultCatalog(),
		SaveTimeout: time.Second,
		Notifier:    n,
		Metrics:     metrics.New(nil),
	})
}

func TestSaveRecomputesTotal(t *testing.T) {
	gw := newTestGateway(store.NewMemoryStore(), nil)
	bogus := domain.Money(1)

	res, err := gw.Save(context.Background(), SaveRequest{
		Selections:            fullSelection(),
		InstallationRequested: true,
		Location:              "lviv",
		ClientTotal:           &bogus,
		ClientIP:              "127.0.0.1",
	})
	require.NoError(t, err)
	assert.True(t, res.Created)
	cfg := res.Configuration
	assert.Equal(t, domain.Money(7125), cfg.ComputedTotal)
	assert.True(t, domain.ValidShareToken(cfg.ShareToken))
	assert.NotEmpty(t, cfg.ID)
	assert.Equal(t, "127.0.0.1", cfg.ClientIP)

	got, err := gw.GetByShareToken(context.Background(), cfg.ShareToken)
	require.NoError(t, err)
	assert.Equal(t, cfg.ID, got.ID)
	assert.Equal(t, fullSelection(), got.Selections)
}

func TestSaveDefaultsLocation(t *testing.T) {
	gw := newTestGateway(store.NewMemoryStore(), nil)
	res, err := gw.Save(context.Background(), SaveRequest{Selections: fullSelection(), InstallationRequested: true})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultLocation, res.Configuration.Location)
	assert.Equal(t, domain.Money(7500), res.Configuration.ComputedTotal)
}

func TestSaveIsIdempotentByKey(t *testing.T) {
	gw := newTestGateway(store.NewMemoryStore(), nil)
	req := SaveRequest{Selections: fullSelection(), IdempotencyKey: "req-1"}

	first, err := gw.Save(context.Background(), req)
	require.NoError(t, err)
	second, err := gw.Save(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, first.Created)
	assert.False(t, second.Created)
	assert.Equal(t, first.Configuration.ID, second.Configuration.ID)
	assert.Equal(t, first.Configuration.ShareToken, second.Configuration.ShareToken)

	items, err := gw.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

// countingStore считает вставки и задерживает их, чтобы дубли пересеклись.
type countingStore struct {
	*store.MemoryStore
	creates atomic.Int32
	delay   time.Duration
}

func (c *countingStore) Create(ctx context.Context, cfg *domain.Configuration) (*domain.Configuration, bool, error) {
	c.creates.Add(1)
	time.Sleep(c.delay)
	return c.MemoryStore.Create(ctx, cfg)
}

func TestConcurrentDuplicatesCollapse(t *testing.T) {
	s := &countingStore{MemoryStore: store.NewMemoryStore(), delay: 50 * time.Millisecond}
	gw := newTestGateway(s, nil)

	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := gw.Save(context.Background(), SaveRequest{Selections: fullSelection(), IdempotencyKey: "same"})
			if err == nil {
				ids[i] = res.Configuration.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	items, err := s.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

// slowStore ждёт delay и уважает отмену контекста, как настоящая БД.
type slowStore struct {
	*store.MemoryStore
	creates atomic.Int32
	delay   time.Duration
}

func (s *slowStore) Create(ctx context.Context, cfg *domain.Configuration) (*domain.Configuration, bool, error) {
	s.creates.Add(1)
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
	return s.MemoryStore.Create(ctx, cfg)
}

func TestDuplicateSurvivesFirstCallerCancel(t *testing.T) {
	s := &slowStore{MemoryStore: store.NewMemoryStore(), delay: 100 * time.Millisecond}
	gw := newTestGateway(s, nil)
	req := SaveRequest{Selections: fullSelection(), IdempotencyKey: "k"}

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()

	var (
		wg   sync.WaitGroup
		resB SaveResult
		errB error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		gw.Save(ctxA, req)
	}()
	go func() {
		defer wg.Done()
		time.Sleep(5 * time.Millisecond)
		resB, errB = gw.Save(context.Background(), req)
	}()
	time.Sleep(20 * time.Millisecond)
	cancelA()
	wg.Wait()

	require.NoError(t, errB)
	require.NotNil(t, resB.Configuration)
	assert.Equal(t, int32(1), s.creates.Load())

	items, err := s.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

// flakyStore отвечает ошибкой, пока fail > 0.
type flakyStore struct {
	*store.MemoryStore
	fail int
}

func (f *flakyStore) Create(ctx context.Context, cfg *domain.Configuration) (*domain.Configuration, bool, error) {
	if f.fail > 0 {
		f.fail--
		return nil, false, errors.New("connection reset")
	}
	return f.MemoryStore.Create(ctx, cfg)
}

func TestSaveFailureIsRetryable(t *testing.T) {
	s := &flakyStore{MemoryStore: store.NewMemoryStore(), fail: 1}
	gw := newTestGateway(s, nil)
	req := SaveRequest{Selections: fullSelection(), IdempotencyKey: "retry-me"}

	_, err := gw.Save(context.Background(), req)
	var persistence *domain.PersistenceError
	require.True(t, errors.As(err, &persistence))

	res, err := gw.Save(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Created)
}

// collidingStore отвергает первые токены как занятые.
type collidingStore struct {
	*store.MemoryStore
	collisions int
}

func (c *collidingStore) Create(ctx context.Context, cfg *domain.Configuration) (*domain.Configuration, bool, error) {
	if c.collisions > 0 {
		c.collisions--
		return nil, false, domain.ErrDuplicateShareToken
	}
	return c.MemoryStore.Create(ctx, cfg)
}

func TestShareTokenCollisionRetries(t *testing.T) {
	gw := newTestGateway(&collidingStore{MemoryStore: store.NewMemoryStore(), collisions: 2}, nil)
	res, err := gw.Save(context.Background(), SaveRequest{Selections: fullSelection()})
	require.NoError(t, err)
	assert.True(t, res.Created)

	gw = newTestGateway(&collidingStore{MemoryStore: store.NewMemoryStore(), collisions: 5}, nil)
	_, err = gw.Save(context.Background(), SaveRequest{Selections: fullSelection()})
	assert.ErrorIs(t, err, domain.ErrDuplicateShareToken)
}

func TestGetByShareTokenNotFound(t *testing.T) {
	gw := newTestGateway(store.NewMemoryStore(), nil)
	for _, token := range []string{"AbCdEf123456", "bad", ""} {
		_, err := gw.GetByShareToken(context.Background(), token)
		var notFound *domain.ShareTokenNotFoundError
		assert.True(t, errors.As(err, &notFound), token)
	}
}

type chanNotifier chan *domain.Configuration

func (c chanNotifier) ConfigurationSaved(ctx context.Context, cfg *domain.Configuration) error {
	c <- cfg
	return nil
}

func TestNotifierCalledOnlyForNewRecords(t *testing.T) {
	n := make(chanNotifier, 2)
	gw := newTestGateway(store.NewMemoryStore(), n)
	req := SaveRequest{Selections: fullSelection(), IdempotencyKey: "notify"}

	first, err := gw.Save(context.Background(), req)
	require.NoError(t, err)
	select {
	case cfg := <-n:
		assert.Equal(t, first.Configuration.ID, cfg.ID)
	case <-time.After(time.Second):
		t.Fatal("notifier was not called")
	}

	_, err = gw.Save(context.Background(), req)
	require.NoError(t, err)
	select {
	case <-n:
		t.Fatal("replayed save must not notify")
	case <-time.After(100 * time.Millisecond):
	}
}
