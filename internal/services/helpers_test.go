package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/usercache/internal/database"
	"github.com/dmitrijs2005/usercache/internal/logging"
	"github.com/dmitrijs2005/usercache/internal/models"
	"github.com/dmitrijs2005/usercache/internal/repositories/cache"
	"github.com/dmitrijs2005/usercache/internal/repositories/users"
	"github.com/stretchr/testify/require"
)

var t0 = time.UnixMilli(1_700_000_000_000)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(at time.Time) *fakeClock { return &fakeClock{now: at} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeSource serves n users named U1..Un, or err when set.
type fakeSource struct {
	mu    sync.Mutex
	n     int
	err   error
	calls int
	clock *fakeClock
}

func (f *fakeSource) FetchLive(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.User, 0, f.n)
	for i := 1; i <= f.n; i++ {
		out = append(out, models.User{
			Name:         fmt.Sprintf("U%d", i),
			Status:       models.StatusOnline,
			LastSyncTime: models.UnixMilli(f.clock.Now()),
		})
	}
	return out, nil
}

func (f *fakeSource) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// blockingSource holds FetchLive until release is closed.
type blockingSource struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingSource) FetchLive(ctx context.Context) ([]models.User, error) {
	close(b.entered)
	<-b.release
	return []models.User{{Name: "U1", Status: models.StatusOnline}}, nil
}

// flakyUsers fails the selected writes.
type flakyUsers struct {
	users.Repository
	deleteErr  error
	replaceErr error
}

func (f *flakyUsers) DeleteByStatus(ctx context.Context, s models.Status) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	return f.Repository.DeleteByStatus(ctx, s)
}

func (f *flakyUsers) ReplaceAll(ctx context.Context, us []models.User) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	return f.Repository.ReplaceAll(ctx, us)
}

// flakyCache fails the selected operations.
type flakyCache struct {
	cache.Repository
	getErr   error
	putErr   error
	clearErr error
}

func (f *flakyCache) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Repository.Get(ctx, key)
}

func (f *flakyCache) Put(ctx context.Context, e models.CacheEntry) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.Repository.Put(ctx, e)
}

func (f *flakyCache) Clear(ctx context.Context) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	return f.Repository.Clear(ctx)
}

var errBoom = errors.New("boom")

type env struct {
	clock  *fakeClock
	source *fakeSource
	users  *users.Observable
	cache  cache.Repository
	sync   *SyncService
	query  *QueryService
}

func newEnv(t *testing.T, liveCount int) *env {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:", logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := newClock(t0)
	src := &fakeSource{n: liveCount, clock: clock}
	u := users.NewObservable(users.NewSQLRepository(db, db.Dialect), logging.Nop())
	t.Cleanup(u.Close)
	c := cache.NewSQLRepository(db, db.Dialect)

	return &env{
		clock:  clock,
		source: src,
		users:  u,
		cache:  c,
		sync:   NewSyncService(u, c, src, WithClock(clock.Now)),
		query:  NewQueryService(u, c, src, WithClock(clock.Now)),
	}
}

func userNames(us []models.User) []string {
	out := make([]string, len(us))
	for i, u := range us {
		out[i] = u.Name
	}
	return out
}
