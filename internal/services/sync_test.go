package services

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/usercache/internal/common"
	"github.com/dmitrijs2005/usercache/internal/metrics"
	"github.com/dmitrijs2005/usercache/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSync_KeepsFirstFiveAndReplaces(t *testing.T) {
	e := newEnv(t, 12)
	ctx := context.Background()

	require.NoError(t, e.sync.Sync(ctx))
	got, err := e.query.CachedUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"U1", "U2", "U3", "U4", "U5"}, userNames(got))

	require.NoError(t, e.sync.Sync(ctx))
	got, err = e.query.CachedUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"U1", "U2", "U3", "U4", "U5"}, userNames(got), "second sync replaces, never accumulates")
}

func TestSync_CachedCopiesMatchLivePrefix(t *testing.T) {
	for _, m := range []int{0, 1, 3, 5, 7, 12} {
		t.Run(strconv.Itoa(m), func(t *testing.T) {
			e := newEnv(t, m)
			ctx := context.Background()

			require.NoError(t, e.sync.Sync(ctx))

			live, err := e.query.LiveUsers(ctx)
			require.NoError(t, err)
			cached, err := e.query.CachedUsers(ctx)
			require.NoError(t, err)

			require.Len(t, cached, min(m, DefaultCacheSize))
			for i, c := range cached {
				assert.Equal(t, models.StatusCached, c.Status)
				assert.Equal(t, live[i].Name, c.Name)
				assert.Equal(t, live[i].LastSyncTime, c.LastSyncTime)
				assert.NotZero(t, c.ID)
			}
		})
	}
}

func TestSync_NeverPersistsOnlineRecords(t *testing.T) {
	e := newEnv(t, 12)
	ctx := context.Background()
	require.NoError(t, e.sync.Sync(ctx))

	all, err := e.users.ListAll(ctx)
	require.NoError(t, err)
	for _, u := range all {
		assert.Equal(t, models.StatusCached, u.Status)
	}
}

func TestSync_CustomCacheSize(t *testing.T) {
	e := newEnv(t, 12)
	s := NewSyncService(e.users, e.cache, e.source, WithCacheSize(2), WithClock(e.clock.Now))
	require.Equal(t, 2, s.CacheSize())

	require.NoError(t, s.Sync(context.Background()))
	got, err := e.query.CachedUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"U1", "U2"}, userNames(got))

	assert.Equal(t, DefaultCacheSize, NewSyncService(e.users, e.cache, e.source, WithCacheSize(0)).CacheSize())
}

func TestSync_WritesMarker(t *testing.T) {
	e := newEnv(t, 3)
	ctx := context.Background()

	require.NoError(t, e.sync.Sync(ctx))

	m, err := e.cache.Get(ctx, models.LastSyncKey)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, strconv.FormatInt(t0.UnixMilli(), 10), m.Value)
	assert.Equal(t, t0.UnixMilli(), m.Timestamp)
}

func TestSync_RemoteFailureLeavesStoresUntouched(t *testing.T) {
	e := newEnv(t, 12)
	ctx := context.Background()
	require.NoError(t, e.sync.Sync(ctx))
	before, err := e.query.CachedUsers(ctx)
	require.NoError(t, err)

	e.clock.Advance(time.Hour)
	e.source.fail(errBoom)

	err = e.sync.Sync(ctx)
	require.ErrorIs(t, err, common.ErrSync)
	require.ErrorIs(t, err, common.ErrRemote)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, common.ErrSync, common.KindOf(err))

	after, err := e.query.CachedUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	desc, err := e.query.LastSyncDescription(ctx)
	require.NoError(t, err)
	assert.Equal(t, "60 minutes ago", desc, "marker still points at the last good sync")
}

func TestSync_StorageFailureLeavesPartialState(t *testing.T) {
	e := newEnv(t, 12)
	ctx := context.Background()
	require.NoError(t, e.sync.Sync(ctx))

	fu := &flakyUsers{Repository: e.users, replaceErr: common.Wrap(common.ErrStorage, "failed to replace users", errBoom)}
	s := NewSyncService(fu, e.cache, e.source, WithClock(e.clock.Now))

	err := s.Sync(ctx)
	require.ErrorIs(t, err, common.ErrSync)
	require.ErrorIs(t, err, common.ErrStorage)

	cached, err := e.query.CachedUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, cached, "eviction ran before the failed insert")
}

func TestSync_MarkerFailureIsSyncFailure(t *testing.T) {
	e := newEnv(t, 12)
	fc := &flakyCache{Repository: e.cache, putErr: errBoom}
	s := NewSyncService(e.users, fc, e.source)

	err := s.Sync(context.Background())
	require.ErrorIs(t, err, common.ErrSync)
	require.ErrorIs(t, err, common.ErrStorage)
	require.ErrorIs(t, err, errBoom)
}

func TestSync_RecordsMetrics(t *testing.T) {
	e := newEnv(t, 12)
	m := metrics.New(nil)
	s := NewSyncService(e.users, e.cache, e.source, WithMetrics(m))

	require.NoError(t, s.Sync(context.Background()))
	e.source.fail(errBoom)
	require.Error(t, s.Sync(context.Background()))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SyncTotal.WithLabelValues(metrics.ResultOK)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SyncTotal.WithLabelValues(metrics.ResultRemoteError)))
	assert.Equal(t, float64(5), testutil.ToFloat64(m.CachedUsers))

	require.NoError(t, s.ClearCache(context.Background()))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.CachedUsers))
}

func TestSync_InProgress(t *testing.T) {
	e := newEnv(t, 0)
	src := &blockingSource{entered: make(chan struct{}), release: make(chan struct{})}
	s := NewSyncService(e.users, e.cache, src)

	assert.False(t, s.InProgress())

	done := make(chan error, 1)
	go func() { done <- s.Sync(context.Background()) }()

	<-src.entered
	assert.True(t, s.InProgress())

	close(src.release)
	require.NoError(t, <-done)
	assert.False(t, s.InProgress())
}

func TestClearCache_EmptiesBoth(t *testing.T) {
	e := newEnv(t, 12)
	ctx := context.Background()
	require.NoError(t, e.sync.Sync(ctx))

	require.NoError(t, e.sync.ClearCache(ctx))

	cached, err := e.query.CachedUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, cached)

	desc, err := e.query.LastSyncDescription(ctx)
	require.NoError(t, err)
	assert.Equal(t, NeverSynced, desc)

	require.NoError(t, e.sync.ClearCache(ctx), "clearing an empty cache is fine")
}

func TestClearCache_Failures(t *testing.T) {
	e := newEnv(t, 12)
	ctx := context.Background()

	s := NewSyncService(&flakyUsers{Repository: e.users, deleteErr: errBoom}, e.cache, e.source)
	err := s.ClearCache(ctx)
	require.ErrorIs(t, err, common.ErrCache)
	require.ErrorIs(t, err, errBoom)

	s = NewSyncService(e.users, &flakyCache{Repository: e.cache, clearErr: errBoom}, e.source)
	err = s.ClearCache(ctx)
	require.ErrorIs(t, err, common.ErrCache)
	assert.Equal(t, "Cache error: failed to clear cache: boom", common.UserMessage(err))
}

func TestSyncAndClear_ConcurrentStayConsistent(t *testing.T) {
	e := newEnv(t, 12)
	ctx := context.Background()

	for round := 0; round < 10; round++ {
		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(2)
			go func() { defer wg.Done(); assert.NoError(t, e.sync.Sync(ctx)) }()
			go func() { defer wg.Done(); assert.NoError(t, e.sync.ClearCache(ctx)) }()
		}
		wg.Wait()

		cached, err := e.query.CachedUsers(ctx)
		require.NoError(t, err)
		marker, err := e.cache.Get(ctx, models.LastSyncKey)
		require.NoError(t, err)

		if marker == nil {
			assert.Empty(t, cached, "round %d: cached users without a marker", round)
		} else {
			assert.Len(t, cached, DefaultCacheSize, "round %d: marker without cached users", round)
		}
	}
}

func TestSync_CancelledBeforeFetch(t *testing.T) {
	e := newEnv(t, 12)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e.source.fail(ctx.Err())
	err := e.sync.Sync(ctx)
	require.ErrorIs(t, err, common.ErrRemote)
	require.ErrorIs(t, err, context.Canceled)
}
