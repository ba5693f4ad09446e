package services

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/usercache/internal/common"
	"github.com/dmitrijs2005/usercache/internal/metrics"
	"github.com/dmitrijs2005/usercache/internal/models"
	"github.com/dmitrijs2005/usercache/internal/remote"
	"github.com/dmitrijs2005/usercache/internal/repositories/cache"
	"github.com/dmitrijs2005/usercache/internal/repositories/users"
	"github.com/google/uuid"
)

// SyncService is the only writer of the user and cache stores.
//
// A sync evicts the cached users before inserting the fresh copies and
// writes the last-sync marker last. When a later step fails the stores keep
// whatever the earlier steps left, possibly no cached users at all, until
// the next successful sync.
type SyncService struct {
	users  users.Repository
	cache  cache.Repository
	source remote.Source
	opts   options

	mu      sync.Mutex
	running atomic.Int32
}

func NewSyncService(u users.Repository, c cache.Repository, src remote.Source, opts ...Option) *SyncService {
	return &SyncService{
		users:  u,
		cache:  c,
		source: src,
		opts:   buildOptions(opts),
	}
}

// CacheSize is the number of live users a sync keeps.
func (s *SyncService) CacheSize() int {
	return s.opts.cacheSize
}

// InProgress reports whether a Sync call is currently running.
func (s *SyncService) InProgress() bool {
	return s.running.Load() > 0
}

// Sync fetches the live users and replaces the cached ones with copies of
// the first CacheSize of them, then records the sync time.
func (s *SyncService) Sync(ctx context.Context) error {
	s.running.Add(1)
	defer s.running.Add(-1)

	started := time.Now()
	log := s.opts.logger.With("sync_id", uuid.NewString())
	log.Debug(ctx, "sync started")

	live, err := s.source.FetchLive(ctx)
	if err != nil {
		err = common.Wrap(common.ErrSync, "sync failed", classify(common.ErrRemote, "failed to fetch live users", err))
		s.opts.metrics.ObserveSync(metrics.ResultRemoteError, time.Since(started))
		log.Warn(ctx, "sync aborted", "error", err)
		return err
	}

	copies := make([]models.User, 0, min(len(live), s.opts.cacheSize))
	for _, u := range live[:min(len(live), s.opts.cacheSize)] {
		copies = append(copies, u.WithStatus(models.StatusCached))
	}

	if err := s.replaceCached(ctx, copies); err != nil {
		err = common.Wrap(common.ErrSync, "sync failed", err)
		s.opts.metrics.ObserveSync(metrics.ResultStoreError, time.Since(started))
		log.Error(ctx, "sync failed", "error", err)
		return err
	}

	s.opts.metrics.ObserveSync(metrics.ResultOK, time.Since(started))
	s.opts.metrics.SetCachedUsers(len(copies))
	log.Info(ctx, "sync finished", "fetched", len(live), "cached", len(copies))
	return nil
}

func (s *SyncService) replaceCached(ctx context.Context, copies []models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// writes run to completion once started
	ctx = context.WithoutCancel(ctx)

	if _, err := s.users.DeleteByStatus(ctx, models.StatusCached); err != nil {
		return classify(common.ErrStorage, "failed to evict cached users", err)
	}
	if err := s.users.ReplaceAll(ctx, copies); err != nil {
		return classify(common.ErrStorage, "failed to store cached users", err)
	}

	now := models.UnixMilli(s.opts.now())
	marker := models.CacheEntry{
		Key:       models.LastSyncKey,
		Value:     strconv.FormatInt(now, 10),
		Timestamp: now,
	}
	if err := s.cache.Put(ctx, marker); err != nil {
		return classify(common.ErrStorage, "failed to write last sync marker", err)
	}
	return nil
}

// ClearCache deletes every cached user and then every cache entry.
func (s *SyncService) ClearCache(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx = context.WithoutCancel(ctx)

	n, err := s.users.DeleteByStatus(ctx, models.StatusCached)
	if err != nil {
		return common.Wrap(common.ErrCache, "failed to clear cache", err)
	}
	if err := s.cache.Clear(ctx); err != nil {
		return common.Wrap(common.ErrCache, "failed to clear cache", err)
	}

	s.opts.metrics.CacheCleared()
	s.opts.logger.Info(ctx, "cache cleared", "users_removed", n)
	return nil
}
