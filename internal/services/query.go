package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/usercache/internal/common"
	"github.com/dmitrijs2005/usercache/internal/models"
	"github.com/dmitrijs2005/usercache/internal/remote"
	"github.com/dmitrijs2005/usercache/internal/repositories/cache"
	"github.com/dmitrijs2005/usercache/internal/repositories/users"
)

// NeverSynced describes a cache that has no last-sync marker.
const NeverSynced = "Never"

const msPerMinute = 60_000

// Overview is everything a screen shows at once.
type Overview struct {
	Cached   []models.User `json:"cached"`
	Live     []models.User `json:"live"`
	LastSync string        `json:"last_sync"`
}

// QueryService answers reads. It never writes.
type QueryService struct {
	users  users.Watcher
	cache  cache.Repository
	source remote.Source
	opts   options
}

func NewQueryService(u users.Watcher, c cache.Repository, src remote.Source, opts ...Option) *QueryService {
	return &QueryService{
		users:  u,
		cache:  c,
		source: src,
		opts:   buildOptions(opts),
	}
}

// CachedUsers returns the cached users ordered by id.
func (s *QueryService) CachedUsers(ctx context.Context) ([]models.User, error) {
	return s.users.ListByStatus(ctx, models.StatusCached)
}

// LiveUsers fetches the live users without touching the stores.
func (s *QueryService) LiveUsers(ctx context.Context) ([]models.User, error) {
	live, err := s.source.FetchLive(ctx)
	if err != nil {
		return nil, classify(common.ErrRemote, "failed to fetch live users", err)
	}
	return live, nil
}

// LastSyncDescription returns NeverSynced or "<N> minutes ago", N being
// whole minutes since the last successful sync.
func (s *QueryService) LastSyncDescription(ctx context.Context) (string, error) {
	e, err := s.cache.Get(ctx, models.LastSyncKey)
	if err != nil {
		return "", common.Wrap(common.ErrCache, "failed to read last sync marker", err)
	}
	if e == nil {
		return NeverSynced, nil
	}

	last, err := strconv.ParseInt(e.Value, 10, 64)
	if err != nil {
		return "", common.Wrap(common.ErrCache, "failed to parse last sync marker", err)
	}

	// a marker from the future (clock skew) yields a negative count
	minutes := (models.UnixMilli(s.opts.now()) - last) / msPerMinute
	return fmt.Sprintf("%d minutes ago", minutes), nil
}

// SubscribeAllUsers streams the whole user table, cached and otherwise.
func (s *QueryService) SubscribeAllUsers(ctx context.Context) (<-chan []models.User, error) {
	ch, err := s.users.Subscribe(ctx)
	if err != nil {
		return nil, classify(common.ErrStorage, "failed to subscribe to users", err)
	}
	return ch, nil
}

// Snapshot loads cached users, live users and the last-sync description.
func (s *QueryService) Snapshot(ctx context.Context) (Overview, error) {
	var (
		o   Overview
		err error
	)

	if o.Cached, err = s.CachedUsers(ctx); err != nil {
		return Overview{}, err
	}
	if o.Live, err = s.LiveUsers(ctx); err != nil {
		return Overview{}, err
	}
	if o.LastSync, err = s.LastSyncDescription(ctx); err != nil {
		return Overview{}, err
	}
	return o, nil
}
