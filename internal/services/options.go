package services

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/usercache/internal/common"
	"github.com/dmitrijs2005/usercache/internal/logging"
	"github.com/dmitrijs2005/usercache/internal/metrics"
)

// DefaultCacheSize is how many live users a sync keeps.
const DefaultCacheSize = 5

type options struct {
	cacheSize int
	now       func() time.Time
	logger    logging.Logger
	metrics   *metrics.Metrics
}

// Option configures SyncService and QueryService.
type Option func(*options)

// WithCacheSize sets how many live users a sync keeps. Values below one
// fall back to DefaultCacheSize.
func WithCacheSize(k int) Option {
	return func(o *options) { o.cacheSize = k }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(opts []Option) options {
	o := options{
		cacheSize: DefaultCacheSize,
		now:       time.Now,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cacheSize < 1 {
		o.cacheSize = DefaultCacheSize
	}
	return o
}

// classify attaches kind unless err already carries it.
func classify(kind error, op string, err error) error {
	if err == nil || errors.Is(err, kind) {
		return err
	}
	return common.Wrap(kind, op, err)
}
