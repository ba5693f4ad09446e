package users

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/usercache/internal/logging"
	"github.com/dmitrijs2005/usercache/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

// Observable wraps a Repository and broadcasts a full ListAll snapshot to
// subscribers after every mutation that changed rows.
type Observable struct {
	Repository

	logger logging.Logger
	gauge  prometheus.Gauge

	mu     sync.Mutex
	subs   map[int]*subscription
	nextID int
	closed bool
}

// ObservableOption configures an Observable.
type ObservableOption func(*Observable)

// WithSubscriberGauge tracks the number of live subscriptions in g.
func WithSubscriberGauge(g prometheus.Gauge) ObservableOption {
	return func(o *Observable) { o.gauge = g }
}

// NewObservable decorates repo with snapshot subscriptions.
func NewObservable(repo Repository, logger logging.Logger, opts ...ObservableOption) *Observable {
	o := &Observable{
		Repository: repo,
		logger:     logger,
		subs:       make(map[int]*subscription),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Observable) ReplaceAll(ctx context.Context, users []models.User) error {
	if err := o.Repository.ReplaceAll(ctx, users); err != nil {
		return err
	}
	if len(users) > 0 {
		o.publish(ctx)
	}
	return nil
}

func (o *Observable) DeleteByStatus(ctx context.Context, s models.Status) (int64, error) {
	n, err := o.Repository.DeleteByStatus(ctx, s)
	if err != nil {
		return n, err
	}
	if n > 0 {
		o.publish(ctx)
	}
	return n, nil
}

// Subscribe returns a channel yielding the current table contents first and
// then a snapshot after each change. The channel is closed once ctx is done
// or the Observable is closed. Calling Subscribe again starts a new,
// independent stream.
func (o *Observable) Subscribe(ctx context.Context) (<-chan []models.User, error) {
	sub := newSubscription()

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		sub.close()
		return sub.ch, nil
	}
	o.nextID++
	id := o.nextID
	o.subs[id] = sub
	o.trackLocked()
	o.mu.Unlock()

	snap, err := o.Repository.ListAll(ctx)
	if err != nil {
		o.unsubscribe(id)
		return nil, err
	}
	// a snapshot published since registration is at least as fresh
	sub.offerIfEmpty(snap)

	go func() {
		select {
		case <-ctx.Done():
		case <-sub.done:
		}
		o.unsubscribe(id)
	}()

	return sub.ch, nil
}

// Subscribers reports the number of live subscriptions.
func (o *Observable) Subscribers() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs)
}

// Close ends every subscription. Later Subscribe calls get a closed channel.
func (o *Observable) Close() {
	o.mu.Lock()
	o.closed = true
	subs := o.subs
	o.subs = make(map[int]*subscription)
	o.trackLocked()
	o.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
}

func (o *Observable) unsubscribe(id int) {
	o.mu.Lock()
	sub, ok := o.subs[id]
	delete(o.subs, id)
	o.trackLocked()
	o.mu.Unlock()

	if ok {
		sub.close()
	}
}

func (o *Observable) trackLocked() {
	if o.gauge != nil {
		o.gauge.Set(float64(len(o.subs)))
	}
}

func (o *Observable) publish(ctx context.Context) {
	o.mu.Lock()
	subs := make([]*subscription, 0, len(o.subs))
	for _, sub := range o.subs {
		subs = append(subs, sub)
	}
	o.mu.Unlock()

	if len(subs) == 0 {
		return
	}

	snap, err := o.Repository.ListAll(ctx)
	if err != nil {
		o.logger.Warn(ctx, "failed to build users snapshot", "error", err)
		return
	}

	for _, sub := range subs {
		sub.offer(slices.Clone(snap))
	}
	o.logger.Debug(ctx, "users snapshot published", "users", len(snap), "subscribers", len(subs))
}

// subscription is a single-slot mailbox: a newer snapshot replaces an unread
// older one.
type subscription struct {
	mu     sync.Mutex
	ch     chan []models.User
	done   chan struct{}
	closed bool
	// offered is set once any published snapshot went into ch
	offered bool
}

func newSubscription() *subscription {
	return &subscription{
		ch:   make(chan []models.User, 1),
		done: make(chan struct{}),
	}
}

func (s *subscription) offer(snap []models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snap
	s.offered = true
}

func (s *subscription) offerIfEmpty(snap []models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.offered {
		return
	}
	s.ch <- snap
}

func (s *subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
	close(s.ch)
}
