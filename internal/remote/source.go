// Package remote provides the live user source consumed by the sync engine.
package remote

import (
	"context"
	"time"

	"github.com/dmitrijs2005/usercache/internal/models"
)

// Source fetches the current list of live users.
type Source interface {
	FetchLive(ctx context.Context) ([]models.User, error)
}

// stubNames is the fixed live data set served by Stub.
var stubNames = []string{
	"Ahmet Yılmaz",
	"Ayşe Demir",
	"Mehmet Kaya",
	"Fatma Şahin",
	"Ali Özkan",
	"Zeynep Arslan",
	"Mustafa Çelik",
	"Elif Doğan",
	"Hasan Koç",
	"Merve Aydın",
	"Emre Güneş",
	"Seda Polat",
}

// Stub is a deterministic stand-in for a network source. Every call returns
// the same names, all Online, stamped with the clock's current time.
type Stub struct {
	now func() time.Time
}

// StubOption configures a Stub.
type StubOption func(*Stub)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) StubOption {
	return func(s *Stub) { s.now = now }
}

func NewStub(opts ...StubOption) *Stub {
	s := &Stub{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Stub) FetchLive(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ts := models.UnixMilli(s.now())
	out := make([]models.User, 0, len(stubNames))
	for _, name := range stubNames {
		out = append(out, models.User{
			Name:         name,
			Status:       models.StatusOnline,
			LastSyncTime: ts,
		})
	}
	return out, nil
}
