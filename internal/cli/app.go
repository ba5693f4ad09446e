package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/usercache/internal/common"
	"github.com/dmitrijs2005/usercache/internal/logging"
	"github.com/dmitrijs2005/usercache/internal/models"
)

// Querier is the read side of the core.
type Querier interface {
	CachedUsers(ctx context.Context) ([]models.User, error)
	LiveUsers(ctx context.Context) ([]models.User, error)
	LastSyncDescription(ctx context.Context) (string, error)
	SubscribeAllUsers(ctx context.Context) (<-chan []models.User, error)
}

// Syncer is the write side of the core.
type Syncer interface {
	Sync(ctx context.Context) error
	ClearCache(ctx context.Context) error
}

type App struct {
	query  Querier
	sync   Syncer
	logger logging.Logger
}

func NewApp(q Querier, s Syncer, logger logging.Logger) *App {
	return &App{query: q, sync: s, logger: logger}
}

// Run starts the shell on in and returns when it ends.
func (a *App) Run(ctx context.Context, in io.Reader) {
	printlnFn("Welcome to usercache (type 'help' for commands)")
	runREPL(ctx, a, func() string { return a.statusLine(ctx) }, bufio.NewScanner(in))
}

func (a *App) statusLine(ctx context.Context) string {
	desc, err := a.query.LastSyncDescription(ctx)
	if err != nil {
		return "last sync unknown"
	}
	return "last sync: " + desc
}

// report prints err for the user and hands it back.
func (a *App) report(ctx context.Context, err error) error {
	a.logger.Debug(ctx, "command failed", "error", err, "kind", common.KindName(err))
	printlnFn(common.UserMessage(err))
	return err
}

func (a *App) Status(ctx context.Context) error {
	desc, err := a.query.LastSyncDescription(ctx)
	if err != nil {
		return a.report(ctx, err)
	}
	cached, err := a.query.CachedUsers(ctx)
	if err != nil {
		return a.report(ctx, err)
	}
	printlnFn(fmt.Sprintf("Last sync: %s, cached users: %d", desc, len(cached)))
	return nil
}

func (a *App) Cached(ctx context.Context) error {
	us, err := a.query.CachedUsers(ctx)
	if err != nil {
		return a.report(ctx, err)
	}
	printUsers(us)
	return nil
}

func (a *App) Live(ctx context.Context) error {
	us, err := a.query.LiveUsers(ctx)
	if err != nil {
		return a.report(ctx, err)
	}
	printUsers(us)
	return nil
}

func (a *App) Sync(ctx context.Context) error {
	if err := a.sync.Sync(ctx); err != nil {
		return a.report(ctx, err)
	}
	printlnFn("Sync complete")
	return nil
}

func (a *App) Clear(ctx context.Context) error {
	if err := a.sync.ClearCache(ctx); err != nil {
		return a.report(ctx, err)
	}
	printlnFn("Cache cleared")
	return nil
}

// Watch prints every user table snapshot until wait returns.
func (a *App) Watch(ctx context.Context, wait func()) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch, err := a.query.SubscribeAllUsers(ctx)
	if err != nil {
		return a.report(ctx, err)
	}

	printlnFn("Watching users, press Enter to stop")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for snap := range ch {
			printlnFn(fmt.Sprintf("-- %d users --", len(snap)))
			printUsers(snap)
		}
	}()

	wait()
	cancel()
	wg.Wait()
	return nil
}

func printUsers(us []models.User) {
	if len(us) == 0 {
		printlnFn("(no users)")
		return
	}
	var b strings.Builder
	for i, u := range us {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%4d  %-20s %-7s %s", u.ID, u.Name, u.Status,
			time.UnixMilli(u.LastSyncTime).Format(time.DateTime))
	}
	printlnFn(b.String())
}
