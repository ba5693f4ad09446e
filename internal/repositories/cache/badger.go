package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/usercache/internal/common"
	"github.com/dmitrijs2005/usercache/internal/filex"
	"github.com/dmitrijs2005/usercache/internal/logging"
	"github.com/dmitrijs2005/usercache/internal/models"
)

const badgerKeyPrefix = "cache/"

// BadgerRepository implements Repository on top of badger. Entries are stored
// as JSON under "cache/<key>".
type BadgerRepository struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a badger store in dir. An empty dir keeps the
// store in memory.
func OpenBadger(dir string, logger logging.Logger) (*BadgerRepository, error) {
	if dir != "" {
		abs, err := filex.EnsureDir(dir)
		if err != nil {
			return nil, common.Wrap(common.ErrStorage, "failed to create badger dir", err)
		}
		dir = abs
	}

	opts := badger.DefaultOptions(dir).
		WithLogger(badgerLogger{l: logger}).
		WithLoggingLevel(badger.WARNING).
		WithInMemory(dir == "")

	db, err := badger.Open(opts)
	if err != nil {
		return nil, common.Wrap(common.ErrStorage, "failed to open badger", err)
	}
	return &BadgerRepository{db: db}, nil
}

// Close releases the underlying store.
func (r *BadgerRepository) Close() error {
	return r.db.Close()
}

func (r *BadgerRepository) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	var e *models.CacheEntry
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		e = &models.CacheEntry{}
		return json.Unmarshal(raw, e)
	})
	if err != nil {
		return nil, common.Wrap(common.ErrStorage, fmt.Sprintf("failed to get cache entry[%s]", key), err)
	}
	return e, nil
}

func (r *BadgerRepository) Put(ctx context.Context, e models.CacheEntry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return common.Wrap(common.ErrStorage, fmt.Sprintf("failed to encode cache entry[%s]", e.Key), err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerKeyPrefix+e.Key), raw)
	})
	if err != nil {
		return common.Wrap(common.ErrStorage, fmt.Sprintf("failed to put cache entry[%s]", e.Key), err)
	}
	return nil
}

func (r *BadgerRepository) Delete(ctx context.Context, key string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(badgerKeyPrefix + key))
	})
	if err != nil {
		return common.Wrap(common.ErrStorage, fmt.Sprintf("failed to delete cache entry[%s]", key), err)
	}
	return nil
}

func (r *BadgerRepository) Clear(ctx context.Context) error {
	if err := r.db.DropPrefix([]byte(badgerKeyPrefix)); err != nil {
		return common.Wrap(common.ErrStorage, "failed to clear cache", err)
	}
	return nil
}

// badgerLogger adapts logging.Logger to badger.Logger.
type badgerLogger struct {
	l logging.Logger
}

func (b badgerLogger) Errorf(format string, args ...any) {
	b.l.Error(context.Background(), b.msg(format, args...), "component", "badger")
}

func (b badgerLogger) Warningf(format string, args ...any) {
	b.l.Warn(context.Background(), b.msg(format, args...), "component", "badger")
}

func (b badgerLogger) Infof(format string, args ...any) {
	b.l.Info(context.Background(), b.msg(format, args...), "component", "badger")
}

func (b badgerLogger) Debugf(format string, args ...any) {
	b.l.Debug(context.Background(), b.msg(format, args...), "component", "badger")
}

func (badgerLogger) msg(format string, args ...any) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}
