package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/usercache/internal/common"
	"github.com/dmitrijs2005/usercache/internal/dbx"
	"github.com/dmitrijs2005/usercache/internal/models"
)

// SQLRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

// NewSQLRepository returns a SQLRepository bound to db.
func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	e := &models.CacheEntry{}
	err := r.db.QueryRowContext(ctx, dbx.Rebind(r.dialect, `SELECT key, value, timestamp FROM cache WHERE key = ?`), key).
		Scan(&e.Key, &e.Value, &e.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, common.Wrap(common.ErrStorage, fmt.Sprintf("failed to get cache entry[%s]", key), err)
	}
	return e, nil
}

func (r *SQLRepository) Put(ctx context.Context, e models.CacheEntry) error {
	_, err := r.db.ExecContext(ctx, dbx.Rebind(r.dialect, `
		INSERT INTO cache (key, value, timestamp) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, timestamp = excluded.timestamp
	`), e.Key, e.Value, e.Timestamp)
	if err != nil {
		return common.Wrap(common.ErrStorage, fmt.Sprintf("failed to put cache entry[%s]", e.Key), err)
	}
	return nil
}

func (r *SQLRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, dbx.Rebind(r.dialect, `DELETE FROM cache WHERE key = ?`), key)
	if err != nil {
		return common.Wrap(common.ErrStorage, fmt.Sprintf("failed to delete cache entry[%s]", key), err)
	}
	return nil
}

func (r *SQLRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cache`)
	if err != nil {
		return common.Wrap(common.ErrStorage, "failed to clear cache", err)
	}
	return nil
}
