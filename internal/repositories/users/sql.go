package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/usercache/internal/common"
	"github.com/dmitrijs2005/usercache/internal/dbx"
	"github.com/dmitrijs2005/usercache/internal/models"
)

// ErrEmptyName rejects records without a display name.
var ErrEmptyName = errors.New("user name must not be empty")

// SQLRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

// NewSQLRepository returns a new SQLRepository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) ListAll(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, status, last_sync_time FROM users ORDER BY id`)
	if err != nil {
		return nil, common.Wrap(common.ErrStorage, "failed to list users", err)
	}
	defer rows.Close()

	result, err := scanUsers(rows)
	if err != nil {
		return nil, common.Wrap(common.ErrStorage, "failed to list users", err)
	}
	return result, nil
}

func (r *SQLRepository) ListByStatus(ctx context.Context, s models.Status) ([]models.User, error) {
	query := dbx.Rebind(r.dialect, `SELECT id, name, status, last_sync_time FROM users WHERE status = ? ORDER BY id`)
	rows, err := r.db.QueryContext(ctx, query, string(s))
	if err != nil {
		return nil, common.Wrap(common.ErrStorage, fmt.Sprintf("failed to list %s users", s), err)
	}
	defer rows.Close()

	result, err := scanUsers(rows)
	if err != nil {
		return nil, common.Wrap(common.ErrStorage, fmt.Sprintf("failed to list %s users", s), err)
	}
	return result, nil
}

// ReplaceAll upserts the batch inside one transaction. When r is bound to a
// *sql.Tx the caller's transaction is used as is.
func (r *SQLRepository) ReplaceAll(ctx context.Context, users []models.User) error {
	if len(users) == 0 {
		return nil
	}
	for _, u := range users {
		if u.Name == "" {
			return common.Wrap(common.ErrStorage, "failed to replace users", ErrEmptyName)
		}
	}

	insert := dbx.Rebind(r.dialect, `INSERT INTO users (name, status, last_sync_time) VALUES (?, ?, ?)`)
	upsert := dbx.Rebind(r.dialect, `
		INSERT INTO users (id, name, status, last_sync_time) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name,
			status = excluded.status,
			last_sync_time = excluded.last_sync_time
	`)

	apply := func(ctx context.Context, tx dbx.DBTX) error {
		for _, u := range users {
			var err error
			if u.ID == 0 {
				_, err = tx.ExecContext(ctx, insert, u.Name, string(u.Status), u.LastSyncTime)
			} else {
				_, err = tx.ExecContext(ctx, upsert, u.ID, u.Name, string(u.Status), u.LastSyncTime)
			}
			if err != nil {
				return fmt.Errorf("user %q: %w", u.Name, err)
			}
		}
		return nil
	}

	var err error
	if db, ok := r.db.(dbx.TxBeginner); ok {
		err = dbx.WithTx(ctx, db, nil, apply)
	} else {
		err = apply(ctx, r.db)
	}
	if err != nil {
		return common.Wrap(common.ErrStorage, "failed to replace users", err)
	}
	return nil
}

func (r *SQLRepository) DeleteByStatus(ctx context.Context, s models.Status) (int64, error) {
	res, err := r.db.ExecContext(ctx, dbx.Rebind(r.dialect, `DELETE FROM users WHERE status = ?`), string(s))
	if err != nil {
		return 0, common.Wrap(common.ErrStorage, fmt.Sprintf("failed to delete %s users", s), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, common.Wrap(common.ErrStorage, "failed to get rows affected", err)
	}
	return n, nil
}

func scanUsers(rows *sql.Rows) ([]models.User, error) {
	result := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		var status string
		if err := rows.Scan(&u.ID, &u.Name, &status, &u.LastSyncTime); err != nil {
			return nil, err
		}
		u.Status = models.Status(status)
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
