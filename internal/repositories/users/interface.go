package users

import (
	"context"

	"github.com/dmitrijs2005/usercache/internal/models"
)

// Repository describes the user table.
type Repository interface {
	// ListAll returns every record. Order is not meaningful.
	ListAll(ctx context.Context) ([]models.User, error)

	// ListByStatus returns the records whose status equals s, ordered by id.
	ListByStatus(ctx context.Context, s models.Status) ([]models.User, error)

	// ReplaceAll inserts each record, overwriting a row that shares its id.
	// Records with a zero id get a fresh store-assigned id. Rows with other
	// ids are untouched.
	ReplaceAll(ctx context.Context, users []models.User) error

	// DeleteByStatus removes every record whose status equals s and reports
	// how many rows went away.
	DeleteByStatus(ctx context.Context, s models.Status) (int64, error)
}

// Watcher is a Repository whose full contents can be observed.
type Watcher interface {
	Repository

	// Subscribe yields the current contents, then a snapshot after each
	// change, until ctx is done.
	Subscribe(ctx context.Context) (<-chan []models.User, error)
}
