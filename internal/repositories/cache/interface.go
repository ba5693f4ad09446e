package cache

import (
	"context"

	"github.com/dmitrijs2005/usercache/internal/models"
)

// Repository is the key/value table holding cache metadata.
type Repository interface {
	// Get returns the entry stored under key, or (nil, nil) when absent.
	Get(ctx context.Context, key string) (*models.CacheEntry, error)

	// Put stores e, replacing value and timestamp of an existing key.
	Put(ctx context.Context, e models.CacheEntry) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry.
	Clear(ctx context.Context) error
}
