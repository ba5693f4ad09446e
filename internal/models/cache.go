package models

// LastSyncKey is the cache key holding the instant of the last successful sync.
const LastSyncKey = "last_sync"

// CacheEntry is a key/value pair in the cache table. Value is opaque to the
// store; for LastSyncKey it is a stringified millisecond timestamp.
type CacheEntry struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	Timestamp int64  `json:"timestamp"`
}
