// Package models defines the records persisted by the local user cache.
package models

import "time"

// Status tags where a user record came from.
type Status string

const (
	// StatusCached marks a record persisted by a sync.
	StatusCached Status = "Cached"
	// StatusOnline marks a record delivered by the live source and not yet
	// promoted into durable storage.
	StatusOnline Status = "Online"
)

// User is a single user record.
type User struct {
	// ID is assigned by the store on insert. Zero means "not persisted yet".
	ID int64 `json:"id"`

	// Name is the display name, never empty.
	Name string `json:"name"`

	// Status tells whether the record is cached or live.
	Status Status `json:"status"`

	// LastSyncTime is the creation/update instant in milliseconds since epoch.
	LastSyncTime int64 `json:"last_sync_time"`
}

// WithStatus returns a copy of u carrying the given status.
func (u User) WithStatus(s Status) User {
	u.Status = s
	return u
}

// UnixMilli converts t to the millisecond timestamps stored in records.
func UnixMilli(t time.Time) int64 {
	return t.UnixMilli()
}
