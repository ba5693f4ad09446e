// Package cache provides the persistence layer for cache metadata, a small
// key/value table whose only production key is the last-sync marker.
//
// Two implementations satisfy Repository:
//
//   - SQLRepository:    the "cache" table of the local SQL store (SQLite or
//     Postgres, see dbx.Dialect)
//   - BadgerRepository: an embedded badger key/value store, on disk or in memory
//
// Every failure is classified as common.ErrStorage. Stores carry no business
// logic; freshness policy lives in internal/services.
package cache
