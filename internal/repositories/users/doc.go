// Package users provides the persistence layer for user records.
//
// # Overview
//
// Repository is the passive table contract used by the services layer.
// SQLRepository implements it over dbx.DBTX for SQLite and Postgres.
// Observable decorates any Repository with a full-table subscription: after
// every ReplaceAll or DeleteByStatus that changed rows, subscribers receive a
// fresh ListAll snapshot.
//
// # Concurrency
//
// SQLRepository is safe for concurrent use when backed by *sql.DB. ReplaceAll
// runs its batch in a single transaction, so readers never see half a batch.
// Subscribers get snapshots on a channel with room for one value; a slow
// subscriber only ever sees the newest pending snapshot and never blocks a
// writer.
//
// Typical Usage
//
//	repo := users.NewObservable(users.NewSQLRepository(db, dbx.DialectSQLite), logger)
//	ch, _ := repo.Subscribe(ctx)
//	_ = repo.ReplaceAll(ctx, records)
//	snapshot := <-ch
package users
