// Package database opens the local SQL store and brings its schema up to
// date with embedded goose migrations.
//
// A DSN starting with postgres:// or postgresql:// is served by pgx; anything
// else is treated as a SQLite path (or ":memory:") served by modernc.org/sqlite.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/usercache/internal/dbx"
	"github.com/dmitrijs2005/usercache/internal/logging"
	"github.com/dmitrijs2005/usercache/internal/migrations"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// DB is an open database handle together with its dialect.
type DB struct {
	*sql.DB
	Dialect dbx.Dialect
}

// goose keeps its FS, dialect and logger in package globals.
var gooseMu sync.Mutex

// DialectFor picks the driver name and dialect for dsn.
func DialectFor(dsn string) (driver string, dialect dbx.Dialect) {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return "pgx", dbx.DialectPostgres
	}
	return "sqlite", dbx.DialectSQLite
}

// RunMigrations applies every pending migration for dialect. It is idempotent.
func RunMigrations(ctx context.Context, db *sql.DB, dialect dbx.Dialect, logger logging.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(gooseLogger{ctx: ctx, l: logger})

	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	dir := "sqlite"
	if dialect == dbx.DialectPostgres {
		dir = "postgres"
	}

	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Open connects to dsn and migrates the schema.
func Open(ctx context.Context, dsn string, logger logging.Logger) (*DB, error) {
	driver, dialect := DialectFor(dsn)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dialect == dbx.DialectSQLite {
		// one connection keeps ":memory:" a single database and serializes writers
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	if err := RunMigrations(ctx, db, dialect, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info(ctx, "database ready", "driver", driver)
	return &DB{DB: db, Dialect: dialect}, nil
}

// gooseLogger routes goose output through our logger.
type gooseLogger struct {
	ctx context.Context
	l   logging.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.l.Debug(g.ctx, strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.l.Error(g.ctx, strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}
