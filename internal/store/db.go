package store

import (
	"context"
	"fmt"
	"net"
	"net/url"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Supported DB_DRIVER values.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type dialect struct {
	name   string
	driver string
	schema string
	// bucketParam spells the hour-bucket placeholder inside a SELECT list, where
	// PostgreSQL cannot infer the parameter type on its own.
	bucketParam string
}

var dialects = map[string]dialect{
	DriverPostgres: {name: DriverPostgres, driver: "pgx", schema: postgresSchema, bucketParam: "CAST(? AS TIMESTAMPTZ)"},
	DriverSQLite:   {name: DriverSQLite, driver: "sqlite", schema: sqliteSchema, bucketParam: "?"},
}

// DB is the relational data store shared by the jobs and the query API.
// It is safe for concurrent use.
type DB struct {
	*sqlx.DB
	dialect dialect
}

// Open connects to the store, verifies connectivity and applies the schema.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := sqlx.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if d.name == DriverSQLite {
		// One connection keeps the per-connection pragmas in effect for every query.
		db.SetMaxOpenConns(1)
		for _, pragma := range []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA busy_timeout=30000",
			"PRAGMA foreign_keys=ON",
		} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
			}
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{DB: db, dialect: d}, nil
}

// PostgresDSN builds a connection URL from discrete settings.
func PostgresDSN(host, port, user, password, database, sslmode string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.User(user),
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + database,
	}
	if password != "" {
		u.User = url.UserPassword(user, password)
	}
	if sslmode != "" {
		u.RawQuery = url.Values{"sslmode": []string{sslmode}}.Encode()
	}
	return u.String()
}

// Ping checks that the store is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// inTx runs fn inside one transaction; any error rolls the whole unit back.
func (db *DB) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
