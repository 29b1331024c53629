// Package store implements the account and recipe repositories on
// database/sql, backed by SQLite (mattn/go-sqlite3) or PostgreSQL (pgx).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/astro-web3/recipebox/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

const pingTimeout = 5 * time.Second

// DB wraps a pool and rewrites ? placeholders for drivers that need $n.
type DB struct {
	*sql.DB
	driver string
}

// Open connects using driver "sqlite3" or "postgres".
func Open(driver, dsn string) (*DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch driver {
	case config.DriverSQLite:
		db, err = sql.Open("sqlite3", sqliteDSN(dsn))
		if err == nil {
			// SQLite allows a single writer.
			db.SetMaxOpenConns(1)
		}
	case config.DriverPostgres:
		db, err = sql.Open("pgx", dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return &DB{DB: db, driver: driver}, nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", "5000")
	params.Set("_journal_mode", "WAL")
	return path + "?" + params.Encode()
}

func (db *DB) Driver() string {
	return db.driver
}

func (db *DB) rebind(query string) string {
	if db.driver != config.DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
