package source

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/DreamCats/searchsync/internal/config"
)

// DB wraps the read-only relational source connection.
type DB struct {
	sqlDB  *sql.DB
	driver string
}

// Open connects to the configured relational source and verifies the
// connection. An unreachable source is a fatal startup failure.
func Open(cfg *config.DatabaseConfig) (*DB, error) {
	driver := cfg.Driver
	if driver == "postgres" {
		// lib/pq registers as "postgres"
	} else if driver == "sqlite" {
		// modernc.org/sqlite registers as "sqlite"
	} else {
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	sqlDB, err := sql.Open(driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{sqlDB: sqlDB, driver: driver}, nil
}

// OpenSQL wraps an existing *sql.DB (used by tests).
func OpenSQL(sqlDB *sql.DB, driver string) *DB {
	return &DB{sqlDB: sqlDB, driver: driver}
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.sqlDB.Close()
}

// SQLDB returns the underlying *sql.DB for direct queries
func (db *DB) SQLDB() *sql.DB {
	return db.sqlDB
}

// Ping verifies the connection is still usable.
func (db *DB) Ping(ctx context.Context) error {
	return db.sqlDB.PingContext(ctx)
}

// rebind converts ? placeholders to the $N form lib/pq requires. Queries in
// this package are written with ? so the sqlite driver can run them as-is.
func (db *DB) rebind(query string) string {
	if db.driver != "postgres" {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
