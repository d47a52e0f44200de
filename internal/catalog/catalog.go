// Package catalog records generated dungeons so a map can be found again and
// regenerated from its seed and parameters. Tiles are never stored.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Catalog is a run catalog on SQLite or PostgreSQL.
type Catalog struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to the database named by cfg and applies the schema.
func Open(cfg Config) (*Catalog, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	var dsn string
	switch dialect.Driver {
	case Postgres.Driver:
		dsn = cfg.Postgres.DSN()
	default:
		if cfg.SQLitePath == "" {
			return nil, errors.New("sqlite catalog needs a path")
		}
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create catalog directory: %w", err)
			}
		}
		dsn = cfg.SQLitePath
	}

	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	if dialect.Driver == Postgres.Driver {
		p := cfg.Postgres
		if p.MaxOpenConns > 0 {
			db.SetMaxOpenConns(p.MaxOpenConns)
		}
		if p.MaxIdleConns > 0 {
			db.SetMaxIdleConns(p.MaxIdleConns)
		}
		if p.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(p.ConnMaxLifetime)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to catalog: %w", err)
	}

	for _, stmt := range dialect.init {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize catalog: %w", err)
		}
	}

	c := &Catalog{db: db, dialect: dialect}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return c, nil
}

// OpenSQLite opens or creates a SQLite catalog at path.
func OpenSQLite(path string) (*Catalog, error) {
	return Open(Config{Driver: SQLite.Driver, SQLitePath: path})
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Dialect returns the dialect the catalog was opened with.
func (c *Catalog) Dialect() Dialect {
	return c.dialect
}

func (c *Catalog) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id ` + c.dialect.serial + `,
			seed TEXT NOT NULL,
			seed_value BIGINT NOT NULL,
			digest TEXT NOT NULL,
			params TEXT NOT NULL,
			row_count INTEGER NOT NULL,
			areas INTEGER NOT NULL,
			rooms INTEGER NOT NULL,
			paths INTEGER NOT NULL,
			corridors INTEGER NOT NULL,
			tiles INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL,
			UNIQUE(seed_value, digest)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_seed ON runs(seed)`,
	}

	for _, m := range migrations {
		if _, err := c.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
