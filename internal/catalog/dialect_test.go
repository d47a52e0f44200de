package catalog

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestDialectFor(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"", "sqlite"},
		{"sqlite", "sqlite"},
		{"SQLite3", "sqlite"},
		{"postgres", "postgres"},
		{" postgresql ", "postgres"},
	}
	for _, tt := range tests {
		d, err := DialectFor(tt.driver)
		if err != nil {
			t.Errorf("DialectFor(%q) error: %v", tt.driver, err)
			continue
		}
		if d.Driver != tt.want {
			t.Errorf("DialectFor(%q) = %s, want %s", tt.driver, d, tt.want)
		}
	}

	if _, err := DialectFor("mysql"); !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("DialectFor(mysql) error = %v, want ErrUnknownDriver", err)
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		query   string
		want    string
	}{
		{"sqlite unchanged", SQLite, "SELECT id FROM runs WHERE seed = ? AND digest = ?", "SELECT id FROM runs WHERE seed = ? AND digest = ?"},
		{"postgres numbered", Postgres, "SELECT id FROM runs WHERE seed = ? AND digest = ?", "SELECT id FROM runs WHERE seed = $1 AND digest = $2"},
		{"postgres no params", Postgres, "SELECT COUNT(*) FROM runs", "SELECT COUNT(*) FROM runs"},
		{"postgres quoted", Postgres, "SELECT id FROM runs WHERE params = 'why?' AND seed = ?", "SELECT id FROM runs WHERE params = 'why?' AND seed = $1"},
		{"postgres many", Postgres, "VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", "VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.Rebind(tt.query); got != tt.want {
				t.Errorf("Rebind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPostgresUniqueViolation(t *testing.T) {
	dup := &pq.Error{Code: "23505", Message: `duplicate key value violates unique constraint "runs_seed_value_digest_key"`}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unique", dup, true},
		{"wrapped", fmt.Errorf("record: %w", dup), true},
		{"other sqlstate", &pq.Error{Code: "23502"}, false},
		{"plain error", errors.New("duplicate key"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Postgres.IsUniqueViolation(tt.err); got != tt.want {
				t.Errorf("IsUniqueViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestSQLiteUniqueViolation(t *testing.T) {
	if SQLite.IsUniqueViolation(nil) {
		t.Error("nil is not a unique violation")
	}
	if SQLite.IsUniqueViolation(errors.New("UNIQUE constraint failed: runs.seed")) {
		t.Error("only driver errors are matched")
	}
	if SQLite.IsUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Error("a postgres error matched the sqlite dialect")
	}
}

func TestPostgresDSN(t *testing.T) {
	p := DefaultPostgresConfig()
	p.Password = "secret"

	want := "host=localhost port=5432 user=dungeongen password=secret dbname=dungeongen sslmode=disable"
	if got := p.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
