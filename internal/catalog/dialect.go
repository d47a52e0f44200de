package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrUnknownDriver is returned for a catalog driver other than sqlite or postgres.
var ErrUnknownDriver = errors.New("unknown catalog driver")

// Dialect holds the SQL differences between the supported databases. Queries
// are written once with ? placeholders and rebound per dialect.
type Dialect struct {
	// Driver is the database/sql driver name.
	Driver string

	numbered   bool // $1, $2, ... instead of ?
	serial     string
	init       []string
	uniqueCode func(error) bool
}

var (
	SQLite = Dialect{
		Driver: "sqlite",
		serial: "INTEGER PRIMARY KEY AUTOINCREMENT",
		init: []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA busy_timeout = 5000",
		},
		uniqueCode: sqliteUniqueViolation,
	}

	Postgres = Dialect{
		Driver:     "postgres",
		numbered:   true,
		serial:     "BIGSERIAL PRIMARY KEY",
		uniqueCode: pqUniqueViolation,
	}
)

// DialectFor returns the dialect for a configured driver name. An empty name
// selects SQLite.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pq":
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func (d Dialect) String() string { return d.Driver }

// Rebind rewrites ? placeholders into the dialect's form. Question marks
// inside single-quoted literals are left alone.
//
//	input:    SELECT id FROM runs WHERE seed = ? AND digest = ?
//	postgres: SELECT id FROM runs WHERE seed = $1 AND digest = $2
func (d Dialect) Rebind(query string) string {
	if !d.numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	quoted := false
	for i := 0; i < len(query); i++ {
		switch c := query[i]; {
		case c == '\'':
			quoted = !quoted
			b.WriteByte(c)
		case c == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// IsUniqueViolation reports whether err comes from a UNIQUE constraint.
func (d Dialect) IsUniqueViolation(err error) bool {
	return err != nil && d.uniqueCode != nil && d.uniqueCode(err)
}

func sqliteUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// pqUniqueViolation matches SQLSTATE 23505.
func pqUniqueViolation(err error) bool {
	var pe *pq.Error
	return errors.As(err, &pe) && pe.Code == "23505"
}
