package catalog

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
	"github.com/lawnchairsociety/dungeongen/internal/seed"
)

// ErrRunNotFound is returned when a run lookup fails.
var ErrRunNotFound = errors.New("run not found")

// Run is one generated dungeon: enough to regenerate it plus its summary.
type Run struct {
	ID        int64     `json:"id"`
	Seed      string    `json:"seed"`
	SeedValue int64     `json:"seed_value"`
	Digest    string    `json:"digest"`
	Params    string    `json:"params"`
	Rows      int       `json:"rows"`
	Areas     int       `json:"areas"`
	Rooms     int       `json:"rooms"`
	Paths     int       `json:"paths"`
	Corridors int       `json:"corridors"`
	Tiles     int       `json:"tiles"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRun builds a Run from a finished generation. params is the serialized
// generator configuration the dungeon was built from.
func NewRun(s seed.Seed, rows int, params []byte, stats dungeon.Stats) Run {
	return Run{
		Seed:      s.Text,
		SeedValue: s.Value,
		Digest:    Digest(params),
		Params:    string(params),
		Rows:      rows,
		Areas:     stats.Areas,
		Rooms:     stats.Rooms,
		Paths:     stats.Paths,
		Corridors: stats.Corridors,
		Tiles:     stats.Tiles,
		Width:     stats.Width(),
		Height:    stats.Height(),
	}
}

// Digest returns a short BLAKE2b fingerprint of serialized parameters.
func Digest(params []byte) string {
	sum := blake2b.Sum256(params)
	return hex.EncodeToString(sum[:12])
}

const runColumns = "id, seed, seed_value, digest, params, row_count, areas, rooms, paths, corridors, tiles, width, height, created_at"

// Record stores a run and returns its id. Recording the same seed and
// parameters twice returns the id of the existing run.
func (c *Catalog) Record(run Run) (int64, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	// Both drivers support RETURNING, so the id comes back the same way.
	query := c.dialect.Rebind(
		`INSERT INTO runs (seed, seed_value, digest, params, row_count, areas, rooms, paths, corridors, tiles, width, height, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

	var id int64
	err := c.db.QueryRow(query,
		run.Seed, run.SeedValue, run.Digest, run.Params, run.Rows,
		run.Areas, run.Rooms, run.Paths, run.Corridors, run.Tiles,
		run.Width, run.Height, run.CreatedAt,
	).Scan(&id)
	if err != nil {
		if c.dialect.IsUniqueViolation(err) {
			existing, lookupErr := c.find(run.SeedValue, run.Digest)
			if lookupErr != nil {
				return 0, lookupErr
			}
			return existing.ID, nil
		}
		return 0, fmt.Errorf("failed to record run: %w", err)
	}

	return id, nil
}

// Get returns the run with the given id.
func (c *Catalog) Get(id int64) (*Run, error) {
	row := c.db.QueryRow(c.dialect.Rebind("SELECT "+runColumns+" FROM runs WHERE id = ?"), id)
	return scanRun(row)
}

func (c *Catalog) find(seedValue int64, digest string) (*Run, error) {
	row := c.db.QueryRow(
		c.dialect.Rebind("SELECT "+runColumns+" FROM runs WHERE seed_value = ? AND digest = ?"),
		seedValue, digest,
	)
	return scanRun(row)
}

// BySeed returns every run recorded for a seed text, oldest first.
func (c *Catalog) BySeed(seedText string) ([]Run, error) {
	rows, err := c.db.Query(
		c.dialect.Rebind("SELECT "+runColumns+" FROM runs WHERE seed = ? ORDER BY id"),
		seedText,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	return collectRuns(rows)
}

// List returns the most recent runs, newest first. limit <= 0 means all.
func (c *Catalog) List(limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY id DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := c.db.Query(c.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return collectRuns(rows)
}

// Count returns the number of recorded runs.
func (c *Catalog) Count() (int, error) {
	var count int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}

// Delete removes a run.
func (c *Catalog) Delete(id int64) error {
	result, err := c.db.Exec(c.dialect.Rebind("DELETE FROM runs WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var r Run
	err := s.Scan(&r.ID, &r.Seed, &r.SeedValue, &r.Digest, &r.Params, &r.Rows,
		&r.Areas, &r.Rooms, &r.Paths, &r.Corridors, &r.Tiles, &r.Width, &r.Height, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	return &r, nil
}

func collectRuns(rows *sql.Rows) ([]Run, error) {
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}
