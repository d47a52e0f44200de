package server

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/lawnchairsociety/dungeongen/internal/catalog"
	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
	"github.com/lawnchairsociety/dungeongen/internal/render"
	"github.com/lawnchairsociety/dungeongen/internal/seed"
)

// ErrTooManyRows is returned for preview requests above the configured row cap.
var ErrTooManyRows = errors.New("too many rows requested")

// Request asks for one dungeon. An empty seed picks a time based one and
// Rows <= 0 uses the configured row count.
type Request struct {
	Seed string `json:"seed"`
	Rows int    `json:"rows"`
}

// Response carries a rendered dungeon, or Error when generation failed.
type Response struct {
	Seed      string         `json:"seed,omitempty"`
	SeedValue int64          `json:"seed_value,omitempty"`
	RunID     int64          `json:"run_id,omitempty"`
	Width     int            `json:"width,omitempty"`
	Height    int            `json:"height,omitempty"`
	Rows      []string       `json:"rows,omitempty"`
	Stats     *dungeon.Stats `json:"stats,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Preview generates the dungeon described by req with the server's area
// configuration.
func (s *Server) Preview(ctx context.Context, req Request) (Response, error) {
	rows := req.Rows
	if rows <= 0 {
		rows = s.cfg.Rows
	}
	if limit := s.cfg.Server.MaxRows; limit > 0 && rows > limit {
		return Response{}, fmt.Errorf("%w: %d > %d", ErrTooManyRows, rows, limit)
	}

	sd := seed.ParseOrNow(req.Seed)

	d, err := s.cfg.BuildDungeon(rows, s.log)
	if err != nil {
		return Response{}, err
	}

	start := time.Now()
	if err := d.Generate(ctx, rand.New(rand.NewSource(sd.Value))); err != nil {
		return Response{}, fmt.Errorf("generate %q: %w", sd.Text, err)
	}

	stats := d.Stats()
	resp := Response{
		Seed:      sd.Text,
		SeedValue: sd.Value,
		Width:     stats.Width(),
		Height:    stats.Height(),
		Rows:      render.Lines(d.Tiles()),
		Stats:     &stats,
	}

	if s.catalog != nil {
		params, err := s.cfg.Params(rows)
		if err != nil {
			return Response{}, err
		}
		id, err := s.catalog.Record(catalog.NewRun(sd, rows, params, stats))
		if err != nil {
			s.log.Warn("Failed to record preview", "seed", sd.Text, "error", err)
		} else {
			resp.RunID = id
		}
	}

	s.log.Info("Preview generated",
		"seed", sd.Text,
		"rows", rows,
		"tiles", stats.Tiles,
		"duration", time.Since(start))
	return resp, nil
}
