package dungeon

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lawnchairsociety/dungeongen/internal/vec"
)

// DefaultSpacing is the distance added between neighbouring grid cells.
// A spacing of n leaves n-1 rock tiles between the widest areas of two
// neighbouring columns.
const DefaultSpacing = 2

// Dungeon packs areas into a grid, merges their tiles and connects
// neighbouring areas.
type Dungeon struct {
	spacing     int
	parallelism int
	log         *slog.Logger

	areas     []*Area
	grid      *Grid
	tiles     TileSet
	corridors [][]vec.Vector2Int
}

// Option configures a Dungeon.
type Option func(*Dungeon)

// WithSpacing sets the grid cell spacing. Values below 1 are raised to 1.
func WithSpacing(n int) Option {
	return func(d *Dungeon) {
		d.spacing = max(n, 1)
	}
}

// WithParallelism sets how many areas are generated concurrently.
func WithParallelism(n int) Option {
	return func(d *Dungeon) {
		d.parallelism = max(n, 1)
	}
}

// WithLogger sets the logger used for phase diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dungeon) {
		if l != nil {
			d.log = l
		}
	}
}

// NewDungeon creates an empty dungeon whose areas are spread over rowCount rows.
func NewDungeon(rowCount int, opts ...Option) (*Dungeon, error) {
	if rowCount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRowCount, rowCount)
	}

	d := &Dungeon{
		spacing:     DefaultSpacing,
		parallelism: 1,
		log:         slog.New(slog.DiscardHandler),
		grid:        NewGrid(rowCount),
		tiles:       NewTileSet(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// AddArea appends an area and assigns it to row len(areas) % rowCount.
func (d *Dungeon) AddArea(a *Area) {
	d.grid.add(len(d.areas))
	d.areas = append(d.areas, a)
}

// Areas returns the areas in insertion order.
func (d *Dungeon) Areas() []*Area { return d.areas }

// Grid returns the area grid.
func (d *Dungeon) Grid() *Grid { return d.grid }

// Tiles returns the generated tile set.
func (d *Dungeon) Tiles() TileSet { return d.tiles }

// Corridors returns the corridors drawn between neighbouring areas.
func (d *Dungeon) Corridors() [][]vec.Vector2Int { return d.corridors }

// Generate builds the map: every area is generated, packed into its grid
// cell, written into the tile set and joined to its left and upper
// neighbours. Each area draws from its own source seeded from rng in area
// order, so the result for a given seed does not depend on parallelism.
func (d *Dungeon) Generate(ctx context.Context, rng *rand.Rand) error {
	if len(d.areas) == 0 {
		return ErrNoAreas
	}

	start := time.Now()
	if err := d.generateAreas(ctx, rng); err != nil {
		return err
	}
	d.log.Debug("Areas generated", "areas", len(d.areas), "duration", time.Since(start))

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.position(); err != nil {
		return err
	}

	d.tiles = NewTileSet()
	for _, a := range d.areas {
		a.WriteTiles(d.tiles)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.connect(rng); err != nil {
		return err
	}

	d.log.Debug("Dungeon generated",
		"tiles", d.tiles.Len(),
		"corridors", len(d.corridors),
		"duration", time.Since(start))
	return nil
}

func (d *Dungeon) generateAreas(ctx context.Context, rng *rand.Rand) error {
	seeds := make([]int64, len(d.areas))
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.parallelism)

	for i, a := range d.areas {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := a.GenerateRooms(rand.New(rand.NewSource(seeds[i]))); err != nil {
				d.log.Warn("Area generation failed", "area", i, "generator", a.Generator().Name(), "error", err)
				return fmt.Errorf("area %d: %w", i, err)
			}
			return nil
		})
	}

	return g.Wait()
}

// position shifts every area into its grid cell. Column widths take the
// widest area of every row that has the column, so short rows are fine.
func (d *Dungeon) position() error {
	sizes := make([]vec.Vector2Int, len(d.areas))
	for i, a := range d.areas {
		s, err := a.Size()
		if err != nil {
			return fmt.Errorf("area %d: %w", i, err)
		}
		sizes[i] = s
	}

	colWidths := make([]int, d.grid.Columns())
	rowHeights := make([]int, d.grid.Rows())
	for r := 0; r < d.grid.Rows(); r++ {
		for c, idx := range d.grid.Row(r) {
			colWidths[c] = max(colWidths[c], sizes[idx].X+d.spacing)
			rowHeights[r] = max(rowHeights[r], sizes[idx].Y+d.spacing)
		}
	}

	colOffsets := prefixSums(colWidths)
	rowOffsets := prefixSums(rowHeights)

	for r := 0; r < d.grid.Rows(); r++ {
		for c, idx := range d.grid.Row(r) {
			if err := d.areas[idx].Shift(colOffsets[c]+d.spacing, rowOffsets[r]+d.spacing); err != nil {
				return fmt.Errorf("area %d: %w", idx, err)
			}
		}
	}
	return nil
}

// connect joins every area to its left neighbour and to the area above it.
func (d *Dungeon) connect(rng *rand.Rand) error {
	d.corridors = d.corridors[:0]
	for r := 0; r < d.grid.Rows(); r++ {
		for c, idx := range d.grid.Row(r) {
			var neighbours []int
			if left, ok := d.grid.Cell(r, c-1); ok {
				neighbours = append(neighbours, left)
			}
			if up, ok := d.grid.Cell(r-1, c); ok {
				neighbours = append(neighbours, up)
			}

			for _, n := range neighbours {
				path, err := d.areas[idx].Join(rng, d.areas[n])
				if err != nil {
					return fmt.Errorf("join areas %d and %d: %w", idx, n, err)
				}
				d.tiles.Add(path...)
				d.corridors = append(d.corridors, path)
			}
		}
	}
	return nil
}

// prefixSums returns s where s[i] is the sum of v[:i].
func prefixSums(v []int) []int {
	sums := make([]int, len(v))
	total := 0
	for i, x := range v {
		sums[i] = total
		total += x
	}
	return sums
}

// Stats summarises a generated dungeon.
type Stats struct {
	Areas     int            `json:"areas" yaml:"areas"`
	Rooms     int            `json:"rooms" yaml:"rooms"`
	Paths     int            `json:"paths" yaml:"paths"`
	Corridors int            `json:"corridors" yaml:"corridors"`
	Tiles     int            `json:"tiles" yaml:"tiles"`
	Min       vec.Vector2Int `json:"min" yaml:"min"`
	Max       vec.Vector2Int `json:"max" yaml:"max"`
}

// Width returns the number of tile columns of the bounding box.
func (s Stats) Width() int {
	if s.Tiles == 0 {
		return 0
	}
	return s.Max.X - s.Min.X + 1
}

// Height returns the number of tile rows of the bounding box.
func (s Stats) Height() int {
	if s.Tiles == 0 {
		return 0
	}
	return s.Max.Y - s.Min.Y + 1
}

// Stats returns counts and bounds for the generated map.
func (d *Dungeon) Stats() Stats {
	s := Stats{
		Areas:     len(d.areas),
		Corridors: len(d.corridors),
		Tiles:     d.tiles.Len(),
	}
	for _, a := range d.areas {
		s.Rooms += len(a.Rooms())
		s.Paths += len(a.Paths())
	}
	s.Min, s.Max, _ = d.tiles.Bounds()
	return s
}
