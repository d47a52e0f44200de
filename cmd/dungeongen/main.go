// dungeongen generates a batch of dungeons and writes them as PNG images,
// ASCII maps, or both.
//
// Usage:
//
//	go run ./cmd/dungeongen -config dungeongen.yaml -seed "ancient crypt" -count 4 -ascii
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/lawnchairsociety/dungeongen/internal/catalog"
	"github.com/lawnchairsociety/dungeongen/internal/config"
	"github.com/lawnchairsociety/dungeongen/internal/logger"
	"github.com/lawnchairsociety/dungeongen/internal/render"
	"github.com/lawnchairsociety/dungeongen/internal/seed"
)

func main() {
	configFile := flag.String("config", "dungeongen.yaml", "Path to generator config YAML file")
	seedText := flag.String("seed", "", "Seed: integer or phrase (default: from config, else current time)")
	count := flag.Int("count", 0, "Number of dungeons to generate (default: from config)")
	rows := flag.Int("rows", 0, "Rows of areas (default: from config)")
	pngPattern := flag.String("png", "", "PNG file pattern with %d for the index (default: from config)")
	noPNG := flag.Bool("no-png", false, "Do not write PNG files")
	scale := flag.Int("scale", 0, "PNG pixels per tile (default: from config)")
	ascii := flag.Bool("ascii", false, "Print every dungeon to stdout")
	colorMode := flag.String("color", "", "ASCII colour: auto, always or never (default: from config)")
	parallel := flag.Int("parallel", 0, "Areas generated concurrently (default: from config)")
	record := flag.Bool("record", false, "Record runs in the catalog")
	list := flag.Int("list", 0, "List the N most recent catalog runs and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *seedText != "" {
		cfg.Seed = *seedText
	}
	if *count > 0 {
		cfg.Count = *count
	}
	if *rows > 0 {
		cfg.Rows = *rows
	}
	if *pngPattern != "" {
		cfg.Output.PNGPattern = *pngPattern
	}
	if *noPNG {
		cfg.Output.PNGPattern = ""
	}
	if *scale > 0 {
		cfg.Output.Scale = *scale
	}
	if *ascii {
		cfg.Output.ASCII = true
	}
	if *colorMode != "" {
		cfg.Output.Color = *colorMode
	}
	if *parallel > 0 {
		cfg.Parallelism = *parallel
	}
	if *record || *list > 0 {
		cfg.Catalog.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config:\n%v\n", err)
		os.Exit(1)
	}

	if _, err := logger.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	var cat *catalog.Catalog
	if cfg.Catalog.Enabled {
		cat, err = catalog.Open(cfg.Catalog)
		if err != nil {
			logger.Error("Failed to open catalog", "driver", cfg.Catalog.Driver, "error", err)
			os.Exit(1)
		}
		defer cat.Close()
	}

	if *list > 0 {
		if err := listRuns(os.Stdout, cat, *list); err != nil {
			logger.Error("Failed to list runs", "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g := &batch{
		cfg:     cfg,
		catalog: cat,
		out:     os.Stdout,
		ascii: render.ASCIIOptions{
			Color:    cfg.Output.ASCII && render.UseColor(cfg.Output.Color, os.Stdout),
			MaxWidth: asciiWidth(),
		},
	}
	if err := g.run(ctx, seed.ParseOrNow(cfg.Seed)); err != nil {
		logger.Error("Generation failed", "error", err)
		os.Exit(1)
	}
}

// asciiWidth clips maps to the terminal, but not when stdout is redirected.
func asciiWidth() int {
	if !render.IsTerminal(os.Stdout) {
		return 0
	}
	return render.TerminalWidth(os.Stdout)
}

// batch generates cfg.Count dungeons from consecutive seeds.
type batch struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	out     io.Writer
	ascii   render.ASCIIOptions
}

func (b *batch) run(ctx context.Context, base seed.Seed) error {
	params, err := b.cfg.Params(0)
	if err != nil {
		return err
	}

	logger.Info("Generating dungeons", "count", b.cfg.Count, "seed", base.Text, "rows", b.cfg.Rows, "areas", len(b.cfg.Areas))

	for i := 0; i < b.cfg.Count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		s := seed.Derive(base, i)
		d, err := b.cfg.BuildDungeon(0, logger.With("seed", s.Text))
		if err != nil {
			return err
		}

		start := time.Now()
		if err := d.Generate(ctx, rand.New(rand.NewSource(s.Value))); err != nil {
			return fmt.Errorf("dungeon %d (seed %s): %w", i, s.Text, err)
		}
		stats := d.Stats()

		if b.cfg.Output.ASCII {
			fmt.Fprintf(b.out, "Dungeon %d (seed %s, %dx%d)\n", i, s.Text, stats.Width(), stats.Height())
			if err := render.WriteASCII(b.out, d.Tiles(), b.ascii); err != nil {
				return err
			}
			fmt.Fprintln(b.out)
		}

		var path string
		if b.cfg.Output.PNGPattern != "" {
			path = fmt.Sprintf(b.cfg.Output.PNGPattern, i)
			if err := render.SavePNG(path, d.Tiles(), b.cfg.Output.Scale); err != nil {
				return err
			}
		}

		if b.catalog != nil {
			id, err := b.catalog.Record(catalog.NewRun(s, b.cfg.Rows, params, stats))
			if err != nil {
				return err
			}
			logger.Debug("Run recorded", "id", id, "seed", s.Text)
		}

		logger.Info("Dungeon generated",
			"index", i,
			"seed", s.Text,
			"rooms", stats.Rooms,
			"tiles", stats.Tiles,
			"width", stats.Width(),
			"height", stats.Height(),
			"png", path,
			"duration", time.Since(start))
	}
	return nil
}

func listRuns(w io.Writer, cat *catalog.Catalog, limit int) error {
	runs, err := cat.List(limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSEED\tROWS\tAREAS\tROOMS\tTILES\tSIZE\tDIGEST\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%dx%d\t%s\t%s\n",
			r.ID, r.Seed, r.Rows, r.Areas, r.Rooms, r.Tiles, r.Width, r.Height, r.Digest,
			r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}
