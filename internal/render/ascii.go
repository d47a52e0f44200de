// Package render draws generated dungeons as text or images.
package render

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/gookit/color"

	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
	"github.com/lawnchairsociety/dungeongen/internal/vec"
)

const (
	Floor = '.'
	Rock  = '#'
)

// ErrEmptyMap is returned when an empty tile set is rendered to an image.
var ErrEmptyMap = errors.New("nothing to render")

var (
	floorStyle = color.Style{color.FgYellow}
	rockStyle  = color.Style{color.FgGray}
)

// Lines returns one string per map row over the tile bounds, floor as '.'
// and rock as '#'. An empty set yields no lines.
func Lines(ts dungeon.TileSet) []string {
	lo, hi, ok := ts.Bounds()
	if !ok {
		return nil
	}

	lines := make([]string, 0, hi.Y-lo.Y+1)
	var b strings.Builder
	for y := lo.Y; y <= hi.Y; y++ {
		b.Reset()
		for x := lo.X; x <= hi.X; x++ {
			if ts.Has(vec.New(x, y)) {
				b.WriteByte(Floor)
			} else {
				b.WriteByte(Rock)
			}
		}
		lines = append(lines, b.String())
	}
	return lines
}

// ASCIIOptions controls WriteASCII.
type ASCIIOptions struct {
	// Color wraps floor and rock runs in terminal colours.
	Color bool

	// MaxWidth clips rows to this many columns. 0 means no limit.
	MaxWidth int
}

// WriteASCII prints the map to w, one row per line.
func WriteASCII(w io.Writer, ts dungeon.TileSet, opts ASCIIOptions) error {
	bw := bufio.NewWriter(w)
	for _, line := range Lines(ts) {
		if opts.MaxWidth > 0 && len(line) > opts.MaxWidth {
			line = line[:opts.MaxWidth]
		}
		if opts.Color {
			line = colorize(line)
		}
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// colorize styles runs of equal characters so each run costs one escape.
func colorize(line string) string {
	var b strings.Builder
	for start := 0; start < len(line); {
		end := start + 1
		for end < len(line) && line[end] == line[start] {
			end++
		}
		run := line[start:end]
		if line[start] == Floor {
			b.WriteString(floorStyle.Sprint(run))
		} else {
			b.WriteString(rockStyle.Sprint(run))
		}
		start = end
	}
	return b.String()
}
