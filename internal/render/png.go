package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
	"github.com/lawnchairsociety/dungeongen/internal/vec"
)

var (
	FloorColor = color.RGBA{R: 150, G: 150, B: 50, A: 255}
	RockColor  = color.RGBA{A: 255}
)

// Image draws the map with one scale×scale block per tile. The image covers
// the tile bounds exactly.
func Image(ts dungeon.TileSet, scale int) (*image.RGBA, error) {
	if scale < 1 {
		return nil, fmt.Errorf("scale must be at least 1, got %d", scale)
	}
	lo, hi, ok := ts.Bounds()
	if !ok {
		return nil, ErrEmptyMap
	}

	w, h := hi.X-lo.X+1, hi.Y-lo.Y+1
	img := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))

	for py := 0; py < h*scale; py++ {
		for px := 0; px < w*scale; px++ {
			c := RockColor
			if ts.Has(vec.New(lo.X+px/scale, lo.Y+py/scale)) {
				c = FloorColor
			}
			img.SetRGBA(px, py, c)
		}
	}
	return img, nil
}

// WritePNG encodes the map as PNG to w.
func WritePNG(w io.Writer, ts dungeon.TileSet, scale int) error {
	img, err := Image(ts, scale)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// SavePNG writes the map to path, creating parent directories.
func SavePNG(path string, ts dungeon.TileSet, scale int) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create image directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := WritePNG(f, ts, scale); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
