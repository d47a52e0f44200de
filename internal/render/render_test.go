package render

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gookit/color"

	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
	"github.com/lawnchairsociety/dungeongen/internal/vec"
)

// ringMap is a 3x3 ring of floor around one rock tile, offset from the
// origin so bounds handling is exercised.
func ringMap() dungeon.TileSet {
	ts := dungeon.NewTileSet()
	for y := 5; y <= 7; y++ {
		for x := -2; x <= 0; x++ {
			if x == -1 && y == 6 {
				continue
			}
			ts.Add(vec.New(x, y))
		}
	}
	return ts
}

func TestLines(t *testing.T) {
	got := Lines(ringMap())
	want := []string{"...", ".#.", "..."}

	if len(got) != len(want) {
		t.Fatalf("Lines() returned %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLinesEmpty(t *testing.T) {
	if got := Lines(dungeon.NewTileSet()); got != nil {
		t.Errorf("Lines(empty) = %v, want nil", got)
	}
}

func TestWriteASCII(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteASCII(&buf, ringMap(), ASCIIOptions{}); err != nil {
		t.Fatalf("WriteASCII error: %v", err)
	}

	if got, want := buf.String(), "...\n.#.\n...\n"; got != want {
		t.Errorf("WriteASCII = %q, want %q", got, want)
	}
}

func TestWriteASCIIClips(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteASCII(&buf, ringMap(), ASCIIOptions{MaxWidth: 2}); err != nil {
		t.Fatalf("WriteASCII error: %v", err)
	}

	if got, want := buf.String(), "..\n.#\n..\n"; got != want {
		t.Errorf("clipped WriteASCII = %q, want %q", got, want)
	}
}

func TestWriteASCIIColor(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteASCII(&buf, ringMap(), ASCIIOptions{Color: true}); err != nil {
		t.Fatalf("WriteASCII error: %v", err)
	}

	// Escape codes depend on the environment; the text underneath must not.
	if got, want := color.ClearCode(buf.String()), "...\n.#.\n...\n"; got != want {
		t.Errorf("coloured WriteASCII without codes = %q, want %q", got, want)
	}
}

func TestColorizeRuns(t *testing.T) {
	line := "..##.#"
	if got := color.ClearCode(colorize(line)); got != line {
		t.Errorf("colorize changed the text: %q", got)
	}
}

func TestUseColorNever(t *testing.T) {
	if UseColor("never", os.Stdout) {
		t.Error("UseColor(never) = true")
	}
}

func TestTerminalWidthFallback(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if got := TerminalWidth(f); got != DefaultWidth {
		t.Errorf("TerminalWidth(file) = %d, want %d", got, DefaultWidth)
	}
	if IsTerminal(f) {
		t.Error("IsTerminal(file) = true")
	}
}

func TestImage(t *testing.T) {
	img, err := Image(ringMap(), 4)
	if err != nil {
		t.Fatalf("Image error: %v", err)
	}

	if b := img.Bounds(); b.Dx() != 12 || b.Dy() != 12 {
		t.Fatalf("image size = %dx%d, want 12x12", b.Dx(), b.Dy())
	}

	tests := []struct {
		x, y  int
		floor bool
	}{
		{0, 0, true},
		{3, 3, true},
		{4, 4, false},
		{7, 7, false},
		{8, 4, true},
		{11, 11, true},
	}
	for _, tt := range tests {
		got := img.RGBAAt(tt.x, tt.y)
		want := RockColor
		if tt.floor {
			want = FloorColor
		}
		if got != want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, want)
		}
	}
}

func TestImageErrors(t *testing.T) {
	if _, err := Image(dungeon.NewTileSet(), 1); err != ErrEmptyMap {
		t.Errorf("Image(empty) error = %v, want ErrEmptyMap", err)
	}
	if _, err := Image(ringMap(), 0); err == nil {
		t.Error("Image accepted scale 0")
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maps", "img_0.png")

	if err := SavePNG(path, ringMap(), 2); err != nil {
		t.Fatalf("SavePNG error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open png: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 6 || b.Dy() != 6 {
		t.Errorf("decoded size = %dx%d, want 6x6", b.Dx(), b.Dy())
	}
}

func TestSavePNGEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")

	err := SavePNG(path, dungeon.NewTileSet(), 1)
	if err == nil || !strings.Contains(err.Error(), "nothing to render") {
		t.Errorf("SavePNG(empty) error = %v", err)
	}
}
