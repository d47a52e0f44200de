package dungeon

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/lawnchairsociety/dungeongen/internal/vec"
)

// Tunneler traces a corridor between two tiles.
type Tunneler interface {
	// Tunnel returns the corridor tiles from a towards b.
	Tunnel(rng *rand.Rand, a, b vec.Vector2Int) []vec.Vector2Int
	// Name returns the config name of the tunneler.
	Name() string
}

// LShape draws an orthogonal elbow: a vertical run and a horizontal run that
// meet in one corner. Both endpoints are included and the elbow is emitted
// once, so the path has |dx|+|dy|+1 tiles.
type LShape struct{}

// Name returns "lshape".
func (LShape) Name() string { return "lshape" }

// Tunnel traces the elbow path. It does not consume randomness.
func (LShape) Tunnel(_ *rand.Rand, a, b vec.Vector2Int) []vec.Vector2Int {
	d := b.Sub(a)

	// The horizontal leg sits on a's row when the path is mostly horizontal.
	horY, verX := b.Y, a.X
	if d.X > d.Y {
		horY, verX = a.Y, b.X
	}

	lo, hi := a.Min(b), a.Max(b)
	path := make([]vec.Vector2Int, 0, hi.X-lo.X+hi.Y-lo.Y+1)
	for y := lo.Y; y <= hi.Y; y++ {
		path = append(path, vec.New(verX, y))
	}
	for x := lo.X; x <= hi.X; x++ {
		if x == verX {
			continue
		}
		path = append(path, vec.New(x, horY))
	}
	return path
}

// Weighted walks from a towards b one tile at a time, picking the axis with
// probability proportional to the distance left on it. The target tile is
// not emitted, so the path has exactly |dx|+|dy| tiles and a == b yields an
// empty path.
type Weighted struct{}

// Name returns "weighted".
func (Weighted) Name() string { return "weighted" }

// Tunnel traces the random walk.
func (Weighted) Tunnel(rng *rand.Rand, a, b vec.Vector2Int) []vec.Vector2Int {
	path := make([]vec.Vector2Int, 0, a.Manhattan(b))
	cur := a
	for cur != b {
		path = append(path, cur)

		left := b.Sub(cur)
		step := left.Clamped()
		ax, ay := abs(left.X), abs(left.Y)

		// ax+ay > 0 here, and an axis with nothing left has zero weight.
		if rng.Intn(ax+ay) < ax {
			cur = cur.Add(vec.New(step.X, 0))
		} else {
			cur = cur.Add(vec.New(0, step.Y))
		}
	}
	return path
}

// ParseTunneler maps a config name to a Tunneler. An empty name selects LShape.
func ParseTunneler(name string) (Tunneler, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "lshape", "l_shape", "l-shape":
		return LShape{}, nil
	case "weighted":
		return Weighted{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTunneler, name)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
