package dungeon

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/lawnchairsociety/dungeongen/internal/vec"
)

// ConnectionStrategy turns a room set and its mandatory edges into corridors.
// Mandatory edges are always drawn.
type ConnectionStrategy interface {
	Connect(rng *rand.Rand, rooms []Room, edges []Edge, t Tunneler) [][]vec.Vector2Int
	Name() string
}

// Basic draws exactly one corridor per mandatory edge.
type Basic struct{}

// Name returns "basic".
func (Basic) Name() string { return "basic" }

// Connect draws the mandatory edges.
func (Basic) Connect(rng *rand.Rand, rooms []Room, edges []Edge, t Tunneler) [][]vec.Vector2Int {
	paths := make([][]vec.Vector2Int, 0, len(edges))
	for _, e := range edges {
		paths = append(paths, rooms[e.From].join(rng, rooms[e.To], t))
	}
	return paths
}

// Secondary draws the mandatory edges, then tries one extra corridor from
// every room to a random other room. Extra corridors longer than MaxDist
// tiles are dropped, as are empty ones.
type Secondary struct {
	MaxDist int
}

// Name returns "secondary".
func (Secondary) Name() string { return "secondary" }

// Connect draws the mandatory edges and the short secondary ones.
func (s Secondary) Connect(rng *rand.Rand, rooms []Room, edges []Edge, t Tunneler) [][]vec.Vector2Int {
	paths := Basic{}.Connect(rng, rooms, edges, t)
	if len(rooms) < 2 {
		return paths
	}

	for i := range rooms {
		j := rng.Intn(len(rooms))
		if j == i {
			continue
		}
		path := rooms[i].join(rng, rooms[j], t)
		if len(path) == 0 || len(path) > s.MaxDist {
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

// ParseStrategy maps a config name to a ConnectionStrategy. maxDist is only
// used by Secondary. An empty name selects Basic.
func ParseStrategy(name string, maxDist int) (ConnectionStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "basic":
		return Basic{}, nil
	case "secondary":
		return Secondary{MaxDist: maxDist}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
