package dungeon

import (
	"fmt"
	"math/rand"

	"github.com/lawnchairsociety/dungeongen/internal/vec"
)

// Area is one independently generated block of rooms and corridors. It is
// populated by GenerateRooms and afterwards only moved by Shift.
type Area struct {
	generator RoomGenerator
	tunneler  Tunneler
	strategy  ConnectionStrategy

	rooms []Room
	edges []Edge
	paths [][]vec.Vector2Int
}

// NewArea creates an empty area. A nil tunneler selects LShape and a nil
// strategy selects Basic.
func NewArea(generator RoomGenerator, tunneler Tunneler, strategy ConnectionStrategy) *Area {
	if tunneler == nil {
		tunneler = LShape{}
	}
	if strategy == nil {
		strategy = Basic{}
	}
	return &Area{
		generator: generator,
		tunneler:  tunneler,
		strategy:  strategy,
	}
}

// Generator returns the room generator of the area.
func (a *Area) Generator() RoomGenerator { return a.generator }

// Tunneler returns the tunneler of the area.
func (a *Area) Tunneler() Tunneler { return a.tunneler }

// Strategy returns the connection strategy of the area.
func (a *Area) Strategy() ConnectionStrategy { return a.strategy }

// Rooms returns the rooms of the area.
func (a *Area) Rooms() []Room { return a.rooms }

// Edges returns the mandatory edges produced by the room generator.
func (a *Area) Edges() []Edge { return a.edges }

// Paths returns the corridors of the area.
func (a *Area) Paths() [][]vec.Vector2Int { return a.paths }

// GenerateRooms replaces the layout of the area with a freshly generated one.
// On error the previous layout is kept.
func (a *Area) GenerateRooms(rng *rand.Rand) error {
	rooms, edges, err := a.generator.Generate(rng)
	if err != nil {
		return fmt.Errorf("generate %s rooms: %w", a.generator.Name(), err)
	}
	if len(rooms) == 0 {
		return fmt.Errorf("generate %s rooms: %w", a.generator.Name(), ErrEmptyArea)
	}

	a.paths = a.strategy.Connect(rng, rooms, edges, a.tunneler)
	a.rooms = rooms
	a.edges = edges
	return nil
}

// Bounds returns the minimum A and maximum B over all rooms.
func (a *Area) Bounds() (lo, hi vec.Vector2Int, err error) {
	if len(a.rooms) == 0 {
		return lo, hi, ErrEmptyArea
	}
	lo, hi = a.rooms[0].A, a.rooms[0].B
	for _, r := range a.rooms[1:] {
		lo = lo.Min(r.A)
		hi = hi.Max(r.B)
	}
	return lo, hi, nil
}

// Size returns the bounds extent (max - min). It is used for grid packing;
// the area spans Size()+1 tiles on each axis.
func (a *Area) Size() (vec.Vector2Int, error) {
	lo, hi, err := a.Bounds()
	if err != nil {
		return vec.Vector2Int{}, err
	}
	return hi.Sub(lo), nil
}

// Shift translates rooms and corridors so the minimum bound lands on
// (baseX, baseY).
func (a *Area) Shift(baseX, baseY int) error {
	lo, _, err := a.Bounds()
	if err != nil {
		return err
	}
	d := vec.New(baseX, baseY).Sub(lo)
	if d == (vec.Vector2Int{}) {
		return nil
	}

	for i, r := range a.rooms {
		a.rooms[i] = r.Shifted(d)
	}
	for _, path := range a.paths {
		for i, p := range path {
			path[i] = p.Add(d)
		}
	}
	return nil
}

// Join returns a corridor from the room of a closest to other to the matching
// room of other, measured by the smallest corner-to-corner Manhattan
// distance. Ties keep the first pair found, scanning a's rooms in order.
// Neither area is modified.
func (a *Area) Join(rng *rand.Rand, other *Area) ([]vec.Vector2Int, error) {
	if len(a.rooms) == 0 || len(other.rooms) == 0 {
		return nil, ErrNotGenerated
	}

	from, to := a.closestRooms(other)
	return from.join(rng, to, a.tunneler), nil
}

func (a *Area) closestRooms(other *Area) (Room, Room) {
	best := -1
	var from, to Room
	for _, ra := range a.rooms {
		for _, rb := range other.rooms {
			d := ra.minCornerDistance(rb)
			if best < 0 || d < best {
				best, from, to = d, ra, rb
			}
		}
	}
	return from, to
}

// RoomTileCount returns the number of tiles covered by the rooms.
func (a *Area) RoomTileCount() int {
	n := 0
	for _, r := range a.rooms {
		n += r.TileCount()
	}
	return n
}

// WriteTiles adds every room and corridor tile of the area to ts.
func (a *Area) WriteTiles(ts TileSet) {
	for _, r := range a.rooms {
		ts.Add(r.Tiles()...)
	}
	for _, path := range a.paths {
		ts.Add(path...)
	}
}
