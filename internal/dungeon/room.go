// Package dungeon generates tile layouts made of rectangular rooms joined by
// corridors. Independently generated areas are packed into a grid and then
// stitched together into one connected tile set.
package dungeon

import (
	"math/rand"

	"github.com/lawnchairsociety/dungeongen/internal/vec"
)

// Room is an axis-aligned rectangle. A is always the minimum corner and B the
// maximum corner; both are inclusive.
type Room struct {
	A, B vec.Vector2Int
}

// NewRoom creates a room from any two opposite corners.
func NewRoom(a, b vec.Vector2Int) Room {
	return Room{A: a.Min(b), B: a.Max(b)}
}

// Corners returns the four corners, clockwise from A.
func (r Room) Corners() [4]vec.Vector2Int {
	return [4]vec.Vector2Int{
		vec.New(r.A.X, r.A.Y),
		vec.New(r.B.X, r.A.Y),
		vec.New(r.B.X, r.B.Y),
		vec.New(r.A.X, r.B.Y),
	}
}

// Centre returns the integer midpoint of the room.
func (r Room) Centre() vec.Vector2Int {
	return vec.New((r.A.X+r.B.X)/2, (r.A.Y+r.B.Y)/2)
}

// Width returns the number of tile columns the room covers.
func (r Room) Width() int {
	return r.B.X - r.A.X + 1
}

// Height returns the number of tile rows the room covers.
func (r Room) Height() int {
	return r.B.Y - r.A.Y + 1
}

// TileCount returns the number of tiles the room covers.
func (r Room) TileCount() int {
	return r.Width() * r.Height()
}

// RandomPoint returns a tile inside the room, edges included.
// Repeated calls may return the same point.
func (r Room) RandomPoint(rng *rand.Rand) vec.Vector2Int {
	return vec.New(
		r.A.X+rng.Intn(r.B.X-r.A.X+1),
		r.A.Y+rng.Intn(r.B.Y-r.A.Y+1),
	)
}

// Intersects reports whether r overlaps other once other is inflated by
// border tiles on every side. A border of 0 is a plain overlap test.
func (r Room) Intersects(other Room, border int) bool {
	return !(other.A.X > r.B.X+border ||
		other.B.X < r.A.X-border ||
		other.A.Y > r.B.Y+border ||
		other.B.Y < r.A.Y-border)
}

// Contains reports whether p lies inside the room.
func (r Room) Contains(p vec.Vector2Int) bool {
	return p.X >= r.A.X && p.X <= r.B.X && p.Y >= r.A.Y && p.Y <= r.B.Y
}

// Tiles returns every tile the room covers in row-major order.
func (r Room) Tiles() []vec.Vector2Int {
	tiles := make([]vec.Vector2Int, 0, r.TileCount())
	for y := r.A.Y; y <= r.B.Y; y++ {
		for x := r.A.X; x <= r.B.X; x++ {
			tiles = append(tiles, vec.New(x, y))
		}
	}
	return tiles
}

// Shifted returns the room translated by d.
func (r Room) Shifted(d vec.Vector2Int) Room {
	return Room{A: r.A.Add(d), B: r.B.Add(d)}
}

// minCornerDistance returns the smallest Manhattan distance between any corner
// of r and any corner of other.
func (r Room) minCornerDistance(other Room) int {
	best := -1
	for _, ca := range r.Corners() {
		for _, cb := range other.Corners() {
			if d := ca.Manhattan(cb); best < 0 || d < best {
				best = d
			}
		}
	}
	return best
}

// join tunnels between a random point of r and a random point of other.
func (r Room) join(rng *rand.Rand, other Room, t Tunneler) []vec.Vector2Int {
	from := r.RandomPoint(rng)
	to := other.RandomPoint(rng)
	return t.Tunnel(rng, from, to)
}
