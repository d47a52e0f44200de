package dungeon

import (
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/lawnchairsociety/dungeongen/internal/vec"
)

// TileSet is a set of occupied floor tiles. Use NewTileSet; the zero value
// is not usable.
type TileSet struct {
	set mapset.Set[vec.Vector2Int]
}

// NewTileSet creates an empty tile set holding the given tiles.
func NewTileSet(tiles ...vec.Vector2Int) TileSet {
	ts := TileSet{set: mapset.New[vec.Vector2Int]()}
	ts.Add(tiles...)
	return ts
}

// Add inserts tiles into the set.
func (ts TileSet) Add(tiles ...vec.Vector2Int) {
	for _, t := range tiles {
		ts.set.Put(t)
	}
}

// Has reports whether t is occupied.
func (ts TileSet) Has(t vec.Vector2Int) bool {
	return ts.set.Has(t)
}

// Len returns the number of occupied tiles.
func (ts TileSet) Len() int {
	return ts.set.Size()
}

// Each calls fn for every tile in unspecified order.
func (ts TileSet) Each(fn func(t vec.Vector2Int)) {
	ts.set.Each(fn)
}

// Sorted returns the tiles in row-major order.
func (ts TileSet) Sorted() []vec.Vector2Int {
	tiles := make([]vec.Vector2Int, 0, ts.Len())
	ts.Each(func(t vec.Vector2Int) {
		tiles = append(tiles, t)
	})
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].Y != tiles[j].Y {
			return tiles[i].Y < tiles[j].Y
		}
		return tiles[i].X < tiles[j].X
	})
	return tiles
}

// Bounds returns the minimum and maximum corners of the occupied tiles.
// ok is false for an empty set.
func (ts TileSet) Bounds() (lo, hi vec.Vector2Int, ok bool) {
	ts.Each(func(t vec.Vector2Int) {
		if !ok {
			lo, hi, ok = t, t, true
			return
		}
		lo = lo.Min(t)
		hi = hi.Max(t)
	})
	return lo, hi, ok
}

// Connected reports whether every tile can reach every other tile through
// orthogonal steps over occupied tiles. An empty set is connected.
func (ts TileSet) Connected() bool {
	total := ts.Len()
	if total == 0 {
		return true
	}

	var start vec.Vector2Int
	found := false
	ts.Each(func(t vec.Vector2Int) {
		if !found {
			start, found = t, true
		}
	})

	visited := mapset.New[vec.Vector2Int]()
	visited.Put(start)
	queue := []vec.Vector2Int{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, step := range vec.Orthogonal {
			n := current.Add(step)
			if ts.Has(n) && !visited.Has(n) {
				visited.Put(n)
				queue = append(queue, n)
			}
		}
	}

	return visited.Size() == total
}
