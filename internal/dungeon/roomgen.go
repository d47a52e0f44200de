package dungeon

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/lawnchairsociety/dungeongen/internal/vec"
)

const (
	// DefaultMaxAttempts caps placement retries per room for growth generators.
	DefaultMaxAttempts = 1000

	// SeparationBorder is the gap GrowSeparated keeps around existing rooms.
	SeparationBorder = 2
)

// Edge is a mandatory connection between two room indices. From is the room
// the new room grew from.
type Edge struct {
	From, To int
}

// RoomGenerator produces a room set and the edges that keep it connected.
// Every room is reachable from room 0 through the returned edges.
type RoomGenerator interface {
	Generate(rng *rand.Rand) ([]Room, []Edge, error)
	Name() string
}

// Chamber is a single room at the origin. Sizes are tile extents.
type Chamber struct {
	MinSize, MaxSize int
}

// Name returns "chamber".
func (Chamber) Name() string { return "chamber" }

// Generate returns one room and no edges.
func (c Chamber) Generate(rng *rand.Rand) ([]Room, []Edge, error) {
	if err := checkSizes(c.MinSize, c.MaxSize); err != nil {
		return nil, nil, err
	}
	return []Room{seedRoom(rng, c.MinSize, c.MaxSize)}, nil, nil
}

// Grow places rooms one at a time next to a randomly chosen existing room.
// Rooms never overlap but may touch.
type Grow struct {
	Count            int
	MinSize, MaxSize int
	// MaxAttempts caps retries per room; 0 means DefaultMaxAttempts.
	MaxAttempts int
}

// Name returns "grow".
func (Grow) Name() string { return "grow" }

// Generate grows Count rooms.
func (g Grow) Generate(rng *rand.Rand) ([]Room, []Edge, error) {
	return grow(rng, g.Count, g.MinSize, g.MaxSize, 0, g.MaxAttempts)
}

// GrowSeparated is Grow with a SeparationBorder gap between rooms.
type GrowSeparated struct {
	Count            int
	MinSize, MaxSize int
	MaxAttempts      int
}

// Name returns "grow_separated".
func (GrowSeparated) Name() string { return "grow_separated" }

// Generate grows Count separated rooms.
func (g GrowSeparated) Generate(rng *rand.Rand) ([]Room, []Edge, error) {
	return grow(rng, g.Count, g.MinSize, g.MaxSize, SeparationBorder, g.MaxAttempts)
}

func grow(rng *rand.Rand, count, minSize, maxSize, border, maxAttempts int) ([]Room, []Edge, error) {
	if err := checkSizes(minSize, maxSize); err != nil {
		return nil, nil, err
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	// Half-width of the window the new room's first corner is drawn from.
	d := maxSize + border

	rooms := make([]Room, 0, max(count, 1))
	rooms = append(rooms, seedRoom(rng, minSize, maxSize))
	var edges []Edge

	for len(rooms) < count {
		placed := false
		for attempt := 0; attempt < maxAttempts; attempt++ {
			ref := rng.Intn(len(rooms))
			c := rooms[ref].Centre()
			a := vec.New(c.X-d+rng.Intn(2*d+1), c.Y-d+rng.Intn(2*d+1))

			// Grow outwards from the reference room.
			dir := a.Sub(c).Clamped()
			if dir.X == 0 {
				dir.X = randomSign(rng)
			}
			if dir.Y == 0 {
				dir.Y = randomSign(rng)
			}

			w := randomDim(rng, minSize, maxSize)
			h := randomDim(rng, minSize, maxSize)
			r := NewRoom(a, a.Add(dir.Mul(vec.New(w-1, h-1))))

			if overlapsAny(r, rooms, border) {
				continue
			}

			edges = append(edges, Edge{From: ref, To: len(rooms)})
			rooms = append(rooms, r)
			placed = true
			break
		}
		if !placed {
			return nil, nil, fmt.Errorf("%w: room %d after %d attempts", ErrRoomPlacement, len(rooms), maxAttempts)
		}
	}

	return rooms, edges, nil
}

func overlapsAny(r Room, rooms []Room, border int) bool {
	for _, other := range rooms {
		if r.Intersects(other, border) {
			return true
		}
	}
	return false
}

func seedRoom(rng *rand.Rand, minSize, maxSize int) Room {
	w := randomDim(rng, minSize, maxSize)
	h := randomDim(rng, minSize, maxSize)
	return NewRoom(vec.New(0, 0), vec.New(w-1, h-1))
}

func checkSizes(minSize, maxSize int) error {
	if minSize < 1 {
		return fmt.Errorf("%w: min size %d is below 1", ErrInvalidRoomSize, minSize)
	}
	if minSize > maxSize {
		return fmt.Errorf("%w: min size %d exceeds max size %d", ErrInvalidRoomSize, minSize, maxSize)
	}
	return nil
}

func randomDim(rng *rand.Rand, minSize, maxSize int) int {
	return minSize + rng.Intn(maxSize-minSize+1)
}

func randomSign(rng *rand.Rand) int {
	if rng.Intn(2) == 0 {
		return -1
	}
	return 1
}

// GeneratorSpec names a room generator and its parameters, as read from
// config. Count and MaxAttempts are ignored by Chamber.
type GeneratorSpec struct {
	Name             string
	Count            int
	MinSize, MaxSize int
	MaxAttempts      int
}

// ParseGenerator builds the RoomGenerator described by g.
func ParseGenerator(g GeneratorSpec) (RoomGenerator, error) {
	var gen RoomGenerator
	switch strings.ToLower(strings.TrimSpace(g.Name)) {
	case "chamber":
		gen = Chamber{MinSize: g.MinSize, MaxSize: g.MaxSize}
	case "", "grow":
		gen = Grow{Count: g.Count, MinSize: g.MinSize, MaxSize: g.MaxSize, MaxAttempts: g.MaxAttempts}
	case "grow_separated", "grow-separated", "separated":
		gen = GrowSeparated{Count: g.Count, MinSize: g.MinSize, MaxSize: g.MaxSize, MaxAttempts: g.MaxAttempts}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGenerator, g.Name)
	}

	if err := checkSizes(g.MinSize, g.MaxSize); err != nil {
		return nil, err
	}
	if g.Count < 0 || g.MaxAttempts < 0 {
		return nil, fmt.Errorf("%s: count and max_attempts must not be negative", gen.Name())
	}
	return gen, nil
}
