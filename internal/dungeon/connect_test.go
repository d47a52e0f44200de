package dungeon

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawnchairsociety/dungeongen/internal/vec"
)

func grownRooms(t *testing.T, seed int64) ([]Room, []Edge) {
	t.Helper()
	rooms, edges, err := Grow{Count: 7, MinSize: 3, MaxSize: 6}.Generate(rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return rooms, edges
}

func layoutTiles(rooms []Room, paths [][]vec.Vector2Int) TileSet {
	ts := NewTileSet()
	for _, r := range rooms {
		ts.Add(r.Tiles()...)
	}
	for _, p := range paths {
		ts.Add(p...)
	}
	return ts
}

func TestBasicDrawsEveryEdge(t *testing.T) {
	rooms, edges := grownRooms(t, 21)

	for _, tun := range []Tunneler{LShape{}, Weighted{}} {
		paths := Basic{}.Connect(rand.New(rand.NewSource(1)), rooms, edges, tun)
		require.Len(t, paths, len(edges), tun.Name())
		assert.True(t, layoutTiles(rooms, paths).Connected(), "%s layout is not connected", tun.Name())
	}
}

func TestSecondaryZeroDistanceMatchesBasic(t *testing.T) {
	rooms, edges := grownRooms(t, 22)

	for _, tun := range []Tunneler{LShape{}, Weighted{}} {
		basic := Basic{}.Connect(rand.New(rand.NewSource(8)), rooms, edges, tun)
		secondary := Secondary{MaxDist: 0}.Connect(rand.New(rand.NewSource(8)), rooms, edges, tun)
		assert.Equal(t, basic, secondary, tun.Name())
	}
}

func TestSecondaryAddsShortCorridors(t *testing.T) {
	rooms, edges := grownRooms(t, 23)
	const maxDist = 12

	paths := Secondary{MaxDist: maxDist}.Connect(rand.New(rand.NewSource(9)), rooms, edges, LShape{})

	require.GreaterOrEqual(t, len(paths), len(edges))
	assert.LessOrEqual(t, len(paths), len(edges)+len(rooms))
	for _, p := range paths[len(edges):] {
		assert.LessOrEqual(t, len(p), maxDist)
		assert.NotEmpty(t, p)
	}
	assert.True(t, layoutTiles(rooms, paths).Connected())
}

func TestSecondaryUnlimitedKeepsEveryDraw(t *testing.T) {
	rooms, edges := grownRooms(t, 24)

	paths := Secondary{MaxDist: 1 << 20}.Connect(rand.New(rand.NewSource(10)), rooms, edges, LShape{})

	// Only self picks are skipped.
	assert.Greater(t, len(paths), len(edges))
}

func TestSecondarySingleRoom(t *testing.T) {
	rooms := []Room{NewRoom(vec.New(0, 0), vec.New(3, 3))}

	paths := Secondary{MaxDist: 100}.Connect(rand.New(rand.NewSource(1)), rooms, nil, LShape{})
	assert.Empty(t, paths)
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("", 9)
	require.NoError(t, err)
	assert.Equal(t, Basic{}, s)

	s, err = ParseStrategy("Secondary", 12)
	require.NoError(t, err)
	assert.Equal(t, Secondary{MaxDist: 12}, s)

	_, err = ParseStrategy("mst", 0)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}
