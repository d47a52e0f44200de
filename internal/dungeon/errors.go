package dungeon

import "errors"

var (
	// ErrEmptyArea is returned when bounds are requested from an area with no rooms.
	ErrEmptyArea = errors.New("area has no rooms")

	// ErrInvalidRoomSize is returned for min/max room sizes that cannot be sampled.
	ErrInvalidRoomSize = errors.New("invalid room size")

	// ErrRoomPlacement is returned when a growth generator runs out of
	// placement attempts for a room.
	ErrRoomPlacement = errors.New("could not place room")

	// ErrInvalidRowCount is returned when a dungeon is created with fewer than one row.
	ErrInvalidRowCount = errors.New("row count must be at least 1")

	// ErrNoAreas is returned when a dungeon with no areas is generated.
	ErrNoAreas = errors.New("dungeon has no areas")

	// ErrUnknownTunneler is returned by ParseTunneler for unrecognised names.
	ErrUnknownTunneler = errors.New("unknown tunneler")

	// ErrUnknownStrategy is returned by ParseStrategy for unrecognised names.
	ErrUnknownStrategy = errors.New("unknown connection strategy")

	// ErrUnknownGenerator is returned by ParseGenerator for unrecognised names.
	ErrUnknownGenerator = errors.New("unknown room generator")

	// ErrNotGenerated is returned when an area is used before GenerateRooms.
	ErrNotGenerated = errors.New("area has not been generated")
)
