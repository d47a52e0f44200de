// Package vec provides the integer 2-D vector used for tile coordinates.
package vec

// Vector2Int is an immutable integer coordinate. It is comparable and can be
// used directly as a map key.
type Vector2Int struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// New returns the vector (x, y).
func New(x, y int) Vector2Int {
	return Vector2Int{X: x, Y: y}
}

// Add returns v + o.
func (v Vector2Int) Add(o Vector2Int) Vector2Int {
	return Vector2Int{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vector2Int) Sub(o Vector2Int) Vector2Int {
	return Vector2Int{X: v.X - o.X, Y: v.Y - o.Y}
}

// Mul returns the componentwise product of v and o.
func (v Vector2Int) Mul(o Vector2Int) Vector2Int {
	return Vector2Int{X: v.X * o.X, Y: v.Y * o.Y}
}

// Min returns the componentwise minimum of v and o.
func (v Vector2Int) Min(o Vector2Int) Vector2Int {
	return Vector2Int{X: min(v.X, o.X), Y: min(v.Y, o.Y)}
}

// Max returns the componentwise maximum of v and o.
func (v Vector2Int) Max(o Vector2Int) Vector2Int {
	return Vector2Int{X: max(v.X, o.X), Y: max(v.Y, o.Y)}
}

// Manhattan returns |v.X-o.X| + |v.Y-o.Y|.
func (v Vector2Int) Manhattan(o Vector2Int) int {
	return abs(v.X-o.X) + abs(v.Y-o.Y)
}

// Clamped returns the sign of each component, so every axis is -1, 0 or 1.
func (v Vector2Int) Clamped() Vector2Int {
	return Vector2Int{X: sign(v.X), Y: sign(v.Y)}
}

// Orthogonal holds the four unit steps used for 4-directional adjacency.
var Orthogonal = [4]Vector2Int{
	{X: 0, Y: -1},
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
