package dungeon

// Grid maps areas to (row, column) cells. Areas are assigned round-robin to
// rows in the order they are added, so area i sits in row i%rows.
type Grid struct {
	rowCount int
	rows     [][]int
}

// NewGrid creates a grid with rowCount rows and no areas.
func NewGrid(rowCount int) *Grid {
	return &Grid{
		rowCount: rowCount,
		rows:     make([][]int, rowCount),
	}
}

// add assigns the next area index to its row and returns its cell.
func (g *Grid) add(idx int) (row, col int) {
	row = idx % g.rowCount
	g.rows[row] = append(g.rows[row], idx)
	return row, len(g.rows[row]) - 1
}

// Rows returns the configured row count.
func (g *Grid) Rows() int {
	return g.rowCount
}

// Columns returns the length of the longest row.
func (g *Grid) Columns() int {
	n := 0
	for _, row := range g.rows {
		n = max(n, len(row))
	}
	return n
}

// Cell returns the area index at (row, col). ok is false for empty cells,
// including cells past the end of a short row.
func (g *Grid) Cell(row, col int) (idx int, ok bool) {
	if row < 0 || row >= len(g.rows) || col < 0 || col >= len(g.rows[row]) {
		return 0, false
	}
	return g.rows[row][col], true
}

// Position returns the cell of area idx.
func (g *Grid) Position(idx int) (row, col int) {
	return idx % g.rowCount, idx / g.rowCount
}

// Row returns the area indices of row r in column order.
func (g *Grid) Row(r int) []int {
	if r < 0 || r >= len(g.rows) {
		return nil
	}
	return g.rows[r]
}
