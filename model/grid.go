package model

import (
	"crypto/md5"
	"fmt"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/go-life/rules"
	"github.com/sheikhrachel/go-life/utils"
)

// Cell is the state of a single grid position. Dead and Alive are 0 and 1 so counts can be summed.
type Cell uint8

const (
	Dead Cell = iota
	Alive
)

var (
	ErrInvalidSize   = errors.New("grid size must be a positive integer")
	ErrOutOfBounds   = errors.New("cell coordinates out of bounds")
	ErrNegativeSteps = errors.New("step count must be non-negative")
	ErrMalformedGrid = errors.New("grid rows must form a non-empty square of dead or alive cells")
)

// neighborOffsets are the 8 (row, col) offsets surrounding a cell
var neighborOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Grid is one generation of a square, bounded board.
//
// A Grid is never modified after construction: Step, Toggle, Advance and friends all
// return a new Grid, so a caller may keep an old generation around and share grids
// between goroutines freely.
type Grid struct {
	size  int
	cells [][]Cell
}

// NewGrid creates a size x size grid with every cell dead
func NewGrid(size int) (*Grid, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "[NewGrid] size: %d", size)
	}
	return newGrid(size), nil
}

func newGrid(size int) *Grid {
	cells := make([][]Cell, size)
	for i := range cells {
		cells[i] = make([]Cell, size)
	}
	return &Grid{size: size, cells: cells}
}

// FromCells builds a grid from explicit rows. The rows are copied.
func FromCells(rows [][]Cell) (*Grid, error) {
	size := len(rows)
	if size == 0 {
		return nil, errors.Wrap(ErrMalformedGrid, "[FromCells] no rows")
	}
	g := newGrid(size)
	for r, row := range rows {
		if len(row) != size {
			return nil, errors.Wrapf(ErrMalformedGrid, "[FromCells] row %d has length %d, want %d", r, len(row), size)
		}
		for c, cell := range row {
			if cell != Dead && cell != Alive {
				return nil, errors.Wrapf(ErrMalformedGrid, "[FromCells] cell (%d,%d) has state %d", r, c, cell)
			}
		}
		copy(g.cells[r], row)
	}
	return g, nil
}

// Size returns the number of rows (and columns) of the grid
func (g *Grid) Size() int {
	return g.size
}

// InBounds reports whether (row, col) addresses a cell of the grid
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.size && col >= 0 && col < g.size
}

// Get returns the state of a cell, treating anything outside the grid as dead
func (g *Grid) Get(row, col int) Cell {
	if !g.InBounds(row, col) {
		return Dead
	}
	return g.cells[row][col]
}

// IsAlive reports whether the cell at (row, col) is alive
func (g *Grid) IsAlive(row, col int) bool {
	return g.Get(row, col) == Alive
}

// Rows returns a copy of the grid's cells
func (g *Grid) Rows() [][]Cell {
	return g.Clone().cells
}

// Clone returns a deep copy of the grid
func (g *Grid) Clone() *Grid {
	next := newGrid(g.size)
	for r := range g.cells {
		copy(next.cells[r], g.cells[r])
	}
	return next
}

// Equal reports whether two grids have the same size and cell states
func (g *Grid) Equal(other *Grid) bool {
	if g == nil || other == nil {
		return g == other
	}
	if g.size != other.size {
		return false
	}
	for r := range g.cells {
		for c := range g.cells[r] {
			if g.cells[r][c] != other.cells[r][c] {
				return false
			}
		}
	}
	return true
}

// CountLiveNeighbors counts living neighbors of (row, col). Neighbors past the edge do not exist.
func (g *Grid) CountLiveNeighbors(row, col int) (int, error) {
	if !g.InBounds(row, col) {
		return 0, errors.Wrapf(ErrOutOfBounds, "[CountLiveNeighbors] (%d,%d) on %dx%d grid", row, col, g.size, g.size)
	}
	return g.countLiveNeighbors(row, col), nil
}

func (g *Grid) countLiveNeighbors(row, col int) int {
	count := 0
	for _, offset := range neighborOffsets {
		r, c := row+offset[0], col+offset[1]
		if g.InBounds(r, c) {
			count += int(g.cells[r][c])
		}
	}
	return count
}

// nextCell applies the rules to one cell of g
func (g *Grid) nextCell(row, col int) Cell {
	if rules.ApplyConwayRules(g.countLiveNeighbors(row, col), g.cells[row][col] == Alive) {
		return Alive
	}
	return Dead
}

// Step calculates the next generation. The receiver is only read.
func (g *Grid) Step() *Grid {
	next := newGrid(g.size)
	for r := range g.size {
		for c := range g.size {
			next.cells[r][c] = g.nextCell(r, c)
		}
	}
	return next
}

// StepParallel calculates the next generation, splitting rows across workers.
// A non-positive worker count uses one worker per CPU.
func (g *Grid) StepParallel(workers int) *Grid {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	var (
		eg          errgroup.Group
		next        = newGrid(g.size)
		rowsPerWork = (g.size + workers - 1) / workers // Ceiling division
	)

	for i := range workers {
		var (
			startRow = i * rowsPerWork
			endRow   = min(startRow+rowsPerWork, g.size)
		)
		if startRow >= g.size {
			break
		}

		// each worker writes only its own rows of next
		eg.Go(func() error {
			for r := startRow; r < endRow; r++ {
				for c := range g.size {
					next.cells[r][c] = g.nextCell(r, c)
				}
			}
			return nil
		})
	}

	// workers never fail
	_ = eg.Wait()
	return next
}

// NextGeneration calculates the next generation based on configuration
func (g *Grid) NextGeneration(config utils.Config) *Grid {
	if config.UseParallel {
		return g.StepParallel(config.Workers)
	}
	return g.Step()
}

// Toggle returns a copy of the grid with the cell at (row, col) flipped
func (g *Grid) Toggle(row, col int) (*Grid, error) {
	if !g.InBounds(row, col) {
		return nil, errors.Wrapf(ErrOutOfBounds, "[Toggle] (%d,%d) on %dx%d grid", row, col, g.size, g.size)
	}
	next := g.Clone()
	next.cells[row][col] ^= Alive
	return next, nil
}

// Advance applies Step n times, each step building on the previous result
func (g *Grid) Advance(n int) (*Grid, error) {
	return g.AdvanceWith(n, (*Grid).Step)
}

// AdvanceWith applies step n times in sequence. Advancing zero steps returns a copy of g.
func (g *Grid) AdvanceWith(n int, step func(*Grid) *Grid) (*Grid, error) {
	if n < 0 {
		return nil, errors.Wrapf(ErrNegativeSteps, "[Advance] n: %d", n)
	}
	if n == 0 {
		return g.Clone(), nil
	}
	next := g
	for range n {
		next = step(next)
	}
	return next, nil
}

// CountLivingCells returns the total number of living cells
func (g *Grid) CountLivingCells() (count int) {
	for r := range g.cells {
		for _, cell := range g.cells[r] {
			count += int(cell)
		}
	}
	return
}

// GetBoundingBoxSize returns the area of the smallest rectangle containing every living cell
func (g *Grid) GetBoundingBoxSize() int {
	var (
		minRow, minCol = g.size, g.size
		maxRow, maxCol = -1, -1
	)
	for r := range g.cells {
		for c, cell := range g.cells[r] {
			if cell == Alive {
				minRow, maxRow = min(minRow, r), max(maxRow, r)
				minCol, maxCol = min(minCol, c), max(maxCol, c)
			}
		}
	}
	if maxRow < 0 {
		return 0
	}
	return (maxRow - minRow + 1) * (maxCol - minCol + 1)
}

// GetGridHash returns an MD5 hash of the grid state
func (g *Grid) GetGridHash() string {
	h := md5.New()
	for r := range g.cells {
		for _, cell := range g.cells[r] {
			h.Write([]byte{byte(cell)})
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
