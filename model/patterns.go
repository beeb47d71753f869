package model

import (
	"math/rand/v2"
	"strings"

	"github.com/pkg/errors"
)

// Coord addresses a cell by row and column
type Coord struct {
	Row, Col int
}

// Pattern is a set of live cells relative to a top-left origin
type Pattern []Coord

var (
	// Glider travels one cell diagonally down-right every four generations
	Glider = Pattern{{0, 2}, {1, 0}, {1, 2}, {2, 1}, {2, 2}}
	// Blinker is a period 2 oscillator, horizontal in this phase
	Blinker = Pattern{{0, 0}, {0, 1}, {0, 2}}
	// Toad is a period 2 oscillator
	Toad = Pattern{{0, 1}, {0, 2}, {0, 3}, {1, 0}, {1, 1}, {1, 2}}
)

var ErrUnknownPattern = errors.New("unknown pattern")

var patterns = map[string]Pattern{
	"glider":  Glider,
	"blinker": Blinker,
	"toad":    Toad,
}

// LookupPattern finds a named pattern, ignoring case
func LookupPattern(name string) (Pattern, error) {
	p, ok := patterns[strings.ToLower(name)]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownPattern, "[LookupPattern] name: %q", name)
	}
	return p, nil
}

// Translate returns the pattern shifted by (rowOffset, colOffset)
func (p Pattern) Translate(rowOffset, colOffset int) Pattern {
	out := make(Pattern, len(p))
	for i, c := range p {
		out[i] = Coord{Row: c.Row + rowOffset, Col: c.Col + colOffset}
	}
	return out
}

// WithAlive returns a copy of the grid with every listed cell alive
func (g *Grid) WithAlive(coords ...Coord) (*Grid, error) {
	next := g.Clone()
	for _, c := range coords {
		if !g.InBounds(c.Row, c.Col) {
			return nil, errors.Wrapf(ErrOutOfBounds, "[WithAlive] (%d,%d) on %dx%d grid", c.Row, c.Col, g.size, g.size)
		}
		next.cells[c.Row][c.Col] = Alive
	}
	return next, nil
}

// AliveCells lists the coordinates of every living cell in row-major order
func (g *Grid) AliveCells() []Coord {
	var out []Coord
	for r := range g.cells {
		for c, cell := range g.cells[r] {
			if cell == Alive {
				out = append(out, Coord{Row: r, Col: c})
			}
		}
	}
	return out
}

// Randomize returns a copy of the grid where each cell is alive with the given probability.
// The same seed always produces the same grid.
func (g *Grid) Randomize(density float64, seed int64) *Grid {
	rng := rand.New(rand.NewPCG(uint64(seed), 0))
	next := newGrid(g.size)
	for r := range next.cells {
		for c := range next.cells[r] {
			if rng.Float64() < density {
				next.cells[r][c] = Alive
			}
		}
	}
	return next
}
