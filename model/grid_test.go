package model

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-life/utils"
)

// gridWith returns a size x size grid with the listed cells alive
func gridWith(t *testing.T, size int, alive ...Coord) *Grid {
	t.Helper()
	g, err := NewGrid(size)
	if err != nil {
		t.Fatalf("NewGrid(%d): %v", size, err)
	}
	g, err = g.WithAlive(alive...)
	if err != nil {
		t.Fatalf("WithAlive: %v", err)
	}
	return g
}

// expectAlive fails unless exactly the listed cells of g are alive
func expectAlive(t *testing.T, g *Grid, alive ...Coord) {
	t.Helper()
	want := make(map[Coord]bool, len(alive))
	for _, c := range alive {
		want[c] = true
	}
	for r := range g.Size() {
		for c := range g.Size() {
			if got := g.IsAlive(r, c); got != want[Coord{r, c}] {
				t.Fatalf("cell (%d,%d) alive=%v, expected %v", r, c, got, want[Coord{r, c}])
			}
		}
	}
}

func TestNewGrid(t *testing.T) {
	g, err := NewGrid(4)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	if g.Size() != 4 {
		t.Fatalf("size = %d, expected 4", g.Size())
	}
	rows := g.Rows()
	if len(rows) != 4 {
		t.Fatalf("rows = %d, expected 4", len(rows))
	}
	for r, row := range rows {
		if len(row) != 4 {
			t.Fatalf("row %d has %d cells, expected 4", r, len(row))
		}
		for c, cell := range row {
			if cell != Dead {
				t.Fatalf("cell (%d,%d) = %d, expected dead", r, c, cell)
			}
		}
	}
}

func TestNewGridRejectsNonPositiveSize(t *testing.T) {
	for _, size := range []int{0, -1, -24} {
		if _, err := NewGrid(size); errors.Cause(err) != ErrInvalidSize {
			t.Fatalf("NewGrid(%d) error = %v, expected ErrInvalidSize", size, err)
		}
	}
}

func TestFromCells(t *testing.T) {
	rows := [][]Cell{
		{Dead, Alive},
		{Alive, Dead},
	}
	g, err := FromCells(rows)
	if err != nil {
		t.Fatalf("FromCells: %v", err)
	}
	expectAlive(t, g, Coord{0, 1}, Coord{1, 0})

	rows[0][0] = Alive
	if g.IsAlive(0, 0) {
		t.Fatal("FromCells kept a reference to the caller's rows")
	}
}

func TestFromCellsRejectsMalformedRows(t *testing.T) {
	tests := []struct {
		name string
		rows [][]Cell
	}{
		{"empty", nil},
		{"short row", [][]Cell{{Dead, Dead}, {Dead}}},
		{"not square", [][]Cell{{Dead, Dead, Dead}, {Dead, Dead, Dead}}},
		{"unknown state", [][]Cell{{Dead, 2}, {Dead, Dead}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromCells(tt.rows); errors.Cause(err) != ErrMalformedGrid {
				t.Fatalf("error = %v, expected ErrMalformedGrid", err)
			}
		})
	}
}

func TestCountLiveNeighbors(t *testing.T) {
	full, err := FromCells([][]Cell{
		{Alive, Alive, Alive},
		{Alive, Alive, Alive},
		{Alive, Alive, Alive},
	})
	if err != nil {
		t.Fatalf("FromCells: %v", err)
	}

	tests := []struct {
		name     string
		grid     *Grid
		row, col int
		want     int
	}{
		{"center of full grid", full, 1, 1, 8},
		{"corner of full grid", full, 0, 0, 3},
		{"edge of full grid", full, 0, 1, 5},
		{"opposite corner of full grid", full, 2, 2, 3},
		{"lone corner cell has no neighbors", gridWith(t, 5, Coord{0, 0}), 0, 0, 0},
		{"far corner does not wrap", gridWith(t, 5, Coord{4, 4}), 0, 0, 0},
		{"opposite edge does not wrap", gridWith(t, 5, Coord{0, 4}, Coord{4, 0}), 0, 0, 0},
		{"cell itself is not counted", gridWith(t, 5, Coord{2, 2}, Coord{1, 1}), 2, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.grid.CountLiveNeighbors(tt.row, tt.col)
			if err != nil {
				t.Fatalf("CountLiveNeighbors: %v", err)
			}
			if got != tt.want {
				t.Fatalf("CountLiveNeighbors(%d, %d) = %d, expected %d", tt.row, tt.col, got, tt.want)
			}
		})
	}
}

func TestCountLiveNeighborsCornerAtMostThree(t *testing.T) {
	g := gridWith(t, 6, Coord{0, 0}, Coord{0, 1}, Coord{1, 0}, Coord{1, 1})
	for _, corner := range []Coord{{0, 0}, {0, 5}, {5, 0}, {5, 5}} {
		n, err := g.CountLiveNeighbors(corner.Row, corner.Col)
		if err != nil {
			t.Fatalf("CountLiveNeighbors: %v", err)
		}
		if n > 3 {
			t.Fatalf("corner %v has %d neighbors, expected at most 3", corner, n)
		}
	}
}

func TestCountLiveNeighborsOutOfBounds(t *testing.T) {
	g := gridWith(t, 3)
	for _, c := range []Coord{{-1, 0}, {0, -1}, {3, 0}, {0, 3}} {
		if _, err := g.CountLiveNeighbors(c.Row, c.Col); errors.Cause(err) != ErrOutOfBounds {
			t.Fatalf("CountLiveNeighbors(%d, %d) error = %v, expected ErrOutOfBounds", c.Row, c.Col, err)
		}
	}
}

func TestStepBlinker(t *testing.T) {
	g := gridWith(t, 5, Coord{3, 0}, Coord{3, 1}, Coord{3, 2})

	next := g.Step()
	expectAlive(t, next, Coord{2, 1}, Coord{3, 1}, Coord{4, 1})

	back := next.Step()
	expectAlive(t, back, Coord{3, 0}, Coord{3, 1}, Coord{3, 2})
}

func TestStepGlider(t *testing.T) {
	g := gridWith(t, 5, Glider...)
	expectAlive(t, g.Step(), Coord{0, 1}, Coord{1, 2}, Coord{1, 3}, Coord{2, 1}, Coord{2, 2})
}

func TestStepToad(t *testing.T) {
	g := gridWith(t, 6, Toad.Translate(2, 0)...)
	expectAlive(t, g.Step(), Coord{1, 2}, Coord{2, 0}, Coord{2, 3}, Coord{3, 0}, Coord{3, 3}, Coord{4, 1})
}

func TestStepStillLife(t *testing.T) {
	block := []Coord{{1, 1}, {1, 2}, {2, 1}, {2, 2}}
	g := gridWith(t, 4, block...)
	expectAlive(t, g.Step(), block...)
}

func TestStepDeterministicAndPure(t *testing.T) {
	g := gridWith(t, 8).Randomize(0.4, 7)
	before := g.Clone()

	first := g.Step()
	second := g.Step()
	if !first.Equal(second) {
		t.Fatal("two steps of the same grid differ")
	}
	if !g.Equal(before) {
		t.Fatal("Step modified its input")
	}
	if first == g {
		t.Fatal("Step returned its input")
	}
	if first.Size() != g.Size() {
		t.Fatalf("Step changed size from %d to %d", g.Size(), first.Size())
	}
}

func TestStepParallelMatchesStep(t *testing.T) {
	for _, size := range []int{1, 2, 5, 13, 24} {
		g := gridWith(t, size).Randomize(0.35, int64(size))
		want := g.Step()
		for _, workers := range []int{0, 1, 2, 3, 7, 64} {
			if got := g.StepParallel(workers); !got.Equal(want) {
				t.Fatalf("size %d workers %d: parallel step differs from sequential", size, workers)
			}
		}
	}
}

func TestNextGenerationFollowsConfig(t *testing.T) {
	g := gridWith(t, 5, Glider...)
	want := g.Step()

	config := utils.DefaultConfig()
	if got := g.NextGeneration(config); !got.Equal(want) {
		t.Fatal("sequential NextGeneration differs from Step")
	}
	config.UseParallel = true
	config.Workers = 2
	if got := g.NextGeneration(config); !got.Equal(want) {
		t.Fatal("parallel NextGeneration differs from Step")
	}
}

func TestToggle(t *testing.T) {
	g := gridWith(t, 4, Coord{1, 1})

	on, err := g.Toggle(2, 3)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	expectAlive(t, on, Coord{1, 1}, Coord{2, 3})
	expectAlive(t, g, Coord{1, 1})

	off, err := on.Toggle(1, 1)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	expectAlive(t, off, Coord{2, 3})
	if off.Size() != g.Size() {
		t.Fatalf("Toggle changed size from %d to %d", g.Size(), off.Size())
	}
}

func TestToggleInvolution(t *testing.T) {
	g := gridWith(t, 5).Randomize(0.5, 3)
	for r := range g.Size() {
		for c := range g.Size() {
			once, err := g.Toggle(r, c)
			if err != nil {
				t.Fatalf("Toggle: %v", err)
			}
			twice, err := once.Toggle(r, c)
			if err != nil {
				t.Fatalf("Toggle: %v", err)
			}
			if !twice.Equal(g) {
				t.Fatalf("toggling (%d,%d) twice did not restore the grid", r, c)
			}
		}
	}
}

func TestToggleOutOfBounds(t *testing.T) {
	g := gridWith(t, 3)
	for _, c := range []Coord{{-1, 0}, {0, -1}, {3, 0}, {0, 3}, {3, 3}} {
		next, err := g.Toggle(c.Row, c.Col)
		if errors.Cause(err) != ErrOutOfBounds {
			t.Fatalf("Toggle(%d, %d) error = %v, expected ErrOutOfBounds", c.Row, c.Col, err)
		}
		if next != nil {
			t.Fatalf("Toggle(%d, %d) returned a grid with its error", c.Row, c.Col)
		}
	}
}

func TestAdvanceZeroIsEqual(t *testing.T) {
	g := gridWith(t, 5, Glider...)
	got, err := g.Advance(0)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !got.Equal(g) {
		t.Fatal("Advance(0) changed the grid")
	}
}

func TestAdvanceChainsSteps(t *testing.T) {
	g := gridWith(t, 10, Glider...)
	want := g
	for n := range 6 {
		got, err := g.Advance(n)
		if err != nil {
			t.Fatalf("Advance(%d): %v", n, err)
		}
		if !got.Equal(want) {
			t.Fatalf("Advance(%d) differs from %d chained steps", n, n)
		}
		want = want.Step()
	}
}

func TestAdvanceGliderTravels(t *testing.T) {
	g := gridWith(t, 10, Glider...)
	got, err := g.Advance(4)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	expectAlive(t, got, Glider.Translate(1, 1)...)
}

func TestAdvanceNegative(t *testing.T) {
	g := gridWith(t, 3)
	if _, err := g.Advance(-1); errors.Cause(err) != ErrNegativeSteps {
		t.Fatalf("Advance(-1) error = %v, expected ErrNegativeSteps", err)
	}
}

func TestAdvanceWithUsesStepper(t *testing.T) {
	g := gridWith(t, 5, Blinker.Translate(2, 1)...)
	calls := 0
	got, err := g.AdvanceWith(3, func(g *Grid) *Grid {
		calls++
		return g.StepParallel(2)
	})
	if err != nil {
		t.Fatalf("AdvanceWith: %v", err)
	}
	if calls != 3 {
		t.Fatalf("stepper called %d times, expected 3", calls)
	}
	expectAlive(t, got, Coord{1, 2}, Coord{2, 2}, Coord{3, 2})
}

func TestCountLivingCellsAndBoundingBox(t *testing.T) {
	g := gridWith(t, 6, Coord{1, 1}, Coord{1, 4}, Coord{3, 2})
	if n := g.CountLivingCells(); n != 3 {
		t.Fatalf("CountLivingCells = %d, expected 3", n)
	}
	if area := g.GetBoundingBoxSize(); area != 12 {
		t.Fatalf("GetBoundingBoxSize = %d, expected 12", area)
	}
	if area := gridWith(t, 6).GetBoundingBoxSize(); area != 0 {
		t.Fatalf("empty GetBoundingBoxSize = %d, expected 0", area)
	}
}

func TestGetGridHash(t *testing.T) {
	a := gridWith(t, 4, Coord{0, 0})
	b := gridWith(t, 4, Coord{0, 0})
	c := gridWith(t, 4, Coord{0, 1})
	if a.GetGridHash() != b.GetGridHash() {
		t.Fatal("equal grids hash differently")
	}
	if a.GetGridHash() == c.GetGridHash() {
		t.Fatal("different grids hash the same")
	}
}
