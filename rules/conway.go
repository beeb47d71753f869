package rules

const (
	// minSurvivors is the fewest live neighbors a cell can have without dying of isolation
	minSurvivors = 2
	// maxSurvivors is the most live neighbors a cell can have without dying of overcrowding
	maxSurvivors = 3
	// birthNeighbors is the exact live neighbor count that brings a dead cell to life
	birthNeighbors = 3
)

/*
ApplyConwayRules applies Conway's Game of Life rules (B3/S23) to determine the next state of a cell.

Fewer than 2 or more than 3 neighbors kills the cell, a dead cell with exactly 3 neighbors is born,
and every other cell keeps its current state.
*/
func ApplyConwayRules(neighbors int, alive bool) bool {
	if neighbors < minSurvivors || neighbors > maxSurvivors {
		return false
	}
	if !alive && neighbors == birthNeighbors {
		return true
	}
	return alive
}
