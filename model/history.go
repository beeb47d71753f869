package model

// historyDepth is how many recent generations are remembered for cycle detection
const historyDepth = 5

// Status describes how a run of generations is behaving
type Status string

const (
	StatusActive   Status = "Active"
	StatusStagnant Status = "Stagnant"
	StatusExtinct  Status = "Extinct"
)

// History remembers the hashes of recent generations to spot still lifes and short cycles.
// It is not safe for concurrent use.
type History struct {
	hashes []string
}

// IsStagnant checks whether g repeats one of the last three recorded generations
func (h *History) IsStagnant(g *Grid) bool {
	if len(h.hashes) < 3 {
		return false
	}
	currentHash := g.GetGridHash()
	for _, prev := range h.hashes[len(h.hashes)-3:] {
		if prev == currentHash {
			return true
		}
	}
	return false
}

// Record adds g to the history and maintains its size
func (h *History) Record(g *Grid) {
	h.hashes = append(h.hashes, g.GetGridHash())
	if len(h.hashes) > historyDepth {
		h.hashes = h.hashes[1:]
	}
}

// Observe classifies g against the history and then records it
func (h *History) Observe(g *Grid) Status {
	status := StatusActive
	if h.IsStagnant(g) {
		status = StatusStagnant
	}
	if g.CountLivingCells() == 0 {
		status = StatusExtinct
	}
	h.Record(g)
	return status
}

// Reset forgets all recorded generations
func (h *History) Reset() {
	h.hashes = nil
}
