package player

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-life/model"
	"github.com/sheikhrachel/go-life/utils"
)

// State tells whether continuous play is on
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Snapshot is the player's state at one moment
type Snapshot struct {
	Grid       *model.Grid
	Generation int
	State      State
	// Err is set when continuous play stopped because a tick failed
	Err error
}

// Stepper computes the generation after g
type Stepper func(g *model.Grid) *model.Grid

// Option customizes a Player
type Option func(*Player)

// WithLogger sets the logger failures and play transitions are written to
func WithLogger(logger *slog.Logger) Option {
	return func(p *Player) { p.logger = logger }
}

// WithStepper replaces the stepper chosen from the configuration
func WithStepper(step Stepper) Option {
	return func(p *Player) { p.step = step }
}

// OnChange registers fn to receive a snapshot after every change. fn may be called from
// timer goroutines and must not block for long.
func OnChange(fn func(Snapshot)) Option {
	return func(p *Player) { p.onChange = fn }
}

// Player owns the current grid and drives it through user actions and continuous play.
// All methods are safe for concurrent use.
type Player struct {
	mu         sync.Mutex
	config     utils.Config
	grid       *model.Grid
	generation int
	state      State
	// epoch identifies the current run of continuous play; ticks from older runs do nothing
	epoch uint64
	timer *time.Timer

	step     Stepper
	logger   *slog.Logger
	onChange func(Snapshot)
}

// New validates config and creates a player holding an empty grid of the configured size
func New(config utils.Config, opts ...Option) (*Player, error) {
	p := &Player{
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.step == nil {
		p.step = func(g *model.Grid) *model.Grid {
			return g.NextGeneration(p.config)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, p.fail(KindGenerateBoard, errors.Wrap(err, "[New]"))
	}
	grid, err := model.NewGrid(config.Size)
	if err != nil {
		return nil, p.fail(KindGenerateBoard, err)
	}
	p.grid = grid
	return p, nil
}

// Grid returns the current grid
func (p *Player) Grid() *model.Grid {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.grid
}

// Generation returns how many generations have been computed since the last reset
func (p *Player) Generation() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}

// Running reports whether continuous play is on
func (p *Player) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == Running
}

// Config returns the active configuration
func (p *Player) Config() utils.Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.config
}

// Snapshot returns the current grid, generation and play state together
func (p *Player) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Reset stops play and replaces the grid with an empty one of the configured size
func (p *Player) Reset() error {
	p.mu.Lock()
	grid, err := model.NewGrid(p.config.Size)
	if err != nil {
		p.mu.Unlock()
		return p.fail(KindGenerateBoard, err)
	}
	p.stopLocked()
	p.grid = grid
	p.generation = 0
	snap := p.snapshotLocked()
	p.mu.Unlock()

	p.notify(snap)
	return nil
}

// Configure applies new settings, then stops play and starts over on an empty grid
func (p *Player) Configure(config utils.Config) error {
	if err := config.Validate(); err != nil {
		return p.fail(KindGenerateBoard, errors.Wrap(err, "[Configure]"))
	}
	grid, err := model.NewGrid(config.Size)
	if err != nil {
		return p.fail(KindGenerateBoard, err)
	}

	p.mu.Lock()
	p.stopLocked()
	p.config = config
	p.grid = grid
	p.generation = 0
	snap := p.snapshotLocked()
	p.mu.Unlock()

	p.notify(snap)
	return nil
}

// Load replaces the current grid, for example with a seeded pattern. The configured size follows the grid.
func (p *Player) Load(grid *model.Grid) error {
	if grid == nil {
		return p.fail(KindGenerateBoard, errors.New("[Load] grid is nil"))
	}

	p.mu.Lock()
	p.stopLocked()
	p.grid = grid
	p.config.Size = grid.Size()
	p.generation = 0
	snap := p.snapshotLocked()
	p.mu.Unlock()

	p.notify(snap)
	return nil
}

// Toggle flips one cell of the current grid
func (p *Player) Toggle(row, col int) error {
	p.mu.Lock()
	next, err := p.grid.Toggle(row, col)
	if err != nil {
		p.mu.Unlock()
		return p.fail(KindUpdateCell, err)
	}
	p.grid = next
	snap := p.snapshotLocked()
	p.mu.Unlock()

	p.notify(snap)
	return nil
}

// NextState stops continuous play and computes a single generation
func (p *Player) NextState() error {
	p.mu.Lock()
	p.stopLocked()
	next, err := p.safeStep(p.grid)
	if err != nil {
		p.mu.Unlock()
		return p.fail(KindNextState, err)
	}
	p.grid = next
	p.generation++
	snap := p.snapshotLocked()
	p.mu.Unlock()

	p.notify(snap)
	return nil
}

// Advance computes the configured number of generations in one go, leaving play as it was
func (p *Player) Advance() error {
	p.mu.Lock()
	n := p.config.AdvanceSteps
	next, err := p.safeAdvance(p.grid, n)
	if err != nil {
		p.mu.Unlock()
		return p.fail(KindAdvance, err)
	}
	p.grid = next
	p.generation += n
	snap := p.snapshotLocked()
	p.mu.Unlock()

	p.notify(snap)
	return nil
}

// Start turns continuous play on. The first generation is computed right away and each following one
// after the configured interval. Starting while already running does nothing.
func (p *Player) Start() {
	p.mu.Lock()
	if p.state == Running {
		p.mu.Unlock()
		return
	}
	p.state = Running
	p.epoch++
	epoch := p.epoch
	p.timer = time.AfterFunc(0, func() { p.tick(epoch) })
	snap := p.snapshotLocked()
	p.mu.Unlock()

	p.logger.Debug("continuous play started", "epoch", epoch)
	p.notify(snap)
}

// Stop turns continuous play off. A tick already in flight finishes, no later tick runs.
// Stopping while stopped does nothing.
func (p *Player) Stop() {
	p.mu.Lock()
	if !p.stopLocked() {
		p.mu.Unlock()
		return
	}
	snap := p.snapshotLocked()
	p.mu.Unlock()

	p.logger.Debug("continuous play stopped")
	p.notify(snap)
}

// TogglePlay starts play when stopped and stops it when running
func (p *Player) TogglePlay() {
	if p.Running() {
		p.Stop()
		return
	}
	p.Start()
}

// tick computes one generation of continuous play and schedules the next
func (p *Player) tick(epoch uint64) {
	p.mu.Lock()
	if p.state != Running || p.epoch != epoch {
		p.mu.Unlock()
		return
	}
	next, err := p.safeStep(p.grid)
	if err != nil {
		p.stopLocked()
		snap := p.snapshotLocked()
		p.mu.Unlock()
		snap.Err = p.fail(KindPlayForever, err)
		p.notify(snap)
		return
	}
	p.grid = next
	p.generation++
	p.timer = time.AfterFunc(p.config.Interval, func() { p.tick(epoch) })
	snap := p.snapshotLocked()
	p.mu.Unlock()

	p.notify(snap)
}

// stopLocked switches play off and reports whether it was on. p.mu must be held.
func (p *Player) stopLocked() bool {
	if p.state == Stopped {
		return false
	}
	p.state = Stopped
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	return true
}

func (p *Player) snapshotLocked() Snapshot {
	return Snapshot{Grid: p.grid, Generation: p.generation, State: p.state}
}

// safeStep runs the stepper, turning a panic into an error so a broken step cannot take the front end down
func (p *Player) safeStep(g *model.Grid) (next *model.Grid, err error) {
	defer func() {
		if r := recover(); r != nil {
			next, err = nil, errors.Errorf("[step] panic: %v", r)
		}
	}()
	next = p.step(g)
	if next == nil {
		return nil, errors.New("[step] stepper returned no grid")
	}
	return next, nil
}

func (p *Player) safeAdvance(g *model.Grid, n int) (next *model.Grid, err error) {
	defer func() {
		if r := recover(); r != nil {
			next, err = nil, errors.Errorf("[advance] panic: %v", r)
		}
	}()
	return g.AdvanceWith(n, func(g *model.Grid) *model.Grid {
		next := p.step(g)
		if next == nil {
			panic("stepper returned no grid")
		}
		return next
	})
}

// fail logs err and wraps it in the user-facing error for kind
func (p *Player) fail(kind Kind, err error) error {
	p.logger.Error("game action failed", "kind", kind.String(), "error", err)
	return &Error{Kind: kind, Err: err}
}

func (p *Player) notify(snap Snapshot) {
	if p.onChange != nil {
		p.onChange(snap)
	}
}
