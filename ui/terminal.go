package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/sheikhrachel/go-life/model"
	"github.com/sheikhrachel/go-life/player"
	"github.com/sheikhrachel/go-life/utils"
)

const (
	helpLine     = "arrows move | space toggle | n next | a advance | p play/stop | r reset | +/- size | </> advance count | [/] interval | q quit"
	intervalStep = 50 * time.Millisecond
)

// interruptKind tells the event loop why it was woken. An interrupt carrying a func() instead runs
// that func on the loop goroutine, which owns the screen.
type interruptKind int

const (
	redraw interruptKind = iota
	quit
)

var (
	styleDead   = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorGreen)
	styleAlive  = tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorBlack)
	styleCursor = tcell.StyleDefault.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack)
	styleText   = tcell.StyleDefault
	styleError  = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// Terminal is the interactive front end. Keys map onto Player actions and the board is
// redrawn whenever the player reports a change.
type Terminal struct {
	screen  tcell.Screen
	player  *player.Player
	history model.History
	status  model.Status
	// lastGeneration is the generation the status was computed for
	lastGeneration int
	cursor         model.Coord
	message        string
}

// NewTerminal wraps an initialized screen
func NewTerminal(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen, status: model.StatusActive}
}

// Changed asks the event loop to redraw. Pass it to player.OnChange.
func (t *Terminal) Changed(player.Snapshot) {
	// a full event queue already holds a pending redraw or key press
	_ = t.screen.PostEvent(tcell.NewEventInterrupt(redraw))
}

// Run processes input until the user quits or ctx is cancelled
func (t *Terminal) Run(ctx context.Context, p *player.Player) error {
	t.player = p
	defer p.Stop()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = t.screen.PostEvent(tcell.NewEventInterrupt(quit))
		case <-done:
		}
	}()

	t.draw()
	for {
		switch ev := t.screen.PollEvent().(type) {
		case nil:
			// screen finalized
			return nil
		case *tcell.EventInterrupt:
			if fn, ok := ev.Data().(func()); ok {
				fn()
				continue
			}
			if ev.Data() == quit {
				return nil
			}
			t.draw()
		case *tcell.EventResize:
			t.screen.Sync()
			t.draw()
		case *tcell.EventKey:
			if t.handleKey(ev) {
				return nil
			}
			t.draw()
		}
	}
}

// handleKey applies one key press and reports whether the user asked to quit
func (t *Terminal) handleKey(ev *tcell.EventKey) bool {
	size := t.player.Grid().Size()
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		t.moveCursor(-1, 0, size)
	case tcell.KeyDown:
		t.moveCursor(1, 0, size)
	case tcell.KeyLeft:
		t.moveCursor(0, -1, size)
	case tcell.KeyRight:
		t.moveCursor(0, 1, size)
	case tcell.KeyEnter:
		t.report(t.player.Toggle(t.cursor.Row, t.cursor.Col))
	case tcell.KeyRune:
		return t.handleRune(ev.Rune(), size)
	}
	return false
}

func (t *Terminal) handleRune(r rune, size int) bool {
	switch r {
	case 'q':
		return true
	case 'k':
		t.moveCursor(-1, 0, size)
	case 'j':
		t.moveCursor(1, 0, size)
	case 'h':
		t.moveCursor(0, -1, size)
	case 'l':
		t.moveCursor(0, 1, size)
	case ' ':
		t.report(t.player.Toggle(t.cursor.Row, t.cursor.Col))
	case 'n':
		t.report(t.player.NextState())
	case 'a':
		t.report(t.player.Advance())
	case 'p':
		t.player.TogglePlay()
		t.message = ""
	case 'r':
		t.forgetHistory()
		t.report(t.player.Reset())
	case '+', '=':
		t.reconfigure(func(c *utils.Config) { c.Size++ })
	case '-':
		t.reconfigure(func(c *utils.Config) { c.Size-- })
	case '>', '.':
		t.reconfigure(func(c *utils.Config) { c.AdvanceSteps++ })
	case '<', ',':
		t.reconfigure(func(c *utils.Config) { c.AdvanceSteps-- })
	case ']':
		t.reconfigure(func(c *utils.Config) { c.Interval += intervalStep })
	case '[':
		t.reconfigure(func(c *utils.Config) { c.Interval -= intervalStep })
	}
	return false
}

// reconfigure applies a setup change, which starts over on an empty board
func (t *Terminal) reconfigure(change func(*utils.Config)) {
	config := t.player.Config()
	change(&config)
	if err := t.player.Configure(config); err != nil {
		t.report(err)
		return
	}
	t.forgetHistory()
	t.cursor.Row = min(t.cursor.Row, config.Size-1)
	t.cursor.Col = min(t.cursor.Col, config.Size-1)
	t.message = ""
}

// forgetHistory drops stagnation tracking when the board starts over
func (t *Terminal) forgetHistory() {
	t.history.Reset()
	t.status = model.StatusActive
	t.lastGeneration = 0
}

func (t *Terminal) moveCursor(dRow, dCol, size int) {
	t.cursor.Row = min(max(t.cursor.Row+dRow, 0), size-1)
	t.cursor.Col = min(max(t.cursor.Col+dCol, 0), size-1)
}

// report shows the user-facing message of a failed action, or clears the last one
func (t *Terminal) report(err error) {
	if err != nil {
		t.message = err.Error()
		return
	}
	t.message = ""
}

func (t *Terminal) draw() {
	snap := t.player.Snapshot()
	config := t.player.Config()
	g := snap.Grid

	t.screen.Clear()
	for row := range g.Size() {
		for col := range g.Size() {
			style := styleDead
			if g.IsAlive(row, col) {
				style = styleAlive
			}
			if row == t.cursor.Row && col == t.cursor.Col {
				style = styleCursor
			}
			t.screen.SetContent(col*2, row, ' ', nil, style)
			t.screen.SetContent(col*2+1, row, ' ', nil, style)
		}
	}

	if snap.Generation != t.lastGeneration {
		t.lastGeneration = snap.Generation
		if snap.Generation == 0 {
			t.history.Reset()
			t.status = model.StatusActive
		} else {
			t.status = t.history.Observe(g)
		}
	}

	y := g.Size() + 1
	t.drawText(0, y, styleText, fmt.Sprintf("Gen: %d | Living: %d | Status: %s | Play: %s",
		snap.Generation, g.CountLivingCells(), t.status, snap.State))
	t.drawText(0, y+1, styleText, fmt.Sprintf("Size: %d | Advance: %d | Interval: %s",
		config.Size, config.AdvanceSteps, config.Interval))
	t.drawText(0, y+2, styleText, helpLine)
	if t.message != "" {
		t.drawText(0, y+3, styleError, t.message)
	}
	t.screen.Show()
}

func (t *Terminal) drawText(x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		t.screen.SetContent(x+i, y, r, nil, style)
	}
}
