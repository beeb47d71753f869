package player

import "fmt"

// Kind names the user action an error came from
type Kind int

const (
	KindGenerateBoard Kind = iota
	KindUpdateCell
	KindNextState
	KindAdvance
	KindPlayForever
)

var kindMessages = map[Kind]string{
	KindGenerateBoard: "Failed to generate the initial board.",
	KindUpdateCell:    "Failed to update cell state.",
	KindNextState:     "Failed to update to next state.",
	KindAdvance:       "Failed to advance state updates.",
	KindPlayForever:   "Failed to play forever.",
}

var kindNames = map[Kind]string{
	KindGenerateBoard: "generate_board",
	KindUpdateCell:    "update_cell",
	KindNextState:     "next_state",
	KindAdvance:       "advance",
	KindPlayForever:   "play_forever",
}

// Message is the text shown to the user when an action of this kind fails
func (k Kind) Message() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return "Unexpected failure."
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is returned by every failing Player action. Its message is the user-facing text for
// the action; the underlying cause is available through Unwrap and errors.Cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Kind.Message()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Cause lets github.com/pkg/errors walk through to the underlying failure
func (e *Error) Cause() error {
	return e.Err
}
