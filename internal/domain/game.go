package domain

const (
	BoardSize = 9
	MaxMoves  = BoardSize
)

type Board [BoardSize]Cell

func (b Board) Filled() int {
	n := 0
	for _, cell := range b {
		if cell != None {
			n++
		}
	}
	return n
}

type GameContext struct {
	Board  Board `json:"board"`
	Moves  uint8 `json:"moves"`
	Player Cell  `json:"player"`
	Winner Cell  `json:"winner"`
}

type StateValue string

const (
	Playing = StateValue("playing")
	Winner  = StateValue("winner")
	Draw    = StateValue("draw")
)

// GameState is the tagged variant the engine hands to renderers. Winner is
// only set on Context when Value is Winner.
type GameState struct {
	Value   StateValue  `json:"value"`
	Context GameContext `json:"context"`
}

func (s GameState) IsTerminal() bool {
	return s.Value == Winner || s.Value == Draw
}

func (s GameState) Title() string {
	switch s.Value {
	case Winner:
		return "Player " + s.Context.Winner.String() + " wins!"
	case Draw:
		return "Draw"
	default:
		return "Player " + s.Context.Player.String()
	}
}

type StateUpdate struct {
	Seq   uint64    `json:"seq"`
	State GameState `json:"state"`
}

type Event interface {
	event()
}

type PlayEvent struct {
	Cell   int
	Player Cell
}

type ResetEvent struct{}

func (PlayEvent) event()  {}
func (ResetEvent) event() {}

type GameMachine interface {
	Initial() GameState
	Apply(state GameState, event Event) (GameState, error)
}
