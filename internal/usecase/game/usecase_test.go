package game

import (
	"testing"

	"github.com/kiryu-dev/tic-tac-toe-machine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	x = domain.X
	o = domain.O
	n = domain.None
)

func play(cell int, player domain.Cell) domain.PlayEvent {
	return domain.PlayEvent{Cell: cell, Player: player}
}

// playAll feeds the cells in order, each with the recorded current player.
func playAll(t *testing.T, u useCase, cells ...int) domain.GameState {
	t.Helper()
	state := u.Initial()
	for _, cell := range cells {
		next, err := u.Apply(state, play(cell, state.Context.Player))
		require.NoError(t, err, "cell %d", cell)
		state = next
	}
	return state
}

func TestInitial(t *testing.T) {
	// When: the engine builds its initial state
	state := New(zaptest.NewLogger(t)).Initial()

	// Then: board is empty, no moves, X to play, no winner
	expected := domain.GameState{
		Value: domain.Playing,
		Context: domain.GameContext{
			Board:  domain.Board{},
			Moves:  0,
			Player: x,
			Winner: n,
		},
	}
	require.Equal(t, expected, state)
	assert.Equal(t, "Player X", state.Title())
}

func TestApply_Play(t *testing.T) {
	t.Run("First move", func(t *testing.T) {
		// Given: a fresh game
		u := New(zaptest.NewLogger(t))

		// When: X plays the top-left cell
		state, err := u.Apply(u.Initial(), play(0, x))
		require.NoError(t, err)

		// Then: the mark is placed and the turn passes to O
		expected := domain.GameState{
			Value: domain.Playing,
			Context: domain.GameContext{
				Board:  domain.Board{x, n, n, n, n, n, n, n, n},
				Moves:  1,
				Player: o,
			},
		}
		require.Equal(t, expected, state)
	})

	t.Run("Top row wins for X", func(t *testing.T) {
		// Given: X takes 0, 1, 2 while O takes 3, 4
		u := New(zaptest.NewLogger(t))

		// When: the last mark of the row is placed
		state := playAll(t, u, 0, 3, 1, 4, 2)

		// Then: X is the winner
		assert.Equal(t, domain.Winner, state.Value)
		assert.Equal(t, x, state.Context.Winner)
		assert.Equal(t, uint8(5), state.Context.Moves)
		assert.Equal(t, o, state.Context.Player)
		assert.Equal(t, "Player X wins!", state.Title())
	})

	t.Run("O wins on a diagonal", func(t *testing.T) {
		// Given: O builds the 2-4-6 diagonal
		u := New(zaptest.NewLogger(t))

		// When: O completes it on the sixth move
		state := playAll(t, u, 0, 2, 1, 4, 8, 6)

		// Then: O is the winner
		assert.Equal(t, domain.Winner, state.Value)
		assert.Equal(t, o, state.Context.Winner)
	})

	t.Run("Full board without a line is a draw", func(t *testing.T) {
		// Given: a sequence that fills the board as
		//   X O X
		//   X O O
		//   O X X
		u := New(zaptest.NewLogger(t))

		// When: all nine cells are played
		state := playAll(t, u, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		// Then: the game is drawn with no winner
		assert.Equal(t, domain.Draw, state.Value)
		assert.Equal(t, n, state.Context.Winner)
		assert.Equal(t, uint8(9), state.Context.Moves)
		assert.Equal(t, domain.Board{x, o, x, x, o, o, o, x, x}, state.Context.Board)
		assert.Equal(t, "Draw", state.Title())
	})

	t.Run("Win on the ninth move is a win, not a draw", func(t *testing.T) {
		// Given: a sequence where X completes the 0-4-8 diagonal with the last cell
		//   X O X
		//   O X O
		//   O X X
		u := New(zaptest.NewLogger(t))

		// When: the board is filled
		state := playAll(t, u, 0, 1, 2, 3, 4, 5, 7, 6, 8)

		// Then: the win check takes priority over the draw check
		assert.Equal(t, domain.Winner, state.Value)
		assert.Equal(t, x, state.Context.Winner)
	})
}

func TestApply_IgnoredEvents(t *testing.T) {
	t.Run("Occupied cell", func(t *testing.T) {
		// Given: X already holds cell 0
		u := New(zaptest.NewLogger(t))
		state := playAll(t, u, 0)

		// When: O tries the same cell
		next, err := u.Apply(state, play(0, o))

		// Then: the event is rejected and nothing changes
		require.ErrorIs(t, err, ErrCellOccupied)
		require.Equal(t, state, next)
		assert.Equal(t, domain.Board{x, n, n, n, n, n, n, n, n}, next.Context.Board)
		assert.Equal(t, o, next.Context.Player)
	})

	t.Run("Out of turn", func(t *testing.T) {
		// Given: a fresh game where X is to move
		u := New(zaptest.NewLogger(t))
		state := u.Initial()

		// When: O tries to move
		next, err := u.Apply(state, play(4, o))

		// Then: the event is rejected
		require.ErrorIs(t, err, ErrNotYourTurn)
		require.Equal(t, state, next)
	})

	t.Run("Play without a player", func(t *testing.T) {
		// Given: a fresh game where X is to move
		u := New(zaptest.NewLogger(t))
		state := u.Initial()

		// When: a play names no player
		next, err := u.Apply(state, play(0, n))

		// Then: strict turns reject it and cell 0 stays empty
		require.ErrorIs(t, err, ErrNotYourTurn)
		require.Equal(t, state, next)
	})

	t.Run("Lenient turns place the recorded player", func(t *testing.T) {
		// Given: an engine that does not check the named player
		u := New(zaptest.NewLogger(t), WithLenientTurns())

		// When: the event names O although X is to move
		next, err := u.Apply(u.Initial(), play(4, o))

		// Then: X's mark is placed and the turn flips
		require.NoError(t, err)
		assert.Equal(t, x, next.Context.Board[4])
		assert.Equal(t, o, next.Context.Player)
	})

	t.Run("Invalid cell index", func(t *testing.T) {
		u := New(zaptest.NewLogger(t))
		state := u.Initial()

		for _, cell := range []int{-1, 9, 20} {
			// When: a cell outside the board is played
			next, err := u.Apply(state, play(cell, x))

			// Then: it is rejected without touching the board
			require.ErrorIs(t, err, ErrInvalidCell)
			require.Equal(t, state, next)
		}
	})

	t.Run("Play after win", func(t *testing.T) {
		// Given: X has won
		u := New(zaptest.NewLogger(t))
		state := playAll(t, u, 0, 3, 1, 4, 2)

		// When: O plays an empty cell
		next, err := u.Apply(state, play(5, o))

		// Then: the terminal state does not accept moves
		require.ErrorIs(t, err, ErrGameFinished)
		require.Equal(t, state, next)
	})

	t.Run("Play after draw", func(t *testing.T) {
		// Given: a drawn game
		u := New(zaptest.NewLogger(t))
		state := playAll(t, u, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		// When: any play arrives
		next, err := u.Apply(state, play(0, state.Context.Player))

		// Then: it is rejected
		require.ErrorIs(t, err, ErrGameFinished)
		require.Equal(t, state, next)
	})

	t.Run("Unknown event", func(t *testing.T) {
		u := New(zaptest.NewLogger(t))
		state := u.Initial()

		next, err := u.Apply(state, nil)

		require.ErrorIs(t, err, ErrUnknownEvent)
		require.Equal(t, state, next)
	})
}

func TestApply_Reset(t *testing.T) {
	u := New(zaptest.NewLogger(t))

	states := map[string]domain.GameState{
		"playing": playAll(t, u, 0, 4),
		"winner":  playAll(t, u, 0, 3, 1, 4, 2),
		"draw":    playAll(t, u, 0, 1, 2, 4, 3, 5, 7, 6, 8),
	}
	for name, state := range states {
		t.Run(name, func(t *testing.T) {
			// When: Reset is sent
			next, err := u.Apply(state, domain.ResetEvent{})

			// Then: the exact initial state is restored
			require.NoError(t, err)
			require.Equal(t, u.Initial(), next)
		})
	}
}

func TestLineOwner(t *testing.T) {
	tests := []struct {
		name  string
		board domain.Board
		owner domain.Cell
	}{
		{
			name:  "row 1 X",
			board: domain.Board{n, o, n, x, x, x, o, n, n},
			owner: x,
		},
		{
			name:  "column 1 O",
			board: domain.Board{x, o, n, n, o, x, n, o, n},
			owner: o,
		},
		{
			name:  "diagonal X",
			board: domain.Board{x, o, n, n, x, o, n, n, x},
			owner: x,
		},
		{
			name:  "mixed line",
			board: domain.Board{x, x, o, n, n, n, n, n, n},
			owner: n,
		},
		{
			name:  "empty",
			board: domain.Board{},
			owner: n,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.owner, lineOwner(tt.board))
		})
	}
}

// TestReachableStates walks every state reachable from the initial one and
// checks the context invariants on each.
func TestReachableStates(t *testing.T) {
	u := New(zaptest.NewLogger(t))

	seen := map[domain.GameState]struct{}{}
	stack := []domain.GameState{u.Initial()}
	terminal := 0
	for len(stack) > 0 {
		state := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[state]; ok {
			continue
		}
		seen[state] = struct{}{}

		ctx := state.Context
		require.Equal(t, int(ctx.Moves), ctx.Board.Filled())
		expectedPlayer := x
		if ctx.Moves%2 == 1 {
			expectedPlayer = o
		}
		require.Equal(t, expectedPlayer, ctx.Player)
		require.Equal(t, state.Value == domain.Winner, ctx.Winner != n)
		if state.Value == domain.Winner {
			require.Equal(t, ctx.Winner, lineOwner(ctx.Board))
			require.Equal(t, ctx.Player.Opponent(), ctx.Winner)
		}
		if state.Value == domain.Draw {
			require.Equal(t, uint8(domain.MaxMoves), ctx.Moves)
			require.Equal(t, n, lineOwner(ctx.Board))
		}

		if state.IsTerminal() {
			terminal++
		}
		for cell := 0; cell < domain.BoardSize; cell++ {
			for _, player := range []domain.Cell{x, o} {
				next, err := u.Apply(state, play(cell, player))
				if err != nil {
					require.Equal(t, state, next)
					continue
				}
				require.Equal(t, domain.None, ctx.Board[cell])
				require.Equal(t, ctx.Player, next.Context.Board[cell])
				stack = append(stack, next)
			}
		}
	}

	// Then: the well known count of distinct tic-tac-toe positions
	assert.Len(t, seen, 5478)
	assert.Equal(t, 958, terminal)
}
