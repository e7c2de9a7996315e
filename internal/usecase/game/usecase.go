package game

import (
	"github.com/kiryu-dev/tic-tac-toe-machine/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type useCase struct {
	lenientTurns bool
	logger       *zap.Logger
}

type Option func(u *useCase)

// WithLenientTurns accepts a play regardless of the player it names. The
// mark placed is still the recorded current player.
func WithLenientTurns() Option {
	return func(u *useCase) {
		u.lenientTurns = true
	}
}

func New(logger *zap.Logger, opts ...Option) useCase {
	u := useCase{
		logger: logger,
	}
	for _, opt := range opts {
		opt(&u)
	}
	return u
}

func (u useCase) Initial() domain.GameState {
	return domain.GameState{
		Value: domain.Playing,
		Context: domain.GameContext{
			Player: domain.X,
		},
	}
}

// Apply returns the next state. A rejected event yields the unchanged state
// together with the reason.
func (u useCase) Apply(state domain.GameState, event domain.Event) (domain.GameState, error) {
	switch e := event.(type) {
	case domain.ResetEvent:
		return u.Initial(), nil
	case domain.PlayEvent:
		if err := u.validateMove(state, e); err != nil {
			return state, err
		}
		u.logger.Debug("move",
			zap.Int("cell", e.Cell),
			zap.Stringer("player", state.Context.Player))
		return executeMove(state, e.Cell), nil
	default:
		return state, errors.Wrapf(ErrUnknownEvent, "%T", event)
	}
}

func (u useCase) validateMove(state domain.GameState, e domain.PlayEvent) error {
	if state.Value != domain.Playing {
		return errors.WithMessagef(ErrGameFinished, "state '%s'", state.Value)
	}
	if e.Cell < 0 || e.Cell >= domain.BoardSize {
		return errors.WithMessagef(ErrInvalidCell, "cell %d", e.Cell)
	}
	if state.Context.Board[e.Cell] != domain.None {
		return errors.WithMessagef(ErrCellOccupied, "cell in position '%d' is already selected", e.Cell)
	}
	if !u.lenientTurns && e.Player != state.Context.Player {
		return errors.WithMessagef(ErrNotYourTurn, "player '%s', expected '%s'", e.Player, state.Context.Player)
	}
	return nil
}

var winConditions = [8][3]uint8{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

func executeMove(state domain.GameState, pos int) domain.GameState {
	ctx := state.Context
	mover := ctx.Player
	ctx.Board[pos] = mover
	ctx.Moves++
	ctx.Player = mover.Opponent()
	if lineOwner(ctx.Board) != domain.None {
		ctx.Winner = mover
		return domain.GameState{Value: domain.Winner, Context: ctx}
	}
	if ctx.Moves == domain.MaxMoves {
		return domain.GameState{Value: domain.Draw, Context: ctx}
	}
	return domain.GameState{Value: domain.Playing, Context: ctx}
}

// lineOwner reports the player holding a complete line, or None.
func lineOwner(board domain.Board) domain.Cell {
	for _, condition := range winConditions {
		first := board[condition[0]]
		if first == domain.None {
			continue
		}
		if board[condition[1]] == first && board[condition[2]] == first {
			return first
		}
	}
	return domain.None
}
