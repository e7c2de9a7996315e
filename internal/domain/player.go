package domain

import (
	"github.com/pkg/errors"
)

var ErrUnknownMark = errors.New("unknown mark")

// Cell is a board square and doubles as the player mark.
type Cell byte

const (
	None = Cell(0)
	X    = Cell('X')
	O    = Cell('O')
)

func (c Cell) IsPlayer() bool {
	return c == X || c == O
}

func (c Cell) Opponent() Cell {
	switch c {
	case X:
		return O
	case O:
		return X
	default:
		return None
	}
}

func (c Cell) String() string {
	if c == None {
		return " "
	}
	return string(rune(c))
}

func (c Cell) MarshalText() ([]byte, error) {
	switch c {
	case None:
		return []byte{}, nil
	case X, O:
		return []byte{byte(c)}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownMark, "cell %q", byte(c))
	}
}

func (c *Cell) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", " ":
		*c = None
	case "X", "x":
		*c = X
	case "O", "o":
		*c = O
	default:
		return errors.Wrapf(ErrUnknownMark, "mark %q", string(text))
	}
	return nil
}
