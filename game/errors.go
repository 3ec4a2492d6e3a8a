package game

import "errors"

var (
	ErrIllegalAction   = errors.New("action is not legal in the current state")
	ErrInvalidDie      = errors.New("invalid die reference")
	ErrUnknownCategory = errors.New("unknown category")
	ErrGameOver        = errors.New("game is over")
)
