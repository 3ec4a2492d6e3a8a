package game

const (
	NumPlayers = 2
	NumDice    = 5
	NumFaces   = 6
	MaxRolls   = 3
	Unscored   = -1 // Scorecard sentinel for a category not yet scored
)

type StateHash uint64
