package game

import (
	"fmt"
	"slices"

	"golang.org/x/exp/rand"

	"yahtzee/utils"
)

// Game applies actions to a State, enforcing legality and advancing phases.
// A Game is not safe for concurrent use.
type Game struct {
	state *State
	rng   *rand.Rand
}

// NewGame starts a game whose dice are drawn from rng.
func NewGame(rng *rand.Rand) *Game {
	return &Game{
		state: NewState(),
		rng:   rng,
	}
}

// State returns the live state. Callers must not mutate it; use Snapshot for
// a detached copy.
func (g *Game) State() *State {
	return g.state
}

func (g *Game) Over() bool {
	return g.state.Phase == FinalPhase
}

// Winner returns the index of the player with the higher total once the game
// is over, or -1 for a tie or an unfinished game.
func (g *Game) Winner() int {
	if !g.Over() {
		return -1
	}
	switch t := g.state.Totals; {
	case t[0] > t[1]:
		return 0
	case t[1] > t[0]:
		return 1
	default:
		return -1
	}
}

func (g *Game) legal(kind ActionKind) error {
	if g.Over() {
		return ErrGameOver
	}
	if !LegalActions(g.state).Has(kind) {
		return fmt.Errorf("%w: %s in %s phase with %d rolls left", ErrIllegalAction, kind, g.state.Phase, g.state.RollsLeft)
	}
	return nil
}

// Roll re-rolls every die on the table.
func (g *Game) Roll() error {
	if err := g.legal(RollAction); err != nil {
		return err
	}

	for i := range g.state.Table {
		g.state.Table[i] = g.rng.Intn(NumFaces) + 1
	}
	g.state.RollsLeft--

	if g.state.RollsLeft == 0 {
		g.state.Phase = HoldingPhase
	} else {
		g.state.Phase = RollingPhase
	}
	return nil
}

// Hold moves one die showing value from the table to the held pool.
func (g *Game) Hold(value int) error {
	return g.HoldAll([]int{value})
}

// Release moves one die showing value from the held pool back to the table.
func (g *Game) Release(value int) error {
	return g.ReleaseAll([]int{value})
}

// HoldAll moves a multiset of dice from the table to the held pool. Nothing
// moves unless every die is present.
func (g *Game) HoldAll(values []int) error {
	if err := g.legal(HoldAction); err != nil {
		return err
	}
	table, held, err := move(g.state.Table, g.state.Held, values)
	if err != nil {
		return err
	}
	g.state.Table, g.state.Held = table, held
	return nil
}

// ReleaseAll moves a multiset of dice from the held pool to the table.
func (g *Game) ReleaseAll(values []int) error {
	if err := g.legal(ReleaseAction); err != nil {
		return err
	}
	held, table, err := move(g.state.Held, g.state.Table, values)
	if err != nil {
		return err
	}
	g.state.Table, g.state.Held = table, held
	return nil
}

func move(from, to, values []int) ([]int, []int, error) {
	if len(values) == 0 {
		return nil, nil, fmt.Errorf("%w: no dice given", ErrInvalidDie)
	}
	from = slices.Clone(from)
	to = slices.Clone(to)
	for _, v := range values {
		i := utils.FindIndex(from, v)
		if i < 0 {
			return nil, nil, fmt.Errorf("%w: no die showing %d", ErrInvalidDie, v)
		}
		from = utils.RemoveAt(from, i)
		to = append(to, v)
	}
	return from, to, nil
}

// Score writes the combined dice into category c for the active player and
// ends their turn. Scoring a category that is already filled does nothing.
func (g *Game) Score(c Category) (int, error) {
	if !c.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	card := &g.state.Scorecards[g.state.Player]
	if card[c] != Unscored {
		return 0, nil
	}
	if err := g.legal(ScoreAction); err != nil {
		return 0, err
	}

	g.state.Phase = ScoringPhase
	points := Score(c, g.state.Dice())
	card[c] = points
	g.state.Totals[g.state.Player] += points
	g.state.Phase = EndOfTurnPhase
	return points, nil
}

// EndTurn passes the dice to the other player, or finishes the game when the
// other player has nothing left to score.
func (g *Game) EndTurn() error {
	if g.Over() {
		return ErrGameOver
	}
	if g.state.Phase != EndOfTurnPhase {
		return fmt.Errorf("%w: end turn in %s phase", ErrIllegalAction, g.state.Phase)
	}

	if g.state.Scorecards[g.state.Opponent()].Full() {
		g.state.Phase = FinalPhase
		return nil
	}
	g.state.Player = g.state.Opponent()
	g.state.resetTurn()
	return nil
}

// Reset discards all progress.
func (g *Game) Reset() {
	g.state = NewState()
}

// Preview returns what each open category of the active player would score
// with the current dice.
func (g *Game) Preview() map[Category]int {
	dice := FacesOf(g.state.Dice())
	preview := make(map[Category]int)
	for _, c := range g.state.Scorecard().Open() {
		preview[c] = ScoreFaces(c, dice)
	}
	return preview
}

// Snapshot is a detached, serializable view of a game for display or for an
// advisory service.
type Snapshot struct {
	Player     int                   `json:"player"`
	Phase      Phase                 `json:"phase"`
	RollsLeft  int                   `json:"rolls_left"`
	Table      []int                 `json:"table"`
	Held       []int                 `json:"held"`
	Scorecards [NumPlayers]Scorecard `json:"scorecards"`
	Totals     [NumPlayers]int       `json:"totals"`
	Legal      []ActionKind          `json:"legal"`
}

func (g *Game) Snapshot() Snapshot {
	s := g.state.Copy()
	return Snapshot{
		Player:     s.Player,
		Phase:      s.Phase,
		RollsLeft:  s.RollsLeft,
		Table:      s.Table,
		Held:       s.Held,
		Scorecards: s.Scorecards,
		Totals:     s.Totals,
		Legal:      LegalActions(s).Kinds(),
	}
}
