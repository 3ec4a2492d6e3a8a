package gamemaster

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"yahtzee/engine"
	"yahtzee/game"
	"yahtzee/policy"
)

var ErrNotYourTurn = errors.New("not the human player's turn")

// Update is one action played in a session and the state it produced.
type Update struct {
	Player int
	Action game.Action
	Points int
	State  game.Snapshot
}

// UpdateGetter returns the oldest unread update, or nil when there is none.
type UpdateGetter func() *Update

type Engine interface {
	Init() (game.Snapshot, UpdateGetter)
	Play(game.Action) error
}

// LocalEngine runs a game between a human seat and a policy. The policy's
// turns are played as soon as the human ends theirs.
type LocalEngine struct {
	mu       sync.Mutex
	game     *game.Game
	human    int
	ai       policy.Policy
	updates  []Update
	gameOver bool
}

func NewLocalEngine(rng *rand.Rand, ai policy.Policy, humanSeat int) *LocalEngine {
	if ai == nil {
		panic("need a policy for the computer seat")
	}
	if humanSeat < 0 || humanSeat >= game.NumPlayers {
		panic(fmt.Sprintf("invalid seat %d", humanSeat))
	}
	return &LocalEngine{
		game:  game.NewGame(rng),
		human: humanSeat,
		ai:    ai,
	}
}

func (e *LocalEngine) Init() (game.Snapshot, UpdateGetter) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.game.Reset()
	e.updates = nil
	e.gameOver = false
	if err := e.playComputer(); err != nil {
		log.Error().Err(err).Msg("computer failed to open the game")
	}

	return e.game.Snapshot(), func() *Update {
		e.mu.Lock()
		defer e.mu.Unlock()
		if len(e.updates) == 0 {
			return nil
		}
		u := e.updates[0]
		e.updates = e.updates[1:]
		return &u
	}
}

// Play applies a human action. Scoring ends the turn and lets the computer
// play its whole turn before returning. Scoring a category that is already
// filled changes nothing.
func (e *LocalEngine) Play(action game.Action) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gameOver {
		return game.ErrGameOver
	}
	state := e.game.State()
	if state.Player != e.human {
		return ErrNotYourTurn
	}
	if !game.LegalActions(state).Has(action.Kind) {
		return fmt.Errorf("%w: %s in %s phase", game.ErrIllegalAction, action.Kind, state.Phase)
	}

	points := 0
	var err error
	switch action.Kind {
	case game.RollAction:
		err = e.game.Roll()
	case game.HoldAction:
		err = e.game.HoldAll(action.Dice.Dice())
	case game.ReleaseAction:
		err = e.game.ReleaseAll(action.Dice.Dice())
	case game.ScoreAction:
		if action.Category.Valid() && state.Scorecard().Scored(action.Category) {
			log.Debug().Msgf("%s is already scored, ignoring", action.Category)
			return nil
		}
		points, err = e.game.Score(action.Category)
	}
	if err != nil {
		return err
	}
	e.publish(e.human, action, points)

	if action.Kind != game.ScoreAction {
		return nil
	}
	if err := e.endTurn(); err != nil {
		return err
	}
	return e.playComputer()
}

// playComputer plays policy turns until it is the human's turn again or the
// game is over.
func (e *LocalEngine) playComputer() error {
	turnSteps := 0
	for !e.gameOver && e.game.State().Player != e.human {
		action, points, fallback, err := engine.Step(e.game, e.ai, turnSteps, engine.MaxStepsPerTurn)
		if err != nil {
			return fmt.Errorf("computer failed to play %s: %w", action, err)
		}
		if fallback {
			log.Warn().Msgf("computer chose an illegal action, played %s instead", action)
		}
		e.publish(1-e.human, action, points)
		turnSteps++

		if action.Kind == game.ScoreAction {
			if err := e.endTurn(); err != nil {
				return err
			}
			turnSteps = 0
		}
	}
	return nil
}

func (e *LocalEngine) endTurn() error {
	if err := e.game.EndTurn(); err != nil {
		return err
	}
	if e.game.Over() {
		e.gameOver = true
		log.Info().Msgf("game over, totals %v", e.game.State().Totals)
	}
	return nil
}

func (e *LocalEngine) publish(player int, action game.Action, points int) {
	e.updates = append(e.updates, Update{
		Player: player,
		Action: action,
		Points: points,
		State:  e.game.Snapshot(),
	})
}

func (e *LocalEngine) Snapshot() game.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.game.Snapshot()
}

// Preview lists what each open category would score for the human's dice.
func (e *LocalEngine) Preview() map[game.Category]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.game.Preview()
}

func (e *LocalEngine) Over() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gameOver
}

// Winner is the winning seat, or -1 for a tie or an unfinished game.
func (e *LocalEngine) Winner() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.game.Winner()
}

func (e *LocalEngine) HumanSeat() int {
	return e.human
}
