package engine

import (
	"fmt"

	"yahtzee/game"
	"yahtzee/policy"
)

const MaxTurns = 2 * game.NumCategories

// MaxStepsPerTurn is the default action budget of one turn before a score is
// forced.
const MaxStepsPerTurn = 20

// pick asks p for an action kind, replacing an illegal or failed choice with
// a legal one. Once a turn has used its step budget the turn is closed by
// scoring, or by rolling when no roll has happened yet.
func pick(p policy.Policy, state *game.State, turnSteps, maxSteps int) (game.ActionKind, bool, error) {
	legal := game.LegalActions(state)
	if legal.Len() == 0 {
		return 0, false, policy.ErrNoLegalAction
	}

	if turnSteps >= maxSteps {
		if legal.Has(game.ScoreAction) {
			return game.ScoreAction, false, nil
		}
		return game.RollAction, false, nil
	}

	kind, err := p.ChooseAction(state)
	if err != nil || !legal.Has(kind) {
		return legal.Kinds()[0], true, nil
	}
	return kind, false, nil
}

// apply completes the action kind with a payload from p and plays it. The
// returned points are non-zero only for a score.
func apply(g *game.Game, p policy.Policy, kind game.ActionKind) (game.Action, int, error) {
	state := g.State()
	switch kind {
	case game.RollAction:
		return game.NewRollAction(), 0, g.Roll()
	case game.HoldAction:
		dice := p.ChooseHold(state)
		return game.NewHoldAction(dice), 0, g.HoldAll(dice.Dice())
	case game.ReleaseAction:
		dice := p.ChooseRelease(state)
		return game.NewReleaseAction(dice), 0, g.ReleaseAll(dice.Dice())
	case game.ScoreAction:
		c, err := p.ChooseCategory(state)
		if err != nil {
			return game.Action{}, 0, err
		}
		points, err := g.Score(c)
		return game.NewScoreAction(c), points, err
	default:
		return game.Action{}, 0, fmt.Errorf("unknown action kind %d", kind)
	}
}

// Step plays one action for the active player of g as chosen by p. It
// reports whether p's choice was illegal and had to be replaced.
func Step(g *game.Game, p policy.Policy, turnSteps, maxSteps int) (game.Action, int, bool, error) {
	kind, fallback, err := pick(p, g.State(), turnSteps, maxSteps)
	if err != nil {
		return game.Action{}, 0, false, err
	}
	action, points, err := apply(g, p, kind)
	return action, points, fallback, err
}
