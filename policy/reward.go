package policy

import "yahtzee/game"

// Rewards shapes the training signal. Every term is tunable; only which
// terms exist matters to the learner.
type Rewards struct {
	Roll              float64 `yaml:"roll"`                // Per roll still available when rolling
	HoldAllBonus      float64 `yaml:"hold_all_bonus"`      // Holding every table die
	HoldNonePenalty   float64 `yaml:"hold_none_penalty"`   // Holding nothing
	ReleaseAllPenalty float64 `yaml:"release_all_penalty"` // Releasing every held die
	ReleaseNoneBonus  float64 `yaml:"release_none_bonus"`  // Releasing nothing
	ScoreMultiplier   float64 `yaml:"score_multiplier"`
	OpenBonus         float64 `yaml:"open_bonus"` // Weight of the expected value left in open categories
}

func DefaultRewards() Rewards {
	return Rewards{
		Roll:              0.5,
		HoldAllBonus:      1,
		HoldNonePenalty:   1,
		ReleaseAllPenalty: 1,
		ReleaseNoneBonus:  0,
		ScoreMultiplier:   1,
		OpenBonus:         0.1,
	}
}

// Evaluate returns the shaped reward for taking action from before, where
// scored is the points the action earned.
func (r Rewards) Evaluate(h Heuristics, before *game.State, action game.Action, scored int) float64 {
	table := game.FacesOf(before.Table)
	held := game.FacesOf(before.Held)
	open := before.Scorecard().Open()

	switch action.Kind {
	case game.RollAction:
		return r.Roll * float64(before.RollsLeft)
	case game.HoldAction:
		reward := h.ExpectedValue(held.Add(action.Dice), open, before.RollsLeft)
		switch action.Dice.Len() {
		case table.Len():
			reward += r.HoldAllBonus
		case 0:
			reward -= r.HoldNonePenalty
		}
		return reward
	case game.ReleaseAction:
		kept, _ := held.Sub(action.Dice)
		reward := h.ExpectedValue(kept, open, before.RollsLeft)
		switch action.Dice.Len() {
		case held.Len():
			reward -= r.ReleaseAllPenalty
		case 0:
			reward += r.ReleaseNoneBonus
		}
		return reward
	case game.ScoreAction:
		reward := float64(scored) * r.ScoreMultiplier
		dice := game.FacesOf(before.Dice())
		for _, c := range open {
			if c == action.Category {
				continue
			}
			reward += r.OpenBonus * h.Probability(c, dice, before.RollsLeft) * float64(game.ScoreFaces(c, dice))
		}
		return reward
	default:
		return 0
	}
}
