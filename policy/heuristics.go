package policy

import (
	"math"

	"golang.org/x/exp/rand"

	"yahtzee/game"
)

// Heuristics approximates how likely a category is to pay out from a partial
// set of dice. The numbers guide hold and release decisions and are not
// exact probabilities.
type Heuristics struct {
	PairWeight    float64 `yaml:"pair_weight"`
	TripleWeight  float64 `yaml:"triple_weight"`
	SmallStraight float64 `yaml:"small_straight"`
	LargeStraight float64 `yaml:"large_straight"`
	Chance        float64 `yaml:"chance"`
}

func DefaultHeuristics() Heuristics {
	return Heuristics{
		PairWeight:    0.2,
		TripleWeight:  0.3,
		SmallStraight: 0.5,
		LargeStraight: 0.3,
		Chance:        0.1,
	}
}

// Probability estimates the chance of achieving c from dice with rollsLeft
// rolls to go.
func (h Heuristics) Probability(c game.Category, dice game.Faces, rollsLeft int) float64 {
	switch c {
	case game.Yahtzee:
		return h.ofAKind(dice, game.NumDice, rollsLeft, func(n, needed int) float64 {
			return math.Pow(1.0/6, float64(needed))
		})
	case game.ThreeOfAKind, game.FourOfAKind:
		target := 3
		if c == game.FourOfAKind {
			target = 4
		}
		return h.ofAKind(dice, target, rollsLeft, func(n, needed int) float64 {
			return 1 - math.Pow(float64(game.NumDice-n)/6, float64(needed))
		})
	case game.FullHouse:
		if game.ScoreFaces(game.FullHouse, dice) > 0 {
			return 1
		}
		pairs, triples := 0, 0
		for face := 1; face <= game.NumFaces; face++ {
			switch n := dice.Count(face); {
			case n >= 3:
				triples++
			case n == 2:
				pairs++
			}
		}
		return math.Min(1, h.PairWeight*float64(pairs)+h.TripleWeight*float64(triples))
	case game.SmallStraight:
		return h.straight(c, dice, rollsLeft, h.SmallStraight)
	case game.LargeStraight:
		return h.straight(c, dice, rollsLeft, h.LargeStraight)
	case game.Chance:
		return h.Chance
	default:
		// Upper section points are already fixed by the dice being scored.
		return 1
	}
}

func (h Heuristics) ofAKind(dice game.Faces, target, rollsLeft int, estimate func(n, needed int) float64) float64 {
	n := dice.MaxCount()
	needed := target - n
	if needed <= 0 {
		return 1
	}
	if needed > rollsLeft {
		return 0
	}
	return estimate(n, needed)
}

func (h Heuristics) straight(c game.Category, dice game.Faces, rollsLeft int, estimate float64) float64 {
	if game.ScoreFaces(c, dice) > 0 {
		return 1
	}
	if rollsLeft == 0 {
		return 0
	}
	return estimate
}

// ExpectedValue weighs the score of every open category by its estimated
// probability.
func (h Heuristics) ExpectedValue(dice game.Faces, open []game.Category, rollsLeft int) float64 {
	ev := 0.0
	for _, c := range open {
		ev += h.Probability(c, dice, rollsLeft) * float64(game.ScoreFaces(c, dice))
	}
	return ev
}

// BestHold returns the table dice whose holding maximizes the expected value
// of the held pool. When no subset beats holding nothing, a random non-empty
// subset is returned so the turn keeps moving.
func (h Heuristics) BestHold(state *game.State, rng *rand.Rand) game.Faces {
	table := game.FacesOf(state.Table)
	held := game.FacesOf(state.Held)
	open := state.Scorecard().Open()

	subsets := table.Subsets()
	base := h.ExpectedValue(held, open, state.RollsLeft)
	best, bestValue := game.Faces{}, base
	for _, subset := range subsets[1:] {
		if v := h.ExpectedValue(held.Add(subset), open, state.RollsLeft); v > bestValue {
			best, bestValue = subset, v
		}
	}
	if best.Len() == 0 {
		return randomSubset(table, rng)
	}
	return best
}

// BestRelease returns the held dice whose release maximizes the completion
// value of the dice kept. When no subset beats keeping everything, a random
// non-empty subset is returned.
func (h Heuristics) BestRelease(state *game.State, rng *rand.Rand) game.Faces {
	held := game.FacesOf(state.Held)
	open := state.Scorecard().Open()

	subsets := held.Subsets()
	base := h.CompletionValue(held, open, state.RollsLeft)
	best, bestValue := game.Faces{}, base
	for _, subset := range subsets[1:] {
		kept, _ := held.Sub(subset)
		if v := h.CompletionValue(kept, open, state.RollsLeft); v > bestValue {
			best, bestValue = subset, v
		}
	}
	if best.Len() == 0 {
		return randomSubset(held, rng)
	}
	return best
}

// meanFace is the expected value of one die.
const meanFace = 3.5

// CompletionValue is like ExpectedValue but scores each category as if the
// dice missing from a full hand were rolled, counting them as average dice.
func (h Heuristics) CompletionValue(dice game.Faces, open []game.Category, rollsLeft int) float64 {
	missing := float64(game.NumDice - dice.Len())
	v := 0.0
	for _, c := range open {
		v += h.Probability(c, dice, rollsLeft) * completedScore(c, dice, missing)
	}
	return v
}

func completedScore(c game.Category, dice game.Faces, missing float64) float64 {
	switch c {
	case game.ThreeOfAKind, game.FourOfAKind, game.Chance:
		return float64(dice.Sum()) + missing*meanFace
	case game.FullHouse:
		return 25
	case game.SmallStraight:
		return 30
	case game.LargeStraight:
		return 40
	case game.Yahtzee:
		return 50
	default:
		face := float64(c.Face())
		return face * (float64(dice.Count(c.Face())) + missing/game.NumFaces)
	}
}
