package policy

import (
	"errors"

	"golang.org/x/exp/rand"

	"yahtzee/game"
)

var (
	ErrNoLegalAction  = errors.New("no legal action")
	ErrNoOpenCategory = errors.New("no open category")
)

// Policy picks actions for the active player of a game. The payload choices
// are only asked for once the matching action kind has been picked.
type Policy interface {
	ChooseAction(state *game.State) (game.ActionKind, error)
	ChooseCategory(state *game.State) (game.Category, error)
	ChooseHold(state *game.State) game.Faces
	ChooseRelease(state *game.State) game.Faces
}

// Learner is a Policy that improves from shaped rewards during self-play.
type Learner interface {
	Policy
	Reward(before *game.State, action game.Action, scored int) float64
	Update(state *game.State, action game.Action, reward float64, next *game.State)
	Epsilon() float64
	// Fork returns a learner sharing all learned state but drawing from rng,
	// for use by a single episode.
	Fork(rng *rand.Rand) Learner
}

// BestCategory returns the open category with the highest immediate score,
// preferring earlier categories on ties.
func BestCategory(state *game.State) (game.Category, error) {
	dice := game.FacesOf(state.Dice())
	best, bestScore := game.NoCategory, -1
	for _, c := range state.Scorecard().Open() {
		if score := game.ScoreFaces(c, dice); score > bestScore {
			best, bestScore = c, score
		}
	}
	if best == game.NoCategory {
		return game.NoCategory, ErrNoOpenCategory
	}
	return best, nil
}

func randomKind(legal game.ActionSet, rng *rand.Rand) (game.ActionKind, error) {
	kinds := legal.Kinds()
	if len(kinds) == 0 {
		return 0, ErrNoLegalAction
	}
	return kinds[rng.Intn(len(kinds))], nil
}

// randomSubset picks one of the non-empty sub-multisets of f uniformly.
func randomSubset(f game.Faces, rng *rand.Rand) game.Faces {
	subsets := f.Subsets()
	if len(subsets) < 2 {
		return game.Faces{}
	}
	return subsets[1+rng.Intn(len(subsets)-1)]
}
