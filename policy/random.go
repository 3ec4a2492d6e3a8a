package policy

import (
	"golang.org/x/exp/rand"

	"yahtzee/game"
)

// Random plays uniformly among legal choices.
type Random struct {
	rng *rand.Rand
}

func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

func (r *Random) ChooseAction(state *game.State) (game.ActionKind, error) {
	return randomKind(game.LegalActions(state), r.rng)
}

func (r *Random) ChooseCategory(state *game.State) (game.Category, error) {
	open := state.Scorecard().Open()
	if len(open) == 0 {
		return game.NoCategory, ErrNoOpenCategory
	}
	return open[r.rng.Intn(len(open))], nil
}

func (r *Random) ChooseHold(state *game.State) game.Faces {
	return randomSubset(game.FacesOf(state.Table), r.rng)
}

func (r *Random) ChooseRelease(state *game.State) game.Faces {
	return randomSubset(game.FacesOf(state.Held), r.rng)
}
