package policy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"yahtzee/game"
)

func faces(dice ...int) game.Faces {
	return game.FacesOf(dice)
}

func TestProbability(t *testing.T) {
	h := DefaultHeuristics()

	for _, tt := range []struct {
		name      string
		category  game.Category
		dice      game.Faces
		rollsLeft int
		want      float64
	}{
		{"yahtzee achieved", game.Yahtzee, faces(5, 5, 5, 5, 5), 0, 1},
		{"yahtzee two short", game.Yahtzee, faces(5, 5, 5), 2, math.Pow(1.0/6, 2)},
		{"yahtzee out of rolls", game.Yahtzee, faces(5, 5, 5), 1, 0},
		{"three of a kind achieved", game.ThreeOfAKind, faces(2, 2, 2), 1, 1},
		{"three of a kind one short", game.ThreeOfAKind, faces(2, 2), 2, 1 - 3.0/6},
		{"four of a kind out of rolls", game.FourOfAKind, faces(1, 1), 1, 0},
		{"four of a kind from nothing", game.FourOfAKind, game.Faces{}, 2, 0},
		{"full house achieved", game.FullHouse, faces(3, 3, 4, 4, 4), 0, 1},
		{"full house two pairs", game.FullHouse, faces(3, 3, 4, 4), 2, 0.4},
		{"full house triple", game.FullHouse, faces(3, 3, 3, 4), 2, 0.3},
		{"small straight achieved", game.SmallStraight, faces(1, 2, 3, 4), 0, 1},
		{"small straight out of rolls", game.SmallStraight, faces(1, 2), 0, 0},
		{"small straight pending", game.SmallStraight, faces(1, 2), 2, 0.5},
		{"large straight pending", game.LargeStraight, faces(1, 2, 3, 4), 1, 0.3},
		{"large straight achieved", game.LargeStraight, faces(2, 3, 4, 5, 6), 0, 1},
		{"chance", game.Chance, faces(6, 6), 2, 0.1},
		{"upper section", game.Threes, faces(3), 2, 1},
	} {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, h.Probability(tt.category, tt.dice, tt.rollsLeft), 1e-9)
		})
	}
}

func TestExpectedValue(t *testing.T) {
	t.Run("weights scores by probability", func(t *testing.T) {
		h := DefaultHeuristics()
		open := []game.Category{game.Sixes, game.Chance}
		require.InDelta(t, 18+0.1*18, h.ExpectedValue(faces(6, 6, 6), open, 2), 1e-9)
	})

	t.Run("nothing open is worth nothing", func(t *testing.T) {
		h := DefaultHeuristics()
		require.Zero(t, h.ExpectedValue(faces(6, 6, 6), nil, 2))
	})
}

func TestBestHold(t *testing.T) {
	h := DefaultHeuristics()

	t.Run("keeps a yahtzee", func(t *testing.T) {
		s := game.NewState()
		s.Table = []int{6, 6, 6, 6, 6}
		s.RollsLeft = 2
		require.Equal(t, faces(6, 6, 6, 6, 6), h.BestHold(s, rand.New(rand.NewSource(1))))
	})

	t.Run("always holds something from the table", func(t *testing.T) {
		rng := rand.New(rand.NewSource(3))
		for i := 0; i < 50; i++ {
			s := game.NewState()
			s.Table = []int{rng.Intn(6) + 1, rng.Intn(6) + 1, rng.Intn(6) + 1}
			s.Held = []int{rng.Intn(6) + 1}
			s.RollsLeft = 1
			hold := h.BestHold(s, rng)
			require.Positive(t, hold.Len())
			require.True(t, game.FacesOf(s.Table).Contains(hold))
		}
	})

	t.Run("falls back to a random subset when nothing helps", func(t *testing.T) {
		s := game.NewState()
		s.Table = []int{1, 2}
		s.RollsLeft = 2
		for _, c := range game.Categories() {
			s.Scorecards[0][c] = 0
		}
		hold := h.BestHold(s, rand.New(rand.NewSource(1)))
		require.Positive(t, hold.Len())
		require.True(t, faces(1, 2).Contains(hold))
	})
}

func TestBestRelease(t *testing.T) {
	t.Run("releases the die that keeps the best hand", func(t *testing.T) {
		h := DefaultHeuristics()
		s := game.NewState()
		s.Table = []int{}
		s.Held = []int{6, 1, 6, 6, 6}
		s.RollsLeft = 1

		release := h.BestRelease(s, rand.New(rand.NewSource(5)))
		require.Equal(t, faces(1), release)

		kept := faces(6, 6, 6, 6)
		open := s.Scorecard().Open()
		require.Greater(t, h.CompletionValue(kept, open, 1), h.CompletionValue(faces(6, 6, 6, 6, 1), open, 1))
	})

	t.Run("always releases something held", func(t *testing.T) {
		h := DefaultHeuristics()
		rng := rand.New(rand.NewSource(5))
		s := game.NewState()
		s.Table = []int{}
		s.Held = []int{6, 6, 6, 6, 6}
		s.RollsLeft = 1
		for i := 0; i < 20; i++ {
			release := h.BestRelease(s, rng)
			require.Positive(t, release.Len())
			require.True(t, faces(6, 6, 6, 6, 6).Contains(release))
		}
	})
}

func TestCompletionValue(t *testing.T) {
	h := DefaultHeuristics()

	t.Run("full hands match the expected value", func(t *testing.T) {
		dice := faces(2, 3, 3, 5, 6)
		open := []game.Category{game.Threes, game.Chance, game.Sixes}
		require.InDelta(t, h.ExpectedValue(dice, open, 1), h.CompletionValue(dice, open, 1), 1e-9)
	})

	t.Run("missing dice count as average rolls", func(t *testing.T) {
		require.InDelta(t, 0.1*(12+2*3.5), h.CompletionValue(faces(6, 6), []game.Category{game.Chance}, 1), 1e-9)
		require.InDelta(t, 6*(3+2.0/6), h.CompletionValue(faces(6, 6, 6), []game.Category{game.Sixes}, 1), 1e-9)
	})
}

func TestRewards(t *testing.T) {
	h := DefaultHeuristics()
	r := DefaultRewards()

	s := game.NewState()
	s.Table = []int{6, 6, 2}
	s.Held = []int{6}
	s.RollsLeft = 2
	s.Phase = game.RollingPhase
	open := s.Scorecard().Open()

	t.Run("roll scales with rolls left", func(t *testing.T) {
		require.InDelta(t, r.Roll*2, r.Evaluate(h, s, game.NewRollAction(), 0), 1e-9)
	})

	t.Run("hold is the expected value after holding", func(t *testing.T) {
		want := h.ExpectedValue(faces(6, 6, 6), open, 2)
		require.InDelta(t, want, r.Evaluate(h, s, game.NewHoldAction(faces(6, 6)), 0), 1e-9)
	})

	t.Run("holding the whole table earns a bonus", func(t *testing.T) {
		want := h.ExpectedValue(faces(6, 6, 6, 2), open, 2) + r.HoldAllBonus
		require.InDelta(t, want, r.Evaluate(h, s, game.NewHoldAction(faces(6, 6, 2)), 0), 1e-9)
	})

	t.Run("releasing everything is penalized", func(t *testing.T) {
		want := h.ExpectedValue(game.Faces{}, open, 2) - r.ReleaseAllPenalty
		require.InDelta(t, want, r.Evaluate(h, s, game.NewReleaseAction(faces(6)), 0), 1e-9)
	})

	t.Run("score adds weighted open categories", func(t *testing.T) {
		dice := faces(6, 6, 6, 2)
		want := 20 * r.ScoreMultiplier
		for _, c := range open {
			if c != game.Chance {
				want += r.OpenBonus * h.Probability(c, dice, 2) * float64(game.ScoreFaces(c, dice))
			}
		}
		require.InDelta(t, want, r.Evaluate(h, s, game.NewScoreAction(game.Chance), 20), 1e-9)
	})
}
