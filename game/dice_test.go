package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFaces(t *testing.T) {
	t.Run("order independent", func(t *testing.T) {
		require.Equal(t, FacesOf([]int{3, 1, 3}), FacesOf([]int{1, 3, 3}))
	})

	t.Run("expands sorted", func(t *testing.T) {
		f := FacesOf([]int{5, 2, 5, 1})
		require.Equal(t, []int{1, 2, 5, 5}, f.Dice())
		require.Equal(t, "1 2 5 5", f.String())
		require.Equal(t, 4, f.Len())
		require.Equal(t, 13, f.Sum())
		require.Equal(t, 2, f.MaxCount())
	})

	t.Run("subtracting a contained multiset", func(t *testing.T) {
		f := FacesOf([]int{2, 2, 4})
		rest, ok := f.Sub(FacesOf([]int{2}))
		require.True(t, ok)
		require.Equal(t, FacesOf([]int{2, 4}), rest)
	})

	t.Run("subtracting a missing die fails", func(t *testing.T) {
		f := FacesOf([]int{2, 2, 4})
		rest, ok := f.Sub(FacesOf([]int{2, 2, 2}))
		require.False(t, ok)
		require.Equal(t, f, rest)
	})

	t.Run("enumerates distinct subsets", func(t *testing.T) {
		f := FacesOf([]int{1, 1, 2})
		subsets := f.Subsets()
		// {} {1} {1 1} {2} {1 2} {1 1 2}
		require.Len(t, subsets, 6)
		require.Equal(t, Faces{}, subsets[0])
		require.Equal(t, f, subsets[len(subsets)-1])

		seen := map[Faces]bool{}
		for _, s := range subsets {
			require.True(t, f.Contains(s))
			require.False(t, seen[s], "duplicate subset %s", s)
			seen[s] = true
		}
	})

	t.Run("five distinct dice have 32 subsets", func(t *testing.T) {
		require.Len(t, FacesOf([]int{1, 2, 3, 4, 5}).Subsets(), 32)
	})

	t.Run("parses its string form", func(t *testing.T) {
		f := FacesOf([]int{6, 6, 1})
		parsed, err := ParseFaces(f.String())
		require.NoError(t, err)
		require.Equal(t, f, parsed)

		empty, err := ParseFaces("")
		require.NoError(t, err)
		require.Equal(t, Faces{}, empty)
	})

	t.Run("rejects bad dice", func(t *testing.T) {
		for _, s := range []string{"0", "7", "x", "1 1 1 1 1 1"} {
			_, err := ParseFaces(s)
			require.Error(t, err, s)
		}
	})
}

func TestStateKey(t *testing.T) {
	t.Run("dice order does not change the key", func(t *testing.T) {
		a := NewState()
		a.Table = []int{4, 1, 4}
		a.Held = []int{6, 2}
		a.RollsLeft = 1

		b := a.Copy()
		b.Table = []int{1, 4, 4}
		b.Held = []int{2, 6}

		require.Equal(t, a.Key(true), b.Key(true))
		require.Equal(t, a.Key(true).Hash(), b.Key(true).Hash())
	})

	t.Run("open categories only when requested", func(t *testing.T) {
		s := NewState()
		s.Scorecards[0][Chance] = 20

		require.Zero(t, s.Key(false).Open)
		key := s.Key(true)
		require.Len(t, key.OpenCategories(), NumCategories-1)
		require.NotContains(t, key.OpenCategories(), Chance)
	})

	t.Run("rolls left changes the key", func(t *testing.T) {
		s := NewState()
		k1 := s.Key(false)
		s.RollsLeft = 2
		require.NotEqual(t, k1, s.Key(false))
	})
}
