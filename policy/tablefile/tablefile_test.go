package tablefile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"yahtzee/game"
	"yahtzee/policy"
)

func contents(t *policy.Table) map[game.StateKey]map[game.Action]float64 {
	out := map[game.StateKey]map[game.Action]float64{}
	for _, k := range t.Keys() {
		out[k] = t.Row(k)
	}
	return out
}

func populated(seed uint64) *policy.Table {
	rng := rand.New(rand.NewSource(seed))
	t := policy.NewTable()
	for i := 0; i < 200; i++ {
		var table, held game.Faces
		for d := 0; d < game.NumDice; d++ {
			face := rng.Intn(game.NumFaces)
			if rng.Intn(2) == 0 {
				table[face]++
			} else {
				held[face]++
			}
		}
		key := game.StateKey{
			Table:     table,
			Held:      held,
			RollsLeft: rng.Intn(game.MaxRolls + 1),
			Open:      uint16(rng.Intn(1 << game.NumCategories)),
		}

		var action game.Action
		switch rng.Intn(6) {
		case 0:
			action = game.NewRollAction()
		case 1:
			action = game.NewHoldAction(table)
		case 2:
			action = game.NewReleaseAction(held)
		case 3:
			action = game.NewScoreAction(game.Category(rng.Intn(game.NumCategories)))
		case 4:
			action = game.KindAction(game.ScoreAction)
		default:
			action = game.KindAction(game.HoldAction)
		}
		t.Set(key, action, rng.NormFloat64()*1e3)
	}
	return t
}

func TestRoundTrip(t *testing.T) {
	t.Run("load restores every saved value", func(t *testing.T) {
		original := populated(1)

		var buf bytes.Buffer
		require.NoError(t, Save(&buf, original))

		loaded, err := Load(&buf)
		require.NoError(t, err)
		if diff := cmp.Diff(contents(original), contents(loaded)); diff != "" {
			t.Errorf("table mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("output is stable", func(t *testing.T) {
		original := populated(2)

		var first, second bytes.Buffer
		require.NoError(t, Save(&first, original))
		loaded, err := Load(bytes.NewReader(first.Bytes()))
		require.NoError(t, err)
		require.NoError(t, Save(&second, loaded))

		require.Equal(t, first.String(), second.String())
	})

	t.Run("files", func(t *testing.T) {
		original := populated(3)
		path := filepath.Join(t.TempDir(), "nested", "q.csv")

		require.NoError(t, SaveFile(path, original))
		loaded, err := LoadFile(path)
		require.NoError(t, err)
		require.Equal(t, original.Len(), loaded.Len())
	})

	t.Run("saving twice replaces the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "q.csv")
		require.NoError(t, SaveFile(path, populated(4)))
		smaller := policy.NewTable()
		smaller.Set(game.StateKey{RollsLeft: 3}, game.NewRollAction(), 1)
		require.NoError(t, SaveFile(path, smaller))

		loaded, err := LoadFile(path)
		require.NoError(t, err)
		require.Equal(t, 1, loaded.Len())
	})

	t.Run("unwritable path", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		require.NoError(t, os.WriteFile(blocker, nil, 0644))
		require.Error(t, SaveFile(filepath.Join(blocker, "q.csv"), populated(5)))
	})

	t.Run("empty table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Save(&buf, policy.NewTable()))
		loaded, err := Load(&buf)
		require.NoError(t, err)
		require.Zero(t, loaded.Len())
	})
}

func TestSaveFormat(t *testing.T) {
	t.Run("writes one readable row per entry", func(t *testing.T) {
		table := policy.NewTable()
		key := game.StateKey{
			Table:     game.FacesOf([]int{3, 1}),
			Held:      game.FacesOf([]int{6, 6, 6}),
			RollsLeft: 1,
			Open:      1<<game.Sixes | 1<<game.Chance,
		}
		table.Set(key, game.NewScoreAction(game.Sixes), 18.5)

		var buf bytes.Buffer
		require.NoError(t, Save(&buf, table))
		require.Equal(t,
			"table,held,rolls_left,open,action,payload,value\n"+
				"1 3,6 6 6,1,sixes|chance,score,sixes,18.5\n",
			buf.String())
	})
}

func TestLoadRejectsMalformedRows(t *testing.T) {
	const head = "table,held,rolls_left,open,action,payload,value\n"

	for _, tt := range []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"wrong header", "a,b,c\n"},
		{"too few fields", head + "1 2,,3,,roll\n"},
		{"bad die", head + "1 9,,2,,roll,,1\n"},
		{"too many dice", head + "1 2 3,4 5 6,2,,roll,,1\n"},
		{"bad rolls left", head + "1 2,,4,,roll,,1\n"},
		{"bad category", head + "1 2,,2,bonus,roll,,1\n"},
		{"repeated open category", head + "1 2,,2,sixes|chance|sixes,roll,,1\n"},
		{"bad action", head + "1 2,,2,,pass,,1\n"},
		{"roll with payload", head + "1 2,,2,,roll,1,1\n"},
		{"bad score payload", head + "1 2,,2,,score,bonus,1\n"},
		{"bad value", head + "1 2,,2,,roll,,abc\n"},
		{"nan value", head + "1 2,,2,,roll,,NaN\n"},
		{"duplicate entry", head + "1 2,,2,,roll,,1\n1 2,,2,,roll,,2\n"},
		{"bad row after good rows", head + "1 2,,2,,roll,,1\n1 2,,2,,hold,2,1\n1 2,,2,,score,chance\n"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Load(strings.NewReader(tt.input))
			require.ErrorIs(t, err, ErrMalformedRow)
			require.Nil(t, table)
		})
	}

	t.Run("reports the line", func(t *testing.T) {
		_, err := Load(strings.NewReader(head + "1 2,,2,,roll,,1\n1 2,,2,,roll,,x\n"))
		require.ErrorContains(t, err, "line 3")
	})
}
