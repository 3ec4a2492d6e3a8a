// Package tablefile stores a learned value table as CSV, one row per
// (state, action) pair.
package tablefile

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"yahtzee/game"
	"yahtzee/policy"
)

var ErrMalformedRow = errors.New("malformed table row")

var header = []string{"table", "held", "rolls_left", "open", "action", "payload", "value"}

type entry struct {
	key    game.StateKey
	action game.Action
	value  float64
}

// Save writes every entry of t in a stable order.
func Save(w io.Writer, t *policy.Table) error {
	entries := []entry{}
	t.Range(func(key game.StateKey, action game.Action, value float64) bool {
		entries = append(entries, entry{key: key, action: action, value: value})
		return true
	})
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, encode(e))
	}
	slices.SortFunc(rows, func(a, b []string) int {
		return slices.Compare(a, b)
	})

	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "failed to write table header")
	}
	if err := writer.WriteAll(rows); err != nil {
		return errors.Wrap(err, "failed to write table rows")
	}
	return nil
}

func encode(e entry) []string {
	payload := ""
	switch e.action.Kind {
	case game.HoldAction, game.ReleaseAction:
		payload = e.action.Dice.String()
	case game.ScoreAction:
		if e.action.Category != game.NoCategory {
			payload = e.action.Category.String()
		}
	}

	open := []string{}
	for _, c := range e.key.OpenCategories() {
		open = append(open, c.String())
	}

	return []string{
		e.key.Table.String(),
		e.key.Held.String(),
		strconv.Itoa(e.key.RollsLeft),
		strings.Join(open, "|"),
		e.action.Kind.String(),
		payload,
		strconv.FormatFloat(e.value, 'g', -1, 64),
	}
}

// Load reads a table written by Save. Any bad row rejects the whole file.
func Load(r io.Reader) (*policy.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedRow, "failed to read csv: %v", err)
	}
	if len(records) == 0 || !slices.Equal(records[0], header) {
		return nil, errors.Wrap(ErrMalformedRow, "line 1: unexpected header")
	}

	t := policy.NewTable()
	for i, record := range records[1:] {
		line := i + 2
		e, err := decode(record)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedRow, "line %d: %v", line, err)
		}
		if _, ok := t.Get(e.key, e.action); ok {
			return nil, errors.Wrapf(ErrMalformedRow, "line %d: duplicate entry", line)
		}
		t.Set(e.key, e.action, e.value)
	}
	return t, nil
}

func decode(record []string) (entry, error) {
	if len(record) != len(header) {
		return entry{}, errors.Errorf("expected %d fields, got %d", len(header), len(record))
	}

	table, err := game.ParseFaces(record[0])
	if err != nil {
		return entry{}, errors.Wrap(err, "table dice")
	}
	held, err := game.ParseFaces(record[1])
	if err != nil {
		return entry{}, errors.Wrap(err, "held dice")
	}
	if table.Len()+held.Len() > game.NumDice {
		return entry{}, errors.Errorf("%d dice in play", table.Len()+held.Len())
	}
	rollsLeft, err := strconv.Atoi(record[2])
	if err != nil || rollsLeft < 0 || rollsLeft > game.MaxRolls {
		return entry{}, errors.Errorf("bad rolls left %q", record[2])
	}

	var open uint16
	if record[3] != "" {
		for _, name := range strings.Split(record[3], "|") {
			c, err := game.ParseCategory(name)
			if err != nil {
				return entry{}, err
			}
			if open&(1<<c) != 0 {
				return entry{}, errors.Errorf("open category %s listed twice", c)
			}
			open |= 1 << c
		}
	}

	action, err := decodeAction(record[4], record[5])
	if err != nil {
		return entry{}, err
	}

	value, err := strconv.ParseFloat(record[6], 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return entry{}, errors.Errorf("bad value %q", record[6])
	}

	return entry{
		key: game.StateKey{
			Table:     table,
			Held:      held,
			RollsLeft: rollsLeft,
			Open:      open,
		},
		action: action,
		value:  value,
	}, nil
}

func decodeAction(kind, payload string) (game.Action, error) {
	k, err := game.ParseActionKind(kind)
	if err != nil {
		return game.Action{}, err
	}

	switch k {
	case game.RollAction:
		if payload != "" {
			return game.Action{}, errors.Errorf("roll takes no payload, got %q", payload)
		}
		return game.NewRollAction(), nil
	case game.HoldAction, game.ReleaseAction:
		dice, err := game.ParseFaces(payload)
		if err != nil {
			return game.Action{}, errors.Wrap(err, "payload")
		}
		if k == game.HoldAction {
			return game.NewHoldAction(dice), nil
		}
		return game.NewReleaseAction(dice), nil
	default:
		if payload == "" {
			return game.KindAction(game.ScoreAction), nil
		}
		c, err := game.ParseCategory(payload)
		if err != nil {
			return game.Action{}, err
		}
		return game.NewScoreAction(c), nil
	}
}

// SaveFile writes t to path, creating parent directories.
func SaveFile(path string, t *policy.Table) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "failed to create table directory")
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create table file")
	}

	if err := Save(f, t); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return errors.Wrap(err, "failed to sync table file")
	}
	return errors.Wrap(f.Close(), "failed to close table file")
}

func LoadFile(path string) (*policy.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open table file")
	}
	defer f.Close()

	return Load(f)
}
