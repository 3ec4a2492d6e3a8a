package policy

import (
	"math"
	"sync"

	"yahtzee/game"
)

const numShards = 64

// Table is the learned value of every visited (state, action) pair. It is
// safe for concurrent use: each shard guards its own rows, so writers only
// contend when their keys hash to the same shard.
type Table struct {
	shards [numShards]shard
}

type shard struct {
	sync.RWMutex
	rows map[game.StateKey]map[game.Action]float64
}

func NewTable() *Table {
	t := &Table{}
	for i := range t.shards {
		t.shards[i].rows = make(map[game.StateKey]map[game.Action]float64)
	}
	return t
}

func (t *Table) shard(key game.StateKey) *shard {
	return &t.shards[uint64(key.Hash())%numShards]
}

func (t *Table) Get(key game.StateKey, action game.Action) (float64, bool) {
	s := t.shard(key)
	s.RLock()
	defer s.RUnlock()

	v, ok := s.rows[key][action]
	return v, ok
}

func (t *Table) Set(key game.StateKey, action game.Action, value float64) {
	s := t.shard(key)
	s.Lock()
	defer s.Unlock()

	s.row(key)[action] = value
}

// row returns the row for key, creating it. Callers hold the write lock.
func (s *shard) row(key game.StateKey) map[game.Action]float64 {
	row, ok := s.rows[key]
	if !ok {
		row = make(map[game.Action]float64)
		s.rows[key] = row
	}
	return row
}

// Row returns a copy of the values stored for key.
func (t *Table) Row(key game.StateKey) map[game.Action]float64 {
	s := t.shard(key)
	s.RLock()
	defer s.RUnlock()

	row := make(map[game.Action]float64, len(s.rows[key]))
	for a, v := range s.rows[key] {
		row[a] = v
	}
	return row
}

// Ensure adds each of defaults whose kind has no entry yet in the row for key
// and returns a copy of the resulting row.
func (t *Table) Ensure(key game.StateKey, defaults map[game.Action]float64) map[game.Action]float64 {
	s := t.shard(key)
	s.Lock()
	defer s.Unlock()

	row := s.row(key)
	var seen game.ActionSet
	for a := range row {
		seen = seen.Add(a.Kind)
	}
	for a, v := range defaults {
		if !seen.Has(a.Kind) {
			row[a] = v
		}
	}

	out := make(map[game.Action]float64, len(row))
	for a, v := range row {
		out[a] = v
	}
	return out
}

// Max returns the highest value of a concrete action stored for key, or 0
// when there is none. Placeholder entries are not actions and are skipped.
func (t *Table) Max(key game.StateKey) float64 {
	s := t.shard(key)
	s.RLock()
	defer s.RUnlock()

	best, found := math.Inf(-1), false
	for a, v := range s.rows[key] {
		if a.Placeholder() {
			continue
		}
		best, found = math.Max(best, v), true
	}
	if !found {
		return 0
	}
	return best
}

// Update replaces the value of (key, action) with fn of its current value,
// starting from initial when absent. The placeholder of the action's kind is
// dropped once a concrete action of that kind has a value. The read and the
// write happen under one lock so concurrent updates are never lost.
func (t *Table) Update(key game.StateKey, action game.Action, initial float64, fn func(float64) float64) float64 {
	s := t.shard(key)
	s.Lock()
	defer s.Unlock()

	row := s.row(key)
	v, ok := row[action]
	if !ok {
		v = initial
	}
	v = fn(v)
	row[action] = v
	if !action.Placeholder() {
		if placeholder := game.KindAction(action.Kind); placeholder != action {
			delete(row, placeholder)
		}
	}
	return v
}

// Len returns the number of stored (state, action) pairs.
func (t *Table) Len() int {
	n := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.RLock()
		for _, row := range s.rows {
			n += len(row)
		}
		s.RUnlock()
	}
	return n
}

// Keys returns every state with a stored row.
func (t *Table) Keys() []game.StateKey {
	keys := []game.StateKey{}
	for i := range t.shards {
		s := &t.shards[i]
		s.RLock()
		for k := range s.rows {
			keys = append(keys, k)
		}
		s.RUnlock()
	}
	return keys
}

// MismatchedKeys counts the rows of t whose key shape differs from the one a
// learner builds with or without open categories. Such rows are never looked
// up. A nil table has none.
func MismatchedKeys(t *Table, withOpen bool) int {
	if t == nil {
		return 0
	}
	n := 0
	for _, key := range t.Keys() {
		if (key.Open != 0) != withOpen {
			n++
		}
	}
	return n
}

// Range calls fn for every stored pair until fn returns false. Each shard is
// read locked while it is visited, so fn must not write to the table.
func (t *Table) Range(fn func(key game.StateKey, action game.Action, value float64) bool) {
	for i := range t.shards {
		s := &t.shards[i]
		s.RLock()
		for k, row := range s.rows {
			for a, v := range row {
				if !fn(k, a, v) {
					s.RUnlock()
					return
				}
			}
		}
		s.RUnlock()
	}
}
