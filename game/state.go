package game

import (
	"encoding/binary"
	"hash/fnv"
	"slices"
)

type Phase int

const (
	InitialPhase Phase = iota
	RollingPhase
	HoldingPhase
	ScoringPhase
	EndOfTurnPhase
	FinalPhase
)

var phaseNames = []string{"initial", "rolling", "holding", "scoring", "end_of_turn", "final"}

func (p Phase) String() string {
	if p < InitialPhase || p > FinalPhase {
		return "unknown"
	}
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Scorecard holds one score per category, Unscored until written.
type Scorecard [NumCategories]int

func NewScorecard() Scorecard {
	var s Scorecard
	for i := range s {
		s[i] = Unscored
	}
	return s
}

func (s Scorecard) Scored(c Category) bool {
	return c.Valid() && s[c] != Unscored
}

func (s Scorecard) Full() bool {
	for _, v := range s {
		if v == Unscored {
			return false
		}
	}
	return true
}

// Open lists the unscored categories in enumeration order.
func (s Scorecard) Open() []Category {
	open := []Category{}
	for i, v := range s {
		if v == Unscored {
			open = append(open, Category(i))
		}
	}
	return open
}

// OpenMask has bit c set for every unscored category c.
func (s Scorecard) OpenMask() uint16 {
	var m uint16
	for i, v := range s {
		if v == Unscored {
			m |= 1 << i
		}
	}
	return m
}

func (s Scorecard) Total() int {
	total := 0
	for _, v := range s {
		if v != Unscored {
			total += v
		}
	}
	return total
}

// State is the mutable record of a game in progress.
type State struct {
	Player     int                   // Active player index, 0 or 1
	RollsLeft  int                   // Re-rolls remaining this turn
	Table      []int                 // Dice on the table, rolled by the next roll
	Held       []int                 // Dice locked aside for the turn
	Scorecards [NumPlayers]Scorecard // Per player
	Totals     [NumPlayers]int       // Cumulative score per player
	Phase      Phase
}

func NewState() *State {
	s := &State{
		Scorecards: [NumPlayers]Scorecard{NewScorecard(), NewScorecard()},
	}
	s.resetTurn()
	return s
}

// resetTurn puts a fresh set of dice on the table for the next turn.
func (s *State) resetTurn() {
	s.RollsLeft = MaxRolls
	s.Held = []int{}
	s.Table = []int{1, 2, 3, 4, 5}
	s.Phase = InitialPhase
}

func (s *State) Copy() *State {
	c := *s
	c.Table = slices.Clone(s.Table)
	c.Held = slices.Clone(s.Held)
	return &c
}

// Dice returns on-table and held dice combined.
func (s *State) Dice() []int {
	dice := make([]int, 0, len(s.Table)+len(s.Held))
	dice = append(dice, s.Table...)
	return append(dice, s.Held...)
}

func (s *State) Scorecard() Scorecard {
	return s.Scorecards[s.Player]
}

func (s *State) Opponent() int {
	return 1 - s.Player
}

// StateKey is the order independent summary of a turn used to index learned
// values. Open is zero unless open categories are part of the key.
type StateKey struct {
	Table     Faces
	Held      Faces
	RollsLeft int
	Open      uint16
}

func (s *State) Key(withOpen bool) StateKey {
	k := StateKey{
		Table:     FacesOf(s.Table),
		Held:      FacesOf(s.Held),
		RollsLeft: s.RollsLeft,
	}
	if withOpen {
		k.Open = s.Scorecard().OpenMask()
	}
	return k
}

func (k StateKey) Hash() StateHash {
	hasher := fnv.New64a()

	hasher.Write(k.Table[:])
	hasher.Write(k.Held[:])
	binary.Write(hasher, binary.LittleEndian, int64(k.RollsLeft))
	binary.Write(hasher, binary.LittleEndian, k.Open)

	return StateHash(hasher.Sum64())
}

// OpenCategories decodes Open back into categories.
func (k StateKey) OpenCategories() []Category {
	open := []Category{}
	for c := Ones; c <= Chance; c++ {
		if k.Open&(1<<c) != 0 {
			open = append(open, c)
		}
	}
	return open
}
