package game

import "fmt"

// ActionKind represents the type of action a player can perform.
type ActionKind int

const (
	RollAction ActionKind = iota
	HoldAction
	ReleaseAction
	ScoreAction

	numActionKinds = 4
)

var actionNames = [numActionKinds]string{"roll", "hold", "release", "score"}

func (k ActionKind) String() string {
	if k < RollAction || k > ScoreAction {
		return fmt.Sprintf("action(%d)", int(k))
	}
	return actionNames[k]
}

func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func ParseActionKind(name string) (ActionKind, error) {
	for i, n := range actionNames {
		if n == name {
			return ActionKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", name)
}

// Action is an action kind with its payload. Hold and release carry the dice
// moved, score carries the category. Actions are comparable values, so they
// can key maps directly.
type Action struct {
	Kind     ActionKind
	Dice     Faces
	Category Category
}

func NewRollAction() Action {
	return Action{Kind: RollAction, Category: NoCategory}
}

func NewHoldAction(dice Faces) Action {
	return Action{Kind: HoldAction, Dice: dice, Category: NoCategory}
}

func NewReleaseAction(dice Faces) Action {
	return Action{Kind: ReleaseAction, Dice: dice, Category: NoCategory}
}

func NewScoreAction(c Category) Action {
	return Action{Kind: ScoreAction, Category: c}
}

// KindAction stands for a kind before any payload has been chosen.
func KindAction(k ActionKind) Action {
	return Action{Kind: k, Category: NoCategory}
}

// Placeholder reports whether the action names a kind without a payload.
// A roll never has a payload and is not a placeholder.
func (a Action) Placeholder() bool {
	return a.Kind != RollAction && a.Dice.Len() == 0 && a.Category == NoCategory
}

func (a Action) String() string {
	switch a.Kind {
	case HoldAction, ReleaseAction:
		return fmt.Sprintf("%s[%s]", a.Kind, a.Dice)
	case ScoreAction:
		if a.Category == NoCategory {
			return a.Kind.String()
		}
		return fmt.Sprintf("%s[%s]", a.Kind, a.Category)
	default:
		return a.Kind.String()
	}
}

// ActionSet is a set of action kinds.
type ActionSet uint8

func NewActionSet(kinds ...ActionKind) ActionSet {
	var s ActionSet
	for _, k := range kinds {
		s = s.Add(k)
	}
	return s
}

func (s ActionSet) Add(k ActionKind) ActionSet {
	return s | 1<<k
}

func (s ActionSet) Remove(k ActionKind) ActionSet {
	return s &^ (1 << k)
}

func (s ActionSet) Has(k ActionKind) bool {
	return k >= RollAction && k <= ScoreAction && s&(1<<k) != 0
}

func (s ActionSet) Len() int {
	return len(s.Kinds())
}

// Kinds lists the members in enumeration order.
func (s ActionSet) Kinds() []ActionKind {
	kinds := []ActionKind{}
	for k := RollAction; k <= ScoreAction; k++ {
		if s.Has(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func (s ActionSet) String() string {
	return fmt.Sprint(s.Kinds())
}

// LegalActions returns the action kinds available to the active player.
// Payloads are chosen separately.
func LegalActions(s *State) ActionSet {
	switch s.Phase {
	case EndOfTurnPhase, FinalPhase:
		return 0
	}

	if s.RollsLeft == 0 {
		return NewActionSet(ScoreAction)
	}
	if s.RollsLeft == MaxRolls && len(s.Held) == 0 {
		return NewActionSet(RollAction)
	}

	legal := NewActionSet(RollAction, ScoreAction)
	if len(s.Table) > 0 && s.RollsLeft < MaxRolls {
		legal = legal.Add(HoldAction)
	}
	if len(s.Held) > 0 {
		legal = legal.Add(ReleaseAction)
	}
	return legal
}
