package game

import "fmt"

// Category is one of the thirteen boxes on a scorecard.
type Category int

const (
	Ones Category = iota
	Twos
	Threes
	Fours
	Fives
	Sixes
	ThreeOfAKind
	FourOfAKind
	FullHouse
	SmallStraight
	LargeStraight
	Yahtzee
	Chance

	NumCategories = 13

	// NoCategory is the payload of actions that do not name a category.
	NoCategory Category = -1
)

var categoryNames = [NumCategories]string{
	"ones",
	"twos",
	"threes",
	"fours",
	"fives",
	"sixes",
	"three_of_a_kind",
	"four_of_a_kind",
	"full_house",
	"small_straight",
	"large_straight",
	"yahtzee",
	"chance",
}

func (c Category) Valid() bool {
	return c >= Ones && c <= Chance
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// Face returns the die face counted by an upper section category, or 0.
func (c Category) Face() int {
	if c >= Ones && c <= Sixes {
		return int(c) + 1
	}
	return 0
}

func ParseCategory(name string) (Category, error) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return NoCategory, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// Categories lists every category in enumeration order.
func Categories() []Category {
	categories := make([]Category, NumCategories)
	for i := range categories {
		categories[i] = Category(i)
	}
	return categories
}
