package game

var scorers = [NumCategories]func(Faces) int{
	Ones:          upper(1),
	Twos:          upper(2),
	Threes:        upper(3),
	Fours:         upper(4),
	Fives:         upper(5),
	Sixes:         upper(6),
	ThreeOfAKind:  ofAKind(3),
	FourOfAKind:   ofAKind(4),
	FullHouse:     fullHouse,
	SmallStraight: smallStraight,
	LargeStraight: largeStraight,
	Yahtzee:       yahtzee,
	Chance:        Faces.Sum,
}

// Score returns the points the dice would earn in a category.
func Score(c Category, dice []int) int {
	return ScoreFaces(c, FacesOf(dice))
}

func ScoreFaces(c Category, f Faces) int {
	if !c.Valid() {
		return 0
	}
	return scorers[c](f)
}

func upper(face int) func(Faces) int {
	return func(f Faces) int {
		return f.Count(face) * face
	}
}

func ofAKind(n int) func(Faces) int {
	return func(f Faces) int {
		if f.MaxCount() >= n {
			return f.Sum()
		}
		return 0
	}
}

func fullHouse(f Faces) int {
	pair, triple := false, false
	for _, c := range f {
		switch c {
		case 0:
		case 2:
			if pair {
				return 0
			}
			pair = true
		case 3:
			if triple {
				return 0
			}
			triple = true
		default:
			return 0
		}
	}
	if pair && triple {
		return 25
	}
	return 0
}

// mask has bit i set when face i+1 is present.
func mask(f Faces) uint8 {
	var m uint8
	for i, c := range f {
		if c > 0 {
			m |= 1 << i
		}
	}
	return m
}

func smallStraight(f Faces) int {
	m := mask(f)
	for _, run := range []uint8{0b001111, 0b011110, 0b111100} {
		if m&run == run {
			return 30
		}
	}
	return 0
}

func largeStraight(f Faces) int {
	m := mask(f)
	if m == 0b011111 || m == 0b111110 {
		return 40
	}
	return 0
}

func yahtzee(f Faces) int {
	if f.Len() == NumDice && f.MaxCount() == NumDice {
		return 50
	}
	return 0
}
