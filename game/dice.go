package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Faces is a dice multiset stored as a count per face, so two pools holding
// the same values in a different order are equal.
type Faces [NumFaces]uint8

// FacesOf counts dice values; values outside 1..6 are ignored.
func FacesOf(dice []int) Faces {
	var f Faces
	for _, d := range dice {
		if d >= 1 && d <= NumFaces {
			f[d-1]++
		}
	}
	return f
}

func (f Faces) Count(face int) int {
	if face < 1 || face > NumFaces {
		return 0
	}
	return int(f[face-1])
}

func (f Faces) Len() int {
	n := 0
	for _, c := range f {
		n += int(c)
	}
	return n
}

func (f Faces) Sum() int {
	sum := 0
	for i, c := range f {
		sum += (i + 1) * int(c)
	}
	return sum
}

// MaxCount returns the size of the largest group of equal faces.
func (f Faces) MaxCount() int {
	n := 0
	for _, c := range f {
		n = max(n, int(c))
	}
	return n
}

func (f Faces) Add(other Faces) Faces {
	for i := range f {
		f[i] += other[i]
	}
	return f
}

// Sub removes other from f, reporting false if other is not contained in f.
func (f Faces) Sub(other Faces) (Faces, bool) {
	if !f.Contains(other) {
		return f, false
	}
	for i := range f {
		f[i] -= other[i]
	}
	return f, true
}

func (f Faces) Contains(other Faces) bool {
	for i := range f {
		if other[i] > f[i] {
			return false
		}
	}
	return true
}

// Dice expands the multiset into a sorted slice.
func (f Faces) Dice() []int {
	dice := make([]int, 0, f.Len())
	for i, c := range f {
		for j := 0; j < int(c); j++ {
			dice = append(dice, i+1)
		}
	}
	return dice
}

// Subsets enumerates every distinct sub-multiset of f. The empty multiset
// comes first and f itself comes last.
func (f Faces) Subsets() []Faces {
	subsets := []Faces{{}}
	for i, c := range f {
		n := len(subsets)
		for k := 1; k <= int(c); k++ {
			for _, s := range subsets[:n] {
				s[i] = uint8(k)
				subsets = append(subsets, s)
			}
		}
	}
	return subsets
}

func (f Faces) String() string {
	dice := f.Dice()
	parts := make([]string, len(dice))
	for i, d := range dice {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, " ")
}

// ParseFaces reads the space separated form produced by String.
func ParseFaces(s string) (Faces, error) {
	var f Faces
	for _, field := range strings.Fields(s) {
		d, err := strconv.Atoi(field)
		if err != nil {
			return Faces{}, fmt.Errorf("failed to parse die %q: %w", field, err)
		}
		if d < 1 || d > NumFaces {
			return Faces{}, fmt.Errorf("die %d out of range", d)
		}
		f[d-1]++
	}
	if f.Len() > NumDice {
		return Faces{}, fmt.Errorf("too many dice: %d", f.Len())
	}
	return f, nil
}
