package utils

func FindIndex[T comparable](slice []T, item T) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}

// RemoveAt returns slice without the element at index i, reusing its backing
// array.
func RemoveAt[T any](slice []T, i int) []T {
	return append(slice[:i], slice[i+1:]...)
}

// Shards splits n items into at most parts contiguous [start, end) ranges
// whose sizes differ by at most one.
func Shards(n, parts int) [][2]int {
	if parts < 1 {
		parts = 1
	}
	if parts > n {
		parts = n
	}
	ranges := make([][2]int, 0, parts)
	start := 0
	for p := 0; p < parts; p++ {
		size := n / parts
		if p < n%parts {
			size++
		}
		ranges = append(ranges, [2]int{start, start + size})
		start += size
	}
	return ranges
}
