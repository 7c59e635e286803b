package itinerary

// Move relocates items[from] to index to, shifting the elements in between by one.
// It is equivalent to removing the element at from and inserting it at to in the
// shortened slice; untouched elements keep their relative order.
//
// Move reports false and leaves items unchanged when from == to or either index is
// out of range.
func Move[T any](items []T, from, to int) bool {
	n := len(items)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return false
	}
	v := items[from]
	if from < to {
		copy(items[from:to], items[from+1:to+1])
	} else {
		copy(items[to+1:from+1], items[to:from])
	}
	items[to] = v
	return true
}

// Clamp bounds i to [0, n-1]. For n <= 0 it returns 0.
func Clamp(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
