package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMove(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		from, to int
		want     []int
		moved    bool
	}{
		{name: "last to first", from: 2, to: 0, want: []int{2, 0, 1}, moved: true},
		{name: "first to last", from: 0, to: 2, want: []int{1, 2, 0}, moved: true},
		{name: "adjacent", from: 1, to: 2, want: []int{0, 2, 1}, moved: true},
		{name: "same index", from: 1, to: 1, want: []int{0, 1, 2}},
		{name: "from out of range", from: 3, to: 0, want: []int{0, 1, 2}},
		{name: "negative to", from: 0, to: -1, want: []int{0, 1, 2}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			items := []int{0, 1, 2}
			assert.Equal(t, tc.moved, Move(items, tc.from, tc.to))
			assert.Equal(t, tc.want, items)
		})
	}
}

func TestClamp(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Clamp(-4, 3))
	assert.Equal(t, 2, Clamp(9, 3))
	assert.Equal(t, 1, Clamp(1, 3))
	assert.Equal(t, 0, Clamp(5, 0))
}
