package itinerary

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globetrotter/trip-planner-api/internal/domain"
)

func stopsSeq(ids ...string) *StopSequence {
	stops := make([]domain.Stop, len(ids))
	for i, id := range ids {
		stops[i] = domain.Stop{ID: domain.StopID(id), City: id}
	}
	return NewSequence[domain.StopID, domain.Stop](stops...)
}

func ids(seq *StopSequence) []string {
	out := make([]string, 0, seq.Len())
	for _, s := range seq.Items() {
		out = append(out, string(s.ID))
	}
	return out
}

func requireDense(t *testing.T, seq *StopSequence) {
	t.Helper()
	for i, s := range seq.Items() {
		require.Equalf(t, i, s.Position, "stop %s", s.ID)
	}
}

func TestSequence_AppendAssignsNextPosition(t *testing.T) {
	t.Parallel()

	seq := stopsSeq()
	a := seq.Append(domain.Stop{ID: "a", Position: 7})
	b := seq.Append(domain.Stop{ID: "b"})

	assert.Equal(t, 0, a.Position)
	assert.Equal(t, 1, b.Position)
	requireDense(t, seq)
}

func TestSequence_RemoveClosesGap(t *testing.T) {
	t.Parallel()

	seq := stopsSeq("a", "b", "c")
	require.True(t, seq.Remove("a"))
	assert.Equal(t, []string{"b", "c"}, ids(seq))
	requireDense(t, seq)

	assert.False(t, seq.Remove("missing"))
	assert.Equal(t, []string{"b", "c"}, ids(seq))
}

func TestSequence_ReorderClampsIndex(t *testing.T) {
	t.Parallel()

	seq := stopsSeq("a", "b", "c")
	require.True(t, seq.Reorder("a", 99))
	assert.Equal(t, []string{"b", "c", "a"}, ids(seq))

	require.True(t, seq.Reorder("a", -3))
	assert.Equal(t, []string{"a", "b", "c"}, ids(seq))

	assert.False(t, seq.Reorder("a", 0))
	assert.False(t, seq.Reorder("zzz", 1))
	requireDense(t, seq)
}

func TestSequence_ReorderComposes(t *testing.T) {
	t.Parallel()

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			twice := stopsSeq("a", "b", "c", "d")
			twice.Reorder("b", i)
			twice.Reorder("b", j)

			once := stopsSeq("a", "b", "c", "d")
			once.Reorder("b", j)

			assert.Equalf(t, ids(once), ids(twice), "reorder b to %d then %d", i, j)
		}
	}
}

func TestSequence_Drop(t *testing.T) {
	t.Parallel()

	seq := stopsSeq("a", "b", "c")

	assert.False(t, seq.Drop("a", nil), "gesture outside a target")
	missing := domain.StopID("nope")
	assert.False(t, seq.Drop("a", &missing))
	self := domain.StopID("a")
	assert.False(t, seq.Drop("a", &self))
	assert.Equal(t, []string{"a", "b", "c"}, ids(seq))

	over := domain.StopID("a")
	require.True(t, seq.Drop("c", &over))
	assert.Equal(t, []string{"c", "a", "b"}, ids(seq))
	requireDense(t, seq)
}

func TestSequence_Placements(t *testing.T) {
	t.Parallel()

	seq := stopsSeq("a", "b")
	seq.Move(1, 0)
	assert.Equal(t, []Placement[domain.StopID]{{ID: "b", Position: 0}, {ID: "a", Position: 1}}, seq.Placements())
}

func TestSequence_ItemsAreCopies(t *testing.T) {
	t.Parallel()

	seq := stopsSeq("a")
	items := seq.Items()
	items[0].City = "mutated"

	got, ok := seq.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", got.City)
}

func TestSequence_PositionsStayDenseUnderRandomEdits(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	seq := stopsSeq()
	next := 0
	for step := 0; step < 500; step++ {
		switch op := rng.Intn(4); {
		case op == 0 || seq.Len() == 0:
			seq.Append(domain.Stop{ID: domain.StopID(fmt.Sprintf("s%d", next))})
			next++
		case op == 1:
			victim := seq.Items()[rng.Intn(seq.Len())].ID
			seq.Remove(victim)
		case op == 2:
			target := seq.Items()[rng.Intn(seq.Len())].ID
			seq.Reorder(target, rng.Intn(seq.Len()+4)-2)
		default:
			seq.Move(rng.Intn(seq.Len()+1), rng.Intn(seq.Len()+1))
		}
		requireDense(t, seq)
	}
}
