// Package itinerary holds the in-memory Itinerary Model: ordered stop and activity
// collections, the list-move reorder engine, and the derived budget summary.
//
// Everything here is pure: no I/O, no clocks, no locking. Callers own persistence
// and serialization of concurrent edits.
package itinerary

// Record is an element of an ordered collection. WithPosition returns a copy of the
// record carrying the given zero-based position.
type Record[ID comparable, T any] interface {
	RecordID() ID
	WithPosition(int) T
}

// Placement pairs a record id with its position. It is the unit persisted after a reorder.
type Placement[ID comparable] struct {
	ID       ID
	Position int
}

// Sequence is an ordered collection whose positions are always the dense range [0, Len()-1].
type Sequence[ID comparable, T Record[ID, T]] struct {
	items []T
}

// NewSequence builds a sequence in the given order and renumbers positions from zero.
func NewSequence[ID comparable, T Record[ID, T]](items ...T) *Sequence[ID, T] {
	s := &Sequence[ID, T]{items: append([]T(nil), items...)}
	s.renumber(0)
	return s
}

func (s *Sequence[ID, T]) Len() int { return len(s.items) }

// Items returns a copy of the records in order.
func (s *Sequence[ID, T]) Items() []T {
	return append([]T(nil), s.items...)
}

func (s *Sequence[ID, T]) IndexOf(id ID) (int, bool) {
	for i, it := range s.items {
		if it.RecordID() == id {
			return i, true
		}
	}
	return -1, false
}

func (s *Sequence[ID, T]) Get(id ID) (T, bool) {
	i, ok := s.IndexOf(id)
	if !ok {
		var zero T
		return zero, false
	}
	return s.items[i], true
}

// Replace swaps in item for the record with the same id, keeping its position.
func (s *Sequence[ID, T]) Replace(item T) (T, bool) {
	i, ok := s.IndexOf(item.RecordID())
	if !ok {
		var zero T
		return zero, false
	}
	s.items[i] = item.WithPosition(i)
	return s.items[i], true
}

// Append places item after the last record and returns it with its assigned position.
func (s *Sequence[ID, T]) Append(item T) T {
	item = item.WithPosition(len(s.items))
	s.items = append(s.items, item)
	return item
}

// Remove deletes the record with the given id and closes the gap.
// It reports false (and changes nothing) when the id is unknown.
func (s *Sequence[ID, T]) Remove(id ID) bool {
	i, ok := s.IndexOf(id)
	if !ok {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.renumber(i)
	return true
}

// Reorder moves the record to newIndex, clamped to [0, Len()-1].
// It reports false when the id is unknown or the clamped index equals the current one.
func (s *Sequence[ID, T]) Reorder(id ID, newIndex int) bool {
	from, ok := s.IndexOf(id)
	if !ok {
		return false
	}
	return s.Move(from, Clamp(newIndex, len(s.items)))
}

// Move applies a single list move from one index to another.
// Out-of-range indices are discarded without mutation.
func (s *Sequence[ID, T]) Move(from, to int) bool {
	if !Move(s.items, from, to) {
		return false
	}
	lo, hi := from, to
	if lo > hi {
		lo, hi = hi, lo
	}
	for i := lo; i <= hi; i++ {
		s.items[i] = s.items[i].WithPosition(i)
	}
	return true
}

// Drop resolves a drag gesture that started on active and ended over over.
// A nil over means the gesture did not end on a valid target and is discarded.
func (s *Sequence[ID, T]) Drop(active ID, over *ID) bool {
	if over == nil || *over == active {
		return false
	}
	from, ok := s.IndexOf(active)
	if !ok {
		return false
	}
	to, ok := s.IndexOf(*over)
	if !ok {
		return false
	}
	return s.Move(from, to)
}

// Placements returns the (id, position) pairs in order.
func (s *Sequence[ID, T]) Placements() []Placement[ID] {
	out := make([]Placement[ID], len(s.items))
	for i, it := range s.items {
		out[i] = Placement[ID]{ID: it.RecordID(), Position: i}
	}
	return out
}

func (s *Sequence[ID, T]) renumber(from int) {
	for i := from; i < len(s.items); i++ {
		s.items[i] = s.items[i].WithPosition(i)
	}
}
