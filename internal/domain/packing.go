package domain

import "time"

type PackingItem struct {
	ID     PackingItemID
	TripID TripID

	Name     string
	Category string
	Quantity int
	Packed   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PackingProgress summarizes how much of a packing list is done.
type PackingProgress struct {
	Packed int
	Total  int
}
