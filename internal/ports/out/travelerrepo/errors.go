package travelerrepo

import "errors"

var (
	// ErrNotFound indicates the requested traveler does not exist.
	ErrNotFound = errors.New("traveler not found")

	// ErrSubjectAlreadyBound indicates a traveler already exists for the provided subject.
	ErrSubjectAlreadyBound = errors.New("traveler subject already bound")

	// ErrAlreadyExists indicates a traveler already exists with the provided ID.
	ErrAlreadyExists = errors.New("traveler already exists")
)
