package domain

import "time"

// Traveler is the domain representation of a traveler profile bound to an authenticated subject.
type Traveler struct {
	ID      TravelerID
	Subject SubjectID

	DisplayName string
	Email       string
	AvatarURL   *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
