package domain

// SubjectID is the authenticated subject extracted from JWT claims (typically "sub").
// We model it as an opaque identifier: its format is controlled by the IdP.
type SubjectID string

// TravelerID is an internal identifier for a traveler profile.
type TravelerID string

// TripID is an internal identifier for a trip record.
type TripID string

// StopID identifies a city stop within a trip.
type StopID string

// ActivityID identifies a scheduled activity within a stop.
type ActivityID string

// CityID identifies a destination in the city catalogue.
type CityID string

// PackingItemID identifies a packing list entry.
type PackingItemID string
