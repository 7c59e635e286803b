package domain

// City is a destination in the explore catalogue.
type City struct {
	ID      CityID
	Name    string
	Country string

	// CostIndex is a relative cost-of-living score (1 cheap .. 5 expensive); nil means unknown.
	CostIndex *int
	ImageURL  *string

	Latitude  *float64
	Longitude *float64
}
