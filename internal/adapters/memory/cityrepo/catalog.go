package cityrepo

import "github.com/globetrotter/trip-planner-api/internal/domain"

// DefaultCatalog is the stock destination set. The Postgres seed migration inserts the same rows.
func DefaultCatalog() []domain.City {
	return []domain.City{
		city("0b6c3f8e-5a1d-4c2e-9f10-000000000001", "Paris", "France", 4, 48.8566, 2.3522),
		city("0b6c3f8e-5a1d-4c2e-9f10-000000000002", "Rome", "Italy", 3, 41.9028, 12.4964),
		city("0b6c3f8e-5a1d-4c2e-9f10-000000000003", "Barcelona", "Spain", 3, 41.3874, 2.1686),
		city("0b6c3f8e-5a1d-4c2e-9f10-000000000004", "Amsterdam", "Netherlands", 4, 52.3676, 4.9041),
		city("0b6c3f8e-5a1d-4c2e-9f10-000000000005", "Lisbon", "Portugal", 2, 38.7223, -9.1393),
		city("0b6c3f8e-5a1d-4c2e-9f10-000000000006", "Prague", "Czech Republic", 2, 50.0755, 14.4378),
		city("0b6c3f8e-5a1d-4c2e-9f10-000000000007", "Tokyo", "Japan", 4, 35.6762, 139.6503),
		city("0b6c3f8e-5a1d-4c2e-9f10-000000000008", "Kyoto", "Japan", 3, 35.0116, 135.7681),
		city("0b6c3f8e-5a1d-4c2e-9f10-000000000009", "Bangkok", "Thailand", 1, 13.7563, 100.5018),
		city("0b6c3f8e-5a1d-4c2e-9f10-00000000000a", "New York", "United States", 5, 40.7128, -74.0060),
		city("0b6c3f8e-5a1d-4c2e-9f10-00000000000b", "Mexico City", "Mexico", 2, 19.4326, -99.1332),
		city("0b6c3f8e-5a1d-4c2e-9f10-00000000000c", "Cape Town", "South Africa", 2, -33.9249, 18.4241),
	}
}

func city(id, name, country string, costIndex int, lat, lng float64) domain.City {
	return domain.City{
		ID:        domain.CityID(id),
		Name:      name,
		Country:   country,
		CostIndex: &costIndex,
		Latitude:  &lat,
		Longitude: &lng,
	}
}
