package itinerary

import (
	"github.com/shopspring/decimal"

	"github.com/globetrotter/trip-planner-api/internal/domain"
)

// Default budget constants. They are deployment settings, not per-traveler inputs.
var (
	DefaultLimit       = decimal.NewFromInt(2000)
	DefaultPerLegRate  = decimal.NewFromInt(5)
	DefaultNightlyRate = decimal.NewFromInt(150)
	hundred            = decimal.NewFromInt(100)
)

// TransportEstimator derives a transport cost from the per-stop breakdown.
type TransportEstimator interface {
	EstimateTransport(stops []StopBudget) decimal.Decimal
}

// PerLegTransport charges Rate for every hop between consecutive activities of a stop:
// a stop with n > 0 activities contributes n-1 legs.
type PerLegTransport struct {
	Rate decimal.Decimal
}

func (p PerLegTransport) EstimateTransport(stops []StopBudget) decimal.Decimal {
	legs := 0
	for _, s := range stops {
		if s.ActivityCount > 0 {
			legs += s.ActivityCount - 1
		}
	}
	return p.Rate.Mul(decimal.NewFromInt(int64(legs)))
}

// Policy is the set of constants a budget summary is computed against.
type Policy struct {
	Limit decimal.Decimal

	// NightlyRate is charged once per stop.
	NightlyRate decimal.Decimal

	// Transport may be nil, in which case no transport cost is estimated.
	Transport TransportEstimator
}

func DefaultPolicy() Policy {
	return Policy{
		Limit:       DefaultLimit,
		NightlyRate: DefaultNightlyRate,
		Transport:   PerLegTransport{Rate: DefaultPerLegRate},
	}
}

type StopBudget struct {
	StopID        domain.StopID
	City          string
	ActivityCount int
	Subtotal      decimal.Decimal
}

type Category string

const (
	CategoryActivities    Category = "activities"
	CategoryTransport     Category = "transport"
	CategoryAccommodation Category = "accommodation"
)

type CategoryAmount struct {
	Category Category
	Amount   decimal.Decimal
}

// Summary is the derived budget of an itinerary. It is never stored.
type Summary struct {
	Stops []StopBudget

	ActivityTotal         decimal.Decimal
	TransportEstimate     decimal.Decimal
	AccommodationEstimate decimal.Decimal
	GrandTotal            decimal.Decimal

	Limit      decimal.Decimal
	OverBudget bool
	AmountOver decimal.Decimal
	Remaining  decimal.Decimal

	// PercentUsed is GrandTotal/Limit*100 rounded to two places; 0 when Limit is not positive.
	PercentUsed float64

	Categories []CategoryAmount
}

// Summarize computes the budget of it under p.
func Summarize(it *Itinerary, p Policy) Summary {
	stops := it.Stops()
	s := Summary{
		Stops:         make([]StopBudget, 0, len(stops)),
		ActivityTotal: decimal.Zero,
		Limit:         p.Limit,
		AmountOver:    decimal.Zero,
		Remaining:     decimal.Zero,
	}

	for _, st := range stops {
		sb := StopBudget{StopID: st.ID, City: st.City, Subtotal: decimal.Zero}
		for _, a := range it.Activities(st.ID) {
			sb.Subtotal = sb.Subtotal.Add(a.Cost)
			sb.ActivityCount++
		}
		s.ActivityTotal = s.ActivityTotal.Add(sb.Subtotal)
		s.Stops = append(s.Stops, sb)
	}

	s.TransportEstimate = decimal.Zero
	if p.Transport != nil {
		s.TransportEstimate = p.Transport.EstimateTransport(s.Stops)
	}
	s.AccommodationEstimate = p.NightlyRate.Mul(decimal.NewFromInt(int64(len(stops))))
	s.GrandTotal = s.ActivityTotal.Add(s.TransportEstimate).Add(s.AccommodationEstimate)

	if s.GrandTotal.GreaterThan(p.Limit) {
		s.OverBudget = true
		s.AmountOver = s.GrandTotal.Sub(p.Limit)
	} else {
		s.Remaining = p.Limit.Sub(s.GrandTotal)
	}
	if p.Limit.IsPositive() {
		s.PercentUsed = s.GrandTotal.Div(p.Limit).Mul(hundred).Round(2).InexactFloat64()
	}

	s.Categories = []CategoryAmount{
		{Category: CategoryActivities, Amount: s.ActivityTotal},
		{Category: CategoryTransport, Amount: s.TransportEstimate},
		{Category: CategoryAccommodation, Amount: s.AccommodationEstimate},
	}
	return s
}
