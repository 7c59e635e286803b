package itinerary

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/globetrotter/trip-planner-api/internal/domain"
)

// TimelineDay is one calendar day at one stop. A stop whose activities span several
// days yields one entry per day.
type TimelineDay struct {
	Date time.Time

	// DayNumber counts from 1 on tripStart. Days before the trip start get zero or less.
	DayNumber int

	StopID  domain.StopID
	City    string
	Country string

	Activities []domain.Activity
	Total      decimal.Decimal
}

// Timeline groups the itinerary's activities by day and stop. Days are ordered by date,
// then by stop order. Activities within a day are ordered by time, then by their order
// in the stop. A stop with no activities still appears on its first day. Derived, never stored.
func (it *Itinerary) Timeline(tripStart time.Time) []TimelineDay {
	type key struct {
		date time.Time
		stop domain.StopID
	}

	start := domain.DateOnly(tripStart)
	rank := make(map[domain.StopID]int, it.stops.Len())
	days := map[key]*TimelineDay{}
	keys := []key{}

	day := func(s domain.Stop, date time.Time) *TimelineDay {
		k := key{date: date, stop: s.ID}
		d, ok := days[k]
		if !ok {
			d = &TimelineDay{
				Date:      date,
				DayNumber: domain.DaysBetween(start, date) + 1,
				StopID:    s.ID,
				City:      s.City,
				Country:   s.Country,
				Total:     decimal.Zero,
			}
			days[k] = d
			keys = append(keys, k)
		}
		return d
	}

	for i, s := range it.stops.Items() {
		rank[s.ID] = i
		as := it.Activities(s.ID)
		if len(as) == 0 {
			day(s, domain.DateOnly(s.StartDate))
			continue
		}
		for _, a := range as {
			d := day(s, a.Day(s))
			d.Activities = append(d.Activities, a)
			d.Total = d.Total.Add(a.Cost)
		}
	}

	sort.SliceStable(keys, func(i, j int) bool {
		if !keys[i].date.Equal(keys[j].date) {
			return keys[i].date.Before(keys[j].date)
		}
		return rank[keys[i].stop] < rank[keys[j].stop]
	})

	out := make([]TimelineDay, 0, len(keys))
	for _, k := range keys {
		d := days[k]
		sort.SliceStable(d.Activities, func(i, j int) bool {
			return d.Activities[i].Time.Before(d.Activities[j].Time)
		})
		out = append(out, *d)
	}
	return out
}
