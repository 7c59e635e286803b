package itinerary

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globetrotter/trip-planner-api/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSummarize_SingleStopTwoActivities(t *testing.T) {
	t.Parallel()

	it := New("t")
	it.AddStop(domain.Stop{ID: "paris", City: "Paris"})
	_, _ = it.AddActivity("paris", domain.Activity{ID: "a", Cost: dec("35")})
	_, _ = it.AddActivity("paris", domain.Activity{ID: "b", Cost: dec("22")})

	s := Summarize(it, DefaultPolicy())

	assert.True(t, dec("57").Equal(s.ActivityTotal), "activity total %s", s.ActivityTotal)
	assert.True(t, dec("5").Equal(s.TransportEstimate), "transport %s", s.TransportEstimate)
	assert.True(t, dec("150").Equal(s.AccommodationEstimate))
	assert.True(t, dec("212").Equal(s.GrandTotal), "total %s", s.GrandTotal)
	assert.False(t, s.OverBudget)
	assert.True(t, s.AmountOver.IsZero())
	assert.True(t, dec("1788").Equal(s.Remaining))
	assert.InDelta(t, 10.6, s.PercentUsed, 0.001)

	require.Len(t, s.Stops, 1)
	assert.Equal(t, 2, s.Stops[0].ActivityCount)
	assert.True(t, dec("57").Equal(s.Stops[0].Subtotal))
	require.Len(t, s.Categories, 3)
}

func TestSummarize_EmptyItinerary(t *testing.T) {
	t.Parallel()

	s := Summarize(New("t"), DefaultPolicy())
	assert.True(t, s.GrandTotal.IsZero())
	assert.False(t, s.OverBudget)
	assert.True(t, DefaultLimit.Equal(s.Remaining))
}

func TestSummarize_LimitBoundary(t *testing.T) {
	t.Parallel()

	build := func(cost string) *Itinerary {
		it := New("t")
		it.AddStop(domain.Stop{ID: "s"})
		_, _ = it.AddActivity("s", domain.Activity{ID: "a", Cost: dec(cost)})
		return it
	}

	// 1850 + 150 nightly = 2000, exactly the limit.
	atLimit := Summarize(build("1850"), DefaultPolicy())
	assert.True(t, dec("2000").Equal(atLimit.GrandTotal))
	assert.False(t, atLimit.OverBudget)
	assert.True(t, atLimit.Remaining.IsZero())
	assert.InDelta(t, 100.0, atLimit.PercentUsed, 0.001)

	over := Summarize(build("1850.01"), DefaultPolicy())
	assert.True(t, over.OverBudget)
	assert.True(t, dec("0.01").Equal(over.AmountOver), "amount over %s", over.AmountOver)
	assert.True(t, over.Remaining.IsZero())
}

func TestSummarize_StopsWithoutActivitiesCostNoTransport(t *testing.T) {
	t.Parallel()

	it := New("t")
	it.AddStop(domain.Stop{ID: "a"})
	it.AddStop(domain.Stop{ID: "b"})
	_, _ = it.AddActivity("b", domain.Activity{ID: "x", Cost: dec("10")})

	s := Summarize(it, DefaultPolicy())
	assert.True(t, s.TransportEstimate.IsZero())
	assert.True(t, dec("300").Equal(s.AccommodationEstimate))
	assert.True(t, dec("310").Equal(s.GrandTotal))
}

func TestSummarize_CustomPolicy(t *testing.T) {
	t.Parallel()

	it := New("t")
	it.AddStop(domain.Stop{ID: "a"})
	_, _ = it.AddActivity("a", domain.Activity{ID: "x", Cost: dec("10")})
	_, _ = it.AddActivity("a", domain.Activity{ID: "y", Cost: dec("10")})

	s := Summarize(it, Policy{Limit: dec("50"), NightlyRate: dec("40")})
	assert.True(t, s.TransportEstimate.IsZero())
	assert.True(t, dec("60").Equal(s.GrandTotal))
	assert.True(t, s.OverBudget)
	assert.True(t, dec("10").Equal(s.AmountOver))

	zeroLimit := Summarize(it, Policy{NightlyRate: dec("40")})
	assert.Zero(t, zeroLimit.PercentUsed)
}

func TestSummarize_MonotonicInActivities(t *testing.T) {
	t.Parallel()

	it := New("t")
	it.AddStop(domain.Stop{ID: "s"})
	prev := Summarize(it, DefaultPolicy()).GrandTotal
	for i := 0; i < 20; i++ {
		_, err := it.AddActivity("s", domain.Activity{ID: domain.ActivityID(fmt.Sprintf("a%d", i)), Cost: decimal.NewFromInt(int64(i % 3))})
		require.NoError(t, err)
		total := Summarize(it, DefaultPolicy()).GrandTotal
		assert.True(t, total.GreaterThanOrEqual(prev), "step %d: %s < %s", i, total, prev)
		prev = total
	}
}

func TestSummarize_DecimalCostsDoNotDrift(t *testing.T) {
	t.Parallel()

	it := New("t")
	it.AddStop(domain.Stop{ID: "s"})
	for i := 0; i < 10; i++ {
		_, _ = it.AddActivity("s", domain.Activity{ID: domain.ActivityID(fmt.Sprintf("a%d", i)), Cost: dec("0.1")})
	}

	s := Summarize(it, Policy{Limit: dec("1")})
	assert.True(t, dec("1").Equal(s.ActivityTotal))
	assert.False(t, s.OverBudget)
}
