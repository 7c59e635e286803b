package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"github.com/globetrotter/trip-planner-api/internal/app/packing"
	"github.com/globetrotter/trip-planner-api/internal/app/trips"
	"github.com/globetrotter/trip-planner-api/internal/domain"
	"github.com/globetrotter/trip-planner-api/internal/itinerary"
)

// Travelers

type TravelerProfile struct {
	TravelerID  string    `json:"travelerId"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	AvatarURL   *string   `json:"avatarUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type TravelerResponse struct {
	Traveler TravelerProfile `json:"traveler"`
}

type CreateMyProfileRequest struct {
	DisplayName string  `json:"displayName"`
	Email       string  `json:"email"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}

type UpdateMyProfileRequest struct {
	DisplayName nullable.Nullable[string] `json:"displayName,omitempty"`
	Email       nullable.Nullable[string] `json:"email,omitempty"`
	AvatarURL   nullable.Nullable[string] `json:"avatarUrl,omitempty"`
}

// Trips

type Trip struct {
	TripID      string             `json:"tripId"`
	OwnerID     string             `json:"ownerId"`
	Name        string             `json:"name"`
	Description *string            `json:"description,omitempty"`
	StartDate   openapi_types.Date `json:"startDate"`
	EndDate     openapi_types.Date `json:"endDate"`
	CoverImage  *string            `json:"coverImage,omitempty"`
	IsPublic    bool               `json:"isPublic"`
	ShareCode   *string            `json:"shareCode,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

type TripResponse struct {
	Trip Trip `json:"trip"`
}

type TripListResponse struct {
	Trips []Trip `json:"trips"`
}

type CreateTripRequest struct {
	Name        string              `json:"name"`
	Description *string             `json:"description,omitempty"`
	StartDate   *openapi_types.Date `json:"startDate,omitempty"`
	EndDate     *openapi_types.Date `json:"endDate,omitempty"`
	CoverImage  *string             `json:"coverImage,omitempty"`
	IsPublic    bool                `json:"isPublic"`
}

type CreateTripResponse struct {
	TripID    string  `json:"tripId"`
	IsPublic  bool    `json:"isPublic"`
	ShareCode *string `json:"shareCode,omitempty"`
}

type UpdateTripRequest struct {
	Name        nullable.Nullable[string]             `json:"name,omitempty"`
	StartDate   nullable.Nullable[openapi_types.Date] `json:"startDate,omitempty"`
	EndDate     nullable.Nullable[openapi_types.Date] `json:"endDate,omitempty"`
	Description nullable.Nullable[string]             `json:"description,omitempty"`
	CoverImage  nullable.Nullable[string]             `json:"coverImage,omitempty"`
}

type VisibilityRequest struct {
	IsPublic *bool `json:"isPublic"`
}

type ShareLinksResponse struct {
	ShareLinks struct {
		URL      string `json:"url"`
		Twitter  string `json:"twitter"`
		Facebook string `json:"facebook"`
		WhatsApp string `json:"whatsapp"`
	} `json:"shareLinks"`
}

type SharedTripResponse struct {
	Trip      Trip      `json:"trip"`
	OwnerName string    `json:"ownerName"`
	Itinerary Itinerary `json:"itinerary"`
	Budget    Budget    `json:"budget"`
}

// Itinerary

type Activity struct {
	ActivityID string          `json:"activityId"`
	StopID     string          `json:"stopId"`
	Title      string          `json:"title"`
	Time       string          `json:"time"`
	Cost       decimal.Decimal `json:"cost"`
	Notes      *string         `json:"notes,omitempty"`

	// Date is absent when the activity falls on the first day of its stop.
	Date      *openapi_types.Date `json:"date,omitempty"`
	Completed bool                `json:"completed"`

	Position int `json:"position"`
}

type Stop struct {
	StopID     string             `json:"stopId"`
	CityID     *string            `json:"cityId,omitempty"`
	City       string             `json:"city"`
	Country    string             `json:"country"`
	StartDate  openapi_types.Date `json:"startDate"`
	EndDate    openapi_types.Date `json:"endDate"`
	Nights     int                `json:"nights"`
	Notes      *string            `json:"notes,omitempty"`
	Position   int                `json:"position"`
	Activities []Activity         `json:"activities"`
}

type Itinerary struct {
	TripID string `json:"tripId"`
	Stops  []Stop `json:"stops"`
}

type ItineraryResponse struct {
	Itinerary Itinerary `json:"itinerary"`
}

type StopResponse struct {
	Stop Stop `json:"stop"`
}

type ActivityResponse struct {
	Activity Activity `json:"activity"`
}

type AddStopRequest struct {
	CityID    *string             `json:"cityId,omitempty"`
	City      string              `json:"city"`
	Country   string              `json:"country"`
	StartDate *openapi_types.Date `json:"startDate,omitempty"`
	EndDate   *openapi_types.Date `json:"endDate,omitempty"`
	Notes     *string             `json:"notes,omitempty"`
}

type AddActivityRequest struct {
	Title string              `json:"title"`
	Time  string              `json:"time"`
	Cost  *decimal.Decimal    `json:"cost,omitempty"`
	Notes *string             `json:"notes,omitempty"`
	Date  *openapi_types.Date `json:"date,omitempty"`
}

type SetCompletedRequest struct {
	Completed *bool `json:"completed"`
}

type ReorderRequest struct {
	Index *int `json:"index"`
}

// MoveRequest describes a drag gesture either by list indices (from, to) or by
// record ids (activeId, overId). A missing or null target means the item was
// dropped outside any target and nothing changes.
type MoveRequest struct {
	From     *int                      `json:"from,omitempty"`
	To       nullable.Nullable[int]    `json:"to,omitempty"`
	ActiveID *string                   `json:"activeId,omitempty"`
	OverID   nullable.Nullable[string] `json:"overId,omitempty"`
}

// Timeline

type TimelineDay struct {
	Date       openapi_types.Date `json:"date"`
	DayNumber  int                `json:"dayNumber"`
	StopID     string             `json:"stopId"`
	Location   string             `json:"location"`
	Activities []Activity         `json:"activities"`
	DayTotal   decimal.Decimal    `json:"dayTotal"`
}

type TimelineResponse struct {
	Days []TimelineDay `json:"days"`
}

// Budget

type StopBudget struct {
	StopID        string          `json:"stopId"`
	City          string          `json:"city"`
	ActivityCount int             `json:"activityCount"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type Budget struct {
	Stops                 []StopBudget     `json:"stops"`
	ActivityTotal         decimal.Decimal  `json:"activityTotal"`
	TransportEstimate     decimal.Decimal  `json:"transportEstimate"`
	AccommodationEstimate decimal.Decimal  `json:"accommodationEstimate"`
	GrandTotal            decimal.Decimal  `json:"grandTotal"`
	Limit                 decimal.Decimal  `json:"limit"`
	OverBudget            bool             `json:"overBudget"`
	AmountOver            decimal.Decimal  `json:"amountOver"`
	Remaining             decimal.Decimal  `json:"remaining"`
	PercentUsed           float64          `json:"percentUsed"`
	Categories            []CategoryAmount `json:"categories"`
}

type BudgetResponse struct {
	Budget Budget `json:"budget"`
}

// Packing

type PackingItem struct {
	ItemID    string    `json:"itemId"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Quantity  int       `json:"quantity"`
	Packed    bool      `json:"packed"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type PackingListResponse struct {
	Items    []PackingItem `json:"items"`
	Progress struct {
		Packed int `json:"packed"`
		Total  int `json:"total"`
	} `json:"progress"`
}

type PackingItemResponse struct {
	Item PackingItem `json:"item"`
}

type AddPackingItemRequest struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Quantity *int   `json:"quantity,omitempty"`
}

type SetPackedRequest struct {
	Packed *bool `json:"packed"`
}

// Destinations

type City struct {
	CityID    string   `json:"cityId"`
	Name      string   `json:"name"`
	Country   string   `json:"country"`
	CostIndex *int     `json:"costIndex,omitempty"`
	ImageURL  *string  `json:"imageUrl,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type CityListResponse struct {
	Cities []City `json:"cities"`
}

type CityResponse struct {
	City City `json:"city"`
}

func travelerFromDomain(t domain.Traveler) TravelerProfile {
	return TravelerProfile{
		TravelerID:  string(t.ID),
		DisplayName: t.DisplayName,
		Email:       t.Email,
		AvatarURL:   t.AvatarURL,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func tripFromDomain(t domain.Trip) Trip {
	return Trip{
		TripID:      string(t.ID),
		OwnerID:     string(t.OwnerID),
		Name:        t.Name,
		Description: t.Description,
		StartDate:   openapi_types.Date{Time: t.StartDate},
		EndDate:     openapi_types.Date{Time: t.EndDate},
		CoverImage:  t.CoverImage,
		IsPublic:    t.IsPublic,
		ShareCode:   t.ShareCode,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func tripsFromDomain(ts []domain.Trip) []Trip {
	out := make([]Trip, 0, len(ts))
	for _, t := range ts {
		out = append(out, tripFromDomain(t))
	}
	return out
}

func stopFromDomain(s domain.Stop, activities []domain.Activity) Stop {
	out := Stop{
		StopID:     string(s.ID),
		City:       s.City,
		Country:    s.Country,
		StartDate:  openapi_types.Date{Time: s.StartDate},
		EndDate:    openapi_types.Date{Time: s.EndDate},
		Nights:     s.Nights(),
		Notes:      s.Notes,
		Position:   s.Position,
		Activities: make([]Activity, 0, len(activities)),
	}
	if s.CityID != nil {
		id := string(*s.CityID)
		out.CityID = &id
	}
	for _, a := range activities {
		out.Activities = append(out.Activities, activityFromDomain(a))
	}
	return out
}

func activityFromDomain(a domain.Activity) Activity {
	out := Activity{
		ActivityID: string(a.ID),
		StopID:     string(a.StopID),
		Title:      a.Title,
		Time:       a.Time.String(),
		Cost:       a.Cost,
		Notes:      a.Notes,
		Completed:  a.Completed,
		Position:   a.Position,
	}
	if a.Date != nil {
		out.Date = &openapi_types.Date{Time: *a.Date}
	}
	return out
}

func timelineFromDomain(days []itinerary.TimelineDay) []TimelineDay {
	out := make([]TimelineDay, 0, len(days))
	for _, d := range days {
		location := d.City
		if d.Country != "" {
			location += ", " + d.Country
		}
		td := TimelineDay{
			Date:       openapi_types.Date{Time: d.Date},
			DayNumber:  d.DayNumber,
			StopID:     string(d.StopID),
			Location:   location,
			Activities: make([]Activity, 0, len(d.Activities)),
			DayTotal:   d.Total,
		}
		for _, a := range d.Activities {
			td.Activities = append(td.Activities, activityFromDomain(a))
		}
		out = append(out, td)
	}
	return out
}

func itineraryFromDomain(it *itinerary.Itinerary) Itinerary {
	out := Itinerary{TripID: string(it.TripID), Stops: []Stop{}}
	for _, s := range it.Stops() {
		out.Stops = append(out.Stops, stopFromDomain(s, it.Activities(s.ID)))
	}
	return out
}

func budgetFromSummary(s itinerary.Summary) Budget {
	out := Budget{
		Stops:                 make([]StopBudget, 0, len(s.Stops)),
		ActivityTotal:         s.ActivityTotal,
		TransportEstimate:     s.TransportEstimate,
		AccommodationEstimate: s.AccommodationEstimate,
		GrandTotal:            s.GrandTotal,
		Limit:                 s.Limit,
		OverBudget:            s.OverBudget,
		AmountOver:            s.AmountOver,
		Remaining:             s.Remaining,
		PercentUsed:           s.PercentUsed,
		Categories:            make([]CategoryAmount, 0, len(s.Categories)),
	}
	for _, sb := range s.Stops {
		out.Stops = append(out.Stops, StopBudget{
			StopID:        string(sb.StopID),
			City:          sb.City,
			ActivityCount: sb.ActivityCount,
			Subtotal:      sb.Subtotal,
		})
	}
	for _, c := range s.Categories {
		out.Categories = append(out.Categories, CategoryAmount{Category: string(c.Category), Amount: c.Amount})
	}
	return out
}

func packingItemFromDomain(it domain.PackingItem) PackingItem {
	return PackingItem{
		ItemID:    string(it.ID),
		Name:      it.Name,
		Category:  it.Category,
		Quantity:  it.Quantity,
		Packed:    it.Packed,
		UpdatedAt: it.UpdatedAt,
	}
}

func packingListFromApp(l packing.List) PackingListResponse {
	var out PackingListResponse
	out.Items = make([]PackingItem, 0, len(l.Items))
	for _, it := range l.Items {
		out.Items = append(out.Items, packingItemFromDomain(it))
	}
	out.Progress.Packed = l.Progress.Packed
	out.Progress.Total = l.Progress.Total
	return out
}

func cityFromDomain(c domain.City) City {
	return City{
		CityID:    string(c.ID),
		Name:      c.Name,
		Country:   c.Country,
		CostIndex: c.CostIndex,
		ImageURL:  c.ImageURL,
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
	}
}

func shareLinksFromApp(l trips.ShareLinks) ShareLinksResponse {
	var out ShareLinksResponse
	out.ShareLinks.URL = l.URL
	out.ShareLinks.Twitter = l.Twitter
	out.ShareLinks.Facebook = l.Facebook
	out.ShareLinks.WhatsApp = l.WhatsApp
	return out
}
