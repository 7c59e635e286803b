package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/globetrotter/trip-planner-api/internal/app/planner"
	"github.com/globetrotter/trip-planner-api/internal/domain"
	"github.com/globetrotter/trip-planner-api/internal/itinerary"
)

func stopIDParam(r *http.Request) domain.StopID {
	return domain.StopID(chi.URLParam(r, "stopId"))
}

func activityIDParam(r *http.Request) domain.ActivityID {
	return domain.ActivityID(chi.URLParam(r, "activityId"))
}

func (s *Server) writeItinerary(w http.ResponseWriter, r *http.Request, it *itinerary.Itinerary, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ItineraryResponse{Itinerary: itineraryFromDomain(it)})
}

func (s *Server) GetItinerary(w http.ResponseWriter, r *http.Request) {
	me, ok := s.caller(w, r)
	if !ok {
		return
	}
	it, err := s.Planner.GetItinerary(r.Context(), me, tripIDParam(r))
	s.writeItinerary(w, r, it, err)
}

func (s *Server) GetBudget(w http.ResponseWriter, r *http.Request) {
	me, ok := s.caller(w, r)
	if !ok {
		return
	}
	sum, err := s.Planner.GetBudget(r.Context(), me, tripIDParam(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BudgetResponse{Budget: budgetFromSummary(sum)})
}

func (s *Server) GetTimeline(w http.ResponseWriter, r *http.Request) {
	me, ok := s.caller(w, r)
	if !ok {
		return
	}
	days, err := s.Planner.GetTimeline(r.Context(), me, tripIDParam(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TimelineResponse{Days: timelineFromDomain(days)})
}

func (s *Server) AddStop(w http.ResponseWriter, r *http.Request) {
	me, ok := s.caller(w, r)
	if !ok {
		return
	}
	var body AddStopRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	in := planner.AddStopInput{
		City:      body.City,
		Country:   body.Country,
		StartDate: dateOrZero(body.StartDate),
		EndDate:   dateOrZero(body.EndDate),
		Notes:     body.Notes,
	}
	if body.CityID != nil && strings.TrimSpace(*body.CityID) != "" {
		id := domain.CityID(strings.TrimSpace(*body.CityID))
		in.CityID = &id
	}
	st, err := s.Planner.AddStop(r.Context(), me, tripIDParam(r), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, StopResponse{Stop: stopFromDomain(st, nil)})
}

func (s *Server) RemoveStop(w http.ResponseWriter, r *http.Request) {
	me, ok := s.caller(w, r)
	if !ok {
		return
	}
	it, err := s.Planner.RemoveStop(r.Context(), me, tripIDParam(r), stopIDParam(r))
	s.writeItinerary(w, r, it, err)
}

func (s *Server) ReorderStop(w http.ResponseWriter, r *http.Request) {
	me, ok := s.caller(w, r)
	if !ok {
		return
	}
	var body ReorderRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Index == nil {
		validationError(w, r, "index", "required")
		return
	}
	it, err := s.Planner.ReorderStop(r.Context(), me, tripIDParam(r), stopIDParam(r), *body.Index)
	s.writeItinerary(w, r, it, err)
}

func (s *Server) MoveStop(w http.ResponseWriter, r *http.Request) {
	me, ok := s.caller(w, r)
	if !ok {
		return
	}
	var body MoveRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	tripID := tripIDParam(r)
	switch {
	case body.ActiveID != nil:
		var over *domain.StopID
		if v, err := body.OverID.Get(); err == nil {
			id := domain.StopID(v)
			over = &id
		}
		it, err := s.Planner.DropStop(r.Context(), me, tripID, domain.StopID(*body.ActiveID), over)
		s.writeItinerary(w, r, it, err)
	case body.From != nil:
		it, err := s.Planner.MoveStop(r.Context(), me, tripID, *body.From, moveTarget(body))
		s.writeItinerary(w, r, it, err)
	default:
		validationError(w, r, "from", "either from or activeId is required")
	}
}

func (s *Server) AddActivity(w http.ResponseWriter, r *http.Request) {
	me, ok := s.caller(w, r)
	if !ok {
		return
	}
	var body AddActivityRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Cost == nil {
		validationError(w, r, "cost", "required")
		return
	}
	a, err := s.Planner.AddActivity(r.Context(), me, tripIDParam(r), stopIDParam(r), planner.AddActivityInput{
		Title: body.Title,
		Time:  body.Time,
		Cost:  *body.Cost,
		Notes: body.Notes,
		Date:  datePtr(body.Date),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ActivityResponse{Activity: activityFromDomain(a)})
}

func (s *Server) SetActivityCompleted(w http.ResponseWriter, r *http.Request) {
	me, ok := s.caller(w, r)
	if !ok {
		return
	}
	var body SetCompletedRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Completed == nil {
		validationError(w, r, "completed", "required")
		return
	}
	a, err := s.Planner.SetActivityCompleted(r.Context(), me, tripIDParam(r), stopIDParam(r), activityIDParam(r), *body.Completed)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ActivityResponse{Activity: activityFromDomain(a)})
}

func (s *Server) RemoveActivity(w http.ResponseWriter, r *http.Request) {
	me, ok := s.caller(w, r)
	if !ok {
		return
	}
	it, err := s.Planner.RemoveActivity(r.Context(), me, tripIDParam(r), stopIDParam(r), activityIDParam(r))
	s.writeItinerary(w, r, it, err)
}

func (s *Server) ReorderActivity(w http.ResponseWriter, r *http.Request) {
	me, ok := s.caller(w, r)
	if !ok {
		return
	}
	var body ReorderRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Index == nil {
		validationError(w, r, "index", "required")
		return
	}
	it, err := s.Planner.ReorderActivity(r.Context(), me, tripIDParam(r), stopIDParam(r), activityIDParam(r), *body.Index)
	s.writeItinerary(w, r, it, err)
}

func (s *Server) MoveActivity(w http.ResponseWriter, r *http.Request) {
	me, ok := s.caller(w, r)
	if !ok {
		return
	}
	var body MoveRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	tripID, stopID := tripIDParam(r), stopIDParam(r)
	switch {
	case body.ActiveID != nil:
		var over *domain.ActivityID
		if v, err := body.OverID.Get(); err == nil {
			id := domain.ActivityID(v)
			over = &id
		}
		it, err := s.Planner.DropActivity(r.Context(), me, tripID, stopID, domain.ActivityID(*body.ActiveID), over)
		s.writeItinerary(w, r, it, err)
	case body.From != nil:
		it, err := s.Planner.MoveActivity(r.Context(), me, tripID, stopID, *body.From, moveTarget(body))
		s.writeItinerary(w, r, it, err)
	default:
		validationError(w, r, "from", "either from or activeId is required")
	}
}

func moveTarget(body MoveRequest) *int {
	v, err := body.To.Get()
	if err != nil {
		return nil
	}
	return &v
}
