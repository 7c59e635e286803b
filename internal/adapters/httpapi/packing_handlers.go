package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/globetrotter/trip-planner-api/internal/app/packing"
	"github.com/globetrotter/trip-planner-api/internal/domain"
)

func (s *Server) ListPackingItems(w http.ResponseWriter, r *http.Request) {
	me, ok := s.caller(w, r)
	if !ok {
		return
	}
	l, err := s.Packing.ListItems(r.Context(), me, tripIDParam(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, packingListFromApp(l))
}

func (s *Server) AddPackingItem(w http.ResponseWriter, r *http.Request) {
	me, ok := s.caller(w, r)
	if !ok {
		return
	}
	var body AddPackingItemRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	item, err := s.Packing.AddItem(r.Context(), me, tripIDParam(r), packing.AddItemInput{
		Name:     body.Name,
		Category: body.Category,
		Quantity: body.Quantity,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, PackingItemResponse{Item: packingItemFromDomain(item)})
}

func (s *Server) SetItemPacked(w http.ResponseWriter, r *http.Request) {
	me, ok := s.caller(w, r)
	if !ok {
		return
	}
	var body SetPackedRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Packed == nil {
		validationError(w, r, "packed", "required")
		return
	}
	itemID := domain.PackingItemID(chi.URLParam(r, "itemId"))
	item, err := s.Packing.SetPacked(r.Context(), me, tripIDParam(r), itemID, *body.Packed)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PackingItemResponse{Item: packingItemFromDomain(item)})
}

func (s *Server) RemovePackingItem(w http.ResponseWriter, r *http.Request) {
	me, ok := s.caller(w, r)
	if !ok {
		return
	}
	itemID := domain.PackingItemID(chi.URLParam(r, "itemId"))
	if err := s.Packing.RemoveItem(r.Context(), me, tripIDParam(r), itemID); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
