package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"
	"github.com/sirupsen/logrus"

	"github.com/globetrotter/trip-planner-api/internal/app/destinations"
	"github.com/globetrotter/trip-planner-api/internal/app/packing"
	"github.com/globetrotter/trip-planner-api/internal/app/planner"
	"github.com/globetrotter/trip-planner-api/internal/app/travelers"
	"github.com/globetrotter/trip-planner-api/internal/app/trips"
)

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code      string                            `json:"code"`
	Message   string                            `json:"message"`
	Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
	RequestID nullable.Nullable[string]         `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	var er ErrorResponse
	er.Error.Code = code
	er.Error.Message = message
	if details != nil {
		er.Error.Details = nullable.NewNullableWithValue(details)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestID = nullable.NewNullableWithValue(rid)
	}
	writeJSON(w, status, er)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type appError struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

// asAppError unwraps the typed error of any application service.
func asAppError(err error) (appError, bool) {
	var (
		te *trips.Error
		pe *planner.Error
		ve *travelers.Error
		ke *packing.Error
		de *destinations.Error
	)
	switch {
	case errors.As(err, &te):
		return appError{te.Status, te.Code, te.Message, te.Details}, true
	case errors.As(err, &pe):
		return appError{pe.Status, pe.Code, pe.Message, pe.Details}, true
	case errors.As(err, &ve):
		return appError{ve.Status, ve.Code, ve.Message, ve.Details}, true
	case errors.As(err, &ke):
		return appError{ke.Status, ke.Code, ke.Message, ke.Details}, true
	case errors.As(err, &de):
		return appError{de.Status, de.Code, de.Message, de.Details}, true
	}
	return appError{}, false
}

// fail writes err as an error envelope. Errors that are not application errors are
// logged and reported as 500 INTERNAL.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if ae, ok := asAppError(err); ok {
		writeError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}
	s.log.WithError(err).WithFields(logrus.Fields{
		"method":     r.Method,
		"path":       r.URL.Path,
		"request_id": middleware.GetReqID(r.Context()),
	}).Error("request failed")
	writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}
