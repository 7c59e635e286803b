package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/globetrotter/trip-planner-api/internal/app/destinations"
	"github.com/globetrotter/trip-planner-api/internal/app/packing"
	"github.com/globetrotter/trip-planner-api/internal/app/planner"
	"github.com/globetrotter/trip-planner-api/internal/app/travelers"
	"github.com/globetrotter/trip-planner-api/internal/app/trips"
	"github.com/globetrotter/trip-planner-api/internal/domain"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/idempotency"
)

const maxBodyBytes = 1 << 20

// Services groups the application services the HTTP adapter delegates to.
type Services struct {
	Travelers    *travelers.Service
	Trips        *trips.Service
	Planner      *planner.Service
	Packing      *packing.Service
	Destinations *destinations.Service
}

// Server holds the HTTP handlers. Idem may be nil, in which case Idempotency-Key
// headers are accepted but not enforced.
type Server struct {
	Services
	Idem idempotency.Store

	log logrus.FieldLogger
}

func NewServer(svcs Services, idem idempotency.Store, log logrus.FieldLogger) *Server {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Server{Services: svcs, Idem: idem, log: log}
}

// caller resolves the authenticated subject to a provisioned traveler. On failure
// the error response has already been written.
func (s *Server) caller(w http.ResponseWriter, r *http.Request) (domain.TravelerID, bool) {
	sub, ok := SubjectFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing subject", nil)
		return "", false
	}
	t, err := s.Travelers.Resolve(r.Context(), domain.SubjectID(sub))
	if err != nil {
		s.fail(w, r, err)
		return "", false
	}
	return t.ID, true
}

func (s *Server) subject(w http.ResponseWriter, r *http.Request) (domain.SubjectID, bool) {
	sub, ok := SubjectFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing subject", nil)
		return "", false
	}
	return domain.SubjectID(sub), true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body too large", map[string]any{"limitBytes": tooLarge.Limit})
			return false
		}
		if errors.Is(err, io.EOF) {
			writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "missing request body", nil)
			return false
		}
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "malformed request body", map[string]any{"cause": err.Error()})
		return false
	}
	return true
}

func validationError(w http.ResponseWriter, r *http.Request, field, problem string) {
	writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid "+field, map[string]any{field: problem})
}
