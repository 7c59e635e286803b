package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/globetrotter/trip-planner-api/internal/domain"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/idempotency"
)

const idempotencyKeyHeader = "Idempotency-Key"

// idempotentRequest describes a mutation that may be replayed under an Idempotency-Key.
// Canonical is the normalized request payload; its hash binds the key to the payload.
type idempotentRequest struct {
	Key       string
	Subject   domain.SubjectID
	Route     string
	Canonical any
	Status    int
}

// idempotent runs fn at most once per key, subject, route and payload:
//   - same key and payload: the stored response is replayed
//   - same key, different payload: 409 IDEMPOTENCY_KEY_REUSE
//
// Without a key (or without a store) fn simply runs.
func (s *Server) idempotent(w http.ResponseWriter, r *http.Request, req idempotentRequest, fn func() (any, error)) {
	ctx := r.Context()
	key := strings.TrimSpace(req.Key)
	if key == "" || s.Idem == nil {
		resp, err := fn()
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, req.Status, resp)
		return
	}

	bodyHash, err := hashCanonical(req.Canonical)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	metaFP := idempotency.Fingerprint{
		Key:     idempotency.Key(key),
		Subject: req.Subject,
		Method:  r.Method,
		Route:   req.Route,
	}
	meta, ok, err := s.Idem.Get(ctx, metaFP)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if ok {
		if string(meta.Body) != bodyHash {
			writeError(w, r, http.StatusConflict, "IDEMPOTENCY_KEY_REUSE", "idempotency key reuse with different payload", nil)
			return
		}
	} else {
		_ = s.Idem.Put(ctx, metaFP, idempotency.Record{
			ContentType: "text/plain",
			Body:        []byte(bodyHash),
			CreatedAt:   time.Now().UTC(),
		})
	}

	respFP := metaFP
	respFP.BodyHash = bodyHash
	rec, ok, err := s.Idem.Get(ctx, respFP)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if ok && rec.StatusCode == req.Status && strings.HasPrefix(rec.ContentType, "application/json") {
		w.Header().Set("Content-Type", rec.ContentType)
		w.Header().Set("Idempotent-Replayed", "true")
		w.WriteHeader(rec.StatusCode)
		_, _ = w.Write(rec.Body)
		return
	}

	resp, err := fn()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	b, err := json.Marshal(resp)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	// Storing is best-effort: the mutation already happened.
	if err := s.Idem.Put(ctx, respFP, idempotency.Record{
		StatusCode:  req.Status,
		ContentType: "application/json",
		Body:        b,
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		s.log.WithError(err).WithField("route", req.Route).Warn("idempotency record not stored")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(req.Status)
	_, _ = w.Write(append(b, '\n'))
}

func hashCanonical(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
