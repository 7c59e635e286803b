package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type RouterOptions struct {
	// AuthMiddleware authenticates every route except /healthz and /shared/{shareCode}.
	// When nil, authenticated routes answer 401.
	AuthMiddleware func(http.Handler) http.Handler
	Logger         logrus.FieldLogger
}

// NewRouter constructs the API HTTP router.
func NewRouter(api *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if opts.Logger != nil {
		r.Use(NewRequestLogger(opts.Logger))
	}
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	// Infra checks and the public share page stay unauthenticated.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/shared/{shareCode}", api.GetSharedTrip)

	authMW := opts.AuthMiddleware
	if authMW == nil {
		authMW = denyAll
	}

	r.Group(func(r chi.Router) {
		r.Use(authMW)

		r.Route("/travelers/me", func(r chi.Router) {
			r.Post("/", api.CreateMyProfile)
			r.Get("/", api.GetMyProfile)
			r.Patch("/", api.UpdateMyProfile)
		})

		r.Route("/trips", func(r chi.Router) {
			r.Get("/", api.ListMyTrips)
			r.Post("/", api.CreateTrip)
			r.Get("/public", api.ListPublicTrips)

			r.Route("/{tripId}", func(r chi.Router) {
				r.Get("/", api.GetTrip)
				r.Patch("/", api.UpdateTrip)
				r.Delete("/", api.DeleteTrip)
				r.Put("/visibility", api.SetTripVisibility)
				r.Get("/share", api.GetShareLinks)
				r.Get("/itinerary", api.GetItinerary)
				r.Get("/budget", api.GetBudget)
				r.Get("/timeline", api.GetTimeline)

				r.Post("/stops", api.AddStop)
				r.Post("/stops/move", api.MoveStop)
				r.Route("/stops/{stopId}", func(r chi.Router) {
					r.Delete("/", api.RemoveStop)
					r.Post("/reorder", api.ReorderStop)
					r.Post("/activities", api.AddActivity)
					r.Post("/activities/move", api.MoveActivity)
					r.Patch("/activities/{activityId}", api.SetActivityCompleted)
					r.Delete("/activities/{activityId}", api.RemoveActivity)
					r.Post("/activities/{activityId}/reorder", api.ReorderActivity)
				})

				r.Get("/packing", api.ListPackingItems)
				r.Post("/packing", api.AddPackingItem)
				r.Patch("/packing/{itemId}", api.SetItemPacked)
				r.Delete("/packing/{itemId}", api.RemovePackingItem)
			})
		})

		r.Get("/destinations", api.SearchDestinations)
		r.Get("/destinations/{cityId}", api.GetDestination)
	})

	return r
}

func denyAll(http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication is not configured", nil)
	})
}
