package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"food-delivery-Orurh/internal/http/handlers"
)

// New constructs a chi-based http.Handler with base middleware and routes.
// observe and metrics may be nil.
func New(h *handlers.Handlers, cour *handlers.CourierHandler, del *handlers.DeliveryHandler, observe func(http.Handler) http.Handler, metrics http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if observe != nil {
		r.Use(observe)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))

	r.Get("/ping", h.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(h.HealthcheckHead))
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/deliveries/{id}", func(r chi.Router) {
		r.Get("/", del.Get)
		r.Post("/assign", del.Assign)
		r.Post("/status", del.UpdateStatus)
		r.Post("/simulate", del.Simulate)
	})

	r.Route("/couriers", func(r chi.Router) {
		r.Get("/", cour.List)
		r.Post("/", cour.Create)
		r.Get("/{id}", cour.GetByID)
	})

	r.NotFound(http.HandlerFunc(h.NotFound))
	return r
}
