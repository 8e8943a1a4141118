package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/appointment"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/auth"
)

type RouterConfig struct {
	Service *appointment.Service
	Tokens  *auth.Tokens
	Checks  []HealthCheck
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	health := NewHealthHandler(cfg.Checks, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	svc := cfg.Service

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Tokens))

		r.Route("/dentists/{id}", func(r chi.Router) {
			r.Get("/slots", freeSlotsHandler(svc))
			r.Get("/availability", getAvailabilityHandler(svc))
			r.Put("/availability", putAvailabilityHandler(svc))
			r.Get("/appointments", dentistDayHandler(svc))
		})

		r.Post("/appointments", createAppointmentHandler(svc))
		r.Get("/appointments", listAppointmentsHandler(svc))
		r.Get("/appointments/{id}", getAppointmentHandler(svc))
		r.Post("/appointments/{id}/confirm", transitionHandler(svc, auth.ActionConfirm, svc.Confirm))
		r.Post("/appointments/{id}/complete", transitionHandler(svc, auth.ActionComplete, svc.Complete))
		r.Post("/appointments/{id}/cancel", transitionHandler(svc, auth.ActionCancel, svc.Cancel))

		r.Get("/patients/{id}/appointments", patientAppointmentsHandler(svc))
	})

	return r
}
