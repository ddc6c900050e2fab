package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/careslot/doctor-availability/internal/booking"
	"github.com/careslot/doctor-availability/internal/schedule"
)

type RouterConfig struct {
	Engine   *schedule.Engine
	Booking  *booking.Service
	Defaults Defaults
	PgPool   *pgxpool.Pool
	Redis    *redis.Client
	Env      string
	Version  string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Availability endpoints
	r.Get("/doctors/{id}/availability", availableSlotsHandler(cfg.Engine, cfg.Defaults))
	r.Get("/doctors/{id}/availability/next", nextAvailableSlotHandler(cfg.Engine, cfg.Defaults))

	// Appointment endpoints
	r.Post("/appointments", bookAppointmentHandler(cfg.Booking))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Booking))
	r.Post("/appointments/{id}/reschedule", rescheduleAppointmentHandler(cfg.Booking))
	r.Post("/appointments/{id}/confirm", confirmAppointmentHandler(cfg.Booking))
	r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Booking))
	r.Post("/appointments/{id}/no-show", noShowAppointmentHandler(cfg.Booking))
	r.Post("/appointments/{id}/complete", completeAppointmentHandler(cfg.Booking))

	return r
}
