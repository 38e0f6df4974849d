package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/segyhp/loan-engine/pkg/response"
)

type Handlers struct {
	Loans         *LoanHandler
	Notifications *NotificationHandler
	Reminders     *ReminderHandler
	Health        *HealthHandler
}

// NewRouter wires every route. Everything under /api/v1 requires a bearer token.
func NewRouter(h Handlers, jwtSecret string, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.CORSMiddleware, response.LoggingMiddleware(logger))

	// Health check
	if h.Health != nil {
		router.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
		router.HandleFunc("/health/ready", h.Health.Ready).Methods(http.MethodGet)
	}

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(jwtSecret))

	api.HandleFunc("/loans", h.Loans.CreateLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans", h.Loans.ListLoans).Methods(http.MethodGet)
	api.HandleFunc("/loans/stats", h.Loans.LoanStats).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}", h.Loans.GetLoan).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/status", h.Loans.UpdateStatus).Methods(http.MethodPatch)
	api.HandleFunc("/loans/{id}", h.Loans.DeleteLoan).Methods(http.MethodDelete)

	api.HandleFunc("/notifications", h.Notifications.ListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/read-all", h.Notifications.MarkAllRead).Methods(http.MethodPut)
	api.HandleFunc("/notifications/{id}/read", h.Notifications.MarkRead).Methods(http.MethodPut)

	api.HandleFunc("/reminders/run", h.Reminders.RunReminders).Methods(http.MethodPost)
	api.HandleFunc("/reminders/last-run", h.Reminders.LastRun).Methods(http.MethodGet)

	return router
}
