package handler

import (
	"net/http"
	"time"

	"github.com/segyhp/loan-engine/pkg/response"
)

type ReminderHandler struct {
	service ReminderService
	clock   func() time.Time
}

func NewReminderHandler(service ReminderService) *ReminderHandler {
	return &ReminderHandler{service: service, clock: time.Now}
}

// RunReminders handles POST /reminders/run. The run is safe to repeat on the same day.
// It covers every user, so only counters are returned; failure detail stays in the logs.
func (h *ReminderHandler) RunReminders(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Run(r.Context(), h.clock())
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.SuccessMessage(w, "Reminder run finished", report.Summary())
}

// LastRun handles GET /reminders/last-run
func (h *ReminderHandler) LastRun(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.LastRun(r.Context())
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	if report == nil {
		response.SuccessMessage(w, "No reminder run recorded yet", nil)
		return
	}

	response.Success(w, report.Summary())
}
