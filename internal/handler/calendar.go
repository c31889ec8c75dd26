package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/personalai/assistant/internal/models"
	"github.com/personalai/assistant/internal/security"
	"github.com/personalai/assistant/internal/store"
)

type CalendarRepository interface {
	ListAppointments(ctx context.Context) ([]models.Appointment, error)
	CreateAppointment(ctx context.Context, in models.AppointmentInput) (models.Appointment, error)
	ListSchedules(ctx context.Context) ([]models.Schedule, error)
	CreateSchedule(ctx context.Context, in models.ScheduleInput) (models.Schedule, error)
}

// CalendarHandler serves appointment booking and schedule slots.
type CalendarHandler struct {
	repo  CalendarRepository
	audit *security.AuditLogger
}

func NewCalendarHandler(repo CalendarRepository, audit *security.AuditLogger) *CalendarHandler {
	return &CalendarHandler{repo: repo, audit: audit}
}

// BookAppointment handles POST /create-appointment/ and wraps the result as {"appointment": ...}.
func (h *CalendarHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	a, ok := h.createAppointment(w, r)
	if !ok {
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{"appointment": a})
}

// CreateAppointment handles POST /appointments/
func (h *CalendarHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	a, ok := h.createAppointment(w, r)
	if !ok {
		return
	}
	models.WriteJSON(w, http.StatusOK, a)
}

// ListAppointments handles GET /appointments/
func (h *CalendarHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListAppointments(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list appointments failed")
		models.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	models.WriteJSON(w, http.StatusOK, list)
}

func (h *CalendarHandler) createAppointment(w http.ResponseWriter, r *http.Request) (models.Appointment, bool) {
	var in models.AppointmentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return models.Appointment{}, false
	}
	in.SetDefaults()
	if err := in.Validate(); err != nil {
		models.WriteError(w, http.StatusBadRequest, err.Error())
		return models.Appointment{}, false
	}

	a, err := h.repo.CreateAppointment(r.Context(), in)
	h.audit.LogWrite(r.Header.Get("X-API-Key"), "appointments", "create", a.ID, err == nil)
	if err != nil {
		writeStoreError(w, "Appointment not found", err)
		return models.Appointment{}, false
	}
	return a, true
}

// ListSchedules handles GET /schedules/
func (h *CalendarHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListSchedules(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list schedules failed")
		models.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	models.WriteJSON(w, http.StatusOK, list)
}

// CreateSchedule handles POST /schedules/. An overlapping slot on the same
// date is rejected with 400.
func (h *CalendarHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var in models.ScheduleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		models.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	sc, err := h.repo.CreateSchedule(r.Context(), in)
	h.audit.LogWrite(r.Header.Get("X-API-Key"), "schedules", "create", sc.ID, err == nil)
	if errors.Is(err, store.ErrSlotUnavailable) {
		models.WriteError(w, http.StatusBadRequest, "Slot is not available")
		return
	}
	if err != nil {
		writeStoreError(w, "Schedule not found", err)
		return
	}
	models.WriteJSON(w, http.StatusOK, sc)
}
