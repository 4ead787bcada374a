package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Nico104/PlanningToolV2/internal/application"
	"github.com/Nico104/PlanningToolV2/internal/timetable"
)

const dateLayout = "2006-01-02"

type appointmentService interface {
	CreateAppointment(ctx context.Context, params application.CreateAppointmentParams) (timetable.Appointment, error)
	UpdateAppointment(ctx context.Context, params application.UpdateAppointmentParams) (timetable.Appointment, error)
	GetAppointment(ctx context.Context, principal application.Principal, id string) (timetable.Appointment, error)
	ListAppointments(ctx context.Context, params application.ListAppointmentsParams) ([]timetable.Appointment, error)
	DeleteAppointment(ctx context.Context, principal application.Principal, id string) error
}

type AppointmentHandler struct {
	service   appointmentService
	responder responder
	logger    *slog.Logger
}

func NewAppointmentHandler(service appointmentService, logger *slog.Logger) *AppointmentHandler {
	base := defaultLogger(logger)
	return &AppointmentHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AppointmentHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AppointmentHandler", operation, attrs...)
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode appointment request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	input, err := req.toInput()
	if err != nil {
		logger.ErrorContext(r.Context(), "malformed appointment payload", "error", err, "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	appointment, err := h.service.CreateAppointment(r.Context(), application.CreateAppointmentParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "appointment creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("appointment_id", appointment.ID).InfoContext(r.Context(), "appointment created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, appointmentResponse{Appointment: toAppointmentDTO(appointment)})
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	appointmentID, ok := AppointmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(appointmentID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing appointment id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "appointment_id", appointmentID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode appointment update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "appointment_id", appointmentID)

	input, err := req.toInput()
	if err != nil {
		logger.ErrorContext(r.Context(), "malformed appointment payload", "error", err, "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	appointment, err := h.service.UpdateAppointment(r.Context(), application.UpdateAppointmentParams{
		Principal:     principal,
		AppointmentID: appointmentID,
		Input:         input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "appointment update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "appointment updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, appointmentResponse{Appointment: toAppointmentDTO(appointment)})
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	appointmentID, ok := AppointmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(appointmentID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	appointment, err := h.service.GetAppointment(r.Context(), principal, appointmentID)
	if err != nil {
		h.log(r.Context(), "Get", "appointment_id", appointmentID).ErrorContext(r.Context(), "appointment lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, appointmentResponse{Appointment: toAppointmentDTO(appointment)})
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	params := application.ListAppointmentsParams{
		Principal: principal,
		Filter:    buildAppointmentFilter(r.URL.Query()),
	}

	appointments, err := h.service.ListAppointments(r.Context(), params)
	if err != nil {
		h.log(r.Context(), "List", "principal_id", principal.UserID).ErrorContext(r.Context(), "appointment listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]appointmentDTO, 0, len(appointments))
	for _, appointment := range appointments {
		dtos = append(dtos, toAppointmentDTO(appointment))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, appointmentListResponse{Appointments: dtos})
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	appointmentID, ok := AppointmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(appointmentID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "appointment_id", appointmentID)

	if err := h.service.DeleteAppointment(r.Context(), principal, appointmentID); err != nil {
		logger.ErrorContext(r.Context(), "appointment deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "appointment deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func buildAppointmentFilter(values url.Values) timetable.FilterOptions {
	return timetable.FilterOptions{
		SemesterID: strings.TrimSpace(values.Get("semester_id")),
		RoomID:     strings.TrimSpace(values.Get("room_id")),
		CourseID:   strings.TrimSpace(values.Get("course_id")),
		Type:       strings.TrimSpace(values.Get("type")),
		Lecturer:   strings.TrimSpace(values.Get("lecturer")),
		Date:       strings.TrimSpace(values.Get("date")),
	}
}

type appointmentRequest struct {
	Name               string    `json:"name"`
	CourseID           string    `json:"course_id"`
	Type               string    `json:"type"`
	Date               string    `json:"date"`
	Start              string    `json:"start"`
	DurationMinutes    int       `json:"duration_minutes"`
	RoomID             string    `json:"room_id"`
	Group              *groupDTO `json:"group"`
	AttendanceRequired bool      `json:"attendance_required"`
	Note               string    `json:"note"`
	SemesterID         string    `json:"semester_id"`
}

func (req appointmentRequest) toInput() (application.AppointmentInput, error) {
	input := application.AppointmentInput{
		Name:               strings.TrimSpace(req.Name),
		CourseID:           strings.TrimSpace(req.CourseID),
		Type:               strings.TrimSpace(req.Type),
		DurationMinutes:    req.DurationMinutes,
		RoomID:             strings.TrimSpace(req.RoomID),
		AttendanceRequired: req.AttendanceRequired,
		Note:               req.Note,
		SemesterID:         strings.TrimSpace(req.SemesterID),
	}

	if date := strings.TrimSpace(req.Date); date != "" {
		parsed, err := time.Parse(dateLayout, date)
		if err != nil {
			return application.AppointmentInput{}, fmt.Errorf("Ungültiges Datum: %q.", date)
		}
		input.Date = &parsed
	}

	if start := strings.TrimSpace(req.Start); start != "" {
		minutes, err := timetable.ParseClock(start)
		if err != nil {
			return application.AppointmentInput{}, fmt.Errorf("Ungültige Startzeit: %q.", start)
		}
		input.StartMinutes = &minutes
	}

	if req.Group != nil {
		input.Group = &timetable.Group{Name: strings.TrimSpace(req.Group.Name), Size: req.Group.Size}
	}

	return input, nil
}

type appointmentDTO struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	CourseID           string    `json:"course_id"`
	Type               string    `json:"type,omitempty"`
	Date               string    `json:"date,omitempty"`
	Start              string    `json:"start,omitempty"`
	End                string    `json:"end,omitempty"`
	DurationMinutes    int       `json:"duration_minutes"`
	RoomID             string    `json:"room_id,omitempty"`
	Group              *groupDTO `json:"group,omitempty"`
	AttendanceRequired bool      `json:"attendance_required"`
	Note               string    `json:"note,omitempty"`
	SemesterID         string    `json:"semester_id,omitempty"`
	Assigned           bool      `json:"assigned"`
}

type groupDTO struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

type appointmentResponse struct {
	Appointment appointmentDTO `json:"appointment"`
}

type appointmentListResponse struct {
	Appointments []appointmentDTO `json:"appointments"`
}

func toAppointmentDTO(appointment timetable.Appointment) appointmentDTO {
	dto := appointmentDTO{
		ID:                 appointment.ID,
		Name:               appointment.Name,
		CourseID:           appointment.CourseID,
		Type:               appointment.Type,
		DurationMinutes:    appointment.DurationMinutes,
		RoomID:             appointment.RoomID,
		AttendanceRequired: appointment.AttendanceRequired,
		Note:               appointment.Note,
		SemesterID:         appointment.SemesterID,
		Assigned:           appointment.Assigned(),
	}
	if appointment.HasDate() {
		dto.Date = appointment.Date.Format(dateLayout)
	}
	if appointment.StartMinutes != nil {
		dto.Start = timetable.FormatClock(*appointment.StartMinutes)
	}
	if end, ok := appointment.EndMinutes(); ok {
		dto.End = timetable.FormatClock(end)
	}
	if appointment.Group != nil {
		dto.Group = &groupDTO{Name: appointment.Group.Name, Size: appointment.Group.Size}
	}
	return dto
}
