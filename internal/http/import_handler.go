package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"

	"github.com/Nico104/PlanningToolV2/internal/application"
	"github.com/Nico104/PlanningToolV2/internal/importer"
)

// importMaxMemory bounds how much of the multipart upload stays in memory
// before spilling to disk.
const importMaxMemory = 10 << 20

// ImportHandler accepts CSV exports of rooms, courses and appointments in a
// single multipart upload and replays them through the regular services, so
// imported records get the same validation and ids as interactive ones.
type ImportHandler struct {
	rooms        roomService
	courses      courseService
	appointments appointmentService
	responder    responder
	logger       *slog.Logger
}

func NewImportHandler(rooms roomService, courses courseService, appointments appointmentService, logger *slog.Logger) *ImportHandler {
	base := defaultLogger(logger)
	return &ImportHandler{
		rooms:        rooms,
		courses:      courses,
		appointments: appointments,
		responder:    newResponder(base),
		logger:       base,
	}
}

func (h *ImportHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ImportHandler", operation, attrs...)
}

type importFileReport struct {
	Created int      `json:"created"`
	Errors  []string `json:"errors"`
}

type importResponse struct {
	Rooms        *importFileReport `json:"rooms,omitempty"`
	Courses      *importFileReport `json:"courses,omitempty"`
	Appointments *importFileReport `json:"appointments,omitempty"`
}

// Import handles POST /import. The form may carry any subset of the parts
// "rooms", "courses" and "appointments"; files are applied in that order so
// an upload can reference rooms and courses it creates itself only when ids
// are already known. Row and service errors are collected per file instead
// of failing the whole upload.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.rooms == nil || h.courses == nil || h.appointments == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Import", "principal_id", principal.UserID)

	if err := r.ParseMultipartForm(importMaxMemory); err != nil {
		logger.ErrorContext(r.Context(), "failed to parse import upload", "error", err, "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	var resp importResponse
	failed := false

	if file, ok := h.formFile(r, "rooms"); ok {
		report := h.importRooms(r.Context(), principal, file)
		file.Close()
		resp.Rooms = report
		failed = failed || report == nil
	}
	if file, ok := h.formFile(r, "courses"); ok {
		report := h.importCourses(r.Context(), principal, file)
		file.Close()
		resp.Courses = report
		failed = failed || report == nil
	}
	if file, ok := h.formFile(r, "appointments"); ok {
		report := h.importAppointments(r.Context(), principal, file)
		file.Close()
		resp.Appointments = report
		failed = failed || report == nil
	}

	if failed {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if resp.Rooms == nil && resp.Courses == nil && resp.Appointments == nil {
		logger.ErrorContext(r.Context(), "import upload without files", "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger.InfoContext(r.Context(), "import processed",
		"rooms", reportCount(resp.Rooms),
		"courses", reportCount(resp.Courses),
		"appointments", reportCount(resp.Appointments))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *ImportHandler) formFile(r *http.Request, field string) (multipart.File, bool) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, false
	}
	return file, true
}

func (h *ImportHandler) importRooms(ctx context.Context, principal application.Principal, file io.Reader) *importFileReport {
	inputs, rowErrors, err := importer.ParseRooms(file)
	if err != nil {
		h.log(ctx, "Import", "file", "rooms").ErrorContext(ctx, "failed to parse rooms csv", "error", err, "error_kind", "bad_request")
		return nil
	}

	report := newFileReport(rowErrors)
	for _, input := range inputs {
		if _, err := h.rooms.CreateRoom(ctx, principal, input); err != nil {
			report.Errors = append(report.Errors, itemError(input.Name, err))
			continue
		}
		report.Created++
	}
	return report
}

func (h *ImportHandler) importCourses(ctx context.Context, principal application.Principal, file io.Reader) *importFileReport {
	inputs, rowErrors, err := importer.ParseCourses(file)
	if err != nil {
		h.log(ctx, "Import", "file", "courses").ErrorContext(ctx, "failed to parse courses csv", "error", err, "error_kind", "bad_request")
		return nil
	}

	report := newFileReport(rowErrors)
	for _, input := range inputs {
		if _, err := h.courses.CreateCourse(ctx, principal, input); err != nil {
			report.Errors = append(report.Errors, itemError(input.Name, err))
			continue
		}
		report.Created++
	}
	return report
}

func (h *ImportHandler) importAppointments(ctx context.Context, principal application.Principal, file io.Reader) *importFileReport {
	inputs, rowErrors, err := importer.ParseAppointments(file)
	if err != nil {
		h.log(ctx, "Import", "file", "appointments").ErrorContext(ctx, "failed to parse appointments csv", "error", err, "error_kind", "bad_request")
		return nil
	}

	report := newFileReport(rowErrors)
	for _, input := range inputs {
		params := application.CreateAppointmentParams{Principal: principal, Input: input}
		if _, err := h.appointments.CreateAppointment(ctx, params); err != nil {
			report.Errors = append(report.Errors, itemError(input.Name, err))
			continue
		}
		report.Created++
	}
	return report
}

func newFileReport(rowErrors []importer.RowError) *importFileReport {
	report := &importFileReport{Errors: []string{}}
	for _, rowErr := range rowErrors {
		report.Errors = append(report.Errors, rowErr.Error())
	}
	return report
}

func itemError(name string, err error) string {
	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		messages := make([]string, 0, len(vErr.FieldErrors))
		for _, message := range localizeValidationErrors(vErr) {
			messages = append(messages, message)
		}
		sort.Strings(messages)
		return fmt.Sprintf("%s: %s", name, strings.Join(messages, " "))
	}

	switch {
	case errors.Is(err, application.ErrNotFound):
		return fmt.Sprintf("%s: %s", name, "Die angeforderte Ressource wurde nicht gefunden.")
	case errors.Is(err, application.ErrAlreadyExists):
		return fmt.Sprintf("%s: %s", name, "Eine Ressource mit dieser Kennung existiert bereits.")
	case errors.Is(err, application.ErrUnauthorized):
		return fmt.Sprintf("%s: %s", name, "Sie sind nicht berechtigt, diese Aktion auszuführen.")
	default:
		return fmt.Sprintf("%s: %s", name, "Es ist ein interner Fehler aufgetreten.")
	}
}

func reportCount(report *importFileReport) int {
	if report == nil {
		return 0
	}
	return report.Created
}
