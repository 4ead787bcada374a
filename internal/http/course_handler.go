package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Nico104/PlanningToolV2/internal/application"
	"github.com/Nico104/PlanningToolV2/internal/timetable"
)

type courseService interface {
	CreateCourse(ctx context.Context, principal application.Principal, input application.CourseInput) (timetable.Course, error)
	UpdateCourse(ctx context.Context, principal application.Principal, id string, input application.CourseInput) (timetable.Course, error)
	GetCourse(ctx context.Context, principal application.Principal, id string) (timetable.Course, error)
	ListCourses(ctx context.Context, principal application.Principal) ([]timetable.Course, error)
	DeleteCourse(ctx context.Context, principal application.Principal, id string) error
}

type CourseHandler struct {
	service   courseService
	responder responder
	logger    *slog.Logger
}

func NewCourseHandler(service courseService, logger *slog.Logger) *CourseHandler {
	base := defaultLogger(logger)
	return &CourseHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *CourseHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "CourseHandler", operation, attrs...)
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req courseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode course request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	course, err := h.service.CreateCourse(r.Context(), principal, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "course creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("course_id", course.ID).InfoContext(r.Context(), "course created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, courseResponse{Course: toCourseDTO(course)})
}

func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	courseID, ok := CourseIDFromContext(r.Context())
	if !ok || strings.TrimSpace(courseID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req courseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "course_id", courseID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode course update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "course_id", courseID)

	course, err := h.service.UpdateCourse(r.Context(), principal, courseID, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "course update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "course updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, courseResponse{Course: toCourseDTO(course)})
}

func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	courses, err := h.service.ListCourses(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "List", "principal_id", principal.UserID).ErrorContext(r.Context(), "course listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]courseDTO, 0, len(courses))
	for _, course := range courses {
		dtos = append(dtos, toCourseDTO(course))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, courseListResponse{Courses: dtos})
}

func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	courseID, ok := CourseIDFromContext(r.Context())
	if !ok || strings.TrimSpace(courseID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "course_id", courseID)

	if err := h.service.DeleteCourse(r.Context(), principal, courseID); err != nil {
		logger.ErrorContext(r.Context(), "course deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "course deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type courseRequest struct {
	Name          string   `json:"name"`
	LecturerName  string   `json:"lecturer_name"`
	LecturerEmail string   `json:"lecturer_email"`
	AllowedTypes  []string `json:"allowed_types"`
}

func (req courseRequest) toInput() application.CourseInput {
	return application.CourseInput{
		Name: strings.TrimSpace(req.Name),
		Lecturer: timetable.Lecturer{
			Name:  strings.TrimSpace(req.LecturerName),
			Email: strings.TrimSpace(req.LecturerEmail),
		},
		AllowedTypes: req.AllowedTypes,
	}
}

type courseDTO struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	LecturerName  string   `json:"lecturer_name"`
	LecturerEmail string   `json:"lecturer_email"`
	AllowedTypes  []string `json:"allowed_types,omitempty"`
}

type courseResponse struct {
	Course courseDTO `json:"course"`
}

type courseListResponse struct {
	Courses []courseDTO `json:"courses"`
}

func toCourseDTO(course timetable.Course) courseDTO {
	return courseDTO{
		ID:            course.ID,
		Name:          course.Name,
		LecturerName:  course.Lecturer.Name,
		LecturerEmail: course.Lecturer.Email,
		AllowedTypes:  course.AllowedTypes,
	}
}
