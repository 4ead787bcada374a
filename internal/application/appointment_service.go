package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Nico104/PlanningToolV2/internal/persistence"
	"github.com/Nico104/PlanningToolV2/internal/timetable"
)

// AppointmentRepository captures the persistence interactions needed by the
// appointment service.
type AppointmentRepository interface {
	CreateAppointment(ctx context.Context, appointment persistence.Appointment) error
	UpdateAppointment(ctx context.Context, appointment persistence.Appointment) error
	GetAppointment(ctx context.Context, id string) (persistence.Appointment, error)
	ListAppointments(ctx context.Context, filter persistence.AppointmentFilter) ([]persistence.Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error
}

// CourseCatalog exposes course lookup operations.
type CourseCatalog interface {
	GetCourse(ctx context.Context, id string) (persistence.Course, error)
	ListCourses(ctx context.Context) ([]persistence.Course, error)
}

// RoomCatalog exposes room lookup operations.
type RoomCatalog interface {
	GetRoom(ctx context.Context, id string) (persistence.Room, error)
	ListRooms(ctx context.Context) ([]persistence.Room, error)
}

// CacheInvalidator drops any cached detection results after a write.
type CacheInvalidator interface {
	Invalidate()
}

// AppointmentService orchestrates validation and persistence for appointment
// operations.
type AppointmentService struct {
	appointments AppointmentRepository
	courses      CourseCatalog
	rooms        RoomCatalog
	invalidator  CacheInvalidator
	now          func() time.Time
	logger       *slog.Logger
}

// NewAppointmentService wires dependencies for appointment operations. The
// invalidator may be nil when no detection cache is in play.
func NewAppointmentService(appointments AppointmentRepository, courses CourseCatalog, rooms RoomCatalog, invalidator CacheInvalidator, now func() time.Time) *AppointmentService {
	return NewAppointmentServiceWithLogger(appointments, courses, rooms, invalidator, now, nil)
}

// NewAppointmentServiceWithLogger constructs an AppointmentService with a
// specified logger.
func NewAppointmentServiceWithLogger(appointments AppointmentRepository, courses CourseCatalog, rooms RoomCatalog, invalidator CacheInvalidator, now func() time.Time, logger *slog.Logger) *AppointmentService {
	if now == nil {
		now = time.Now
	}
	return &AppointmentService{
		appointments: appointments,
		courses:      courses,
		rooms:        rooms,
		invalidator:  invalidator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *AppointmentService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AppointmentService", operation, attrs...)
}

// CreateAppointment validates the input, allocates the next T-prefixed id and
// persists the appointment.
func (s *AppointmentService) CreateAppointment(ctx context.Context, params CreateAppointmentParams) (timetable.Appointment, error) {
	if s == nil {
		return timetable.Appointment{}, fmt.Errorf("AppointmentService is nil")
	}
	if params.Principal.UserID == "" {
		return timetable.Appointment{}, ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "CreateAppointment", "principal_id", params.Principal.UserID)

	if err := s.validateInput(ctx, params.Input); err != nil {
		logger.ErrorContext(ctx, "appointment rejected", "error", err, "error_kind", ErrorKind(err))
		return timetable.Appointment{}, err
	}

	existing, err := s.appointments.ListAppointments(ctx, persistence.AppointmentFilter{})
	if err != nil {
		return timetable.Appointment{}, fmt.Errorf("list appointments for id allocation: %w", err)
	}
	ids := make([]string, 0, len(existing))
	for _, record := range existing {
		ids = append(ids, record.ID)
	}
	id := NextPrefixID("T", ids, 3)

	record := toAppointmentRecord(id, params.Input)
	if err := s.appointments.CreateAppointment(ctx, record); err != nil {
		return timetable.Appointment{}, mapPersistenceError(err)
	}

	s.invalidate()
	logger.With("appointment_id", id).InfoContext(ctx, "appointment created")
	return toTimetableAppointment(record), nil
}

// UpdateAppointment validates and persists changes to an existing appointment.
func (s *AppointmentService) UpdateAppointment(ctx context.Context, params UpdateAppointmentParams) (timetable.Appointment, error) {
	if s == nil {
		return timetable.Appointment{}, fmt.Errorf("AppointmentService is nil")
	}
	if params.Principal.UserID == "" {
		return timetable.Appointment{}, ErrUnauthorized
	}
	if strings.TrimSpace(params.AppointmentID) == "" {
		vErr := &ValidationError{}
		vErr.add("id", "id is required")
		return timetable.Appointment{}, vErr
	}

	logger := s.loggerWith(ctx, "UpdateAppointment",
		"principal_id", params.Principal.UserID,
		"appointment_id", params.AppointmentID,
	)

	if err := s.validateInput(ctx, params.Input); err != nil {
		logger.ErrorContext(ctx, "appointment rejected", "error", err, "error_kind", ErrorKind(err))
		return timetable.Appointment{}, err
	}

	record := toAppointmentRecord(params.AppointmentID, params.Input)
	if err := s.appointments.UpdateAppointment(ctx, record); err != nil {
		return timetable.Appointment{}, mapPersistenceError(err)
	}

	s.invalidate()
	logger.InfoContext(ctx, "appointment updated")
	return toTimetableAppointment(record), nil
}

// GetAppointment returns a single appointment by id.
func (s *AppointmentService) GetAppointment(ctx context.Context, principal Principal, id string) (timetable.Appointment, error) {
	record, err := s.appointments.GetAppointment(ctx, id)
	if err != nil {
		return timetable.Appointment{}, mapPersistenceError(err)
	}
	return toTimetableAppointment(record), nil
}

// ListAppointments returns the filtered appointments in display order,
// unassigned first.
func (s *AppointmentService) ListAppointments(ctx context.Context, params ListAppointmentsParams) ([]timetable.Appointment, error) {
	records, err := s.appointments.ListAppointments(ctx, persistence.AppointmentFilter{
		SemesterID: params.Filter.SemesterID,
		CourseID:   params.Filter.CourseID,
		RoomID:     params.Filter.RoomID,
	})
	if err != nil {
		return nil, mapPersistenceError(err)
	}

	courses, err := s.courses.ListCourses(ctx)
	if err != nil {
		return nil, mapPersistenceError(err)
	}

	return timetable.Filter(toTimetableAppointments(records), toTimetableCourses(courses), params.Filter), nil
}

// DeleteAppointment removes an appointment.
func (s *AppointmentService) DeleteAppointment(ctx context.Context, principal Principal, id string) error {
	if principal.UserID == "" {
		return ErrUnauthorized
	}
	if err := s.appointments.DeleteAppointment(ctx, id); err != nil {
		return mapPersistenceError(err)
	}
	s.invalidate()
	s.loggerWith(ctx, "DeleteAppointment", "appointment_id", id).InfoContext(ctx, "appointment deleted")
	return nil
}

// validateInput checks the structural rules the engine itself does not
// enforce, among them that the appointment type is permitted by the owning
// course.
func (s *AppointmentService) validateInput(ctx context.Context, input AppointmentInput) error {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.CourseID) == "" {
		vErr.add("course_id", "course is required")
	} else {
		course, err := s.courses.GetCourse(ctx, input.CourseID)
		switch {
		case errors.Is(err, persistence.ErrNotFound):
			vErr.add("course_id", "course does not exist")
		case err != nil:
			return fmt.Errorf("resolve course: %w", err)
		default:
			if input.Type != "" && len(course.AllowedTypes) > 0 && !containsString(course.AllowedTypes, input.Type) {
				vErr.add("type", "type not allowed for course")
			}
		}
	}

	if input.DurationMinutes < 0 {
		vErr.add("duration_minutes", "duration must not be negative")
	}
	if input.StartMinutes != nil && (*input.StartMinutes < 0 || *input.StartMinutes >= 24*60) {
		vErr.add("start_minutes", "start must fall within the day")
	}
	if input.Group != nil && input.Group.Size <= 0 {
		vErr.add("group", "group size must be positive")
	}

	if input.RoomID != "" {
		_, err := s.rooms.GetRoom(ctx, input.RoomID)
		switch {
		case errors.Is(err, persistence.ErrNotFound):
			vErr.add("room_id", "room does not exist")
		case err != nil:
			return fmt.Errorf("resolve room: %w", err)
		}
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func (s *AppointmentService) invalidate() {
	if s.invalidator != nil {
		s.invalidator.Invalidate()
	}
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func mapPersistenceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrAlreadyExists):
		return ErrAlreadyExists
	default:
		return err
	}
}
