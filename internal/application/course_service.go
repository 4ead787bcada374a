package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/Nico104/PlanningToolV2/internal/persistence"
	"github.com/Nico104/PlanningToolV2/internal/timetable"
)

// CourseRepository captures the persistence interactions needed by the
// course service.
type CourseRepository interface {
	CreateCourse(ctx context.Context, course persistence.Course) error
	UpdateCourse(ctx context.Context, course persistence.Course) error
	GetCourse(ctx context.Context, id string) (persistence.Course, error)
	ListCourses(ctx context.Context) ([]persistence.Course, error)
	DeleteCourse(ctx context.Context, id string) error
}

// CourseService manages the course catalog.
type CourseService struct {
	courses     CourseRepository
	invalidator CacheInvalidator
	now         func() time.Time
	logger      *slog.Logger
}

// NewCourseService wires dependencies for course operations.
func NewCourseService(courses CourseRepository, invalidator CacheInvalidator, now func() time.Time) *CourseService {
	return NewCourseServiceWithLogger(courses, invalidator, now, nil)
}

// NewCourseServiceWithLogger constructs a CourseService with a specified logger.
func NewCourseServiceWithLogger(courses CourseRepository, invalidator CacheInvalidator, now func() time.Time, logger *slog.Logger) *CourseService {
	if now == nil {
		now = time.Now
	}
	return &CourseService{
		courses:     courses,
		invalidator: invalidator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *CourseService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CourseService", operation, attrs...)
}

// CreateCourse validates and stores a new course under the next C-prefixed id.
func (s *CourseService) CreateCourse(ctx context.Context, principal Principal, input CourseInput) (timetable.Course, error) {
	if s == nil {
		return timetable.Course{}, fmt.Errorf("CourseService is nil")
	}
	if principal.UserID == "" {
		return timetable.Course{}, ErrUnauthorized
	}
	if err := validateCourseInput(input); err != nil {
		return timetable.Course{}, err
	}

	existing, err := s.courses.ListCourses(ctx)
	if err != nil {
		return timetable.Course{}, mapPersistenceError(err)
	}
	ids := make([]string, 0, len(existing))
	for _, record := range existing {
		ids = append(ids, record.ID)
	}
	id := NextPrefixID("C", ids, 3)

	record := toCourseRecord(id, input)
	if err := s.courses.CreateCourse(ctx, record); err != nil {
		return timetable.Course{}, mapPersistenceError(err)
	}

	s.invalidate()
	s.loggerWith(ctx, "CreateCourse", "course_id", id).InfoContext(ctx, "course created")
	return toTimetableCourse(record), nil
}

// UpdateCourse validates and stores changes to a course.
func (s *CourseService) UpdateCourse(ctx context.Context, principal Principal, id string, input CourseInput) (timetable.Course, error) {
	if principal.UserID == "" {
		return timetable.Course{}, ErrUnauthorized
	}
	if err := validateCourseInput(input); err != nil {
		return timetable.Course{}, err
	}

	record := toCourseRecord(id, input)
	if err := s.courses.UpdateCourse(ctx, record); err != nil {
		return timetable.Course{}, mapPersistenceError(err)
	}

	s.invalidate()
	s.loggerWith(ctx, "UpdateCourse", "course_id", id).InfoContext(ctx, "course updated")
	return toTimetableCourse(record), nil
}

// GetCourse returns a course by id.
func (s *CourseService) GetCourse(ctx context.Context, principal Principal, id string) (timetable.Course, error) {
	record, err := s.courses.GetCourse(ctx, id)
	if err != nil {
		return timetable.Course{}, mapPersistenceError(err)
	}
	return toTimetableCourse(record), nil
}

// ListCourses returns the full course catalog.
func (s *CourseService) ListCourses(ctx context.Context, principal Principal) ([]timetable.Course, error) {
	records, err := s.courses.ListCourses(ctx)
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	return toTimetableCourses(records), nil
}

// DeleteCourse removes a course from the catalog.
func (s *CourseService) DeleteCourse(ctx context.Context, principal Principal, id string) error {
	if principal.UserID == "" {
		return ErrUnauthorized
	}
	if err := s.courses.DeleteCourse(ctx, id); err != nil {
		return mapPersistenceError(err)
	}
	s.invalidate()
	s.loggerWith(ctx, "DeleteCourse", "course_id", id).InfoContext(ctx, "course deleted")
	return nil
}

func (s *CourseService) invalidate() {
	if s.invalidator != nil {
		s.invalidator.Invalidate()
	}
}

func toCourseRecord(id string, input CourseInput) persistence.Course {
	return persistence.Course{
		ID:            id,
		Name:          input.Name,
		LecturerName:  input.Lecturer.Name,
		LecturerEmail: input.Lecturer.Email,
		AllowedTypes:  input.AllowedTypes,
	}
}

func validateCourseInput(input CourseInput) error {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if strings.TrimSpace(input.Lecturer.Email) == "" {
		vErr.add("lecturer_email", "lecturer email is required")
	} else if _, err := mail.ParseAddress(input.Lecturer.Email); err != nil {
		vErr.add("lecturer_email", "lecturer email is invalid")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
