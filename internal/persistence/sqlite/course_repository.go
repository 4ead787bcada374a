package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/Nico104/PlanningToolV2/internal/persistence"
)

// Allowed appointment types are stored as a single comma separated column;
// none of the type tags may contain a comma.
const allowedTypesSeparator = ","

// CreateCourse inserts a new course.
func (s *Store) CreateCourse(ctx context.Context, course persistence.Course) error {
	if course.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO courses (id, name, lecturer_name, lecturer_email, allowed_types, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		course.ID, course.Name, course.LecturerName, course.LecturerEmail,
		strings.Join(course.AllowedTypes, allowedTypesSeparator),
		formatTimestamp(course.CreatedAt), formatTimestamp(course.UpdatedAt),
	)
	return mapError(err)
}

// UpdateCourse rewrites an existing course.
func (s *Store) UpdateCourse(ctx context.Context, course persistence.Course) error {
	if course.ID == "" {
		return persistence.ErrConstraintViolation
	}

	course.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx,
		`UPDATE courses SET name = ?, lecturer_name = ?, lecturer_email = ?, allowed_types = ?, updated_at = ?
		 WHERE id = ?`,
		course.Name, course.LecturerName, course.LecturerEmail,
		strings.Join(course.AllowedTypes, allowedTypesSeparator),
		formatTimestamp(course.UpdatedAt), course.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}

// GetCourse retrieves a course by id.
func (s *Store) GetCourse(ctx context.Context, id string) (persistence.Course, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, lecturer_name, lecturer_email, allowed_types, created_at, updated_at
		 FROM courses WHERE id = ?`, id)
	course, err := scanCourse(row)
	if err != nil {
		return persistence.Course{}, mapError(err)
	}
	return course, nil
}

// ListCourses returns all courses ordered by id.
func (s *Store) ListCourses(ctx context.Context) ([]persistence.Course, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, lecturer_name, lecturer_email, allowed_types, created_at, updated_at
		 FROM courses ORDER BY id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var courses []persistence.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

// DeleteCourse removes a course by id.
func (s *Store) DeleteCourse(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}

func scanCourse(row rowScanner) (persistence.Course, error) {
	var (
		course       persistence.Course
		allowedTypes string
		createdAt    string
		updatedAt    string
	)
	err := row.Scan(&course.ID, &course.Name, &course.LecturerName, &course.LecturerEmail,
		&allowedTypes, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Course{}, err
	}
	if allowedTypes != "" {
		course.AllowedTypes = strings.Split(allowedTypes, allowedTypesSeparator)
	}
	if course.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Course{}, err
	}
	if course.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Course{}, err
	}
	return course, nil
}
