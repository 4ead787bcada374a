package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Nico104/PlanningToolV2/internal/persistence"
)

// CreateAppointment inserts a new appointment.
func (s *Store) CreateAppointment(ctx context.Context, appointment persistence.Appointment) error {
	if appointment.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	query := `
		INSERT INTO appointments (
			id, name, course_id, type, date, start_minutes, duration_minutes,
			room_id, group_name, group_size, attendance_required, note,
			semester_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.Name,
		appointment.CourseID,
		appointment.Type,
		nullDate(appointment.Date),
		nullInt(appointment.StartMinutes),
		appointment.DurationMinutes,
		appointment.RoomID,
		nullString(appointment.GroupName),
		nullInt(appointment.GroupSize),
		boolToInt(appointment.AttendanceRequired),
		appointment.Note,
		appointment.SemesterID,
		formatTimestamp(appointment.CreatedAt),
		formatTimestamp(appointment.UpdatedAt),
	)
	return mapError(err)
}

// UpdateAppointment rewrites an existing appointment.
func (s *Store) UpdateAppointment(ctx context.Context, appointment persistence.Appointment) error {
	if appointment.ID == "" {
		return persistence.ErrConstraintViolation
	}

	appointment.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE appointments SET
			name = ?, course_id = ?, type = ?, date = ?, start_minutes = ?,
			duration_minutes = ?, room_id = ?, group_name = ?, group_size = ?,
			attendance_required = ?, note = ?, semester_id = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		appointment.Name,
		appointment.CourseID,
		appointment.Type,
		nullDate(appointment.Date),
		nullInt(appointment.StartMinutes),
		appointment.DurationMinutes,
		appointment.RoomID,
		nullString(appointment.GroupName),
		nullInt(appointment.GroupSize),
		boolToInt(appointment.AttendanceRequired),
		appointment.Note,
		appointment.SemesterID,
		formatTimestamp(appointment.UpdatedAt),
		appointment.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}

// GetAppointment retrieves an appointment by id.
func (s *Store) GetAppointment(ctx context.Context, id string) (persistence.Appointment, error) {
	row := s.db.QueryRowContext(ctx, appointmentSelect+" WHERE id = ?", id)
	appointment, err := scanAppointment(row)
	if err != nil {
		return persistence.Appointment{}, mapError(err)
	}
	return appointment, nil
}

// ListAppointments returns the appointments matching the filter, unassigned
// first and then chronologically.
func (s *Store) ListAppointments(ctx context.Context, filter persistence.AppointmentFilter) ([]persistence.Appointment, error) {
	query := appointmentSelect
	var clauses []string
	var args []any
	if filter.SemesterID != "" {
		clauses = append(clauses, "semester_id = ?")
		args = append(args, filter.SemesterID)
	}
	if filter.CourseID != "" {
		clauses = append(clauses, "course_id = ?")
		args = append(args, filter.CourseID)
	}
	if filter.RoomID != "" {
		clauses = append(clauses, "room_id = ?")
		args = append(args, filter.RoomID)
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY date IS NOT NULL, date, start_minutes, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var appointments []persistence.Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, appointment)
	}
	return appointments, rows.Err()
}

// DeleteAppointment removes an appointment by id.
func (s *Store) DeleteAppointment(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM appointments WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}

const appointmentSelect = `
	SELECT id, name, course_id, type, date, start_minutes, duration_minutes,
		room_id, group_name, group_size, attendance_required, note,
		semester_id, created_at, updated_at
	FROM appointments
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (persistence.Appointment, error) {
	var (
		appointment persistence.Appointment
		date        sql.NullString
		start       sql.NullInt64
		groupName   sql.NullString
		groupSize   sql.NullInt64
		attendance  int
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(
		&appointment.ID,
		&appointment.Name,
		&appointment.CourseID,
		&appointment.Type,
		&date,
		&start,
		&appointment.DurationMinutes,
		&appointment.RoomID,
		&groupName,
		&groupSize,
		&attendance,
		&appointment.Note,
		&appointment.SemesterID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Appointment{}, err
	}

	if appointment.Date, err = scanDate(date); err != nil {
		return persistence.Appointment{}, err
	}
	appointment.StartMinutes = scanIntPtr(start)
	appointment.GroupName = scanStringPtr(groupName)
	appointment.GroupSize = scanIntPtr(groupSize)
	appointment.AttendanceRequired = attendance != 0

	if appointment.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Appointment{}, err
	}
	if appointment.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Appointment{}, err
	}
	return appointment, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func requireRowsAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
