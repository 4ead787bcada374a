// Package importer parses CSV exports of rooms, courses and appointments
// into caller inputs for the application services. Parsing is tolerant:
// malformed rows are reported individually instead of aborting the whole
// file.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/Nico104/PlanningToolV2/internal/application"
	"github.com/Nico104/PlanningToolV2/internal/timetable"
)

const dateLayout = "2006-01-02"

// RowError describes a single rejected CSV row. Line counts from the top of
// the file, header included, so line 2 is the first data row.
type RowError struct {
	Line    int
	Message string
}

func (e RowError) Error() string {
	return fmt.Sprintf("Zeile %d: %s", e.Line, e.Message)
}

type roomRow struct {
	Name     string `csv:"name"`
	Capacity string `csv:"capacity"`
}

type courseRow struct {
	Name          string `csv:"name"`
	LecturerName  string `csv:"lecturer_name"`
	LecturerEmail string `csv:"lecturer_email"`
	AllowedTypes  string `csv:"allowed_types"`
}

type appointmentRow struct {
	Name               string `csv:"name"`
	CourseID           string `csv:"course_id"`
	Type               string `csv:"type"`
	Date               string `csv:"date"`
	Start              string `csv:"start"`
	DurationMinutes    string `csv:"duration_minutes"`
	RoomID             string `csv:"room_id"`
	GroupName          string `csv:"group_name"`
	GroupSize          string `csv:"group_size"`
	SemesterID         string `csv:"semester_id"`
	AttendanceRequired string `csv:"attendance_required"`
	Note               string `csv:"note"`
}

// ParseRooms decodes a room CSV export. Rows that fail validation are
// returned as RowErrors alongside the inputs that parsed cleanly.
func ParseRooms(r io.Reader) ([]application.RoomInput, []RowError, error) {
	rows := []*roomRow{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, nil, fmt.Errorf("importer: rooms csv: %w", err)
	}

	inputs := make([]application.RoomInput, 0, len(rows))
	rowErrors := []RowError{}
	for i, row := range rows {
		line := i + 2
		name := strings.TrimSpace(row.Name)
		if name == "" {
			rowErrors = append(rowErrors, RowError{Line: line, Message: "Name fehlt"})
			continue
		}
		capacity, err := strconv.Atoi(strings.TrimSpace(row.Capacity))
		if err != nil || capacity < 0 {
			rowErrors = append(rowErrors, RowError{Line: line, Message: fmt.Sprintf("Ungültige Kapazität: %q", row.Capacity)})
			continue
		}
		inputs = append(inputs, application.RoomInput{Name: name, Capacity: capacity})
	}
	return inputs, rowErrors, nil
}

// ParseCourses decodes a course CSV export. The allowed_types column holds a
// pipe separated list, e.g. "Vorlesung|Übung"; an empty column leaves the
// course unrestricted.
func ParseCourses(r io.Reader) ([]application.CourseInput, []RowError, error) {
	rows := []*courseRow{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, nil, fmt.Errorf("importer: courses csv: %w", err)
	}

	inputs := make([]application.CourseInput, 0, len(rows))
	rowErrors := []RowError{}
	for i, row := range rows {
		line := i + 2
		name := strings.TrimSpace(row.Name)
		if name == "" {
			rowErrors = append(rowErrors, RowError{Line: line, Message: "Name fehlt"})
			continue
		}
		input := application.CourseInput{
			Name: name,
			Lecturer: timetable.Lecturer{
				Name:  strings.TrimSpace(row.LecturerName),
				Email: strings.TrimSpace(strings.ToLower(row.LecturerEmail)),
			},
		}
		for _, part := range strings.Split(row.AllowedTypes, "|") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				input.AllowedTypes = append(input.AllowedTypes, trimmed)
			}
		}
		inputs = append(inputs, input)
	}
	return inputs, rowErrors, nil
}

// ParseAppointments decodes an appointment CSV export. Date and start are
// optional; rows leaving them empty import as unassigned appointments.
func ParseAppointments(r io.Reader) ([]application.AppointmentInput, []RowError, error) {
	rows := []*appointmentRow{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, nil, fmt.Errorf("importer: appointments csv: %w", err)
	}

	inputs := make([]application.AppointmentInput, 0, len(rows))
	rowErrors := []RowError{}
	for i, row := range rows {
		line := i + 2
		input, err := toAppointmentInput(row)
		if err != nil {
			rowErrors = append(rowErrors, RowError{Line: line, Message: err.Error()})
			continue
		}
		inputs = append(inputs, input)
	}
	return inputs, rowErrors, nil
}

func toAppointmentInput(row *appointmentRow) (application.AppointmentInput, error) {
	input := application.AppointmentInput{
		Name:       strings.TrimSpace(row.Name),
		CourseID:   strings.TrimSpace(row.CourseID),
		Type:       strings.TrimSpace(row.Type),
		RoomID:     strings.TrimSpace(row.RoomID),
		SemesterID: strings.TrimSpace(row.SemesterID),
		Note:       strings.TrimSpace(row.Note),
	}
	if input.Name == "" {
		return application.AppointmentInput{}, errors.New("Name fehlt")
	}
	if input.CourseID == "" {
		return application.AppointmentInput{}, errors.New("Lehrveranstaltung fehlt")
	}

	if value := strings.TrimSpace(row.Date); value != "" {
		parsed, err := time.Parse(dateLayout, value)
		if err != nil {
			return application.AppointmentInput{}, fmt.Errorf("Ungültiges Datum: %q", row.Date)
		}
		input.Date = &parsed
	}

	if value := strings.TrimSpace(row.Start); value != "" {
		minutes, err := timetable.ParseClock(value)
		if err != nil {
			return application.AppointmentInput{}, fmt.Errorf("Ungültige Startzeit: %q", row.Start)
		}
		input.StartMinutes = &minutes
	}

	duration, err := strconv.Atoi(strings.TrimSpace(row.DurationMinutes))
	if err != nil || duration <= 0 {
		return application.AppointmentInput{}, fmt.Errorf("Ungültige Dauer: %q", row.DurationMinutes)
	}
	input.DurationMinutes = duration

	groupName := strings.TrimSpace(row.GroupName)
	groupSize := strings.TrimSpace(row.GroupSize)
	if groupName != "" || groupSize != "" {
		size, err := strconv.Atoi(groupSize)
		if err != nil || size <= 0 {
			return application.AppointmentInput{}, fmt.Errorf("Ungültige Gruppengröße: %q", row.GroupSize)
		}
		input.Group = &timetable.Group{Name: groupName, Size: size}
	}

	if value := strings.TrimSpace(row.AttendanceRequired); value != "" {
		required, err := strconv.ParseBool(value)
		if err != nil {
			return application.AppointmentInput{}, fmt.Errorf("Ungültiger Anwesenheitswert: %q", row.AttendanceRequired)
		}
		input.AttendanceRequired = required
	}

	return input, nil
}
