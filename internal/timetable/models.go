package timetable

import (
	"fmt"
	"time"
)

// UnassignedDate is the sentinel calendar date legacy data files use for
// appointments that have not been placed on the calendar yet. Dates equal to
// this value are treated as absent.
var UnassignedDate = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

// Severity classifies how serious a detected issue is.
type Severity string

const (
	// SeverityConflict marks a hard scheduling collision between two appointments.
	SeverityConflict Severity = "conflict"
	// SeverityWarning marks a data-quality or policy observation.
	SeverityWarning Severity = "warning"
)

// Category identifies which detection rule produced an issue.
type Category string

const (
	CategoryRoom             Category = "room"
	CategoryGroup            Category = "group"
	CategoryLecturer         Category = "lecturer"
	CategoryIncomplete       Category = "incomplete"
	CategoryDuration         Category = "duration"
	CategoryWeekend          Category = "weekend"
	CategorySaturday         Category = "saturday"
	CategorySunday           Category = "sunday"
	CategoryCapacityLecture  Category = "capacity_lecture"
	CategoryCapacityExercise Category = "capacity_exercise"
)

// Lecturer identifies the person responsible for a course. The email address
// is the identity key for lecturer grouping; the display name is not unique.
type Lecturer struct {
	Name  string
	Email string
}

// Course represents a teachable unit with one lecturer and a set of permitted
// appointment types.
type Course struct {
	ID           string
	Name         string
	Lecturer     Lecturer
	AllowedTypes []string
}

// Room represents a bookable room with a seating capacity.
type Room struct {
	ID       string
	Name     string
	Capacity int
}

// Group is a named cohort of students with a headcount.
type Group struct {
	Name string
	Size int
}

// Semester bounds a teaching period.
type Semester struct {
	ID    string
	Name  string
	Start time.Time
	End   time.Time
}

// Appointment is a single scheduled session of a course. Date and
// StartMinutes are optional; an appointment missing either is unassigned.
// StartMinutes counts wall-clock minutes from midnight on Date.
type Appointment struct {
	ID                 string
	Name               string
	CourseID           string
	Type               string
	Date               *time.Time
	StartMinutes       *int
	DurationMinutes    int
	RoomID             string
	Group              *Group
	AttendanceRequired bool
	Note               string
	SemesterID         string
}

// HasDate reports whether the appointment carries a real calendar date,
// treating the sentinel as absent.
func (a Appointment) HasDate() bool {
	return a.Date != nil && !a.Date.Equal(UnassignedDate)
}

// Assigned reports whether the appointment is placed on the calendar: a real
// date plus a start time. Duration is deliberately not part of the predicate;
// a zero duration is surfaced by the incomplete rule instead.
func (a Appointment) Assigned() bool {
	return a.HasDate() && a.StartMinutes != nil
}

// EndMinutes returns the exclusive end of the appointment in minutes from
// midnight. The second return value is false when start or duration is unset.
func (a Appointment) EndMinutes() (int, bool) {
	if a.StartMinutes == nil || a.DurationMinutes <= 0 {
		return 0, false
	}
	return *a.StartMinutes + a.DurationMinutes, true
}

// Issue describes one detected conflict or warning. The denormalized display
// fields carry resolved names so callers can render issues without re-joining
// reference data.
type Issue struct {
	Severity       Severity
	Category       Category
	AppointmentIDs []string
	Message        string
	Date           *time.Time
	TimeFrom       *int
	TimeTo         *int
	RoomName       string
	CourseName     string
	GroupName      string
}

// Window is a free, grid-aligned time span within a day, in minutes from
// midnight. The span is half-open: [From, To).
type Window struct {
	FromMinutes int
	ToMinutes   int
}

// Minutes returns the window length.
func (w Window) Minutes() int {
	return w.ToMinutes - w.FromMinutes
}

// FormatClock renders minutes from midnight as HH:MM wall-clock time.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseClock converts an HH:MM string to minutes from midnight.
func ParseClock(value string) (int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("timetable: invalid clock value %q: %w", value, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("timetable: clock value %q out of range", value)
	}
	return hour*60 + minute, nil
}
