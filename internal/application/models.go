package application

import (
	"time"

	"github.com/Nico104/PlanningToolV2/internal/timetable"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// AppointmentInput captures caller provided appointment fields. Optional
// scheduling fields stay nil while the appointment is unassigned.
type AppointmentInput struct {
	Name               string
	CourseID           string
	Type               string
	Date               *time.Time
	StartMinutes       *int
	DurationMinutes    int
	RoomID             string
	Group              *timetable.Group
	AttendanceRequired bool
	Note               string
	SemesterID         string
}

// CreateAppointmentParams wraps the data required to create an appointment.
type CreateAppointmentParams struct {
	Principal Principal
	Input     AppointmentInput
}

// UpdateAppointmentParams wraps the data required to update an appointment.
type UpdateAppointmentParams struct {
	Principal     Principal
	AppointmentID string
	Input         AppointmentInput
}

// ListAppointmentsParams narrows and orders appointment listings.
type ListAppointmentsParams struct {
	Principal Principal
	Filter    timetable.FilterOptions
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name     string
	Capacity int
}

// CourseInput captures caller provided course fields.
type CourseInput struct {
	Name         string
	Lecturer     timetable.Lecturer
	AllowedTypes []string
}

// UserInput captures caller provided user fields.
type UserInput struct {
	Email       string
	DisplayName string
	Password    string
	IsAdmin     bool
	Disabled    bool
}

// CreateUserParams wraps the data required to create an account.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
}

// UpdateUserParams wraps the data required to update an account. An empty
// Password leaves the stored hash untouched.
type UpdateUserParams struct {
	Principal Principal
	UserID    string
	Input     UserInput
}

// User represents a planner account exposed to callers. The password hash
// never leaves the application layer.
type User struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
	Disabled    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Session represents an issued authentication session.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// AuthenticateParams carries login credentials.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult bundles the authenticated user with the issued session.
type AuthenticateResult struct {
	User    User
	Session Session
}

// RuleSetting is the caller facing view of a stored detection rule
// configuration. Pointer fields stay nil when the stored setting leaves the
// rule default in place.
type RuleSetting struct {
	Key                string
	Enabled            *bool
	Description        string
	EventType          string
	MinCapacityPercent *int
	MinDurationMinutes *int
	MaxDurationMinutes *int
	UpdatedAt          time.Time
}

// RuleSettingInput captures caller provided rule configuration fields.
type RuleSettingInput struct {
	Key                string
	Enabled            *bool
	Description        string
	EventType          string
	MinCapacityPercent *int
	MinDurationMinutes *int
	MaxDurationMinutes *int
}

// DetectConflictsParams narrows a conflict detection pass.
type DetectConflictsParams struct {
	Principal  Principal
	SemesterID string
	Categories []timetable.Category
}

// FreeSlotsParams describes a free-window query for one room and day.
type FreeSlotsParams struct {
	Principal       Principal
	RoomID          string
	Date            time.Time
	DurationMinutes int
}
