package persistence

import "time"

// User represents a planner account.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// Room represents a bookable room record.
type Room struct {
	ID        string
	Name      string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Course represents a teachable unit and its responsible lecturer.
type Course struct {
	ID            string
	Name          string
	LecturerName  string
	LecturerEmail string
	AllowedTypes  []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Semester bounds a teaching period.
type Semester struct {
	ID        string
	Name      string
	Start     time.Time
	End       time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Appointment represents a stored session of a course. Optional scheduling
// fields stay nil until the appointment is placed on the calendar.
type Appointment struct {
	ID                 string
	Name               string
	CourseID           string
	Type               string
	Date               *time.Time
	StartMinutes       *int
	DurationMinutes    int
	RoomID             string
	GroupName          *string
	GroupSize          *int
	AttendanceRequired bool
	Note               string
	SemesterID         string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// RuleSetting stores the configuration of one detection rule.
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
