package application

import (
	"github.com/Nico104/PlanningToolV2/internal/persistence"
	"github.com/Nico104/PlanningToolV2/internal/timetable"
)

func toTimetableAppointment(record persistence.Appointment) timetable.Appointment {
	appointment := timetable.Appointment{
		ID:                 record.ID,
		Name:               record.Name,
		CourseID:           record.CourseID,
		Type:               record.Type,
		Date:               record.Date,
		StartMinutes:       record.StartMinutes,
		DurationMinutes:    record.DurationMinutes,
		RoomID:             record.RoomID,
		AttendanceRequired: record.AttendanceRequired,
		Note:               record.Note,
		SemesterID:         record.SemesterID,
	}
	if record.GroupName != nil {
		group := timetable.Group{Name: *record.GroupName}
		if record.GroupSize != nil {
			group.Size = *record.GroupSize
		}
		appointment.Group = &group
	}
	return appointment
}

func toTimetableAppointments(records []persistence.Appointment) []timetable.Appointment {
	appointments := make([]timetable.Appointment, 0, len(records))
	for _, record := range records {
		appointments = append(appointments, toTimetableAppointment(record))
	}
	return appointments
}

func toAppointmentRecord(id string, input AppointmentInput) persistence.Appointment {
	record := persistence.Appointment{
		ID:                 id,
		Name:               input.Name,
		CourseID:           input.CourseID,
		Type:               input.Type,
		Date:               input.Date,
		StartMinutes:       input.StartMinutes,
		DurationMinutes:    input.DurationMinutes,
		RoomID:             input.RoomID,
		AttendanceRequired: input.AttendanceRequired,
		Note:               input.Note,
		SemesterID:         input.SemesterID,
	}
	if input.Group != nil {
		name := input.Group.Name
		size := input.Group.Size
		record.GroupName = &name
		record.GroupSize = &size
	}
	return record
}

func toTimetableRoom(record persistence.Room) timetable.Room {
	return timetable.Room{ID: record.ID, Name: record.Name, Capacity: record.Capacity}
}

func toTimetableRooms(records []persistence.Room) []timetable.Room {
	rooms := make([]timetable.Room, 0, len(records))
	for _, record := range records {
		rooms = append(rooms, toTimetableRoom(record))
	}
	return rooms
}

func toTimetableCourse(record persistence.Course) timetable.Course {
	return timetable.Course{
		ID:   record.ID,
		Name: record.Name,
		Lecturer: timetable.Lecturer{
			Name:  record.LecturerName,
			Email: record.LecturerEmail,
		},
		AllowedTypes: record.AllowedTypes,
	}
}

func toTimetableCourses(records []persistence.Course) []timetable.Course {
	courses := make([]timetable.Course, 0, len(records))
	for _, record := range records {
		courses = append(courses, toTimetableCourse(record))
	}
	return courses
}

func toRuleConfig(settings []persistence.RuleSetting) timetable.RuleConfig {
	config := make(timetable.RuleConfig, len(settings))
	for _, setting := range settings {
		config[setting.Key] = timetable.RuleSettings{
			Enabled:            setting.Enabled,
			Description:        setting.Description,
			EventType:          setting.EventType,
			MinCapacityPercent: setting.MinCapacityPercent,
			MinDurationMinutes: setting.MinDurationMinutes,
			MaxDurationMinutes: setting.MaxDurationMinutes,
		}
	}
	return config
}

func toUser(record persistence.User) User {
	return User{
		ID:          record.ID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
		IsAdmin:     record.IsAdmin,
		Disabled:    record.Disabled,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}
