package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Nico104/PlanningToolV2/internal/persistence"
	"github.com/Nico104/PlanningToolV2/internal/timetable"
)

type appointmentRepoStub struct {
	records   []persistence.Appointment
	listCalls int
	err       error
}

func (s *appointmentRepoStub) CreateAppointment(ctx context.Context, appointment persistence.Appointment) error {
	if s.err != nil {
		return s.err
	}
	for _, record := range s.records {
		if record.ID == appointment.ID {
			return persistence.ErrAlreadyExists
		}
	}
	s.records = append(s.records, appointment)
	return nil
}

func (s *appointmentRepoStub) UpdateAppointment(ctx context.Context, appointment persistence.Appointment) error {
	if s.err != nil {
		return s.err
	}
	for i, record := range s.records {
		if record.ID == appointment.ID {
			s.records[i] = appointment
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (s *appointmentRepoStub) GetAppointment(ctx context.Context, id string) (persistence.Appointment, error) {
	if s.err != nil {
		return persistence.Appointment{}, s.err
	}
	for _, record := range s.records {
		if record.ID == id {
			return record, nil
		}
	}
	return persistence.Appointment{}, persistence.ErrNotFound
}

func (s *appointmentRepoStub) ListAppointments(ctx context.Context, filter persistence.AppointmentFilter) ([]persistence.Appointment, error) {
	s.listCalls++
	if s.err != nil {
		return nil, s.err
	}
	var out []persistence.Appointment
	for _, record := range s.records {
		if filter.SemesterID != "" && record.SemesterID != filter.SemesterID {
			continue
		}
		if filter.CourseID != "" && record.CourseID != filter.CourseID {
			continue
		}
		if filter.RoomID != "" && record.RoomID != filter.RoomID {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func (s *appointmentRepoStub) DeleteAppointment(ctx context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	for i, record := range s.records {
		if record.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return persistence.ErrNotFound
}

type courseCatalogStub struct {
	courses []persistence.Course
	err     error
}

func (s *courseCatalogStub) GetCourse(ctx context.Context, id string) (persistence.Course, error) {
	if s.err != nil {
		return persistence.Course{}, s.err
	}
	for _, course := range s.courses {
		if course.ID == id {
			return course, nil
		}
	}
	return persistence.Course{}, persistence.ErrNotFound
}

func (s *courseCatalogStub) ListCourses(ctx context.Context) ([]persistence.Course, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]persistence.Course, len(s.courses))
	copy(out, s.courses)
	return out, nil
}

type roomCatalogStub struct {
	rooms []persistence.Room
	err   error
}

func (s *roomCatalogStub) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if s.err != nil {
		return persistence.Room{}, s.err
	}
	for _, room := range s.rooms {
		if room.ID == id {
			return room, nil
		}
	}
	return persistence.Room{}, persistence.ErrNotFound
}

func (s *roomCatalogStub) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]persistence.Room, len(s.rooms))
	copy(out, s.rooms)
	return out, nil
}

type invalidatorStub struct {
	calls int
}

func (s *invalidatorStub) Invalidate() { s.calls++ }

func fixedNow() time.Time {
	return time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func testCatalogs() (*courseCatalogStub, *roomCatalogStub) {
	courses := &courseCatalogStub{courses: []persistence.Course{
		{ID: "C001", Name: "Signalverarbeitung", LecturerName: "Huber", LecturerEmail: "huber@example.edu", AllowedTypes: []string{"Vorlesung", "Übung"}},
		{ID: "C002", Name: "Regelungstechnik", LecturerName: "Maier", LecturerEmail: "maier@example.edu"},
	}}
	rooms := &roomCatalogStub{rooms: []persistence.Room{
		{ID: "R001", Name: "HS 1", Capacity: 30},
	}}
	return courses, rooms
}

func validAppointmentInput() AppointmentInput {
	return AppointmentInput{
		Name:            "SV Vorlesung",
		CourseID:        "C001",
		Type:            "Vorlesung",
		Date:            datePtr(2026, time.March, 9),
		StartMinutes:    intPtr(8 * 60),
		DurationMinutes: 90,
		RoomID:          "R001",
		SemesterID:      "2026S",
	}
}

func TestCreateAppointmentAllocatesSequentialIDs(t *testing.T) {
	t.Parallel()

	repo := &appointmentRepoStub{records: []persistence.Appointment{
		{ID: "T001", CourseID: "C001"},
		{ID: "T007", CourseID: "C001"},
		{ID: "imported-42", CourseID: "C001"},
	}}
	courses, rooms := testCatalogs()
	service := NewAppointmentService(repo, courses, rooms, nil, fixedNow)

	created, err := service.CreateAppointment(context.Background(), CreateAppointmentParams{
		Principal: Principal{UserID: "u1"},
		Input:     validAppointmentInput(),
	})
	if err != nil {
		t.Fatalf("CreateAppointment returned error: %v", err)
	}
	if created.ID != "T008" {
		t.Fatalf("expected id T008, got %q", created.ID)
	}
}

func TestCreateAppointmentRequiresPrincipal(t *testing.T) {
	t.Parallel()

	repo := &appointmentRepoStub{}
	courses, rooms := testCatalogs()
	service := NewAppointmentService(repo, courses, rooms, nil, fixedNow)

	_, err := service.CreateAppointment(context.Background(), CreateAppointmentParams{Input: validAppointmentInput()})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestCreateAppointmentValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*AppointmentInput)
		field  string
	}{
		{"missing course", func(in *AppointmentInput) { in.CourseID = "" }, "course_id"},
		{"unknown course", func(in *AppointmentInput) { in.CourseID = "C999" }, "course_id"},
		{"type not allowed", func(in *AppointmentInput) { in.Type = "Praktikum" }, "type"},
		{"negative duration", func(in *AppointmentInput) { in.DurationMinutes = -10 }, "duration_minutes"},
		{"start past midnight", func(in *AppointmentInput) { in.StartMinutes = intPtr(24 * 60) }, "start_minutes"},
		{"empty group", func(in *AppointmentInput) { in.Group = &timetable.Group{Name: "G1", Size: 0} }, "group"},
		{"unknown room", func(in *AppointmentInput) { in.RoomID = "R999" }, "room_id"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := &appointmentRepoStub{}
			courses, rooms := testCatalogs()
			service := NewAppointmentService(repo, courses, rooms, nil, fixedNow)

			input := validAppointmentInput()
			tc.mutate(&input)

			_, err := service.CreateAppointment(context.Background(), CreateAppointmentParams{
				Principal: Principal{UserID: "u1"},
				Input:     input,
			})
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := vErr.FieldErrors[tc.field]; !ok {
				t.Fatalf("expected field error for %q, got %v", tc.field, vErr.FieldErrors)
			}
		})
	}
}

func TestCreateAppointmentAcceptsTypeWhenCourseUnrestricted(t *testing.T) {
	t.Parallel()

	repo := &appointmentRepoStub{}
	courses, rooms := testCatalogs()
	service := NewAppointmentService(repo, courses, rooms, nil, fixedNow)

	input := validAppointmentInput()
	input.CourseID = "C002"
	input.Type = "Praktikum"

	if _, err := service.CreateAppointment(context.Background(), CreateAppointmentParams{
		Principal: Principal{UserID: "u1"},
		Input:     input,
	}); err != nil {
		t.Fatalf("CreateAppointment returned error: %v", err)
	}
}

func TestCreateAppointmentInvalidatesCache(t *testing.T) {
	t.Parallel()

	repo := &appointmentRepoStub{}
	courses, rooms := testCatalogs()
	invalidator := &invalidatorStub{}
	service := NewAppointmentService(repo, courses, rooms, invalidator, fixedNow)

	if _, err := service.CreateAppointment(context.Background(), CreateAppointmentParams{
		Principal: Principal{UserID: "u1"},
		Input:     validAppointmentInput(),
	}); err != nil {
		t.Fatalf("CreateAppointment returned error: %v", err)
	}
	if invalidator.calls != 1 {
		t.Fatalf("expected 1 invalidation, got %d", invalidator.calls)
	}
}

func TestUpdateAppointmentUnknownID(t *testing.T) {
	t.Parallel()

	repo := &appointmentRepoStub{}
	courses, rooms := testCatalogs()
	service := NewAppointmentService(repo, courses, rooms, nil, fixedNow)

	_, err := service.UpdateAppointment(context.Background(), UpdateAppointmentParams{
		Principal:     Principal{UserID: "u1"},
		AppointmentID: "T042",
		Input:         validAppointmentInput(),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAppointmentInvalidatesCache(t *testing.T) {
	t.Parallel()

	repo := &appointmentRepoStub{records: []persistence.Appointment{{ID: "T001", CourseID: "C001"}}}
	courses, rooms := testCatalogs()
	invalidator := &invalidatorStub{}
	service := NewAppointmentService(repo, courses, rooms, invalidator, fixedNow)

	if err := service.DeleteAppointment(context.Background(), Principal{UserID: "u1"}, "T001"); err != nil {
		t.Fatalf("DeleteAppointment returned error: %v", err)
	}
	if invalidator.calls != 1 {
		t.Fatalf("expected 1 invalidation, got %d", invalidator.calls)
	}
	if len(repo.records) != 0 {
		t.Fatalf("expected record removed, %d left", len(repo.records))
	}
}

func TestListAppointmentsAppliesFilter(t *testing.T) {
	t.Parallel()

	repo := &appointmentRepoStub{records: []persistence.Appointment{
		{ID: "T001", CourseID: "C001", Type: "Vorlesung", SemesterID: "2026S"},
		{ID: "T002", CourseID: "C001", Type: "Übung", SemesterID: "2026S"},
		{ID: "T003", CourseID: "C002", Type: "Vorlesung", SemesterID: "2026S"},
	}}
	courses, rooms := testCatalogs()
	service := NewAppointmentService(repo, courses, rooms, nil, fixedNow)

	listed, err := service.ListAppointments(context.Background(), ListAppointmentsParams{
		Principal: Principal{UserID: "u1"},
		Filter:    timetable.FilterOptions{Type: "Vorlesung"},
	})
	if err != nil {
		t.Fatalf("ListAppointments returned error: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 appointments, got %d", len(listed))
	}
	for _, appt := range listed {
		if appt.Type != "Vorlesung" {
			t.Fatalf("unexpected appointment %q of type %q", appt.ID, appt.Type)
		}
	}
}
