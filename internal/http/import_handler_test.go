package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Nico104/PlanningToolV2/internal/application"
	"github.com/Nico104/PlanningToolV2/internal/timetable"
)

type roomServiceStub struct {
	created []application.RoomInput
	err     error
}

func (s *roomServiceStub) CreateRoom(ctx context.Context, principal application.Principal, input application.RoomInput) (timetable.Room, error) {
	if s.err != nil {
		return timetable.Room{}, s.err
	}
	s.created = append(s.created, input)
	return timetable.Room{ID: "R001", Name: input.Name, Capacity: input.Capacity}, nil
}

func (s *roomServiceStub) UpdateRoom(ctx context.Context, principal application.Principal, id string, input application.RoomInput) (timetable.Room, error) {
	return timetable.Room{}, s.err
}

func (s *roomServiceStub) GetRoom(ctx context.Context, principal application.Principal, id string) (timetable.Room, error) {
	return timetable.Room{}, s.err
}

func (s *roomServiceStub) ListRooms(ctx context.Context, principal application.Principal) ([]timetable.Room, error) {
	return nil, s.err
}

func (s *roomServiceStub) DeleteRoom(ctx context.Context, principal application.Principal, id string) error {
	return s.err
}

type courseServiceStub struct {
	created []application.CourseInput
	err     error
}

func (s *courseServiceStub) CreateCourse(ctx context.Context, principal application.Principal, input application.CourseInput) (timetable.Course, error) {
	if s.err != nil {
		return timetable.Course{}, s.err
	}
	s.created = append(s.created, input)
	return timetable.Course{ID: "C001", Name: input.Name}, nil
}

func (s *courseServiceStub) UpdateCourse(ctx context.Context, principal application.Principal, id string, input application.CourseInput) (timetable.Course, error) {
	return timetable.Course{}, s.err
}

func (s *courseServiceStub) GetCourse(ctx context.Context, principal application.Principal, id string) (timetable.Course, error) {
	return timetable.Course{}, s.err
}

func (s *courseServiceStub) ListCourses(ctx context.Context, principal application.Principal) ([]timetable.Course, error) {
	return nil, s.err
}

func (s *courseServiceStub) DeleteCourse(ctx context.Context, principal application.Principal, id string) error {
	return s.err
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for field, content := range files {
		part, err := writer.CreateFormFile(field, field+".csv")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestImportCreatesRecordsAndReportsRowErrors(t *testing.T) {
	t.Parallel()

	rooms := &roomServiceStub{}
	courses := &courseServiceStub{}
	appointments := &appointmentServiceStub{appointment: timetable.Appointment{ID: "T001"}}
	handler := protectedRouter(RouterConfig{
		Import: NewImportHandler(rooms, courses, appointments, nil),
	}, application.Principal{UserID: "u1", IsAdmin: true})

	body, contentType := multipartBody(t, map[string]string{
		"rooms": "name,capacity\nHS 1,120\n,40",
		"appointments": "name,course_id,type,date,start,duration_minutes,room_id,group_name,group_size,semester_id,attendance_required,note\n" +
			"SV Vorlesung,C001,Vorlesung,2026-03-09,08:00,90,R001,,,2026S,,",
	})

	req := httptest.NewRequest(http.MethodPost, "/import", body)
	req.Header.Set("Authorization", "Bearer test-token")
	req.Header.Set("Content-Type", contentType)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", recorder.Code, recorder.Body.String())
	}

	if len(rooms.created) != 1 || rooms.created[0].Name != "HS 1" {
		t.Fatalf("unexpected created rooms %+v", rooms.created)
	}
	if stub := appointments.createdInput; stub.CourseID != "C001" || stub.StartMinutes == nil || *stub.StartMinutes != 8*60 {
		t.Fatalf("unexpected appointment input %+v", stub)
	}

	var resp importResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Rooms == nil || resp.Rooms.Created != 1 {
		t.Fatalf("unexpected rooms report %+v", resp.Rooms)
	}
	if len(resp.Rooms.Errors) != 1 || !strings.Contains(resp.Rooms.Errors[0], "Zeile 3") {
		t.Fatalf("unexpected rooms errors %v", resp.Rooms.Errors)
	}
	if resp.Courses != nil {
		t.Fatalf("expected no courses report, got %+v", resp.Courses)
	}
	if resp.Appointments == nil || resp.Appointments.Created != 1 || len(resp.Appointments.Errors) != 0 {
		t.Fatalf("unexpected appointments report %+v", resp.Appointments)
	}
}

func TestImportReportsServiceRejections(t *testing.T) {
	t.Parallel()

	vErr := &application.ValidationError{FieldErrors: map[string]string{
		"course_id": "course does not exist",
	}}
	appointments := &appointmentServiceStub{err: vErr}
	handler := protectedRouter(RouterConfig{
		Import: NewImportHandler(&roomServiceStub{}, &courseServiceStub{}, appointments, nil),
	}, application.Principal{UserID: "u1", IsAdmin: true})

	body, contentType := multipartBody(t, map[string]string{
		"appointments": "name,course_id,type,date,start,duration_minutes,room_id,group_name,group_size,semester_id,attendance_required,note\n" +
			"SV Vorlesung,C999,Vorlesung,2026-03-09,08:00,90,,,,,,",
	})

	req := httptest.NewRequest(http.MethodPost, "/import", body)
	req.Header.Set("Authorization", "Bearer test-token")
	req.Header.Set("Content-Type", contentType)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", recorder.Code, recorder.Body.String())
	}

	var resp importResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Appointments == nil || resp.Appointments.Created != 0 {
		t.Fatalf("unexpected appointments report %+v", resp.Appointments)
	}
	if len(resp.Appointments.Errors) != 1 || !strings.Contains(resp.Appointments.Errors[0], "Lehrveranstaltung existiert nicht") {
		t.Fatalf("unexpected appointment errors %v", resp.Appointments.Errors)
	}
}

func TestImportWithoutFilesIsRejected(t *testing.T) {
	t.Parallel()

	handler := protectedRouter(RouterConfig{
		Import: NewImportHandler(&roomServiceStub{}, &courseServiceStub{}, &appointmentServiceStub{}, nil),
	}, application.Principal{UserID: "u1", IsAdmin: true})

	body, contentType := multipartBody(t, map[string]string{})

	req := httptest.NewRequest(http.MethodPost, "/import", body)
	req.Header.Set("Authorization", "Bearer test-token")
	req.Header.Set("Content-Type", contentType)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}
