package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Nico104/PlanningToolV2/internal/persistence"
	"github.com/Nico104/PlanningToolV2/internal/timetable"
)

func newAvailabilityFixture(records []persistence.Appointment) *AvailabilityService {
	repo := &appointmentRepoStub{records: records}
	_, rooms := testCatalogs()
	return NewAvailabilityService(repo, rooms, timetable.AvailabilityOptions{
		DayStartMinutes: 8 * 60,
		DayEndMinutes:   18 * 60,
		GridMinutes:     15,
	})
}

func TestFindFreeSlotsReturnsGapBetweenBookings(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	service := newAvailabilityFixture([]persistence.Appointment{
		assignedRecord("T001", "C001", "R001", day, 8*60, 120),
		assignedRecord("T002", "C002", "R001", day, 11*60, 7*60),
	})

	windows, err := service.FindFreeSlots(context.Background(), FreeSlotsParams{
		Principal:       Principal{UserID: "u1"},
		RoomID:          "R001",
		Date:            day,
		DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("FindFreeSlots returned error: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d (%v)", len(windows), windows)
	}
	if windows[0].FromMinutes != 10*60 || windows[0].ToMinutes != 11*60 {
		t.Fatalf("expected window 10:00-11:00, got %s-%s",
			timetable.FormatClock(windows[0].FromMinutes), timetable.FormatClock(windows[0].ToMinutes))
	}
}

func TestFindFreeSlotsIgnoresOtherRoomsAndDays(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	nextDay := day.AddDate(0, 0, 1)
	service := newAvailabilityFixture([]persistence.Appointment{
		assignedRecord("T001", "C001", "R002", day, 8*60, 600),
		assignedRecord("T002", "C002", "R001", nextDay, 8*60, 600),
	})

	windows, err := service.FindFreeSlots(context.Background(), FreeSlotsParams{
		Principal:       Principal{UserID: "u1"},
		RoomID:          "R001",
		Date:            day,
		DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("FindFreeSlots returned error: %v", err)
	}
	if len(windows) != 1 || windows[0].FromMinutes != 8*60 || windows[0].ToMinutes != 18*60 {
		t.Fatalf("expected the whole working day free, got %v", windows)
	}
}

func TestFindFreeSlotsUnknownRoom(t *testing.T) {
	t.Parallel()

	service := newAvailabilityFixture(nil)
	_, err := service.FindFreeSlots(context.Background(), FreeSlotsParams{
		Principal:       Principal{UserID: "u1"},
		RoomID:          "R999",
		Date:            time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindFreeSlotsRequiresPrincipal(t *testing.T) {
	t.Parallel()

	service := newAvailabilityFixture(nil)
	_, err := service.FindFreeSlots(context.Background(), FreeSlotsParams{
		RoomID:          "R001",
		Date:            time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestFindFreeSlotsValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		params FreeSlotsParams
		field  string
	}{
		{
			name: "missing room",
			params: FreeSlotsParams{
				Principal:       Principal{UserID: "u1"},
				Date:            time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC),
				DurationMinutes: 60,
			},
			field: "room_id",
		},
		{
			name: "zero date",
			params: FreeSlotsParams{
				Principal:       Principal{UserID: "u1"},
				RoomID:          "R001",
				DurationMinutes: 60,
			},
			field: "date",
		},
		{
			name: "non-positive duration",
			params: FreeSlotsParams{
				Principal: Principal{UserID: "u1"},
				RoomID:    "R001",
				Date:      time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC),
			},
			field: "duration_minutes",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			service := newAvailabilityFixture(nil)
			_, err := service.FindFreeSlots(context.Background(), tc.params)
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
