package timetable

import (
	"testing"
	"time"
)

func TestFilter(t *testing.T) {
	t.Parallel()

	monday := dateOf(2025, time.March, 3)
	tuesday := dateOf(2025, time.March, 4)

	appointments := []Appointment{
		{ID: "T003", CourseID: "C002", RoomID: "R001", Type: "lecture", SemesterID: "S1", Date: tuesday, StartMinutes: minutes(540), DurationMinutes: 90},
		{ID: "T001", CourseID: "C001", RoomID: "R001", Type: "exercise", SemesterID: "S1", Date: monday, StartMinutes: minutes(600), DurationMinutes: 90},
		{ID: "T004", CourseID: "C001", RoomID: "R002", Type: "lecture", SemesterID: "S2"},
		{ID: "T002", CourseID: "C003", RoomID: "R002", Type: "exercise", SemesterID: "S1", Date: monday, StartMinutes: minutes(480), DurationMinutes: 90},
	}

	t.Run("no filters returns everything, unassigned first", func(t *testing.T) {
		t.Parallel()

		got := Filter(appointments, referenceCourses(), FilterOptions{})
		wantOrder := []string{"T004", "T002", "T001", "T003"}
		if len(got) != len(wantOrder) {
			t.Fatalf("got %d appointments, want %d", len(got), len(wantOrder))
		}
		for i, id := range wantOrder {
			if got[i].ID != id {
				t.Fatalf("order[%d] = %s, want %s", i, got[i].ID, id)
			}
		}
	})

	t.Run("filters compose", func(t *testing.T) {
		t.Parallel()

		got := Filter(appointments, referenceCourses(), FilterOptions{SemesterID: "S1", Type: "exercise", RoomID: "R001"})
		if len(got) != 1 || got[0].ID != "T001" {
			t.Fatalf("got %v, want just T001", got)
		}
	})

	t.Run("lecturer filter resolves through courses", func(t *testing.T) {
		t.Parallel()

		// C001 and C003 both belong to A. Huber.
		got := Filter(appointments, referenceCourses(), FilterOptions{Lecturer: "A. Huber"})
		if len(got) != 3 {
			t.Fatalf("got %d appointments, want 3", len(got))
		}
		for _, appt := range got {
			if appt.CourseID == "C002" {
				t.Fatalf("C002 belongs to a different lecturer: %v", appt)
			}
		}
	})

	t.Run("date filter uses ISO format", func(t *testing.T) {
		t.Parallel()

		got := Filter(appointments, referenceCourses(), FilterOptions{Date: "2025-03-03"})
		if len(got) != 2 {
			t.Fatalf("got %d appointments, want 2", len(got))
		}
	})

	t.Run("input is not reordered", func(t *testing.T) {
		t.Parallel()

		_ = Filter(appointments, referenceCourses(), FilterOptions{})
		if appointments[0].ID != "T003" {
			t.Fatalf("input slice mutated, first element now %s", appointments[0].ID)
		}
	})
}
