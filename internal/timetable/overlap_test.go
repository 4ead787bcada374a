package timetable

import (
	"testing"
	"time"
)

func minutes(v int) *int {
	return &v
}

func dateOf(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func timedAppointment(id string, start, duration int) Appointment {
	return Appointment{ID: id, StartMinutes: minutes(start), DurationMinutes: duration}
}

func TestOverlaps(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		a    Appointment
		b    Appointment
		want bool
	}{
		{
			name: "partial overlap",
			a:    timedAppointment("T001", 600, 60),
			b:    timedAppointment("T002", 630, 60),
			want: true,
		},
		{
			name: "containment",
			a:    timedAppointment("T001", 600, 120),
			b:    timedAppointment("T002", 630, 30),
			want: true,
		},
		{
			name: "identical spans",
			a:    timedAppointment("T001", 600, 60),
			b:    timedAppointment("T002", 600, 60),
			want: true,
		},
		{
			name: "touching intervals do not overlap",
			a:    timedAppointment("T001", 600, 60),
			b:    timedAppointment("T002", 660, 60),
			want: false,
		},
		{
			name: "disjoint",
			a:    timedAppointment("T001", 480, 60),
			b:    timedAppointment("T002", 720, 60),
			want: false,
		},
		{
			name: "missing start on one side",
			a:    Appointment{ID: "T001", DurationMinutes: 60},
			b:    timedAppointment("T002", 600, 60),
			want: false,
		},
		{
			name: "zero duration never overlaps",
			a:    timedAppointment("T001", 600, 0),
			b:    timedAppointment("T002", 600, 60),
			want: false,
		},
		{
			name: "negative duration never overlaps",
			a:    timedAppointment("T001", 600, -30),
			b:    timedAppointment("T002", 600, 60),
			want: false,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := Overlaps(tc.a, tc.b); got != tc.want {
				t.Fatalf("Overlaps(a, b) = %v, want %v", got, tc.want)
			}
			if got := Overlaps(tc.b, tc.a); got != tc.want {
				t.Fatalf("Overlaps(b, a) = %v, want %v (symmetry)", got, tc.want)
			}
		})
	}
}

func TestOverlapsBoundaryExclusivity(t *testing.T) {
	t.Parallel()

	// Sweep a window across a fixed one; overlap must hold exactly while the
	// half-open intervals intersect.
	fixed := timedAppointment("T100", 600, 60) // [600, 660)
	for start := 500; start <= 700; start += 10 {
		moving := timedAppointment("T200", start, 40)
		want := start < 660 && 600 < start+40
		if got := Overlaps(fixed, moving); got != want {
			t.Fatalf("Overlaps with moving start %d = %v, want %v", start, got, want)
		}
	}
}

func TestAppointmentAssigned(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		appt Appointment
		want bool
	}{
		{"date and start present", Appointment{Date: dateOf(2025, time.March, 3), StartMinutes: minutes(600)}, true},
		{"missing date", Appointment{StartMinutes: minutes(600)}, false},
		{"sentinel date counts as absent", Appointment{Date: &UnassignedDate, StartMinutes: minutes(600)}, false},
		{"missing start", Appointment{Date: dateOf(2025, time.March, 3)}, false},
		{"zero duration still assigned", Appointment{Date: dateOf(2025, time.March, 3), StartMinutes: minutes(600), DurationMinutes: 0}, true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.appt.Assigned(); got != tc.want {
				t.Fatalf("Assigned() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	t.Parallel()

	if got, err := ParseClock("08:30"); err != nil || got != 510 {
		t.Fatalf("ParseClock(08:30) = %d, %v", got, err)
	}
	if _, err := ParseClock("25:00"); err == nil {
		t.Fatal("expected error for out-of-range hour")
	}
	if _, err := ParseClock("bogus"); err == nil {
		t.Fatal("expected error for malformed value")
	}
	if got := FormatClock(510); got != "08:30" {
		t.Fatalf("FormatClock(510) = %q", got)
	}
}
