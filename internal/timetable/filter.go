package timetable

import "sort"

// FilterOptions narrows an appointment collection by exact field matches.
// Zero-valued fields do not filter. The lecturer filter matches by display
// name against the owning course and needs course reference data to resolve.
type FilterOptions struct {
	SemesterID string
	RoomID     string
	CourseID   string
	Type       string
	Lecturer   string
	Date       string // YYYY-MM-DD
}

// Filter returns the matching appointments ordered for display: unassigned
// first, then by date, start time and id. The input slice is left untouched.
func Filter(appointments []Appointment, courses []Course, opts FilterOptions) []Appointment {
	courseIndex := make(map[string]Course, len(courses))
	for _, course := range courses {
		courseIndex[course.ID] = course
	}

	out := make([]Appointment, 0, len(appointments))
	for _, appt := range appointments {
		if opts.SemesterID != "" && appt.SemesterID != opts.SemesterID {
			continue
		}
		if opts.RoomID != "" && appt.RoomID != opts.RoomID {
			continue
		}
		if opts.CourseID != "" && appt.CourseID != opts.CourseID {
			continue
		}
		if opts.Type != "" && appt.Type != opts.Type {
			continue
		}
		if opts.Lecturer != "" {
			course, ok := courseIndex[appt.CourseID]
			if !ok || course.Lecturer.Name != opts.Lecturer {
				continue
			}
		}
		if opts.Date != "" {
			if appt.Date == nil || appt.Date.Format("2006-01-02") != opts.Date {
				continue
			}
		}
		out = append(out, appt)
	}

	SortForDisplay(out)
	return out
}

// SortForDisplay orders appointments in place using the convention shared
// with the conflict views: appointments still waiting for a date come first,
// the rest chronologically, ties broken by id.
func SortForDisplay(appointments []Appointment) {
	sort.SliceStable(appointments, func(i, j int) bool {
		a, b := appointments[i], appointments[j]

		aUnassigned := a.Date == nil
		bUnassigned := b.Date == nil
		if aUnassigned != bUnassigned {
			return aUnassigned
		}
		if !aUnassigned && !a.Date.Equal(*b.Date) {
			return a.Date.Before(*b.Date)
		}

		aStart := 0
		if a.StartMinutes != nil {
			aStart = *a.StartMinutes
		}
		bStart := 0
		if b.StartMinutes != nil {
			bStart = *b.StartMinutes
		}
		if aStart != bStart {
			return aStart < bStart
		}
		return a.ID < b.ID
	})
}
