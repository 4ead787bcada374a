package timetable

// Overlaps reports whether two appointments occupy intersecting time on the
// clock. Both sides need a start time and a positive duration; anything less
// can never overlap. The comparison is half-open, so an appointment ending at
// 10:00 does not overlap one starting at 10:00.
//
// Dates are not compared here. Callers bucket appointments by date first;
// appointments are assumed not to span midnight.
func Overlaps(a, b Appointment) bool {
	if a.StartMinutes == nil || b.StartMinutes == nil {
		return false
	}
	if a.DurationMinutes <= 0 || b.DurationMinutes <= 0 {
		return false
	}

	aEnd := *a.StartMinutes + a.DurationMinutes
	bEnd := *b.StartMinutes + b.DurationMinutes

	return *a.StartMinutes < bEnd && *b.StartMinutes < aEnd
}
