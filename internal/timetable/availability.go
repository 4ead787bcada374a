package timetable

import (
	"errors"
	"sort"
	"time"
)

// ErrInvalidGrid indicates the slot grid is zero or negative. Snapping to
// such a grid is undefined, so the finder refuses it outright instead of
// dividing by zero.
var ErrInvalidGrid = errors.New("timetable: slot grid must be positive")

// AvailabilityOptions bounds the bookable day and sets the slot grid, all in
// minutes from midnight.
type AvailabilityOptions struct {
	DayStartMinutes int
	DayEndMinutes   int
	GridMinutes     int
}

// span is a half-open busy interval in minutes from midnight.
type span struct {
	start int
	end   int
}

// FindFreeSlots computes the free, grid-aligned windows of at least
// wantMinutes in the given room on the given date. Every returned window
// starts and ends on a multiple of the grid and never intersects a booked
// interval. An empty result means the day cannot fit the request.
func FindFreeSlots(appointments []Appointment, roomID string, date time.Time, wantMinutes int, opts AvailabilityOptions) ([]Window, error) {
	if opts.GridMinutes <= 0 {
		return nil, ErrInvalidGrid
	}

	busy := busyIntervals(appointments, roomID, date)
	merged := mergeSpans(busy)
	free := complementSpans(merged, opts.DayStartMinutes, opts.DayEndMinutes)

	var windows []Window
	for _, gap := range free {
		from := ceilToGrid(gap.start, opts.GridMinutes)
		to := floorToGrid(gap.end, opts.GridMinutes)
		if to-from >= wantMinutes {
			windows = append(windows, Window{FromMinutes: from, ToMinutes: to})
		}
	}
	return windows, nil
}

// busyIntervals collects the booked spans of the room on the date, sorted by
// start. Appointments without a start time or positive duration occupy
// nothing.
func busyIntervals(appointments []Appointment, roomID string, date time.Time) []span {
	var busy []span
	for _, appt := range appointments {
		if appt.RoomID != roomID || appt.Date == nil || !appt.Date.Equal(date) {
			continue
		}
		if appt.StartMinutes == nil || appt.DurationMinutes <= 0 {
			continue
		}
		busy = append(busy, span{start: *appt.StartMinutes, end: *appt.StartMinutes + appt.DurationMinutes})
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].start < busy[j].start })
	return busy
}

// mergeSpans coalesces sorted spans in one left-to-right sweep. A span folds
// into its predecessor when it starts at or before the running merged end, so
// back-to-back bookings form one block.
func mergeSpans(sorted []span) []span {
	var merged []span
	for _, s := range sorted {
		if len(merged) == 0 || s.start > merged[len(merged)-1].end {
			merged = append(merged, s)
			continue
		}
		if s.end > merged[len(merged)-1].end {
			merged[len(merged)-1].end = s.end
		}
	}
	return merged
}

// complementSpans returns the gaps between merged busy spans within
// [dayStart, dayEnd).
func complementSpans(merged []span, dayStart, dayEnd int) []span {
	var free []span
	cursor := dayStart
	for _, s := range merged {
		if s.start > cursor {
			free = append(free, span{start: cursor, end: min(s.start, dayEnd)})
		}
		if s.end > cursor {
			cursor = s.end
		}
		if cursor >= dayEnd {
			return free
		}
	}
	if cursor < dayEnd {
		free = append(free, span{start: cursor, end: dayEnd})
	}
	return free
}

func ceilToGrid(minutes, grid int) int {
	return (minutes + grid - 1) / grid * grid
}

func floorToGrid(minutes, grid int) int {
	return minutes / grid * grid
}
