package timetable

import (
	"fmt"
	"strings"
	"time"
)

// Detector scans an appointment snapshot for scheduling conflicts and
// data-quality warnings. Reference data and rule configuration are fixed at
// construction; every DetectAll call recomputes from scratch, so a detector
// may be shared across goroutines as long as the config is not swapped
// mid-flight.
type Detector struct {
	courses map[string]Course
	rooms   map[string]Room
	config  RuleConfig
}

// NewDetector builds a detector over the given reference data. A nil config
// runs every rule with defaults.
func NewDetector(courses []Course, rooms []Room, config RuleConfig) *Detector {
	courseIndex := make(map[string]Course, len(courses))
	for _, course := range courses {
		courseIndex[course.ID] = course
	}
	roomIndex := make(map[string]Room, len(rooms))
	for _, room := range rooms {
		roomIndex[room.ID] = room
	}
	return &Detector{
		courses: courseIndex,
		rooms:   roomIndex,
		config:  config.Clone(),
	}
}

type ruleFunc func(d *Detector, appointments []Appointment, settings RuleSettings) []Issue

// registeredRule binds a config key to its implementation. Conflict rules see
// only the assigned subset; warning rules see the full snapshot and guard
// internally where needed.
type registeredRule struct {
	key          string
	assignedOnly bool
	run          ruleFunc
}

// Rules run in registry order; assignedOnly rules see only the assigned
// subset of the snapshot.
var registeredRules = []registeredRule{
	{RuleRoomConflict, true, (*Detector).roomConflicts},
	{RuleGroupConflict, true, (*Detector).groupConflicts},
	{RuleLecturerConflict, true, (*Detector).lecturerConflicts},
	{RuleIncomplete, false, (*Detector).incompleteWarnings},
	{RuleDuration, false, (*Detector).durationWarnings},
	{RuleWeekend, false, (*Detector).weekendWarnings},
	{RuleSaturday, false, (*Detector).saturdayWarnings},
	{RuleSunday, false, (*Detector).sundayWarnings},
	{RuleCapacityLecture, false, (*Detector).capacityLectureWarnings},
	{RuleCapacityExercise, false, (*Detector).capacityExerciseWarnings},
}

// RuleKeys lists every registered rule key in execution order.
func RuleKeys() []string {
	keys := make([]string, 0, len(registeredRules))
	for _, rule := range registeredRules {
		keys = append(keys, rule.key)
	}
	return keys
}

// DetectAll runs every enabled rule over the snapshot and returns the
// aggregated issues. The result carries no cross-rule deduplication; one
// appointment can legitimately show up in several categories. Inputs are
// never mutated.
func (d *Detector) DetectAll(appointments []Appointment) []Issue {
	if d == nil {
		return nil
	}

	assigned := make([]Appointment, 0, len(appointments))
	for _, appt := range appointments {
		if appt.Assigned() {
			assigned = append(assigned, appt)
		}
	}

	var issues []Issue
	for _, rule := range registeredRules {
		settings := d.config[rule.key]
		if !settings.enabled() {
			continue
		}
		subject := appointments
		if rule.assignedOnly {
			subject = assigned
		}
		issues = append(issues, rule.run(d, subject, settings)...)
	}
	return issues
}

// --- pairwise conflict rules ---

func (d *Detector) roomConflicts(appointments []Appointment, settings RuleSettings) []Issue {
	buckets := make(map[string][]Appointment)
	for _, appt := range appointments {
		if appt.RoomID == "" || appt.Date == nil {
			continue
		}
		key := appt.RoomID + "\x00" + appt.Date.Format("2006-01-02")
		buckets[key] = append(buckets[key], appt)
	}
	return d.pairwiseConflicts(buckets, CategoryRoom, "Raum-Konflikt", settings)
}

func (d *Detector) groupConflicts(appointments []Appointment, settings RuleSettings) []Issue {
	buckets := make(map[string][]Appointment)
	for _, appt := range appointments {
		if appt.Date == nil || appt.Group == nil {
			continue
		}
		key := appt.CourseID + "\x00" + appt.Group.Name + "\x00" + appt.Date.Format("2006-01-02")
		buckets[key] = append(buckets[key], appt)
	}
	return d.pairwiseConflicts(buckets, CategoryGroup, "Gruppen-Konflikt", settings)
}

func (d *Detector) lecturerConflicts(appointments []Appointment, settings RuleSettings) []Issue {
	buckets := make(map[string][]Appointment)
	for _, appt := range appointments {
		if appt.Date == nil {
			continue
		}
		course, ok := d.courses[appt.CourseID]
		if !ok || course.Lecturer.Email == "" {
			continue
		}
		key := course.Lecturer.Email + "\x00" + appt.Date.Format("2006-01-02")
		buckets[key] = append(buckets[key], appt)
	}
	return d.pairwiseConflicts(buckets, CategoryLecturer, "Vortragenden-Konflikt", settings)
}

// pairwiseConflicts visits every ordered pair within each bucket and emits an
// issue only when the first id sorts below the second, so each unordered pair
// is reported exactly once. The lexicographic tie-break is arbitrary but
// deterministic; it carries no scheduling meaning.
func (d *Detector) pairwiseConflicts(buckets map[string][]Appointment, category Category, prefix string, settings RuleSettings) []Issue {
	var issues []Issue
	for _, bucket := range buckets {
		for _, a := range bucket {
			for _, b := range bucket {
				if a.ID >= b.ID {
					continue
				}
				if Overlaps(a, b) {
					issues = append(issues, d.newPairIssue(category, prefix, a, b, settings))
				}
			}
		}
	}
	return issues
}

// newPairIssue builds a conflict issue covering the union of both time spans:
// the earlier start and the later end bound the whole collision window.
func (d *Detector) newPairIssue(category Category, prefix string, a, b Appointment, settings RuleSettings) Issue {
	courseNameA := d.courseName(a.CourseID)
	courseNameB := d.courseName(b.CourseID)
	roomNameA := d.roomName(a.RoomID)
	roomNameB := d.roomName(b.RoomID)

	var from, to *int
	if a.StartMinutes != nil && b.StartMinutes != nil {
		earlier := min(*a.StartMinutes, *b.StartMinutes)
		from = &earlier
	}
	endA, okA := a.EndMinutes()
	endB, okB := b.EndMinutes()
	if okA && okB {
		later := max(endA, endB)
		to = &later
	}

	courseLabel := courseNameA
	if courseNameA != courseNameB {
		courseLabel = courseNameA + ", " + courseNameB
	}
	roomLabel := roomNameA
	if category != CategoryRoom {
		roomLabel = roomNameA + ", " + roomNameB
	}

	message := fmt.Sprintf("%s: %s (%s) ↔ %s (%s)",
		withDescription(prefix, settings), courseNameA, roomNameA, courseNameB, roomNameB)

	return Issue{
		Severity:       SeverityConflict,
		Category:       category,
		AppointmentIDs: []string{a.ID, b.ID},
		Message:        message,
		Date:           a.Date,
		TimeFrom:       from,
		TimeTo:         to,
		RoomName:       roomLabel,
		CourseName:     courseLabel,
	}
}

// --- warning rules ---

func (d *Detector) incompleteWarnings(appointments []Appointment, settings RuleSettings) []Issue {
	var issues []Issue
	for _, appt := range appointments {
		var problems []string
		if !appt.HasDate() {
			problems = append(problems, "kein Datum")
		}
		if appt.StartMinutes == nil {
			problems = append(problems, "keine Startzeit")
		}
		if appt.DurationMinutes <= 0 {
			problems = append(problems, "keine Dauer")
		}
		if strings.TrimSpace(appt.RoomID) == "" {
			problems = append(problems, "kein Raum")
		}
		if len(problems) == 0 {
			continue
		}

		message := withDescription("Unvollständiger Termin: "+strings.Join(problems, ", "), settings)
		issue := d.newSingleIssue(CategoryIncomplete, appt, message)
		if !appt.HasDate() {
			issue.Date = nil
		}
		issues = append(issues, issue)
	}
	return issues
}

func (d *Detector) durationWarnings(appointments []Appointment, settings RuleSettings) []Issue {
	minMinutes := intOrDefault(settings.MinDurationMinutes, 30)
	maxMinutes := intOrDefault(settings.MaxDurationMinutes, 240)

	var issues []Issue
	for _, appt := range appointments {
		if !appt.Assigned() {
			continue
		}
		duration := appt.DurationMinutes
		// Zero durations belong to the incomplete rule.
		if duration <= 0 || (duration >= minMinutes && duration <= maxMinutes) {
			continue
		}
		message := withDescription(fmt.Sprintf("Ungewöhnliche Dauer: %d Minuten.", duration), settings)
		issues = append(issues, d.newSingleIssue(CategoryDuration, appt, message))
	}
	return issues
}

func (d *Detector) weekendWarnings(appointments []Appointment, settings RuleSettings) []Issue {
	return d.weekdayWarnings(appointments, settings, CategoryWeekend,
		"Termin liegt auf einem Wochenende.", time.Saturday, time.Sunday)
}

func (d *Detector) saturdayWarnings(appointments []Appointment, settings RuleSettings) []Issue {
	return d.weekdayWarnings(appointments, settings, CategorySaturday,
		"Termin liegt auf einem Samstag.", time.Saturday)
}

func (d *Detector) sundayWarnings(appointments []Appointment, settings RuleSettings) []Issue {
	return d.weekdayWarnings(appointments, settings, CategorySunday,
		"Termin liegt auf einem Sonntag.", time.Sunday)
}

func (d *Detector) weekdayWarnings(appointments []Appointment, settings RuleSettings, category Category, text string, days ...time.Weekday) []Issue {
	var issues []Issue
	for _, appt := range appointments {
		if !appt.HasDate() {
			continue
		}
		weekday := appt.Date.Weekday()
		matched := false
		for _, day := range days {
			if weekday == day {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		issues = append(issues, d.newSingleIssue(category, appt, withDescription(text, settings)))
	}
	return issues
}

func (d *Detector) capacityLectureWarnings(appointments []Appointment, settings RuleSettings) []Issue {
	return d.capacityWarnings(appointments, settings, CategoryCapacityLecture, "Vorlesung", "lecture", 60)
}

func (d *Detector) capacityExerciseWarnings(appointments []Appointment, settings RuleSettings) []Issue {
	return d.capacityWarnings(appointments, settings, CategoryCapacityExercise, "Übung", "exercise", 100)
}

// capacityWarnings flags rooms too small for the attending group. The
// required seat count truncates toward zero (integer division), matching the
// long-standing behavior of the data this tool grew up with.
func (d *Detector) capacityWarnings(appointments []Appointment, settings RuleSettings, category Category, label, defaultType string, defaultPercent int) []Issue {
	percent := intOrDefault(settings.MinCapacityPercent, defaultPercent)
	eventType := settings.EventType
	if eventType == "" {
		eventType = defaultType
	}

	var issues []Issue
	for _, appt := range appointments {
		if !appt.Assigned() || appt.Group == nil || appt.Type != eventType {
			continue
		}
		room, ok := d.rooms[appt.RoomID]
		if !ok {
			continue
		}
		required := appt.Group.Size * percent / 100
		if room.Capacity >= required {
			continue
		}
		message := withDescription(fmt.Sprintf("%s: Gruppe (%d Personen) benötigt %d%% Platz: %d, Raumkapazität: %d",
			label, appt.Group.Size, percent, required, room.Capacity), settings)
		issues = append(issues, d.newSingleIssue(category, appt, message))
	}
	return issues
}

// --- helpers ---

func (d *Detector) newSingleIssue(category Category, appt Appointment, message string) Issue {
	issue := Issue{
		Severity:       SeverityWarning,
		Category:       category,
		AppointmentIDs: []string{appt.ID},
		Message:        message,
		Date:           appt.Date,
		TimeFrom:       appt.StartMinutes,
		RoomName:       d.roomName(appt.RoomID),
		CourseName:     d.courseName(appt.CourseID),
	}
	if end, ok := appt.EndMinutes(); ok {
		issue.TimeTo = &end
	}
	if appt.Group != nil {
		issue.GroupName = appt.Group.Name
	}
	return issue
}

// courseName resolves a course id, degrading to the raw id when the
// reference data does not know it.
func (d *Detector) courseName(id string) string {
	if course, ok := d.courses[id]; ok {
		return course.Name
	}
	return id
}

func (d *Detector) roomName(id string) string {
	if room, ok := d.rooms[id]; ok {
		return room.Name
	}
	return id
}

func withDescription(message string, settings RuleSettings) string {
	if settings.Description == "" {
		return message
	}
	return message + " (" + settings.Description + ")"
}
