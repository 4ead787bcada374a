package timetable

// Rule configuration keys. A key absent from the config means the rule runs
// with its defaults; unknown keys in the config are ignored.
const (
	RuleRoomConflict     = "room_conflict"
	RuleGroupConflict    = "group_conflict"
	RuleLecturerConflict = "lecturer_conflict"
	RuleIncomplete       = "incomplete_warning"
	RuleDuration         = "duration_warning"
	RuleWeekend          = "weekend_warning"
	RuleSaturday         = "saturday_warning"
	RuleSunday           = "sunday_warning"
	RuleCapacityLecture  = "capacity_lecture_warning"
	RuleCapacityExercise = "capacity_exercise_warning"
)

// KnownRuleKey reports whether key names a registered detection rule.
func KnownRuleKey(key string) bool {
	switch key {
	case RuleRoomConflict, RuleGroupConflict, RuleLecturerConflict,
		RuleIncomplete, RuleDuration, RuleWeekend, RuleSaturday,
		RuleSunday, RuleCapacityLecture, RuleCapacityExercise:
		return true
	}
	return false
}

// RuleSettings configures a single detection rule. Pointer fields distinguish
// "not configured" from an explicit zero so file-backed configs can omit
// entries they do not care about.
type RuleSettings struct {
	Enabled            *bool  `json:"enabled,omitempty"`
	Description        string `json:"description,omitempty"`
	EventType          string `json:"event_type,omitempty"`
	MinCapacityPercent *int   `json:"min_capacity_percent,omitempty"`
	MinDurationMinutes *int   `json:"min_duration_minutes,omitempty"`
	MaxDurationMinutes *int   `json:"max_duration_minutes,omitempty"`
}

// enabled treats a missing Enabled flag as true.
func (s RuleSettings) enabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// RuleConfig maps rule keys to their settings.
type RuleConfig map[string]RuleSettings

// Clone returns a shallow copy so callers can hand the detector a snapshot
// that later config reloads cannot mutate underneath it.
func (c RuleConfig) Clone() RuleConfig {
	if c == nil {
		return nil
	}
	out := make(RuleConfig, len(c))
	for key, settings := range c {
		out[key] = settings
	}
	return out
}

func intOrDefault(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}
