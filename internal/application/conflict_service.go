package application

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Nico104/PlanningToolV2/internal/persistence"
	"github.com/Nico104/PlanningToolV2/internal/timetable"
)

// RuleConfigStore persists per-rule detection settings.
type RuleConfigStore interface {
	UpsertRuleSetting(ctx context.Context, setting persistence.RuleSetting) error
	ListRuleSettings(ctx context.Context) ([]persistence.RuleSetting, error)
	DeleteRuleSetting(ctx context.Context, key string) error
}

// ConflictService runs the detection rules over the stored timetable and
// manages the stored rule configuration. It caches detection results until a
// write anywhere in the planning data invalidates them; the mutating services
// hold it as their CacheInvalidator.
type ConflictService struct {
	appointments AppointmentRepository
	courses      CourseCatalog
	rooms        RoomCatalog
	ruleConfig   RuleConfigStore
	cache        *issueCache
	now          func() time.Time
	logger       *slog.Logger
}

// NewConflictService creates a ConflictService with the default logger.
func NewConflictService(appointments AppointmentRepository, courses CourseCatalog, rooms RoomCatalog, ruleConfig RuleConfigStore, now func() time.Time) *ConflictService {
	return NewConflictServiceWithLogger(appointments, courses, rooms, ruleConfig, now, nil)
}

// NewConflictServiceWithLogger creates a ConflictService with an explicit logger.
func NewConflictServiceWithLogger(appointments AppointmentRepository, courses CourseCatalog, rooms RoomCatalog, ruleConfig RuleConfigStore, now func() time.Time, logger *slog.Logger) *ConflictService {
	if now == nil {
		now = time.Now
	}
	return &ConflictService{
		appointments: appointments,
		courses:      courses,
		rooms:        rooms,
		ruleConfig:   ruleConfig,
		cache:        newIssueCache(30*time.Second, 64, now),
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *ConflictService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ConflictService", operation, attrs...)
}

// DetectConflicts loads the current timetable snapshot, runs every enabled
// rule over it and returns the issues, optionally narrowed to a semester and
// to a set of categories. Results are served from cache while no write has
// occurred since the last pass.
func (s *ConflictService) DetectConflicts(ctx context.Context, params DetectConflictsParams) ([]timetable.Issue, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if params.Principal.UserID == "" {
		return nil, ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DetectConflicts", "semester_id", params.SemesterID)

	key := detectionCacheKey(params)
	if issues, ok := s.cache.Get(key); ok {
		logger.DebugContext(ctx, "detection served from cache", "issue_count", len(issues))
		return issues, nil
	}

	records, err := s.appointments.ListAppointments(ctx, persistence.AppointmentFilter{SemesterID: params.SemesterID})
	if err != nil {
		logger.ErrorContext(ctx, "appointment load failed", "error", err, "error_kind", ErrorKind(err))
		return nil, mapPersistenceError(err)
	}
	courses, err := s.courses.ListCourses(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "course load failed", "error", err, "error_kind", ErrorKind(err))
		return nil, mapPersistenceError(err)
	}
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "room load failed", "error", err, "error_kind", ErrorKind(err))
		return nil, mapPersistenceError(err)
	}
	settings, err := s.ruleConfig.ListRuleSettings(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "rule settings load failed", "error", err, "error_kind", ErrorKind(err))
		return nil, mapPersistenceError(err)
	}

	detector := timetable.NewDetector(toTimetableCourses(courses), toTimetableRooms(rooms), toRuleConfig(settings))
	issues := detector.DetectAll(toTimetableAppointments(records))
	issues = filterIssuesByCategory(issues, params.Categories)

	s.cache.Store(key, issues)
	logger.InfoContext(ctx, "detection pass completed",
		"appointment_count", len(records),
		"issue_count", len(issues),
	)
	return issues, nil
}

// ListRuleSettings returns the stored rule configuration ordered by key.
func (s *ConflictService) ListRuleSettings(ctx context.Context, principal Principal) ([]RuleSetting, error) {
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}
	records, err := s.ruleConfig.ListRuleSettings(ctx)
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	settings := make([]RuleSetting, 0, len(records))
	for _, record := range records {
		settings = append(settings, toRuleSetting(record))
	}
	sort.Slice(settings, func(i, j int) bool { return settings[i].Key < settings[j].Key })
	return settings, nil
}

// UpdateRuleSetting stores one rule configuration entry and invalidates the
// detection cache. Only administrators may change rule settings.
func (s *ConflictService) UpdateRuleSetting(ctx context.Context, principal Principal, input RuleSettingInput) (RuleSetting, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if principal.UserID == "" {
		return RuleSetting{}, ErrUnauthorized
	}
	if !principal.IsAdmin {
		return RuleSetting{}, ErrUnauthorized
	}
	if err := validateRuleSettingInput(input); err != nil {
		return RuleSetting{}, err
	}

	record := persistence.RuleSetting{
		Key:                strings.TrimSpace(input.Key),
		Enabled:            input.Enabled,
		Description:        input.Description,
		EventType:          input.EventType,
		MinCapacityPercent: input.MinCapacityPercent,
		MinDurationMinutes: input.MinDurationMinutes,
		MaxDurationMinutes: input.MaxDurationMinutes,
		UpdatedAt:          s.now().UTC(),
	}
	if err := s.ruleConfig.UpsertRuleSetting(ctx, record); err != nil {
		return RuleSetting{}, mapPersistenceError(err)
	}

	s.cache.Invalidate()
	s.loggerWith(ctx, "UpdateRuleSetting", "rule_key", record.Key).InfoContext(ctx, "rule setting updated")
	return toRuleSetting(record), nil
}

// DeleteRuleSetting removes a stored entry so the rule reverts to its
// defaults. Only administrators may change rule settings.
func (s *ConflictService) DeleteRuleSetting(ctx context.Context, principal Principal, key string) error {
	if principal.UserID == "" || !principal.IsAdmin {
		return ErrUnauthorized
	}
	if err := s.ruleConfig.DeleteRuleSetting(ctx, key); err != nil {
		return mapPersistenceError(err)
	}
	s.cache.Invalidate()
	s.loggerWith(ctx, "DeleteRuleSetting", "rule_key", key).InfoContext(ctx, "rule setting deleted")
	return nil
}

// Invalidate implements CacheInvalidator for the mutating services.
func (s *ConflictService) Invalidate() {
	s.cache.Invalidate()
}

func validateRuleSettingInput(input RuleSettingInput) error {
	vErr := &ValidationError{}
	key := strings.TrimSpace(input.Key)
	if key == "" {
		vErr.add("key", "key is required")
	} else if !timetable.KnownRuleKey(key) {
		vErr.add("key", "unknown rule key")
	}
	if input.MinCapacityPercent != nil && (*input.MinCapacityPercent < 0 || *input.MinCapacityPercent > 100) {
		vErr.add("min_capacity_percent", "must be between 0 and 100")
	}
	if input.MinDurationMinutes != nil && *input.MinDurationMinutes < 0 {
		vErr.add("min_duration_minutes", "must not be negative")
	}
	if input.MaxDurationMinutes != nil && *input.MaxDurationMinutes < 0 {
		vErr.add("max_duration_minutes", "must not be negative")
	}
	if input.MinDurationMinutes != nil && input.MaxDurationMinutes != nil && *input.MinDurationMinutes > *input.MaxDurationMinutes {
		vErr.add("max_duration_minutes", "must not be below min_duration_minutes")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func toRuleSetting(record persistence.RuleSetting) RuleSetting {
	return RuleSetting{
		Key:                record.Key,
		Enabled:            record.Enabled,
		Description:        record.Description,
		EventType:          record.EventType,
		MinCapacityPercent: record.MinCapacityPercent,
		MinDurationMinutes: record.MinDurationMinutes,
		MaxDurationMinutes: record.MaxDurationMinutes,
		UpdatedAt:          record.UpdatedAt,
	}
}

func detectionCacheKey(params DetectConflictsParams) string {
	categories := make([]string, 0, len(params.Categories))
	for _, category := range params.Categories {
		categories = append(categories, string(category))
	}
	sort.Strings(categories)
	return params.SemesterID + "|" + strings.Join(categories, ",")
}

func filterIssuesByCategory(issues []timetable.Issue, categories []timetable.Category) []timetable.Issue {
	if len(categories) == 0 {
		return issues
	}
	wanted := make(map[timetable.Category]struct{}, len(categories))
	for _, category := range categories {
		wanted[category] = struct{}{}
	}
	filtered := make([]timetable.Issue, 0, len(issues))
	for _, issue := range issues {
		if _, ok := wanted[issue.Category]; ok {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}
