package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Nico104/PlanningToolV2/internal/application"
	"github.com/Nico104/PlanningToolV2/internal/timetable"
)

type conflictService interface {
	DetectConflicts(ctx context.Context, params application.DetectConflictsParams) ([]timetable.Issue, error)
	ListRuleSettings(ctx context.Context, principal application.Principal) ([]application.RuleSetting, error)
	UpdateRuleSetting(ctx context.Context, principal application.Principal, input application.RuleSettingInput) (application.RuleSetting, error)
	DeleteRuleSetting(ctx context.Context, principal application.Principal, key string) error
}

type ConflictHandler struct {
	service   conflictService
	responder responder
	logger    *slog.Logger
}

func NewConflictHandler(service conflictService, logger *slog.Logger) *ConflictHandler {
	base := defaultLogger(logger)
	return &ConflictHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ConflictHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ConflictHandler", operation, attrs...)
}

// List answers GET /conflicts?semester_id=...&categories=room,duration.
func (h *ConflictHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	params := buildDetectParams(r.URL.Query(), principal)

	issues, err := h.service.DetectConflicts(r.Context(), params)
	if err != nil {
		h.log(r.Context(), "List", "principal_id", principal.UserID).ErrorContext(r.Context(), "conflict detection failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]issueDTO, 0, len(issues))
	for _, issue := range issues {
		dtos = append(dtos, toIssueDTO(issue))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, issueListResponse{Issues: dtos})
}

// ListRules answers GET /rules.
func (h *ConflictHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	settings, err := h.service.ListRuleSettings(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "ListRules", "principal_id", principal.UserID).ErrorContext(r.Context(), "rule settings listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]ruleSettingDTO, 0, len(settings))
	for _, setting := range settings {
		dtos = append(dtos, toRuleSettingDTO(setting))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, ruleSettingListResponse{Rules: dtos})
}

// UpdateRule answers PUT /rules/{key}.
func (h *ConflictHandler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	key, ok := RuleKeyFromContext(r.Context())
	if !ok || strings.TrimSpace(key) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req ruleSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "UpdateRule", "principal_id", principal.UserID, "rule_key", key, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode rule setting", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateRule", "principal_id", principal.UserID, "rule_key", key)

	setting, err := h.service.UpdateRuleSetting(r.Context(), principal, application.RuleSettingInput{
		Key:                key,
		Enabled:            req.Enabled,
		Description:        req.Description,
		EventType:          req.EventType,
		MinCapacityPercent: req.MinCapacityPercent,
		MinDurationMinutes: req.MinDurationMinutes,
		MaxDurationMinutes: req.MaxDurationMinutes,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "rule setting update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "rule setting updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, ruleSettingResponse{Rule: toRuleSettingDTO(setting)})
}

// DeleteRule answers DELETE /rules/{key}.
func (h *ConflictHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	key, ok := RuleKeyFromContext(r.Context())
	if !ok || strings.TrimSpace(key) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "DeleteRule", "principal_id", principal.UserID, "rule_key", key)

	if err := h.service.DeleteRuleSetting(r.Context(), principal, key); err != nil {
		logger.ErrorContext(r.Context(), "rule setting deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "rule setting deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func buildDetectParams(values url.Values, principal application.Principal) application.DetectConflictsParams {
	params := application.DetectConflictsParams{
		Principal:  principal,
		SemesterID: strings.TrimSpace(values.Get("semester_id")),
	}
	if raw := strings.TrimSpace(values.Get("categories")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				params.Categories = append(params.Categories, timetable.Category(trimmed))
			}
		}
	}
	return params
}

type issueDTO struct {
	Severity       string   `json:"severity"`
	Category       string   `json:"category"`
	AppointmentIDs []string `json:"appointment_ids"`
	Message        string   `json:"message"`
	Date           string   `json:"date,omitempty"`
	TimeFrom       string   `json:"time_from,omitempty"`
	TimeTo         string   `json:"time_to,omitempty"`
	RoomName       string   `json:"room_name,omitempty"`
	CourseName     string   `json:"course_name,omitempty"`
	GroupName      string   `json:"group_name,omitempty"`
}

type issueListResponse struct {
	Issues []issueDTO `json:"issues"`
}

func toIssueDTO(issue timetable.Issue) issueDTO {
	dto := issueDTO{
		Severity:       string(issue.Severity),
		Category:       string(issue.Category),
		AppointmentIDs: issue.AppointmentIDs,
		Message:        issue.Message,
		RoomName:       issue.RoomName,
		CourseName:     issue.CourseName,
		GroupName:      issue.GroupName,
	}
	if issue.Date != nil {
		dto.Date = issue.Date.Format(dateLayout)
	}
	if issue.TimeFrom != nil {
		dto.TimeFrom = timetable.FormatClock(*issue.TimeFrom)
	}
	if issue.TimeTo != nil {
		dto.TimeTo = timetable.FormatClock(*issue.TimeTo)
	}
	return dto
}

type ruleSettingRequest struct {
	Enabled            *bool  `json:"enabled"`
	Description        string `json:"description"`
	EventType          string `json:"event_type"`
	MinCapacityPercent *int   `json:"min_capacity_percent"`
	MinDurationMinutes *int   `json:"min_duration_minutes"`
	MaxDurationMinutes *int   `json:"max_duration_minutes"`
}

type ruleSettingDTO struct {
	Key                string `json:"key"`
	Enabled            *bool  `json:"enabled,omitempty"`
	Description        string `json:"description,omitempty"`
	EventType          string `json:"event_type,omitempty"`
	MinCapacityPercent *int   `json:"min_capacity_percent,omitempty"`
	MinDurationMinutes *int   `json:"min_duration_minutes,omitempty"`
	MaxDurationMinutes *int   `json:"max_duration_minutes,omitempty"`
}

type ruleSettingResponse struct {
	Rule ruleSettingDTO `json:"rule"`
}

type ruleSettingListResponse struct {
	Rules []ruleSettingDTO `json:"rules"`
}

func toRuleSettingDTO(setting application.RuleSetting) ruleSettingDTO {
	return ruleSettingDTO{
		Key:                setting.Key,
		Enabled:            setting.Enabled,
		Description:        setting.Description,
		EventType:          setting.EventType,
		MinCapacityPercent: setting.MinCapacityPercent,
		MinDurationMinutes: setting.MinDurationMinutes,
		MaxDurationMinutes: setting.MaxDurationMinutes,
	}
}
