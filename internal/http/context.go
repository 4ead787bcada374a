package http

import (
	"context"

	"github.com/Nico104/PlanningToolV2/internal/application"
)

type contextKey string

const (
	principalContextKey     contextKey = "principal"
	appointmentIDContextKey contextKey = "appointment_id"
	roomIDContextKey        contextKey = "room_id"
	courseIDContextKey      contextKey = "course_id"
	userIDContextKey        contextKey = "user_id"
	ruleKeyContextKey       contextKey = "rule_key"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithAppointmentID injects the appointment identifier resolved from the request path.
func ContextWithAppointmentID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, appointmentIDContextKey, id)
}

// AppointmentIDFromContext extracts an appointment identifier previously associated with the context.
func AppointmentIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(appointmentIDContextKey).(string)
	return id, ok
}

// ContextWithRoomID injects the room identifier resolved from the request path.
func ContextWithRoomID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, roomIDContextKey, id)
}

// RoomIDFromContext extracts a room identifier previously associated with the context.
func RoomIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(roomIDContextKey).(string)
	return id, ok
}

// ContextWithCourseID injects the course identifier resolved from the request path.
func ContextWithCourseID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, courseIDContextKey, id)
}

// CourseIDFromContext extracts a course identifier previously associated with the context.
func CourseIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(courseIDContextKey).(string)
	return id, ok
}

// ContextWithUserID injects the user identifier resolved from the request path.
func ContextWithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDContextKey, id)
}

// UserIDFromContext extracts a user identifier previously associated with the context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey).(string)
	return id, ok
}

// ContextWithRuleKey injects the rule key resolved from the request path.
func ContextWithRuleKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ruleKeyContextKey, key)
}

// RuleKeyFromContext extracts a rule key previously associated with the context.
func RuleKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(ruleKeyContextKey).(string)
	return key, ok
}
