// Package http provides HTTP handlers and middleware for the planner API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"email","password"}.
//     Response: {"token","expires_at","principal"} with the token also
//     surfaced via the `X-Session-Token` header and a `session_token` cookie.
//   - DELETE /sessions/current: revokes the current session token extracted
//     from the Authorization header or session cookie. Returns 204 and clears
//     the cookie.
//   - GET/POST /appointments, GET/PUT/DELETE /appointments/{id}: appointment
//     management exchanging the `appointmentDTO` payload defined in
//     appointment_handler.go. Listing accepts semester_id, room_id, course_id,
//     type, lecturer and date query filters; results order unassigned
//     appointments first.
//   - GET/POST /rooms, PUT/DELETE /rooms/{id}: room catalog endpoints
//     exchanging the `roomDTO` payload defined in room_handler.go.
//   - GET /rooms/{id}/free-slots?date=YYYY-MM-DD&duration_minutes=N: returns
//     the grid-aligned free windows of a room on the given day.
//   - GET/POST /courses, PUT/DELETE /courses/{id}: course catalog endpoints
//     exchanging the `courseDTO` payload defined in course_handler.go.
//   - GET/POST /users, PUT/DELETE /users/{id}: administrator controlled user
//     management endpoints exchanging the `userDTO` payload defined in
//     user_handler.go.
//   - GET /conflicts?semester_id=&categories=: runs the detection rules over
//     the stored timetable and returns conflicts and warnings as `issueDTO`
//     values with German user-facing messages.
//   - GET /rules, PUT/DELETE /rules/{key}: detection rule configuration;
//     mutations require admin privileges.
//   - POST /import: multipart upload of CSV exports (parts "rooms",
//     "courses", "appointments") replayed through the regular services; the
//     response reports per-file creation counts and rejected rows.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
