// Package http provides HTTP handlers and middleware for the check-in API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a staff session token. Body: {"email","password"}.
//     Response: {"token","expires_at"} with the token also surfaced via the
//     `X-Session-Token` header and a `session_token` cookie.
//   - DELETE /sessions/current: revokes the session extracted from the
//     Authorization header or session cookie. Returns 204 No Content.
//   - GET /attendees, POST /attendees, GET /attendees/{id},
//     PATCH /attendees/{id}: attendee registration and lookup exchanging the
//     `attendeeDTO` payload defined in attendee_handler.go. PATCH carries
//     merge semantics: absent fields stay as stored, a present skills or
//     scans array replaces the stored set in full.
//   - POST /scans: records one activity scan for the attendee addressed by
//     token. Body: {"token","activity_name","activity_category","scanned_at"}.
//   - POST /checkin/sign-in, POST /checkin/sign-out: venue presence
//     transitions keyed by attendee token. Both are idempotent.
//   - POST /checkin/events/sign-in, POST /checkin/events/sign-out: per-event
//     presence transitions. Body: {"token","event"}. An event missing from
//     the reference set yields 404 with error_code UNKNOWN_EVENT.
//   - GET /events: the event reference set; with ?token= the events that
//     attendee has signed into.
//   - GET /stats/skills?min=&max=: skill frequencies with inclusive count
//     bounds. GET /stats/scans?min=&max=&category=: activity frequencies.
//     GET /stats/sign-ins?start=&end=: sign-in counts bucketed by UTC hour,
//     non-empty buckets only.
//   - GET /healthz and GET /metrics (Prometheus exposition) for operations.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
