package http

import (
	"context"

	"github.com/example/event-checkin/internal/application"
)

type contextKey string

const (
	sessionContextKey    contextKey = "session"
	attendeeIDContextKey contextKey = "attendee_id"
	tokenContextKey      contextKey = "attendee_token"
)

// ContextWithSession returns a derived context carrying the validated staff session.
func ContextWithSession(ctx context.Context, session application.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext extracts the validated staff session, if present.
func SessionFromContext(ctx context.Context) (application.Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(application.Session)
	return session, ok
}

// ContextWithAttendeeID injects the attendee identifier resolved from the request path.
func ContextWithAttendeeID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, attendeeIDContextKey, id)
}

// AttendeeIDFromContext extracts an attendee identifier previously associated with the context.
func AttendeeIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(attendeeIDContextKey).(string)
	return id, ok
}

// ContextWithToken injects the attendee token resolved from the request path.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// TokenFromContext extracts an attendee token previously associated with the context.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	return token, ok
}
