package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type userIDKey struct{}

// ContextWithUserID returns a copy of ctx carrying the authenticated user's ID.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the authenticated user's ID, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok && userID != ""
}

// tagActor records the acting user on span when the request was authenticated.
func tagActor(ctx context.Context, span trace.Span) {
	if userID, ok := UserIDFromContext(ctx); ok {
		span.SetAttributes(attribute.String("enduser.id", userID))
	}
}
