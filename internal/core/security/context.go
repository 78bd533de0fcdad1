// Package security provides security-related utilities including actor context management.
package security

import "context"

type userIDKey struct{}

// WithUserID adds the authenticated actor's user ID to context.
// Used by middleware to propagate the actor through the request chain;
// the ledger core reads it for audit attribution of movements and transfers.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// GetUserID retrieves the actor's user ID from context.
// Returns empty string if not found.
//
// Usage in domain layer:
//
//	actor := security.GetUserID(ctx)
//	entry.CreatedBy = actor
func GetUserID(ctx context.Context) string {
	if uid, ok := ctx.Value(userIDKey{}).(string); ok {
		return uid
	}
	return ""
}
