// Package audit provides utilities for audit field enrichment in domain entities.
package audit

import (
	"context"

	"stocktrack/internal/core/security"
)

// EnrichCreatedByDirect sets CreatedBy and UpdatedBy fields from the context
// actor. Use in before-create hooks. If the actor is not in context, this is
// a no-op.
func EnrichCreatedByDirect(ctx context.Context, createdBy, updatedBy *string) {
	userID := security.GetUserID(ctx)
	if userID != "" && createdBy != nil && updatedBy != nil {
		*createdBy = userID
		*updatedBy = userID
	}
}

// EnrichUpdatedByDirect sets only the UpdatedBy field from the context actor.
// Use in before-update hooks.
func EnrichUpdatedByDirect(ctx context.Context, updatedBy *string) {
	userID := security.GetUserID(ctx)
	if userID != "" && updatedBy != nil {
		*updatedBy = userID
	}
}
