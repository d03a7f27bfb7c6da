package branchctx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// BranchContextKey is the request context key for the active branch ID.
type BranchContextKey struct{}

// WithBranchID stores the branch ID in the context.
func WithBranchID(ctx context.Context, branchID snowflake.ID) context.Context {
	return context.WithValue(ctx, BranchContextKey{}, branchID)
}

// BranchIDFromContext returns the branch ID from context, if set.
func BranchIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	value := ctx.Value(BranchContextKey{})
	if value == nil {
		return 0, false
	}
	switch typed := value.(type) {
	case int64:
		return snowflake.ID(typed), true
	case snowflake.ID:
		return typed, true
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil {
			return parsed, true
		}
	}
	return 0, false
}
