// Package observability provides structured logging and operation tracking for patuh.
package observability

import (
	"context"

	"github.com/google/uuid"
)

type opIDKey struct{}

// WithOpID generates a new operation ID and stores it in the context
// Each CLI invocation should call this once at startup
func WithOpID(ctx context.Context) context.Context {
	return context.WithValue(ctx, opIDKey{}, uuid.NewString())
}

// OpID retrieves the operation ID from context
// Returns empty string if no op_id was set
func OpID(ctx context.Context) string {
	if id, ok := ctx.Value(opIDKey{}).(string); ok {
		return id
	}
	return ""
}

type catalogVersionKey struct{}

// WithCatalogVersion records the active catalog version for log correlation
func WithCatalogVersion(ctx context.Context, v string) context.Context {
	return context.WithValue(ctx, catalogVersionKey{}, v)
}

// CatalogVersion returns the catalog version recorded in ctx, or ""
func CatalogVersion(ctx context.Context) string {
	if v, ok := ctx.Value(catalogVersionKey{}).(string); ok {
		return v
	}
	return ""
}
