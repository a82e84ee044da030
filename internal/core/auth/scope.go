package auth

import (
	"context"

	"github.com/ollivarila/wsk2/internal/core/domain"
)

// Scope is the per-request state threaded through the pipeline.
type Scope struct {
	Principal domain.Principal
	// Coordinates is set once an uploaded photo has been geotagged.
	Coordinates *domain.Coordinates
}

type scopeKey struct{}

// WithScope returns a copy of ctx carrying s.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// ScopeFrom returns the scope stored in ctx, or an anonymous scope.
func ScopeFrom(ctx context.Context) *Scope {
	if s, ok := ctx.Value(scopeKey{}).(*Scope); ok && s != nil {
		return s
	}
	return &Scope{}
}

// PrincipalFrom is shorthand for ScopeFrom(ctx).Principal.
func PrincipalFrom(ctx context.Context) domain.Principal {
	return ScopeFrom(ctx).Principal
}
