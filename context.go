package ioc

import (
	"context"
)

// scopeContextKey is the key for storing the current scope in context.
type scopeContextKey struct{}

// contextWithScope returns a context with the current scope.
func contextWithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, s)
}

// FromContext gets the current scope from context.
//
// Every scope's Context carries the scope, and the HTTP adapters attach the
// request scope to the request context.
func FromContext(ctx context.Context) (Scope, error) {
	if ctx == nil {
		return nil, ErrScopeNotInContext
	}

	s, ok := ctx.Value(scopeContextKey{}).(Scope)
	if !ok || s == nil {
		return nil, ErrScopeNotInContext
	}

	return s, nil
}
