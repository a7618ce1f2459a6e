package ioc

import (
	"context"
)

// Scope is a unit of work, typically one per request, owning a child
// ServiceProvider.
//
// In web applications a scope is usually created for each HTTP request, so
// scoped services such as a unit-of-work are shared within the request and
// isolated from other requests.
//
// Example:
//
//	scope, err := provider.CreateScope(ctx)
//	if err != nil {
//	    return err
//	}
//	defer scope.Dispose()
//
//	svc, err := ioc.Resolve(scope.ServiceProvider(), ServiceID)
type Scope interface {
	// ID returns the ID of the scope's provider.
	ID() string

	// Context returns the context the scope was created with, carrying the
	// scope itself.
	Context() context.Context

	// ServiceProvider returns the scope's provider.
	ServiceProvider() ServiceProvider

	// Dispose clears the scope's scoped instances.
	Dispose()
}

// scope implements Scope.
type scope struct {
	ctx      context.Context
	provider *serviceProvider
}

var _ Scope = (*scope)(nil)

// newScope wraps a child provider and attaches the scope to ctx.
func newScope(ctx context.Context, provider *serviceProvider) *scope {
	s := &scope{provider: provider}
	s.ctx = contextWithScope(ctx, s)
	return s
}

func (s *scope) ID() string {
	return s.provider.ID()
}

func (s *scope) Context() context.Context {
	return s.ctx
}

func (s *scope) ServiceProvider() ServiceProvider {
	return s.provider
}

func (s *scope) Dispose() {
	s.provider.Dispose()
	s.provider.logger.Debug("scope disposed", "scope", s.provider.id, "parent", s.provider.parentID)
}
