package ioc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/junioryono/ioc/internal/reflection"
)

// ServiceProvider resolves services from a frozen registry.
//
// The root provider is returned by Collection.Build. Each scope owns a child
// provider created by CreateScope. Every provider keeps two caches: singleton
// instances, which a scope copies from its parent when it is created, and
// scoped instances, which belong to that provider alone.
//
// All methods are safe for concurrent use.
type ServiceProvider interface {
	// ID returns the unique ID of this provider.
	ID() string

	// GetService resolves the service registered for id.
	//
	// A factory must resolve its dependencies through the provider it is
	// given. Re-entering a singleton or scoped service that is still under
	// construction through any other provider, such as a captured root,
	// deadlocks: the call waits on its own unfinished cache entry.
	GetService(id ServiceIdentifier) (any, error)

	// IsService reports whether id is registered.
	IsService(id ServiceIdentifier) bool

	// CreateScope creates a child provider for a unit of work such as a
	// request. The context is carried by the scope and never observed.
	CreateScope(ctx context.Context) (Scope, error)

	// Dispose clears this provider's scoped instances. The provider remains
	// usable; a scoped service resolved afterwards is constructed again.
	// Singletons, the parent and child scopes are not affected.
	Dispose()
}

// serviceProvider is the concrete implementation of ServiceProvider.
type serviceProvider struct {
	id       string
	parentID string

	// Shared by the root and every scope derived from it.
	registry *registry
	metadata MetadataProvider
	analyzer *reflection.Analyzer
	options  *ProviderOptions
	logger   *slog.Logger

	singletons *instanceCache
	scoped     *instanceCache
}

var _ ServiceProvider = (*serviceProvider)(nil)

// newServiceProvider creates the root provider and constructs every
// singleton in registration order.
func newServiceProvider(reg *registry, metadata MetadataProvider, options *ProviderOptions) (*serviceProvider, error) {
	p := &serviceProvider{
		id:         uuid.NewString(),
		registry:   reg,
		metadata:   metadata,
		analyzer:   reflection.New(),
		options:    options,
		logger:     options.logger(),
		singletons: newInstanceCache(),
		scoped:     newInstanceCache(),
	}

	if err := p.createSingletons(); err != nil {
		return nil, err
	}

	p.logger.Debug("service provider built", "provider", p.id, "services", reg.len())
	return p, nil
}

// newChild creates a scope provider. Its singleton cache is a copy of the
// singletons present in p at this instant.
func (p *serviceProvider) newChild() *serviceProvider {
	return &serviceProvider{
		id:         uuid.NewString(),
		parentID:   p.id,
		registry:   p.registry,
		metadata:   p.metadata,
		analyzer:   p.analyzer,
		options:    p.options,
		logger:     p.logger,
		singletons: p.singletons.snapshot(),
		scoped:     newInstanceCache(),
	}
}

// createSingletons resolves every singleton descriptor. Singletons already
// copied from a parent are cache hits.
func (p *serviceProvider) createSingletons() error {
	for _, d := range p.registry.singletons() {
		if _, err := p.resolve(d.Identifier, nil); err != nil {
			p.logger.Warn("failed to create singleton",
				"provider", p.id, "service", identifierString(d.Identifier), "error", err)

			return BuildError{
				Phase:   "singleton-creation",
				Details: fmt.Sprintf("failed to create singleton %s", identifierString(d.Identifier)),
				Cause:   err,
			}
		}
	}

	return nil
}

// ID returns the unique ID of this provider.
func (p *serviceProvider) ID() string {
	return p.id
}

// GetService resolves a service and reports the outcome to the configured
// hooks.
func (p *serviceProvider) GetService(id ServiceIdentifier) (any, error) {
	start := time.Now()
	instance, err := p.resolve(id, nil)

	if err != nil {
		if p.options.OnServiceError != nil {
			p.options.OnServiceError(id, err)
		}
		return nil, err
	}

	if p.options.OnServiceResolved != nil {
		p.options.OnServiceResolved(id, instance, time.Since(start))
	}

	return instance, nil
}

// IsService reports whether id is registered.
func (p *serviceProvider) IsService(id ServiceIdentifier) bool {
	key := identityOf(id)
	if key == nil {
		return false
	}

	_, ok := p.registry.find(key)
	return ok
}

// CreateScope creates a child provider and wraps it in a Scope.
func (p *serviceProvider) CreateScope(ctx context.Context) (Scope, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	child := p.newChild()
	if err := child.createSingletons(); err != nil {
		return nil, err
	}

	p.logger.Debug("scope created", "scope", child.id, "parent", p.id)
	return newScope(ctx, child), nil
}

// Dispose clears the scoped cache of this provider only.
func (p *serviceProvider) Dispose() {
	p.scoped.clear()
	p.logger.Debug("scoped services disposed", "provider", p.id)
}
