package testutil

import (
	"context"
	"testing"

	"github.com/junioryono/ioc"
	"github.com/stretchr/testify/require"
)

// CollectionBuilder provides a fluent interface for building test collections.
type CollectionBuilder struct {
	t          *testing.T
	collection ioc.Collection
}

// NewCollectionBuilder creates a new CollectionBuilder.
func NewCollectionBuilder(t *testing.T) *CollectionBuilder {
	return &CollectionBuilder{
		t:          t,
		collection: ioc.NewCollection(),
	}
}

// WithSingleton adds a singleton service to the collection.
func (b *CollectionBuilder) WithSingleton(id ioc.ServiceIdentifier, implementation any, opts ...ioc.AddOption) *CollectionBuilder {
	b.collection.AddSingleton(id, implementation, opts...)
	return b
}

// WithScoped adds a scoped service to the collection.
func (b *CollectionBuilder) WithScoped(id ioc.ServiceIdentifier, implementation any, opts ...ioc.AddOption) *CollectionBuilder {
	b.collection.AddScoped(id, implementation, opts...)
	return b
}

// WithTransient adds a transient service to the collection.
func (b *CollectionBuilder) WithTransient(id ioc.ServiceIdentifier, implementation any, opts ...ioc.AddOption) *CollectionBuilder {
	b.collection.AddTransient(id, implementation, opts...)
	return b
}

// WithModule adds a module to the collection.
func (b *CollectionBuilder) WithModule(module ioc.ModuleOption) *CollectionBuilder {
	b.collection.AddModules(module)
	return b
}

// Collection returns the underlying collection.
func (b *CollectionBuilder) Collection() ioc.Collection {
	return b.collection
}

// BuildProvider builds the provider and fails the test on error. The
// provider is disposed when the test ends.
func (b *CollectionBuilder) BuildProvider(opts ...*ioc.ProviderOptions) ioc.ServiceProvider {
	b.t.Helper()

	var options *ioc.ProviderOptions
	if len(opts) > 0 {
		options = opts[0]
	}

	provider, err := b.collection.BuildWithOptions(options)
	require.NoError(b.t, err, "failed to build service provider")

	b.t.Cleanup(provider.Dispose)
	return provider
}

// CreateScope creates a scope and disposes it when the test ends.
func CreateScope(t *testing.T, provider ioc.ServiceProvider) ioc.Scope {
	t.Helper()

	scope, err := provider.CreateScope(context.Background())
	require.NoError(t, err, "failed to create scope")

	t.Cleanup(scope.Dispose)
	return scope
}
