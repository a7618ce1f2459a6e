package testutil

import (
	"testing"

	"github.com/junioryono/ioc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertResolvable checks that id resolves to a non-nil instance.
func AssertResolvable[T any](t *testing.T, provider ioc.ServiceProvider, id ioc.Identifier[T]) T {
	t.Helper()

	service, err := ioc.Resolve(provider, id)
	require.NoError(t, err, "failed to resolve %s", id)
	require.NotNil(t, service, "resolved %s is nil", id)
	return service
}

// AssertSameInstance checks that two resolutions of id return one instance.
func AssertSameInstance[T any](t *testing.T, provider ioc.ServiceProvider, id ioc.Identifier[T]) {
	t.Helper()

	first := AssertResolvable(t, provider, id)
	second := AssertResolvable(t, provider, id)
	assert.Same(t, any(first), any(second), "expected one instance of %s", id)
}

// AssertDifferentInstances checks that two resolutions of id return distinct
// instances.
func AssertDifferentInstances[T any](t *testing.T, provider ioc.ServiceProvider, id ioc.Identifier[T]) {
	t.Helper()

	first := AssertResolvable(t, provider, id)
	second := AssertResolvable(t, provider, id)
	assert.NotSame(t, any(first), any(second), "expected distinct instances of %s", id)
}

// AssertNotRegistered checks that resolving id fails as not registered.
func AssertNotRegistered(t *testing.T, provider ioc.ServiceProvider, id ioc.ServiceIdentifier) {
	t.Helper()

	_, err := provider.GetService(id)
	require.Error(t, err)
	assert.ErrorIs(t, err, ioc.ErrServiceNotRegistered)
}
