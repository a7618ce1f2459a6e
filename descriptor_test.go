package ioc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescriptor_String(t *testing.T) {
	id := NewIdentifier[*TService]("svc")
	factory, _ := countingFactory()

	assert.Contains(t, newDescriptor(id, Singleton, factory).String(), "factory")
	assert.Contains(t, newDescriptor(id, Scoped, NewTService).String(), "func() *ioc.TService")
	assert.Contains(t, (&Descriptor{Identifier: id, Lifetime: Transient}).String(), "no implementation")
	assert.Equal(t, "<nil>", (*Descriptor)(nil).String())
}

func TestFactory(t *testing.T) {
	assert.Nil(t, Factory[*TService](nil))

	fn := Factory(func(ServiceProvider) (*TService, error) { return &TService{ID: "typed"}, nil })
	instance, err := fn(nil)
	assert.NoError(t, err)
	assert.Equal(t, "typed", instance.(*TService).ID)
}

func TestDescriptor_Clone(t *testing.T) {
	id := NewIdentifier[*TService]("svc")
	depID := NewIdentifier[*TDependency]("dep")

	d := &Descriptor{Identifier: id, dependencies: []ServiceIdentifier{depID}, hasDependencies: true}
	c := d.clone()
	d.dependencies[0] = id

	assert.True(t, c.hasDependencies)
	assert.Equal(t, []ServiceIdentifier{depID}, c.dependencies)
}
