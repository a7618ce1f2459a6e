package ioc

import (
	"fmt"
	"reflect"
)

// FactoryFunc constructs a service instance. It is invoked synchronously with
// the provider performing the resolution, so it may call GetService on that
// provider to pull further dependencies.
type FactoryFunc func(sp ServiceProvider) (any, error)

// Factory adapts a typed factory to a FactoryFunc.
//
// Example:
//
//	services.AddTransient(WidgetID, ioc.Factory(func(ioc.ServiceProvider) (*Widget, error) {
//	    return &Widget{}, nil
//	}))
func Factory[T any](fn func(sp ServiceProvider) (T, error)) FactoryFunc {
	if fn == nil {
		return nil
	}

	return func(sp ServiceProvider) (any, error) {
		return fn(sp)
	}
}

// Descriptor binds an identifier to a construction strategy and lifetime.
//
// Exactly one of Factory or ImplementationType drives construction; when both
// are set the Factory wins. ImplementationType is a constructor function
// returning T or (T, error). Its parameters are satisfied positionally from
// the identifiers the MetadataProvider reports for it.
type Descriptor struct {
	// Identifier is the service contract this descriptor produces.
	Identifier ServiceIdentifier

	// Lifetime determines instance caching behavior.
	Lifetime Lifetime

	// ImplementationType is the constructor function, if any.
	ImplementationType any

	// Factory is the factory function, if any.
	Factory FactoryFunc

	// dependencies holds the identifiers declared with DependsOn. When
	// hasDependencies is set they take precedence over the MetadataProvider.
	dependencies    []ServiceIdentifier
	hasDependencies bool
}

// newDescriptor creates a descriptor from a registration call. Functions with
// the factory signature become factories; anything else is stored as an
// implementation and checked when it is first constructed.
func newDescriptor(id ServiceIdentifier, lifetime Lifetime, implementation any) *Descriptor {
	d := &Descriptor{
		Identifier: id,
		Lifetime:   lifetime,
	}

	switch impl := implementation.(type) {
	case FactoryFunc:
		d.Factory = impl
	case func(ServiceProvider) (any, error):
		d.Factory = impl
	default:
		d.ImplementationType = implementation
	}

	return d
}

// isFactory reports whether the factory drives construction.
func (d *Descriptor) isFactory() bool {
	return d.Factory != nil
}

// String returns a diagnostic description of the descriptor.
func (d *Descriptor) String() string {
	if d == nil {
		return "<nil>"
	}

	switch {
	case d.isFactory():
		return fmt.Sprintf("%s (%s, factory)", identifierString(d.Identifier), d.Lifetime)
	case d.ImplementationType != nil:
		return fmt.Sprintf("%s (%s, %s)", identifierString(d.Identifier), d.Lifetime,
			formatType(reflect.TypeOf(d.ImplementationType)))
	default:
		return fmt.Sprintf("%s (%s, no implementation)", identifierString(d.Identifier), d.Lifetime)
	}
}

// clone returns a shallow copy so stored descriptors cannot be mutated
// through the caller's pointer.
func (d *Descriptor) clone() *Descriptor {
	c := *d
	if d.dependencies != nil {
		c.dependencies = make([]ServiceIdentifier, len(d.dependencies))
		copy(c.dependencies, d.dependencies)
	}
	return &c
}
