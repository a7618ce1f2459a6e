package ioc

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================
// Typed errors below report their sentinel through Is, so callers can test
// with errors.Is and still reach the details with errors.As.

var (
	// Resolution errors.
	ErrServiceNotRegistered = errors.New("service not registered")
	ErrUnknownLifetime      = errors.New("unknown service lifetime")
	ErrCircularDependency   = errors.New("circular dependency detected")
	ErrIdentifierNil        = errors.New("service identifier cannot be nil")

	// Provider and scope errors.
	ErrProviderNil       = errors.New("service provider cannot be nil")
	ErrScopeNotInContext = errors.New("no scope found in context")

	// Construction errors.
	ErrInvalidImplementation = errors.New("invalid service implementation")
)

var (
	_ error = ServiceNotRegisteredError{}
	_ error = UnknownLifetimeError{}
	_ error = CircularDependencyError{}
	_ error = InvalidDescriptorError{}
	_ error = ConstructorInvocationError{}
	_ error = ConstructorPanicError{}
	_ error = TypeMismatchError{}
	_ error = LifetimeError{}
	_ error = BuildError{}
)

// ========================================
// Typed Errors for Rich Context
// ========================================

// ServiceNotRegisteredError is returned when a service is requested, directly
// or as a dependency, for an identifier that has no descriptor.
type ServiceNotRegisteredError struct {
	Identifier ServiceIdentifier
}

func (e ServiceNotRegisteredError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("service not registered: %s", identifierString(e.Identifier)))
	b.WriteString("\nMake sure the identifier is registered on the collection the provider was built from.")
	return b.String()
}

func (e ServiceNotRegisteredError) Is(target error) bool {
	return target == ErrServiceNotRegistered
}

// UnknownLifetimeError is returned when a descriptor carries a lifetime other
// than Singleton, Scoped or Transient. Descriptors added with Collection.Add
// are stored without validation, so this surfaces at resolution.
type UnknownLifetimeError struct {
	Identifier ServiceIdentifier
	Lifetime   Lifetime
}

func (e UnknownLifetimeError) Error() string {
	return fmt.Sprintf("service %s has unknown lifetime %s", identifierString(e.Identifier), e.Lifetime)
}

func (e UnknownLifetimeError) Is(target error) bool {
	return target == ErrUnknownLifetime
}

// CircularDependencyError is returned when resolving a service requires the
// service itself. Chain lists the identifiers from the outermost request to
// the identifier that was requested again.
type CircularDependencyError struct {
	Chain []ServiceIdentifier
}

func (e CircularDependencyError) Error() string {
	var b strings.Builder
	b.WriteString("circular dependency detected:\n\n")

	for i, id := range e.Chain {
		b.WriteString(fmt.Sprintf("    %s", identifierString(id)))
		if i == len(e.Chain)-1 {
			b.WriteString(" (cycle)")
		}
		b.WriteString("\n")
		if i < len(e.Chain)-1 {
			b.WriteString("      ↓\n")
		}
	}

	b.WriteString("\nTo resolve this:\n")
	b.WriteString("  • Use a factory that resolves one side lazily\n")
	b.WriteString("  • Restructure to remove the circular relationship\n")

	return b.String()
}

func (e CircularDependencyError) Is(target error) bool {
	return target == ErrCircularDependency
}

// InvalidDescriptorError indicates a descriptor that cannot construct
// anything, such as one with neither a factory nor an implementation.
type InvalidDescriptorError struct {
	Identifier ServiceIdentifier
	Cause      error
}

func (e InvalidDescriptorError) Error() string {
	return fmt.Sprintf("invalid descriptor for %s: %v", identifierString(e.Identifier), e.Cause)
}

func (e InvalidDescriptorError) Unwrap() error {
	return e.Cause
}

// ConstructorInvocationError wraps failures of an implementation constructor:
// a malformed constructor, a dependency list that does not match its
// parameters, or an error returned by the constructor itself.
type ConstructorInvocationError struct {
	Identifier  ServiceIdentifier
	Constructor reflect.Type
	Cause       error
}

func (e ConstructorInvocationError) Error() string {
	return fmt.Sprintf("failed to invoke %s for %s: %v",
		formatType(e.Constructor), identifierString(e.Identifier), e.Cause)
}

func (e ConstructorInvocationError) Unwrap() error {
	return e.Cause
}

// ConstructorPanicError indicates a constructor or factory panicked.
// It captures the panic value and stack trace for debugging.
type ConstructorPanicError struct {
	Identifier ServiceIdentifier
	Panic      any
	Stack      []byte
}

func (e ConstructorPanicError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("constructor for %s panicked: %v\n", identifierString(e.Identifier), e.Panic))

	if len(e.Stack) > 0 {
		b.WriteString("\nStack trace:\n")
		b.Write(e.Stack)
	}

	return b.String()
}

// TypeMismatchError indicates an instance that does not have the type its
// identifier declares.
type TypeMismatchError struct {
	Identifier ServiceIdentifier
	Expected   reflect.Type
	Actual     reflect.Type
	Context    string // "construction", "type assertion"
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("%s of %s: expected %s, got %s",
		e.Context, identifierString(e.Identifier), formatType(e.Expected), formatType(e.Actual))
}

// LifetimeError indicates an invalid lifetime value while encoding or
// decoding a Lifetime.
type LifetimeError struct {
	Value any
}

func (e LifetimeError) Error() string {
	return fmt.Sprintf("invalid service lifetime: %v", e.Value)
}

// BuildError wraps errors that occur while a provider or scope is being
// created, such as a singleton that fails during eager construction.
type BuildError struct {
	Phase   string // "singleton-creation"
	Details string
	Cause   error
}

func (e BuildError) Error() string {
	return fmt.Sprintf("build failed during %s phase: %s: %v", e.Phase, e.Details, e.Cause)
}

func (e BuildError) Unwrap() error {
	return e.Cause
}

// formatType formats a reflect.Type for error messages.
func formatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "*" + elem.Name()
		}
		return t.String()
	case reflect.Slice:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "[]" + elem.Name()
		}
		return t.String()
	case reflect.Interface, reflect.Struct:
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	case reflect.Func:
		return t.String()
	default:
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	}
}
