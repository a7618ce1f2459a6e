package ioc

import (
	"context"
	"fmt"
	"reflect"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/junioryono/ioc/internal/reflection"
)

// resolve returns the instance for id on behalf of the resolution chain.
// The chain lists the identifiers currently being constructed by this call
// stack, outermost first.
func (p *serviceProvider) resolve(id ServiceIdentifier, chain []ServiceIdentifier) (any, error) {
	key := identityOf(id)
	if key == nil {
		return nil, ErrIdentifierNil
	}

	for _, pending := range chain {
		if identityOf(pending) == key {
			cycle := make([]ServiceIdentifier, 0, len(chain)+1)
			cycle = append(cycle, chain...)
			return nil, CircularDependencyError{Chain: append(cycle, id)}
		}
	}

	d, ok := p.registry.find(key)
	if !ok {
		return nil, ServiceNotRegisteredError{Identifier: id}
	}

	chain = append(chain[:len(chain):len(chain)], id)

	switch d.Lifetime {
	case Singleton:
		return p.resolveCached(p.singletons, key, d, chain)
	case Scoped:
		return p.resolveCached(p.scoped, key, d, chain)
	case Transient:
		return p.construct(d, chain)
	default:
		return nil, UnknownLifetimeError{Identifier: id, Lifetime: d.Lifetime}
	}
}

// resolveCached returns the cached instance or constructs it once. Concurrent
// callers for the same identifier wait for the first one.
func (p *serviceProvider) resolveCached(cache *instanceCache, key *identity, d *Descriptor, chain []ServiceIdentifier) (any, error) {
	entry, owner := cache.acquire(key)
	if !owner {
		return entry.wait()
	}

	instance, err := p.construct(d, chain)
	cache.complete(key, entry, instance, err)
	return instance, err
}

// construct builds a new instance from d. Nothing is cached here.
func (p *serviceProvider) construct(d *Descriptor, chain []ServiceIdentifier) (any, error) {
	start := time.Now()
	view := &chainedProvider{provider: p, chain: chain}
	defer view.done.Store(true)

	var (
		instance any
		err      error
	)

	switch {
	case d.Factory != nil:
		instance, err = callFactory(d, view)
	case d.ImplementationType != nil:
		instance, err = p.invokeConstructor(d, view)
	default:
		err = InvalidDescriptorError{
			Identifier: d.Identifier,
			Cause:      fmt.Errorf("%w: descriptor has neither a factory nor an implementation", ErrInvalidImplementation),
		}
	}

	if err != nil {
		return nil, err
	}

	if err := checkInstanceType(d.Identifier, instance); err != nil {
		return nil, err
	}

	p.logger.Debug("service constructed",
		"provider", p.id,
		"service", identifierString(d.Identifier),
		"lifetime", d.Lifetime.String(),
		"duration", time.Since(start),
	)

	return instance, nil
}

// callFactory invokes a factory, converting a panic into an error.
func callFactory(d *Descriptor, sp ServiceProvider) (instance any, err error) {
	defer func() {
		if r := recover(); r != nil {
			instance = nil
			err = ConstructorPanicError{Identifier: d.Identifier, Panic: r, Stack: debug.Stack()}
		}
	}()

	return d.Factory(sp)
}

// invokeConstructor resolves the declared dependencies of the implementation
// constructor and calls it with them positionally.
func (p *serviceProvider) invokeConstructor(d *Descriptor, sp ServiceProvider) (any, error) {
	ctorType := reflect.TypeOf(d.ImplementationType)

	info, err := p.analyzer.Analyze(d.ImplementationType)
	if err != nil {
		return nil, ConstructorInvocationError{Identifier: d.Identifier, Constructor: ctorType, Cause: err}
	}

	deps := d.dependencies
	if !d.hasDependencies {
		deps = p.metadata.ConstructorDependencies(d.ImplementationType)
	}
	if len(deps) != info.NumIn() {
		return nil, ConstructorInvocationError{
			Identifier:  d.Identifier,
			Constructor: ctorType,
			Cause:       &reflection.ArityError{Constructor: ctorType, Want: info.NumIn(), Got: len(deps)},
		}
	}

	args := make([]any, len(deps))
	for i, dep := range deps {
		arg, err := sp.GetService(dep)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}

	instance, err := reflection.Invoke(info, args)
	if err != nil {
		if panicErr, ok := err.(*reflection.PanicError); ok {
			return nil, ConstructorPanicError{Identifier: d.Identifier, Panic: panicErr.Value, Stack: panicErr.Stack}
		}
		return nil, ConstructorInvocationError{Identifier: d.Identifier, Constructor: ctorType, Cause: err}
	}

	return instance, nil
}

// checkInstanceType verifies a non-nil instance against the identifier type.
func checkInstanceType(id ServiceIdentifier, instance any) error {
	if instance == nil {
		return nil
	}

	expected := identityOf(id).typ
	if expected == nil {
		return nil
	}

	if actual := reflect.TypeOf(instance); !actual.AssignableTo(expected) {
		return TypeMismatchError{Identifier: id, Expected: expected, Actual: actual, Context: "construction"}
	}

	return nil
}

// chainedProvider is the view of a provider handed to factories and used for
// constructor dependencies. While the construction is running its GetService
// extends the resolution chain. Once the construction returns, a retained
// view resolves like the provider itself with a fresh chain.
type chainedProvider struct {
	provider *serviceProvider
	chain    []ServiceIdentifier
	done     atomic.Bool
}

var _ ServiceProvider = (*chainedProvider)(nil)

func (v *chainedProvider) ID() string {
	return v.provider.ID()
}

func (v *chainedProvider) GetService(id ServiceIdentifier) (any, error) {
	if v.done.Load() {
		return v.provider.resolve(id, nil)
	}
	return v.provider.resolve(id, v.chain)
}

func (v *chainedProvider) IsService(id ServiceIdentifier) bool {
	return v.provider.IsService(id)
}

func (v *chainedProvider) CreateScope(ctx context.Context) (Scope, error) {
	return v.provider.CreateScope(ctx)
}

func (v *chainedProvider) Dispose() {
	v.provider.Dispose()
}

// Resolve resolves the service registered for id and returns it as T.
//
// Example:
//
//	repo, err := ioc.Resolve(provider, RepoID)
func Resolve[T any](sp ServiceProvider, id Identifier[T]) (T, error) {
	var zero T
	if sp == nil {
		return zero, ErrProviderNil
	}

	instance, err := sp.GetService(id)
	if err != nil {
		return zero, err
	}

	if instance == nil {
		return zero, nil
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, TypeMismatchError{
			Identifier: id,
			Expected:   id.Type(),
			Actual:     reflect.TypeOf(instance),
			Context:    "type assertion",
		}
	}

	return typed, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](sp ServiceProvider, id Identifier[T]) T {
	instance, err := Resolve(sp, id)
	if err != nil {
		panic(err)
	}
	return instance
}
