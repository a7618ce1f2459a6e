// Package digbridge exposes services of an ioc.ServiceProvider to
// go.uber.org/dig.
//
// Provide registers an identifier as a dig constructor, so dig-based code can
// depend on services owned by the container. Invoke calls a function with
// its parameters resolved from the container by identifier.
package digbridge

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/junioryono/ioc"
	"go.uber.org/dig"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// ErrContainerNil is returned when a nil dig container is passed to Provide.
var ErrContainerNil = errors.New("dig container cannot be nil")

// Provide registers a constructor for T in c that resolves id from sp.
//
// dig calls the constructor at most once per container, so the value seen by
// dig is the instance resolved at that time whatever the service lifetime.
// Use a scope's provider to expose scoped services.
//
// Example:
//
//	c := dig.New()
//	if err := digbridge.Provide(c, provider, LoggerID); err != nil {
//	    return err
//	}
//	err := c.Invoke(func(logger *Logger) { ... })
func Provide[T any](c *dig.Container, sp ioc.ServiceProvider, id ioc.Identifier[T], opts ...dig.ProvideOption) error {
	if c == nil {
		return ErrContainerNil
	}

	if sp == nil {
		return ioc.ErrProviderNil
	}

	if id.IsZero() {
		return ioc.ErrIdentifierNil
	}

	return c.Provide(func() (T, error) {
		return ioc.Resolve(sp, id)
	}, opts...)
}

// Invoke calls fn with its parameters resolved from sp. The i-th parameter
// is resolved from ids[i]. fn may return nothing or an error; a returned
// error is passed through dig to the caller.
//
// Every parameter must have a distinct type because dig keys values by type.
func Invoke(sp ioc.ServiceProvider, fn any, ids ...ioc.ServiceIdentifier) error {
	if sp == nil {
		return ioc.ErrProviderNil
	}

	fnType := reflect.TypeOf(fn)
	if fnType == nil || fnType.Kind() != reflect.Func {
		return fmt.Errorf("digbridge: invoke target must be a function, got %v", fnType)
	}

	if fnType.NumIn() != len(ids) {
		return fmt.Errorf("digbridge: %s takes %d parameters but %d identifiers were given",
			fnType, fnType.NumIn(), len(ids))
	}

	c := dig.New()
	for i, id := range ids {
		if id == nil {
			return fmt.Errorf("digbridge: identifier %d: %w", i, ioc.ErrIdentifierNil)
		}

		if err := c.Provide(resolver(sp, id, fnType.In(i)).Interface()); err != nil {
			return fmt.Errorf("digbridge: parameter %d of %s: %w", i, fnType, err)
		}
	}

	return c.Invoke(fn)
}

// resolver builds a dig constructor func() (paramType, error) resolving id.
func resolver(sp ioc.ServiceProvider, id ioc.ServiceIdentifier, paramType reflect.Type) reflect.Value {
	ctorType := reflect.FuncOf(nil, []reflect.Type{paramType, errType}, false)

	return reflect.MakeFunc(ctorType, func([]reflect.Value) []reflect.Value {
		out := reflect.New(paramType).Elem()

		instance, err := sp.GetService(id)
		if err == nil && instance != nil {
			v := reflect.ValueOf(instance)
			if v.Type().AssignableTo(paramType) {
				out.Set(v)
			} else {
				err = ioc.TypeMismatchError{
					Identifier: id,
					Expected:   paramType,
					Actual:     v.Type(),
					Context:    "dig parameter",
				}
			}
		}

		errOut := reflect.New(errType).Elem()
		if err != nil {
			errOut.Set(reflect.ValueOf(&err).Elem())
		}

		return []reflect.Value{out, errOut}
	})
}
