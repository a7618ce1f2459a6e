package ioc

import (
	"reflect"
	"strconv"
	"sync/atomic"
)

// identifierSeq issues identity sequence numbers.
var identifierSeq atomic.Uint64

// identity is the token behind every identifier. Identifiers compare by the
// address of their identity, never by name or type.
type identity struct {
	seq  uint64
	name string
	typ  reflect.Type
}

func (id *identity) String() string {
	if id == nil {
		return "<nil>"
	}

	name := id.name
	if name == "" {
		name = formatType(id.typ)
	}

	return name + "#" + strconv.FormatUint(id.seq, 10)
}

// ServiceIdentifier names a service contract. It is the registry and cache
// key for a service.
//
// ServiceIdentifier cannot be implemented outside this package; use
// NewIdentifier to obtain one.
type ServiceIdentifier interface {
	// String returns a human readable form used in errors and logs.
	String() string

	serviceIdentity() *identity
}

// Identifier is a typed ServiceIdentifier for services of type T.
//
// Two identifiers are equal only when they come from the same call to
// NewIdentifier. The zero Identifier is the nil identifier and is rejected by
// every operation with ErrIdentifierNil.
type Identifier[T any] struct {
	id *identity
}

var _ ServiceIdentifier = Identifier[any]{}

// NewIdentifier returns a new identifier for a service of type T.
// The name is used for diagnostics only; identifiers created with the same
// name and type are still distinct.
//
// Example:
//
//	var RepoID = ioc.NewIdentifier[*Repo]("Repo")
func NewIdentifier[T any](name string) Identifier[T] {
	return Identifier[T]{
		id: &identity{
			seq:  identifierSeq.Add(1),
			name: name,
			typ:  reflect.TypeOf((*T)(nil)).Elem(),
		},
	}
}

// Name returns the diagnostic name given to NewIdentifier.
func (i Identifier[T]) Name() string {
	if i.id == nil {
		return ""
	}

	return i.id.name
}

// Type returns the service type T.
func (i Identifier[T]) Type() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// IsZero reports whether i is the nil identifier.
func (i Identifier[T]) IsZero() bool {
	return i.id == nil
}

func (i Identifier[T]) String() string {
	return i.id.String()
}

func (i Identifier[T]) serviceIdentity() *identity {
	return i.id
}

// identityOf returns the identity behind id, or nil for nil identifiers.
func identityOf(id ServiceIdentifier) *identity {
	if id == nil {
		return nil
	}

	return id.serviceIdentity()
}

// identifierString formats a possibly nil identifier.
func identifierString(id ServiceIdentifier) string {
	if id == nil {
		return "<nil>"
	}

	return id.String()
}
