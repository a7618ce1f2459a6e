package ioc

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Lifetime specifies how instances of a service are shared.
// The lifetime decides which cache, if any, holds a constructed instance.
type Lifetime int

const (
	// Singleton specifies that a single instance of the service is created
	// and shared. The root provider constructs every singleton when it is
	// built, and scopes inherit the instances that already exist.
	Singleton Lifetime = iota

	// Scoped specifies that one instance is created per scope.
	// In web applications this typically means one instance per request.
	// Scoped instances are dropped when their scope is disposed.
	Scoped

	// Transient specifies that a new instance is created every time the
	// service is requested. Transient instances are never cached.
	Transient
)

// String returns the string representation of the Lifetime.
func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "Singleton"
	case Scoped:
		return "Scoped"
	case Transient:
		return "Transient"
	default:
		return fmt.Sprintf("Unknown(%d)", int(l))
	}
}

// IsValid reports whether l is one of Singleton, Scoped or Transient.
func (l Lifetime) IsValid() bool {
	return l >= Singleton && l <= Transient
}

// MarshalText implements encoding.TextMarshaler.
func (l Lifetime) MarshalText() ([]byte, error) {
	if !l.IsValid() {
		return nil, LifetimeError{Value: int(l)}
	}

	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Lifetime) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "singleton":
		*l = Singleton
	case "scoped":
		*l = Scoped
	case "transient":
		*l = Transient
	default:
		return LifetimeError{Value: string(text)}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l Lifetime) MarshalJSON() ([]byte, error) {
	text, err := l.MarshalText()
	if err != nil {
		return nil, err
	}

	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Lifetime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	return l.UnmarshalText([]byte(s))
}
