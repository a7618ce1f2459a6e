// Package reflection analyzes and invokes implementation constructors.
package reflection

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

var (
	// ErrConstructorNil is returned for nil or typed-nil constructors.
	ErrConstructorNil = errors.New("constructor cannot be nil")

	// ErrNotAFunction is returned when the constructor is not a function.
	ErrNotAFunction = errors.New("constructor must be a function")

	// ErrNoReturn is returned when the constructor returns nothing.
	ErrNoReturn = errors.New("constructor must return a value")
)

// Analyzer performs reflection-based analysis of constructors.
// It caches analysis results by function pointer.
type Analyzer struct {
	mu    sync.RWMutex
	cache map[uintptr]*ConstructorInfo
}

// ConstructorInfo contains analyzed information about a constructor function.
type ConstructorInfo struct {
	Type           reflect.Type
	Value          reflect.Value
	Parameters     []reflect.Type
	Result         reflect.Type
	HasErrorReturn bool // Returns error as second value
}

// NumIn returns the number of positional parameters.
func (info *ConstructorInfo) NumIn() int {
	return len(info.Parameters)
}

// New creates a new Analyzer.
func New() *Analyzer {
	return &Analyzer{
		cache: make(map[uintptr]*ConstructorInfo),
	}
}

// FuncKey returns the key identifying a function value, or false when fn is
// not a non-nil function.
func FuncKey(fn any) (uintptr, bool) {
	if fn == nil {
		return 0, false
	}

	val := reflect.ValueOf(fn)
	if val.Kind() != reflect.Func || val.IsNil() {
		return 0, false
	}

	return val.Pointer(), true
}

// Analyze validates a constructor and extracts its signature.
//
// Accepted shapes are func(...) T and func(...) (T, error). Variadic
// constructors are rejected because dependencies are positional.
func (a *Analyzer) Analyze(constructor any) (*ConstructorInfo, error) {
	if constructor == nil {
		return nil, ErrConstructorNil
	}

	val := reflect.ValueOf(constructor)
	if val.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w, got %s", ErrNotAFunction, val.Type())
	}

	if val.IsNil() {
		return nil, ErrConstructorNil
	}

	cacheKey := val.Pointer()

	a.mu.RLock()
	if cached, ok := a.cache[cacheKey]; ok && cached.Type == val.Type() {
		a.mu.RUnlock()
		return cached.withValue(val), nil
	}
	a.mu.RUnlock()

	typ := val.Type()
	if typ.IsVariadic() {
		return nil, fmt.Errorf("variadic constructor %s is not supported", typ)
	}

	info := &ConstructorInfo{
		Type:       typ,
		Parameters: make([]reflect.Type, typ.NumIn()),
	}

	for i := range typ.NumIn() {
		info.Parameters[i] = typ.In(i)
	}

	switch typ.NumOut() {
	case 0:
		return nil, ErrNoReturn
	case 1:
		if typ.Out(0) == errType {
			return nil, fmt.Errorf("%w: %s returns only an error", ErrNoReturn, typ)
		}
	case 2:
		if typ.Out(1) != errType {
			return nil, fmt.Errorf("second return value of %s must be error", typ)
		}
		info.HasErrorReturn = true
	default:
		return nil, fmt.Errorf("constructor %s returns %d values, expected 1 or 2", typ, typ.NumOut())
	}

	info.Result = typ.Out(0)

	a.mu.Lock()
	a.cache[cacheKey] = info
	a.mu.Unlock()

	return info.withValue(val), nil
}

// withValue returns a copy of info bound to val. Closures created from the
// same function literal share a code pointer, so the cached signature must
// not carry the value it was first analyzed with.
func (info *ConstructorInfo) withValue(val reflect.Value) *ConstructorInfo {
	bound := *info
	bound.Value = val
	return &bound
}

// Clear clears the analysis cache.
func (a *Analyzer) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cache = make(map[uintptr]*ConstructorInfo)
}

// CacheSize returns the number of cached analyses.
func (a *Analyzer) CacheSize() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.cache)
}
