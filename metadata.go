package ioc

import (
	"sync"

	"github.com/junioryono/ioc/internal/reflection"
)

// MetadataProvider reports the ordered dependencies of an implementation
// constructor.
//
// The returned identifiers must match the constructor's parameters in length
// and order. A constructor the provider knows nothing about has zero
// dependencies; that is not an error.
type MetadataProvider interface {
	ConstructorDependencies(constructor any) []ServiceIdentifier
}

// DependencyTable is a MetadataProvider backed by an explicit side-table from
// constructor function to dependency identifiers.
//
// Entries are keyed by the function's code pointer, so every closure created
// from one function literal shares an entry. Use DependsOn when closures of
// one literal need different dependencies.
//
// Example:
//
//	table := ioc.NewDependencyTable()
//	table.Set(NewService, RepoID, LoggerID)
//	provider, err := services.BuildWithOptions(&ioc.ProviderOptions{MetadataProvider: table})
type DependencyTable struct {
	mu      sync.RWMutex
	entries map[uintptr][]ServiceIdentifier
}

var _ MetadataProvider = (*DependencyTable)(nil)

// NewDependencyTable creates an empty table.
func NewDependencyTable() *DependencyTable {
	return &DependencyTable{
		entries: make(map[uintptr][]ServiceIdentifier),
	}
}

// Set records the dependencies of constructor, replacing any previous entry.
// Values that are not functions are ignored.
func (t *DependencyTable) Set(constructor any, deps ...ServiceIdentifier) {
	key, ok := reflection.FuncKey(constructor)
	if !ok {
		return
	}

	stored := make([]ServiceIdentifier, len(deps))
	copy(stored, deps)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[key] = stored
}

// ConstructorDependencies implements MetadataProvider.
func (t *DependencyTable) ConstructorDependencies(constructor any) []ServiceIdentifier {
	key, ok := reflection.FuncKey(constructor)
	if !ok {
		return nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	deps := t.entries[key]
	if len(deps) == 0 {
		return nil
	}

	out := make([]ServiceIdentifier, len(deps))
	copy(out, deps)
	return out
}

// Len returns the number of constructors in the table.
func (t *DependencyTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
