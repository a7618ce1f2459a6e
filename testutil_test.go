package ioc

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// ============================================================================
// Shared Test Types
// ============================================================================

// TService is a basic service for testing.
type TService struct {
	ID    string
	Value int
}

// TDependency is a basic dependency for testing.
type TDependency struct {
	Name string
}

// TServiceWithDeps demonstrates dependency injection.
type TServiceWithDeps struct {
	Svc *TService
	Dep *TDependency
}

// TInterface is a basic interface for testing.
type TInterface interface {
	GetID() string
}

func (s *TService) GetID() string { return s.ID }

// Repo and Service mirror a repository consumed by an application service.
type Repo struct {
	Name string
}

type Service struct {
	Repo *Repo
}

// Widget is produced by transient factories.
type Widget struct {
	Serial int64
}

// ============================================================================
// Constructors
// ============================================================================

func NewTService() *TService {
	return &TService{ID: "service"}
}

func NewTDependency() *TDependency {
	return &TDependency{Name: "dependency"}
}

func NewTServiceWithDeps(svc *TService, dep *TDependency) *TServiceWithDeps {
	return &TServiceWithDeps{Svc: svc, Dep: dep}
}

func NewService(repo *Repo) *Service {
	return &Service{Repo: repo}
}

// serviceConstructor returns closures that all share one code pointer.
//
//go:noinline
func serviceConstructor() func(*Repo) *Service {
	return func(repo *Repo) *Service {
		return &Service{Repo: repo}
	}
}

// ============================================================================
// Helpers
// ============================================================================

// countingFactory returns a factory producing a new *TService per call and
// the counter of calls.
func countingFactory() (FactoryFunc, *atomic.Int32) {
	calls := &atomic.Int32{}
	return Factory(func(ServiceProvider) (*TService, error) {
		n := calls.Add(1)
		return &TService{ID: "counted", Value: int(n)}, nil
	}), calls
}

// widgetFactory returns a factory producing numbered widgets.
func widgetFactory() FactoryFunc {
	var serial atomic.Int64
	return Factory(func(ServiceProvider) (*Widget, error) {
		return &Widget{Serial: serial.Add(1)}, nil
	})
}

// mustBuild builds the collection or fails the test.
func mustBuild(t *testing.T, c Collection) ServiceProvider {
	t.Helper()

	provider, err := c.Build()
	require.NoError(t, err)
	require.NotNil(t, provider)
	return provider
}

// mustScope creates a scope or fails the test.
func mustScope(t *testing.T, sp ServiceProvider) Scope {
	t.Helper()

	scope, err := sp.CreateScope(context.Background())
	require.NoError(t, err)
	require.NotNil(t, scope)
	return scope
}

// mustGet resolves id or fails the test.
func mustGet(t *testing.T, sp ServiceProvider, id ServiceIdentifier) any {
	t.Helper()

	instance, err := sp.GetService(id)
	require.NoError(t, err)
	return instance
}
