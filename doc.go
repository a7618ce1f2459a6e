// Package ioc provides a runtime service container with singleton, scoped
// and transient lifetimes and hierarchical scopes.
//
// # Overview
//
// Services are registered under identifiers, opaque tokens created with
// NewIdentifier. An identifier is compared by identity, never by name, so two
// identifiers for the same Go type are two different services:
//
//	var (
//	    RepoID    = ioc.NewIdentifier[*Repo]("Repo")
//	    ServiceID = ioc.NewIdentifier[*Service]("Service")
//	)
//
// # Basic Usage
//
// Create a collection, register services, build a provider, and resolve:
//
//	provider, err := ioc.NewCollection().
//	    AddSingleton(RepoID, ioc.Factory(func(ioc.ServiceProvider) (*Repo, error) {
//	        return &Repo{}, nil
//	    })).
//	    AddSingleton(ServiceID, NewService, ioc.DependsOn(RepoID)).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	svc, err := ioc.Resolve(provider, ServiceID)
//
// # Service Lifetimes
//
//   - Singleton: one instance per provider. Build constructs every singleton
//     before returning, and scopes copy the singletons of their parent.
//   - Scoped: one instance per provider or scope, dropped by Dispose.
//   - Transient: a new instance on every resolution.
//
// # Dependencies
//
// A factory receives the provider performing the resolution and may resolve
// anything it needs from it. Factories are the recommended way to register
// services:
//
//	services.AddScoped(ServiceID, ioc.Factory(func(sp ioc.ServiceProvider) (*Service, error) {
//	    repo, err := ioc.Resolve(sp, RepoID)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &Service{Repo: repo}, nil
//	}))
//
// A plain constructor function may be registered instead. Its parameters are
// satisfied positionally from the identifiers declared with DependsOn, or
// from a custom MetadataProvider set in ProviderOptions.
//
// # Scopes
//
// Create isolated scopes for request-scoped services:
//
//	http.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
//	    scope, err := provider.CreateScope(r.Context())
//	    if err != nil {
//	        http.Error(w, err.Error(), http.StatusInternalServerError)
//	        return
//	    }
//	    defer scope.Dispose()
//
//	    svc, _ := ioc.Resolve(scope.ServiceProvider(), ServiceID)
//	})
//
// Disposing a provider or scope only clears its own scoped instances. It
// never affects the parent, siblings or children, and the provider stays
// usable.
//
// # Thread Safety
//
// Providers and scopes can be used from multiple goroutines. Concurrent first
// requests for a cached service construct it once. Collection is not safe
// for concurrent use.
//
// # Error Handling
//
// Errors can be tested with errors.Is against the sentinels and inspected
// with errors.As:
//   - ServiceNotRegisteredError: no descriptor for an identifier
//   - UnknownLifetimeError: a descriptor with an invalid lifetime
//   - CircularDependencyError: a service that requires itself
//   - BuildError: a singleton that failed during Build or CreateScope
package ioc
