// Package http provides ioc integration for net/http servers.
//
// ScopeMiddleware opens a scope for every request and disposes it when the
// request completes. Handle resolves a controller from that scope by
// identifier and calls one of its methods.
//
// Example usage:
//
//	provider, _ := collection.Build()
//
//	mux := http.NewServeMux()
//	mux.HandleFunc("/users", iochttp.Handle(UserControllerID, (*UserController).List))
//
//	http.ListenAndServe(":8080", iochttp.ScopeMiddleware(provider)(mux))
package http

import (
	"log/slog"
	"net/http"

	"github.com/junioryono/ioc"
)

// Config holds the configuration for the scope middleware.
type Config struct {
	// ErrorHandler is called when scope creation or a middleware fails.
	// If nil, a default handler returning 500 Internal Server Error is used.
	ErrorHandler func(http.ResponseWriter, *http.Request, error)

	// Logger receives errors reported by the default handlers.
	Logger *slog.Logger

	// Middlewares run in order after the scope is attached to the request.
	Middlewares []func(ioc.Scope, *http.Request) error
}

// Option configures the scope middleware.
type Option func(*Config)

// WithErrorHandler sets the error handler for scope creation failures.
func WithErrorHandler(h func(http.ResponseWriter, *http.Request, error)) Option {
	return func(c *Config) {
		c.ErrorHandler = h
	}
}

// WithLogger sets the logger used by the default error handler.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMiddleware adds a function that runs after scope creation.
// Multiple middlewares are executed in the order they are added.
func WithMiddleware(mw func(ioc.Scope, *http.Request) error) Option {
	return func(c *Config) {
		c.Middlewares = append(c.Middlewares, mw)
	}
}

func defaultConfig() *Config {
	cfg := &Config{Logger: slog.Default()}
	cfg.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		cfg.Logger.Error("failed to prepare request scope", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
	return cfg
}

// ScopeMiddleware returns middleware that creates a scope for each request.
// The scope is attached to the request context, where ioc.FromContext finds
// it, and is disposed after the next handler returns.
func ScopeMiddleware(provider ioc.ServiceProvider, opts ...Option) func(http.Handler) http.Handler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, err := provider.CreateScope(r.Context())
			if err != nil {
				cfg.ErrorHandler(w, r, err)
				return
			}
			defer scope.Dispose()

			r = r.WithContext(scope.Context())

			for _, mw := range cfg.Middlewares {
				if err := mw(scope, r); err != nil {
					cfg.ErrorHandler(w, r, err)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// HandlerConfig holds configuration for the Handle and Wrap wrappers.
type HandlerConfig struct {
	// PanicRecovery enables panic recovery in the handler.
	PanicRecovery bool

	// PanicHandler is called when a panic occurs (if PanicRecovery is true).
	PanicHandler func(http.ResponseWriter, *http.Request, any)

	// ScopeErrorHandler is called when the request carries no scope.
	ScopeErrorHandler func(http.ResponseWriter, *http.Request, error)

	// ResolutionErrorHandler is called when the controller cannot be resolved.
	ResolutionErrorHandler func(http.ResponseWriter, *http.Request, error)

	// Logger receives errors reported by the default handlers.
	Logger *slog.Logger
}

// HandlerOption configures the Handle and Wrap wrappers.
type HandlerOption func(*HandlerConfig)

// WithPanicRecovery enables or disables panic recovery in the handler.
func WithPanicRecovery(enabled bool) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicRecovery = enabled
	}
}

// WithPanicHandler sets the handler for panics.
func WithPanicHandler(h func(http.ResponseWriter, *http.Request, any)) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicHandler = h
	}
}

// WithScopeErrorHandler sets the error handler for missing scopes.
func WithScopeErrorHandler(h func(http.ResponseWriter, *http.Request, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.ScopeErrorHandler = h
	}
}

// WithResolutionErrorHandler sets the error handler for resolution failures.
func WithResolutionErrorHandler(h func(http.ResponseWriter, *http.Request, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.ResolutionErrorHandler = h
	}
}

// WithHandlerLogger sets the logger used by the default handlers.
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(c *HandlerConfig) {
		c.Logger = logger
	}
}

func defaultHandlerConfig() *HandlerConfig {
	cfg := &HandlerConfig{Logger: slog.Default()}
	cfg.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		cfg.Logger.Error("panic in handler", "path", r.URL.Path, "panic", v)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
	cfg.ScopeErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		cfg.Logger.Error("failed to get scope from context", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
	cfg.ResolutionErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		cfg.Logger.Error("failed to resolve controller", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
	return cfg
}

// Wrap adapts a handler that needs the request scope's service provider.
func Wrap(fn func(ioc.ServiceProvider, http.ResponseWriter, *http.Request), opts ...HandlerOption) http.HandlerFunc {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.PanicRecovery {
			defer func() {
				if v := recover(); v != nil {
					cfg.PanicHandler(w, r, v)
				}
			}()
		}

		scope, err := ioc.FromContext(r.Context())
		if err != nil {
			cfg.ScopeErrorHandler(w, r, err)
			return
		}

		fn(scope.ServiceProvider(), w, r)
	}
}

// Handle wraps a controller method. The controller registered under id is
// resolved from the request scope and passed to method.
//
// Example:
//
//	var UserControllerID = ioc.NewIdentifier[*UserController]("UserController")
//
//	mux.HandleFunc("/users/{id}", iochttp.Handle(UserControllerID, (*UserController).GetByID))
func Handle[T any](id ioc.Identifier[T], method func(T, http.ResponseWriter, *http.Request), opts ...HandlerOption) http.HandlerFunc {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return Wrap(func(sp ioc.ServiceProvider, w http.ResponseWriter, r *http.Request) {
		controller, err := ioc.Resolve(sp, id)
		if err != nil {
			cfg.ResolutionErrorHandler(w, r, err)
			return
		}

		method(controller, w, r)
	}, opts...)
}
