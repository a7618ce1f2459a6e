// Package chi provides ioc integration for the Chi router.
//
// This package provides middleware for creating a scope per request and
// handler wrappers that resolve controllers by identifier.
//
// Example usage:
//
//	provider, _ := collection.Build()
//
//	r := chi.NewRouter()
//	iocchi.Register(r, provider)
//
//	r.Post("/login", iocchi.Handle(AuthControllerID, (*AuthController).Login))
//	r.Get("/users/{id}", iocchi.Handle(UserControllerID, (*UserController).GetByID))
package chi

import (
	"log/slog"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/junioryono/ioc"
)

// Config holds the configuration for the scope middleware.
type Config struct {
	// ErrorHandler is called when scope creation or a middleware fails.
	// If nil, a default handler returning 500 Internal Server Error is used.
	ErrorHandler func(http.ResponseWriter, *http.Request, error)

	// Logger receives errors reported by the default handlers.
	Logger *slog.Logger

	// Middlewares are functions that run after scope creation.
	// They can be used to initialize request context, set user data, etc.
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

// WithMiddleware adds a middleware function that runs after scope creation.
// Multiple middlewares are executed in the order they are added.
func WithMiddleware(mw func(ioc.Scope, *http.Request) error) Option {
	return func(c *Config) {
		c.Middlewares = append(c.Middlewares, mw)
	}
}

func defaultConfig() *Config {
	cfg := &Config{Logger: slog.Default()}
	cfg.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		cfg.Logger.Error("failed to prepare request scope", "route", routePattern(r), "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
	return cfg
}

// routePattern returns the matched chi pattern, or the raw path when the
// request did not pass through a chi router.
func routePattern(r *http.Request) string {
	if rctx := gochi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// ScopeMiddleware creates a Chi middleware that creates a scope for each
// request. The scope is attached to the request context and can be
// retrieved using ioc.FromContext.
//
// The scope is disposed when the request completes.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Use(iocchi.ScopeMiddleware(provider))
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

			// Attach scope to request context
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

// Register installs ScopeMiddleware on r.
func Register(r gochi.Router, provider ioc.ServiceProvider, opts ...Option) {
	r.Use(ScopeMiddleware(provider, opts...))
}

// HandlerConfig holds configuration for the Handle wrapper.
type HandlerConfig struct {
	// PanicRecovery enables panic recovery in the handler.
	PanicRecovery bool

	// PanicHandler is called when a panic occurs (if PanicRecovery is true).
	PanicHandler func(http.ResponseWriter, *http.Request, any)

	// ScopeErrorHandler is called when scope retrieval fails.
	ScopeErrorHandler func(http.ResponseWriter, *http.Request, error)

	// ResolutionErrorHandler is called when service resolution fails.
	ResolutionErrorHandler func(http.ResponseWriter, *http.Request, error)

	// Logger receives errors reported by the default handlers.
	Logger *slog.Logger
}

// HandlerOption configures the Handle wrapper.
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

// WithScopeErrorHandler sets the error handler for scope retrieval failures.
func WithScopeErrorHandler(h func(http.ResponseWriter, *http.Request, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.ScopeErrorHandler = h
	}
}

// WithResolutionErrorHandler sets the error handler for service resolution failures.
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
		cfg.Logger.Error("panic in handler", "route", routePattern(r), "panic", v)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
	cfg.ScopeErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		cfg.Logger.Error("failed to get scope from context", "route", routePattern(r), "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
	cfg.ResolutionErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		cfg.Logger.Error("failed to resolve controller", "route", routePattern(r), "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
	return cfg
}

// Handle wraps a controller method. The controller registered under id is
// resolved from the scope attached to the request context.
//
// Example:
//
//	var UserControllerID = ioc.NewIdentifier[*UserController]("UserController")
//
//	r.Get("/users/{id}", iocchi.Handle(UserControllerID, (*UserController).GetByID))
func Handle[T any](id ioc.Identifier[T], method func(T, http.ResponseWriter, *http.Request), opts ...HandlerOption) http.HandlerFunc {
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

		controller, err := ioc.Resolve(scope.ServiceProvider(), id)
		if err != nil {
			cfg.ResolutionErrorHandler(w, r, err)
			return
		}

		method(controller, w, r)
	}
}

// Route registers Handle(id, method, opts...) on r for the given HTTP
// method and pattern.
func Route[T any](r gochi.Router, httpMethod, pattern string, id ioc.Identifier[T], method func(T, http.ResponseWriter, *http.Request), opts ...HandlerOption) {
	r.Method(httpMethod, pattern, Handle(id, method, opts...))
}
