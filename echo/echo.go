// Package echo provides ioc integration for the Echo web framework.
//
// This package provides middleware for creating a scope per request and
// handler wrappers that resolve controllers by identifier.
//
// Example usage:
//
//	provider, _ := collection.Build()
//
//	e := echo.New()
//	e.Use(iocecho.ScopeMiddleware(provider))
//
//	e.POST("/login", iocecho.Handle(AuthControllerID, (*AuthController).Login))
//	e.GET("/users/:id", iocecho.Handle(UserControllerID, (*UserController).GetByID))
package echo

import (
	"log/slog"
	"net/http"

	"github.com/junioryono/ioc"
	"github.com/labstack/echo/v4"
)

// ScopeKey is the echo.Context key under which the request scope is stored.
const ScopeKey = "ioc.scope"

// Config holds the configuration for the scope middleware.
type Config struct {
	// ErrorHandler is called when scope creation or a middleware fails.
	// If nil, a 500 echo.HTTPError wrapping the failure is returned.
	ErrorHandler func(echo.Context, error) error

	// Logger receives errors reported by the default handlers.
	Logger *slog.Logger

	// Middlewares are functions that run after scope creation.
	// They can be used to initialize request context, set user data, etc.
	Middlewares []func(ioc.Scope, echo.Context) error
}

// Option configures the scope middleware.
type Option func(*Config)

// WithErrorHandler sets the error handler for scope creation failures.
func WithErrorHandler(h func(echo.Context, error) error) Option {
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
func WithMiddleware(mw func(ioc.Scope, echo.Context) error) Option {
	return func(c *Config) {
		c.Middlewares = append(c.Middlewares, mw)
	}
}

// internalError returns a 500 echo.HTTPError carrying err as its internal cause.
func internalError(err error) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error").SetInternal(err)
}

func defaultConfig() *Config {
	cfg := &Config{Logger: slog.Default()}
	cfg.ErrorHandler = func(c echo.Context, err error) error {
		cfg.Logger.Error("failed to prepare request scope", "route", c.Path(), "error", err)
		return internalError(err)
	}
	return cfg
}

// ScopeMiddleware creates an Echo middleware that creates a scope for each
// request. The scope is attached to the request context, where
// ioc.FromContext finds it, and stored under ScopeKey.
//
// The scope is disposed when the request completes.
//
// Example:
//
//	e := echo.New()
//	e.Use(iocecho.ScopeMiddleware(provider))
func ScopeMiddleware(provider ioc.ServiceProvider, opts ...Option) echo.MiddlewareFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scope, err := provider.CreateScope(c.Request().Context())
			if err != nil {
				return cfg.ErrorHandler(c, err)
			}
			defer scope.Dispose()

			c.SetRequest(c.Request().WithContext(scope.Context()))
			c.Set(ScopeKey, scope)

			for _, mw := range cfg.Middlewares {
				if err := mw(scope, c); err != nil {
					return cfg.ErrorHandler(c, err)
				}
			}

			return next(c)
		}
	}
}

// FromContext returns the scope created by ScopeMiddleware for c.
func FromContext(c echo.Context) (ioc.Scope, error) {
	if scope, ok := c.Get(ScopeKey).(ioc.Scope); ok {
		return scope, nil
	}
	if c.Request() == nil {
		return nil, ioc.ErrScopeNotInContext
	}
	return ioc.FromContext(c.Request().Context())
}

// HandlerConfig holds configuration for the Handle wrapper.
type HandlerConfig struct {
	// PanicRecovery enables panic recovery in the handler.
	PanicRecovery bool

	// PanicHandler is called when a panic occurs (if PanicRecovery is true).
	PanicHandler func(echo.Context, any) error

	// ScopeErrorHandler is called when scope retrieval fails.
	ScopeErrorHandler func(echo.Context, error) error

	// ResolutionErrorHandler is called when service resolution fails.
	ResolutionErrorHandler func(echo.Context, error) error

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
func WithPanicHandler(h func(echo.Context, any) error) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicHandler = h
	}
}

// WithScopeErrorHandler sets the error handler for scope retrieval failures.
func WithScopeErrorHandler(h func(echo.Context, error) error) HandlerOption {
	return func(c *HandlerConfig) {
		c.ScopeErrorHandler = h
	}
}

// WithResolutionErrorHandler sets the error handler for service resolution failures.
func WithResolutionErrorHandler(h func(echo.Context, error) error) HandlerOption {
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
	cfg.PanicHandler = func(c echo.Context, v any) error {
		cfg.Logger.Error("panic in handler", "route", c.Path(), "panic", v)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
	cfg.ScopeErrorHandler = func(c echo.Context, err error) error {
		cfg.Logger.Error("failed to get scope from context", "route", c.Path(), "error", err)
		return internalError(err)
	}
	cfg.ResolutionErrorHandler = func(c echo.Context, err error) error {
		cfg.Logger.Error("failed to resolve controller", "route", c.Path(), "error", err)
		return internalError(err)
	}
	return cfg
}

// Handle wraps a controller method. The controller registered under id is
// resolved from the request scope and passed to method.
//
// Example:
//
//	var UserControllerID = ioc.NewIdentifier[*UserController]("UserController")
//
//	e.GET("/users/:id", iocecho.Handle(UserControllerID, (*UserController).GetByID))
func Handle[T any](id ioc.Identifier[T], method func(T, echo.Context) error, opts ...HandlerOption) echo.HandlerFunc {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c echo.Context) (err error) {
		if cfg.PanicRecovery {
			defer func() {
				if v := recover(); v != nil {
					err = cfg.PanicHandler(c, v)
				}
			}()
		}

		scope, scopeErr := FromContext(c)
		if scopeErr != nil {
			return cfg.ScopeErrorHandler(c, scopeErr)
		}

		controller, resolveErr := ioc.Resolve(scope.ServiceProvider(), id)
		if resolveErr != nil {
			return cfg.ResolutionErrorHandler(c, resolveErr)
		}

		return method(controller, c)
	}
}
