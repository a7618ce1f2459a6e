// Package fiber provides ioc integration for the Fiber web framework.
//
// This package provides middleware for creating a scope per request and
// handler wrappers that resolve controllers by identifier.
//
// Example usage:
//
//	provider, _ := collection.Build()
//
//	app := fiber.New()
//	app.Use(iocfiber.ScopeMiddleware(provider))
//
//	app.Post("/login", iocfiber.Handle(AuthControllerID, (*AuthController).Login))
//	app.Get("/users/:id", iocfiber.Handle(UserControllerID, (*UserController).GetByID))
package fiber

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/junioryono/ioc"
)

// scopeKey is the key used to store the scope in fiber.Ctx.Locals
const scopeKey = "ioc_scope"

// Config holds the configuration for the scope middleware.
type Config struct {
	// ErrorHandler is called when scope creation or a middleware fails.
	// If nil, a 500 JSON response is written.
	ErrorHandler func(*fiber.Ctx, error) error

	// Logger receives errors reported by the default handlers.
	Logger *slog.Logger

	// Middlewares are functions that run after scope creation.
	// They can be used to initialize request context, set user data, etc.
	Middlewares []func(ioc.Scope, *fiber.Ctx) error
}

// Option configures the scope middleware.
type Option func(*Config)

// WithErrorHandler sets the error handler for scope creation failures.
func WithErrorHandler(h func(*fiber.Ctx, error) error) Option {
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
func WithMiddleware(mw func(ioc.Scope, *fiber.Ctx) error) Option {
	return func(c *Config) {
		c.Middlewares = append(c.Middlewares, mw)
	}
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal Server Error",
	})
}

func defaultConfig() *Config {
	cfg := &Config{Logger: slog.Default()}
	cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
		cfg.Logger.Error("failed to prepare request scope", "route", c.Route().Path, "error", err)
		return internalError(c)
	}
	return cfg
}

// ScopeMiddleware creates a Fiber middleware that creates a scope for each
// request. The scope is stored in fiber.Ctx.Locals and attached to the
// UserContext, where ioc.FromContext finds it.
//
// The scope is disposed when the request completes.
//
// Example:
//
//	app := fiber.New()
//	app.Use(iocfiber.ScopeMiddleware(provider))
func ScopeMiddleware(provider ioc.ServiceProvider, opts ...Option) fiber.Handler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *fiber.Ctx) error {
		scope, err := provider.CreateScope(c.UserContext())
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}
		defer scope.Dispose()

		c.SetUserContext(scope.Context())
		c.Locals(scopeKey, scope)

		for _, mw := range cfg.Middlewares {
			if err := mw(scope, c); err != nil {
				return cfg.ErrorHandler(c, err)
			}
		}

		return c.Next()
	}
}

// FromContext retrieves the scope stored by ScopeMiddleware.
// This is useful when you need to resolve services manually.
//
// Example:
//
//	scope, err := iocfiber.FromContext(c)
//	if err != nil {
//	    return err
//	}
//	users := ioc.MustResolve(scope.ServiceProvider(), UserServiceID)
func FromContext(c *fiber.Ctx) (ioc.Scope, error) {
	if scope, ok := c.Locals(scopeKey).(ioc.Scope); ok {
		return scope, nil
	}
	return ioc.FromContext(c.UserContext())
}

// HandlerConfig holds configuration for the Handle wrapper.
type HandlerConfig struct {
	// PanicRecovery enables panic recovery in the handler.
	PanicRecovery bool

	// PanicHandler is called when a panic occurs (if PanicRecovery is true).
	PanicHandler func(*fiber.Ctx, any) error

	// ScopeErrorHandler is called when scope retrieval fails.
	ScopeErrorHandler func(*fiber.Ctx, error) error

	// ResolutionErrorHandler is called when service resolution fails.
	ResolutionErrorHandler func(*fiber.Ctx, error) error

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
func WithPanicHandler(h func(*fiber.Ctx, any) error) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicHandler = h
	}
}

// WithScopeErrorHandler sets the error handler for scope retrieval failures.
func WithScopeErrorHandler(h func(*fiber.Ctx, error) error) HandlerOption {
	return func(c *HandlerConfig) {
		c.ScopeErrorHandler = h
	}
}

// WithResolutionErrorHandler sets the error handler for service resolution failures.
func WithResolutionErrorHandler(h func(*fiber.Ctx, error) error) HandlerOption {
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
	cfg.PanicHandler = func(c *fiber.Ctx, v any) error {
		cfg.Logger.Error("panic in handler", "route", c.Route().Path, "panic", v)
		return internalError(c)
	}
	cfg.ScopeErrorHandler = func(c *fiber.Ctx, err error) error {
		cfg.Logger.Error("failed to get scope from context", "route", c.Route().Path, "error", err)
		return internalError(c)
	}
	cfg.ResolutionErrorHandler = func(c *fiber.Ctx, err error) error {
		cfg.Logger.Error("failed to resolve controller", "route", c.Route().Path, "error", err)
		return internalError(c)
	}
	return cfg
}

// Handle wraps a controller method. The controller registered under id is
// resolved from the scope stored in fiber.Ctx.Locals.
//
// Example:
//
//	var UserControllerID = ioc.NewIdentifier[*UserController]("UserController")
//
//	app.Get("/users/:id", iocfiber.Handle(UserControllerID, (*UserController).GetByID))
func Handle[T any](id ioc.Identifier[T], method func(T, *fiber.Ctx) error, opts ...HandlerOption) fiber.Handler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *fiber.Ctx) (err error) {
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
