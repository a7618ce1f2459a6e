// Package gin provides ioc integration for the Gin web framework.
//
// This package provides middleware for creating a scope per request and
// handler wrappers that resolve controllers by identifier.
//
// Example usage:
//
//	provider, _ := collection.Build()
//
//	g := gin.New()
//	g.Use(iocgin.ScopeMiddleware(provider))
//
//	g.POST("/login", iocgin.Handle(AuthControllerID, (*AuthController).Login))
//	g.GET("/users/:id", iocgin.Handle(UserControllerID, (*UserController).GetByID))
package gin

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junioryono/ioc"
)

// ScopeKey is the gin.Context key under which the request scope is stored.
const ScopeKey = "ioc.scope"

// Config holds the configuration for the scope middleware.
type Config struct {
	// ErrorHandler is called when scope creation or a middleware fails.
	// If nil, a default handler returning 500 Internal Server Error is used.
	ErrorHandler func(*gin.Context, error)

	// Logger receives errors reported by the default handlers.
	Logger *slog.Logger

	// Middlewares are functions that run after scope creation.
	// They can be used to initialize request context, set user claims, etc.
	Middlewares []func(ioc.Scope, *gin.Context) error
}

// Option configures the scope middleware.
type Option func(*Config)

// WithErrorHandler sets the error handler for scope creation failures.
func WithErrorHandler(h func(*gin.Context, error)) Option {
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
//
// Example:
//
//	iocgin.ScopeMiddleware(provider,
//	    iocgin.WithMiddleware(func(scope ioc.Scope, c *gin.Context) error {
//	        reqCtx := ioc.MustResolve(scope.ServiceProvider(), RequestContextID)
//	        reqCtx.UserAgent = c.GetHeader("User-Agent")
//	        return nil
//	    }),
//	)
func WithMiddleware(mw func(ioc.Scope, *gin.Context) error) Option {
	return func(c *Config) {
		c.Middlewares = append(c.Middlewares, mw)
	}
}

func defaultConfig() *Config {
	cfg := &Config{Logger: slog.Default()}
	cfg.ErrorHandler = func(c *gin.Context, err error) {
		cfg.Logger.Error("failed to prepare request scope", "route", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "Internal Server Error",
		})
	}
	return cfg
}

// ScopeMiddleware creates a gin.HandlerFunc that creates a scope for each
// request. The scope is attached to the request context, where
// ioc.FromContext finds it, and stored under ScopeKey.
//
// The scope is disposed when the request completes.
//
// Example:
//
//	g := gin.New()
//	g.Use(iocgin.ScopeMiddleware(provider))
func ScopeMiddleware(provider ioc.ServiceProvider, opts ...Option) gin.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *gin.Context) {
		scope, err := provider.CreateScope(c.Request.Context())
		if err != nil {
			cfg.ErrorHandler(c, err)
			return
		}
		defer scope.Dispose()

		c.Request = c.Request.WithContext(scope.Context())
		c.Set(ScopeKey, scope)

		for _, mw := range cfg.Middlewares {
			if err := mw(scope, c); err != nil {
				cfg.ErrorHandler(c, err)
				return
			}
		}

		c.Next()
	}
}

// FromContext returns the scope created by ScopeMiddleware for c.
func FromContext(c *gin.Context) (ioc.Scope, error) {
	if v, ok := c.Get(ScopeKey); ok {
		if scope, ok := v.(ioc.Scope); ok {
			return scope, nil
		}
	}
	if c.Request == nil {
		return nil, ioc.ErrScopeNotInContext
	}
	return ioc.FromContext(c.Request.Context())
}

// HandlerConfig holds configuration for the Handle wrapper.
type HandlerConfig struct {
	// PanicRecovery enables panic recovery in the handler.
	// If true, panics are caught and handled by PanicHandler.
	PanicRecovery bool

	// PanicHandler is called when a panic occurs (if PanicRecovery is true).
	// If nil, a default handler returning 500 Internal Server Error is used.
	PanicHandler func(*gin.Context, any)

	// ScopeErrorHandler is called when scope retrieval fails.
	// If nil, a default handler returning 500 Internal Server Error is used.
	ScopeErrorHandler func(*gin.Context, error)

	// ResolutionErrorHandler is called when service resolution fails.
	// If nil, a default handler returning 500 Internal Server Error is used.
	ResolutionErrorHandler func(*gin.Context, error)

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

// WithPanicHandler sets the handler for panics (requires WithPanicRecovery(true)).
func WithPanicHandler(h func(*gin.Context, any)) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicHandler = h
	}
}

// WithScopeErrorHandler sets the error handler for scope retrieval failures.
func WithScopeErrorHandler(h func(*gin.Context, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.ScopeErrorHandler = h
	}
}

// WithResolutionErrorHandler sets the error handler for service resolution failures.
func WithResolutionErrorHandler(h func(*gin.Context, error)) HandlerOption {
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

func abortInternal(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error": "Internal Server Error",
	})
}

func defaultHandlerConfig() *HandlerConfig {
	cfg := &HandlerConfig{Logger: slog.Default()}
	cfg.PanicHandler = func(c *gin.Context, r any) {
		cfg.Logger.Error("panic in handler", "route", c.FullPath(), "panic", r)
		abortInternal(c)
	}
	cfg.ScopeErrorHandler = func(c *gin.Context, err error) {
		cfg.Logger.Error("failed to get scope from context", "route", c.FullPath(), "error", err)
		abortInternal(c)
	}
	cfg.ResolutionErrorHandler = func(c *gin.Context, err error) {
		cfg.Logger.Error("failed to resolve controller", "route", c.FullPath(), "error", err)
		abortInternal(c)
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
//	g.GET("/users/:id", iocgin.Handle(UserControllerID, (*UserController).GetByID))
func Handle[T any](id ioc.Identifier[T], method func(T, *gin.Context), opts ...HandlerOption) gin.HandlerFunc {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *gin.Context) {
		if cfg.PanicRecovery {
			defer func() {
				if r := recover(); r != nil {
					cfg.PanicHandler(c, r)
				}
			}()
		}

		scope, err := FromContext(c)
		if err != nil {
			cfg.ScopeErrorHandler(c, err)
			return
		}

		controller, err := ioc.Resolve(scope.ServiceProvider(), id)
		if err != nil {
			cfg.ResolutionErrorHandler(c, err)
			return
		}

		method(controller, c)
	}
}
