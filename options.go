package ioc

import (
	"log/slog"
	"time"
)

// ProviderOptions configures a ServiceProvider. Scopes inherit the options of
// the provider that created them.
type ProviderOptions struct {
	// Logger receives debug logs about construction and scopes.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// MetadataProvider reports the dependencies of constructors registered
	// without DependsOn. Dependencies declared with DependsOn always win.
	// If nil, such constructors take no parameters.
	MetadataProvider MetadataProvider

	// OnServiceResolved is called after every successful GetService call.
	OnServiceResolved func(id ServiceIdentifier, instance any, duration time.Duration)

	// OnServiceError is called after every failed GetService call.
	OnServiceError func(id ServiceIdentifier, err error)
}

// logger returns the configured logger or the slog default.
func (o *ProviderOptions) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return slog.Default()
	}

	return o.Logger
}
