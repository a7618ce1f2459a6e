package ioc

import (
	"errors"
	"fmt"
	"reflect"
)

// Collection represents the set of service descriptors a ServiceProvider is
// built from.
//
// Collection follows a builder pattern: services are registered with an
// identifier, an implementation and a lifetime, then built into a
// ServiceProvider. Registration methods return the collection so calls can be
// chained. Registration mistakes, such as a nil identifier, are reported by
// Build.
//
// Collection is NOT thread-safe. It should be configured in a single
// goroutine before building the ServiceProvider.
//
// Example:
//
//	provider, err := ioc.NewCollection().
//	    AddSingleton(RepoID, func(ioc.ServiceProvider) (any, error) { return &Repo{}, nil }).
//	    AddScoped(ServiceID, NewService, ioc.DependsOn(RepoID)).
//	    Build()
type Collection interface {
	// AddSingleton registers a service with singleton lifetime.
	// One instance is created per provider and copied into scopes.
	AddSingleton(id ServiceIdentifier, implementation any, opts ...AddOption) Collection

	// AddScoped registers a service with scoped lifetime.
	// One instance is created per provider or scope.
	AddScoped(id ServiceIdentifier, implementation any, opts ...AddOption) Collection

	// AddTransient registers a service with transient lifetime.
	// A new instance is created every time the service is resolved.
	AddTransient(id ServiceIdentifier, implementation any, opts ...AddOption) Collection

	// Add stores a descriptor as-is. The descriptor is not validated.
	Add(descriptor *Descriptor) Collection

	// AddModules applies one or more modules to the collection.
	AddModules(modules ...ModuleOption) Collection

	// Contains reports whether id is registered.
	Contains(id ServiceIdentifier) bool

	// Count returns the number of registered identifiers.
	Count() int

	// ToSlice returns copies of the registered descriptors in registration
	// order.
	ToSlice() []*Descriptor

	// Build creates the root ServiceProvider using default options.
	Build() (ServiceProvider, error)

	// BuildWithOptions creates the root ServiceProvider with custom options.
	BuildWithOptions(options *ProviderOptions) (ServiceProvider, error)

	// markModule records that the named module was applied and reports
	// whether this is the first time.
	markModule(name string) bool
}

// collection is the default Collection implementation.
type collection struct {
	descriptors map[*identity]*Descriptor
	order       []*identity
	modules     map[string]struct{}

	// errs holds registration errors reported by Build.
	errs []error
}

// NewCollection creates a new empty Collection.
func NewCollection() Collection {
	return &collection{
		descriptors: make(map[*identity]*Descriptor),
		modules:     make(map[string]struct{}),
	}
}

// AddSingleton adds a singleton service to the collection.
func (c *collection) AddSingleton(id ServiceIdentifier, implementation any, opts ...AddOption) Collection {
	return c.addService(id, Singleton, implementation, opts...)
}

// AddScoped adds a scoped service to the collection.
func (c *collection) AddScoped(id ServiceIdentifier, implementation any, opts ...AddOption) Collection {
	return c.addService(id, Scoped, implementation, opts...)
}

// AddTransient adds a transient service to the collection.
func (c *collection) AddTransient(id ServiceIdentifier, implementation any, opts ...AddOption) Collection {
	return c.addService(id, Transient, implementation, opts...)
}

func (c *collection) addService(id ServiceIdentifier, lifetime Lifetime, implementation any, opts ...AddOption) Collection {
	if identityOf(id) == nil {
		c.errs = append(c.errs, fmt.Errorf("register %s service: %w", lifetime, ErrIdentifierNil))
		return c
	}

	if isNilImplementation(implementation) {
		c.errs = append(c.errs, InvalidDescriptorError{Identifier: id, Cause: ErrInvalidImplementation})
		return c
	}

	options := &addOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt.applyAddOption(options)
		}
	}

	d := newDescriptor(id, lifetime, implementation)

	if options.dependsOn {
		if err := c.recordDependencies(d, options.dependencies); err != nil {
			c.errs = append(c.errs, err)
			return c
		}
	}

	c.store(d)
	return c
}

// recordDependencies stores the DependsOn identifiers on d. They belong to
// this registration only, even when another registration uses the same
// constructor.
func (c *collection) recordDependencies(d *Descriptor, deps []ServiceIdentifier) error {
	if d.isFactory() || reflect.TypeOf(d.ImplementationType).Kind() != reflect.Func {
		return InvalidDescriptorError{
			Identifier: d.Identifier,
			Cause:      fmt.Errorf("%w: DependsOn requires a constructor function", ErrInvalidImplementation),
		}
	}

	for i, dep := range deps {
		if identityOf(dep) == nil {
			return InvalidDescriptorError{
				Identifier: d.Identifier,
				Cause:      fmt.Errorf("dependency %d: %w", i, ErrIdentifierNil),
			}
		}
	}

	d.dependencies = make([]ServiceIdentifier, len(deps))
	copy(d.dependencies, deps)
	d.hasDependencies = true
	return nil
}

// Add stores a descriptor without validating its lifetime or implementation.
func (c *collection) Add(descriptor *Descriptor) Collection {
	if descriptor == nil {
		c.errs = append(c.errs, fmt.Errorf("add descriptor: %w", ErrInvalidImplementation))
		return c
	}

	if identityOf(descriptor.Identifier) == nil {
		c.errs = append(c.errs, fmt.Errorf("add descriptor: %w", ErrIdentifierNil))
		return c
	}

	c.store(descriptor.clone())
	return c
}

// store inserts d. A later registration for the same identifier replaces the
// earlier one but keeps its position.
func (c *collection) store(d *Descriptor) {
	key := identityOf(d.Identifier)
	if _, exists := c.descriptors[key]; !exists {
		c.order = append(c.order, key)
	}
	c.descriptors[key] = d
}

// AddModules applies one or more module configurations to the collection.
func (c *collection) AddModules(modules ...ModuleOption) Collection {
	for _, module := range modules {
		if module == nil {
			continue
		}

		module(c)
	}

	return c
}

func (c *collection) markModule(name string) bool {
	if _, applied := c.modules[name]; applied {
		return false
	}

	c.modules[name] = struct{}{}
	return true
}

// Contains checks if an identifier is registered in the collection.
func (c *collection) Contains(id ServiceIdentifier) bool {
	key := identityOf(id)
	if key == nil {
		return false
	}

	_, exists := c.descriptors[key]
	return exists
}

// Count returns the number of registered identifiers.
func (c *collection) Count() int {
	return len(c.descriptors)
}

// ToSlice returns a copy of all registered descriptors in registration order.
func (c *collection) ToSlice() []*Descriptor {
	out := make([]*Descriptor, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.descriptors[key].clone())
	}
	return out
}

// Build creates a ServiceProvider using default options.
func (c *collection) Build() (ServiceProvider, error) {
	return c.BuildWithOptions(nil)
}

// BuildWithOptions freezes the registered descriptors into a registry and
// returns the root ServiceProvider. Every singleton is constructed before it
// returns.
func (c *collection) BuildWithOptions(options *ProviderOptions) (ServiceProvider, error) {
	if len(c.errs) > 0 {
		return nil, BuildError{
			Phase:   "registration",
			Details: fmt.Sprintf("%d invalid registration(s)", len(c.errs)),
			Cause:   errors.Join(c.errs...),
		}
	}

	if options == nil {
		options = &ProviderOptions{}
	}

	metadata := options.MetadataProvider
	if metadata == nil {
		metadata = NewDependencyTable()
	}

	provider, err := newServiceProvider(newRegistry(c.descriptors, c.order), metadata, options)
	if err != nil {
		return nil, err
	}

	return provider, nil
}

// isNilImplementation reports whether implementation is nil or a nil
// function.
func isNilImplementation(implementation any) bool {
	if implementation == nil {
		return true
	}

	v := reflect.ValueOf(implementation)
	return v.Kind() == reflect.Func && v.IsNil()
}

// An AddOption modifies the default behavior of AddSingleton, AddScoped, and
// AddTransient.
type AddOption interface {
	applyAddOption(*addOptions)
}

type addOptions struct {
	dependsOn    bool
	dependencies []ServiceIdentifier
}

// DependsOn is an AddOption that declares the ordered dependencies of a
// constructor implementation. Each identifier is resolved from the provider
// performing the construction and passed positionally.
//
// Given,
//
//	func NewService(repo *Repo, logger Logger) *Service
//
// the following registers NewService with its two dependencies:
//
//	services.AddScoped(ServiceID, NewService, ioc.DependsOn(RepoID, LoggerID))
//
// The identifiers belong to the registration, not to the constructor: two
// registrations of one constructor may declare different dependencies.
// A constructor registered without DependsOn takes no parameters unless the
// provider was built with a MetadataProvider that knows about it.
func DependsOn(ids ...ServiceIdentifier) AddOption {
	return addDependsOnOption(ids)
}

type addDependsOnOption []ServiceIdentifier

func (o addDependsOnOption) String() string {
	names := make([]any, len(o))
	for i, id := range o {
		names[i] = identifierString(id)
	}
	return fmt.Sprintf("DependsOn%v", names)
}

func (o addDependsOnOption) applyAddOption(opts *addOptions) {
	opts.dependsOn = true
	opts.dependencies = append(opts.dependencies, o...)
}
