package ioc

// ModuleOption represents a registration action within a module.
type ModuleOption func(Collection)

// NewModule creates a new module with the given name and builders.
// Modules are a way to group related service registrations together.
//
// A named module is applied at most once per collection, so shared modules
// can be included by several parents without registering twice.
//
// Example:
//
//	var DatabaseModule = ioc.NewModule("database",
//	    ioc.AddSingleton(ConnectionID, NewConnection),
//	    ioc.AddScoped(UserRepositoryID, NewUserRepository, ioc.DependsOn(ConnectionID)),
//	)
//
//	var AppModule = ioc.NewModule("app",
//	    DatabaseModule,
//	    ioc.AddScoped(UserServiceID, NewUserService, ioc.DependsOn(UserRepositoryID)),
//	)
func NewModule(name string, builders ...ModuleOption) ModuleOption {
	return func(c Collection) {
		if name != "" && !c.markModule(name) {
			return
		}

		for _, builder := range builders {
			if builder == nil {
				continue
			}

			builder(c)
		}
	}
}

// AddSingleton creates a ModuleOption for adding a singleton service.
func AddSingleton(id ServiceIdentifier, implementation any, opts ...AddOption) ModuleOption {
	return func(c Collection) {
		c.AddSingleton(id, implementation, opts...)
	}
}

// AddScoped creates a ModuleOption for adding a scoped service.
func AddScoped(id ServiceIdentifier, implementation any, opts ...AddOption) ModuleOption {
	return func(c Collection) {
		c.AddScoped(id, implementation, opts...)
	}
}

// AddTransient creates a ModuleOption for adding a transient service.
func AddTransient(id ServiceIdentifier, implementation any, opts ...AddOption) ModuleOption {
	return func(c Collection) {
		c.AddTransient(id, implementation, opts...)
	}
}
