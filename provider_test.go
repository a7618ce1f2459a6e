package ioc

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceProvider_Lifetimes(t *testing.T) {
	t.Run("singleton is shared by the provider and later scopes", func(t *testing.T) {
		id := NewIdentifier[*TService]("singleton")
		factory, calls := countingFactory()

		provider := mustBuild(t, NewCollection().AddSingleton(id, factory))

		first := mustGet(t, provider, id)
		second := mustGet(t, provider, id)
		assert.Same(t, first, second)

		scope := mustScope(t, provider)
		assert.Same(t, first, mustGet(t, scope.ServiceProvider(), id))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("scoped is shared within a scope only", func(t *testing.T) {
		id := NewIdentifier[*TService]("scoped")
		factory, calls := countingFactory()

		provider := mustBuild(t, NewCollection().AddScoped(id, factory))

		scope1 := mustScope(t, provider)
		scope2 := mustScope(t, provider)

		a1 := mustGet(t, scope1.ServiceProvider(), id)
		a2 := mustGet(t, scope1.ServiceProvider(), id)
		b := mustGet(t, scope2.ServiceProvider(), id)

		assert.Same(t, a1, a2)
		assert.NotSame(t, a1, b)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("scoped resolves on the root provider", func(t *testing.T) {
		id := NewIdentifier[*TService]("scoped")
		factory, _ := countingFactory()

		provider := mustBuild(t, NewCollection().AddScoped(id, factory))

		assert.Same(t, mustGet(t, provider, id), mustGet(t, provider, id))
	})

	t.Run("transient is new every time", func(t *testing.T) {
		id := NewIdentifier[*Widget]("Widget")

		provider := mustBuild(t, NewCollection().AddTransient(id, widgetFactory()))
		scope := mustScope(t, provider)

		w1 := mustGet(t, provider, id)
		w2 := mustGet(t, provider, id)
		assert.NotSame(t, w1, w2)

		s1 := mustGet(t, scope.ServiceProvider(), id)
		s2 := mustGet(t, scope.ServiceProvider(), id)
		assert.NotSame(t, s1, s2)
	})
}

func TestServiceProvider_SingletonDependencies(t *testing.T) {
	repoID := NewIdentifier[*Repo]("Repo")
	serviceID := NewIdentifier[*Service]("Service")

	t.Run("factory", func(t *testing.T) {
		provider := mustBuild(t, NewCollection().
			AddSingleton(repoID, Factory(func(ServiceProvider) (*Repo, error) {
				return &Repo{Name: "main"}, nil
			})).
			AddSingleton(serviceID, Factory(func(sp ServiceProvider) (*Service, error) {
				repo, err := Resolve(sp, repoID)
				if err != nil {
					return nil, err
				}
				return &Service{Repo: repo}, nil
			})))

		svc1 := MustResolve(provider, serviceID)
		svc2 := MustResolve(provider, serviceID)
		repo := MustResolve(provider, repoID)

		assert.Same(t, svc1, svc2)
		assert.Same(t, repo, svc1.Repo)
	})

	t.Run("constructor with declared dependencies", func(t *testing.T) {
		provider := mustBuild(t, NewCollection().
			AddSingleton(repoID, func() *Repo { return &Repo{Name: "main"} }).
			AddSingleton(serviceID, NewService, DependsOn(repoID)))

		svc := MustResolve(provider, serviceID)
		assert.Same(t, MustResolve(provider, repoID), svc.Repo)
	})
}

func TestServiceProvider_Dispose(t *testing.T) {
	id := NewIdentifier[*TService]("scoped")

	t.Run("scoped is rebuilt after dispose", func(t *testing.T) {
		factory, _ := countingFactory()
		provider := mustBuild(t, NewCollection().AddScoped(id, factory))

		before := mustGet(t, provider, id)
		provider.Dispose()
		after := mustGet(t, provider, id)

		assert.NotSame(t, before, after)
	})

	t.Run("dispose is idempotent", func(t *testing.T) {
		factory, _ := countingFactory()
		provider := mustBuild(t, NewCollection().AddScoped(id, factory))

		mustGet(t, provider, id)
		provider.Dispose()
		provider.Dispose()

		_, err := provider.GetService(id)
		assert.NoError(t, err)
	})

	t.Run("dispose keeps singletons", func(t *testing.T) {
		singletonID := NewIdentifier[*TService]("singleton")
		factory, calls := countingFactory()
		provider := mustBuild(t, NewCollection().AddSingleton(singletonID, factory))

		before := mustGet(t, provider, singletonID)
		provider.Dispose()

		assert.Same(t, before, mustGet(t, provider, singletonID))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("disposing a scope leaves parent and siblings alone", func(t *testing.T) {
		factory, _ := countingFactory()
		provider := mustBuild(t, NewCollection().AddScoped(id, factory))

		root := mustGet(t, provider, id)
		scope1 := mustScope(t, provider)
		scope2 := mustScope(t, provider)
		sibling := mustGet(t, scope2.ServiceProvider(), id)
		disposed := mustGet(t, scope1.ServiceProvider(), id)

		scope1.Dispose()

		assert.Same(t, root, mustGet(t, provider, id))
		assert.Same(t, sibling, mustGet(t, scope2.ServiceProvider(), id))
		assert.NotSame(t, disposed, mustGet(t, scope1.ServiceProvider(), id))
	})

	t.Run("disposing the parent leaves children alone", func(t *testing.T) {
		factory, _ := countingFactory()
		provider := mustBuild(t, NewCollection().AddScoped(id, factory))

		scope := mustScope(t, provider)
		child := mustGet(t, scope.ServiceProvider(), id)

		provider.Dispose()

		assert.Same(t, child, mustGet(t, scope.ServiceProvider(), id))
	})
}

func TestServiceProvider_NotRegistered(t *testing.T) {
	registered := NewIdentifier[*TService]("registered")
	missing := NewIdentifier[*TService]("missing")

	factory, _ := countingFactory()
	provider := mustBuild(t, NewCollection().AddTransient(registered, factory))
	scope := mustScope(t, provider)

	for name, sp := range map[string]ServiceProvider{"root": provider, "scope": scope.ServiceProvider()} {
		t.Run(name, func(t *testing.T) {
			_, err := sp.GetService(missing)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrServiceNotRegistered)

			var notRegistered ServiceNotRegisteredError
			require.ErrorAs(t, err, &notRegistered)
			assert.Equal(t, ServiceIdentifier(missing), notRegistered.Identifier)

			assert.False(t, sp.IsService(missing))
			assert.True(t, sp.IsService(registered))
		})
	}

	t.Run("missing dependency propagates unchanged", func(t *testing.T) {
		serviceID := NewIdentifier[*Service]("Service")
		repoID := NewIdentifier[*Repo]("Repo")

		provider := mustBuild(t, NewCollection().AddTransient(serviceID, NewService, DependsOn(repoID)))

		_, err := provider.GetService(serviceID)
		require.Error(t, err)
		assert.Equal(t, ServiceNotRegisteredError{Identifier: repoID}, err)
	})
}

func TestServiceProvider_NilIdentifier(t *testing.T) {
	provider := mustBuild(t, NewCollection())

	_, err := provider.GetService(nil)
	assert.ErrorIs(t, err, ErrIdentifierNil)

	_, err = provider.GetService(Identifier[*TService]{})
	assert.ErrorIs(t, err, ErrIdentifierNil)

	assert.False(t, provider.IsService(nil))
}

func TestServiceProvider_UnknownLifetime(t *testing.T) {
	id := NewIdentifier[*TService]("odd")
	factory, calls := countingFactory()

	provider := mustBuild(t, NewCollection().Add(&Descriptor{
		Identifier: id,
		Lifetime:   Lifetime(42),
		Factory:    factory,
	}))

	_, err := provider.GetService(id)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownLifetime)

	var lifetimeErr UnknownLifetimeError
	require.ErrorAs(t, err, &lifetimeErr)
	assert.Equal(t, Lifetime(42), lifetimeErr.Lifetime)
	assert.Equal(t, int32(0), calls.Load())
}

func TestServiceProvider_InvalidDescriptor(t *testing.T) {
	id := NewIdentifier[*TService]("empty")

	provider := mustBuild(t, NewCollection().Add(&Descriptor{Identifier: id, Lifetime: Transient}))

	_, err := provider.GetService(id)
	var invalid InvalidDescriptorError
	require.ErrorAs(t, err, &invalid)
	assert.ErrorIs(t, err, ErrInvalidImplementation)
}

func TestServiceProvider_FactoryWinsOverImplementation(t *testing.T) {
	id := NewIdentifier[*TService]("both")

	provider := mustBuild(t, NewCollection().Add(&Descriptor{
		Identifier:         id,
		Lifetime:           Transient,
		ImplementationType: func() *TService { return &TService{ID: "constructor"} },
		Factory: Factory(func(ServiceProvider) (*TService, error) {
			return &TService{ID: "factory"}, nil
		}),
	}))

	assert.Equal(t, "factory", MustResolve(provider, id).ID)
}

func TestServiceProvider_FailedConstruction(t *testing.T) {
	id := NewIdentifier[*TService]("flaky")
	boom := errors.New("boom")

	fail := true
	var calls int
	provider := mustBuild(t, NewCollection().AddScoped(id, Factory(func(ServiceProvider) (*TService, error) {
		calls++
		if fail {
			return nil, boom
		}
		return &TService{ID: "ok"}, nil
	})))

	_, err := provider.GetService(id)
	assert.Same(t, boom, err)

	fail = false
	svc := MustResolve(provider, id)
	assert.Equal(t, "ok", svc.ID)
	assert.Equal(t, 2, calls)
	assert.Same(t, svc, MustResolve(provider, id))
}

func TestServiceProvider_TypeMismatch(t *testing.T) {
	id := NewIdentifier[*TService]("liar")

	provider := mustBuild(t, NewCollection().AddScoped(id, func(ServiceProvider) (any, error) {
		return &TDependency{}, nil
	}))

	_, err := provider.GetService(id)
	var mismatch TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "construction", mismatch.Context)

	impl := provider.(*serviceProvider)
	assert.Equal(t, 0, impl.scoped.len())
}

func TestServiceProvider_Panics(t *testing.T) {
	t.Run("factory", func(t *testing.T) {
		id := NewIdentifier[*TService]("panicky")
		provider := mustBuild(t, NewCollection().AddTransient(id, func(ServiceProvider) (any, error) {
			panic("factory exploded")
		}))

		_, err := provider.GetService(id)
		var panicErr ConstructorPanicError
		require.ErrorAs(t, err, &panicErr)
		assert.Equal(t, "factory exploded", panicErr.Panic)
		assert.NotEmpty(t, panicErr.Stack)
	})

	t.Run("constructor", func(t *testing.T) {
		id := NewIdentifier[*TService]("panicky")
		provider := mustBuild(t, NewCollection().AddTransient(id, func() *TService {
			panic("constructor exploded")
		}))

		_, err := provider.GetService(id)
		var panicErr ConstructorPanicError
		require.ErrorAs(t, err, &panicErr)
		assert.Equal(t, "constructor exploded", panicErr.Panic)
	})
}

func TestServiceProvider_Constructors(t *testing.T) {
	svcID := NewIdentifier[*TService]("svc")
	depID := NewIdentifier[*TDependency]("dep")
	withDepsID := NewIdentifier[*TServiceWithDeps]("withDeps")

	t.Run("positional dependencies", func(t *testing.T) {
		provider := mustBuild(t, NewCollection().
			AddSingleton(svcID, NewTService).
			AddScoped(depID, NewTDependency).
			AddTransient(withDepsID, NewTServiceWithDeps, DependsOn(svcID, depID)))

		got := MustResolve(provider, withDepsID)
		assert.Same(t, MustResolve(provider, svcID), got.Svc)
		assert.Same(t, MustResolve(provider, depID), got.Dep)
	})

	t.Run("arity mismatch", func(t *testing.T) {
		provider := mustBuild(t, NewCollection().
			AddSingleton(svcID, NewTService).
			AddTransient(withDepsID, NewTServiceWithDeps, DependsOn(svcID)))

		_, err := provider.GetService(withDepsID)
		var invocation ConstructorInvocationError
		require.ErrorAs(t, err, &invocation)
		assert.Contains(t, err.Error(), "takes 2 parameters but 1 dependencies")
	})

	t.Run("missing metadata means no dependencies", func(t *testing.T) {
		provider := mustBuild(t, NewCollection().AddTransient(withDepsID, NewTServiceWithDeps))

		_, err := provider.GetService(withDepsID)
		var invocation ConstructorInvocationError
		require.ErrorAs(t, err, &invocation)
	})

	t.Run("constructor error is wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		provider := mustBuild(t, NewCollection().AddTransient(svcID, func() (*TService, error) {
			return nil, boom
		}))

		_, err := provider.GetService(svcID)
		assert.ErrorIs(t, err, boom)
		var invocation ConstructorInvocationError
		assert.ErrorAs(t, err, &invocation)
	})

	t.Run("not a function", func(t *testing.T) {
		provider := mustBuild(t, NewCollection().AddTransient(svcID, &TService{}))

		_, err := provider.GetService(svcID)
		var invocation ConstructorInvocationError
		assert.ErrorAs(t, err, &invocation)
	})

	t.Run("dependencies belong to the registration", func(t *testing.T) {
		primaryID := NewIdentifier[*Repo]("primary")
		replicaID := NewIdentifier[*Repo]("replica")
		writerID := NewIdentifier[*Service]("writer")
		readerID := NewIdentifier[*Service]("reader")

		provider := mustBuild(t, NewCollection().
			AddSingleton(primaryID, func() *Repo { return &Repo{Name: "primary"} }).
			AddSingleton(replicaID, func() *Repo { return &Repo{Name: "replica"} }).
			AddTransient(writerID, serviceConstructor(), DependsOn(primaryID)).
			AddTransient(readerID, serviceConstructor(), DependsOn(replicaID)))

		assert.Equal(t, "primary", MustResolve(provider, writerID).Repo.Name)
		assert.Equal(t, "replica", MustResolve(provider, readerID).Repo.Name)
	})

	t.Run("declared dependencies win over the metadata provider", func(t *testing.T) {
		primaryID := NewIdentifier[*Repo]("primary")
		replicaID := NewIdentifier[*Repo]("replica")
		declaredID := NewIdentifier[*Service]("declared")
		fromTableID := NewIdentifier[*Service]("fromTable")

		table := NewDependencyTable()
		table.Set(NewService, replicaID)

		provider, err := NewCollection().
			AddSingleton(primaryID, func() *Repo { return &Repo{Name: "primary"} }).
			AddSingleton(replicaID, func() *Repo { return &Repo{Name: "replica"} }).
			AddTransient(declaredID, NewService, DependsOn(primaryID)).
			AddTransient(fromTableID, NewService).
			BuildWithOptions(&ProviderOptions{MetadataProvider: table})
		require.NoError(t, err)

		assert.Equal(t, "primary", MustResolve(provider, declaredID).Repo.Name)
		assert.Equal(t, "replica", MustResolve(provider, fromTableID).Repo.Name)
	})

	t.Run("custom metadata provider", func(t *testing.T) {
		table := NewDependencyTable()
		table.Set(NewTServiceWithDeps, svcID, depID)

		provider, err := NewCollection().
			AddSingleton(svcID, NewTService).
			AddSingleton(depID, NewTDependency).
			AddTransient(withDepsID, NewTServiceWithDeps).
			BuildWithOptions(&ProviderOptions{MetadataProvider: table})
		require.NoError(t, err)

		got := MustResolve(provider, withDepsID)
		assert.NotNil(t, got.Svc)
		assert.NotNil(t, got.Dep)
	})

	t.Run("interface identifier", func(t *testing.T) {
		ifaceID := NewIdentifier[TInterface]("iface")
		provider := mustBuild(t, NewCollection().AddSingleton(ifaceID, NewTService))

		got := MustResolve(provider, ifaceID)
		assert.Equal(t, "service", got.GetID())
	})
}

func TestServiceProvider_CircularDependency(t *testing.T) {
	aID := NewIdentifier[*TService]("A")
	bID := NewIdentifier[*TDependency]("B")

	t.Run("factories", func(t *testing.T) {
		provider := mustBuild(t, NewCollection().
			AddScoped(aID, func(sp ServiceProvider) (any, error) {
				if _, err := sp.GetService(bID); err != nil {
					return nil, err
				}
				return &TService{}, nil
			}).
			AddScoped(bID, func(sp ServiceProvider) (any, error) {
				if _, err := sp.GetService(aID); err != nil {
					return nil, err
				}
				return &TDependency{}, nil
			}))

		_, err := provider.GetService(aID)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCircularDependency)

		var cycle CircularDependencyError
		require.ErrorAs(t, err, &cycle)
		assert.Equal(t, []ServiceIdentifier{aID, bID, aID}, cycle.Chain)

		impl := provider.(*serviceProvider)
		assert.Equal(t, 0, impl.scoped.len())
	})

	t.Run("self dependency", func(t *testing.T) {
		provider := mustBuild(t, NewCollection().
			AddTransient(aID, func(s *TService) *TService { return s }, DependsOn(aID)))

		_, err := provider.GetService(aID)
		assert.ErrorIs(t, err, ErrCircularDependency)
	})

	t.Run("singleton cycle fails the build", func(t *testing.T) {
		_, err := NewCollection().
			AddSingleton(aID, func(*TDependency) *TService { return &TService{} }, DependsOn(bID)).
			AddSingleton(bID, func(*TService) *TDependency { return &TDependency{} }, DependsOn(aID)).
			Build()

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCircularDependency)
	})

	t.Run("lazy factory breaks the cycle", func(t *testing.T) {
		var lazyA func() (any, error)

		provider := mustBuild(t, NewCollection().
			AddScoped(aID, func(sp ServiceProvider) (any, error) {
				if _, err := sp.GetService(bID); err != nil {
					return nil, err
				}
				return &TService{ID: "a"}, nil
			}).
			AddScoped(bID, func(sp ServiceProvider) (any, error) {
				lazyA = func() (any, error) { return sp.GetService(aID) }
				return &TDependency{}, nil
			}))

		a, err := provider.GetService(aID)
		require.NoError(t, err)
		require.NotNil(t, lazyA)

		got, err := lazyA()
		require.NoError(t, err)
		assert.Same(t, a, got)
	})

	t.Run("retained provider resolves the same service again", func(t *testing.T) {
		wID := NewIdentifier[*Widget]("W")
		var spawn func() (any, error)

		provider := mustBuild(t, NewCollection().
			AddTransient(wID, func(sp ServiceProvider) (any, error) {
				spawn = func() (any, error) { return sp.GetService(wID) }
				return &Widget{}, nil
			}))

		first, err := provider.GetService(wID)
		require.NoError(t, err)

		second, err := spawn()
		require.NoError(t, err)
		assert.NotSame(t, first, second)
	})
}

func TestServiceProvider_EagerSingletons(t *testing.T) {
	t.Run("built before Build returns", func(t *testing.T) {
		id := NewIdentifier[*TService]("eager")
		factory, calls := countingFactory()

		mustBuild(t, NewCollection().AddSingleton(id, factory))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("registration order", func(t *testing.T) {
		var order []string
		record := func(name string) FactoryFunc {
			return func(ServiceProvider) (any, error) {
				order = append(order, name)
				return &TService{ID: name}, nil
			}
		}

		mustBuild(t, NewCollection().
			AddSingleton(NewIdentifier[*TService]("first"), record("first")).
			AddScoped(NewIdentifier[*TService]("scoped"), record("scoped")).
			AddSingleton(NewIdentifier[*TService]("second"), record("second")))

		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("failure surfaces from Build", func(t *testing.T) {
		id := NewIdentifier[*TService]("broken")
		boom := errors.New("boom")

		provider, err := NewCollection().
			AddSingleton(id, func(ServiceProvider) (any, error) { return nil, boom }).
			Build()

		assert.Nil(t, provider)
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)

		var buildErr BuildError
		require.ErrorAs(t, err, &buildErr)
		assert.Equal(t, "singleton-creation", buildErr.Phase)
	})

	t.Run("failure surfaces from CreateScope", func(t *testing.T) {
		id := NewIdentifier[*TService]("second-build-fails")
		boom := errors.New("boom")

		var calls int
		provider := mustBuild(t, NewCollection().AddSingleton(id, func(ServiceProvider) (any, error) {
			calls++
			if calls > 1 {
				return nil, boom
			}
			return &TService{}, nil
		}))

		// Scopes copy the root instance and never call the factory.
		mustScope(t, provider)
		assert.Equal(t, 1, calls)

		// Without a root instance the scope constructs its own.
		provider.(*serviceProvider).singletons.clear()

		scope, err := provider.CreateScope(context.Background())
		assert.Nil(t, scope)
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)

		var buildErr BuildError
		require.ErrorAs(t, err, &buildErr)
		assert.Equal(t, "singleton-creation", buildErr.Phase)
	})
}

func TestServiceProvider_ScopeSingletonSnapshot(t *testing.T) {
	id := NewIdentifier[*TService]("singleton")
	factory, calls := countingFactory()

	provider := mustBuild(t, NewCollection().AddSingleton(id, factory))
	impl := provider.(*serviceProvider)

	// Forget the root instance; the scope copied nothing and builds its own.
	impl.singletons.clear()

	scope := mustScope(t, provider)
	assert.Equal(t, int32(2), calls.Load())

	fromScope := mustGet(t, scope.ServiceProvider(), id)
	fromRoot := mustGet(t, provider, id)
	assert.NotSame(t, fromScope, fromRoot)
	assert.Equal(t, int32(3), calls.Load())
}

func TestServiceProvider_ConcurrentFirstResolution(t *testing.T) {
	id := NewIdentifier[*TService]("slow")

	release := make(chan struct{})
	var mu sync.Mutex
	var calls int

	provider := mustBuild(t, NewCollection().AddScoped(id, Factory(func(ServiceProvider) (*TService, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		<-release
		return &TService{ID: "slow"}, nil
	})))

	const workers = 16
	results := make([]any, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			instance, err := provider.GetService(id)
			assert.NoError(t, err)
			results[i] = instance
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, calls)
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestServiceProvider_DisposeDuringConstruction(t *testing.T) {
	id := NewIdentifier[*TService]("slow")

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int

	provider := mustBuild(t, NewCollection().AddScoped(id, Factory(func(ServiceProvider) (*TService, error) {
		calls++
		if calls == 1 {
			close(started)
			<-release
		}
		return &TService{Value: calls}, nil
	})))

	done := make(chan any)
	go func() {
		instance, err := provider.GetService(id)
		assert.NoError(t, err)
		done <- instance
	}()

	<-started
	provider.Dispose()
	close(release)
	inFlight := <-done

	require.NotNil(t, inFlight)
	assert.NotSame(t, inFlight, mustGet(t, provider, id))
}

func TestServiceProvider_Hooks(t *testing.T) {
	id := NewIdentifier[*TService]("hooked")
	missing := NewIdentifier[*TService]("missing")

	var resolved []ServiceIdentifier
	var failed []ServiceIdentifier

	factory, _ := countingFactory()
	provider, err := NewCollection().
		AddTransient(id, factory).
		BuildWithOptions(&ProviderOptions{
			OnServiceResolved: func(id ServiceIdentifier, instance any, duration time.Duration) {
				resolved = append(resolved, id)
				assert.NotNil(t, instance)
				assert.GreaterOrEqual(t, duration, time.Duration(0))
			},
			OnServiceError: func(id ServiceIdentifier, err error) {
				failed = append(failed, id)
				assert.ErrorIs(t, err, ErrServiceNotRegistered)
			},
		})
	require.NoError(t, err)

	mustGet(t, provider, id)
	_, _ = provider.GetService(missing)

	assert.Equal(t, []ServiceIdentifier{id}, resolved)
	assert.Equal(t, []ServiceIdentifier{missing}, failed)

	scope := mustScope(t, provider)
	mustGet(t, scope.ServiceProvider(), id)
	assert.Len(t, resolved, 2)
}

func TestServiceProvider_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	id := NewIdentifier[*TService]("logged")
	factory, _ := countingFactory()

	provider, err := NewCollection().
		AddSingleton(id, factory).
		BuildWithOptions(&ProviderOptions{Logger: logger})
	require.NoError(t, err)

	scope, err := provider.CreateScope(context.Background())
	require.NoError(t, err)
	scope.Dispose()

	out := buf.String()
	assert.Contains(t, out, "service constructed")
	assert.Contains(t, out, "logged#")
	assert.Contains(t, out, "service provider built")
	assert.Contains(t, out, "scope created")
	assert.Contains(t, out, "scope disposed")
}

func TestServiceProvider_ID(t *testing.T) {
	provider := mustBuild(t, NewCollection())
	scope := mustScope(t, provider)

	assert.NotEmpty(t, provider.ID())
	assert.NotEmpty(t, scope.ID())
	assert.NotEqual(t, provider.ID(), scope.ID())
	assert.Equal(t, scope.ID(), scope.ServiceProvider().ID())
}
