package database

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/jmmunozr/semdata/internal/models"
	"github.com/jmmunozr/semdata/internal/shared"
	"github.com/jmmunozr/semdata/internal/store"
)

// ManagerFactory constructs an uninitialized manager for a canonical location.
type ManagerFactory func(location string, opts store.Options) store.Manager

// LocalManagerFactory builds a [store.LocalManager].
func LocalManagerFactory(location string, opts store.Options) store.Manager {
	return store.NewLocalManager(location, opts)
}

// RemoteManagerFactory builds a [store.RemoteManager].
func RemoteManagerFactory(location string, opts store.Options) store.Manager {
	return store.NewRemoteManager(location, opts)
}

// RegistryOpts configure a [Registry]. Zero values select the store package defaults.
type RegistryOpts struct {
	Local  ManagerFactory
	Remote ManagerFactory
	Logger *log.Logger

	HTTPClient   *http.Client
	MaxOpenConns int
	MaxIdleConns int
}

// Registry maps canonical locations to live managers.
//
// At most one manager exists per location until [Registry.Shutdown] evicts it. Creation and shutdown share one
// mutex, so constructing a manager for one location blocks callers asking for any other location.
type Registry struct {
	opts   RegistryOpts
	logger *log.Logger

	mu       sync.Mutex
	managers map[string]store.Manager
}

// NewRegistry creates an empty registry.
func NewRegistry(opts RegistryOpts) *Registry {
	if opts.Local == nil {
		opts.Local = LocalManagerFactory
	}
	if opts.Remote == nil {
		opts.Remote = RemoteManagerFactory
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewDiscardLogger()
	}

	return &Registry{
		opts:     opts,
		logger:   shared.WithLogger(opts.Logger, "component", "registry"),
		managers: make(map[string]store.Manager),
	}
}

// Manager returns the manager for location, creating and initializing it on first use.
//
// Credentials only apply when the manager is created; an existing manager is returned unchanged.
// When initialization fails nothing is registered and a [shared.KindResourceFailure] error is returned.
func (r *Registry) Manager(ctx context.Context, location string, creds models.Credentials) (store.Manager, error) {
	const op = "registry.manager"

	key, err := Canonicalize(location)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.managers[key]; ok {
		r.logger.Debug("manager found", "location", key)
		return m, nil
	}

	opts := store.Options{
		Credentials:  creds,
		Logger:       r.opts.Logger,
		HTTPClient:   r.opts.HTTPClient,
		MaxOpenConns: r.opts.MaxOpenConns,
		MaxIdleConns: r.opts.MaxIdleConns,
	}

	var m store.Manager
	if IsRemote(key) {
		r.logger.Info("creating remote manager", "location", key)
		m = r.opts.Remote(key, opts)
	} else {
		r.logger.Info("creating local manager", "location", key)
		m = r.opts.Local(key, opts)
	}

	if err := m.Initialize(ctx); err != nil {
		r.logger.Error("failed to initialize manager", "location", key, "err", err)
		if shutdownErr := m.Shutdown(); shutdownErr != nil {
			r.logger.Warn("failed to release manager after initialization error", "location", key, "err", shutdownErr)
		}
		return nil, shared.Wrap(shared.KindResourceFailure, op, "failed to initialize manager for "+key, err)
	}

	r.managers[key] = m
	return m, nil
}

// Shutdown tears down and evicts the manager for location. Unknown locations are ignored.
// The manager is evicted even when its shutdown fails.
func (r *Registry) Shutdown(location string) error {
	key, err := Canonicalize(location)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.shutdownLocked(key)
}

// ShutdownAll tears down every registered manager. Calling it again does nothing.
func (r *Registry) ShutdownAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for key := range r.managers {
		if err := r.shutdownLocked(key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Locations returns the registered canonical locations, sorted.
func (r *Registry) Locations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	locations := make([]string, 0, len(r.managers))
	for key := range r.managers {
		locations = append(locations, key)
	}
	slices.Sort(locations)
	return locations
}

func (r *Registry) shutdownLocked(key string) error {
	m, ok := r.managers[key]
	if !ok {
		return nil
	}
	delete(r.managers, key)

	if err := m.Shutdown(); err != nil {
		r.logger.Error("failed to shut down manager", "location", key, "err", err)
		return shared.Wrap(shared.KindResourceFailure, "registry.shutdown", "failed to shut down manager for "+key, err)
	}
	r.logger.Info("manager shut down", "location", key)
	return nil
}
