package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/jmmunozr/semdata/internal/graph"
	"github.com/jmmunozr/semdata/internal/models"
	"github.com/jmmunozr/semdata/internal/repositories"
	"github.com/jmmunozr/semdata/internal/shared"
)

const (
	repositoriesDir = "repositories"
	configFile      = "config.toml"
	statementsFile  = "statements.db"
)

// LocalManager owns the repositories persisted beneath a filesystem root.
type LocalManager struct {
	root   string
	opts   Options
	logger *log.Logger

	mu          sync.Mutex
	initialized bool
	configs     map[string]*models.RepositoryConfig
	repos       map[string]*LocalRepository
}

// NewLocalManager creates a manager for root. Nothing touches the filesystem until [LocalManager.Initialize].
func NewLocalManager(root string, opts Options) *LocalManager {
	return &LocalManager{
		root:    root,
		opts:    opts,
		logger:  shared.WithLogger(opts.logger(), "location", root),
		configs: make(map[string]*models.RepositoryConfig),
		repos:   make(map[string]*LocalRepository),
	}
}

func (m *LocalManager) Location() string { return m.root }

func (m *LocalManager) Remote() bool { return false }

// Initialize creates the root directory when missing and loads every persisted repository configuration.
func (m *LocalManager) Initialize(ctx context.Context) error {
	const op = "local.initialize"

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	dir := filepath.Join(m.root, repositoriesDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return shared.Wrap(shared.KindResourceFailure, op, "failed to create repository directory", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return shared.Wrap(shared.KindResourceFailure, op, "failed to read repository directory", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		path := filepath.Join(dir, entry.Name(), configFile)
		var cfg models.RepositoryConfig
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				m.logger.Warn("skipping repository directory without config", "dir", entry.Name())
				continue
			}
			return shared.Wrap(shared.KindResourceFailure, op, fmt.Sprintf("failed to read %s", path), err)
		}
		if err := cfg.Validate(); err != nil {
			return shared.Wrap(shared.KindResourceFailure, op, fmt.Sprintf("invalid configuration in %s", path), err)
		}
		m.configs[cfg.ID] = &cfg
	}

	m.initialized = true
	m.logger.Debug("local manager initialized", "repositories", len(m.configs))
	return nil
}

// AddRepositoryConfig validates cfg and persists it under the root.
// Replacing the configuration of an open repository is rejected; adding the configuration it already has is a no-op.
func (m *LocalManager) AddRepositoryConfig(ctx context.Context, cfg *models.RepositoryConfig) error {
	const op = "local.add_config"

	if err := cfg.Validate(); err != nil {
		return shared.Wrap(shared.KindInvalidParameter, op, "invalid repository configuration", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return shared.NewError(shared.KindInvalidUsage, op, "manager is not initialized")
	}
	if _, open := m.repos[cfg.ID]; open {
		if current, ok := m.configs[cfg.ID]; ok && current.Equal(cfg) {
			return nil
		}
		return shared.NewError(shared.KindInvalidUsage, op, fmt.Sprintf("repository %s is open", cfg.ID))
	}

	dir := m.repositoryDir(cfg.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return shared.Wrap(shared.KindResourceFailure, op, "failed to create repository directory", err)
	}

	f, err := os.Create(filepath.Join(dir, configFile))
	if err != nil {
		return shared.Wrap(shared.KindResourceFailure, op, "failed to create config file", err)
	}
	defer f.Close()

	stored := cfg.WithID(cfg.ID)
	if err := toml.NewEncoder(f).Encode(stored); err != nil {
		return shared.Wrap(shared.KindResourceFailure, op, "failed to write config file", err)
	}

	m.configs[cfg.ID] = stored
	m.logger.Info("repository configured", "id", cfg.ID, "backend", cfg.Backend)
	return nil
}

// Repository returns the cached handle for id, creating an uninitialized one on first access.
func (m *LocalManager) Repository(ctx context.Context, id string) (Repository, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, false, shared.NewError(shared.KindInvalidUsage, "local.repository", "manager is not initialized")
	}

	if repo, ok := m.repos[id]; ok {
		return repo, true, nil
	}

	cfg, ok := m.configs[id]
	if !ok {
		return nil, false, nil
	}

	repo := &LocalRepository{
		cfg:    cfg,
		dir:    m.repositoryDir(id),
		opts:   m.opts,
		logger: shared.WithLogger(m.logger, "repository", id),
	}
	m.repos[id] = repo
	return repo, true, nil
}

// RepositoryIDs returns the configured repository ids, sorted.
func (m *LocalManager) RepositoryIDs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.configs))
	for id := range m.configs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Shutdown closes every open repository. The manager cannot be used afterwards.
func (m *LocalManager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for id, repo := range m.repos {
		if err := repo.Shutdown(); err != nil {
			errs = append(errs, err)
		}
		delete(m.repos, id)
	}
	m.initialized = false
	m.logger.Debug("local manager shut down")

	return errors.Join(errs...)
}

func (m *LocalManager) repositoryDir(id string) string {
	return filepath.Join(m.root, repositoriesDir, id)
}

// LocalRepository is a SQLite-backed repository.
type LocalRepository struct {
	cfg    *models.RepositoryConfig
	dir    string
	opts   Options
	logger *log.Logger

	mu         sync.RWMutex
	db         *sql.DB
	statements *repositories.StatementRepository
}

func (r *LocalRepository) ID() string { return r.cfg.ID }

// Config returns the configuration the repository was created from.
func (r *LocalRepository) Config() *models.RepositoryConfig { return r.cfg }

// Initialize opens the database, applies migrations and creates the configured indexes.
// Calling it on an initialized repository does nothing.
func (r *LocalRepository) Initialize(ctx context.Context) error {
	const op = "local.repository.initialize"

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db != nil {
		return nil
	}

	dsn := shared.MemoryDSN()
	if r.cfg.Persistent() {
		dsn = shared.FileDSN(filepath.Join(r.dir, statementsFile))
	}

	db, err := shared.NewDatabase(dsn)
	if err != nil {
		return shared.Wrap(shared.KindResourceFailure, op, "failed to open repository "+r.cfg.ID, err)
	}

	if r.cfg.Persistent() {
		shared.ConfigureDatabase(db, r.opts.MaxOpenConns, r.opts.MaxIdleConns)
	} else {
		// A shared-cache memory database disappears with its last connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return shared.Wrap(shared.KindResourceFailure, op, "failed to migrate repository "+r.cfg.ID, err)
	}

	statements := repositories.NewStatementRepository(db)
	if err := statements.EnsureIndexes(ctx, r.cfg.Indexes); err != nil {
		db.Close()
		return shared.Wrap(shared.KindResourceFailure, op, "failed to create indexes for "+r.cfg.ID, err)
	}

	r.db = db
	r.statements = statements
	r.logger.Debug("repository initialized", "persistent", r.cfg.Persistent())
	return nil
}

func (r *LocalRepository) Initialized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.db != nil
}

func (r *LocalRepository) Size(ctx context.Context) (int64, error) {
	const op = "local.repository.size"

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.db == nil {
		return 0, errNotInitialized(op, r.cfg.ID)
	}

	n, err := r.statements.Count(ctx)
	return n, shared.Translate(op, err)
}

func (r *LocalRepository) Statements(ctx context.Context, p graph.Pattern) ([]graph.Statement, error) {
	const op = "local.repository.statements"

	if err := p.Validate(); err != nil {
		return nil, shared.Wrap(shared.KindInvalidUsage, op, "invalid pattern", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.db == nil {
		return nil, errNotInitialized(op, r.cfg.ID)
	}

	statements, err := r.statements.Match(ctx, p)
	if err != nil {
		return nil, shared.Translate(op, err)
	}
	return statements, nil
}

func (r *LocalRepository) Add(ctx context.Context, statements ...graph.Statement) error {
	const op = "local.repository.add"

	for _, s := range statements {
		if err := s.Validate(); err != nil {
			return shared.Wrap(shared.KindInvalidUsage, op, "invalid statement", err)
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.db == nil {
		return errNotInitialized(op, r.cfg.ID)
	}

	n, err := r.statements.Add(ctx, statements...)
	if err != nil {
		return shared.Translate(op, err)
	}
	r.logger.Debug("statements added", "count", n)
	return nil
}

func (r *LocalRepository) Remove(ctx context.Context, p graph.Pattern) error {
	const op = "local.repository.remove"

	if err := p.Validate(); err != nil {
		return shared.Wrap(shared.KindInvalidUsage, op, "invalid pattern", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.db == nil {
		return errNotInitialized(op, r.cfg.ID)
	}

	n, err := r.statements.Remove(ctx, p)
	if err != nil {
		return shared.Translate(op, err)
	}
	r.logger.Debug("statements removed", "count", n)
	return nil
}

// Namespaces returns the prefixes recorded by [LocalRepository.SetNamespace].
func (r *LocalRepository) Namespaces(ctx context.Context) (map[string]string, error) {
	const op = "local.repository.namespaces"

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.db == nil {
		return nil, errNotInitialized(op, r.cfg.ID)
	}

	ns, err := r.statements.Namespaces(ctx)
	if err != nil {
		return nil, shared.Translate(op, err)
	}
	return ns, nil
}

// SetNamespace records a prefix declaration.
func (r *LocalRepository) SetNamespace(ctx context.Context, prefix, name string) error {
	const op = "local.repository.set_namespace"

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.db == nil {
		return errNotInitialized(op, r.cfg.ID)
	}
	return shared.Translate(op, r.statements.SetNamespace(ctx, prefix, name))
}

// Shutdown closes the database. A memory repository loses its statements.
func (r *LocalRepository) Shutdown() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db == nil {
		return nil
	}

	err := r.db.Close()
	r.db = nil
	r.statements = nil
	if err != nil {
		return shared.Wrap(shared.KindResourceFailure, "local.repository.shutdown", "failed to close repository "+r.cfg.ID, err)
	}
	return nil
}
