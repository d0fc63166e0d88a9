package database

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/jmmunozr/semdata/internal/models"
	"github.com/jmmunozr/semdata/internal/shared"
	"github.com/jmmunozr/semdata/internal/store"
)

// ProvisionerOpts configure a [Provisioner].
type ProvisionerOpts struct {
	// DefaultConfig supplies the configuration used when a caller passes none. Defaults to [DefaultConfig].
	DefaultConfig func() (*models.RepositoryConfig, error)
	Logger        *log.Logger
}

// OpenOpts are the optional arguments of [Provisioner.GetRepository].
type OpenOpts struct {
	Username string
	Password string
	// Config is used when the repository has to be created. Nil selects the default configuration.
	Config *models.RepositoryConfig
}

// Provisioner opens or creates repositories through a [Registry].
type Provisioner struct {
	registry      *Registry
	defaultConfig func() (*models.RepositoryConfig, error)
	logger        *log.Logger
}

// NewProvisioner creates a provisioner backed by registry.
func NewProvisioner(registry *Registry, opts ProvisionerOpts) *Provisioner {
	if opts.DefaultConfig == nil {
		opts.DefaultConfig = DefaultConfig
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewDiscardLogger()
	}

	return &Provisioner{
		registry:      registry,
		defaultConfig: opts.DefaultConfig,
		logger:        shared.WithLogger(opts.Logger, "component", "provisioner"),
	}
}

// GetRepository returns the initialized repository repoID at location, creating it when absent.
//
// Creation is only possible for local locations; remote ones fail with [shared.KindUnsupportedOperation].
// A non-empty repoID overrides the id of the configuration used for creation. The caller's configuration is never
// modified. An empty repoID addresses the repository named by that configuration.
func (p *Provisioner) GetRepository(ctx context.Context, location, repoID string, opts OpenOpts) (store.Repository, error) {
	const op = "provisioner.get_repository"

	creds := models.Credentials{Username: opts.Username, Password: opts.Password}
	manager, err := p.registry.Manager(ctx, location, creds)
	if err != nil {
		return nil, err
	}

	cfg := opts.Config
	lookupID := repoID
	if lookupID == "" {
		if cfg, err = p.resolveConfig(cfg); err != nil {
			return nil, err
		}
		lookupID = cfg.ID
	}

	repo, ok, err := manager.Repository(ctx, lookupID)
	if err != nil {
		return nil, err
	}

	if ok {
		if err := repo.Initialize(ctx); err != nil {
			p.logger.Error("failed to initialize repository", "location", manager.Location(), "id", lookupID, "err", err)
			return nil, shared.Wrap(shared.KindResourceFailure, op, "failed to initialize repository "+lookupID, err)
		}
		return repo, nil
	}

	if manager.Remote() {
		return nil, shared.NewError(shared.KindUnsupportedOperation, op,
			fmt.Sprintf("repository creation for remote location %s is not supported", manager.Location()))
	}

	return p.createRepository(ctx, manager, repoID, cfg)
}

// GetRepositoryURL is [Provisioner.GetRepository] for a composite <location>/repositories/<id> URL.
func (p *Provisioner) GetRepositoryURL(ctx context.Context, repoURL string, opts OpenOpts) (store.Repository, error) {
	location, repoID, err := ParseRepositoryURL(repoURL)
	if err != nil {
		return nil, err
	}
	return p.GetRepository(ctx, location, repoID, opts)
}

func (p *Provisioner) createRepository(ctx context.Context, manager store.Manager, repoID string, cfg *models.RepositoryConfig) (store.Repository, error) {
	const op = "provisioner.create_repository"

	cfg, err := p.resolveConfig(cfg)
	if err != nil {
		return nil, err
	}

	if repoID != "" {
		cfg = cfg.WithID(repoID)
	}

	if err := manager.AddRepositoryConfig(ctx, cfg); err != nil {
		return nil, err
	}

	repo, ok, err := manager.Repository(ctx, cfg.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.NewError(shared.KindResourceFailure, op, "repository "+cfg.ID+" missing after configuration")
	}

	if err := repo.Initialize(ctx); err != nil {
		p.logger.Error("failed to initialize repository", "location", manager.Location(), "id", cfg.ID, "err", err)
		return nil, shared.Wrap(shared.KindResourceFailure, op, "failed to initialize repository "+cfg.ID, err)
	}

	p.logger.Info("repository created", "location", manager.Location(), "id", cfg.ID, "backend", cfg.Backend)
	return repo, nil
}

// resolveConfig returns cfg, or the default configuration when cfg is nil.
func (p *Provisioner) resolveConfig(cfg *models.RepositoryConfig) (*models.RepositoryConfig, error) {
	if cfg != nil {
		return cfg, nil
	}

	p.logger.Info("no configuration supplied, using the default configuration")
	def, err := p.defaultConfig()
	if err != nil {
		p.logger.Error("cannot load default configuration", "err", err)
		return nil, shared.Wrap(shared.KindResourceFailure, "provisioner.default_config", "failed to load default configuration", err)
	}
	return def, nil
}
