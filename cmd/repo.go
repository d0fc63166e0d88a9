package main

import (
	"cmp"
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/jmmunozr/semdata/internal/database"
	"github.com/jmmunozr/semdata/internal/graph"
	"github.com/jmmunozr/semdata/internal/models"
	"github.com/jmmunozr/semdata/internal/shared"
	"github.com/jmmunozr/semdata/internal/store"
)

// openRepository resolves the repository addressed by [repositoryFlags], falling back to the store settings of the
// config. The id of a --repo-config file wins over store.repository when --id is not given.
func (r *Runner) openRepository(ctx context.Context, cmd *cli.Command) (store.Repository, error) {
	opts := database.OpenOpts{
		Username: cmp.Or(cmd.String("username"), r.config.Store.Username),
		Password: cmp.Or(cmd.String("password"), r.config.Store.Password),
	}

	if path := cmd.String("repo-config"); path != "" {
		cfg, err := loadRepositoryConfig(path)
		if err != nil {
			return nil, err
		}
		opts.Config = cfg
	}

	if u := cmd.String("url"); u != "" {
		return r.provisioner.GetRepositoryURL(ctx, u, opts)
	}

	location := cmp.Or(cmd.String("location"), r.config.Store.Location)
	if location == "" {
		return nil, fmt.Errorf("%w: --url or --location", shared.ErrMissingArgument)
	}

	id := cmd.String("id")
	if id == "" && opts.Config == nil {
		id = r.config.Store.Repository
	}

	return r.provisioner.GetRepository(ctx, location, id, opts)
}

func loadRepositoryConfig(path string) (*models.RepositoryConfig, error) {
	format, err := graph.FormatForPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read repository config: %w", err)
	}

	return database.ParseConfig(data, format)
}

// RepoOpen opens or creates a repository and prints a summary.
func (r *Runner) RepoOpen(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.openRepository(ctx, cmd)
	if err != nil {
		return err
	}

	size, err := repo.Size(ctx)
	if err != nil {
		return err
	}

	kv := []any{"id", repo.ID(), "statements", size}
	if local, ok := repo.(*store.LocalRepository); ok {
		cfg := local.Config()
		kv = append(kv, "backend", cfg.Backend, "persistent", cfg.Persistent())
		if cfg.Title != "" {
			kv = append(kv, "title", cfg.Title)
		}
	}

	r.writePlain("%s\n", r.palette.OK("repository ready"))
	return r.writePlain("%s", r.palette.KeyValues(kv...))
}

// RepoList prints the repository ids of a location.
func (r *Runner) RepoList(ctx context.Context, cmd *cli.Command) error {
	location := cmp.Or(cmd.String("location"), r.config.Store.Location)
	if location == "" {
		return fmt.Errorf("%w: --location", shared.ErrMissingArgument)
	}

	manager, err := r.registry.Manager(ctx, location, models.Credentials{
		Username: r.config.Store.Username,
		Password: r.config.Store.Password,
	})
	if err != nil {
		return err
	}

	ids, err := manager.RepositoryIDs(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"location": manager.Location(), "repositories": ids}, false)
	}

	if err := r.writePlainHeader(fmt.Sprintf("Repositories at %s", manager.Location())); err != nil {
		return err
	}
	if len(ids) == 0 {
		return r.writePlain("%s\n", r.palette.Help("no repositories"))
	}
	for _, id := range ids {
		if err := r.writePlain("  %s\n", id); err != nil {
			return err
		}
	}
	return nil
}
