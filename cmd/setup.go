package main

import (
	"cmp"
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/jmmunozr/semdata/internal/database"
	"github.com/jmmunozr/semdata/internal/shared"
)

// Setup writes the configuration file when missing and provisions the configured default repository.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmp.Or(cmd.String("config"), r.configPath, "config.toml")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = r.config
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = r.config
			}
		}
	}

	location := config.Store.Location
	if location == "" {
		return fmt.Errorf("%w: store.location is empty", shared.ErrInvalidConfig)
	}

	r.logger.Info("provisioning repository", "location", location, "id", config.Store.Repository)

	repo, err := r.provisioner.GetRepository(ctx, location, config.Store.Repository, database.OpenOpts{
		Username: config.Store.Username,
		Password: config.Store.Password,
	})
	if err != nil {
		return fmt.Errorf("failed to provision repository: %w", err)
	}

	r.writePlain("%s\n", r.palette.OK("setup complete"))
	r.writePlain("%s", r.palette.KeyValues("config", configPath, "location", location, "repository", repo.ID()))
	return nil
}
