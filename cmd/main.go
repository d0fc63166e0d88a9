package main

import (
	"cmp"
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/jmmunozr/semdata/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := cmp.Or(os.Getenv("SEMDATA_CONFIG"), "config.toml")
	config, err := loadConfig(configPath)
	if err != nil {
		logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		config = shared.DefaultConfig()
	}
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "semdata",
		Usage:    "Map entities onto RDF repositories",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	err = app.Run(context.Background(), os.Args)
	closeErr := runner.Close()

	if err == nil {
		err = closeErr
	}
	if err != nil {
		logger.Fatal("application error", "kind", shared.KindOf(err), "err", err)
	}
}

// loadConfig reads path when it exists; otherwise the embedded defaults are used. Environment overrides apply to both.
func loadConfig(path string) (*shared.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return shared.LoadConfig(path)
	}

	config := shared.DefaultConfig()
	if err := shared.ApplyEnv(config); err != nil {
		return nil, err
	}
	return config, nil
}
