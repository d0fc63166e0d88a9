package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/jmmunozr/semdata/internal/database"
	"github.com/jmmunozr/semdata/internal/shared"
	"github.com/jmmunozr/semdata/internal/ui"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	registry    *database.Registry
	provisioner *database.Provisioner
	logger      *log.Logger
	output      io.Writer
	palette     *ui.Palette
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Registry   *database.Registry
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Palette    *ui.Palette
}

// NewRunner creates a new Runner with the provided configuration.
//
// Without a registry one is built from the store settings of the config; the runner owns it either way and
// releases it in [Runner.Close].
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Palette == nil {
		opts.Palette = ui.Default
	}
	if opts.Registry == nil {
		opts.Registry = database.NewRegistry(database.RegistryOpts{
			Logger:       opts.Logger,
			HTTPClient:   opts.HTTPClient,
			MaxOpenConns: opts.Config.Store.MaxOpenConns,
			MaxIdleConns: opts.Config.Store.MaxIdleConns,
		})
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		registry:    opts.Registry,
		provisioner: database.NewProvisioner(opts.Registry, database.ProvisionerOpts{Logger: opts.Logger}),
		logger:      opts.Logger,
		output:      opts.Output,
		palette:     opts.Palette,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, repoCommand, statementsCommand, entityCommand, policyCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Close shuts down every store manager opened by the commands.
func (r *Runner) Close() error {
	if err := r.registry.ShutdownAll(); err != nil {
		r.logger.Error("failed to shut down store managers", "err", err)
		return err
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) error {
	return r.writePlain("%s\n", r.palette.Title(title))
}
