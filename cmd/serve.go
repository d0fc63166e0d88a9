package main

import (
	"cmp"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/jmmunozr/semdata/internal/database"
	"github.com/jmmunozr/semdata/internal/models"
	"github.com/jmmunozr/semdata/internal/server"
	"github.com/jmmunozr/semdata/internal/shared"
	"github.com/jmmunozr/semdata/internal/store"
)

// Serve exposes the repositories of a local location over HTTP until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	handler, location, err := r.serverHandler(ctx, cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cmp.Or(cmd.String("addr"), r.config.Server.Addr)
	r.writePlain("%s\n", r.palette.OK(fmt.Sprintf("serving %s on http://%s", location, addr)))
	return server.Serve(ctx, addr, handler, r.logger)
}

// serverHandler builds the router for the location selected by the flags.
func (r *Runner) serverHandler(ctx context.Context, cmd *cli.Command) (http.Handler, string, error) {
	location := cmp.Or(cmd.String("location"), r.config.Store.Location)
	if location == "" {
		return nil, "", fmt.Errorf("%w: --location", shared.ErrMissingArgument)
	}

	if database.IsRemote(location) {
		return nil, "", shared.NewError(shared.KindUnsupportedOperation, "cli.serve", "only local locations can be served")
	}

	manager, err := r.registry.Manager(ctx, location, models.Credentials{})
	if err != nil {
		return nil, "", err
	}

	router := server.NewBasicRouter()
	router.Use(
		server.Recoverer(r.logger),
		server.RequestLogger(r.logger),
		server.BasicAuth(models.Credentials{
			Username: cmp.Or(cmd.String("username"), r.config.Server.Username),
			Password: cmp.Or(cmd.String("password"), r.config.Server.Password),
		}),
	)
	router.Handler(server.NewRepositoryHandler(manager, r.logger))

	return router, manager.Location(), nil
}

var _ server.RepositorySource = store.Manager(nil)
