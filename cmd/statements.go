package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/jmmunozr/semdata/internal/formatter"
	"github.com/jmmunozr/semdata/internal/graph"
	"github.com/jmmunozr/semdata/internal/shared"
)

// StatementsImport decodes an RDF file and adds its statements to a repository.
func (r *Runner) StatementsImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	format, err := graph.FormatForPath(path)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	statements, err := graph.Decode(f, format)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	if graphName := cmd.String("context"); graphName != "" {
		for i := range statements {
			statements[i].Context = graphName
		}
	}

	repo, err := r.openRepository(ctx, cmd)
	if err != nil {
		return err
	}

	if err := repo.Add(ctx, statements...); err != nil {
		return err
	}

	r.logger.Info("statements imported", "path", path, "repository", repo.ID(), "count", len(statements))
	return r.writePlain("%s\n", r.palette.OK(fmt.Sprintf("imported %d statements into %s", len(statements), repo.ID())))
}

// StatementsList prints the statements matching the pattern flags.
func (r *Runner) StatementsList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
	}

	pattern := graph.Any().WithContext(cmd.String("context"))
	if s := cmd.String("subject"); s != "" {
		pattern = pattern.WithSubject(parseResource(s))
	}
	if p := cmd.String("predicate"); p != "" {
		pattern = pattern.WithPredicate(graph.NewIRI(p))
	}

	repo, err := r.openRepository(ctx, cmd)
	if err != nil {
		return err
	}

	statements, err := repo.Statements(ctx, pattern)
	if err != nil {
		return err
	}

	if output := cmd.String("output"); output != "" {
		path, err := formatter.WriteExport(statements, format, repo.ID(), output)
		if err != nil {
			return err
		}
		return r.writePlain("%s\n", r.palette.OK(fmt.Sprintf("wrote %d statements to %s", len(statements), path)))
	}

	data, err := formatter.Export(statements, format, repo.ID())
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// parseResource reads "_:label" as a blank node and anything else as an IRI.
func parseResource(s string) graph.Term {
	if strings.HasPrefix(s, "_:") {
		return graph.NewBlank(s)
	}
	return graph.NewIRI(s)
}
