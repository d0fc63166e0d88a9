package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/jmmunozr/semdata/internal/formatter"
	"github.com/jmmunozr/semdata/internal/graph"
	"github.com/jmmunozr/semdata/internal/mapping"
	"github.com/jmmunozr/semdata/internal/shared"
)

// EntityLoad loads one entity through the mapping file and prints its state.
func (r *Runner) EntityLoad(ctx context.Context, cmd *cli.Command) error {
	mappingPath := cmp.Or(cmd.String("mapping"), r.config.Mapping.Path)
	if mappingPath == "" {
		return fmt.Errorf("%w: --mapping", shared.ErrMissingArgument)
	}

	mf, err := mapping.LoadFile(mappingPath)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %w", shared.ErrMissingConfig, err)
	}
	if err != nil {
		return err
	}
	mc, err := mf.Build()
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidConfig, err)
	}

	policy, err := mapping.ParseMappingPolicy(cmp.Or(cmd.String("policy"), r.config.Mapping.Policy))
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
	}

	key := mapping.TypeKey(cmd.String("type"))
	entity, err := mc.Entity(key)
	if err != nil {
		return err
	}
	subject := entity.ResourceID(cmd.String("subject"))

	repo, err := r.openRepository(ctx, cmd)
	if err != nil {
		return err
	}

	tpl := mapping.NewTemplate(mc, repo, mapping.TemplateOpts{Logger: r.logger})
	state, err := tpl.Load(ctx, key, subject, policy)
	if err != nil {
		return err
	}

	r.logger.Debug("entity loaded", "type", key, "subject", subject.Value, "policy", policy)

	if cmd.Bool("json") {
		return r.writeJSON(stateDocument(state, make(map[*mapping.State]bool)), true)
	}

	data, err := formatter.ExportStateToText(state)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// stateDocument converts a state into a JSON-friendly map keyed by property name.
// "@id" and "@type" identify the resource; a state already being rendered is emitted as a reference.
func stateDocument(state *mapping.State, seen map[*mapping.State]bool) map[string]any {
	doc := map[string]any{"@id": state.Subject.Value, "@type": string(state.Type)}
	if seen[state] {
		return doc
	}
	seen[state] = true

	for name, v := range state.Values() {
		doc[name] = jsonValue(v, seen)
	}
	return doc
}

func jsonValue(v any, seen map[*mapping.State]bool) any {
	switch x := v.(type) {
	case *mapping.State:
		return stateDocument(x, seen)
	case mapping.Ref:
		return map[string]any{"@id": x.Subject.Value, "@type": string(x.Type)}
	case graph.Term:
		return x.Value
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case []any:
		out := make([]any, 0, len(x))
		for _, item := range x {
			out = append(out, jsonValue(item, seen))
		}
		return out
	default:
		return v
	}
}

// PolicyCombine folds the policies given as arguments and prints the result.
func (r *Runner) PolicyCombine(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("%w: at least one policy", shared.ErrMissingArgument)
	}

	policy, err := mapping.ParseMappingPolicy(strings.Join(args, ","))
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
	}

	return r.writePlain("%s", r.palette.KeyValues(
		"policy", policy,
		"useDirty", policy.UseDirty(),
		"eagerLoad", policy.EagerLoad(),
	))
}
