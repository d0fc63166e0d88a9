package mapping

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/jmmunozr/semdata/internal/graph"
	"github.com/jmmunozr/semdata/internal/shared"
)

// TemplateOpts configure a [Template]. Nil fields get fresh defaults.
type TemplateOpts struct {
	Accessors *AccessorProvider
	Builders  *Builders
	Logger    *log.Logger
}

// Template loads and saves entities of a mapping [Context] against a statement store.
type Template struct {
	mapping   *Context
	store     StatementStore
	collector *Collector
	accessors *AccessorProvider
	builders  *Builders
	logger    *log.Logger
}

// NewTemplate creates a template over store.
func NewTemplate(mapping *Context, store StatementStore, opts TemplateOpts) *Template {
	if opts.Accessors == nil {
		opts.Accessors = NewAccessorProvider(DefaultAccessorFactory())
	}
	if opts.Builders == nil {
		opts.Builders = NewBuilders()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewDiscardLogger()
	}

	return &Template{
		mapping:   mapping,
		store:     store,
		collector: NewCollector(store),
		accessors: opts.Accessors,
		builders:  opts.Builders,
		logger:    shared.WithLogger(opts.Logger, "component", "template"),
	}
}

// MappingPolicy returns the entity-level policy of key.
func (t *Template) MappingPolicy(key TypeKey) (MappingPolicy, error) {
	entity, err := t.mapping.Entity(key)
	if err != nil {
		return MappingPolicy{}, err
	}
	return entity.Policy, nil
}

// Load reads the state of subject as an entity of type key.
//
// Associations whose effective policy loads eagerly are replaced by the loaded *[State] of their targets; the others
// stay [Ref] values for [Template.Resolve]. A subject without statements is a [shared.KindInvalidUsage] error.
func (t *Template) Load(ctx context.Context, key TypeKey, subject graph.Term, callSite MappingPolicy) (*State, error) {
	entity, err := t.mapping.Entity(key)
	if err != nil {
		return nil, err
	}

	state, found, err := t.load(ctx, entity, subject, callSite, make(map[graph.Term]*State))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, shared.NewError(shared.KindInvalidUsage, "template.load", fmt.Sprintf("no %s found for %s", key, subject))
	}
	return state, nil
}

// LoadInstance loads subject and builds an application value with the builder registered for key.
func (t *Template) LoadInstance(ctx context.Context, key TypeKey, subject graph.Term, callSite MappingPolicy) (any, error) {
	state, err := t.Load(ctx, key, subject, callSite)
	if err != nil {
		return nil, err
	}

	entity, err := t.mapping.Entity(key)
	if err != nil {
		return nil, err
	}
	return t.builders.CreateInstanceFromState(entity, state)
}

// Resolve loads the entity a lazy reference points to.
func (t *Template) Resolve(ctx context.Context, ref Ref, callSite MappingPolicy) (*State, error) {
	return t.Load(ctx, ref.Type, ref.Subject, callSite)
}

// Refresh reloads one property of state from the store, discarding unsaved changes to it.
func (t *Template) Refresh(ctx context.Context, state *State, name string) error {
	const op = "template.refresh"

	entity, err := t.mapping.Entity(state.Type)
	if err != nil {
		return err
	}

	prop, ok := entity.Property(name)
	if !ok {
		return shared.NewError(shared.KindInvalidUsage, op, fmt.Sprintf("%s has no property %q", entity.Type, name))
	}

	acc, ok := t.accessors.ProvideFieldAccessors(entity)[prop]
	if !ok {
		return shared.NewError(shared.KindInvalidUsage, op, fmt.Sprintf("property %s is not mapped", prop))
	}

	statements, err := t.collector.StatementsForResourceProperty(ctx, state.Subject, entity, prop)
	if err != nil {
		return err
	}

	value, err := acc.Read(state.Subject, statements)
	if err != nil {
		return shared.Wrap(shared.KindInvalidUsage, op, "failed to read "+prop.String(), err)
	}

	state.load(name, value)
	delete(state.dirty, name)
	return nil
}

func (t *Template) load(ctx context.Context, entity *PersistentEntity, subject graph.Term, callSite MappingPolicy, visited map[graph.Term]*State) (*State, bool, error) {
	const op = "template.load"

	if state, ok := visited[subject]; ok {
		return state, true, nil
	}

	statements, err := t.collector.StatementsForResource(ctx, subject, entity)
	if err != nil {
		return nil, false, err
	}
	if len(statements) == 0 {
		return nil, false, nil
	}

	state := NewState(entity.Type, subject)
	visited[subject] = state

	accessors := t.accessors.ProvideFieldAccessors(entity)
	for _, prop := range sortedProperties(accessors) {
		value, err := accessors[prop].Read(subject, statements)
		if err != nil {
			return nil, false, shared.Wrap(shared.KindInvalidUsage, op, "failed to read "+prop.String(), err)
		}
		if value == nil {
			continue
		}

		if prop.IsAssociation() && entity.EffectivePolicy(prop, callSite).EagerLoad() {
			if value, err = t.loadAssociation(ctx, prop, value, callSite, visited); err != nil {
				return nil, false, err
			}
		}

		state.load(prop.Name, value)
	}

	t.logger.Debug("entity loaded", "type", entity.Type, "subject", subject.Value, "statements", len(statements))
	return state, true, nil
}

// loadAssociation replaces the references in value by loaded states. Targets without statements stay references.
func (t *Template) loadAssociation(ctx context.Context, prop *PersistentProperty, value any, callSite MappingPolicy, visited map[graph.Term]*State) (any, error) {
	target, err := t.mapping.Entity(prop.Target)
	if err != nil {
		return nil, err
	}

	resolve := func(v any) (any, error) {
		ref, ok := v.(Ref)
		if !ok {
			return v, nil
		}
		state, found, err := t.load(ctx, target, ref.Subject, callSite, visited)
		if err != nil {
			return nil, err
		}
		if !found {
			t.logger.Debug("association target not found", "property", prop.String(), "subject", ref.Subject.Value)
			return ref, nil
		}
		return state, nil
	}

	items, ok := value.([]any)
	if !ok {
		return resolve(value)
	}

	out := make([]any, 0, len(items))
	for _, item := range items {
		v, err := resolve(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Save writes state to the store.
//
// Properties whose effective policy uses dirty tracking are only written when dirty; the others are always rewritten.
// Associated states are stored as references and are not saved themselves.
func (t *Template) Save(ctx context.Context, state *State, callSite MappingPolicy) error {
	const op = "template.save"

	entity, err := t.mapping.Entity(state.Type)
	if err != nil {
		return err
	}

	if entity.RDFType != "" {
		typ := graph.NewStatement(state.Subject, graph.NewIRI(graph.RDFType), graph.NewIRI(entity.RDFType))
		if err := t.store.Add(ctx, typ); err != nil {
			return shared.Translate(op, err)
		}
	}

	accessors := t.accessors.ProvideFieldAccessors(entity)
	written := 0
	for _, prop := range sortedProperties(accessors) {
		if entity.EffectivePolicy(prop, callSite).UseDirty() && !state.IsDirty(prop.Name) {
			continue
		}

		value, ok := state.Get(prop.Name)
		if !ok {
			continue
		}

		statements, err := accessors[prop].Write(state.Subject, value)
		if err != nil {
			return shared.Wrap(shared.KindInvalidUsage, op, "failed to write "+prop.String(), err)
		}

		p := graph.Any().WithSubject(state.Subject).WithPredicate(graph.NewIRI(prop.Predicate))
		if err := t.store.Remove(ctx, p); err != nil {
			return shared.Translate(op, err)
		}
		if len(statements) > 0 {
			if err := t.store.Add(ctx, statements...); err != nil {
				return shared.Translate(op, err)
			}
		}
		written++
	}

	state.ClearDirty()
	t.logger.Debug("entity saved", "type", entity.Type, "subject", state.Subject.Value, "properties", written)
	return nil
}

// Delete removes every statement about subject.
func (t *Template) Delete(ctx context.Context, subject graph.Term) error {
	return shared.Translate("template.delete", t.store.Remove(ctx, graph.Any().WithSubject(subject)))
}

func sortedProperties(m AccessorMap) []*PersistentProperty {
	props := make([]*PersistentProperty, 0, len(m))
	for p := range m {
		props = append(props, p)
	}
	slices.SortFunc(props, func(a, b *PersistentProperty) int {
		return strings.Compare(a.Name, b.Name)
	})
	return props
}
