package mapping

import (
	"context"

	"github.com/jmmunozr/semdata/internal/graph"
	"github.com/jmmunozr/semdata/internal/shared"
)

// StatementStore is the part of a repository the mapping layer needs.
type StatementStore interface {
	Statements(ctx context.Context, p graph.Pattern) ([]graph.Statement, error)
	Add(ctx context.Context, statements ...graph.Statement) error
	Remove(ctx context.Context, p graph.Pattern) error
}

// Collector fetches the statements describing entities.
type Collector struct {
	store StatementStore
}

// NewCollector creates a collector reading from store.
func NewCollector(store StatementStore) *Collector {
	return &Collector{store: store}
}

// StatementsForResource returns every statement about subject.
func (c *Collector) StatementsForResource(ctx context.Context, subject graph.Term, entity *PersistentEntity) ([]graph.Statement, error) {
	statements, err := c.store.Statements(ctx, graph.Any().WithSubject(subject))
	if err != nil {
		return nil, shared.Translate("collector.resource", err)
	}
	return statements, nil
}

// StatementsForResourceProperty returns the statements holding prop of subject.
func (c *Collector) StatementsForResourceProperty(ctx context.Context, subject graph.Term, entity *PersistentEntity, prop *PersistentProperty) ([]graph.Statement, error) {
	p := graph.Any().WithSubject(subject).WithPredicate(graph.NewIRI(prop.Predicate))

	statements, err := c.store.Statements(ctx, p)
	if err != nil {
		return nil, shared.Translate("collector.property", err)
	}
	return statements, nil
}
