package mapping

import (
	"fmt"

	"github.com/jmmunozr/semdata/internal/graph"
)

// FieldAccessor reads and writes one property of a resource against its statements.
type FieldAccessor interface {
	// Read extracts the value of the property for subject. A missing value is nil.
	Read(subject graph.Term, statements []graph.Statement) (any, error)
	// Write returns the statements representing value for subject.
	Write(subject graph.Term, value any) ([]graph.Statement, error)
}

// AccessorFactory is an accessor strategy. ForField reports false for properties it does not handle.
// The strategies of this package never claim transient properties.
type AccessorFactory interface {
	ForField(prop *PersistentProperty) (FieldAccessor, bool)
}

// DelegatingFactory asks its strategies in order; the first one claiming a property wins.
type DelegatingFactory struct {
	strategies []AccessorFactory
}

// NewDelegatingFactory creates a factory over strategies.
func NewDelegatingFactory(strategies ...AccessorFactory) *DelegatingFactory {
	return &DelegatingFactory{strategies: strategies}
}

// DefaultAccessorFactory handles literals, single resources and collections.
func DefaultAccessorFactory() *DelegatingFactory {
	return NewDelegatingFactory(LiteralAccessorFactory{}, ResourceAccessorFactory{}, CollectionAccessorFactory{})
}

func (f *DelegatingFactory) ForField(prop *PersistentProperty) (FieldAccessor, bool) {
	for _, s := range f.strategies {
		if acc, ok := s.ForField(prop); ok {
			return acc, true
		}
	}
	return nil, false
}

// LiteralAccessorFactory claims single-valued literal properties.
type LiteralAccessorFactory struct{}

func (LiteralAccessorFactory) ForField(prop *PersistentProperty) (FieldAccessor, bool) {
	if prop.Transient || prop.Multiple || prop.IsAssociation() || prop.Kind == KindResource || !prop.Kind.Valid() {
		return nil, false
	}
	return singleAccessor{prop: prop}, true
}

// ResourceAccessorFactory claims single-valued resource properties and associations.
type ResourceAccessorFactory struct{}

func (ResourceAccessorFactory) ForField(prop *PersistentProperty) (FieldAccessor, bool) {
	if prop.Transient || prop.Multiple || (prop.Kind != KindResource && !prop.IsAssociation()) {
		return nil, false
	}
	return singleAccessor{prop: prop}, true
}

// CollectionAccessorFactory claims multi-valued properties. Values are read and written as []any.
type CollectionAccessorFactory struct{}

func (CollectionAccessorFactory) ForField(prop *PersistentProperty) (FieldAccessor, bool) {
	if prop.Transient || !prop.Multiple || !prop.Kind.Valid() {
		return nil, false
	}
	return collectionAccessor{prop: prop}, true
}

type singleAccessor struct {
	prop *PersistentProperty
}

func (a singleAccessor) Read(subject graph.Term, statements []graph.Statement) (any, error) {
	objects := objectsOf(subject, a.prop, statements)
	if len(objects) == 0 {
		return nil, nil
	}
	return termToValue(a.prop, objects[0])
}

func (a singleAccessor) Write(subject graph.Term, value any) ([]graph.Statement, error) {
	if value == nil {
		return nil, nil
	}
	obj, err := valueToTerm(a.prop, value)
	if err != nil {
		return nil, err
	}
	return []graph.Statement{graph.NewStatement(subject, graph.NewIRI(a.prop.Predicate), obj)}, nil
}

type collectionAccessor struct {
	prop *PersistentProperty
}

func (a collectionAccessor) Read(subject graph.Term, statements []graph.Statement) (any, error) {
	objects := objectsOf(subject, a.prop, statements)
	if len(objects) == 0 {
		return nil, nil
	}

	values := make([]any, 0, len(objects))
	for _, obj := range objects {
		v, err := termToValue(a.prop, obj)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func (a collectionAccessor) Write(subject graph.Term, value any) ([]graph.Statement, error) {
	if value == nil {
		return nil, nil
	}

	var items []any
	switch v := value.(type) {
	case []any:
		items = v
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	default:
		return nil, fmt.Errorf("property %s: expected a slice, got %T", a.prop, value)
	}

	predicate := graph.NewIRI(a.prop.Predicate)
	out := make([]graph.Statement, 0, len(items))
	for _, item := range items {
		obj, err := valueToTerm(a.prop, item)
		if err != nil {
			return nil, err
		}
		out = append(out, graph.NewStatement(subject, predicate, obj))
	}
	return out, nil
}

func objectsOf(subject graph.Term, prop *PersistentProperty, statements []graph.Statement) []graph.Term {
	predicate := graph.NewIRI(prop.Predicate)

	var out []graph.Term
	for _, s := range statements {
		if s.Subject == subject && s.Predicate == predicate {
			out = append(out, s.Object)
		}
	}
	return out
}
