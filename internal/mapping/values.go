package mapping

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jmmunozr/semdata/internal/graph"
)

// Ref is an unresolved reference to an associated entity.
type Ref struct {
	Type    TypeKey
	Subject graph.Term
}

func (r Ref) String() string {
	return string(r.Type) + " " + r.Subject.String()
}

// valueToTerm converts a Go value into the object term for prop.
func valueToTerm(prop *PersistentProperty, v any) (graph.Term, error) {
	if prop.Kind == KindResource || prop.IsAssociation() {
		return resourceTerm(v)
	}

	var lexical string
	switch prop.Kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return graph.Term{}, typeError(prop, v)
		}
		if prop.Lang != "" {
			return graph.NewLangLiteral(s, prop.Lang), nil
		}
		lexical = s
	case KindInteger:
		switch n := v.(type) {
		case int:
			lexical = strconv.Itoa(n)
		case int32:
			lexical = strconv.FormatInt(int64(n), 10)
		case int64:
			lexical = strconv.FormatInt(n, 10)
		default:
			return graph.Term{}, typeError(prop, v)
		}
	case KindFloat:
		switch f := v.(type) {
		case float64:
			lexical = strconv.FormatFloat(f, 'g', -1, 64)
		case float32:
			lexical = strconv.FormatFloat(float64(f), 'g', -1, 32)
		default:
			return graph.Term{}, typeError(prop, v)
		}
	case KindBoolean:
		b, ok := v.(bool)
		if !ok {
			return graph.Term{}, typeError(prop, v)
		}
		lexical = strconv.FormatBool(b)
	case KindDateTime:
		t, ok := v.(time.Time)
		if !ok {
			return graph.Term{}, typeError(prop, v)
		}
		lexical = t.UTC().Format(time.RFC3339Nano)
	default:
		return graph.Term{}, fmt.Errorf("property %s has unknown kind %q", prop, prop.Kind)
	}

	return graph.NewTypedLiteral(lexical, prop.Kind.Datatype()), nil
}

// termToValue converts an object term into the Go value of prop. Associations become a [Ref] to prop.Target.
func termToValue(prop *PersistentProperty, t graph.Term) (any, error) {
	if prop.IsAssociation() {
		if !t.IsResource() {
			return nil, fmt.Errorf("property %s: expected a resource, got %s", prop, t)
		}
		return Ref{Type: prop.Target, Subject: t}, nil
	}

	if prop.Kind == KindResource {
		if !t.IsResource() {
			return nil, fmt.Errorf("property %s: expected a resource, got %s", prop, t)
		}
		return t, nil
	}

	if !t.IsLiteral() {
		return nil, fmt.Errorf("property %s: expected a literal, got %s", prop, t)
	}

	switch prop.Kind {
	case KindString:
		return t.Value, nil
	case KindInteger:
		n, err := strconv.ParseInt(t.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", prop, err)
		}
		return n, nil
	case KindFloat:
		f, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", prop, err)
		}
		return f, nil
	case KindBoolean:
		b, err := strconv.ParseBool(t.Value)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", prop, err)
		}
		return b, nil
	case KindDateTime:
		ts, err := time.Parse(time.RFC3339Nano, t.Value)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", prop, err)
		}
		return ts, nil
	default:
		return nil, fmt.Errorf("property %s has unknown kind %q", prop, prop.Kind)
	}
}

func resourceTerm(v any) (graph.Term, error) {
	switch r := v.(type) {
	case graph.Term:
		if !r.IsResource() {
			return graph.Term{}, fmt.Errorf("expected a resource, got %s", r)
		}
		return r, nil
	case Ref:
		return r.Subject, nil
	case *State:
		return r.Subject, nil
	case string:
		return graph.NewIRI(r), nil
	default:
		return graph.Term{}, fmt.Errorf("cannot use %T as a resource", v)
	}
}

func typeError(prop *PersistentProperty, v any) error {
	return fmt.Errorf("property %s of kind %s cannot hold %T", prop, prop.Kind, v)
}
