package mapping

import (
	"fmt"

	"github.com/jmmunozr/semdata/internal/graph"
)

// TypeKey identifies an entity type. Accessor maps are cached per TypeKey.
type TypeKey string

// ValueKind is the Go shape of a property value.
type ValueKind string

const (
	KindString   ValueKind = "string"
	KindInteger  ValueKind = "integer"
	KindFloat    ValueKind = "float"
	KindBoolean  ValueKind = "boolean"
	KindDateTime ValueKind = "datetime"
	// KindResource values are IRIs: [graph.Term], [Ref] or *[State].
	KindResource ValueKind = "resource"
)

// Datatype returns the XSD datatype literals of k are written with, or "" for resources.
func (k ValueKind) Datatype() string {
	switch k {
	case KindString:
		return graph.XSDString
	case KindInteger:
		return graph.XSDInteger
	case KindFloat:
		return graph.XSDDouble
	case KindBoolean:
		return graph.XSDBoolean
	case KindDateTime:
		return graph.XSDDateTime
	default:
		return ""
	}
}

// Valid reports whether k is a known kind.
func (k ValueKind) Valid() bool {
	switch k {
	case KindString, KindInteger, KindFloat, KindBoolean, KindDateTime, KindResource:
		return true
	}
	return false
}

// PersistentProperty is a mapped field of an entity type.
type PersistentProperty struct {
	Owner     TypeKey
	Name      string
	Predicate string
	Kind      ValueKind
	// Lang tags string literals written for this property.
	Lang      string
	Multiple  bool
	Transient bool
	Policy    MappingPolicy
	// Target is the associated entity type. Empty for plain properties.
	Target TypeKey
}

// IsAssociation reports whether p refers to another entity type.
func (p *PersistentProperty) IsAssociation() bool {
	return p.Target != ""
}

func (p *PersistentProperty) String() string {
	return string(p.Owner) + "." + p.Name
}

// Association is a relationship to another entity type, reached through the property on the owning side.
type Association struct {
	Inverse *PersistentProperty
}

// PersistentEntity describes how an entity type maps onto statements.
type PersistentEntity struct {
	Type TypeKey
	// RDFType is written as rdf:type of saved resources when set.
	RDFType string
	// Namespace prefixes local identifiers to form subject IRIs.
	Namespace string
	Policy    MappingPolicy

	properties   []*PersistentProperty
	associations []Association
	byName       map[string]*PersistentProperty
}

// NewPersistentEntity creates an entity with the default policy.
func NewPersistentEntity(key TypeKey, rdfType, namespace string) *PersistentEntity {
	return &PersistentEntity{
		Type:      key,
		RDFType:   rdfType,
		Namespace: namespace,
		Policy:    DefaultPolicy,
		byName:    make(map[string]*PersistentProperty),
	}
}

// AddProperty registers prop. Properties with a target become associations.
func (e *PersistentEntity) AddProperty(prop *PersistentProperty) error {
	if prop.Name == "" {
		return fmt.Errorf("entity %s: property name is required", e.Type)
	}
	if _, ok := e.byName[prop.Name]; ok {
		return fmt.Errorf("entity %s: duplicate property %q", e.Type, prop.Name)
	}

	prop.Owner = e.Type
	e.byName[prop.Name] = prop

	if prop.IsAssociation() {
		e.associations = append(e.associations, Association{Inverse: prop})
	} else {
		e.properties = append(e.properties, prop)
	}
	return nil
}

// Property returns the property or association property called name.
func (e *PersistentEntity) Property(name string) (*PersistentProperty, bool) {
	p, ok := e.byName[name]
	return p, ok
}

// DoWithProperties calls fn for each direct property in declaration order.
func (e *PersistentEntity) DoWithProperties(fn func(*PersistentProperty)) {
	for _, p := range e.properties {
		fn(p)
	}
}

// DoWithAssociations calls fn for each association in declaration order.
func (e *PersistentEntity) DoWithAssociations(fn func(Association)) {
	for _, a := range e.associations {
		fn(a)
	}
}

// EffectivePolicy combines the entity policy, the policy of prop and the call-site policy.
func (e *PersistentEntity) EffectivePolicy(prop *PersistentProperty, callSite MappingPolicy) MappingPolicy {
	p := e.Policy
	if prop != nil {
		p = p.CombineWith(prop.Policy)
	}
	return p.CombineWith(callSite)
}

// ResourceID returns the subject IRI for id. Absolute IRIs are returned unchanged.
func (e *PersistentEntity) ResourceID(id string) graph.Term {
	if isAbsoluteIRI(id) {
		return graph.NewIRI(id)
	}
	return graph.NewIRI(e.Namespace + id)
}
