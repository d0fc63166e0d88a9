package mapping

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MappingFile is the YAML representation of a mapping [Context].
type MappingFile struct {
	DefaultNamespace string            `yaml:"default_namespace"`
	Namespaces       map[string]string `yaml:"namespaces,omitempty"`
	Entities         []EntityMapping   `yaml:"entities"`
}

// EntityMapping maps one entity type.
type EntityMapping struct {
	Type         string            `yaml:"type"`
	RDFType      string            `yaml:"rdf_type,omitempty"`
	Namespace    string            `yaml:"namespace,omitempty"`
	Policy       string            `yaml:"policy,omitempty"`
	Properties   []PropertyMapping `yaml:"properties,omitempty"`
	Associations []PropertyMapping `yaml:"associations,omitempty"`
}

// PropertyMapping maps one property or association.
type PropertyMapping struct {
	Name      string `yaml:"name"`
	Predicate string `yaml:"predicate,omitempty"`
	Kind      string `yaml:"kind,omitempty"`
	Lang      string `yaml:"lang,omitempty"`
	Multiple  bool   `yaml:"multiple,omitempty"`
	Transient bool   `yaml:"transient,omitempty"`
	Policy    string `yaml:"policy,omitempty"`
	// Target is required for associations.
	Target string `yaml:"target,omitempty"`
}

// LoadFile loads and parses a YAML mapping file from the given path.
func LoadFile(path string) (*MappingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a MappingFile.
func Parse(data []byte) (*MappingFile, error) {
	var mf MappingFile

	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}

	applyDefaults(&mf)

	return &mf, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(mf *MappingFile) {
	for i := range mf.Entities {
		e := &mf.Entities[i]
		if e.Namespace == "" {
			e.Namespace = mf.DefaultNamespace
		}

		for j := range e.Properties {
			p := &e.Properties[j]
			if p.Predicate == "" {
				p.Predicate = p.Name
			}
			if p.Kind == "" {
				p.Kind = string(KindString)
			}
		}

		for j := range e.Associations {
			a := &e.Associations[j]
			if a.Predicate == "" {
				a.Predicate = a.Name
			}
			a.Kind = string(KindResource)
		}
	}
}

// Validate reports every structural problem of the file at once.
func (mf *MappingFile) Validate() error {
	var errs []error

	types := make(map[string]bool, len(mf.Entities))
	for _, e := range mf.Entities {
		if e.Type == "" {
			errs = append(errs, fmt.Errorf("entity without type"))
			continue
		}
		if types[e.Type] {
			errs = append(errs, fmt.Errorf("duplicate entity type %q", e.Type))
		}
		types[e.Type] = true
	}

	for _, e := range mf.Entities {
		if _, err := ParseMappingPolicy(e.Policy); err != nil {
			errs = append(errs, fmt.Errorf("entity %s: %w", e.Type, err))
		}

		names := make(map[string]bool)
		check := func(p PropertyMapping) {
			if p.Name == "" {
				errs = append(errs, fmt.Errorf("entity %s: property without name", e.Type))
				return
			}
			if names[p.Name] {
				errs = append(errs, fmt.Errorf("entity %s: duplicate property %q", e.Type, p.Name))
			}
			names[p.Name] = true

			if !ValueKind(p.Kind).Valid() {
				errs = append(errs, fmt.Errorf("entity %s: property %s has unknown kind %q", e.Type, p.Name, p.Kind))
			}
			if _, err := ParseMappingPolicy(p.Policy); err != nil {
				errs = append(errs, fmt.Errorf("entity %s: property %s: %w", e.Type, p.Name, err))
			}
		}

		for _, p := range e.Properties {
			check(p)
			if p.Target != "" {
				errs = append(errs, fmt.Errorf("entity %s: property %s has a target, declare it as an association", e.Type, p.Name))
			}
		}
		for _, a := range e.Associations {
			check(a)
			if a.Target == "" {
				errs = append(errs, fmt.Errorf("entity %s: association %s has no target", e.Type, a.Name))
			} else if !types[a.Target] {
				errs = append(errs, fmt.Errorf("entity %s: association %s targets unknown type %q", e.Type, a.Name, a.Target))
			}
		}
	}

	return errors.Join(errs...)
}

// Build validates the file and creates the mapping [Context] it describes.
func (mf *MappingFile) Build() (*Context, error) {
	if err := mf.Validate(); err != nil {
		return nil, err
	}

	ctx := NewContext(mf.DefaultNamespace, mf.Namespaces)

	for _, em := range mf.Entities {
		rdfType := ""
		if em.RDFType != "" {
			expanded, err := ctx.ExpandIRI(em.RDFType)
			if err != nil {
				return nil, fmt.Errorf("entity %s: %w", em.Type, err)
			}
			rdfType = expanded
		}

		entity := NewPersistentEntity(TypeKey(em.Type), rdfType, em.Namespace)
		entity.Policy, _ = ParseMappingPolicy(em.Policy)

		for _, pm := range append(append([]PropertyMapping{}, em.Properties...), em.Associations...) {
			predicate, err := ctx.ExpandIRI(pm.Predicate)
			if err != nil {
				return nil, fmt.Errorf("entity %s: property %s: %w", em.Type, pm.Name, err)
			}
			policy, _ := ParseMappingPolicy(pm.Policy)

			prop := &PersistentProperty{
				Name:      pm.Name,
				Predicate: predicate,
				Kind:      ValueKind(pm.Kind),
				Lang:      pm.Lang,
				Multiple:  pm.Multiple,
				Transient: pm.Transient,
				Policy:    policy,
				Target:    TypeKey(pm.Target),
			}
			if err := entity.AddProperty(prop); err != nil {
				return nil, err
			}
		}

		if err := ctx.Add(entity); err != nil {
			return nil, err
		}
	}

	return ctx, nil
}

// Marshal serializes a MappingFile to YAML.
func Marshal(mf *MappingFile) ([]byte, error) {
	return yaml.Marshal(mf)
}
