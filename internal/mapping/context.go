package mapping

import (
	"fmt"
	"strings"

	"github.com/jmmunozr/semdata/internal/shared"
)

// Context holds the persistent entities of an application and the namespaces used to expand prefixed names.
type Context struct {
	defaultNamespace string
	namespaces       map[string]string
	entities         map[TypeKey]*PersistentEntity
	order            []TypeKey
}

// NewContext creates an empty mapping context.
func NewContext(defaultNamespace string, namespaces map[string]string) *Context {
	ns := make(map[string]string, len(namespaces))
	for k, v := range namespaces {
		ns[k] = v
	}

	return &Context{
		defaultNamespace: defaultNamespace,
		namespaces:       ns,
		entities:         make(map[TypeKey]*PersistentEntity),
	}
}

func (c *Context) DefaultNamespace() string { return c.defaultNamespace }

// Namespaces returns a copy of the prefix table.
func (c *Context) Namespaces() map[string]string {
	ns := make(map[string]string, len(c.namespaces))
	for k, v := range c.namespaces {
		ns[k] = v
	}
	return ns
}

// Add registers entity. Type keys must be unique.
func (c *Context) Add(entity *PersistentEntity) error {
	if _, ok := c.entities[entity.Type]; ok {
		return fmt.Errorf("duplicate entity type %q", entity.Type)
	}
	c.entities[entity.Type] = entity
	c.order = append(c.order, entity.Type)
	return nil
}

// Entity returns the entity registered for key. Unknown keys are a [shared.KindInvalidUsage] error.
func (c *Context) Entity(key TypeKey) (*PersistentEntity, error) {
	e, ok := c.entities[key]
	if !ok {
		return nil, shared.NewError(shared.KindInvalidUsage, "mapping.entity", fmt.Sprintf("unknown entity type %q", key))
	}
	return e, nil
}

// Entities returns the registered entities in registration order.
func (c *Context) Entities() []*PersistentEntity {
	out := make([]*PersistentEntity, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.entities[key])
	}
	return out
}

// ExpandIRI turns "prefix:local" into a full IRI. Absolute IRIs are returned unchanged and bare names are resolved
// against the default namespace.
func (c *Context) ExpandIRI(name string) (string, error) {
	if isAbsoluteIRI(name) {
		return name, nil
	}

	if prefix, local, ok := strings.Cut(name, ":"); ok {
		ns, known := c.namespaces[prefix]
		if !known {
			return "", fmt.Errorf("unknown namespace prefix %q in %q", prefix, name)
		}
		return ns + local, nil
	}

	if c.defaultNamespace == "" {
		return "", fmt.Errorf("cannot expand %q without a default namespace", name)
	}
	return c.defaultNamespace + name, nil
}

func isAbsoluteIRI(s string) bool {
	return strings.Contains(s, "://") || strings.HasPrefix(s, "urn:")
}
