package mapping

import "sync"

// AccessorMap maps the properties of one entity type to their accessors. Maps handed out by an
// [AccessorProvider] are shared and must not be modified.
type AccessorMap map[*PersistentProperty]FieldAccessor

// AccessorProvider computes the accessor map of an entity type once and caches it by [TypeKey].
//
// The cache has no eviction; it holds one map per entity type seen.
type AccessorProvider struct {
	factory AccessorFactory

	mu    sync.Mutex
	cache map[TypeKey]AccessorMap
}

// NewAccessorProvider creates a provider resolving accessors with factory.
func NewAccessorProvider(factory AccessorFactory) *AccessorProvider {
	return &AccessorProvider{
		factory: factory,
		cache:   make(map[TypeKey]AccessorMap),
	}
}

// ProvideFieldAccessors returns the accessor map for entity.
//
// The first call for a type resolves its direct properties and the inverse side of its associations; transient
// properties and properties no strategy claims are left out. Every later call for the same type returns the same map.
func (p *AccessorProvider) ProvideFieldAccessors(entity *PersistentEntity) AccessorMap {
	p.mu.Lock()
	defer p.mu.Unlock()

	if accessors, ok := p.cache[entity.Type]; ok {
		return accessors
	}

	accessors := make(AccessorMap)
	resolve := func(prop *PersistentProperty) {
		if prop.Transient {
			return
		}
		if acc, ok := p.factory.ForField(prop); ok {
			accessors[prop] = acc
		}
	}
	entity.DoWithProperties(resolve)
	entity.DoWithAssociations(func(a Association) { resolve(a.Inverse) })

	p.cache[entity.Type] = accessors
	return accessors
}

// Len returns the number of cached entity types.
func (p *AccessorProvider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cache)
}
