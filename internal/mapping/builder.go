package mapping

import (
	"fmt"
	"sync"

	"github.com/jmmunozr/semdata/internal/shared"
)

// Builder creates an application value from a loaded [State].
type Builder func(state *State) (any, error)

// Builders maps entity types to their builders.
type Builders struct {
	mu       sync.RWMutex
	builders map[TypeKey]Builder
}

// NewBuilders creates an empty builder registry.
func NewBuilders() *Builders {
	return &Builders{builders: make(map[TypeKey]Builder)}
}

// Register sets the builder for key, replacing any previous one.
func (b *Builders) Register(key TypeKey, fn Builder) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.builders[key] = fn
}

// CreateInstanceFromState builds the value for state with the builder registered for entity.
// Types without a builder are a [shared.KindInvalidUsage] error.
func (b *Builders) CreateInstanceFromState(entity *PersistentEntity, state *State) (any, error) {
	const op = "mapping.create_instance"

	b.mu.RLock()
	fn, ok := b.builders[entity.Type]
	b.mu.RUnlock()

	if !ok {
		return nil, shared.NewError(shared.KindInvalidUsage, op, fmt.Sprintf("no builder registered for %s", entity.Type))
	}

	v, err := fn(state)
	if err != nil {
		return nil, shared.Wrap(shared.KindInvalidUsage, op, fmt.Sprintf("failed to build %s", entity.Type), err)
	}
	return v, nil
}
