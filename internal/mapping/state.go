package mapping

import (
	"maps"
	"slices"

	"github.com/jmmunozr/semdata/internal/graph"
)

// State holds the property values of one resource. Values set through [State.Set] are marked dirty until the state
// is saved.
type State struct {
	Type    TypeKey
	Subject graph.Term

	values map[string]any
	dirty  map[string]bool
}

// NewState creates an empty state for subject.
func NewState(key TypeKey, subject graph.Term) *State {
	return &State{
		Type:    key,
		Subject: subject,
		values:  make(map[string]any),
		dirty:   make(map[string]bool),
	}
}

// Get returns the value of the property called name.
func (s *State) Get(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Set assigns a value and marks the property dirty. A nil value clears the property on save.
func (s *State) Set(name string, value any) {
	s.values[name] = value
	s.dirty[name] = true
}

func (s *State) load(name string, value any) {
	s.values[name] = value
}

// IsDirty reports whether name changed since the state was loaded or saved.
func (s *State) IsDirty(name string) bool {
	return s.dirty[name]
}

// Dirty returns the names of the dirty properties, sorted.
func (s *State) Dirty() []string {
	return slices.Sorted(maps.Keys(s.dirty))
}

// ClearDirty forgets every change.
func (s *State) ClearDirty() {
	clear(s.dirty)
}

// Values returns a copy of the property values.
func (s *State) Values() map[string]any {
	return maps.Clone(s.values)
}
