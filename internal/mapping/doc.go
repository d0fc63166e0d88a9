// Package mapping maps entity types onto graph statements.
//
// A mapping [Context], usually built from a YAML [MappingFile], describes each [PersistentEntity]: its properties,
// the predicates they are stored under and their [MappingPolicy]. Policies are combined per facet, entity policy
// first, then property policy, then the policy of the call site:
//
//	entity.EffectivePolicy(prop, LazyPolicy)
//
// Reading and writing a property goes through a [FieldAccessor] chosen by an [AccessorFactory] strategy.
// [AccessorProvider] resolves the accessors of a type once and caches the resulting map.
//
// [Template] ties everything together: it loads a [State] for a subject using a [Collector], resolves associations
// eagerly or leaves them as [Ref] values, and saves states back honoring dirty tracking. [Builders] turn loaded
// states into application values.
package mapping
