package mapping

import (
	"fmt"
	"strings"
)

// MappingPolicy controls how a property is read and written.
//
// UseDirty makes writes apply only to properties changed since the entity was loaded. EagerLoad fetches associated
// entities together with their owner instead of leaving references to be resolved later.
//
// The zero value is [DefaultPolicy].
type MappingPolicy struct {
	useDirty bool
	lazy     bool
}

var (
	// DefaultPolicy writes every property and loads associations eagerly. It is the identity of [MappingPolicy.CombineWith].
	DefaultPolicy = NewMappingPolicy(false, true)
	// DirectPolicy tracks dirty properties and loads eagerly.
	DirectPolicy = NewMappingPolicy(true, true)
	// LazyPolicy leaves associations as references.
	LazyPolicy = NewMappingPolicy(false, false)
)

var namedPolicies = map[string]MappingPolicy{
	"default": DefaultPolicy,
	"direct":  DirectPolicy,
	"lazy":    LazyPolicy,
}

// NewMappingPolicy returns the policy with the given facets.
func NewMappingPolicy(useDirty, eagerLoad bool) MappingPolicy {
	return MappingPolicy{useDirty: useDirty, lazy: !eagerLoad}
}

func (p MappingPolicy) UseDirty() bool { return p.useDirty }

func (p MappingPolicy) EagerLoad() bool { return !p.lazy }

// CombineWith merges two policies facet by facet: dirty tracking is kept when either side asks for it, eager loading
// only when both do. The result does not depend on operand order or grouping.
func (p MappingPolicy) CombineWith(other MappingPolicy) MappingPolicy {
	return MappingPolicy{
		useDirty: p.useDirty || other.useDirty,
		lazy:     p.lazy || other.lazy,
	}
}

// CombineAll folds policies with [MappingPolicy.CombineWith]. No policies yields [DefaultPolicy].
func CombineAll(policies ...MappingPolicy) MappingPolicy {
	out := DefaultPolicy
	for _, p := range policies {
		out = out.CombineWith(p)
	}
	return out
}

// String returns the canonical name of p when it has one.
func (p MappingPolicy) String() string {
	switch p {
	case DefaultPolicy:
		return "default"
	case DirectPolicy:
		return "direct"
	case LazyPolicy:
		return "lazy"
	default:
		return fmt.Sprintf("useDirty=%t,eagerLoad=%t", p.useDirty, !p.lazy)
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (p MappingPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler] using [ParseMappingPolicy].
func (p *MappingPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseMappingPolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParseMappingPolicy parses a policy name or a comma separated list of names, which are combined.
//
//	ParseMappingPolicy("direct,lazy") // useDirty=true, eagerLoad=false
//
// The empty string is [DefaultPolicy].
func ParseMappingPolicy(s string) (MappingPolicy, error) {
	out := DefaultPolicy
	if strings.TrimSpace(s) == "" {
		return out, nil
	}

	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		p, ok := namedPolicies[name]
		if !ok {
			return MappingPolicy{}, fmt.Errorf("unknown mapping policy %q", name)
		}
		out = out.CombineWith(p)
	}
	return out, nil
}
