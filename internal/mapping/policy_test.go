package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappingPolicy(t *testing.T) {
	t.Run("canonical policies", func(t *testing.T) {
		assert.False(t, DefaultPolicy.UseDirty())
		assert.True(t, DefaultPolicy.EagerLoad())

		assert.True(t, DirectPolicy.UseDirty())
		assert.True(t, DirectPolicy.EagerLoad())

		assert.False(t, LazyPolicy.UseDirty())
		assert.False(t, LazyPolicy.EagerLoad())
	})

	t.Run("CombineWith", func(t *testing.T) {
		tc := []struct {
			name      string
			a, b      MappingPolicy
			useDirty  bool
			eagerLoad bool
		}{
			{name: "direct+lazy", a: DirectPolicy, b: LazyPolicy, useDirty: true, eagerLoad: false},
			{name: "default+lazy", a: DefaultPolicy, b: LazyPolicy, useDirty: false, eagerLoad: false},
			{name: "direct+default", a: DirectPolicy, b: DefaultPolicy, useDirty: true, eagerLoad: true},
			{name: "lazy+direct", a: LazyPolicy, b: DirectPolicy, useDirty: true, eagerLoad: false},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				got := tt.a.CombineWith(tt.b)
				assert.Equal(t, tt.useDirty, got.UseDirty())
				assert.Equal(t, tt.eagerLoad, got.EagerLoad())
			})
		}
	})

	all := []MappingPolicy{
		DefaultPolicy, DirectPolicy, LazyPolicy, NewMappingPolicy(true, false),
	}

	t.Run("idempotent", func(t *testing.T) {
		for _, p := range all {
			assert.Equal(t, p, p.CombineWith(p), p.String())
		}
	})

	t.Run("commutative and associative", func(t *testing.T) {
		for _, a := range all {
			for _, b := range all {
				assert.Equal(t, a.CombineWith(b), b.CombineWith(a))
				for _, c := range all {
					assert.Equal(t, a.CombineWith(b).CombineWith(c), a.CombineWith(b.CombineWith(c)))
				}
			}
		}
	})

	t.Run("default is the identity", func(t *testing.T) {
		for _, p := range all {
			assert.Equal(t, p, DefaultPolicy.CombineWith(p))
		}
		assert.Equal(t, DefaultPolicy, CombineAll())
		assert.Equal(t, NewMappingPolicy(true, false), CombineAll(DirectPolicy, DefaultPolicy, LazyPolicy))
	})

	t.Run("ParseMappingPolicy", func(t *testing.T) {
		tc := []struct {
			in      string
			want    MappingPolicy
			wantErr bool
		}{
			{in: "", want: DefaultPolicy},
			{in: "default", want: DefaultPolicy},
			{in: "Direct", want: DirectPolicy},
			{in: "lazy", want: LazyPolicy},
			{in: "direct, lazy", want: NewMappingPolicy(true, false)},
			{in: "eager", wantErr: true},
		}

		for _, tt := range tc {
			t.Run(tt.in, func(t *testing.T) {
				got, err := ParseMappingPolicy(tt.in)
				if tt.wantErr {
					assert.Error(t, err)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			})
		}
	})

	t.Run("text round trip", func(t *testing.T) {
		for _, p := range all {
			text, err := p.MarshalText()
			require.NoError(t, err)

			var got MappingPolicy
			if p == NewMappingPolicy(true, false) {
				assert.Error(t, got.UnmarshalText(text), "non canonical policies have no name")
				continue
			}
			require.NoError(t, got.UnmarshalText(text))
			assert.Equal(t, p, got)
		}
	})

	t.Run("EffectivePolicy", func(t *testing.T) {
		e := NewPersistentEntity("Person", "", "")
		e.Policy = DirectPolicy
		prop := &PersistentProperty{Name: "friends", Policy: DefaultPolicy}

		assert.Equal(t, DirectPolicy, e.EffectivePolicy(prop, DefaultPolicy))
		assert.Equal(t, NewMappingPolicy(true, false), e.EffectivePolicy(prop, LazyPolicy))

		prop.Policy = LazyPolicy
		assert.Equal(t, NewMappingPolicy(true, false), e.EffectivePolicy(prop, DefaultPolicy))
		assert.Equal(t, DirectPolicy, e.EffectivePolicy(nil, DefaultPolicy))
	})

	t.Run("unset policy is the default", func(t *testing.T) {
		var zero MappingPolicy
		assert.Equal(t, DefaultPolicy, zero)
		assert.True(t, zero.EagerLoad())

		e := NewPersistentEntity("Person", "", "")
		knows := &PersistentProperty{Name: "knows", Kind: KindResource, Target: "Person"}
		require.NoError(t, e.AddProperty(knows))

		got := e.EffectivePolicy(knows, DefaultPolicy)
		assert.True(t, got.EagerLoad())
		assert.False(t, got.UseDirty())
	})
}
