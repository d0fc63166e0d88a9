package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmmunozr/semdata/internal/graph"
)

const nativeConfig = `
@prefix rep: <http://www.openrdf.org/config/repository#> .
@prefix sr: <http://www.openrdf.org/config/repository/sail#> .
@prefix sail: <http://www.openrdf.org/config/sail#> .
@prefix ns: <http://www.openrdf.org/config/sail/native#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .

_:repo a rep:Repository ;
    rep:repositoryID "catalog" ;
    rdfs:label "Catalog store" ;
    rep:repositoryImpl _:impl .

_:impl rep:repositoryType "openrdf:SailRepository" ;
    sr:sailImpl _:sail .

_:sail sail:sailType "openrdf:NativeStore" ;
    ns:tripleIndexes "spoc, posc" .
`

func parseConfig(t *testing.T, doc string) (*RepositoryConfig, error) {
	t.Helper()

	g, err := graph.DecodeGraph(strings.NewReader(doc), graph.Turtle)
	require.NoError(t, err)

	node, err := g.UniqueSubject(graph.NewIRI(graph.RDFType), graph.NewIRI(graph.RepRepository))
	require.NoError(t, err)

	return ParseRepositoryConfig(g, node)
}

func TestParseRepositoryConfig(t *testing.T) {
	t.Run("native store", func(t *testing.T) {
		cfg, err := parseConfig(t, nativeConfig)
		require.NoError(t, err)

		assert.Equal(t, "catalog", cfg.ID)
		assert.Equal(t, "Catalog store", cfg.Title)
		assert.Equal(t, SailRepositoryType, cfg.Type)
		assert.Equal(t, BackendNative, cfg.Backend)
		assert.Equal(t, []string{"spoc", "posc"}, cfg.Indexes)
		assert.True(t, cfg.Persistent())
	})

	t.Run("unsupported sail type", func(t *testing.T) {
		_, err := parseConfig(t, strings.Replace(nativeConfig, "openrdf:NativeStore", "openrdf:ElasticStore", 1))
		assert.ErrorContains(t, err, "unsupported sail type")
	})

	t.Run("missing repository id", func(t *testing.T) {
		_, err := parseConfig(t, strings.Replace(nativeConfig, `rep:repositoryID "catalog" ;`, "", 1))
		assert.Error(t, err)
	})

	t.Run("invalid index", func(t *testing.T) {
		_, err := parseConfig(t, strings.Replace(nativeConfig, "spoc, posc", "spoo", 1))
		assert.ErrorContains(t, err, "invalid index")
	})
}

func TestRepositoryConfig(t *testing.T) {
	t.Run("WithID copies", func(t *testing.T) {
		cfg := &RepositoryConfig{ID: "default", Backend: BackendMemory, Indexes: []string{"spoc"}}
		cp := cfg.WithID("other")

		assert.Equal(t, "other", cp.ID)
		assert.Equal(t, "default", cfg.ID)

		cp.Indexes[0] = "posc"
		assert.Equal(t, "spoc", cfg.Indexes[0])
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name    string
			cfg     RepositoryConfig
			wantErr bool
		}{
			{name: "memory", cfg: RepositoryConfig{ID: "a", Backend: BackendMemory}},
			{name: "missing id", cfg: RepositoryConfig{Backend: BackendMemory}, wantErr: true},
			{name: "id with slash", cfg: RepositoryConfig{ID: "a/b", Backend: BackendMemory}, wantErr: true},
			{name: "unknown backend", cfg: RepositoryConfig{ID: "a", Backend: "disk"}, wantErr: true},
			{name: "negative delay", cfg: RepositoryConfig{ID: "a", Backend: BackendMemory, SyncDelay: -1}, wantErr: true},
			{name: "index", cfg: RepositoryConfig{ID: "a", Backend: BackendNative, Indexes: []string{"cosp"}}},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.cfg.Validate()
				if tt.wantErr {
					assert.Error(t, err)
				} else {
					assert.NoError(t, err)
				}
			})
		}
	})

	t.Run("Persistent", func(t *testing.T) {
		assert.False(t, (&RepositoryConfig{Backend: BackendMemory}).Persistent())
		assert.True(t, (&RepositoryConfig{Backend: BackendMemory, Persist: true}).Persistent())
	})

	t.Run("Credentials", func(t *testing.T) {
		assert.True(t, Credentials{}.Anonymous())
		assert.False(t, Credentials{Username: "admin"}.Anonymous())
	})
}
