package models

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/jmmunozr/semdata/internal/graph"
)

// Backend identifies the storage engine behind a repository.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendNative Backend = "native"
)

// Sail types understood by [ParseRepositoryConfig].
const (
	SailMemoryStore = "openrdf:MemoryStore"
	SailNativeStore = "openrdf:NativeStore"

	SailRepositoryType = "openrdf:SailRepository"
)

// BackendForSailType maps an RDF4J sail type to a Backend.
func BackendForSailType(sailType string) (Backend, error) {
	switch sailType {
	case SailMemoryStore:
		return BackendMemory, nil
	case SailNativeStore:
		return BackendNative, nil
	default:
		return "", fmt.Errorf("unsupported sail type %q", sailType)
	}
}

var (
	repositoryIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)
	indexPattern        = regexp.MustCompile(`^[spoc]{4}$`)
)

// RepositoryConfig describes how to provision a repository.
type RepositoryConfig struct {
	ID    string `toml:"id"`
	Title string `toml:"title"`
	// Type is the repository implementation type, normally [SailRepositoryType].
	Type    string  `toml:"type"`
	Backend Backend `toml:"backend"`
	// Persist keeps a memory backend on disk between restarts.
	Persist bool `toml:"persist"`
	// SyncDelay is the memory backend flush delay in milliseconds.
	SyncDelay int64    `toml:"sync_delay"`
	Indexes   []string `toml:"indexes"`
}

// Validate checks the id, backend and index specifications.
func (c *RepositoryConfig) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("repository id is required")
	}
	if !repositoryIDPattern.MatchString(c.ID) {
		return fmt.Errorf("invalid repository id %q", c.ID)
	}

	switch c.Backend {
	case BackendMemory, BackendNative:
	default:
		return fmt.Errorf("unsupported backend %q", c.Backend)
	}

	if c.SyncDelay < 0 {
		return fmt.Errorf("sync delay must not be negative")
	}

	for _, idx := range c.Indexes {
		if !indexPattern.MatchString(idx) || !isPermutation(idx) {
			return fmt.Errorf("invalid index specification %q", idx)
		}
	}

	return nil
}

// WithID returns a copy of c with its id replaced.
func (c *RepositoryConfig) WithID(id string) *RepositoryConfig {
	cp := *c
	cp.Indexes = slices.Clone(c.Indexes)
	cp.ID = id
	return &cp
}

// Equal reports whether c and other describe the same repository. A nil index list equals an empty one.
func (c *RepositoryConfig) Equal(other *RepositoryConfig) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.ID == other.ID &&
		c.Title == other.Title &&
		c.Type == other.Type &&
		c.Backend == other.Backend &&
		c.Persist == other.Persist &&
		c.SyncDelay == other.SyncDelay &&
		slices.Equal(c.Indexes, other.Indexes)
}

// Persistent reports whether the repository keeps its statements on disk.
func (c *RepositoryConfig) Persistent() bool {
	return c.Backend == BackendNative || c.Persist
}

func isPermutation(idx string) bool {
	for _, r := range "spoc" {
		if strings.Count(idx, string(r)) != 1 {
			return false
		}
	}
	return true
}

// ParseRepositoryConfig reads the repository configuration rooted at node.
//
// The expected shape is the RDF4J repository schema:
//
//	node rep:repositoryID "id" ; rdfs:label "title" ;
//	     rep:repositoryImpl [ rep:repositoryType "openrdf:SailRepository" ;
//	                          sr:sailImpl [ sail:sailType "openrdf:MemoryStore" ; ms:persist true ] ] .
func ParseRepositoryConfig(g *graph.Graph, node graph.Term) (*RepositoryConfig, error) {
	cfg := &RepositoryConfig{}

	id, ok := g.Object(node, graph.NewIRI(graph.RepRepositoryID))
	if !ok || !id.IsLiteral() {
		return nil, fmt.Errorf("repository %s has no %s", node, graph.RepRepositoryID)
	}
	cfg.ID = id.Value

	if label, ok := g.Object(node, graph.NewIRI(graph.RDFSLabel)); ok {
		cfg.Title = label.Value
	}

	impl, ok := g.Object(node, graph.NewIRI(graph.RepRepositoryImpl))
	if !ok {
		return nil, fmt.Errorf("repository %q has no implementation", cfg.ID)
	}

	cfg.Type = SailRepositoryType
	if typ, ok := g.Object(impl, graph.NewIRI(graph.RepRepositoryType)); ok {
		cfg.Type = typ.Value
	}
	if cfg.Type != SailRepositoryType {
		return nil, fmt.Errorf("unsupported repository type %q", cfg.Type)
	}

	sail, ok := g.Object(impl, graph.NewIRI(graph.SRSailImpl))
	if !ok {
		return nil, fmt.Errorf("repository %q has no sail implementation", cfg.ID)
	}

	sailType, ok := g.Object(sail, graph.NewIRI(graph.SailType))
	if !ok {
		return nil, fmt.Errorf("repository %q has no sail type", cfg.ID)
	}
	backend, err := BackendForSailType(sailType.Value)
	if err != nil {
		return nil, err
	}
	cfg.Backend = backend

	if persist, ok := g.Object(sail, graph.NewIRI(graph.MemoryPersist)); ok {
		v, err := strconv.ParseBool(persist.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", graph.MemoryPersist, persist.Value, err)
		}
		cfg.Persist = v
	}

	if delay, ok := g.Object(sail, graph.NewIRI(graph.MemorySyncDelay)); ok {
		v, err := strconv.ParseInt(delay.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", graph.MemorySyncDelay, delay.Value, err)
		}
		cfg.SyncDelay = v
	}

	if indexes, ok := g.Object(sail, graph.NewIRI(graph.NativeTripleIndexes)); ok {
		for _, idx := range strings.Split(indexes.Value, ",") {
			if idx = strings.TrimSpace(idx); idx != "" {
				cfg.Indexes = append(cfg.Indexes, idx)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Credentials authenticate against a remote location. Empty values mean anonymous access.
type Credentials struct {
	Username string
	Password string
}

// Anonymous reports whether no username was supplied.
func (c Credentials) Anonymous() bool {
	return c.Username == ""
}
