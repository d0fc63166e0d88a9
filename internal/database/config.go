package database

import (
	"bytes"
	_ "embed"

	"github.com/jmmunozr/semdata/internal/graph"
	"github.com/jmmunozr/semdata/internal/models"
	"github.com/jmmunozr/semdata/internal/shared"
)

//go:embed data-memory.ttl
var defaultConfigTurtle []byte

// DefaultConfig parses the bundled default repository configuration.
//
// The document must declare exactly one rep:Repository subject.
func DefaultConfig() (*models.RepositoryConfig, error) {
	return ParseConfig(defaultConfigTurtle, graph.Turtle)
}

// ParseConfig reads a repository configuration document declaring exactly one rep:Repository subject.
// Any failure is a [shared.KindResourceFailure].
func ParseConfig(doc []byte, format graph.Format) (*models.RepositoryConfig, error) {
	const op = "config.parse"

	g, err := graph.DecodeGraph(bytes.NewReader(doc), format)
	if err != nil {
		return nil, shared.Wrap(shared.KindResourceFailure, op, "failed to parse repository configuration", err)
	}

	node, err := g.UniqueSubject(graph.NewIRI(graph.RDFType), graph.NewIRI(graph.RepRepository))
	if err != nil {
		return nil, shared.Wrap(shared.KindResourceFailure, op, "failed to locate repository configuration", err)
	}

	cfg, err := models.ParseRepositoryConfig(g, node)
	if err != nil {
		return nil, shared.Wrap(shared.KindResourceFailure, op, "failed to read repository configuration", err)
	}
	return cfg, nil
}
