package store

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/jmmunozr/semdata/internal/graph"
	"github.com/jmmunozr/semdata/internal/models"
	"github.com/jmmunozr/semdata/internal/shared"
)

// Manager is a live handle bound to one location.
type Manager interface {
	// Location returns the location the manager was created for.
	Location() string

	// Remote reports whether the manager talks to a server.
	Remote() bool

	// Initialize prepares the manager for use. It must be called once before any other method.
	Initialize(ctx context.Context) error

	// Repository returns the repository named id. The boolean is false when no such repository exists,
	// in which case the repository is nil and no error is returned.
	Repository(ctx context.Context, id string) (Repository, bool, error)

	// RepositoryIDs lists the ids of the repositories known to the manager.
	RepositoryIDs(ctx context.Context) ([]string, error)

	// AddRepositoryConfig registers the configuration of a new repository.
	AddRepositoryConfig(ctx context.Context, cfg *models.RepositoryConfig) error

	// Shutdown releases every repository and session owned by the manager.
	Shutdown() error
}

// Repository is a named dataset under a [Manager].
type Repository interface {
	ID() string
	Initialize(ctx context.Context) error
	Initialized() bool

	// Size returns the number of statements.
	Size(ctx context.Context) (int64, error)

	// Statements returns the statements matching p.
	Statements(ctx context.Context, p graph.Pattern) ([]graph.Statement, error)

	Add(ctx context.Context, statements ...graph.Statement) error

	// Remove deletes the statements matching p.
	Remove(ctx context.Context, p graph.Pattern) error

	Shutdown() error
}

// Options configure manager construction.
type Options struct {
	Credentials models.Credentials
	Logger      *log.Logger
	// HTTPClient is used by remote managers. Defaults to [http.DefaultClient].
	HTTPClient *http.Client
	// MaxOpenConns and MaxIdleConns size the SQLite pools of file-backed local repositories.
	MaxOpenConns int
	MaxIdleConns int
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return shared.NewDiscardLogger()
	}
	return o.Logger
}

func errNotInitialized(op, id string) error {
	return shared.NewError(shared.KindInvalidUsage, op, "repository "+id+" is not initialized")
}
