package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmmunozr/semdata/internal/graph"
	"github.com/jmmunozr/semdata/internal/models"
	"github.com/jmmunozr/semdata/internal/shared"
)

const ex = "http://example.org/"

func newLocalManager(t *testing.T, root string) *LocalManager {
	t.Helper()

	m := NewLocalManager(root, Options{})
	require.NoError(t, m.Initialize(context.Background()))
	t.Cleanup(func() { m.Shutdown() })
	return m
}

func sampleStatements() []graph.Statement {
	alice := graph.NewIRI(ex + "alice")
	return []graph.Statement{
		graph.NewStatement(alice, graph.NewIRI(ex+"name"), graph.NewLiteral("Alice")),
		graph.NewStatement(alice, graph.NewIRI(ex+"knows"), graph.NewIRI(ex+"bob")),
	}
}

func TestLocalManager(t *testing.T) {
	ctx := context.Background()

	t.Run("Initialize creates root", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "store")
		newLocalManager(t, root)

		info, err := os.Stat(filepath.Join(root, repositoriesDir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("Initialize fails when root is a file", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(root, []byte("x"), 0o644))

		err := NewLocalManager(root, Options{}).Initialize(ctx)
		assert.ErrorIs(t, err, shared.ErrResourceFailure)
	})

	t.Run("Repository absent", func(t *testing.T) {
		m := newLocalManager(t, t.TempDir())

		repo, ok, err := m.Repository(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, repo)
	})

	t.Run("AddRepositoryConfig & Repository", func(t *testing.T) {
		m := newLocalManager(t, t.TempDir())

		require.NoError(t, m.AddRepositoryConfig(ctx, &models.RepositoryConfig{ID: "people", Backend: models.BackendMemory}))

		repo, ok, err := m.Repository(ctx, "people")
		require.NoError(t, err)
		require.True(t, ok)
		assert.False(t, repo.Initialized())

		again, _, err := m.Repository(ctx, "people")
		require.NoError(t, err)
		assert.Same(t, repo, again, "handles are cached by the manager")

		ids, err := m.RepositoryIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"people"}, ids)
	})

	t.Run("AddRepositoryConfig rejects invalid config", func(t *testing.T) {
		m := newLocalManager(t, t.TempDir())

		err := m.AddRepositoryConfig(ctx, &models.RepositoryConfig{ID: "bad/id", Backend: models.BackendMemory})
		assert.ErrorIs(t, err, shared.ErrInvalidParameter)
	})

	t.Run("AddRepositoryConfig on an open repository", func(t *testing.T) {
		m := newLocalManager(t, t.TempDir())
		cfg := &models.RepositoryConfig{ID: "people", Backend: models.BackendMemory}

		require.NoError(t, m.AddRepositoryConfig(ctx, cfg))
		_, _, err := m.Repository(ctx, "people")
		require.NoError(t, err)

		assert.NoError(t, m.AddRepositoryConfig(ctx, cfg.WithID("people")), "same configuration is accepted")

		changed := cfg.WithID("people")
		changed.Title = "People"
		assert.ErrorIs(t, m.AddRepositoryConfig(ctx, changed), shared.ErrInvalidUsage)
	})

	t.Run("configs survive restart", func(t *testing.T) {
		root := t.TempDir()

		m := NewLocalManager(root, Options{})
		require.NoError(t, m.Initialize(ctx))
		cfg := &models.RepositoryConfig{ID: "catalog", Title: "Catalog", Backend: models.BackendNative, Indexes: []string{"posc"}}
		require.NoError(t, m.AddRepositoryConfig(ctx, cfg))

		repo, _, err := m.Repository(ctx, "catalog")
		require.NoError(t, err)
		require.NoError(t, repo.Initialize(ctx))
		require.NoError(t, repo.Add(ctx, sampleStatements()...))
		require.NoError(t, m.Shutdown())

		reopened := newLocalManager(t, root)
		repo, ok, err := reopened.Repository(ctx, "catalog")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, cfg, repo.(*LocalRepository).Config())

		require.NoError(t, repo.Initialize(ctx))
		size, err := repo.Size(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), size, "native repositories keep their statements")
	})

	t.Run("Shutdown closes repositories", func(t *testing.T) {
		m := NewLocalManager(t.TempDir(), Options{})
		require.NoError(t, m.Initialize(ctx))
		require.NoError(t, m.AddRepositoryConfig(ctx, &models.RepositoryConfig{ID: "tmp", Backend: models.BackendMemory}))

		repo, _, err := m.Repository(ctx, "tmp")
		require.NoError(t, err)
		require.NoError(t, repo.Initialize(ctx))

		require.NoError(t, m.Shutdown())
		assert.False(t, repo.Initialized())

		_, _, err = m.Repository(ctx, "tmp")
		assert.ErrorIs(t, err, shared.ErrInvalidUsage)
	})
}

func TestLocalRepository(t *testing.T) {
	ctx := context.Background()

	open := func(t *testing.T) Repository {
		m := newLocalManager(t, t.TempDir())
		require.NoError(t, m.AddRepositoryConfig(ctx, &models.RepositoryConfig{ID: "mem", Backend: models.BackendMemory}))
		repo, _, err := m.Repository(ctx, "mem")
		require.NoError(t, err)
		return repo
	}

	t.Run("requires initialization", func(t *testing.T) {
		repo := open(t)

		_, err := repo.Size(ctx)
		assert.ErrorIs(t, err, shared.ErrInvalidUsage)
		assert.ErrorIs(t, repo.Add(ctx, sampleStatements()...), shared.ErrInvalidUsage)
	})

	t.Run("Initialize is idempotent", func(t *testing.T) {
		repo := open(t)
		require.NoError(t, repo.Initialize(ctx))
		require.NoError(t, repo.Add(ctx, sampleStatements()...))
		require.NoError(t, repo.Initialize(ctx))

		size, err := repo.Size(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), size)
	})

	t.Run("Statements & Remove", func(t *testing.T) {
		repo := open(t)
		require.NoError(t, repo.Initialize(ctx))
		require.NoError(t, repo.Add(ctx, sampleStatements()...))

		got, err := repo.Statements(ctx, graph.Any().WithPredicate(graph.NewIRI(ex+"name")))
		require.NoError(t, err)
		assert.Equal(t, sampleStatements()[:1], got)

		require.NoError(t, repo.Remove(ctx, graph.Any().WithPredicate(graph.NewIRI(ex+"knows"))))
		size, err := repo.Size(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), size)
	})

	t.Run("invalid input is invalid usage", func(t *testing.T) {
		repo := open(t)
		require.NoError(t, repo.Initialize(ctx))

		_, err := repo.Statements(ctx, graph.Any().WithSubject(graph.NewLiteral("x")))
		assert.ErrorIs(t, err, shared.ErrInvalidUsage)

		bad := graph.NewStatement(graph.NewIRI(ex+"a"), graph.NewBlank("p"), graph.NewLiteral("x"))
		assert.ErrorIs(t, repo.Add(ctx, bad), shared.ErrInvalidUsage)
	})

	t.Run("Namespaces", func(t *testing.T) {
		repo := open(t).(*LocalRepository)
		require.NoError(t, repo.Initialize(ctx))
		require.NoError(t, repo.SetNamespace(ctx, "ex", ex))

		ns, err := repo.Namespaces(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"ex": ex}, ns)
	})

	t.Run("memory repositories start empty after restart", func(t *testing.T) {
		repo := open(t)
		require.NoError(t, repo.Initialize(ctx))
		require.NoError(t, repo.Add(ctx, sampleStatements()...))
		require.NoError(t, repo.Shutdown())

		require.NoError(t, repo.Initialize(ctx))
		size, err := repo.Size(ctx)
		require.NoError(t, err)
		assert.Zero(t, size)
	})
}
