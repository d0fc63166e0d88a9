package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmmunozr/semdata/internal/graph"
	"github.com/jmmunozr/semdata/internal/models"
	"github.com/jmmunozr/semdata/internal/shared"
	"github.com/jmmunozr/semdata/internal/store"
)

// fakeManager records calls and hands out fakeRepository values.
type fakeManager struct {
	location string
	remote   bool
	creds    models.Credentials
	initErr  error

	mu       sync.Mutex
	configs  map[string]*models.RepositoryConfig
	repos    map[string]*fakeRepository
	shutdown int
}

func (m *fakeManager) Location() string { return m.location }
func (m *fakeManager) Remote() bool     { return m.remote }

func (m *fakeManager) Initialize(ctx context.Context) error { return m.initErr }

func (m *fakeManager) Repository(ctx context.Context, id string) (store.Repository, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if repo, ok := m.repos[id]; ok {
		return repo, true, nil
	}
	if _, ok := m.configs[id]; !ok {
		return nil, false, nil
	}
	repo := &fakeRepository{id: id}
	m.repos[id] = repo
	return repo, true, nil
}

func (m *fakeManager) RepositoryIDs(ctx context.Context) ([]string, error) { return nil, nil }

func (m *fakeManager) AddRepositoryConfig(ctx context.Context, cfg *models.RepositoryConfig) error {
	if m.remote {
		return errors.New("remote creation attempted")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[cfg.ID] = cfg
	return nil
}

func (m *fakeManager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdown++
	return nil
}

type fakeRepository struct {
	id          string
	initialized bool
}

func (r *fakeRepository) ID() string                           { return r.id }
func (r *fakeRepository) Initialize(ctx context.Context) error { r.initialized = true; return nil }
func (r *fakeRepository) Initialized() bool                    { return r.initialized }
func (r *fakeRepository) Size(ctx context.Context) (int64, error) {
	return 0, nil
}
func (r *fakeRepository) Statements(ctx context.Context, p graph.Pattern) ([]graph.Statement, error) {
	return nil, nil
}
func (r *fakeRepository) Add(ctx context.Context, statements ...graph.Statement) error { return nil }
func (r *fakeRepository) Remove(ctx context.Context, p graph.Pattern) error            { return nil }
func (r *fakeRepository) Shutdown() error                                              { return nil }

// fakeFactory counts constructions and lets tests seed existing remote repositories.
type fakeFactory struct {
	mu       sync.Mutex
	created  []*fakeManager
	initErr  error
	existing []string
}

func (f *fakeFactory) build(remote bool) ManagerFactory {
	return func(location string, opts store.Options) store.Manager {
		f.mu.Lock()
		defer f.mu.Unlock()

		m := &fakeManager{
			location: location,
			remote:   remote,
			creds:    opts.Credentials,
			initErr:  f.initErr,
			configs:  make(map[string]*models.RepositoryConfig),
			repos:    make(map[string]*fakeRepository),
		}
		for _, id := range f.existing {
			m.configs[id] = &models.RepositoryConfig{ID: id, Backend: models.BackendMemory}
		}
		f.created = append(f.created, m)
		return m
	}
}

func newFakeRegistry(f *fakeFactory) *Registry {
	return NewRegistry(RegistryOpts{Local: f.build(false), Remote: f.build(true)})
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the same manager per location", func(t *testing.T) {
		f := &fakeFactory{}
		reg := newFakeRegistry(f)
		loc := t.TempDir()

		first, err := reg.Manager(ctx, loc, models.Credentials{})
		require.NoError(t, err)
		second, err := reg.Manager(ctx, loc, models.Credentials{Username: "ignored"})
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Len(t, f.created, 1)
		assert.Empty(t, first.(*fakeManager).creds.Username, "credentials of later calls are ignored")
	})

	t.Run("canonical spellings share a manager", func(t *testing.T) {
		f := &fakeFactory{}
		reg := newFakeRegistry(f)
		loc := t.TempDir()

		a, err := reg.Manager(ctx, loc, models.Credentials{})
		require.NoError(t, err)
		b, err := reg.Manager(ctx, loc+string(filepath.Separator)+".", models.Credentials{})
		require.NoError(t, err)
		assert.Same(t, a, b)

		r1, err := reg.Manager(ctx, "HTTP://Example.org:8080/rdf4j-server/", models.Credentials{})
		require.NoError(t, err)
		r2, err := reg.Manager(ctx, "http://example.org:8080/rdf4j-server", models.Credentials{})
		require.NoError(t, err)
		assert.Same(t, r1, r2)
		assert.True(t, r1.Remote())

		assert.Equal(t, []string{loc, "http://example.org:8080/rdf4j-server"}, reg.Locations())
	})

	t.Run("remote managers receive credentials", func(t *testing.T) {
		f := &fakeFactory{}
		reg := newFakeRegistry(f)

		m, err := reg.Manager(ctx, "https://example.org/rdf4j", models.Credentials{Username: "u", Password: "p"})
		require.NoError(t, err)
		assert.Equal(t, models.Credentials{Username: "u", Password: "p"}, m.(*fakeManager).creds)
	})

	t.Run("Shutdown evicts", func(t *testing.T) {
		f := &fakeFactory{}
		reg := newFakeRegistry(f)
		loc := t.TempDir()

		first, err := reg.Manager(ctx, loc, models.Credentials{})
		require.NoError(t, err)

		require.NoError(t, reg.Shutdown(loc))
		assert.Equal(t, 1, first.(*fakeManager).shutdown)
		assert.Empty(t, reg.Locations())

		second, err := reg.Manager(ctx, loc, models.Credentials{})
		require.NoError(t, err)
		assert.NotSame(t, first, second)
	})

	t.Run("Shutdown of unknown location is a no-op", func(t *testing.T) {
		reg := newFakeRegistry(&fakeFactory{})
		assert.NoError(t, reg.Shutdown(t.TempDir()))
	})

	t.Run("ShutdownAll is idempotent", func(t *testing.T) {
		f := &fakeFactory{}
		reg := newFakeRegistry(f)

		_, err := reg.Manager(ctx, t.TempDir(), models.Credentials{})
		require.NoError(t, err)
		_, err = reg.Manager(ctx, "http://example.org", models.Credentials{})
		require.NoError(t, err)

		require.NoError(t, reg.ShutdownAll())
		require.NoError(t, reg.ShutdownAll())
		assert.Empty(t, reg.Locations())
		for _, m := range f.created {
			assert.Equal(t, 1, m.shutdown)
		}
	})

	t.Run("initialization failure registers nothing", func(t *testing.T) {
		f := &fakeFactory{initErr: errors.New("disk on fire")}
		reg := newFakeRegistry(f)

		m, err := reg.Manager(ctx, t.TempDir(), models.Credentials{})
		assert.Nil(t, m)
		assert.ErrorIs(t, err, shared.ErrResourceFailure)
		assert.ErrorContains(t, err, "disk on fire")
		assert.Empty(t, reg.Locations())
	})

	t.Run("empty location", func(t *testing.T) {
		_, err := newFakeRegistry(&fakeFactory{}).Manager(ctx, " ", models.Credentials{})
		assert.ErrorIs(t, err, shared.ErrInvalidParameter)
	})

	t.Run("concurrent callers get one manager", func(t *testing.T) {
		f := &fakeFactory{}
		reg := newFakeRegistry(f)
		loc := t.TempDir()

		var wg sync.WaitGroup
		managers := make([]store.Manager, 16)
		for i := range managers {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				m, err := reg.Manager(ctx, loc, models.Credentials{})
				assert.NoError(t, err)
				managers[i] = m
			}(i)
		}
		wg.Wait()

		assert.Len(t, f.created, 1)
		for _, m := range managers {
			assert.Same(t, managers[0], m)
		}
	})
}

func TestParseRepositoryURL(t *testing.T) {
	tc := []struct {
		url      string
		location string
		id       string
		wantErr  bool
	}{
		{url: "base/repositories/myRepo", location: "base", id: "myRepo"},
		{url: "http://localhost:8080/rdf4j-server/repositories/people", location: "http://localhost:8080/rdf4j-server", id: "people"},
		{url: "base/myRepo", wantErr: true},
		{url: "base/repositories/a/repositories/b", wantErr: true},
		{url: "/repositories/myRepo", wantErr: true},
		{url: "base/repositories/", wantErr: true},
		{url: "", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.url, func(t *testing.T) {
			location, id, err := ParseRepositoryURL(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, shared.ErrInvalidParameter)
				assert.ErrorContains(t, err, "<base-url>/repositories/<repo-id>")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.location, location)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestCanonicalize(t *testing.T) {
	abs, err := filepath.Abs("data")
	require.NoError(t, err)

	tc := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "data", want: abs},
		{in: "./data/", want: abs},
		{in: "http://Example.ORG/rdf4j/", want: "http://example.org/rdf4j"},
		{in: "HTTPS://example.org", want: "https://example.org"},
		{in: "http://", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Canonicalize(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, shared.ErrInvalidParameter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.True(t, IsRemote("HTTPS://example.org"))
	assert.False(t, IsRemote("httpdocs/store"))
}

func TestDefaultConfig(t *testing.T) {
	cfg, err := DefaultConfig()
	require.NoError(t, err)

	assert.Equal(t, "default", cfg.ID)
	assert.Equal(t, "Memory store", cfg.Title)
	assert.Equal(t, models.BackendMemory, cfg.Backend)
	assert.False(t, cfg.Persist)

	t.Run("two repository subjects", func(t *testing.T) {
		doc := append([]byte{}, defaultConfigTurtle...)
		doc = append(doc, []byte(`
_:other a rep:Repository ; rep:repositoryID "other" .
`)...)
		_, err := ParseConfig(doc, graph.Turtle)
		assert.ErrorIs(t, err, shared.ErrResourceFailure)
	})

	t.Run("no repository subject", func(t *testing.T) {
		_, err := ParseConfig([]byte(`<http://example.org/a> <http://example.org/b> "c" .`), graph.NTriples)
		assert.ErrorIs(t, err, shared.ErrResourceFailure)
	})

	t.Run("malformed document", func(t *testing.T) {
		_, err := ParseConfig([]byte(`@prefix broken`), graph.Turtle)
		assert.ErrorIs(t, err, shared.ErrResourceFailure)
	})
}

func TestProvisioner(t *testing.T) {
	ctx := context.Background()

	t.Run("creates with default config", func(t *testing.T) {
		reg := newFakeRegistry(&fakeFactory{})
		p := NewProvisioner(reg, ProvisionerOpts{})

		repo, err := p.GetRepository(ctx, t.TempDir(), "", OpenOpts{})
		require.NoError(t, err)
		assert.Equal(t, "default", repo.ID())
		assert.True(t, repo.Initialized())
	})

	t.Run("explicit id overrides config id", func(t *testing.T) {
		reg := newFakeRegistry(&fakeFactory{})
		p := NewProvisioner(reg, ProvisionerOpts{})
		cfg := &models.RepositoryConfig{ID: "from-config", Backend: models.BackendNative}

		repo, err := p.GetRepository(ctx, t.TempDir(), "explicit", OpenOpts{Config: cfg})
		require.NoError(t, err)
		assert.Equal(t, "explicit", repo.ID())
		assert.Equal(t, "from-config", cfg.ID, "caller config is not modified")
	})

	t.Run("explicit id overrides default config id", func(t *testing.T) {
		p := NewProvisioner(newFakeRegistry(&fakeFactory{}), ProvisionerOpts{})

		repo, err := p.GetRepository(ctx, t.TempDir(), "people", OpenOpts{})
		require.NoError(t, err)
		assert.Equal(t, "people", repo.ID())
	})

	t.Run("existing repository is reused and initialized", func(t *testing.T) {
		f := &fakeFactory{existing: []string{"people"}}
		p := NewProvisioner(newFakeRegistry(f), ProvisionerOpts{})
		loc := t.TempDir()

		first, err := p.GetRepository(ctx, loc, "people", OpenOpts{})
		require.NoError(t, err)
		second, err := p.GetRepository(ctx, loc, "people", OpenOpts{})
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.True(t, first.Initialized())
		assert.Len(t, f.created, 1)
		assert.Len(t, f.created[0].configs, 1, "no new config was registered")
	})

	t.Run("remote creation is unsupported", func(t *testing.T) {
		f := &fakeFactory{}
		p := NewProvisioner(newFakeRegistry(f), ProvisionerOpts{})
		cfg := &models.RepositoryConfig{ID: "id", Backend: models.BackendMemory}

		_, err := p.GetRepositoryURL(ctx, "http://host/repositories/id", OpenOpts{Config: cfg})
		assert.ErrorIs(t, err, shared.ErrUnsupportedOperation)
		assert.Empty(t, f.created[0].configs)
	})

	t.Run("remote repository that exists opens", func(t *testing.T) {
		f := &fakeFactory{existing: []string{"id"}}
		p := NewProvisioner(newFakeRegistry(f), ProvisionerOpts{})

		repo, err := p.GetRepositoryURL(ctx, "http://host/repositories/id", OpenOpts{Username: "u", Password: "p"})
		require.NoError(t, err)
		assert.Equal(t, "id", repo.ID())
		assert.Equal(t, "u", f.created[0].creds.Username)
	})

	t.Run("invalid composite URL", func(t *testing.T) {
		f := &fakeFactory{}
		p := NewProvisioner(newFakeRegistry(f), ProvisionerOpts{})

		_, err := p.GetRepositoryURL(ctx, "base/myRepo", OpenOpts{})
		assert.ErrorIs(t, err, shared.ErrInvalidParameter)
		assert.Empty(t, f.created, "no manager is created for a malformed URL")
	})

	t.Run("default config failure", func(t *testing.T) {
		p := NewProvisioner(newFakeRegistry(&fakeFactory{}), ProvisionerOpts{
			DefaultConfig: func() (*models.RepositoryConfig, error) { return nil, fmt.Errorf("resource missing") },
		})

		_, err := p.GetRepository(ctx, t.TempDir(), "people", OpenOpts{})
		assert.ErrorIs(t, err, shared.ErrResourceFailure)
	})

	t.Run("manager failure propagates", func(t *testing.T) {
		p := NewProvisioner(newFakeRegistry(&fakeFactory{initErr: errors.New("offline")}), ProvisionerOpts{})

		_, err := p.GetRepository(ctx, "http://host", "id", OpenOpts{})
		assert.ErrorIs(t, err, shared.ErrResourceFailure)
	})
}

func TestProvisionerLocalStore(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(RegistryOpts{})
	t.Cleanup(func() { reg.ShutdownAll() })
	p := NewProvisioner(reg, ProvisionerOpts{})
	root := t.TempDir()

	repo, err := p.GetRepositoryURL(ctx, root+"/repositories/people", OpenOpts{})
	require.NoError(t, err)

	alice := graph.NewIRI("http://example.org/alice")
	require.NoError(t, repo.Add(ctx, graph.NewStatement(alice, graph.NewIRI(graph.RDFSLabel), graph.NewLiteral("Alice"))))

	again, err := p.GetRepository(ctx, root, "people", OpenOpts{})
	require.NoError(t, err)
	assert.Same(t, repo, again)

	size, err := again.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)

	require.NoError(t, reg.Shutdown(root))
	assert.False(t, repo.Initialized())
}

func TestProvisionerConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(RegistryOpts{})
	t.Cleanup(func() { reg.ShutdownAll() })
	p := NewProvisioner(reg, ProvisionerOpts{})
	root := t.TempDir()

	for round := range 20 {
		id := fmt.Sprintf("shared-%d", round)

		var wg sync.WaitGroup
		repos := make([]store.Repository, 8)
		errs := make([]error, len(repos))
		for i := range repos {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				repos[i], errs[i] = p.GetRepository(ctx, root, id, OpenOpts{})
			}(i)
		}
		wg.Wait()

		for i := range repos {
			require.NoError(t, errs[i])
			assert.Same(t, repos[0], repos[i])
		}
	}
}
