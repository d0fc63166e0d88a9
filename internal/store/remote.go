package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/jmmunozr/semdata/internal/graph"
	"github.com/jmmunozr/semdata/internal/models"
	"github.com/jmmunozr/semdata/internal/shared"
)

const (
	mediaSPARQLJSON = "application/sparql-results+json"
	mediaNTriples   = "application/n-triples"
	mediaNQuads     = "application/n-quads"
	mediaText       = "text/plain"
)

// RemoteManager talks to a server implementing the RDF4J REST protocol.
//
// Only existing repositories can be opened: [RemoteManager.AddRepositoryConfig] always fails with
// [shared.KindUnsupportedOperation].
type RemoteManager struct {
	server string
	creds  models.Credentials
	client *http.Client
	logger *log.Logger

	mu       sync.Mutex
	protocol string
	repos    map[string]*RemoteRepository
}

// NewRemoteManager creates a manager for the server at serverURL.
func NewRemoteManager(serverURL string, opts Options) *RemoteManager {
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	return &RemoteManager{
		server: strings.TrimSuffix(serverURL, "/"),
		creds:  opts.Credentials,
		client: client,
		logger: shared.WithLogger(opts.logger(), "location", serverURL),
		repos:  make(map[string]*RemoteRepository),
	}
}

func (m *RemoteManager) Location() string { return m.server }

func (m *RemoteManager) Remote() bool { return true }

// Protocol returns the protocol version reported by the server during initialization.
func (m *RemoteManager) Protocol() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.protocol
}

// Initialize checks the server is reachable by reading its protocol version.
//
// Calls GET /protocol on the server.
func (m *RemoteManager) Initialize(ctx context.Context) error {
	const op = "remote.initialize"

	body, err := m.doRequest(ctx, op, http.MethodGet, "/protocol", nil, nil, "", mediaText)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.protocol = strings.TrimSpace(string(body))
	m.mu.Unlock()

	m.logger.Debug("remote manager initialized", "protocol", m.protocol)
	return nil
}

// RepositoryIDs lists the repositories of the server.
//
// Calls GET /repositories on the server and reads the id binding of the SPARQL JSON results.
func (m *RemoteManager) RepositoryIDs(ctx context.Context) ([]string, error) {
	const op = "remote.repositories"

	body, err := m.doRequest(ctx, op, http.MethodGet, "/repositories", nil, nil, "", mediaSPARQLJSON)
	if err != nil {
		return nil, err
	}

	var results struct {
		Results struct {
			Bindings []map[string]struct {
				Type  string `json:"type"`
				Value string `json:"value"`
			} `json:"bindings"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, shared.Wrap(shared.KindResourceFailure, op, "failed to decode repository list", err)
	}

	ids := make([]string, 0, len(results.Results.Bindings))
	for _, binding := range results.Results.Bindings {
		if id, ok := binding["id"]; ok && id.Value != "" {
			ids = append(ids, id.Value)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// Repository returns a handle for id when the server lists it.
func (m *RemoteManager) Repository(ctx context.Context, id string) (Repository, bool, error) {
	m.mu.Lock()
	if repo, ok := m.repos[id]; ok {
		m.mu.Unlock()
		return repo, true, nil
	}
	m.mu.Unlock()

	ids, err := m.RepositoryIDs(ctx)
	if err != nil {
		return nil, false, err
	}
	if !slices.Contains(ids, id) {
		return nil, false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if repo, ok := m.repos[id]; ok {
		return repo, true, nil
	}
	repo := &RemoteRepository{id: id, manager: m}
	m.repos[id] = repo
	return repo, true, nil
}

// AddRepositoryConfig always fails: repositories cannot be created on a remote server.
func (m *RemoteManager) AddRepositoryConfig(ctx context.Context, cfg *models.RepositoryConfig) error {
	return shared.NewError(shared.KindUnsupportedOperation, "remote.add_config",
		fmt.Sprintf("cannot create repository %s on remote server %s", cfg.ID, m.server))
}

// Shutdown drops every repository handle and closes idle connections.
func (m *RemoteManager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, repo := range m.repos {
		repo.Shutdown()
		delete(m.repos, id)
	}
	m.client.CloseIdleConnections()
	m.logger.Debug("remote manager shut down")
	return nil
}

// doRequest performs a request against the server and returns the response body.
//
// Non-2xx responses become tagged errors: 400 and 422 are [shared.KindInvalidUsage], everything else is a
// [shared.KindResourceFailure].
func (m *RemoteManager) doRequest(ctx context.Context, op, method, endpoint string, query url.Values, body []byte, contentType, accept string) ([]byte, error) {
	apiURL := m.server + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return nil, shared.Wrap(shared.KindInvalidParameter, op, "failed to create request", err)
	}

	if !m.creds.Anonymous() {
		req.SetBasicAuth(m.creds.Username, m.creds.Password)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, shared.Translate(op, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, shared.Wrap(shared.KindResourceFailure, op, "failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("server error (status %d)", resp.StatusCode)
		if detail := strings.TrimSpace(string(respBody)); detail != "" {
			msg += ": " + detail
		}

		kind := shared.KindResourceFailure
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity {
			kind = shared.KindInvalidUsage
		}
		return nil, shared.NewError(kind, op, msg)
	}

	m.logger.Debug("request completed", "method", method, "endpoint", endpoint, "status", resp.StatusCode)
	return respBody, nil
}

// RemoteRepository is a repository on a remote server.
type RemoteRepository struct {
	id      string
	manager *RemoteManager

	mu          sync.RWMutex
	initialized bool
}

func (r *RemoteRepository) ID() string { return r.id }

func (r *RemoteRepository) endpoint(suffix string) string {
	return "/repositories/" + url.PathEscape(r.id) + suffix
}

// Initialize verifies the repository answers a size request.
func (r *RemoteRepository) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return nil
	}
	if _, err := r.size(ctx, "remote.repository.initialize"); err != nil {
		return err
	}
	r.initialized = true
	return nil
}

func (r *RemoteRepository) Initialized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized
}

// Size calls GET /repositories/{id}/size.
func (r *RemoteRepository) Size(ctx context.Context) (int64, error) {
	const op = "remote.repository.size"

	if !r.Initialized() {
		return 0, errNotInitialized(op, r.id)
	}
	return r.size(ctx, op)
}

func (r *RemoteRepository) size(ctx context.Context, op string) (int64, error) {
	body, err := r.manager.doRequest(ctx, op, http.MethodGet, r.endpoint("/size"), nil, nil, "", mediaText)
	if err != nil {
		return 0, err
	}

	n, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return 0, shared.Wrap(shared.KindResourceFailure, op, "invalid size response", err)
	}
	return n, nil
}

// Statements calls GET /repositories/{id}/statements and decodes the N-Quads response, which keeps the named graph
// of each statement. Unlabelled statements matched by a graph-bound pattern belong to that graph.
func (r *RemoteRepository) Statements(ctx context.Context, p graph.Pattern) ([]graph.Statement, error) {
	const op = "remote.repository.statements"

	if err := p.Validate(); err != nil {
		return nil, shared.Wrap(shared.KindInvalidUsage, op, "invalid pattern", err)
	}
	if !r.Initialized() {
		return nil, errNotInitialized(op, r.id)
	}

	body, err := r.manager.doRequest(ctx, op, http.MethodGet, r.endpoint("/statements"), patternQuery(p), nil, "", mediaNQuads)
	if err != nil {
		return nil, err
	}

	statements, err := graph.Decode(bytes.NewReader(body), graph.NQuads)
	if err != nil {
		return nil, shared.Wrap(shared.KindResourceFailure, op, "failed to decode statements", err)
	}

	if p.Context != "" {
		for i := range statements {
			if statements[i].Context == "" {
				statements[i].Context = p.Context
			}
		}
	}
	return statements, nil
}

// Add calls POST /repositories/{id}/statements once per named graph with an N-Triples body.
func (r *RemoteRepository) Add(ctx context.Context, statements ...graph.Statement) error {
	const op = "remote.repository.add"

	for _, s := range statements {
		if err := s.Validate(); err != nil {
			return shared.Wrap(shared.KindInvalidUsage, op, "invalid statement", err)
		}
	}
	if !r.Initialized() {
		return errNotInitialized(op, r.id)
	}

	var (
		order     []string
		byContext = make(map[string][]graph.Statement)
	)
	for _, s := range statements {
		if _, ok := byContext[s.Context]; !ok {
			order = append(order, s.Context)
		}
		byContext[s.Context] = append(byContext[s.Context], s)
	}

	for _, c := range order {
		var query url.Values
		if c != "" {
			query = url.Values{"context": {graph.NewIRI(c).NTriples()}}
		}

		body := []byte(graph.EncodeNTriples(byContext[c]))
		if _, err := r.manager.doRequest(ctx, op, http.MethodPost, r.endpoint("/statements"), query, body, mediaNTriples, ""); err != nil {
			return err
		}
	}
	return nil
}

// Remove calls DELETE /repositories/{id}/statements with the pattern as query parameters.
func (r *RemoteRepository) Remove(ctx context.Context, p graph.Pattern) error {
	const op = "remote.repository.remove"

	if err := p.Validate(); err != nil {
		return shared.Wrap(shared.KindInvalidUsage, op, "invalid pattern", err)
	}
	if !r.Initialized() {
		return errNotInitialized(op, r.id)
	}

	_, err := r.manager.doRequest(ctx, op, http.MethodDelete, r.endpoint("/statements"), patternQuery(p), nil, "", "")
	return err
}

// Shutdown marks the handle unusable. The server keeps the repository.
func (r *RemoteRepository) Shutdown() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.initialized = false
	return nil
}

func patternQuery(p graph.Pattern) url.Values {
	q := url.Values{}
	if p.Subject != nil {
		q.Set("subj", p.Subject.NTriples())
	}
	if p.Predicate != nil {
		q.Set("pred", p.Predicate.NTriples())
	}
	if p.Object != nil {
		q.Set("obj", p.Object.NTriples())
	}
	if p.Context != "" {
		q.Set("context", graph.NewIRI(p.Context).NTriples())
	}
	return q
}
