package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/jmmunozr/semdata/internal/graph"
	"github.com/jmmunozr/semdata/internal/shared"
	"github.com/jmmunozr/semdata/internal/store"
)

// ProtocolVersion is reported by GET /protocol.
const ProtocolVersion = "12"

// DefaultMaxBodyBytes bounds the size of uploaded statement documents.
const DefaultMaxBodyBytes = 32 << 20

// RepositorySource is the part of a store manager the handler serves from.
type RepositorySource interface {
	RepositoryIDs(ctx context.Context) ([]string, error)
	Repository(ctx context.Context, id string) (store.Repository, bool, error)
}

// RepositoryHandler serves the repositories of a [RepositorySource].
type RepositoryHandler struct {
	source       RepositorySource
	logger       *log.Logger
	mux          *http.ServeMux
	maxBodyBytes int64
}

// NewRepositoryHandler creates a handler over source.
func NewRepositoryHandler(source RepositorySource, logger *log.Logger) *RepositoryHandler {
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}

	h := &RepositoryHandler{
		source:       source,
		logger:       shared.WithLogger(logger, "component", "server"),
		mux:          http.NewServeMux(),
		maxBodyBytes: DefaultMaxBodyBytes,
	}

	h.mux.HandleFunc("GET /protocol", h.protocol)
	h.mux.HandleFunc("GET /repositories", h.list)
	h.mux.HandleFunc("GET /repositories/{id}/size", h.size)
	h.mux.HandleFunc("GET /repositories/{id}/statements", h.statements)
	h.mux.HandleFunc("POST /repositories/{id}/statements", h.add)
	h.mux.HandleFunc("DELETE /repositories/{id}/statements", h.remove)
	return h
}

func (h *RepositoryHandler) Routes() []string {
	return []string{
		"GET /protocol",
		"GET /repositories",
		"GET /repositories/{id}/size",
		"/repositories/{id}/statements",
	}
}

func (h *RepositoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *RepositoryHandler) protocol(w http.ResponseWriter, r *http.Request) {
	writeText(w, ProtocolVersion)
}

type binding struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (h *RepositoryHandler) list(w http.ResponseWriter, r *http.Request) {
	ids, err := h.source.RepositoryIDs(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	bindings := make([]map[string]binding, 0, len(ids))
	for _, id := range ids {
		bindings = append(bindings, map[string]binding{
			"uri": {Type: "uri", Value: "/repositories/" + id},
			"id":  {Type: "literal", Value: id},
		})
	}

	doc := map[string]any{
		"head":    map[string]any{"vars": []string{"uri", "id"}},
		"results": map[string]any{"bindings": bindings},
	}

	w.Header().Set("Content-Type", "application/sparql-results+json")
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		h.logger.Error("failed to write repository list", "err", err)
	}
}

func (h *RepositoryHandler) size(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.repository(w, r)
	if !ok {
		return
	}

	n, err := repo.Size(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeText(w, strconv.FormatInt(n, 10))
}

func (h *RepositoryHandler) statements(w http.ResponseWriter, r *http.Request) {
	p, err := patternFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	repo, ok := h.repository(w, r)
	if !ok {
		return
	}

	statements, err := repo.Statements(r.Context(), p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if acceptsNQuads(r) {
		w.Header().Set("Content-Type", graph.NQuads.MediaType())
		w.Write([]byte(graph.EncodeNQuads(statements)))
		return
	}
	w.Header().Set("Content-Type", graph.NTriples.MediaType())
	w.Write([]byte(graph.EncodeNTriples(statements)))
}

func (h *RepositoryHandler) add(w http.ResponseWriter, r *http.Request) {
	const op = "server.add"

	graphName, err := contextFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	format := graph.NTriples
	if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil {
		switch mediaType {
		case graph.Turtle.MediaType():
			format = graph.Turtle
		case graph.NQuads.MediaType():
			format = graph.NQuads
		}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		h.writeError(w, r, shared.Wrap(shared.KindResourceFailure, op, "failed to read request body", err))
		return
	}

	statements, err := graph.Decode(bytes.NewReader(body), format)
	if err != nil {
		h.writeError(w, r, shared.Wrap(shared.KindInvalidUsage, op, "malformed request body", err))
		return
	}
	if format != graph.NQuads || graphName != "" {
		for i := range statements {
			statements[i].Context = graphName
		}
	}

	repo, ok := h.repository(w, r)
	if !ok {
		return
	}

	if err := repo.Add(r.Context(), statements...); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RepositoryHandler) remove(w http.ResponseWriter, r *http.Request) {
	p, err := patternFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	repo, ok := h.repository(w, r)
	if !ok {
		return
	}

	if err := repo.Remove(r.Context(), p); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// repository resolves and initializes the {id} repository, writing the error response itself when that fails.
func (h *RepositoryHandler) repository(w http.ResponseWriter, r *http.Request) (store.Repository, bool) {
	id := r.PathValue("id")

	repo, ok, err := h.source.Repository(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	if !ok {
		http.Error(w, fmt.Sprintf("unknown repository %s", id), http.StatusNotFound)
		return nil, false
	}

	if err := repo.Initialize(r.Context()); err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	return repo, true
}

func (h *RepositoryHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch shared.KindOf(err) {
	case shared.KindInvalidUsage, shared.KindInvalidParameter:
		status = http.StatusBadRequest
	case shared.KindUnsupportedOperation:
		status = http.StatusNotImplemented
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	http.Error(w, err.Error(), status)
}

func patternFromQuery(r *http.Request) (graph.Pattern, error) {
	const op = "server.pattern"

	q := r.URL.Query()
	p := graph.Any()

	for _, name := range []string{"subj", "pred", "obj"} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		term, err := graph.ParseTerm(v)
		if err != nil {
			return graph.Pattern{}, shared.Wrap(shared.KindInvalidUsage, op, "invalid "+name+" parameter", err)
		}

		switch name {
		case "subj":
			p = p.WithSubject(term)
		case "pred":
			p = p.WithPredicate(term)
		case "obj":
			p = p.WithObject(term)
		}
	}

	graphName, err := contextFromQuery(r)
	if err != nil {
		return graph.Pattern{}, err
	}
	return p.WithContext(graphName), nil
}

func contextFromQuery(r *http.Request) (string, error) {
	v := r.URL.Query().Get("context")
	if v == "" {
		return "", nil
	}

	term, err := graph.ParseTerm(v)
	if err != nil || !term.IsIRI() {
		return "", shared.Wrap(shared.KindInvalidUsage, "server.context", "context must be an IRI", err)
	}
	return term.Value, nil
}

// acceptsNQuads reports whether the client listed N-Quads in its Accept header.
func acceptsNQuads(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		if mediaType, _, err := mime.ParseMediaType(part); err == nil && mediaType == graph.NQuads.MediaType() {
			return true
		}
	}
	return false
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(body))
}
