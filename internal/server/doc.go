// Package server exposes the repositories of a store manager over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [Middleware] wraps handlers in reverse order
// (last added executes first). The [BasicRouter] implementation uses [http.ServeMux] method patterns, so path values
// such as {id} are available to handlers.
//
// # Repository Protocol
//
// [RepositoryHandler] serves the subset of the RDF4J REST protocol that the remote store manager speaks:
//
//	GET    /protocol
//	GET    /repositories
//	GET    /repositories/{id}/size
//	GET    /repositories/{id}/statements
//	POST   /repositories/{id}/statements
//	DELETE /repositories/{id}/statements
//
// Statement patterns travel as subj, pred, obj and context query parameters in N-Triples syntax. Statement bodies are
// N-Triples, Turtle or N-Quads; responses are N-Quads when the client accepts them and N-Triples otherwise. Tagged
// errors map to status codes: invalid usage and invalid parameters are 400, unsupported operations 501, bodies over
// the size limit 413 and everything else 500.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
