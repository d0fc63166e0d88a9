// Package graph is the statement model shared by the store managers and the mapping layer.
//
// A [Statement] is a subject, predicate and object [Term] plus an optional named-graph context. [Pattern] selects
// statements with nil fields acting as wildcards; the same pattern type is evaluated in memory by [Graph.Match], in
// SQL by the statement repository and as query parameters by the remote store client.
//
// [Decode] reads Turtle and N-Triples documents. Encoding is limited to N-Triples ([EncodeNTriples]), which is what
// the remote protocol accepts for statement uploads.
package graph
