package graph

import (
	"fmt"
	"strings"
)

// Statement is a triple with an optional named-graph context. An empty Context means the default graph.
type Statement struct {
	Subject   Term
	Predicate Term
	Object    Term
	Context   string
}

// NewStatement builds a default-graph statement.
func NewStatement(subject, predicate, object Term) Statement {
	return Statement{Subject: subject, Predicate: predicate, Object: object}
}

// Validate reports whether s is a well-formed RDF statement.
func (s Statement) Validate() error {
	if !s.Subject.IsResource() {
		return fmt.Errorf("subject must be an IRI or blank node, got %s", s.Subject.Kind)
	}
	if !s.Predicate.IsIRI() {
		return fmt.Errorf("predicate must be an IRI, got %s", s.Predicate.Kind)
	}
	for _, t := range []Term{s.Subject, s.Predicate, s.Object} {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// NTriples encodes s as one N-Triples line without the trailing newline. The context is not part of the encoding.
func (s Statement) NTriples() string {
	return s.Subject.NTriples() + " " + s.Predicate.NTriples() + " " + s.Object.NTriples() + " ."
}

// NQuads encodes s as one N-Quads line without the trailing newline. Default-graph statements have no graph label.
func (s Statement) NQuads() string {
	if s.Context == "" {
		return s.NTriples()
	}
	return s.Subject.NTriples() + " " + s.Predicate.NTriples() + " " + s.Object.NTriples() + " " + NewIRI(s.Context).NTriples() + " ."
}

func (s Statement) String() string {
	if s.Context == "" {
		return s.NTriples()
	}
	return fmt.Sprintf("%s [%s]", s.NTriples(), s.Context)
}

// EncodeNTriples renders statements as an N-Triples document.
func EncodeNTriples(statements []Statement) string {
	var b strings.Builder
	for _, s := range statements {
		b.WriteString(s.NTriples())
		b.WriteByte('\n')
	}
	return b.String()
}

// EncodeNQuads renders statements as an N-Quads document.
func EncodeNQuads(statements []Statement) string {
	var b strings.Builder
	for _, s := range statements {
		b.WriteString(s.NQuads())
		b.WriteByte('\n')
	}
	return b.String()
}

// Pattern selects statements. Nil term fields and an empty Context are wildcards.
type Pattern struct {
	Subject   *Term
	Predicate *Term
	Object    *Term
	Context   string
}

// Any returns the pattern matching every statement.
func Any() Pattern {
	return Pattern{}
}

// WithSubject returns a copy of p bound to subject.
func (p Pattern) WithSubject(subject Term) Pattern {
	p.Subject = &subject
	return p
}

// WithPredicate returns a copy of p bound to predicate.
func (p Pattern) WithPredicate(predicate Term) Pattern {
	p.Predicate = &predicate
	return p
}

// WithObject returns a copy of p bound to object.
func (p Pattern) WithObject(object Term) Pattern {
	p.Object = &object
	return p
}

// WithContext returns a copy of p bound to a named graph.
func (p Pattern) WithContext(context string) Pattern {
	p.Context = context
	return p
}

// Matches reports whether s satisfies p.
func (p Pattern) Matches(s Statement) bool {
	if p.Subject != nil && *p.Subject != s.Subject {
		return false
	}
	if p.Predicate != nil && *p.Predicate != s.Predicate {
		return false
	}
	if p.Object != nil && *p.Object != s.Object {
		return false
	}
	if p.Context != "" && p.Context != s.Context {
		return false
	}
	return true
}

// Validate rejects patterns that can never match: a literal subject or a non-IRI predicate.
func (p Pattern) Validate() error {
	if p.Subject != nil && !p.Subject.IsResource() {
		return fmt.Errorf("pattern subject must be an IRI or blank node")
	}
	if p.Predicate != nil && !p.Predicate.IsIRI() {
		return fmt.Errorf("pattern predicate must be an IRI")
	}
	return nil
}
