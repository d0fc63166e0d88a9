package graph

import (
	"fmt"
)

// Graph is an in-memory, ordered collection of statements with lookup helpers.
type Graph struct {
	statements []Statement
}

// New creates a Graph holding statements.
func New(statements ...Statement) *Graph {
	g := &Graph{}
	g.Add(statements...)
	return g
}

// Add appends statements, skipping exact duplicates.
func (g *Graph) Add(statements ...Statement) {
	for _, s := range statements {
		if !g.Contains(s) {
			g.statements = append(g.statements, s)
		}
	}
}

// Contains reports whether s is in g.
func (g *Graph) Contains(s Statement) bool {
	for _, existing := range g.statements {
		if existing == s {
			return true
		}
	}
	return false
}

// Len returns the number of statements.
func (g *Graph) Len() int {
	return len(g.statements)
}

// Statements returns a copy of the statements in insertion order.
func (g *Graph) Statements() []Statement {
	out := make([]Statement, len(g.statements))
	copy(out, g.statements)
	return out
}

// Match returns statements satisfying p.
func (g *Graph) Match(p Pattern) []Statement {
	var out []Statement
	for _, s := range g.statements {
		if p.Matches(s) {
			out = append(out, s)
		}
	}
	return out
}

// Subjects returns the distinct subjects that have predicate with object.
func (g *Graph) Subjects(predicate, object Term) []Term {
	var out []Term
	seen := make(map[Term]bool)
	for _, s := range g.Match(Any().WithPredicate(predicate).WithObject(object)) {
		if !seen[s.Subject] {
			seen[s.Subject] = true
			out = append(out, s.Subject)
		}
	}
	return out
}

// UniqueSubject returns the single subject with predicate and object.
// It fails when no subject or more than one subject matches.
func (g *Graph) UniqueSubject(predicate, object Term) (Term, error) {
	subjects := g.Subjects(predicate, object)
	switch len(subjects) {
	case 0:
		return Term{}, fmt.Errorf("no subject found with %s %s", predicate, object)
	case 1:
		return subjects[0], nil
	default:
		return Term{}, fmt.Errorf("expected a unique subject with %s %s, found %d", predicate, object, len(subjects))
	}
}

// Objects returns every object of subject and predicate.
func (g *Graph) Objects(subject, predicate Term) []Term {
	var out []Term
	for _, s := range g.Match(Any().WithSubject(subject).WithPredicate(predicate)) {
		out = append(out, s.Object)
	}
	return out
}

// Object returns the first object of subject and predicate.
func (g *Graph) Object(subject, predicate Term) (Term, bool) {
	objects := g.Objects(subject, predicate)
	if len(objects) == 0 {
		return Term{}, false
	}
	return objects[0], true
}
