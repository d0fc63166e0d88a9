package graph

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/knakk/rdf"
)

// Format is an RDF serialization this package can decode.
type Format string

const (
	Turtle   Format = "turtle"
	NTriples Format = "ntriples"
	// NQuads carries the named graph of each statement in [Statement.Context].
	NQuads Format = "nquads"
)

// MediaType returns the HTTP media type of f.
func (f Format) MediaType() string {
	switch f {
	case NTriples:
		return "application/n-triples"
	case NQuads:
		return "application/n-quads"
	default:
		return "text/turtle"
	}
}

// FormatForPath guesses a Format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttl", ".turtle":
		return Turtle, nil
	case ".nt", ".ntriples":
		return NTriples, nil
	case ".nq", ".nquads":
		return NQuads, nil
	default:
		return "", fmt.Errorf("unsupported RDF file extension %q", filepath.Ext(path))
	}
}

func (f Format) decoderFormat() (rdf.Format, error) {
	switch f {
	case Turtle:
		return rdf.Turtle, nil
	case NTriples:
		return rdf.NTriples, nil
	case NQuads:
		return rdf.NQuads, nil
	default:
		return 0, fmt.Errorf("unsupported RDF format %q", f)
	}
}

// Decode parses an RDF document into statements in document order.
func Decode(r io.Reader, format Format) ([]Statement, error) {
	rf, err := format.decoderFormat()
	if err != nil {
		return nil, err
	}
	if format == NQuads {
		return decodeQuads(r)
	}

	dec := rdf.NewTripleDecoder(r, rf)

	var out []Statement
	for {
		triple, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", format, err)
		}
		out = append(out, Statement{
			Subject:   fromRDF(triple.Subj),
			Predicate: fromRDF(triple.Pred),
			Object:    fromRDF(triple.Obj),
		})
	}

	return out, nil
}

func decodeQuads(r io.Reader) ([]Statement, error) {
	dec := rdf.NewQuadDecoder(r, rdf.NQuads)

	var out []Statement
	for {
		quad, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", NQuads, err)
		}

		s := Statement{
			Subject:   fromRDF(quad.Subj),
			Predicate: fromRDF(quad.Pred),
			Object:    fromRDF(quad.Obj),
		}
		if quad.Ctx != nil && quad.Ctx.Type() == rdf.TermIRI {
			s.Context = quad.Ctx.String()
		}
		out = append(out, s)
	}

	return out, nil
}

// DecodeGraph parses an RDF document into a [Graph].
func DecodeGraph(r io.Reader, format Format) (*Graph, error) {
	statements, err := Decode(r, format)
	if err != nil {
		return nil, err
	}
	return New(statements...), nil
}

func fromRDF(t rdf.Term) Term {
	switch t.Type() {
	case rdf.TermIRI:
		return NewIRI(t.String())
	case rdf.TermBlank:
		return NewBlank(t.String())
	case rdf.TermLiteral:
		lit, ok := t.(rdf.Literal)
		if !ok {
			return NewLiteral(t.String())
		}
		if lang := lit.Lang(); lang != "" {
			return NewLangLiteral(lit.String(), lang)
		}
		return NewTypedLiteral(lit.String(), lit.DataType.String())
	default:
		return Term{}
	}
}

// ParseTerm reads a single term in N-Triples syntax, such as the subj, pred and obj parameters of the REST protocol.
func ParseTerm(s string) (Term, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Term{}, fmt.Errorf("empty term")
	}

	const filler = "<urn:x:filler>"

	line := filler + " " + filler + " " + s + " .\n"
	statements, err := Decode(strings.NewReader(line), NTriples)
	if err != nil {
		return Term{}, fmt.Errorf("invalid term %q: %w", s, err)
	}
	if len(statements) != 1 {
		return Term{}, fmt.Errorf("invalid term %q", s)
	}
	return statements[0].Object, nil
}
