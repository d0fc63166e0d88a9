package graph

import (
	"fmt"
	"strings"
)

// TermKind identifies the kind of an RDF term. The numeric values are persisted by the statement store.
type TermKind int

const (
	KindIRI TermKind = iota + 1
	KindBlank
	KindLiteral
)

func (k TermKind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBlank:
		return "blank"
	case KindLiteral:
		return "literal"
	default:
		return "invalid"
	}
}

// Term is an RDF term: an IRI, a blank node or a literal.
//
// Literals always carry a datatype; plain strings use xsd:string and language-tagged strings rdf:langString.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype string
	Lang     string
}

// NewIRI returns an IRI term.
func NewIRI(iri string) Term {
	return Term{Kind: KindIRI, Value: iri}
}

// NewBlank returns a blank node term. A leading "_:" is stripped from label.
func NewBlank(label string) Term {
	return Term{Kind: KindBlank, Value: strings.TrimPrefix(label, "_:")}
}

// NewLiteral returns an xsd:string literal.
func NewLiteral(value string) Term {
	return Term{Kind: KindLiteral, Value: value, Datatype: XSDString}
}

// NewTypedLiteral returns a literal with the given datatype IRI. An empty datatype means xsd:string.
func NewTypedLiteral(value, datatype string) Term {
	if datatype == "" {
		datatype = XSDString
	}
	return Term{Kind: KindLiteral, Value: value, Datatype: datatype}
}

// NewLangLiteral returns a language-tagged literal.
func NewLangLiteral(value, lang string) Term {
	return Term{Kind: KindLiteral, Value: value, Datatype: RDFLangString, Lang: strings.ToLower(lang)}
}

// IsZero reports whether t is the zero Term.
func (t Term) IsZero() bool {
	return t.Kind == 0
}

// IsIRI reports whether t is an IRI.
func (t Term) IsIRI() bool { return t.Kind == KindIRI }

// IsBlank reports whether t is a blank node.
func (t Term) IsBlank() bool { return t.Kind == KindBlank }

// IsLiteral reports whether t is a literal.
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

// IsResource reports whether t can be the subject of a statement.
func (t Term) IsResource() bool { return t.Kind == KindIRI || t.Kind == KindBlank }

// String returns the N-Triples form of t.
func (t Term) String() string {
	return t.NTriples()
}

// NTriples encodes t in N-Triples syntax.
func (t Term) NTriples() string {
	switch t.Kind {
	case KindIRI:
		return "<" + escapeIRI(t.Value) + ">"
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		lit := `"` + escapeLiteral(t.Value) + `"`
		switch {
		case t.Lang != "":
			return lit + "@" + t.Lang
		case t.Datatype == "" || t.Datatype == XSDString:
			return lit
		default:
			return lit + "^^<" + escapeIRI(t.Datatype) + ">"
		}
	default:
		return ""
	}
}

// Validate reports whether t is a well-formed term.
func (t Term) Validate() error {
	switch t.Kind {
	case KindIRI:
		if t.Value == "" {
			return fmt.Errorf("empty IRI")
		}
	case KindBlank:
		if t.Value == "" {
			return fmt.Errorf("empty blank node label")
		}
	case KindLiteral:
		if t.Lang != "" && t.Datatype != RDFLangString {
			return fmt.Errorf("language-tagged literal must use %s", RDFLangString)
		}
	default:
		return fmt.Errorf("invalid term kind %d", t.Kind)
	}
	return nil
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func escapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}

var iriEscaper = strings.NewReplacer(
	">", `\u003E`,
	"<", `\u003C`,
	" ", `\u0020`,
	`"`, `\u0022`,
)

func escapeIRI(s string) string {
	return iriEscaper.Replace(s)
}
