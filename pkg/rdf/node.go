package rdf

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
)

// NodeType represents the type of an RDF node.
// The numeric values define the canonical order of node types.
type NodeType byte

const (
	NodeTypeLiteral NodeType = iota + 1
	NodeTypeURI
	NodeTypeCURIE
	NodeTypeBlank
	NodeTypeVariable
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeLiteral:
		return "literal"
	case NodeTypeURI:
		return "uri"
	case NodeTypeCURIE:
		return "curie"
	case NodeTypeBlank:
		return "blank"
	case NodeTypeVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// Node is an RDF node: a URI, CURIE, blank node, literal, or variable.
//
// Nodes are immutable values. The concrete types are comparable, so two
// nodes can be compared with == and used as map keys. A nil Node is used
// as a wildcard in patterns and as "none" in results.
type Node interface {
	// Type returns the node type
	Type() NodeType

	// Value returns the lexical text of the node
	Value() string

	// Datatype returns the datatype URI of a typed literal, or nil
	Datatype() Node

	// Language returns the language tag of a literal, or ""
	Language() string

	// Len returns the length of the lexical value in bytes
	Len() int

	// String returns the node in N-Triples-like syntax
	String() string

	node()
}

// URI is an absolute or relative URI reference
type URI struct {
	IRI string
}

func NewURI(iri string) URI {
	return URI{IRI: iri}
}

func (u URI) Type() NodeType { return NodeTypeURI }
func (u URI) Value() string { return u.IRI }
func (u URI) Datatype() Node { return nil }
func (u URI) Language() string { return "" }
func (u URI) Len() int { return len(u.IRI) }
func (u URI) String() string { return "<" + u.IRI + ">" }
func (u URI) node() {}
func (u URI) IsAbsolute() bool { return HasScheme(u.IRI) }

// CURIE is a compact URI of the form prefix:name.
// It is never resolved on construction, only by an Env.
type CURIE struct {
	Text string
}

func NewCURIE(prefix, name string) CURIE {
	return CURIE{Text: prefix + ":" + name}
}

// ParseCURIE creates a CURIE from text of the form prefix:name
func ParseCURIE(text string) (CURIE, error) {
	if !strings.Contains(text, ":") {
		return CURIE{}, fmt.Errorf("missing ':' in CURIE %q: %w", text, ErrBadCurie)
	}
	return CURIE{Text: text}, nil
}

func (c CURIE) Type() NodeType { return NodeTypeCURIE }
func (c CURIE) Value() string { return c.Text }
func (c CURIE) Datatype() Node { return nil }
func (c CURIE) Language() string { return "" }
func (c CURIE) Len() int { return len(c.Text) }
func (c CURIE) String() string { return c.Text }
func (c CURIE) node() {}

// Prefix returns the part before the first colon
func (c CURIE) Prefix() string {
	prefix, _, _ := strings.Cut(c.Text, ":")
	return prefix
}

// Name returns the part after the first colon
func (c CURIE) Name() string {
	_, name, _ := strings.Cut(c.Text, ":")
	return name
}

// Blank is a blank node with a document-local identifier
type Blank struct {
	ID string
}

func NewBlank(id string) Blank {
	return Blank{ID: id}
}

func (b Blank) Type() NodeType { return NodeTypeBlank }
func (b Blank) Value() string { return b.ID }
func (b Blank) Datatype() Node { return nil }
func (b Blank) Language() string { return "" }
func (b Blank) Len() int { return len(b.ID) }
func (b Blank) String() string { return "_:" + b.ID }
func (b Blank) node() {}

// Literal is an RDF literal. At most one of DatatypeIRI and Lang is set.
type Literal struct {
	Lexical     string
	DatatypeIRI string
	Lang        string
}

// NewString creates a plain literal with no datatype or language
func NewString(value string) Literal {
	return Literal{Lexical: value}
}

// NewPlainLiteral creates a literal with an optional language tag
func NewPlainLiteral(value, language string) Literal {
	return Literal{Lexical: value, Lang: language}
}

// NewTypedLiteral creates a literal with a datatype
func NewTypedLiteral(value string, datatype URI) Literal {
	return Literal{Lexical: value, DatatypeIRI: datatype.IRI}
}

func (l Literal) Type() NodeType { return NodeTypeLiteral }
func (l Literal) Value() string { return l.Lexical }

func (l Literal) Datatype() Node {
	if l.DatatypeIRI == "" {
		return nil
	}
	return URI{IRI: l.DatatypeIRI}
}

func (l Literal) Language() string { return l.Lang }
func (l Literal) Len() int { return len(l.Lexical) }
func (l Literal) node() {}

func (l Literal) String() string {
	var sb strings.Builder
	sb.WriteByte('"')
	sb.WriteString(escapeShortString(l.Lexical))
	sb.WriteByte('"')
	if l.Lang != "" {
		sb.WriteByte('@')
		sb.WriteString(l.Lang)
	} else if l.DatatypeIRI != "" {
		sb.WriteString("^^<")
		sb.WriteString(l.DatatypeIRI)
		sb.WriteByte('>')
	}
	return sb.String()
}

func (l Literal) valid() bool {
	return l.DatatypeIRI == "" || l.Lang == ""
}

// Variable is a pattern variable. It has no concrete syntax in RDF documents.
type Variable struct {
	Name string
}

func NewVariable(name string) Variable {
	return Variable{Name: name}
}

func (v Variable) Type() NodeType { return NodeTypeVariable }
func (v Variable) Value() string { return v.Name }
func (v Variable) Datatype() Node { return nil }
func (v Variable) Language() string { return "" }
func (v Variable) Len() int { return len(v.Name) }
func (v Variable) String() string { return "?" + v.Name }
func (v Variable) node() {}

// Equal returns true if a and b are the same node. Two nil nodes are equal.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b
}

// Compare orders nodes by type, value, datatype and language.
// A nil node sorts before every other node.
func Compare(a, b Node) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if a.Type() != b.Type() {
		if a.Type() < b.Type() {
			return -1
		}
		return 1
	}

	if c := strings.Compare(a.Value(), b.Value()); c != 0 {
		return c
	}

	al, aok := a.(Literal)
	bl, bok := b.(Literal)
	if !aok || !bok {
		return 0
	}

	if c := strings.Compare(al.DatatypeIRI, bl.DatatypeIRI); c != 0 {
		return c
	}
	return strings.Compare(al.Lang, bl.Lang)
}

// Hash returns a 64-bit hash of a node that depends on its type and contents
func Hash(n Node) uint64 {
	if n == nil {
		return 0
	}

	h := xxh3.New()
	_, _ = h.Write([]byte{byte(n.Type())})
	_, _ = h.WriteString(n.Value())
	if l, ok := n.(Literal); ok {
		_, _ = h.Write([]byte{0})
		_, _ = h.WriteString(l.DatatypeIRI)
		_, _ = h.Write([]byte{0})
		_, _ = h.WriteString(l.Lang)
	}
	return h.Sum64()
}

// GoString returns the node in constructor form
func GoString(n Node) string {
	switch t := n.(type) {
	case nil:
		return "nil"
	case URI:
		return fmt.Sprintf("rdf.NewURI(%q)", t.IRI)
	case CURIE:
		return fmt.Sprintf("rdf.NewCURIE(%q, %q)", t.Prefix(), t.Name())
	case Blank:
		return fmt.Sprintf("rdf.NewBlank(%q)", t.ID)
	case Literal:
		switch {
		case t.Lang != "":
			return fmt.Sprintf("rdf.NewPlainLiteral(%q, %q)", t.Lexical, t.Lang)
		case t.DatatypeIRI != "":
			return fmt.Sprintf("rdf.NewTypedLiteral(%q, rdf.NewURI(%q))", t.Lexical, t.DatatypeIRI)
		default:
			return fmt.Sprintf("rdf.NewString(%q)", t.Lexical)
		}
	case Variable:
		return fmt.Sprintf("rdf.NewVariable(%q)", t.Name)
	default:
		return fmt.Sprintf("%#v", n)
	}
}

// escapeShortString escapes a string for a single-quoted N-Triples literal
func escapeShortString(s string) string {
	if !strings.ContainsAny(s, "\\\"\n\r\t") {
		return s
	}

	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
