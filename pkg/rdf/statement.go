package rdf

import (
	"fmt"
	"strings"
)

// Field is the position of a node in a statement
type Field int

const (
	FieldSubject Field = iota
	FieldPredicate
	FieldObject
	FieldGraph
)

func (f Field) String() string {
	switch f {
	case FieldSubject:
		return "subject"
	case FieldPredicate:
		return "predicate"
	case FieldObject:
		return "object"
	case FieldGraph:
		return "graph"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Statement is a triple or quad with an optional source cursor.
// The cursor does not take part in equality.
type Statement struct {
	nodes  [4]Node
	cursor *Cursor
}

// NewStatement creates a statement. The graph may be nil for a triple.
// The subject must be a URI or blank node, the predicate a URI, and the
// object a URI, blank node or literal.
func NewStatement(subject, predicate, object, graph Node) (Statement, error) {
	if err := checkStatement(subject, predicate, object, graph); err != nil {
		return Statement{}, err
	}
	return Statement{nodes: [4]Node{subject, predicate, object, graph}}, nil
}

// NewStatementAt creates a statement with a source cursor
func NewStatementAt(subject, predicate, object, graph Node, cursor Cursor) (Statement, error) {
	st, err := NewStatement(subject, predicate, object, graph)
	if err != nil {
		return Statement{}, err
	}
	st.cursor = &cursor
	return st, nil
}

// MustStatement is like NewStatement but panics on invalid input
func MustStatement(subject, predicate, object, graph Node) Statement {
	st, err := NewStatement(subject, predicate, object, graph)
	if err != nil {
		panic(err)
	}
	return st
}

// newPatternStatement builds a statement without validation, for
// events that carry CURIEs, relative URIs or variables.
func newPatternStatement(subject, predicate, object, graph Node, cursor *Cursor) Statement {
	return Statement{nodes: [4]Node{subject, predicate, object, graph}, cursor: cursor}
}

func checkStatement(subject, predicate, object, graph Node) error {
	switch subject.(type) {
	case URI, Blank:
	default:
		return fmt.Errorf("invalid subject %v: %w", subject, ErrBadArg)
	}

	if _, ok := predicate.(URI); !ok {
		return fmt.Errorf("invalid predicate %v: %w", predicate, ErrBadArg)
	}

	switch o := object.(type) {
	case URI, Blank:
	case Literal:
		if !o.valid() {
			return fmt.Errorf("literal with both datatype and language: %w", ErrBadArg)
		}
	default:
		return fmt.Errorf("invalid object %v: %w", object, ErrBadArg)
	}

	switch graph.(type) {
	case nil, URI, Blank:
	default:
		return fmt.Errorf("invalid graph %v: %w", graph, ErrBadArg)
	}

	return nil
}

func (s Statement) Subject() Node   { return s.nodes[FieldSubject] }
func (s Statement) Predicate() Node { return s.nodes[FieldPredicate] }
func (s Statement) Object() Node    { return s.nodes[FieldObject] }
func (s Statement) Graph() Node     { return s.nodes[FieldGraph] }

// Cursor returns the source position of the statement, if known
func (s Statement) Cursor() (Cursor, bool) {
	if s.cursor == nil {
		return Cursor{}, false
	}
	return *s.cursor, true
}

// WithCursor returns a copy of the statement with a different cursor
func (s Statement) WithCursor(cursor *Cursor) Statement {
	s.cursor = cursor
	return s
}

// WithGraph returns a copy of the statement in another graph
func (s Statement) WithGraph(graph Node) Statement {
	s.nodes[FieldGraph] = graph
	return s
}

// Node returns the node at a field, failing with ErrOutOfRange for an invalid field
func (s Statement) Node(field Field) (Node, error) {
	if field < FieldSubject || field > FieldGraph {
		return nil, fmt.Errorf("statement %s: %w", field, ErrOutOfRange)
	}
	return s.nodes[field], nil
}

// IsQuad returns true if the statement has a graph
func (s Statement) IsQuad() bool {
	return s.nodes[FieldGraph] != nil
}

// Nodes returns the nodes in field order, omitting an absent graph
func (s Statement) Nodes() []Node {
	if s.IsQuad() {
		return []Node{s.nodes[0], s.nodes[1], s.nodes[2], s.nodes[3]}
	}
	return []Node{s.nodes[0], s.nodes[1], s.nodes[2]}
}

// Quad returns all four fields, with nil for an absent graph
func (s Statement) Quad() [4]Node {
	return s.nodes
}

// Equal compares the nodes of two statements, ignoring cursors
func (s Statement) Equal(other Statement) bool {
	return s.nodes == other.nodes
}

// Matches returns true if every non-nil pattern node equals the
// corresponding field. A nil graph matches any graph, including none.
func (s Statement) Matches(subject, predicate, object, graph Node) bool {
	return matchNode(s.nodes[0], subject) &&
		matchNode(s.nodes[1], predicate) &&
		matchNode(s.nodes[2], object) &&
		matchNode(s.nodes[3], graph)
}

func matchNode(n, pattern Node) bool {
	return pattern == nil || n == pattern
}

// CompareStatements orders statements by subject, predicate, object and graph
func CompareStatements(a, b Statement) int {
	for i := range a.nodes {
		if c := Compare(a.nodes[i], b.nodes[i]); c != 0 {
			return c
		}
	}
	return 0
}

func (s Statement) String() string {
	nodes := s.Nodes()
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, " ")
}

// GoString returns the statement in constructor form
func (s Statement) GoString() string {
	return fmt.Sprintf("rdf.MustStatement(%s, %s, %s, %s)",
		GoString(s.nodes[0]), GoString(s.nodes[1]), GoString(s.nodes[2]), GoString(s.nodes[3]))
}
