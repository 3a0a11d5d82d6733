package store

import (
	"github.com/aleksaelezovic/tristore/pkg/rdf"
)

// DescribeFlags control how Describe writes a range
type DescribeFlags uint32

const (
	// DescribeNoTypeFirst writes rdf:type statements in index order
	// instead of first for each subject
	DescribeNoTypeFirst DescribeFlags = 1 << iota
)

// nodeStyle is how a node can be written inline
type nodeStyle int

const (
	styleNamed nodeStyle = iota // Written by name
	styleAnonS                  // Blank subject never used as an object
	styleAnonO                  // Blank object used exactly once, as [ ... ]
	styleListS                  // List head never used as an object
	styleListO                  // List head used exactly once, as ( ... )
)

// Describe writes the statements of r to sink in a form suited to pretty
// printing: each subject with its types first, blank nodes referenced once
// inlined after the statement that refers to them, and well-formed lists
// as lists. The sink receives the flags and End events it needs to
// abbreviate.
//
// Blank nodes that are never reached from a written subject, like those
// in a cycle, are written by name after everything else, so every
// statement of r reaches the sink exactly once.
func Describe(r *Range, sink rdf.Sink, flags DescribeFlags) error {
	if r.Empty() {
		return r.Err()
	}

	d := &describer{
		model:   r.model,
		sink:    sink,
		flags:   flags,
		written: make(nodeSet),
	}
	if err := d.writeRange(0, r, nil, flags&DescribeNoTypeFirst != 0); err != nil {
		return err
	}
	return d.writeUnreached()
}

type describer struct {
	model   *Model
	sink    rdf.Sink
	flags   DescribeFlags
	written nodeSet

	// Statements of blank subjects skipped at the top level because they
	// are expected to be written inline
	skipped      map[rdf.Node][]rdf.Statement
	skippedOrder []rdf.Node
}

func (d *describer) writeRange(depth int, r *Range, lastSubject rdf.Node, writeTypes bool) error {
	defer r.Close()

	for r.Next() {
		st := r.Statement()
		if err := d.writeStatement(depth, 0, st, lastSubject, writeTypes); err != nil {
			return err
		}
		lastSubject = st.Subject()
	}
	return r.Err()
}

// writeUnreached writes the skipped blank subjects that were never inlined
func (d *describer) writeUnreached() error {
	var lastSubject rdf.Node
	for _, node := range d.skippedOrder {
		if !d.written.add(node) {
			continue
		}

		for _, st := range d.skipped[node] {
			if err := d.writeNamedStatement(st, lastSubject); err != nil {
				return err
			}
			lastSubject = node
		}
	}
	return nil
}

func (d *describer) skip(st rdf.Statement) {
	if d.skipped == nil {
		d.skipped = make(map[rdf.Node][]rdf.Statement)
	}

	subject := st.Subject()
	if _, ok := d.skipped[subject]; !ok {
		d.skippedOrder = append(d.skippedOrder, subject)
	}
	d.skipped[subject] = append(d.skipped[subject], st)
}

func (d *describer) writeStatement(depth int, flags rdf.StatementFlags, st rdf.Statement, lastSubject rdf.Node, writeTypes bool) error {
	subject, predicate, graph := st.Subject(), st.Predicate(), st.Graph()

	subjectStyle, err := d.style(subject)
	if err != nil {
		return err
	}

	if depth == 0 {
		if subjectStyle == styleAnonO || subjectStyle == styleListO {
			d.skip(st) // Inlined where it is the object
			return nil
		}

		if subjectStyle == styleListS {
			if rdf.Equal(predicate, rdf.RDFFirst) || rdf.Equal(predicate, rdf.RDFRest) {
				return nil // Written by writeList
			}

			if d.written.add(subject) {
				if err := d.writeList(2, flags|rdf.ListS, subject, graph); err != nil {
					return err
				}
			}
		}
	}

	typesFirst := subjectStyle != styleListS && d.flags&DescribeNoTypeFirst == 0
	if typesFirst && !rdf.Equal(subject, lastSubject) {
		if err := d.writeSubjectTypes(depth, subject, graph); err != nil {
			return err
		}
	}

	if subjectStyle != styleListS && !writeTypes && rdf.Equal(predicate, rdf.RDFType) {
		return nil // Already written by writeSubjectTypes
	}

	if subjectStyle == styleAnonS {
		flags |= rdf.EmptyS
	}
	return d.writeObject(depth, flags, st, lastSubject)
}

// writeNamedStatement writes a statement of an unreached blank subject,
// which has no referrer to be inlined into
func (d *describer) writeNamedStatement(st rdf.Statement, lastSubject rdf.Node) error {
	subject := st.Subject()
	if d.flags&DescribeNoTypeFirst == 0 {
		if !rdf.Equal(subject, lastSubject) {
			if err := d.writeSubjectTypes(0, subject, st.Graph()); err != nil {
				return err
			}
		}
		if rdf.Equal(st.Predicate(), rdf.RDFType) {
			return nil
		}
	}
	return d.writeObject(0, 0, st, lastSubject)
}

// writeObject sends a statement and then inlines its object if it can
func (d *describer) writeObject(depth int, flags rdf.StatementFlags, st rdf.Statement, lastSubject rdf.Node) error {
	object := st.Object()

	objectStyle, err := d.style(object)
	if err != nil {
		return err
	}
	if objectStyle != styleNamed && !d.written.add(object) {
		objectStyle = styleNamed // Already written, so refer to it by name
	}

	switch objectStyle {
	case styleAnonO:
		flags |= rdf.AnonO
	case styleListO:
		flags |= rdf.ListO
	}

	if err := d.sink.OnEvent(rdf.StatementEvent(st, flags)); err != nil {
		return err
	}

	switch objectStyle {
	case styleAnonO:
		r, err := d.model.Range(object, nil, nil, nil)
		if err != nil {
			return err
		}
		if err := d.writeRange(depth+1, r, lastSubject, false); err != nil {
			return err
		}
		return d.sink.OnEvent(rdf.EndEvent(object))
	case styleListO:
		return d.writeList(depth+1, 0, object, st.Graph())
	}
	return nil
}

func (d *describer) writeSubjectTypes(depth int, subject, graph rdf.Node) error {
	r, err := d.model.Range(subject, rdf.RDFType, nil, graph)
	if err != nil {
		return err
	}
	return d.writeRange(depth+1, r, subject, true)
}

// writeList writes the rdf:first and rdf:rest statements of a list whose
// shape was checked by isList
func (d *describer) writeList(depth int, flags rdf.StatementFlags, node, graph rdf.Node) error {
	for !rdf.Equal(node, rdf.RDFNil) {
		d.written.add(node)

		first, ok, err := d.model.GetStatement(node, rdf.RDFFirst, nil, graph)
		if err != nil || !ok {
			return err
		}
		if err := d.writeStatement(depth, flags, first, nil, false); err != nil {
			return err
		}

		rest, ok, err := d.model.GetStatement(node, rdf.RDFRest, nil, graph)
		if err != nil || !ok {
			return err
		}
		if err := d.sink.OnEvent(rdf.StatementEvent(rest, 0)); err != nil {
			return err
		}
		node = rest.Object()
		flags = 0
	}
	return nil
}

// style decides how a node can be written
func (d *describer) style(node rdf.Node) (nodeStyle, error) {
	if node == nil || node.Type() != rdf.NodeTypeBlank {
		return styleNamed, nil
	}

	asObject, err := d.model.Count(nil, nil, node, nil)
	if err != nil || asObject > 1 {
		return styleNamed, err
	}

	list, err := d.isList(node)
	if err != nil {
		return styleNamed, err
	}

	switch {
	case list && asObject == 0:
		return styleListS, nil
	case list:
		return styleListO, nil
	case asObject == 0:
		return styleAnonS, nil
	default:
		return styleAnonO, nil
	}
}

// isList returns true if head starts a list that can be written as ( ... )
// without losing statements: it is not the rest of another node, and every
// node up to rdf:nil is a blank node with exactly one rdf:first, one
// rdf:rest, nothing else, and no other reference to it.
func (d *describer) isList(head rdf.Node) (bool, error) {
	if isRest, err := d.model.Ask(nil, rdf.RDFRest, head, nil); err != nil || isRest {
		return false, err
	}

	seen := make(nodeSet)
	for node := head; !rdf.Equal(node, rdf.RDFNil); {
		if node.Type() != rdf.NodeTypeBlank || !seen.add(node) {
			return false, nil
		}

		if n, err := d.model.Count(node, nil, nil, nil); err != nil || n != 2 {
			return false, err
		}
		if n, err := d.model.Count(node, rdf.RDFFirst, nil, nil); err != nil || n != 1 {
			return false, err
		}
		if node != head {
			if n, err := d.model.Count(nil, nil, node, nil); err != nil || n != 1 {
				return false, err
			}
		}

		rest, ok, err := d.model.GetStatement(node, rdf.RDFRest, nil, nil)
		if err != nil || !ok {
			return false, err
		}
		node = rest.Object()
	}
	return true, nil
}

// nodeSet is a set of nodes
type nodeSet map[rdf.Node]struct{}

// add inserts n and returns false if it was already present
func (s nodeSet) add(n rdf.Node) bool {
	if _, ok := s[n]; ok {
		return false
	}
	s[n] = struct{}{}
	return true
}
