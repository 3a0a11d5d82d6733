package store

import (
	"fmt"

	"github.com/aleksaelezovic/tristore/internal/encoding"
	"github.com/aleksaelezovic/tristore/pkg/rdf"
)

// Ask returns true if any statement matches the pattern. A nil node is a
// wildcard.
func (m *Model) Ask(subject, predicate, object, graph rdf.Node) (bool, error) {
	r, err := m.Range(subject, predicate, object, graph)
	if err != nil {
		return false, err
	}
	defer r.Close()

	return !r.Empty(), r.Err()
}

// Count returns the number of statements matching the pattern
func (m *Model) Count(subject, predicate, object, graph rdf.Node) (int, error) {
	if subject == nil && predicate == nil && object == nil && graph == nil {
		return m.size, nil
	}

	r, err := m.Range(subject, predicate, object, graph)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	n := 0
	for r.Next() {
		n++
	}
	return n, r.Err()
}

// Get returns the node that completes the pattern. Exactly one of subject,
// predicate and object must be nil, and the graph may be nil too; or all
// three are given and the graph is nil, in which case the graph is
// returned. With several matches the first in index order wins. With none
// the result is nil.
func (m *Model) Get(subject, predicate, object, graph rdf.Node) (rdf.Node, error) {
	pattern := [4]rdf.Node{subject, predicate, object, graph}

	var field rdf.Field
	switch wildcards(pattern[:3]) {
	case 1:
		for i, n := range pattern[:3] {
			if n == nil {
				field = rdf.Field(i)
			}
		}
	case 0:
		if graph != nil {
			return nil, fmt.Errorf("get with no wildcard: %w", rdf.ErrBadArg)
		}
		field = rdf.FieldGraph
	default:
		return nil, fmt.Errorf("get with %d wildcards: %w", wildcards(pattern[:]), rdf.ErrBadArg)
	}

	st, ok, err := m.GetStatement(subject, predicate, object, graph)
	if err != nil || !ok {
		return nil, err
	}
	return st.Node(field)
}

// GetStatement returns the first statement matching the pattern
func (m *Model) GetStatement(subject, predicate, object, graph rdf.Node) (rdf.Statement, bool, error) {
	r, err := m.Range(subject, predicate, object, graph)
	if err != nil {
		return rdf.Statement{}, false, err
	}
	defer r.Close()

	st, ok := r.Front()
	return st, ok, r.Err()
}

// Range returns the statements matching the pattern, ordered by the index
// that pins the longest prefix of it
func (m *Model) Range(subject, predicate, object, graph rdf.Node) (*Range, error) {
	pattern := [4]rdf.Node{subject, predicate, object, graph}
	if wildcards(pattern[:]) == 4 {
		return m.All(), nil
	}

	table, prefix, err := m.selectIndex(pattern)
	if err != nil {
		return nil, err
	}
	return m.scan(table, prefix, pattern)
}

// All returns every statement, graph-major if the model indexes graphs
func (m *Model) All() *Range {
	table := TableSPO
	if m.flags&IndexGraphs != 0 {
		table = TableGSPO
	}

	r, err := m.scan(table, nil, [4]rdf.Node{})
	if err != nil {
		return &Range{err: err, closed: true}
	}
	return r
}

// Ordered returns every statement in the order of table, or nil if the
// model does not maintain it
func (m *Model) Ordered(table Table) *Range {
	for _, t := range m.tables {
		if t == table {
			r, err := m.scan(table, nil, [4]rdf.Node{})
			if err != nil {
				return &Range{err: err, closed: true}
			}
			return r
		}
	}
	return nil
}

// selectIndex chooses the enabled table whose key order pins the longest
// prefix of the pattern. Ties go to the earlier table, and SPO always
// comes first.
func (m *Model) selectIndex(pattern [4]rdf.Node) (Table, []byte, error) {
	best, bestLen := TableSPO, -1
	for _, table := range m.tables {
		if n := pinnedPrefix(table, pattern); n > bestLen {
			best, bestLen = table, n
		}
	}

	prefix, _, err := m.codec.encodePrefix(best, pattern)
	if err != nil {
		return best, nil, err
	}
	return best, prefix, nil
}

// pinnedPrefix returns how many leading fields of the key order of table
// are given by the pattern
func pinnedPrefix(table Table, pattern [4]rdf.Node) int {
	n := 0
	for _, field := range tableOrders[table] {
		if pattern[field] == nil {
			break
		}
		n++
	}
	return n
}

func wildcards(nodes []rdf.Node) int {
	n := 0
	for _, node := range nodes {
		if node == nil {
			n++
		}
	}
	return n
}

// scan starts a range over the keys of table beginning with prefix
func (m *Model) scan(table Table, prefix []byte, pattern [4]rdf.Node) (*Range, error) {
	txn, err := m.storage.Begin(false)
	if err != nil {
		return nil, err
	}

	var end []byte
	if len(prefix) > 0 {
		end = encoding.PrefixEnd(prefix)
	} else {
		prefix = nil
	}

	it, err := txn.Scan(table, prefix, end)
	if err != nil {
		_ = txn.Rollback()
		return nil, err
	}

	r := &Range{
		model:   m,
		txn:     txn,
		it:      it,
		table:   table,
		pattern: pattern,
	}
	r.advance()
	return r, nil
}
