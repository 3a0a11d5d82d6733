package store

import (
	"errors"
	"fmt"

	"github.com/aleksaelezovic/tristore/pkg/rdf"
)

// Range iterates over the statements of a model that match a pattern, in
// the key order of one index. The first statement is read when the range
// is created, so Front and Empty never block on storage.
//
// A Range holds a read transaction until it is exhausted or closed. With
// the default storage, mutating the model while a range is open gives
// undefined results; with Badger the range reads a snapshot.
type Range struct {
	model   *Model
	txn     Transaction
	it      Iterator
	table   Table
	pattern [4]rdf.Node

	front    rdf.Statement
	hasFront bool
	current  rdf.Statement
	err      error
	closed   bool
	stopped  bool
}

// Front returns the next statement without consuming it
func (r *Range) Front() (rdf.Statement, bool) {
	return r.front, r.hasFront
}

// Empty returns true if no statements remain
func (r *Range) Empty() bool {
	return !r.hasFront
}

// Next advances to the next statement. Once it returns false it always
// returns false.
func (r *Range) Next() bool {
	if !r.hasFront {
		return false
	}

	r.current = r.front
	r.advance()
	return true
}

// Statement returns the statement Next advanced to
func (r *Range) Statement() rdf.Statement {
	return r.current
}

// Err returns the first error met while iterating
func (r *Range) Err() error {
	return r.err
}

// Close releases the range. It is safe to call more than once.
func (r *Range) Close() error {
	r.hasFront = false
	r.stopped = true
	return r.release()
}

// Collect drains the remaining statements and releases the range.
// Collecting a closed range fails with ErrRangeClosed.
func (r *Range) Collect() ([]rdf.Statement, error) {
	if r.stopped {
		return nil, ErrRangeClosed
	}

	var out []rdf.Statement
	for r.Next() {
		out = append(out, r.Statement())
	}
	return out, r.err
}

// advance loads the next matching statement into front
func (r *Range) advance() {
	r.hasFront = false
	if r.closed {
		return
	}

	for r.it.Next() {
		quad, err := r.model.codec.decodeKey(r.table, r.it.Key())
		if err != nil {
			r.fail(err)
			return
		}
		if !matches(quad, r.pattern) {
			continue
		}

		st, err := r.statement(quad)
		if err != nil {
			r.fail(err)
			return
		}
		r.front, r.hasFront = st, true
		return
	}

	// Exhausted
	if err := r.release(); err != nil && r.err == nil {
		r.err = err
	}
}

func (r *Range) statement(quad [4]rdf.Node) (rdf.Statement, error) {
	if r.model.flags&StoreCursors == 0 {
		return rdf.NewStatement(quad[0], quad[1], quad[2], quad[3])
	}

	var value []byte
	var err error
	if r.table == TableSPO {
		value, err = r.it.Value()
	} else {
		var key []byte
		if key, err = r.model.codec.encodeKey(TableSPO, quad); err == nil {
			value, err = r.txn.Get(TableSPO, key)
		}
	}
	if err != nil {
		return rdf.Statement{}, fmt.Errorf("failed to read statement cursor: %w", err)
	}

	if len(value) == 0 {
		return rdf.NewStatement(quad[0], quad[1], quad[2], quad[3])
	}

	cur, err := r.model.codec.decoder.DecodeCursor(value)
	if err != nil {
		return rdf.Statement{}, err
	}
	return rdf.NewStatementAt(quad[0], quad[1], quad[2], quad[3], cur)
}

func (r *Range) fail(err error) {
	r.err = err
	_ = r.release()
}

// release closes the iterator and then its transaction
func (r *Range) release() error {
	if r.closed {
		return nil
	}
	r.closed = true

	return errors.Join(r.it.Close(), r.txn.Rollback())
}

// matches is Statement.Matches on a decoded key
func matches(quad, pattern [4]rdf.Node) bool {
	for i, n := range pattern {
		if n != nil && !rdf.Equal(n, quad[i]) {
			return false
		}
	}
	return true
}
