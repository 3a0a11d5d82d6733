package storage

import (
	"bytes"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerStorage implements Storage with an in-memory BadgerDB. Every
// transaction reads a consistent snapshot, so a Range stays valid while
// the model changes.
type BadgerStorage struct {
	db *badger.DB
}

// NewBadgerStorage opens an empty in-memory BadgerDB
func NewBadgerStorage() (*BadgerStorage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	return &BadgerStorage{db: db}, nil
}

func (s *BadgerStorage) Begin(writable bool) (Transaction, error) {
	if s.db.IsClosed() {
		return nil, fmt.Errorf("failed to begin transaction: %w", badger.ErrDBClosed)
	}
	return &BadgerTransaction{txn: s.db.NewTransaction(writable), writable: writable}, nil
}

func (s *BadgerStorage) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}

// BadgerTransaction wraps a badger.Txn. Unlike the default storage, a
// write transaction reads its own pending writes.
type BadgerTransaction struct {
	txn      *badger.Txn
	writable bool
	done     bool
}

// check returns the error for an operation on a finished or read-only txn
func (t *BadgerTransaction) check(write bool) error {
	switch {
	case write && !t.writable:
		return ErrTransactionRO
	case t.done:
		return ErrTxnDone
	}
	return nil
}

func (t *BadgerTransaction) Get(table Table, key []byte) ([]byte, error) {
	if err := t.check(false); err != nil {
		return nil, err
	}

	item, err := t.txn.Get(PrefixKey(table, key))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (t *BadgerTransaction) Set(table Table, key, value []byte) error {
	if err := t.check(true); err != nil {
		return err
	}
	return t.txn.Set(PrefixKey(table, key), value)
}

func (t *BadgerTransaction) Delete(table Table, key []byte) error {
	if err := t.check(true); err != nil {
		return err
	}
	return t.txn.Delete(PrefixKey(table, key))
}

func (t *BadgerTransaction) Scan(table Table, start, end []byte) (Iterator, error) {
	if err := t.check(false); err != nil {
		return nil, err
	}

	lower, upper := tableBounds(table, start, end)

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = TablePrefix(table)

	return &BadgerIterator{it: t.txn.NewIterator(opts), lower: lower, upper: upper}, nil
}

func (t *BadgerTransaction) Commit() error {
	if t.done {
		return ErrTxnDone
	}
	t.done = true

	if !t.writable {
		t.txn.Discard()
		return nil
	}
	if err := t.txn.Commit(); err != nil {
		return fmt.Errorf("failed to commit badger txn: %w", err)
	}
	return nil
}

func (t *BadgerTransaction) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.txn.Discard()
	return nil
}

// BadgerIterator walks the keys of one table between two prefixed bounds
type BadgerIterator struct {
	it      *badger.Iterator
	lower   []byte
	upper   []byte
	started bool
	valid   bool
}

func (i *BadgerIterator) Next() bool {
	if i.started {
		i.it.Next()
	} else {
		i.it.Seek(i.lower)
		i.started = true
	}

	i.valid = i.it.Valid()
	if i.valid && i.upper != nil {
		i.valid = bytes.Compare(i.it.Item().Key(), i.upper) < 0
	}
	return i.valid
}

// Key returns a copy of the current key without its table prefix
func (i *BadgerIterator) Key() []byte {
	if !i.valid {
		return nil
	}
	return i.it.Item().KeyCopy(nil)[1:]
}

func (i *BadgerIterator) Value() ([]byte, error) {
	if !i.valid {
		return nil, ErrNotFound
	}
	return i.it.Item().ValueCopy(nil)
}

func (i *BadgerIterator) Close() error {
	i.it.Close()
	return nil
}
