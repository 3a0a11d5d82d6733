package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/comparer"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/memdb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// MemoryStorage implements Storage on a goleveldb in-memory skiplist.
// All tables share one skiplist and are separated by their key prefix.
//
// Transactions do not provide snapshots: reads see the latest committed
// state, and a writable transaction does not see its own uncommitted
// writes. Commits are serialized.
type MemoryStorage struct {
	db     *memdb.DB
	commit sync.Mutex
	closed bool
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{db: memdb.New(comparer.DefaultComparer, 0)}
}

// Begin starts a new transaction
func (s *MemoryStorage) Begin(writable bool) (Transaction, error) {
	if s.closed {
		return nil, fmt.Errorf("failed to begin transaction: %w", leveldb.ErrClosed)
	}
	txn := &MemoryTransaction{storage: s, writable: writable}
	if writable {
		txn.batch = new(leveldb.Batch)
	}
	return txn, nil
}

// Close releases the skiplist
func (s *MemoryStorage) Close() error {
	s.commit.Lock()
	defer s.commit.Unlock()

	s.closed = true
	s.db.Reset()
	return nil
}

// Len returns the number of keys across all tables
func (s *MemoryStorage) Len() int {
	return s.db.Len()
}

// Size returns the number of key and value bytes held
func (s *MemoryStorage) Size() int {
	return s.db.Size()
}

// MemoryTransaction implements Transaction by buffering writes in a
// leveldb.Batch that is replayed into the skiplist on commit
type MemoryTransaction struct {
	storage  *MemoryStorage
	batch    *leveldb.Batch
	writable bool
	done     bool
}

// Get retrieves a value by key
func (t *MemoryTransaction) Get(table Table, key []byte) ([]byte, error) {
	if t.done {
		return nil, ErrTxnDone
	}

	value, err := t.storage.db.Get(PrefixKey(table, key))
	if err != nil {
		if errors.Is(err, memdb.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return append([]byte{}, value...), nil
}

// Set stores a key-value pair
func (t *MemoryTransaction) Set(table Table, key, value []byte) error {
	if !t.writable {
		return ErrTransactionRO
	}
	if t.done {
		return ErrTxnDone
	}

	t.batch.Put(PrefixKey(table, key), value)
	return nil
}

// Delete removes a key
func (t *MemoryTransaction) Delete(table Table, key []byte) error {
	if !t.writable {
		return ErrTransactionRO
	}
	if t.done {
		return ErrTxnDone
	}

	t.batch.Delete(PrefixKey(table, key))
	return nil
}

// Scan iterates over a key range [start, end)
func (t *MemoryTransaction) Scan(table Table, start, end []byte) (Iterator, error) {
	if t.done {
		return nil, ErrTxnDone
	}

	lower, upper := tableBounds(table, start, end)
	it := t.storage.db.NewIterator(&util.Range{Start: lower, Limit: upper})
	return &MemoryIterator{it: it}, nil
}

// Commit replays the buffered writes into the skiplist
func (t *MemoryTransaction) Commit() error {
	if t.done {
		return ErrTxnDone
	}
	t.done = true

	if !t.writable || t.batch.Len() == 0 {
		return nil
	}

	t.storage.commit.Lock()
	defer t.storage.commit.Unlock()

	if t.storage.closed {
		return fmt.Errorf("failed to commit: %w", leveldb.ErrClosed)
	}
	return t.batch.Replay(&replayer{db: t.storage.db})
}

// Rollback discards the buffered writes
func (t *MemoryTransaction) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	if t.batch != nil {
		t.batch.Reset()
	}
	return nil
}

// replayer applies batch records to the skiplist. Put and Delete cannot
// fail on a memdb except for deleting an absent key, which is ignored.
type replayer struct {
	db *memdb.DB
}

func (r *replayer) Put(key, value []byte) {
	_ = r.db.Put(key, value)
}

func (r *replayer) Delete(key []byte) {
	_ = r.db.Delete(key)
}

// MemoryIterator implements Iterator over a skiplist range
type MemoryIterator struct {
	it      iterator.Iterator
	started bool
}

// Next advances to the next item
func (i *MemoryIterator) Next() bool {
	if !i.started {
		i.started = true
		return i.it.First()
	}
	return i.it.Next()
}

// Key returns the current key (without the table prefix)
func (i *MemoryIterator) Key() []byte {
	key := i.it.Key()
	if len(key) == 0 {
		return nil
	}
	return append([]byte{}, key[1:]...)
}

// Value returns the current value
func (i *MemoryIterator) Value() ([]byte, error) {
	if !i.started || i.it.Key() == nil {
		return nil, ErrNotFound
	}
	return append([]byte{}, i.it.Value()...), nil
}

// Close releases the iterator
func (i *MemoryIterator) Close() error {
	i.it.Release()
	return i.it.Error()
}
