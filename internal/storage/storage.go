package storage

import (
	"errors"
)

var (
	ErrNotFound      = errors.New("key not found")
	ErrTransactionRO = errors.New("transaction is read-only")
	ErrTxnDone       = errors.New("transaction already committed or rolled back")
)

// Storage is the interface for the underlying ordered key-value store
type Storage interface {
	// Begin starts a new transaction
	Begin(writable bool) (Transaction, error)

	// Close releases the storage
	Close() error
}

// Transaction groups reads and writes. Writes become visible to other
// transactions only after Commit, and either all of them apply or none.
type Transaction interface {
	// Get retrieves a value by key
	Get(table Table, key []byte) ([]byte, error)

	// Set stores a key-value pair
	Set(table Table, key, value []byte) error

	// Delete removes a key
	Delete(table Table, key []byte) error

	// Scan iterates over a key range [start, end)
	// If start is nil, begins from the first key of the table
	// If end is nil, scans until the last key of the table
	Scan(table Table, start, end []byte) (Iterator, error)

	// Commit applies the transaction
	Commit() error

	// Rollback discards the transaction
	Rollback() error
}

// Iterator iterates over key-value pairs in key order
type Iterator interface {
	// Next advances to the next item
	Next() bool

	// Key returns the current key without its table prefix
	Key() []byte

	// Value returns the current value
	Value() ([]byte, error)

	// Close closes the iterator
	Close() error
}

// Table is a logical keyspace within a storage
type Table byte

const (
	// Orderings with the graph last. TableSPO is always present and its
	// values hold statement cursors.
	TableSPO Table = iota
	TableSOP
	TableOPS
	TableOSP
	TablePSO
	TablePOS

	// Orderings with the graph first
	TableGSPO
	TableGSOP
	TableGOPS
	TableGOSP
	TableGPSO
	TableGPOS

	// Total number of tables
	TableCount
)

func (t Table) String() string {
	switch t {
	case TableSPO:
		return "spo"
	case TableSOP:
		return "sop"
	case TableOPS:
		return "ops"
	case TableOSP:
		return "osp"
	case TablePSO:
		return "pso"
	case TablePOS:
		return "pos"
	case TableGSPO:
		return "gspo"
	case TableGSOP:
		return "gsop"
	case TableGOPS:
		return "gops"
	case TableGOSP:
		return "gosp"
	case TableGPSO:
		return "gpso"
	case TableGPOS:
		return "gpos"
	default:
		return "unknown"
	}
}

// TablePrefix returns a byte prefix for a table to namespace keys
func TablePrefix(table Table) []byte {
	return []byte{byte(table)}
}

// PrefixKey adds a table prefix to a key
func PrefixKey(table Table, key []byte) []byte {
	result := make([]byte, 1+len(key))
	result[0] = byte(table)
	copy(result[1:], key)
	return result
}

// tableBounds returns the prefixed [start, end) bounds of a scan. A nil
// end stops at the end of the table.
func tableBounds(table Table, start, end []byte) ([]byte, []byte) {
	lower := PrefixKey(table, start)
	var upper []byte
	if end != nil {
		upper = PrefixKey(table, end)
	} else if table < 0xFF {
		upper = []byte{byte(table) + 1}
	}
	return lower, upper
}
