package store

import (
	"github.com/aleksaelezovic/tristore/internal/storage"
)

var (
	ErrNotFound      = storage.ErrNotFound
	ErrTransactionRO = storage.ErrTransactionRO
)

// Storage is the interface for the underlying ordered key-value store
type Storage = storage.Storage

// Transaction represents a storage transaction
type Transaction = storage.Transaction

// Iterator iterates over key-value pairs of one table
type Iterator = storage.Iterator

// Table is a logical keyspace holding one statement ordering
type Table = storage.Table

const (
	TableSPO  = storage.TableSPO
	TableSOP  = storage.TableSOP
	TableOPS  = storage.TableOPS
	TableOSP  = storage.TableOSP
	TablePSO  = storage.TablePSO
	TablePOS  = storage.TablePOS
	TableGSPO = storage.TableGSPO
	TableGSOP = storage.TableGSOP
	TableGOPS = storage.TableGOPS
	TableGOSP = storage.TableGOSP
	TableGPSO = storage.TableGPSO
	TableGPOS = storage.TableGPOS

	TableCount = storage.TableCount
)
