package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aleksaelezovic/tristore/internal/storage"
	"github.com/aleksaelezovic/tristore/pkg/rdf"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

var (
	ErrUnsupportedFlags = errors.New("unsupported model flags")
	ErrRangeClosed      = errors.New("range is closed")
)

// ModelFlags select the indices a Model maintains
type ModelFlags uint32

const (
	IndexSPO     ModelFlags = 1 << iota // Subject, Predicate, Object
	IndexSOP                            // Subject, Object, Predicate
	IndexOPS                            // Object, Predicate, Subject
	IndexOSP                            // Object, Subject, Predicate
	IndexPSO                            // Predicate, Subject, Object
	IndexPOS                            // Predicate, Object, Subject
	IndexGraphs                         // Graph-major twin of every ordering
	StoreCursors                        // Keep the source cursor of statements

	allModelFlags = StoreCursors<<1 - 1
)

func (f ModelFlags) String() string {
	if f == 0 {
		return "0"
	}

	names := []string{"IndexSPO", "IndexSOP", "IndexOPS", "IndexOSP", "IndexPSO", "IndexPOS", "IndexGraphs", "StoreCursors"}
	var set []string
	for i, name := range names {
		if f&(1<<i) != 0 {
			set = append(set, name)
		}
	}
	return strings.Join(set, "|")
}

// Model is an indexed set of statements.
//
// Every statement is stored once per enabled ordering. The SPO ordering is
// always enabled and is the authoritative set. Insert and Erase update all
// orderings in one storage transaction.
//
// A Model is not safe for concurrent mutation.
type Model struct {
	world   *rdf.World
	flags   ModelFlags
	storage Storage
	codec   keyCodec
	tables  []Table
	size    int
	logger  log.Logger
}

// ModelOption configures a Model
type ModelOption func(*modelOptions)

type modelOptions struct {
	storage Storage
	badger  bool
}

// WithStorage sets the storage of the model. The storage must be empty or
// previously written by a model with the same flags. The model takes
// ownership and closes it.
func WithStorage(s Storage) ModelOption {
	return func(o *modelOptions) {
		o.storage = s
	}
}

// WithBadger stores the model in an in-memory Badger database instead of
// the default skiplist
func WithBadger() ModelOption {
	return func(o *modelOptions) {
		o.badger = true
	}
}

// NewModel creates an empty model with the given indices
func NewModel(world *rdf.World, flags ModelFlags, opts ...ModelOption) (*Model, error) {
	if flags&^allModelFlags != 0 {
		return nil, fmt.Errorf("flags 0x%X: %w", uint32(flags&^allModelFlags), ErrUnsupportedFlags)
	}

	var o modelOptions
	for _, opt := range opts {
		opt(&o)
	}

	logger := log.With(world.Logger(), "component", "model")
	backend := "custom"
	switch {
	case o.storage != nil:
	case o.badger:
		bs, err := storage.NewBadgerStorage()
		if err != nil {
			return nil, err
		}
		o.storage, backend = bs, "badger"
	default:
		o.storage, backend = storage.NewMemoryStorage(), "memory"
	}

	m := &Model{
		world:   world,
		flags:   flags | IndexSPO,
		storage: o.storage,
		codec:   newKeyCodec(),
		logger:  logger,
	}

	for i := 0; i < 6; i++ {
		if m.flags&(1<<i) != 0 {
			m.tables = append(m.tables, Table(i))
		}
	}
	if m.flags&IndexGraphs != 0 {
		for _, table := range m.tables {
			m.tables = append(m.tables, table+TableGSPO)
		}
	}

	size, err := m.countTable(TableSPO)
	if err != nil {
		_ = m.storage.Close()
		return nil, fmt.Errorf("failed to read storage: %w", err)
	}
	m.size = size

	level.Debug(logger).Log("msg", "created model", "flags", m.flags, "backend", backend, "tables", len(m.tables))
	return m, nil
}

// World returns the world the model belongs to
func (m *Model) World() *rdf.World {
	return m.world
}

// Flags returns the model flags. IndexSPO is always set.
func (m *Model) Flags() ModelFlags {
	return m.flags
}

// Size returns the number of statements
func (m *Model) Size() int {
	return m.size
}

// Empty returns true if the model has no statements
func (m *Model) Empty() bool {
	return m.size == 0
}

// Close releases the storage
func (m *Model) Close() error {
	return m.storage.Close()
}

// Add inserts the statement made of the given nodes
func (m *Model) Add(subject, predicate, object, graph rdf.Node) error {
	st, err := rdf.NewStatement(subject, predicate, object, graph)
	if err != nil {
		return fmt.Errorf("failed to add statement: %w", err)
	}
	return m.Insert(st)
}

// Insert adds a statement to every index. Inserting a statement that is
// already present does nothing.
func (m *Model) Insert(st rdf.Statement) error {
	quad := st.Quad()
	if _, err := rdf.NewStatement(quad[0], quad[1], quad[2], quad[3]); err != nil {
		return fmt.Errorf("failed to insert statement: %w", err)
	}

	txn, err := m.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	key, err := m.codec.encodeKey(TableSPO, quad)
	if err != nil {
		return err
	}

	switch _, err := txn.Get(TableSPO, key); {
	case err == nil:
		return nil
	case !errors.Is(err, ErrNotFound):
		return err
	}

	value := []byte{}
	if cur, ok := st.Cursor(); ok && m.flags&StoreCursors != 0 {
		value = m.codec.encoder.EncodeCursor(cur)
	}

	for _, table := range m.tables {
		if table == TableSPO {
			err = txn.Set(table, key, value)
		} else {
			err = m.setIndex(txn, table, quad)
		}
		if err != nil {
			return fmt.Errorf("failed to write %s index: %w", table, err)
		}
	}

	if err := txn.Commit(); err != nil {
		return fmt.Errorf("failed to commit insert: %w", err)
	}
	m.size++
	return nil
}

func (m *Model) setIndex(txn Transaction, table Table, quad [4]rdf.Node) error {
	key, err := m.codec.encodeKey(table, quad)
	if err != nil {
		return err
	}
	return txn.Set(table, key, []byte{})
}

// Erase removes a statement from every index. Erasing a statement that is
// not present does nothing.
func (m *Model) Erase(st rdf.Statement) error {
	quad := st.Quad()

	txn, err := m.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	key, err := m.codec.encodeKey(TableSPO, quad)
	if err != nil {
		return err
	}

	switch _, err := txn.Get(TableSPO, key); {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return err
	}

	for _, table := range m.tables {
		if table != TableSPO {
			if key, err = m.codec.encodeKey(table, quad); err != nil {
				return err
			}
		}
		if err := txn.Delete(table, key); err != nil {
			return fmt.Errorf("failed to delete from %s index: %w", table, err)
		}
	}

	if err := txn.Commit(); err != nil {
		return fmt.Errorf("failed to commit erase: %w", err)
	}
	m.size--
	return nil
}

// InsertRange inserts every statement of r. The range is drained before
// anything is inserted, so it may come from this model.
func (m *Model) InsertRange(r *Range) error {
	statements, err := r.Collect()
	if err != nil {
		return err
	}

	for _, st := range statements {
		if err := m.Insert(st); err != nil {
			return err
		}
	}
	return nil
}

// EraseRange erases every statement of r. The range is drained before
// anything is erased.
func (m *Model) EraseRange(r *Range) error {
	statements, err := r.Collect()
	if err != nil {
		return err
	}

	for _, st := range statements {
		if err := m.Erase(st); err != nil {
			return err
		}
	}
	return nil
}

// Contains returns true if the model holds exactly st. Unlike Ask, a nil
// graph only matches a triple.
func (m *Model) Contains(st rdf.Statement) (bool, error) {
	key, err := m.codec.encodeKey(TableSPO, st.Quad())
	if err != nil {
		return false, err
	}

	txn, err := m.storage.Begin(false)
	if err != nil {
		return false, err
	}
	defer txn.Rollback()

	switch _, err := txn.Get(TableSPO, key); {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Equal returns true if both models hold the same statements
func (m *Model) Equal(other *Model) (bool, error) {
	if other == nil || m.size != other.size {
		return false, nil
	}

	r := m.All()
	defer r.Close()

	for r.Next() {
		ok, err := other.Contains(r.Statement())
		if err != nil || !ok {
			return false, err
		}
	}
	return true, r.Err()
}

// countTable counts the keys of one table
func (m *Model) countTable(table Table) (int, error) {
	txn, err := m.storage.Begin(false)
	if err != nil {
		return 0, err
	}
	defer txn.Rollback()

	it, err := txn.Scan(table, nil, nil)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	n := 0
	for it.Next() {
		n++
	}
	return n, nil
}
