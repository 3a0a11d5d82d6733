package rdf

import (
	"strconv"
	"sync/atomic"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// World is the shared context for readers, writers and models. It mints
// blank node ids and holds the logger everything reports through.
type World struct {
	blankCount  atomic.Uint64
	blankPrefix string
	logger      log.Logger
}

// WorldOption configures a World
type WorldOption func(*World)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger log.Logger) WorldOption {
	return func(w *World) {
		w.logger = logger
	}
}

// WithBlankPrefix sets a prefix for generated blank node ids
func WithBlankPrefix(prefix string) WorldOption {
	return func(w *World) {
		w.blankPrefix = prefix
	}
}

// NewWorld creates a new World
func NewWorld(opts ...WorldOption) *World {
	w := &World{logger: log.NewNopLogger()}
	for _, opt := range opts {
		opt(w)
	}
	level.Debug(w.logger).Log("msg", "created world", "blank_prefix", w.blankPrefix)
	return w
}

// Logger returns the logger of the world
func (w *World) Logger() log.Logger {
	return w.logger
}

// BlankPrefix returns the prefix prepended to generated blank node ids
func (w *World) BlankPrefix() string {
	return w.blankPrefix
}

// NextBlank returns a fresh blank node. The first call returns b1, then b2 and so on.
// It is safe for concurrent use.
func (w *World) NextBlank() Blank {
	n := w.blankCount.Add(1)
	return NewBlank(w.blankPrefix + "b" + strconv.FormatUint(n, 10))
}

// ResetBlanks restarts blank node numbering at b1
func (w *World) ResetBlanks() {
	w.blankCount.Store(0)
}
