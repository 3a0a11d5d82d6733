package rdf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// ReaderState is the position of a Reader in its lifecycle
type ReaderState int

const (
	ReaderUnstarted ReaderState = iota
	ReaderStarted
	ReaderReading
	ReaderFinished
	ReaderErrored
)

func (s ReaderState) String() string {
	switch s {
	case ReaderUnstarted:
		return "unstarted"
	case ReaderStarted:
		return "started"
	case ReaderReading:
		return "reading"
	case ReaderFinished:
		return "finished"
	case ReaderErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// ReaderFlags control how a Reader interprets its input
type ReaderFlags uint32

const (
	ReadLax       ReaderFlags = 1 << iota // Tolerate invalid input where possible
	ReadVariables                         // Support variable nodes like ?x and $x
	ReadRelative                          // Do not resolve relative URIs
	ReadGlobal                            // Do not prefix or rename blank node labels
	ReadPrefixed                          // Do not expand prefixed names
)

func (f ReaderFlags) String() string {
	if f == 0 {
		return "0"
	}

	names := []string{"ReadLax", "ReadVariables", "ReadRelative", "ReadGlobal", "ReadPrefixed"}
	var set []string
	for i, name := range names {
		if f&(1<<i) != 0 {
			set = append(set, name)
		}
	}
	return strings.Join(set, "|")
}

// DefaultStackLimit is the default maximum nesting depth of anonymous nodes and lists
const DefaultStackLimit = 1024

// ReaderOption configures a Reader
type ReaderOption func(*Reader)

// WithReaderFlags sets the reader flags
func WithReaderFlags(flags ReaderFlags) ReaderOption {
	return func(r *Reader) {
		r.flags = flags
	}
}

// WithBlockSize sets how many bytes are requested from the source at once
func WithBlockSize(size int) ReaderOption {
	return func(r *Reader) {
		r.blockSize = size
	}
}

// WithStackLimit sets the maximum nesting depth of anonymous nodes and lists
func WithStackLimit(depth int) ReaderOption {
	return func(r *Reader) {
		r.stackLimit = depth
	}
}

// WithDefaultGraph sets the graph of statements read outside any graph
func WithDefaultGraph(graph Node) ReaderOption {
	return func(r *Reader) {
		r.defaultGraph = graph
	}
}

// Reader parses a document in some syntax and writes events to a sink.
//
// A reader is driven explicitly: Start binds a source, then ReadChunk
// reads one top-level production at a time, or ReadDocument reads all of
// them. Finish releases the source.
type Reader struct {
	world        *World
	syntax       Syntax
	env          *Env
	sink         Sink
	logger       log.Logger
	flags        ReaderFlags
	blockSize    int
	stackLimit   int
	defaultGraph Node

	state     ReaderState
	name      string
	src       *byteSource
	depth     int
	seenGenid bool
}

// NewReader creates a reader that expands nodes with env and writes events to sink.
// If env is nil, the reader uses a fresh empty environment.
func NewReader(world *World, syntax Syntax, env *Env, sink Sink, opts ...ReaderOption) *Reader {
	if env == nil {
		env = NewEnv()
	}

	r := &Reader{
		world:      world,
		syntax:     syntax,
		env:        env,
		sink:       sink,
		logger:     world.Logger(),
		blockSize:  DefaultBlockSize,
		stackLimit: DefaultStackLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current state of the reader
func (r *Reader) State() ReaderState {
	return r.state
}

// Env returns the environment the reader expands nodes with
func (r *Reader) Env() *Env {
	return r.env
}

// Cursor returns the position of the next byte to be read
func (r *Reader) Cursor() Cursor {
	if r.src == nil {
		return Cursor{Name: r.name}
	}
	return r.src.cur
}

// Start binds the reader to a source. A source can only be bound when no
// other source is, so a reader must be finished before it is restarted.
func (r *Reader) Start(source *Source) error {
	if r.src != nil {
		return fmt.Errorf("reader already started on %s: %w", r.name, ErrBadCall)
	}

	in, closer, err := source.open()
	if err != nil {
		r.state = ReaderErrored
		level.Error(r.logger).Log("msg", "failed to open source", "file", source.Name(), "err", err)
		return fmt.Errorf("failed to open %s: %w", source.Name(), err)
	}

	r.name = source.Name()
	r.src = newByteSource(source.Name(), in, closer, r.blockSize)
	r.depth = 0
	r.seenGenid = false
	r.state = ReaderStarted
	return nil
}

// ReadChunk reads a single top-level production: a directive, a group of
// statements about one subject, or a graph block. It returns Failure when
// the end of input is reached.
func (r *Reader) ReadChunk() error {
	switch r.state {
	case ReaderStarted, ReaderReading:
	default:
		return fmt.Errorf("cannot read in state %s: %w", r.state, ErrBadCall)
	}

	r.state = ReaderReading
	err := r.readStatement()
	r.src.discard()

	if r.src.err != nil {
		r.state = ReaderErrored
		level.Error(r.logger).Log("msg", "failed to read input", "file", r.name, "err", r.src.err)
		return fmt.Errorf("failed to read %s: %w", r.name, r.src.err)
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, Failure):
		r.state = ReaderFinished
		return Failure
	}

	var cerr *CursorError
	if errors.As(err, &cerr) {
		level.Error(r.logger).Log("msg", cerr.Msg, "file", cerr.Cursor.Name,
			"line", cerr.Cursor.Line, "col", cerr.Cursor.Column)

		if r.flags&ReadLax != 0 && tolerable(cerr.Status) {
			r.skipUntil('\n')
			r.depth = 0
			return nil
		}
	}

	r.state = ReaderErrored
	return err
}

// ReadDocument reads all remaining input
func (r *Reader) ReadDocument() error {
	for {
		if err := r.ReadChunk(); err != nil {
			if errors.Is(err, Failure) {
				return nil
			}
			return err
		}
	}
}

// Finish releases the source. It is safe to call more than once, and
// after an error.
func (r *Reader) Finish() error {
	if r.src == nil {
		return nil
	}

	err := r.src.close()
	r.src = nil
	if r.state != ReaderErrored {
		r.state = ReaderFinished
	}
	return err
}

func tolerable(st Status) bool {
	switch st {
	case ErrBadSyntax, ErrBadText, ErrBadCurie, ErrBadURI, ErrIDClash:
		return true
	}
	return false
}

// readContext is the statement being built while reading
type readContext struct {
	graph     Node
	subject   Node
	predicate Node
	flags     *StatementFlags
}

func (r *Reader) emitStatement(ctx readContext, object Node, cur Cursor) error {
	graph := ctx.graph
	if graph == nil {
		graph = r.defaultGraph
	}

	st := newPatternStatement(ctx.subject, ctx.predicate, object, graph, &cur)
	flags := *ctx.flags
	*ctx.flags = 0
	return r.sink.OnEvent(StatementEvent(st, flags))
}

func (r *Reader) emitEnd(node Node) error {
	return r.sink.OnEvent(EndEvent(node))
}

func (r *Reader) setBase(iri string) error {
	if err := r.env.SetBaseURI(NewURI(iri)); err != nil {
		return newCursorError(ErrBadURI, r.src.cur, "invalid base URI <%s>", iri)
	}
	base, _ := r.env.BaseURI().(URI)
	return r.sink.OnEvent(BaseEvent(base))
}

func (r *Reader) setPrefix(name, iri string) error {
	if err := r.env.SetPrefix(name, NewURI(iri)); err != nil {
		return newCursorError(ErrBadURI, r.src.cur, "invalid namespace <%s> for prefix %q", iri, name)
	}
	uri, _ := r.env.Prefix(name)
	return r.sink.OnEvent(PrefixEvent(name, uri))
}

// resolveIRI makes a URI node from IRIREF text, resolving it against the base
func (r *Reader) resolveIRI(iri string) (Node, error) {
	if r.flags&ReadRelative != 0 || HasScheme(iri) {
		return NewURI(iri), nil
	}

	if r.syntax == NTriples || r.syntax == NQuads {
		return nil, newCursorError(ErrBadURI, r.src.cur, "expected absolute URI, found <%s>", iri)
	}

	base := r.env.BaseURI()
	if base == nil {
		return NewURI(iri), nil
	}
	return NewURI(ResolveURI(iri, base.Value())), nil
}

// expandCURIE makes a node for a prefixed name
func (r *Reader) expandCURIE(prefix, name string) (Node, error) {
	curie := NewCURIE(prefix, name)
	if r.flags&ReadPrefixed != 0 {
		return curie, nil
	}

	uri, ok := r.env.Expand(curie)
	if !ok {
		return nil, newCursorError(ErrBadCurie, r.src.cur, "undefined namespace prefix %q", prefix)
	}
	return uri, nil
}

// freshBlank returns a generated blank node
func (r *Reader) freshBlank() Blank {
	return r.world.NextBlank()
}

// labelledBlank returns the node for a blank label from the document.
// Labels that look like generated ids are renamed so they cannot clash.
func (r *Reader) labelledBlank(label string) (Node, error) {
	if r.flags&ReadGlobal != 0 {
		return NewBlank(label), nil
	}

	if len(label) > 1 && isDigit(rune(label[1])) {
		switch label[0] {
		case 'b':
			label = "B" + label[1:]
			r.seenGenid = true
		case 'B':
			if r.seenGenid {
				return nil, newCursorError(ErrIDClash, r.src.cur,
					"found both 'b' and 'B' blank ids, prefix required")
			}
		}
	}

	return NewBlank(r.world.BlankPrefix() + label), nil
}

func (r *Reader) push() error {
	r.depth++
	if r.stackLimit > 0 && r.depth > r.stackLimit {
		return newCursorError(ErrOverflow, r.src.cur, "nesting deeper than %d levels", r.stackLimit)
	}
	return nil
}

func (r *Reader) pop() {
	r.depth--
}

func (r *Reader) skipUntil(b byte) {
	for c := r.src.peek(); c >= 0; c = r.src.peek() {
		r.src.advance(1)
		if c == int(b) {
			return
		}
	}
}

func (r *Reader) syntaxError(format string, args ...any) error {
	return newCursorError(ErrBadSyntax, r.src.cur, format, args...)
}
