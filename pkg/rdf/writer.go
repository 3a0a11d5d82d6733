package rdf

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/exp/slices"
)

// WriterFlags control how a Writer serialises events
type WriterFlags uint32

const (
	WriteASCII      WriterFlags = 1 << iota // Escape all non-ASCII characters
	WriteExpanded                           // Write URIs in full instead of as CURIEs
	WriteVerbatim                           // Write URIs exactly as given, without resolution
	WriteTerse                              // Write with as little whitespace as possible
	WriteLax                                // Tolerate and repair invalid text
	WriteContextual                         // Omit @prefix directives
)

func (f WriterFlags) String() string {
	if f == 0 {
		return "0"
	}

	names := []string{"WriteASCII", "WriteExpanded", "WriteVerbatim", "WriteTerse", "WriteLax", "WriteContextual"}
	var set []string
	for i, name := range names {
		if f&(1<<i) != 0 {
			set = append(set, name)
		}
	}
	return strings.Join(set, "|")
}

// WriterOption configures a Writer
type WriterOption func(*Writer)

// WithWriterFlags sets the writer flags
func WithWriterFlags(flags WriterFlags) WriterOption {
	return func(w *Writer) {
		w.flags = flags
	}
}

// WithRootURI limits relative URI output to URIs under root. URIs outside
// it are written in full even if they share a prefix with the base URI.
func WithRootURI(root string) WriterOption {
	return func(w *Writer) {
		w.root = root
	}
}

// WithMaxDepth sets how deeply anonymous nodes and lists may nest
func WithMaxDepth(depth int) WriterOption {
	return func(w *Writer) {
		w.maxDepth = depth
	}
}

// sep is a kind of separator between parts of a statement
type sep int

const (
	sepNone       sep = iota // after nothing
	sepNewline               // after a line end
	sepEndDirect             // end of a directive like @prefix
	sepEndS                  // end of a subject '.'
	sepEndP                  // end of a predicate ';'
	sepEndO                  // end of a named object ','
	sepJoinOAN               // anonymous object followed by a named one
	sepJoinONA               // named object followed by an anonymous one
	sepJoinOAA               // anonymous object followed by another
	sepSP                    // between subject and predicate
	sepPO                    // between predicate and object
	sepAnonBegin             // '['
	sepAnonSP                // between anonymous subject and predicate
	sepAnonEnd               // ']'
	sepListBegin             // '('
	sepListSep               // between list items
	sepListEnd               // ')'
	sepTListBegin            // terse '('
	sepTListSep              // terse list item separator
	sepTListEnd              // terse ')'
	sepGraphBegin            // '{'
	sepGraphEnd              // '}'
)

// sepMask is a set of separators, tested against the last one written
type sepMask uint32

const sepEach = ^sepMask(0)

func after(seps ...sep) sepMask {
	var m sepMask
	for _, s := range seps {
		m |= 1 << s
	}
	return m
}

type sepRule struct {
	char          byte
	indent        int
	preSpaceAfter sepMask
	preLineAfter  sepMask
	postLineAfter sepMask
}

var sepRules = [...]sepRule{
	sepNone:       {0, 0, 0, 0, 0},
	sepNewline:    {'\n', 0, 0, 0, 0},
	sepEndDirect:  {'.', 0, sepEach, 0, 0},
	sepEndS:       {'.', 0, sepEach, 0, 0},
	sepEndP:       {';', 0, sepEach, 0, sepEach},
	sepEndO:       {',', 0, sepEach, 0, sepEach},
	sepJoinOAN:    {',', 0, sepEach, 0, sepEach},
	sepJoinONA:    {',', 0, sepEach, 0, sepEach},
	sepJoinOAA:    {',', 0, sepEach, 0, 0},
	sepSP:         {0, +1, 0, 0, sepEach},
	sepPO:         {' ', 0, 0, 0, 0},
	sepAnonBegin:  {'[', +1, after(sepJoinOAA), after(sepTListBegin, sepTListSep), 0},
	sepAnonSP:     {0, +1, 0, 0, after(sepAnonBegin)},
	sepAnonEnd:    {']', -1, 0, ^after(sepAnonBegin), 0},
	sepListBegin:  {'(', +1, after(sepJoinOAA), 0, sepEach},
	sepListSep:    {0, 0, 0, sepEach, 0},
	sepListEnd:    {')', -1, 0, sepEach, 0},
	sepTListBegin: {'(', +1, 0, 0, 0},
	sepTListSep:   {0, 0, sepEach, 0, 0},
	sepTListEnd:   {')', -1, 0, 0, 0},
	sepGraphBegin: {'{', +1, sepEach, 0, sepEach},
	sepGraphEnd:   {'}', -1, 0, 0, sepEach},
}

type contextType int

const (
	contextNamed contextType = iota
	contextBlank
	contextList
)

// writeContext is the statement position the writer is abbreviating against
type writeContext struct {
	kind          contextType
	flags         StatementFlags
	graph         Node
	subject       Node
	predicate     Node
	predicates    bool
	commaIndented bool
}

// Writer is a Sink that serialises events as text.
//
// Turtle and TriG output is abbreviated: statements sharing a subject or
// predicate are grouped, and anonymous nodes and lists are written inline
// when the statement flags say they were written that way. Output is
// buffered, so Finish must be called when the stream ends.
type Writer struct {
	world    *World
	syntax   Syntax
	flags    WriterFlags
	env      *Env
	logger   log.Logger
	root     string
	maxDepth int

	out       *bufio.Writer
	err       error
	context   writeContext
	anonStack []writeContext
	lastSep   sep
	indent    int
}

// NewWriter creates a writer for syntax that writes to out. The writer
// updates env with base and prefix events. If env is nil, the writer uses
// a fresh empty environment.
func NewWriter(world *World, syntax Syntax, env *Env, out io.Writer, opts ...WriterOption) *Writer {
	if env == nil {
		env = NewEnv()
	}

	w := &Writer{
		world:    world,
		syntax:   syntax,
		env:      env,
		logger:   world.Logger(),
		maxDepth: DefaultStackLimit,
		out:      bufio.NewWriter(out),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Env returns the environment the writer abbreviates with
func (w *Writer) Env() *Env {
	return w.env
}

// OnEvent writes an event
func (w *Writer) OnEvent(event Event) error {
	switch event.Type {
	case EventBase:
		return w.setBaseURI(event.URI)
	case EventPrefix:
		return w.setPrefix(event.Name, event.URI)
	case EventStatement:
		return w.writeStatement(event.Flags, event.Statement)
	case EventEnd:
		return w.endAnon(event.Node)
	}
	return fmt.Errorf("unknown event type %d: %w", event.Type, ErrBadArg)
}

// WriteNode writes a single node as it would appear in object position
func (w *Writer) WriteNode(node Node) error {
	if err := w.writeNode(node, FieldObject, 0); err != nil {
		return err
	}
	return w.err
}

// Finish terminates any open statement or graph and flushes the output.
// The writer can be used again afterwards.
func (w *Writer) Finish() error {
	err := w.terminateContext()
	if ferr := w.out.Flush(); ferr != nil && err == nil {
		err = fmt.Errorf("failed to flush output: %w: %w", ErrBadWrite, ferr)
	}

	w.resetContext(true, true)
	w.lastSep = sepNone
	w.err = nil
	return err
}

func (w *Writer) abbreviates() bool {
	return w.syntax == Turtle || w.syntax == TriG
}

func (w *Writer) fail(st Status, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	level.Error(w.logger).Log("msg", msg, "syntax", w.syntax)
	return fmt.Errorf("%s: %w", msg, st)
}

// sink writes raw text. Write errors are sticky and reported by the
// statement that caused them.
func (w *Writer) sink(s string) {
	if w.err != nil {
		return
	}
	if _, err := w.out.WriteString(s); err != nil {
		w.err = fmt.Errorf("failed to write output: %w: %w", ErrBadWrite, err)
		level.Error(w.logger).Log("msg", "write error", "err", err)
	}
}

func (w *Writer) sinkByte(c byte) {
	if w.err != nil {
		return
	}
	if err := w.out.WriteByte(c); err != nil {
		w.err = fmt.Errorf("failed to write output: %w: %w", ErrBadWrite, err)
		level.Error(w.logger).Log("msg", "write error", "err", err)
	}
}

func (w *Writer) ctx(field Field) Node {
	switch field {
	case FieldSubject:
		return w.context.subject
	case FieldPredicate:
		return w.context.predicate
	case FieldGraph:
		return w.context.graph
	}
	return nil
}

func (w *Writer) pushContext(kind contextType, flags StatementFlags, graph, subject, predicate Node) error {
	if w.maxDepth > 0 && len(w.anonStack) >= w.maxDepth {
		return w.fail(ErrOverflow, "anonymous nodes nested deeper than %d levels", w.maxDepth)
	}

	w.anonStack = append(w.anonStack, w.context)
	w.context = writeContext{
		kind:      kind,
		flags:     flags,
		graph:     graph,
		subject:   subject,
		predicate: predicate,
	}
	return nil
}

func (w *Writer) popContext() {
	n := len(w.anonStack) - 1
	w.context = w.anonStack[n]
	w.anonStack = slices.Delete(w.anonStack, n, n+1)
}

func (w *Writer) resetContext(graph, indent bool) {
	w.anonStack = w.anonStack[:0]
	w.context.subject = nil
	w.context.predicate = nil
	if graph {
		w.context.graph = nil
	}
	if indent {
		w.indent = 0
	}
	w.context.kind = contextNamed
	w.context.predicates = false
	w.context.commaIndented = false
}

func (w *Writer) writeNewline(terse bool) {
	if terse || w.flags&WriteTerse != 0 {
		w.sinkByte(' ')
		return
	}

	w.sinkByte('\n')
	for i := 0; i < w.indent; i++ {
		w.sinkByte('\t')
	}
}

func (w *Writer) writeTopLevelSep() {
	if w.lastSep != sepNone && w.flags&WriteTerse == 0 {
		w.writeNewline(false)
	}
}

func (w *Writer) writeSep(flags StatementFlags, s sep) {
	rule := sepRules[s]
	last := sepMask(1) << w.lastSep

	preLine := rule.preLineAfter&last != 0
	postLine := rule.postLineAfter&last != 0

	terse := (flags&TerseS != 0 && flags&ListS != 0) ||
		(flags&TerseO != 0 && flags&ListO != 0)
	if terse && s >= sepListBegin && s <= sepListEnd {
		s += sepTListBegin - sepListBegin
	}

	// Adjust indent, but never below zero
	if rule.indent != 0 && (preLine || postLine) {
		w.indent = max(w.indent+rule.indent, 0)
	}

	// The first comma indents the objects after it
	if s == sepEndO && !w.context.commaIndented {
		w.indent++
		w.context.commaIndented = true
	}

	if preLine {
		w.writeNewline(terse)
	} else if rule.preSpaceAfter&last != 0 {
		w.sinkByte(' ')
	}

	if rule.char != 0 {
		w.sinkByte(rule.char)
	}

	if postLine {
		w.writeNewline(terse)
	}

	if s == sepEndS || s == sepEndDirect {
		w.indent = 0
		if w.ctx(FieldGraph) != nil {
			w.indent = 1
		}
		w.context.predicates = false
		w.context.commaIndented = false
		if !terse {
			w.sinkByte('\n')
		}
	}

	w.lastSep = s
}

func (w *Writer) terminateContext() error {
	if w.ctx(FieldSubject) != nil {
		w.writeSep(w.context.flags, sepEndS)
	}
	if w.ctx(FieldGraph) != nil {
		w.writeSep(w.context.flags, sepGraphEnd)
	}
	return w.err
}

func (w *Writer) setBaseURI(uri URI) error {
	if Equal(w.env.BaseURI(), uri) {
		return nil
	}

	if err := w.env.SetBaseURI(uri); err != nil {
		return w.fail(StatusOf(err), "invalid base URI <%s>", uri.IRI)
	}

	if w.abbreviates() {
		if err := w.terminateContext(); err != nil {
			return err
		}
		w.sink("@base <")
		w.sink(uri.IRI)
		w.sinkByte('>')
		w.writeSep(w.context.flags, sepEndDirect)
	}

	w.resetContext(true, true)
	return w.err
}

func (w *Writer) setPrefix(name string, uri URI) error {
	if err := w.env.SetPrefix(name, uri); err != nil {
		return w.fail(StatusOf(err), "invalid namespace <%s> for prefix %q", uri.IRI, name)
	}

	if w.abbreviates() {
		if err := w.terminateContext(); err != nil {
			return err
		}
		if w.flags&WriteContextual != 0 {
			return nil
		}

		w.sink("@prefix ")
		w.sink(name)
		w.sink(": <")
		if err := w.writeURIText(uri.IRI); err != nil {
			return err
		}
		w.sinkByte('>')
		w.writeSep(w.context.flags, sepEndDirect)
	}

	w.resetContext(true, true)
	return w.err
}

func isResource(n Node) bool {
	return n != nil && n.Type() > NodeTypeLiteral
}

func (w *Writer) writeStatement(flags StatementFlags, st Statement) error {
	subject, predicate, object, graph := st.Subject(), st.Predicate(), st.Object(), st.Graph()

	switch {
	case !isResource(subject), !isResource(predicate), object == nil:
		return w.fail(ErrBadArg, "invalid statement %s", st)
	case flags&AnonS != 0 && flags&ListS != 0,
		flags&EmptyS != 0 && flags&ListS != 0,
		flags&AnonO != 0 && flags&ListO != 0,
		flags&EmptyO != 0 && flags&ListO != 0,
		flags&AnonS != 0 && flags&TerseS != 0,
		flags&AnonO != 0 && flags&TerseO != 0,
		flags&TerseS != 0 && flags&ListS == 0,
		flags&TerseO != 0 && flags&ListO == 0:
		return w.fail(ErrBadArg, "conflicting statement flags %s", flags)
	}

	var err error
	switch w.syntax {
	case Turtle:
		err = w.writeTurtleStatement(flags, subject, predicate, object, nil)
	case TriG:
		err = w.writeTriGStatement(flags, subject, predicate, object, graph)
	case NTriples:
		err = w.writeLineStatement(flags, subject, predicate, object, nil)
	case NQuads:
		err = w.writeLineStatement(flags, subject, predicate, object, graph)
	}
	if err != nil {
		return err
	}
	return w.err
}

// writeLineStatement writes one N-Triples or N-Quads line
func (w *Writer) writeLineStatement(flags StatementFlags, subject, predicate, object, graph Node) error {
	if err := w.writeNode(subject, FieldSubject, flags); err != nil {
		return err
	}
	w.sinkByte(' ')
	if err := w.writeNode(predicate, FieldPredicate, flags); err != nil {
		return err
	}
	w.sinkByte(' ')
	if err := w.writeNode(object, FieldObject, flags); err != nil {
		return err
	}
	if graph != nil {
		w.sinkByte(' ')
		if err := w.writeNode(graph, FieldGraph, flags); err != nil {
			return err
		}
	}
	w.sink(" .\n")
	return nil
}

func (w *Writer) writeTriGStatement(flags StatementFlags, subject, predicate, object, graph Node) error {
	if !Equal(graph, w.context.graph) {
		if err := w.terminateContext(); err != nil {
			return err
		}
		w.writeTopLevelSep()
		w.resetContext(true, true)

		if graph != nil {
			if err := w.writeNode(graph, FieldGraph, flags); err != nil {
				return err
			}
			w.writeSep(flags, sepGraphBegin)
			w.context.graph = graph
		}
	}

	return w.writeTurtleStatement(flags, subject, predicate, object, graph)
}

func (w *Writer) writeTurtleStatement(flags StatementFlags, subject, predicate, object, graph Node) error {
	if flags&ListO != 0 && object == RDFNil {
		// "()" objects are written inline
		flags &^= ListO
	}

	if w.context.kind == contextList {
		return w.writeListStatement(flags, subject, predicate, object, graph)
	}

	switch {
	case Equal(subject, w.context.subject) && Equal(predicate, w.context.predicate):
		// Elide subject and predicate, write a comma and the object
		openO := flags&(AnonO|ListO) != 0
		afterEnd := w.lastSep == sepAnonEnd || w.lastSep == sepListEnd

		switch {
		case afterEnd && openO:
			w.writeSep(flags, sepJoinOAA)
		case afterEnd:
			w.writeSep(flags, sepJoinOAN)
		case openO:
			w.writeSep(flags, sepJoinONA)
		default:
			w.writeSep(flags, sepEndO)
		}

	case Equal(subject, w.context.subject):
		// Elide subject, write a semicolon and the predicate
		if w.context.commaIndented && flags&AnonS == 0 {
			w.indent--
			w.context.commaIndented = false
		}

		if w.ctx(FieldPredicate) == nil {
			w.writeSep(flags, sepSP)
		} else {
			w.writeSep(flags, sepEndP)
		}
		if err := w.writePredicate(flags, predicate); err != nil {
			return err
		}

	default:
		if len(w.anonStack) > 0 {
			return w.fail(ErrBadArg, "new subject %s inside anonymous node", subject)
		}

		if w.ctx(FieldSubject) != nil {
			w.writeSep(flags, sepEndS)
		}
		if w.lastSep == sepEndS || w.lastSep == sepEndDirect {
			w.writeTopLevelSep()
		}

		if err := w.writeNode(subject, FieldSubject, flags); err != nil {
			return err
		}
		if flags&(AnonS|ListS) == 0 {
			w.writeSep(flags, sepSP)
		} else if flags&AnonS != 0 {
			w.writeSep(flags, sepAnonSP)
		}

		w.resetContext(false, false)
		w.context.subject = subject

		if flags&ListS == 0 {
			if err := w.writePredicate(flags, predicate); err != nil {
				return err
			}
		}
	}

	if err := w.writeNode(object, FieldObject, flags); err != nil {
		return err
	}

	return w.updateAbbreviationContext(flags, subject, predicate, object, graph)
}

func (w *Writer) writeListStatement(flags StatementFlags, subject, predicate, object, graph Node) error {
	if predicate == RDFFirst && object == RDFNil {
		w.sink("()")
		return nil
	}

	if object == RDFNil {
		w.writeSep(w.context.flags, sepListEnd)
		w.popContext()
		return nil
	}

	if predicate == RDFFirst {
		if err := w.writeNode(object, FieldObject, flags); err != nil {
			return err
		}
	} else {
		w.writeSep(w.context.flags, sepListSep)
	}

	return w.updateAbbreviationContext(flags, subject, predicate, object, graph)
}

func (w *Writer) updateAbbreviationContext(flags StatementFlags, subject, predicate, object, graph Node) error {
	var err error
	if flags&AnonS != 0 {
		err = w.pushContext(contextBlank, flags, graph, subject, predicate)
	} else if flags&ListS != 0 {
		err = w.pushContext(contextList, flags, graph, subject, nil)
	}
	if err != nil {
		return err
	}

	if flags&AnonO != 0 {
		err = w.pushContext(contextBlank, flags, graph, object, nil)
	} else if flags&ListO != 0 {
		err = w.pushContext(contextList, flags, graph, object, nil)
	}
	return err
}

func (w *Writer) writePredicate(flags StatementFlags, predicate Node) error {
	if err := w.writeNode(predicate, FieldPredicate, flags); err != nil {
		return err
	}
	w.writeSep(flags, sepPO)

	w.context.predicates = true
	w.context.commaIndented = false
	w.context.predicate = predicate
	return nil
}

func (w *Writer) endAnon(node Node) error {
	if !w.abbreviates() {
		return nil
	}

	if len(w.anonStack) == 0 {
		return w.fail(ErrBadArg, "unexpected end of anonymous node %s", node)
	}

	w.writeSep(w.context.flags, sepAnonEnd)
	w.popContext()

	if w.context.predicate != nil && Equal(node, w.context.subject) {
		// The finished anonymous node is now a subject with no predicate
		w.context.predicate = nil
	}
	return w.err
}

func (w *Writer) writeNode(node Node, field Field, flags StatementFlags) error {
	switch n := node.(type) {
	case Literal:
		return w.writeLiteral(n, flags)
	case URI:
		return w.writeURINode(n, field)
	case CURIE:
		return w.writeCURIE(n)
	case Blank:
		w.writeBlank(n, field, flags)
	case Variable:
		w.sinkByte('?')
		w.sink(n.Name)
		w.lastSep = sepNone
	}
	return nil
}

// xsdName returns the local name of an XSD datatype, or "" for other datatypes
func (w *Writer) xsdName(datatype Node) string {
	switch dt := datatype.(type) {
	case URI:
		if name, ok := strings.CutPrefix(dt.IRI, NSXSD); ok {
			return name
		}
	case CURIE:
		if uri, ok := w.env.Expand(dt); ok {
			if name, ok := strings.CutPrefix(uri.IRI, NSXSD); ok {
				return name
			}
		}
	}
	return ""
}

func (w *Writer) writeLiteral(l Literal, flags StatementFlags) error {
	var datatype Node
	if l.DatatypeIRI != "" {
		datatype = w.env.datatypeNode(l.DatatypeIRI)
	}

	if w.abbreviates() && datatype != nil && isBareLiteral(w.xsdName(datatype), l.Lexical) {
		w.sink(l.Lexical)
		return nil
	}

	var err error
	if w.abbreviates() && strings.ContainsAny(l.Lexical, "\n\"") {
		w.sink(`"""`)
		err = w.writeLongText(l.Lexical)
		w.sink(`"""`)
	} else {
		w.sinkByte('"')
		err = w.writeShortText(l.Lexical)
		w.sinkByte('"')
	}
	if err != nil {
		return err
	}

	if l.Lang != "" {
		w.sinkByte('@')
		w.sink(l.Lang)
	} else if datatype != nil {
		w.sink("^^")
		return w.writeNode(datatype, -1, flags)
	}
	return nil
}

// isBareLiteral returns true if text reads back as a number or boolean of
// the XSD type name without quotes
func isBareLiteral(name, text string) bool {
	switch name {
	case "boolean":
		return text == "true" || text == "false"
	case "integer":
		return isDigits(trimSign(text))
	case "decimal":
		whole, fraction, ok := strings.Cut(trimSign(text), ".")
		return ok && (whole == "" || isDigits(whole)) && isDigits(fraction)
	}
	return false
}

func trimSign(s string) string {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		return s[1:]
	}
	return s
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(rune(s[i])) {
			return false
		}
	}
	return s != ""
}

func (w *Writer) writeURINode(u URI, field Field) error {
	hasScheme := HasScheme(u.IRI)

	if w.abbreviates() {
		if field == FieldPredicate && u == RDFType {
			w.sinkByte('a')
			return nil
		}
		if u == RDFNil {
			w.sink("()")
			return nil
		}

		if hasScheme && w.flags&WriteExpanded == 0 {
			if curie, ok := w.env.Qualify(u); ok {
				w.writeLocalName(curie.Prefix())
				w.sinkByte(':')
				w.writeLocalName(curie.Name())
				return nil
			}
		}
	}

	base := w.env.BaseURI()
	if !hasScheme && (w.syntax == NTriples || w.syntax == NQuads) && base == nil {
		return w.fail(ErrBadArg, "syntax does not support URI reference <%s>", u.IRI)
	}

	w.sinkByte('<')
	if w.flags&WriteVerbatim != 0 || base == nil {
		if err := w.writeURIText(u.IRI); err != nil {
			return err
		}
		w.sinkByte('>')
		return nil
	}

	abs := ResolveURI(u.IRI, base.Value())
	text := abs
	if w.abbreviates() {
		root := base.Value()
		if w.root != "" && RelativeURI(root, w.root) != root {
			root = w.root
		}
		if RelativeURI(abs, root) != abs {
			text = RelativeURI(abs, base.Value())
		}
	}

	if err := w.writeURIText(text); err != nil {
		return err
	}
	w.sinkByte('>')
	return nil
}

func (w *Writer) writeCURIE(c CURIE) error {
	var expanded URI
	if !w.abbreviates() || w.flags&WriteVerbatim == 0 {
		uri, ok := w.env.Expand(c)
		if !ok {
			return w.fail(ErrBadCurie, "undefined namespace prefix in %s", c.Text)
		}
		expanded = uri
	}

	if !w.abbreviates() {
		w.sinkByte('<')
		if err := w.writeURIText(expanded.IRI); err != nil {
			return err
		}
		w.sinkByte('>')
		return nil
	}

	w.writeLocalName(c.Text)
	return nil
}

func (w *Writer) writeBlank(b Blank, field Field, flags StatementFlags) {
	if w.abbreviates() {
		switch {
		case field == FieldSubject && flags&AnonS != 0, field == FieldObject && flags&AnonO != 0:
			w.writeSep(flags, sepAnonBegin)
			return
		case field == FieldSubject && flags&ListS != 0, field == FieldObject && flags&ListO != 0:
			w.writeSep(flags, sepListBegin)
			return
		case field == FieldSubject && flags&EmptyS != 0,
			field == FieldObject && flags&EmptyO != 0,
			field == FieldGraph && flags&EmptyG != 0:
			w.sink("[]")
			return
		}
	}

	w.sink("_:")
	w.sink(b.ID)
}

func uriMustEscape(c byte) bool {
	switch c {
	case '"', '<', '>', '\\', '^', '`', '{', '|', '}':
		return true
	}
	return c < 0x21 || c > 0x7E
}

func (w *Writer) writeUCHAR(r rune) {
	if r <= 0xFFFF {
		w.sink(fmt.Sprintf("\\u%04X", r))
	} else {
		w.sink(fmt.Sprintf("\\U%08X", r))
	}
}

// writeURIText writes the text of an IRIREF, escaping characters that
// may not appear in one
func (w *Writer) writeURIText(s string) error {
	for i := 0; i < len(s); {
		j := i
		for j < len(s) && !uriMustEscape(s[j]) {
			j++
		}
		w.sink(s[i:j])
		if i = j; i == len(s) {
			break
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size <= 1:
			if w.flags&WriteLax == 0 {
				return w.fail(ErrBadText, "invalid UTF-8 in URI: %X", s[i])
			}
			// Percent-encode corrupt bytes up to the next character
			for i++; i < len(s) && !utf8.RuneStart(s[i]); i++ {
				w.sink(fmt.Sprintf("%%%02X", s[i]))
			}
			continue
		case s[i] >= 0x80 && w.flags&WriteASCII == 0:
			w.sink(s[i : i+size])
		default:
			w.writeUCHAR(r)
		}
		i += size
	}
	return nil
}

func isPNLocalEsc(r rune) bool {
	return r < utf8.RuneSelf && strings.ContainsRune("_~.-!$&'()*+,;=/?#@%", r)
}

// writeLocalName writes a prefix or local name, escaping characters that
// are not valid at their position
func (w *Writer) writeLocalName(s string) {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		valid := isPN_CHARS(r) || r == ':' || (r == '.' && i+size < len(s))
		if i == 0 {
			valid = isPN_CHARS_U(r) || r == ':' || isDigit(r)
		}

		switch {
		case valid:
			w.sink(s[i : i+size])
		case isPNLocalEsc(r):
			w.sinkByte('\\')
			w.sinkByte(byte(r))
		default:
			for _, b := range []byte(s[i : i+size]) {
				w.sink(fmt.Sprintf("%%%02X", b))
			}
		}
		i += size
	}
}

func textMustEscape(c byte) bool {
	return c == '\\' || c == '"' || c < 0x20 || c > 0x7E
}

// writeTextCharacter writes the character at the start of s, escaping it if
// necessary, and returns its length in bytes
func (w *Writer) writeTextCharacter(s string) (int, error) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		if w.flags&WriteLax == 0 {
			return 0, w.fail(ErrBadText, "invalid UTF-8 start: %X", s[0])
		}
		w.sink("�")
		n := 1
		for n < len(s) && !utf8.RuneStart(s[n]) {
			n++
		}
		return n, nil
	}

	if w.flags&WriteASCII != 0 || s[0] < 0x20 || s[0] == 0x7F {
		w.writeUCHAR(r)
	} else {
		w.sink(s[:size])
	}
	return size, nil
}

func (w *Writer) writeShortText(s string) error {
	for i := 0; i < len(s); {
		j := i
		for j < len(s) && !textMustEscape(s[j]) {
			j++
		}
		w.sink(s[i:j])
		if i = j; i == len(s) {
			break
		}

		if esc := w.shortEscape(s[i]); esc != "" {
			w.sink(esc)
			i++
			continue
		}

		n, err := w.writeTextCharacter(s[i:])
		if err != nil {
			return err
		}
		i += n
	}
	return nil
}

func (w *Writer) shortEscape(c byte) string {
	switch c {
	case '\\':
		return `\\`
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	case '"':
		return `\"`
	}

	if w.syntax == Turtle {
		switch c {
		case '\b':
			return `\b`
		case '\f':
			return `\f`
		}
	}
	return ""
}

func (w *Writer) writeLongText(s string) error {
	quotes := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c == '"' {
			quotes++
		} else {
			quotes = 0
		}

		switch c {
		case '\\':
			w.sink(`\\`)
		case '\b':
			w.sink(`\b`)
		case '\n', '\r', '\t', '\f':
			w.sinkByte(c)
		case '"':
			// A third quote in a row, or a final one, would end the string
			if quotes >= 3 || i == len(s)-1 {
				w.sink(`\"`)
			} else {
				w.sinkByte(c)
			}
		default:
			if !textMustEscape(c) {
				w.sinkByte(c)
				break
			}
			n, err := w.writeTextCharacter(s[i:])
			if err != nil {
				return err
			}
			i += n
			continue
		}
		i++
	}
	return nil
}
