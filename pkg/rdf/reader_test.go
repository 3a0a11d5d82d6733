package rdf

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEvents(t *testing.T, syntax Syntax, text string, opts ...ReaderOption) ([]Event, error) {
	t.Helper()

	var events EventCollector
	r := NewReader(NewWorld(), syntax, nil, &events, opts...)
	require.NoError(t, r.Start(StringSource(text)))
	err := r.ReadDocument()
	require.NoError(t, r.Finish())
	return events.Events, err
}

func requireEvents(t *testing.T, want, got []Event) {
	t.Helper()

	require.Len(t, got, len(want), "got events %v", got)
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "event %d: want %s, got %s", i, want[i], got[i])
	}
}

func stmt(s, p, o, g Node, flags StatementFlags) Event {
	return StatementEvent(newPatternStatement(s, p, o, g, nil), flags)
}

func TestReaderDocumentEvents(t *testing.T) {
	doc := `@prefix eg: <http://example.org/> . @base <http://example.org/base> . eg:s eg:p1 eg:o1 ; eg:p2 eg:o2 .`

	events, err := readEvents(t, Turtle, doc)
	require.NoError(t, err)

	requireEvents(t, []Event{
		PrefixEvent("eg", NewURI("http://example.org/")),
		BaseEvent(NewURI("http://example.org/base")),
		stmt(exS, exP1, exO1, nil, 0),
		stmt(exS, exP2, exO2, nil, 0),
	}, events)
}

func TestReaderSmallBlocks(t *testing.T) {
	doc := "@prefix eg: <http://example.org/> .\neg:s eg:p eg:o1 , eg:o2 .\n"

	events, err := readEvents(t, Turtle, doc, WithBlockSize(1))
	require.NoError(t, err)

	requireEvents(t, []Event{
		PrefixEvent("eg", NewURI("http://example.org/")),
		stmt(exS, exP, exO1, nil, 0),
		stmt(exS, exP, exO2, nil, 0),
	}, events)
}

func TestReaderAnonymousNodes(t *testing.T) {
	q := NewURI("http://example.org/q")
	b1 := NewBlank("b1")

	tests := []struct {
		name string
		doc  string
		want []Event
	}{
		{
			name: "object",
			doc:  "<http://example.org/s> <http://example.org/p> [ <http://example.org/q> <http://example.org/o> ] .",
			want: []Event{
				stmt(exS, exP, b1, nil, AnonO),
				stmt(b1, q, exO, nil, 0),
				EndEvent(b1),
			},
		},
		{
			name: "subject",
			doc:  "[ <http://example.org/q> <http://example.org/o> ] <http://example.org/p> <http://example.org/s> .",
			want: []Event{
				stmt(b1, q, exO, nil, AnonS),
				EndEvent(b1),
				stmt(b1, exP, exS, nil, 0),
			},
		},
		{
			name: "bare subject",
			doc:  "[ <http://example.org/q> <http://example.org/o> ] .",
			want: []Event{
				stmt(b1, q, exO, nil, AnonS),
				EndEvent(b1),
			},
		},
		{
			name: "empty object",
			doc:  "<http://example.org/s> <http://example.org/p> [] .",
			want: []Event{
				stmt(exS, exP, b1, nil, EmptyO),
			},
		},
		{
			name: "empty subject",
			doc:  "[] <http://example.org/p> <http://example.org/o> .",
			want: []Event{
				stmt(b1, exP, exO, nil, EmptyS),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := readEvents(t, Turtle, tt.doc)
			require.NoError(t, err)
			requireEvents(t, tt.want, events)
		})
	}
}

func TestReaderCollections(t *testing.T) {
	a := NewURI("http://example.org/a")
	b := NewURI("http://example.org/b")
	b1, b2 := NewBlank("b1"), NewBlank("b2")

	tests := []struct {
		name string
		doc  string
		want []Event
	}{
		{
			name: "object",
			doc:  "<http://example.org/s> <http://example.org/p> ( <http://example.org/a> <http://example.org/b> ) .",
			want: []Event{
				stmt(exS, exP, b1, nil, ListO),
				stmt(b1, RDFFirst, a, nil, 0),
				stmt(b1, RDFRest, b2, nil, 0),
				stmt(b2, RDFFirst, b, nil, 0),
				stmt(b2, RDFRest, RDFNil, nil, 0),
			},
		},
		{
			name: "subject",
			doc:  "( <http://example.org/a> ) <http://example.org/p> <http://example.org/o> .",
			want: []Event{
				stmt(b1, RDFFirst, a, nil, ListS),
				stmt(b1, RDFRest, RDFNil, nil, 0),
				stmt(b1, exP, exO, nil, 0),
			},
		},
		{
			name: "empty",
			doc:  "<http://example.org/s> <http://example.org/p> () .",
			want: []Event{
				stmt(exS, exP, RDFNil, nil, 0),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := readEvents(t, Turtle, tt.doc)
			require.NoError(t, err)
			requireEvents(t, tt.want, events)
		})
	}
}

func TestReaderLiterals(t *testing.T) {
	doc := `<http://example.org/s> <http://example.org/p> "chat"@fr , 'x' , """multi
line""" , "tab\there é" , 1 , -1.5 , 1e3 , true , "1"^^<http://example.org/int> .`

	events, err := readEvents(t, Turtle, doc)
	require.NoError(t, err)

	want := []Node{
		NewPlainLiteral("chat", "fr"),
		NewString("x"),
		NewString("multi\nline"),
		NewString("tab\there é"),
		NewTypedLiteral("1", XSDInteger),
		NewTypedLiteral("-1.5", XSDDecimal),
		NewTypedLiteral("1e3", XSDDouble),
		NewTypedLiteral("true", XSDBoolean),
		NewTypedLiteral("1", NewURI("http://example.org/int")),
	}

	require.Len(t, events, len(want))
	for i, n := range want {
		assert.Equal(t, n, events[i].Statement.Object(), "object %d", i)
	}
}

func TestReaderChunks(t *testing.T) {
	doc := "@prefix eg: <http://example.org/> .\neg:s eg:p eg:o1 , eg:o2 .\n"

	var events EventCollector
	r := NewReader(NewWorld(), Turtle, nil, &events)
	assert.Equal(t, ReaderUnstarted, r.State())
	assert.ErrorIs(t, r.ReadChunk(), ErrBadCall)

	require.NoError(t, r.Start(StringSource(doc)))
	assert.Equal(t, ReaderStarted, r.State())
	assert.ErrorIs(t, r.Start(StringSource(doc)), ErrBadCall)

	require.NoError(t, r.ReadChunk())
	assert.Equal(t, ReaderReading, r.State())
	assert.Len(t, events.Events, 1)

	require.NoError(t, r.ReadChunk())
	assert.Len(t, events.Events, 3)

	assert.ErrorIs(t, r.ReadChunk(), Failure)
	assert.Equal(t, ReaderFinished, r.State())

	require.NoError(t, r.Finish())
	require.NoError(t, r.Finish())
	assert.ErrorIs(t, r.ReadChunk(), ErrBadCall)

	// A finished reader can be started again
	require.NoError(t, r.Start(StringSource("<http://example.org/s> <http://example.org/p> <http://example.org/o> .")))
	require.NoError(t, r.ReadDocument())
	assert.Len(t, events.Events, 4)

	uri, ok := r.Env().Prefix("eg")
	require.True(t, ok)
	assert.Equal(t, "http://example.org/", uri.IRI)
}

func TestReaderSyntaxErrorCursor(t *testing.T) {
	var buf bytes.Buffer
	world := NewWorld(WithLogger(log.NewLogfmtLogger(&buf)))

	var events EventCollector
	r := NewReader(world, Turtle, nil, &events)
	require.NoError(t, r.Start(StringSource("\n\n<http://example.org/s> <http://example.org/p> .")))

	err := r.ReadDocument()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadSyntax)
	assert.Equal(t, ReaderErrored, r.State())

	var syntaxErr *SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, "string", syntaxErr.Cursor.Name)
	assert.Equal(t, uint(3), syntaxErr.Cursor.Line)
	assert.Equal(t, uint(46), syntaxErr.Cursor.Column)

	assert.Contains(t, buf.String(), "level=error")
	assert.Contains(t, buf.String(), "line=3")

	require.NoError(t, r.Finish())
	assert.Equal(t, ReaderErrored, r.State())
}

func TestReaderLax(t *testing.T) {
	doc := "<http://example.org/s> <http://example.org/p> .\n" +
		"<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n"

	_, err := readEvents(t, Turtle, doc)
	assert.ErrorIs(t, err, ErrBadSyntax)

	events, err := readEvents(t, Turtle, doc, WithReaderFlags(ReadLax))
	require.NoError(t, err)
	requireEvents(t, []Event{stmt(exS, exP, exO, nil, 0)}, events)
}

func TestReaderStackLimit(t *testing.T) {
	doc := "<http://example.org/s> <http://example.org/p> [ <http://example.org/p> [ <http://example.org/p> [ <http://example.org/p> <http://example.org/o> ] ] ] ."

	_, err := readEvents(t, Turtle, doc, WithStackLimit(2))
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = readEvents(t, Turtle, doc, WithStackLimit(3))
	assert.NoError(t, err)
}

func TestReaderBaseResolution(t *testing.T) {
	doc := "@base <http://example.org/> .\n@prefix eg: <ns#> .\n<s> <p> eg:o ."

	events, err := readEvents(t, Turtle, doc)
	require.NoError(t, err)
	requireEvents(t, []Event{
		BaseEvent(NewURI("http://example.org/")),
		PrefixEvent("eg", NewURI("http://example.org/ns#")),
		stmt(exS, exP, NewURI("http://example.org/ns#o"), nil, 0),
	}, events)

	events, err = readEvents(t, Turtle, "@base <http://example.org/> .\n<s> <p> <o> .", WithReaderFlags(ReadRelative))
	require.NoError(t, err)
	requireEvents(t, []Event{
		BaseEvent(NewURI("http://example.org/")),
		stmt(NewURI("s"), NewURI("p"), NewURI("o"), nil, 0),
	}, events)
}

func TestReaderSPARQLDirectives(t *testing.T) {
	doc := "PREFIX eg: <http://example.org/>\nBASE <http://example.org/>\n<s> eg:p eg:o ."

	events, err := readEvents(t, Turtle, doc)
	require.NoError(t, err)
	requireEvents(t, []Event{
		PrefixEvent("eg", NewURI("http://example.org/")),
		BaseEvent(NewURI("http://example.org/")),
		stmt(exS, exP, exO, nil, 0),
	}, events)

	_, err = readEvents(t, Turtle, "BASE <http://example.org/> .")
	assert.ErrorIs(t, err, ErrBadSyntax)
}

func TestReaderPrefixedNames(t *testing.T) {
	doc := "@prefix eg: <http://example.org/> .\neg:s a eg:o ."

	events, err := readEvents(t, Turtle, doc)
	require.NoError(t, err)
	requireEvents(t, []Event{
		PrefixEvent("eg", NewURI("http://example.org/")),
		stmt(exS, RDFType, exO, nil, 0),
	}, events)

	events, err = readEvents(t, Turtle, doc, WithReaderFlags(ReadPrefixed))
	require.NoError(t, err)
	requireEvents(t, []Event{
		PrefixEvent("eg", NewURI("http://example.org/")),
		stmt(NewCURIE("eg", "s"), RDFType, NewCURIE("eg", "o"), nil, 0),
	}, events)

	_, err = readEvents(t, Turtle, "nope:s nope:p nope:o .")
	assert.ErrorIs(t, err, ErrBadCurie)
}

func TestReaderVariables(t *testing.T) {
	doc := "?s <http://example.org/p> $o ."

	_, err := readEvents(t, Turtle, doc)
	assert.ErrorIs(t, err, ErrBadSyntax)

	events, err := readEvents(t, Turtle, doc, WithReaderFlags(ReadVariables))
	require.NoError(t, err)
	requireEvents(t, []Event{stmt(NewVariable("s"), exP, NewVariable("o"), nil, 0)}, events)
}

func TestReaderBlankLabels(t *testing.T) {
	doc := "_:b1 <http://example.org/p> _:x ."

	events, err := readEvents(t, Turtle, doc)
	require.NoError(t, err)
	requireEvents(t, []Event{stmt(NewBlank("B1"), exP, NewBlank("x"), nil, 0)}, events)

	events, err = readEvents(t, Turtle, doc, WithReaderFlags(ReadGlobal))
	require.NoError(t, err)
	requireEvents(t, []Event{stmt(NewBlank("b1"), exP, NewBlank("x"), nil, 0)}, events)

	_, err = readEvents(t, Turtle, doc+"\n_:B2 <http://example.org/p> _:x .")
	assert.ErrorIs(t, err, ErrIDClash)

	var events2 EventCollector
	r := NewReader(NewWorld(WithBlankPrefix("doc")), Turtle, nil, &events2)
	require.NoError(t, r.Start(StringSource("_:x <http://example.org/p> [] .")))
	require.NoError(t, r.ReadDocument())
	require.NoError(t, r.Finish())
	requireEvents(t, []Event{stmt(NewBlank("docx"), exP, NewBlank("docb1"), nil, EmptyO)}, events2.Events)
}

func TestReaderNTriples(t *testing.T) {
	doc := "# comment\n" +
		"<http://example.org/s> <http://example.org/p> \"x\"@en .\n" +
		"_:a <http://example.org/p> \"1\"^^<http://www.w3.org/2001/XMLSchema#integer> .\n"

	events, err := readEvents(t, NTriples, doc)
	require.NoError(t, err)
	requireEvents(t, []Event{
		stmt(exS, exP, NewPlainLiteral("x", "en"), nil, 0),
		stmt(NewBlank("a"), exP, NewInteger(1), nil, 0),
	}, events)

	_, err = readEvents(t, NTriples, "<s> <p> <o> .\n")
	assert.ErrorIs(t, err, ErrBadURI)

	_, err = readEvents(t, NTriples, "<http://example.org/s> <http://example.org/p> 'x' .\n")
	assert.ErrorIs(t, err, ErrBadSyntax)
}

func TestReaderNQuads(t *testing.T) {
	doc := "<http://example.org/s> <http://example.org/p> <http://example.org/o> <http://example.org/g> .\n" +
		"<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n"

	events, err := readEvents(t, NQuads, doc)
	require.NoError(t, err)
	requireEvents(t, []Event{
		stmt(exS, exP, exO, exG, 0),
		stmt(exS, exP, exO, nil, 0),
	}, events)
}

func TestReaderTriG(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []Event
	}{
		{
			name: "named graph",
			doc:  "<http://example.org/g> { <http://example.org/s> <http://example.org/p> <http://example.org/o> . }",
			want: []Event{stmt(exS, exP, exO, exG, 0)},
		},
		{
			name: "graph keyword without final dot",
			doc:  "GRAPH <http://example.org/g> { <http://example.org/s> <http://example.org/p> <http://example.org/o> }",
			want: []Event{stmt(exS, exP, exO, exG, 0)},
		},
		{
			name: "default graph block",
			doc:  "{ <http://example.org/s> <http://example.org/p> <http://example.org/o> }",
			want: []Event{stmt(exS, exP, exO, nil, 0)},
		},
		{
			name: "anonymous graph",
			doc:  "[] { <http://example.org/s> <http://example.org/p> <http://example.org/o> }",
			want: []Event{stmt(exS, exP, exO, NewBlank("b1"), EmptyG)},
		},
		{
			name: "triples outside graphs",
			doc:  "<http://example.org/s> <http://example.org/p> <http://example.org/o> .",
			want: []Event{stmt(exS, exP, exO, nil, 0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := readEvents(t, TriG, tt.doc)
			require.NoError(t, err)
			requireEvents(t, tt.want, events)
		})
	}
}

func TestReaderDefaultGraph(t *testing.T) {
	events, err := readEvents(t, Turtle,
		"<http://example.org/s> <http://example.org/p> <http://example.org/o> .",
		WithDefaultGraph(exG))
	require.NoError(t, err)
	requireEvents(t, []Event{stmt(exS, exP, exO, exG, 0)}, events)
}

func TestReaderFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.ttl")
	require.NoError(t, os.WriteFile(path, []byte("<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n"), 0o644))

	var events EventCollector
	r := NewReader(NewWorld(), Turtle, nil, &events)
	require.NoError(t, r.Start(FileSource(path)))
	require.NoError(t, r.ReadDocument())
	require.NoError(t, r.Finish())

	sts := events.Statements()
	require.Len(t, sts, 1)
	assert.True(t, sts[0].Equal(MustStatement(exS, exP, exO, nil)))

	cur, ok := sts[0].Cursor()
	require.True(t, ok)
	assert.Equal(t, path, cur.Name)
	assert.Equal(t, uint(1), cur.Line)

	missing := NewReader(NewWorld(), Turtle, nil, &events)
	assert.Error(t, missing.Start(FileSource(filepath.Join(t.TempDir(), "missing.ttl"))))
	assert.Equal(t, ReaderErrored, missing.State())
}

func TestReaderSinkError(t *testing.T) {
	stop := errors.New("stop")
	sink := SinkFunc(func(event Event) error { return stop })

	r := NewReader(NewWorld(), Turtle, nil, sink)
	require.NoError(t, r.Start(StringSource("<http://example.org/s> <http://example.org/p> <http://example.org/o> .")))
	assert.ErrorIs(t, r.ReadDocument(), stop)
	assert.Equal(t, ReaderErrored, r.State())
}
