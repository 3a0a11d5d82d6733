package rdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEvents(t *testing.T, syntax Syntax, events []Event, opts ...WriterOption) string {
	t.Helper()

	var sb strings.Builder
	w := NewWriter(NewWorld(), syntax, nil, &sb, opts...)
	for _, event := range events {
		require.NoError(t, w.OnEvent(event))
	}
	require.NoError(t, w.Finish())
	return sb.String()
}

func TestWriterTurtleAbbreviation(t *testing.T) {
	q := NewURI("http://example.org/q")
	b1 := NewBlank("b1")

	tests := []struct {
		name   string
		events []Event
		want   string
	}{
		{
			name: "object list",
			events: []Event{
				stmt(exS, exP, exO1, nil, 0),
				stmt(exS, exP, exO2, nil, 0),
			},
			want: "<http://example.org/s>\n\t<http://example.org/p> <http://example.org/o1> ,\n\t\t<http://example.org/o2> .\n",
		},
		{
			name: "predicate list",
			events: []Event{
				stmt(exS, exP1, exO1, nil, 0),
				stmt(exS, exP2, exO2, nil, 0),
			},
			want: "<http://example.org/s>\n\t<http://example.org/p1> <http://example.org/o1> ;\n\t<http://example.org/p2> <http://example.org/o2> .\n",
		},
		{
			name: "anonymous object",
			events: []Event{
				stmt(exS, exP, b1, nil, AnonO),
				stmt(b1, q, exO, nil, 0),
				EndEvent(b1),
			},
			want: "<http://example.org/s>\n\t<http://example.org/p> [\n\t\t<http://example.org/q> <http://example.org/o>\n\t] .\n",
		},
		{
			name: "empty anonymous object",
			events: []Event{
				stmt(exS, exP, b1, nil, EmptyO),
			},
			want: "<http://example.org/s>\n\t<http://example.org/p> [] .\n",
		},
		{
			name: "rdf type",
			events: []Event{
				stmt(exS, RDFType, exO, nil, 0),
			},
			want: "<http://example.org/s>\n\ta <http://example.org/o> .\n",
		},
		{
			name: "empty list",
			events: []Event{
				stmt(exS, exP, RDFNil, nil, 0),
			},
			want: "<http://example.org/s>\n\t<http://example.org/p> () .\n",
		},
		{
			name: "bare numbers and booleans",
			events: []Event{
				stmt(exS, exP, NewInteger(1), nil, 0),
				stmt(exS, exP, NewBoolean(false), nil, 0),
			},
			want: "<http://example.org/s>\n\t<http://example.org/p> 1 ,\n\t\tfalse .\n",
		},
		{
			name: "two subjects",
			events: []Event{
				stmt(exS, exP, exO, nil, 0),
				stmt(exO, exP, exS, nil, 0),
			},
			want: "<http://example.org/s>\n\t<http://example.org/p> <http://example.org/o> .\n\n" +
				"<http://example.org/o>\n\t<http://example.org/p> <http://example.org/s> .\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, writeEvents(t, Turtle, tt.events))
		})
	}
}

func TestWriterTurtleList(t *testing.T) {
	var events EventCollector
	r := NewReader(NewWorld(), Turtle, nil, &events)
	require.NoError(t, r.Start(StringSource("<http://example.org/s> <http://example.org/p> ( 1 2 ) .")))
	require.NoError(t, r.ReadDocument())
	require.NoError(t, r.Finish())

	assert.Equal(t,
		"<http://example.org/s>\n\t<http://example.org/p> (\n\t\t1\n\t\t2\n\t) .\n",
		writeEvents(t, Turtle, events.Events))
}

func TestWriterDirectives(t *testing.T) {
	events := []Event{
		PrefixEvent("eg", NewURI("http://example.org/")),
		stmt(exS, exP, exO, nil, 0),
	}

	assert.Equal(t,
		"@prefix eg: <http://example.org/> .\n\neg:s\n\teg:p eg:o .\n",
		writeEvents(t, Turtle, events))

	assert.Equal(t,
		"eg:s\n\teg:p eg:o .\n",
		writeEvents(t, Turtle, events, WithWriterFlags(WriteContextual)))

	assert.Equal(t,
		"@prefix eg: <http://example.org/> .\n\n<http://example.org/s>\n\t<http://example.org/p> <http://example.org/o> .\n",
		writeEvents(t, Turtle, events, WithWriterFlags(WriteExpanded)))

	// Directives are dropped by line-based syntaxes
	assert.Equal(t,
		"<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n",
		writeEvents(t, NTriples, events))
}

func TestWriterBaseURI(t *testing.T) {
	events := []Event{
		BaseEvent(NewURI("http://example.org/")),
		stmt(exS, exP, NewURI("http://other.example/x"), nil, 0),
	}

	assert.Equal(t,
		"@base <http://example.org/> .\n\n<s>\n\t<p> <http://other.example/x> .\n",
		writeEvents(t, Turtle, events))

	assert.Equal(t,
		"<http://example.org/s> <http://example.org/p> <http://other.example/x> .\n",
		writeEvents(t, NTriples, events))
}

func TestWriterTriG(t *testing.T) {
	events := []Event{
		stmt(exS, exP, exO, exG, 0),
	}
	assert.Equal(t,
		"<http://example.org/g> {\n\t<http://example.org/s>\n\t\t<http://example.org/p> <http://example.org/o> .\n}\n",
		writeEvents(t, TriG, events))

	// Graphs are dropped by Turtle
	assert.Equal(t,
		"<http://example.org/s>\n\t<http://example.org/p> <http://example.org/o> .\n",
		writeEvents(t, Turtle, events))
}

func TestWriterLineSyntaxes(t *testing.T) {
	assert.Equal(t,
		"<http://example.org/s> <http://example.org/p> \"hello\"@en .\n",
		writeEvents(t, NTriples, []Event{stmt(exS, exP, NewPlainLiteral("hello", "en"), nil, 0)}))

	assert.Equal(t,
		"<http://example.org/s> <http://example.org/p> \"1\"^^<http://www.w3.org/2001/XMLSchema#integer> .\n",
		writeEvents(t, NTriples, []Event{stmt(exS, exP, NewInteger(1), nil, 0)}))

	assert.Equal(t,
		"<http://example.org/s> <http://example.org/p> <http://example.org/o> <http://example.org/g> .\n",
		writeEvents(t, NQuads, []Event{stmt(exS, exP, exO, exG, 0)}))

	assert.Equal(t,
		"<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n",
		writeEvents(t, NTriples, []Event{stmt(exS, exP, exO, exG, 0)}))

	// Anonymous node flags are ignored
	b1 := NewBlank("b1")
	assert.Equal(t,
		"<http://example.org/s> <http://example.org/p> _:b1 .\n_:b1 <http://example.org/p> <http://example.org/o> .\n",
		writeEvents(t, NTriples, []Event{
			stmt(exS, exP, b1, nil, AnonO),
			stmt(b1, exP, exO, nil, 0),
			EndEvent(b1),
		}))
}

func TestWriterEscapes(t *testing.T) {
	tests := []struct {
		name   string
		syntax Syntax
		flags  WriterFlags
		text   string
		want   string
	}{
		{"short escapes", NTriples, 0, "a\"b\\c\nd\te", `"a\"b\\c\nd\te"`},
		{"control character", NTriples, 0, "x\x01", `"x\u0001"`},
		{"unicode kept", NTriples, 0, "é", `"é"`},
		{"ascii", NTriples, WriteASCII, "é", `"\u00E9"`},
		{"astral ascii", NTriples, WriteASCII, "😀", `"\U0001F600"`},
		{"long string", Turtle, 0, "a\nb", "\"\"\"a\nb\"\"\""},
		{"long string with final quote", Turtle, 0, `say "hi"`, `"""say "hi\""""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			w := NewWriter(NewWorld(), tt.syntax, nil, &sb, WithWriterFlags(tt.flags))
			require.NoError(t, w.WriteNode(NewString(tt.text)))
			require.NoError(t, w.Finish())
			assert.Equal(t, tt.want, sb.String())
		})
	}
}

func TestWriterInvalidUTF8(t *testing.T) {
	var sb strings.Builder
	w := NewWriter(NewWorld(), NTriples, nil, &sb)
	assert.ErrorIs(t, w.WriteNode(NewString("a\xffb")), ErrBadText)

	sb.Reset()
	w = NewWriter(NewWorld(), NTriples, nil, &sb, WithWriterFlags(WriteLax))
	require.NoError(t, w.WriteNode(NewString("a\xffb")))
	require.NoError(t, w.Finish())
	assert.Equal(t, "\"a�b\"", sb.String())
}

func TestWriterErrors(t *testing.T) {
	var sb strings.Builder

	w := NewWriter(NewWorld(), Turtle, nil, &sb)
	err := w.OnEvent(stmt(exS, exP, NewCURIE("nope", "o"), nil, 0))
	assert.ErrorIs(t, err, ErrBadCurie)

	w = NewWriter(NewWorld(), Turtle, nil, &sb)
	err = w.OnEvent(stmt(NewString("x"), exP, exO, nil, 0))
	assert.ErrorIs(t, err, ErrBadArg)

	w = NewWriter(NewWorld(), Turtle, nil, &sb)
	assert.ErrorIs(t, w.OnEvent(EndEvent(NewBlank("b1"))), ErrBadArg)

	w = NewWriter(NewWorld(), Turtle, nil, &sb)
	err = w.OnEvent(stmt(exS, exP, exO, nil, AnonO|ListO))
	assert.ErrorIs(t, err, ErrBadArg)

	w = NewWriter(NewWorld(), NTriples, nil, &sb)
	err = w.OnEvent(stmt(NewURI("s"), exP, exO, nil, 0))
	assert.ErrorIs(t, err, ErrBadArg)
}

func TestWriterMaxDepth(t *testing.T) {
	b1, b2 := NewBlank("b1"), NewBlank("b2")

	var sb strings.Builder
	w := NewWriter(NewWorld(), Turtle, nil, &sb, WithMaxDepth(1))
	require.NoError(t, w.OnEvent(stmt(exS, exP, b1, nil, AnonO)))
	assert.ErrorIs(t, w.OnEvent(stmt(b1, exP, b2, nil, AnonO)), ErrOverflow)
}

func TestWriterRoundTrip(t *testing.T) {
	docs := []string{
		"@prefix eg: <http://example.org/> .\n\neg:s\n\teg:p eg:o1 ,\n\t\teg:o2 ;\n\teg:q eg:o .\n",
		"<http://example.org/s>\n\t<http://example.org/p> [\n\t\t<http://example.org/q> <http://example.org/o>\n\t] .\n",
		"<http://example.org/s>\n\t<http://example.org/p> \"\"\"two\nlines\"\"\"@en .\n",
	}

	for _, doc := range docs {
		var events EventCollector
		r := NewReader(NewWorld(), Turtle, nil, &events)
		require.NoError(t, r.Start(StringSource(doc)))
		require.NoError(t, r.ReadDocument())
		require.NoError(t, r.Finish())

		assert.Equal(t, doc, writeEvents(t, Turtle, events.Events))
	}
}

func TestWriterFlagsString(t *testing.T) {
	assert.Equal(t, "0", WriterFlags(0).String())
	assert.Equal(t, "WriteASCII|WriteTerse", (WriteASCII | WriteTerse).String())
}
