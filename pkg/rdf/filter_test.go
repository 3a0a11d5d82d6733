package rdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	b := NewBlank("b")
	input := []Event{
		PrefixEvent("eg", NewURI("http://example.org/")),
		stmt(exS, exP, b, nil, AnonO),
		stmt(b, exP1, exO1, nil, 0),
		EndEvent(b),
		stmt(exO, exP2, exS, nil, 0),
		stmt(exS, exP, exO2, exG, 0),
	}

	tests := []struct {
		name      string
		pattern   [4]Node
		inclusive bool
		want      []Event
	}{
		{
			name:      "subject",
			pattern:   [4]Node{exS, nil, nil, nil},
			inclusive: true,
			want: []Event{
				PrefixEvent("eg", NewURI("http://example.org/")),
				stmt(exS, exP, b, nil, 0),
				stmt(exS, exP, exO2, exG, 0),
			},
		},
		{
			name:      "variables match anything",
			pattern:   [4]Node{NewVariable("s"), exP2, NewVariable("o"), nil},
			inclusive: true,
			want: []Event{
				PrefixEvent("eg", NewURI("http://example.org/")),
				stmt(exO, exP2, exS, nil, 0),
			},
		},
		{
			name:      "graph",
			pattern:   [4]Node{nil, nil, nil, exG},
			inclusive: true,
			want: []Event{
				PrefixEvent("eg", NewURI("http://example.org/")),
				stmt(exS, exP, exO2, exG, 0),
			},
		},
		{
			name:      "exclusive",
			pattern:   [4]Node{exS, nil, nil, nil},
			inclusive: false,
			want: []Event{
				PrefixEvent("eg", NewURI("http://example.org/")),
				stmt(b, exP1, exO1, nil, 0),
				stmt(exO, exP2, exS, nil, 0),
			},
		},
		{
			name:      "no match",
			pattern:   [4]Node{exG, nil, nil, nil},
			inclusive: true,
			want: []Event{
				PrefixEvent("eg", NewURI("http://example.org/")),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got EventCollector
			p := tt.pattern
			f := NewFilter(&got, p[0], p[1], p[2], p[3], tt.inclusive)
			for _, event := range input {
				require.NoError(t, f.OnEvent(event))
			}
			requireEvents(t, tt.want, got.Events)
		})
	}
}

func TestFilterOutputIsWritable(t *testing.T) {
	var events EventCollector
	r := NewReader(NewWorld(), Turtle, nil, &events)
	require.NoError(t, r.Start(StringSource(
		"<http://example.org/s> <http://example.org/p> [ <http://example.org/p1> <http://example.org/o1> ] .")))
	require.NoError(t, r.ReadDocument())
	require.NoError(t, r.Finish())

	var out EventCollector
	f := NewFilter(&out, nil, exP1, nil, nil, true)
	for _, event := range events.Events {
		require.NoError(t, f.OnEvent(event))
	}

	text := writeEvents(t, Turtle, out.Events)
	assert.Contains(t, text, "<http://example.org/p1> <http://example.org/o1> .")
	assert.NotContains(t, text, "[")
}

func TestParsePattern(t *testing.T) {
	st, err := ParsePattern(NewWorld(), "?s <http://example.org/p> $o <http://example.org/g> .")
	require.NoError(t, err)
	assert.Equal(t, NewVariable("s"), st.Subject())
	assert.Equal(t, exP, st.Predicate())
	assert.Equal(t, NewVariable("o"), st.Object())
	assert.Equal(t, exG, st.Graph())

	_, err = ParsePattern(NewWorld(), "")
	assert.ErrorIs(t, err, ErrBadArg)

	_, err = ParsePattern(NewWorld(),
		"?s <http://example.org/p> ?o .\n?s <http://example.org/p> ?o .")
	assert.ErrorIs(t, err, ErrBadArg)

	_, err = ParsePattern(NewWorld(), "?s <http://example.org/p> .")
	assert.ErrorIs(t, err, ErrBadSyntax)
}
