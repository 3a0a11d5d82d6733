package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aleksaelezovic/tristore/pkg/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prefixedDoc = "@prefix eg: <http://example.org/> .\n" +
	"@base <http://example.org/base> .\n" +
	"eg:s eg:p1 eg:o1 ;\n" +
	"     eg:p2 eg:o2 .\n"

func TestLoads(t *testing.T) {
	m, err := Loads(rdf.NewWorld(), prefixedDoc)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, IndexSPO|IndexOPS, m.Flags())

	got := collect(t, m.All())
	require.Len(t, got, 2)
	assert.True(t, got[0].Equal(rdf.MustStatement(exS, rdf.NewURI("http://example.org/p1"), exO1, nil)))
	assert.True(t, got[1].Equal(rdf.MustStatement(exS, rdf.NewURI("http://example.org/p2"), exO2, nil)))
}

func TestLoadsOptions(t *testing.T) {
	t.Run("graph", func(t *testing.T) {
		m, err := Loads(rdf.NewWorld(), prefixedDoc, LoadGraph(exG))
		require.NoError(t, err)
		defer m.Close()

		n, err := m.Count(nil, nil, nil, exG)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("model flags", func(t *testing.T) {
		m, err := Loads(rdf.NewWorld(), prefixedDoc,
			LoadModelFlags(IndexSPO|IndexPSO|StoreCursors), LoadModelOptions(WithBadger()))
		require.NoError(t, err)
		defer m.Close()

		assert.Equal(t, IndexSPO|IndexPSO|StoreCursors, m.Flags())

		st, ok, err := m.GetStatement(nil, rdf.NewURI("http://example.org/p2"), nil, nil)
		require.NoError(t, err)
		require.True(t, ok)
		cur, ok := st.Cursor()
		require.True(t, ok)
		assert.Equal(t, uint(4), cur.Line)
	})

	t.Run("env", func(t *testing.T) {
		env, err := rdf.NewEnvWithBase(rdf.NewURI("http://example.org/"))
		require.NoError(t, err)

		m, err := Loads(rdf.NewWorld(), "<s> <p> <o> .", LoadEnv(env))
		require.NoError(t, err)
		defer m.Close()

		ok, err := m.Ask(exS, exP, exO, nil)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("trig", func(t *testing.T) {
		m, err := Loads(rdf.NewWorld(),
			"<http://example.org/g> { <http://example.org/s> <http://example.org/p> <http://example.org/o> . }",
			LoadSyntax(rdf.TriG))
		require.NoError(t, err)
		defer m.Close()

		assert.Equal(t, IndexSPO|IndexOPS|IndexGraphs, m.Flags())
		g, err := m.Get(exS, exP, exO, nil)
		require.NoError(t, err)
		assert.Equal(t, exG, g)
	})
}

func TestLoadsErrors(t *testing.T) {
	_, err := Loads(rdf.NewWorld(), "<http://example.org/s> <http://example.org/p> .")
	assert.ErrorIs(t, err, rdf.ErrBadSyntax)

	// The model cannot hold relative URIs
	_, err = Loads(rdf.NewWorld(), "@base <http://example.org/> .\n<s> <p> <o> .",
		LoadFlags(rdf.ReadRelative))
	assert.ErrorIs(t, err, rdf.ErrBadArg)

	// Or prefixed names
	_, err = Loads(rdf.NewWorld(), "@prefix eg: <http://example.org/> .\neg:s a eg:o .",
		LoadFlags(rdf.ReadPrefixed))
	assert.ErrorIs(t, err, rdf.ErrBadArg)

	_, err = Loads(rdf.NewWorld(), prefixedDoc, LoadModelFlags(1<<20))
	assert.ErrorIs(t, err, ErrUnsupportedFlags)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.ttl")
	require.NoError(t, os.WriteFile(path, []byte("<s> <http://example.org/p> <http://example.org/o> .\n"), 0o644))

	m, err := Load(rdf.NewWorld(), path)
	require.NoError(t, err)
	defer m.Close()

	s, err := m.Get(nil, exP, exO, nil)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.True(t, strings.HasPrefix(s.Value(), "file://"), s.Value())
	assert.True(t, strings.HasSuffix(s.Value(), "/s"), s.Value())

	_, err = Load(rdf.NewWorld(), filepath.Join(dir, "missing.ttl"))
	assert.Error(t, err)
}

func TestDumps(t *testing.T) {
	m := newModel(t, IndexSPO|IndexOPS)
	require.NoError(t, m.Add(exS, exP, exO2, nil))
	require.NoError(t, m.Add(exS, exP, exO1, nil))

	text, err := Dumps(m)
	require.NoError(t, err)
	assert.Equal(t,
		"<http://example.org/s>\n\t<http://example.org/p> <http://example.org/o1> ,\n\t\t<http://example.org/o2> .\n",
		text)

	text, err = Dumps(m, DumpSyntax(rdf.NTriples))
	require.NoError(t, err)
	assert.Equal(t,
		"<http://example.org/s> <http://example.org/p> <http://example.org/o1> .\n"+
			"<http://example.org/s> <http://example.org/p> <http://example.org/o2> .\n",
		text)

	empty := newModel(t, IndexSPO)
	text, err = Dumps(empty)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestDumpsEnv(t *testing.T) {
	m := newModel(t, IndexSPO)
	require.NoError(t, m.Add(exS, exP, exO, nil))

	env := rdf.NewEnv()
	require.NoError(t, env.SetPrefix("eg", rdf.NewURI("http://example.org/")))

	text, err := Dumps(m, DumpEnv(env))
	require.NoError(t, err)
	assert.Equal(t, "@prefix eg: <http://example.org/> .\n\neg:s\n\teg:p eg:o .\n", text)

	text, err = Dumps(m, DumpEnv(env), DumpWriterFlags(rdf.WriteContextual))
	require.NoError(t, err)
	assert.Equal(t, "eg:s\n\teg:p eg:o .\n", text)
}

func TestDumpsGraphs(t *testing.T) {
	m := newModel(t, IndexSPO|IndexGraphs)
	require.NoError(t, m.Add(exS, exP, exO, exG))

	text, err := Dumps(m, DumpSyntax(rdf.TriG))
	require.NoError(t, err)
	assert.Equal(t,
		"<http://example.org/g> {\n\t<http://example.org/s>\n\t\t<http://example.org/p> <http://example.org/o> .\n}\n",
		text)

	text, err = Dumps(m, DumpSyntax(rdf.NQuads))
	require.NoError(t, err)
	assert.Equal(t,
		"<http://example.org/s> <http://example.org/p> <http://example.org/o> <http://example.org/g> .\n",
		text)
}

func TestDumpLoadRoundTrip(t *testing.T) {
	world := rdf.NewWorld()
	m, err := Loads(world, prefixedDoc+"eg:s a eg:T ; eg:p3 \"x\"@en , 42 .\n")
	require.NoError(t, err)
	defer m.Close()

	for _, name := range []string{"out.ttl", "out.nt"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, Dump(m, path))

			again, err := Load(world, path)
			require.NoError(t, err)
			defer again.Close()

			ok, err := m.Equal(again)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}

	assert.Error(t, Dump(m, filepath.Join(t.TempDir(), "missing", "out.ttl")))
}

func TestDumpLoadBlankNodes(t *testing.T) {
	doc := "@prefix eg: <http://example.org/> .\n" +
		"eg:s eg:p [ eg:q ( 1 2 ) ] .\n" +
		"_:shared eg:p eg:o .\n" +
		"eg:s eg:x _:shared .\n" +
		"eg:o eg:x _:shared .\n"

	world := rdf.NewWorld()
	m, err := Loads(world, doc)
	require.NoError(t, err)
	defer m.Close()

	for _, syntax := range []rdf.Syntax{rdf.Turtle, rdf.NTriples} {
		t.Run(syntax.String(), func(t *testing.T) {
			text, err := Dumps(m, DumpSyntax(syntax))
			require.NoError(t, err)

			again, err := Loads(world, text, LoadSyntax(syntax))
			require.NoError(t, err)
			defer again.Close()

			require.Equal(t, m.Size(), again.Size())
			assert.True(t, rdf.Isomorphic(collect(t, m.All()), collect(t, again.All())), text)
		})
	}
}
