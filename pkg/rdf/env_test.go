package rdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvQualify(t *testing.T) {
	env := NewEnv()
	name := NewURI("http://example.org/name")

	_, ok := env.Qualify(name)
	assert.False(t, ok)

	require.NoError(t, env.SetPrefix("eg", NewURI("http://example.org/")))

	curie, ok := env.Qualify(name)
	require.True(t, ok)
	assert.Equal(t, "eg:name", curie.Text)

	// The namespace itself has no local name
	_, ok = env.Qualify(NewURI("http://example.org/"))
	assert.False(t, ok)
}

func TestEnvExpand(t *testing.T) {
	env := NewEnv()
	require.NoError(t, env.SetPrefix("eg", NewURI("http://example.org/")))

	uri, ok := env.Expand(NewCURIE("eg", "thing"))
	require.True(t, ok)
	assert.Equal(t, NewURI("http://example.org/thing"), uri)

	_, ok = env.Expand(NewCURIE("nope", "thing"))
	assert.False(t, ok)

	n, err := env.ExpandNode(NewCURIE("eg", "x"))
	require.NoError(t, err)
	assert.Equal(t, NewURI("http://example.org/x"), n)

	_, err = env.ExpandNode(NewCURIE("nope", "x"))
	assert.ErrorIs(t, err, ErrBadCurie)

	lit, err := env.ExpandNode(Literal{Lexical: "1", DatatypeIRI: "eg:int"})
	require.NoError(t, err)
	assert.Equal(t, NewTypedLiteral("1", NewURI("http://example.org/int")), lit)

	blank := NewBlank("b")
	n, err = env.ExpandNode(blank)
	require.NoError(t, err)
	assert.Equal(t, blank, n)
}

func TestEnvBaseURI(t *testing.T) {
	env := NewEnv()
	assert.Nil(t, env.BaseURI())

	require.NoError(t, env.SetBaseURI(NewURI("http://example.org/a/b")))
	assert.Equal(t, NewURI("http://example.org/a/b"), env.BaseURI())

	// Relative bases resolve against the current one
	require.NoError(t, env.SetBaseURI(NewURI("../c/")))
	assert.Equal(t, NewURI("http://example.org/c/"), env.BaseURI())

	n, err := env.ExpandNode(NewURI("d"))
	require.NoError(t, err)
	assert.Equal(t, NewURI("http://example.org/c/d"), n)

	assert.ErrorIs(t, env.SetBaseURI(NewString("x")), ErrBadArg)

	require.NoError(t, env.SetBaseURI(nil))
	assert.Nil(t, env.BaseURI())

	assert.ErrorIs(t, env.SetBaseURI(NewURI("relative")), ErrBadURI)

	_, err = NewEnvWithBase(NewURI("no/scheme"))
	assert.ErrorIs(t, err, ErrBadURI)
}

func TestEnvSetPrefix(t *testing.T) {
	env := NewEnv()
	assert.ErrorIs(t, env.SetPrefix("r", NewURI("rel/")), ErrBadURI)
	assert.ErrorIs(t, env.SetPrefix("b", NewBlank("x")), ErrBadArg)

	env, err := NewEnvWithBase(NewURI("http://example.org/a/"))
	require.NoError(t, err)
	require.NoError(t, env.SetPrefix("r", NewURI("rel/")))

	uri, ok := env.Prefix("r")
	require.True(t, ok)
	assert.Equal(t, "http://example.org/a/rel/", uri.IRI)

	require.NoError(t, env.SetPrefix("r", NewURI("http://other.example/")))
	require.Len(t, env.Prefixes(), 1)
	assert.Equal(t, "http://other.example/", env.Prefixes()[0].URI.IRI)
}

func TestEnvDescribe(t *testing.T) {
	env, err := NewEnvWithBase(NewURI("http://example.org/"))
	require.NoError(t, err)
	require.NoError(t, env.SetPrefix("eg", NewURI("http://example.org/ns#")))
	require.NoError(t, env.SetPrefix("xsd", NewURI(NSXSD)))

	var events EventCollector
	require.NoError(t, env.Describe(&events))

	require.Len(t, events.Events, 3)
	assert.Equal(t, BaseEvent(NewURI("http://example.org/")), events.Events[0])
	assert.Equal(t, PrefixEvent("eg", NewURI("http://example.org/ns#")), events.Events[1])
	assert.Equal(t, PrefixEvent("xsd", NewURI(NSXSD)), events.Events[2])
}

func TestEnvEqual(t *testing.T) {
	a := NewEnv()
	b := NewEnv()
	assert.True(t, a.Equal(b))

	require.NoError(t, a.SetPrefix("x", NewURI("http://x.example/")))
	require.NoError(t, a.SetPrefix("y", NewURI("http://y.example/")))
	assert.False(t, a.Equal(b))

	require.NoError(t, b.SetPrefix("y", NewURI("http://y.example/")))
	require.NoError(t, b.SetPrefix("x", NewURI("http://x.example/")))
	assert.True(t, a.Equal(b))

	require.NoError(t, b.SetBaseURI(NewURI("http://example.org/")))
	assert.False(t, a.Equal(b))

	var nilEnv *Env
	assert.False(t, a.Equal(nilEnv))
}
