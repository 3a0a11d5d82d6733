package rdf

import (
	"fmt"
	"strings"
)

const syntaxPrelude = "_:s <http://www.w3.org/2000/01/rdf-schema#object>"

// NodeFromSyntax parses a single node written in syntax. Prefixed names are
// expanded with env, which may be nil. Relative URIs are kept as written.
func NodeFromSyntax(text string, syntax Syntax, env *Env) (Node, error) {
	if env == nil {
		env = NewEnv()
	}

	var object Node
	sink := SinkFunc(func(event Event) error {
		if event.Type == EventStatement {
			object = event.Statement.Object()
		}
		return nil
	})

	reader := NewReader(NewWorld(), syntax, env, sink,
		WithReaderFlags(ReadRelative|ReadGlobal), WithStackLimit(8))
	if err := reader.Start(StringSource(syntaxPrelude + " " + text + " .")); err != nil {
		return nil, err
	}
	defer reader.Finish()

	if err := reader.ReadDocument(); err != nil {
		return nil, fmt.Errorf("failed to parse node %q: %w", text, err)
	}
	if object == nil {
		return nil, fmt.Errorf("no node in %q: %w", text, ErrNoData)
	}
	return object, nil
}

// NodeToSyntax writes a single node in syntax, abbreviating with env,
// which may be nil.
func NodeToSyntax(node Node, syntax Syntax, env *Env) (string, error) {
	if env == nil {
		env = NewEnv()
	}

	var sb strings.Builder
	writer := NewWriter(NewWorld(), syntax, env, &sb, WithMaxDepth(4))
	if err := writer.WriteNode(node); err != nil {
		return "", err
	}
	if err := writer.Finish(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
