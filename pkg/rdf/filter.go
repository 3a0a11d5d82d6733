package rdf

import (
	"fmt"
)

type filter struct {
	target    Sink
	pattern   [4]Node
	inclusive bool
}

// NewFilter returns a sink that forwards the statements that match a
// pattern to target, or those that don't if inclusive is false. Nil and
// variable pattern nodes match anything. Other events pass through, except
// End events, and forwarded statements lose their flags, since the
// abbreviations they describe may no longer hold.
func NewFilter(target Sink, subject, predicate, object, graph Node, inclusive bool) Sink {
	f := &filter{target: target, inclusive: inclusive}
	for i, n := range []Node{subject, predicate, object, graph} {
		if n != nil && n.Type() != NodeTypeVariable {
			f.pattern[i] = n
		}
	}
	return f
}

func (f *filter) OnEvent(event Event) error {
	switch event.Type {
	case EventStatement:
		p := f.pattern
		if event.Statement.Matches(p[0], p[1], p[2], p[3]) != f.inclusive {
			return nil
		}
		event.Flags = 0
		return f.target.OnEvent(event)
	case EventEnd:
		return nil
	}
	return f.target.OnEvent(event)
}

// ParsePattern reads a statement pattern written as a single N-Quads
// statement, with variables standing for any node
func ParsePattern(world *World, text string) (Statement, error) {
	var events EventCollector
	reader := NewReader(world, NQuads, nil, &events, WithReaderFlags(ReadVariables|ReadGlobal))
	if err := reader.Start(StringSource(text)); err != nil {
		return Statement{}, err
	}

	err := reader.ReadDocument()
	if ferr := reader.Finish(); err == nil {
		err = ferr
	}
	if err != nil {
		return Statement{}, fmt.Errorf("failed to parse pattern: %w", err)
	}

	statements := events.Statements()
	if len(statements) != 1 {
		return Statement{}, fmt.Errorf("pattern has %d statements, expected 1: %w", len(statements), ErrBadArg)
	}
	return statements[0], nil
}
