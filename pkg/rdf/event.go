package rdf

import (
	"fmt"
	"strings"
)

// EventType identifies the kind of an Event
type EventType int

const (
	EventBase EventType = iota + 1
	EventPrefix
	EventStatement
	EventEnd
)

func (t EventType) String() string {
	switch t {
	case EventBase:
		return "base"
	case EventPrefix:
		return "prefix"
	case EventStatement:
		return "statement"
	case EventEnd:
		return "end"
	default:
		return "unknown"
	}
}

// StatementFlags describe how a statement was written, so that a writer
// can reproduce abbreviations like anonymous nodes and lists.
type StatementFlags uint32

const (
	EmptyS StatementFlags = 1 << iota // Empty blank node subject
	EmptyO                            // Empty blank node object
	EmptyG                            // Empty blank node graph
	AnonS                             // Start of anonymous subject
	AnonO                             // Start of anonymous object
	ListS                             // Start of list subject
	ListO                             // Start of list object
	TerseS                            // Terse serialisation of new subject
	TerseO                            // Terse serialisation of new object
)

var statementFlagNames = []struct {
	flag StatementFlags
	name string
}{
	{EmptyS, "EmptyS"},
	{EmptyO, "EmptyO"},
	{EmptyG, "EmptyG"},
	{AnonS, "AnonS"},
	{AnonO, "AnonO"},
	{ListS, "ListS"},
	{ListO, "ListO"},
	{TerseS, "TerseS"},
	{TerseO, "TerseO"},
}

func (f StatementFlags) String() string {
	if f == 0 {
		return "0"
	}

	var names []string
	for _, fn := range statementFlagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, "|")
}

// Event is one item in a stream of RDF data: a base URI, a prefix
// definition, a statement, or the end of an anonymous node.
//
// Only the fields relevant to Type are set.
type Event struct {
	Type EventType

	// Base and Prefix
	URI  URI
	Name string

	// Statement
	Statement Statement
	Flags     StatementFlags

	// End
	Node Node
}

func BaseEvent(uri URI) Event {
	return Event{Type: EventBase, URI: uri}
}

func PrefixEvent(name string, uri URI) Event {
	return Event{Type: EventPrefix, Name: name, URI: uri}
}

func StatementEvent(st Statement, flags StatementFlags) Event {
	return Event{Type: EventStatement, Statement: st, Flags: flags}
}

func EndEvent(node Node) Event {
	return Event{Type: EventEnd, Node: node}
}

func (e Event) String() string {
	switch e.Type {
	case EventBase:
		return fmt.Sprintf("rdf.BaseEvent(%s)", GoString(e.URI))
	case EventPrefix:
		return fmt.Sprintf("rdf.PrefixEvent(%q, %s)", e.Name, GoString(e.URI))
	case EventStatement:
		return fmt.Sprintf("rdf.StatementEvent(%#v, %d)", e.Statement, e.Flags)
	case EventEnd:
		return fmt.Sprintf("rdf.EndEvent(%s)", GoString(e.Node))
	default:
		return fmt.Sprintf("rdf.Event{Type: %d}", e.Type)
	}
}

// Equal compares two events, ignoring statement cursors
func (e Event) Equal(other Event) bool {
	if e.Type != other.Type {
		return false
	}

	switch e.Type {
	case EventBase:
		return e.URI == other.URI
	case EventPrefix:
		return e.Name == other.Name && e.URI == other.URI
	case EventStatement:
		return e.Flags == other.Flags && e.Statement.Equal(other.Statement)
	case EventEnd:
		return Equal(e.Node, other.Node)
	}
	return true
}

// Sink receives a stream of events
type Sink interface {
	OnEvent(event Event) error
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(event Event) error

func (f SinkFunc) OnEvent(event Event) error {
	return f(event)
}

// EventCollector is a Sink that records every event it receives
type EventCollector struct {
	Events []Event
}

func (c *EventCollector) OnEvent(event Event) error {
	c.Events = append(c.Events, event)
	return nil
}

// Statements returns the statements of all collected statement events
func (c *EventCollector) Statements() []Statement {
	var out []Statement
	for _, e := range c.Events {
		if e.Type == EventStatement {
			out = append(out, e.Statement)
		}
	}
	return out
}
