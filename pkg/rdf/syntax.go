package rdf

import (
	"path/filepath"
	"strings"
)

// Syntax is an RDF concrete syntax
type Syntax int

const (
	SyntaxEmpty Syntax = iota
	Turtle
	NTriples
	NQuads
	TriG
)

var syntaxNames = map[Syntax]string{
	SyntaxEmpty: "empty",
	Turtle:      "turtle",
	NTriples:    "ntriples",
	NQuads:      "nquads",
	TriG:        "trig",
}

var syntaxExtensions = map[string]Syntax{
	".ttl":  Turtle,
	".nt":   NTriples,
	".nq":   NQuads,
	".trig": TriG,
}

func (s Syntax) String() string {
	if name, ok := syntaxNames[s]; ok {
		return name
	}
	return "unknown"
}

// SyntaxByName returns the syntax with a case-insensitive name, or SyntaxEmpty
func SyntaxByName(name string) Syntax {
	lower := strings.ToLower(name)
	for syntax, n := range syntaxNames {
		if syntax != SyntaxEmpty && n == lower {
			return syntax
		}
	}
	return SyntaxEmpty
}

// GuessSyntax returns the syntax for a filename by extension, or SyntaxEmpty
func GuessSyntax(filename string) Syntax {
	if syntax, ok := syntaxExtensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return syntax
	}
	return SyntaxEmpty
}

// HasGraphs returns true if the syntax can express named graphs
func (s Syntax) HasGraphs() bool {
	return s == NQuads || s == TriG
}

// Abbreviates returns true for syntaxes with prefixes and nested nodes
func (s Syntax) Abbreviates() bool {
	return s == Turtle || s == TriG
}
