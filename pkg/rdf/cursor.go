package rdf

import "fmt"

// Cursor is a position in a named document, used for diagnostics.
// Lines start at 1 and columns at 0.
type Cursor struct {
	Name   string
	Line   uint
	Column uint
}

func NewCursor(name string, line, column uint) Cursor {
	return Cursor{Name: name, Line: line, Column: column}
}

func (c Cursor) String() string {
	return fmt.Sprintf("%s:%d:%d", c.Name, c.Line, c.Column)
}
