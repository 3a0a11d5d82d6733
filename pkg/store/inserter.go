package store

import (
	"fmt"

	"github.com/aleksaelezovic/tristore/pkg/rdf"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Inserter is a Sink that inserts statements into a model. Other events
// are ignored. Statements without a graph are put in the default graph of
// the inserter, if it has one.
type Inserter struct {
	model        *Model
	defaultGraph rdf.Node
	logger       log.Logger
}

// NewInserter creates a sink that inserts into model. defaultGraph may be
// nil.
func NewInserter(model *Model, defaultGraph rdf.Node) *Inserter {
	return &Inserter{
		model:        model,
		defaultGraph: defaultGraph,
		logger:       log.With(model.World().Logger(), "component", "inserter"),
	}
}

func (i *Inserter) OnEvent(event rdf.Event) error {
	if event.Type != rdf.EventStatement {
		return nil
	}

	st := event.Statement
	for _, n := range st.Nodes() {
		if err := i.checkNode(n); err != nil {
			return err
		}
	}

	if st.Graph() == nil && i.defaultGraph != nil {
		if err := i.checkNode(i.defaultGraph); err != nil {
			return err
		}
		st = st.WithGraph(i.defaultGraph)
	}

	return i.model.Insert(st)
}

// checkNode rejects nodes that depend on a context the model does not keep
func (i *Inserter) checkNode(n rdf.Node) error {
	switch t := n.(type) {
	case rdf.Literal:
		if t.DatatypeIRI != "" && !rdf.HasScheme(t.DatatypeIRI) {
			return i.reject("relative datatype URI <%s>", t.DatatypeIRI)
		}
	case rdf.URI:
		if !t.IsAbsolute() {
			return i.reject("relative URI <%s>", t.IRI)
		}
	case rdf.CURIE:
		return i.reject("prefixed name %s", t.Text)
	}
	return nil
}

func (i *Inserter) reject(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	level.Warn(i.logger).Log("msg", "attempt to insert "+msg+" into model")
	return fmt.Errorf("cannot insert %s: %w", msg, rdf.ErrBadArg)
}
